package domain

import "context"

// Sort keys accepted by ListQuery.
const (
	SortByRating = "rating" // highest grade score first
	SortByName   = "name"   // ascending
)

// ListQuery carries pagination, exact-match filters and sorting for List.
type ListQuery struct {
	Cuisine string
	Borough string
	SortBy  string
	Limit   int
	Offset  int
}

// RestaurantPage is one page of results plus the unpaginated match count.
type RestaurantPage struct {
	Items []Restaurant
	Total int
}

// Bulk insert outcome statuses, one per input document.
const (
	BulkInserted  = "inserted"
	BulkDuplicate = "duplicate"
	BulkFailed    = "failed"
)

type BulkOutcome struct {
	Index        int
	RestaurantID string
	Status       string
	Err          string
}

type BulkResult struct {
	Inserted   int
	Duplicates int
	Failed     int
	Outcomes   []BulkOutcome
}

// RestaurantPatch is a partial update; nil fields are left untouched.
// Identity fields (ID, RestaurantID) are not patchable by design.
type RestaurantPatch struct {
	Name       *string
	Cuisine    *string
	Borough    *string
	Phone      *string
	Website    *string
	PriceRange *string
	Building   *string
	Street     *string
	Zipcode    *string
	Coord      *[2]float64
}

// RestaurantRepository is the persistence port for the restaurant aggregate.
// Every mutation refreshes the row's updated_at.
type RestaurantRepository interface {
	// Read paths
	List(ctx context.Context, q ListQuery) (RestaurantPage, error)
	Get(ctx context.Context, id int64) (Restaurant, error)
	Search(ctx context.Context, query string) ([]Restaurant, error)

	// Write paths
	Insert(ctx context.Context, r Restaurant) (int64, error)
	// BulkInsert writes a batch. With partialTolerant set, a duplicate key
	// or per-row failure is recorded in the result and the remaining
	// documents are still inserted; otherwise the first error aborts.
	BulkInsert(ctx context.Context, rs []Restaurant, partialTolerant bool) (BulkResult, error)
	Update(ctx context.Context, id int64, p RestaurantPatch) (Restaurant, error)
	AppendGrade(ctx context.Context, id int64, g Grade) (Restaurant, error)
	AppendComment(ctx context.Context, id int64, c Comment) (Restaurant, error)
	Delete(ctx context.Context, id int64) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
