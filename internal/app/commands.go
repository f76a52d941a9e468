package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"tatler/internal/domain"
)

// ErrEmptyComment rejects a comment submission with no text.
var ErrEmptyComment = errors.New("comment cannot be empty")

// CreateRequest is the decoded create payload. RestaurantID is optional;
// a collision-resistant id is generated when absent.
type CreateRequest struct {
	RestaurantID string
	Name         string
	Borough      string
	Cuisine      string
	Phone        string
	Website      string
	PriceRange   string
	Building     string
	Street       string
	Zipcode      string
	Coord        [2]float64
}

type CommandService struct {
	repo  domain.RestaurantRepository
	cache domain.Cache
	now   func() time.Time
}

func NewCommandService(r domain.RestaurantRepository, c domain.Cache, now func() time.Time) *CommandService {
	if now == nil {
		now = time.Now
	}
	return &CommandService{repo: r, cache: c, now: now}
}

// Create validates the required fields, fills defaults and inserts a new
// restaurant with empty grades and comments. A duplicate restaurant_id is
// terminal here (unlike bulk import, where it is tolerated per document).
func (s *CommandService) Create(ctx context.Context, req CreateRequest) (domain.Restaurant, error) {
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Borough) == "" {
		missing = append(missing, "borough")
	}
	if strings.TrimSpace(req.Cuisine) == "" {
		missing = append(missing, "cuisine")
	}
	if strings.TrimSpace(req.Street) == "" {
		missing = append(missing, "address.street")
	}
	if len(missing) > 0 {
		return domain.Restaurant{}, &domain.ValidationError{Row: -1, Fields: missing}
	}

	id := strings.TrimSpace(req.RestaurantID)
	if id == "" {
		id = "R" + uuid.NewString()
	}

	now := s.now().UTC()
	r := domain.Restaurant{
		RestaurantID: id,
		Name:         strings.TrimSpace(req.Name),
		Borough:      strings.TrimSpace(req.Borough),
		Cuisine:      strings.TrimSpace(req.Cuisine),
		Phone:        strings.TrimSpace(req.Phone),
		Website:      strings.TrimSpace(req.Website),
		PriceRange:   defaultStr(req.PriceRange, defaultPriceRange),
		Address: domain.Address{
			Building: strings.TrimSpace(req.Building),
			Street:   strings.TrimSpace(req.Street),
			Zipcode:  strings.TrimSpace(req.Zipcode),
			Coord:    clampLonLat(req.Coord),
		},
		Grades:    []domain.Grade{},
		Comments:  []domain.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	pk, err := s.repo.Insert(ctx, r)
	if err != nil {
		return domain.Restaurant{}, err
	}
	r.ID = pk
	return r, nil
}

// Update applies a partial patch. Identity fields cannot appear in a
// RestaurantPatch, so stripping them is structural rather than runtime.
// Required fields may be patched but not blanked.
func (s *CommandService) Update(ctx context.Context, id int64, p domain.RestaurantPatch) (domain.Restaurant, error) {
	var blanked []string
	for _, f := range []struct {
		name string
		val  *string
	}{{"name", p.Name}, {"cuisine", p.Cuisine}, {"address.street", p.Street}} {
		if f.val != nil && strings.TrimSpace(*f.val) == "" {
			blanked = append(blanked, f.name)
		}
	}
	if len(blanked) > 0 {
		return domain.Restaurant{}, &domain.ValidationError{Row: -1, Fields: blanked}
	}
	if p.Coord != nil {
		c := clampLonLat(*p.Coord)
		p.Coord = &c
	}

	r, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return domain.Restaurant{}, err
	}
	s.invalidate(ctx, id)
	return r, nil
}

func (s *CommandService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// AddComment appends a comment, defaulting user_id to "anonymous". An
// optional rating must be between 1 and 5.
func (s *CommandService) AddComment(ctx context.Context, id int64, text, userID string, rating *int) (domain.Restaurant, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Restaurant{}, ErrEmptyComment
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return domain.Restaurant{}, &domain.RangeError{Field: "Rating", Min: 1, Max: 5}
	}
	c := domain.Comment{
		ID:      uuid.NewString(),
		Date:    s.now().UTC(),
		Comment: strings.TrimSpace(text),
		UserID:  defaultStr(userID, anonymousUserID),
		Rating:  rating,
	}
	r, err := s.repo.AppendComment(ctx, id, c)
	if err != nil {
		return domain.Restaurant{}, err
	}
	s.invalidate(ctx, id)
	return r, nil
}

// AddRating appends a dated grade entry with the submitted score. The
// score must be between 1 and 5 inclusive; no letter grade is attached.
func (s *CommandService) AddRating(ctx context.Context, id int64, score int) (domain.Restaurant, error) {
	if score < 1 || score > 5 {
		return domain.Restaurant{}, &domain.RangeError{Field: "Rating", Min: 1, Max: 5}
	}
	g := domain.Grade{Date: s.now().UTC(), Score: float64(score)}
	r, err := s.repo.AppendGrade(ctx, id, g)
	if err != nil {
		return domain.Restaurant{}, err
	}
	s.invalidate(ctx, id)
	return r, nil
}

func (s *CommandService) invalidate(ctx context.Context, id int64) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, cacheKey(id))
	}
}
