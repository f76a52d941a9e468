package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tatler/internal/domain"
)

// ErrMissingQuery rejects a text search with no query parameter before the
// store is touched.
var ErrMissingQuery = errors.New("missing search parameter: q")

const defaultPageLimit = 10

// Pagination is the metadata block returned alongside a list page.
type Pagination struct {
	CurrentPage    int `json:"current_page"`
	TotalPages     int `json:"total_pages"`
	TotalDocuments int `json:"total_documents"`
	Limit          int `json:"limit"`
}

// ListRequest is the already-decoded query surface of the list endpoint.
type ListRequest struct {
	Page    int
	Limit   int
	Cuisine string
	Borough string
	SortBy  string
}

type QueryService struct {
	repo     domain.RestaurantRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.RestaurantRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func cacheKey(id int64) string { return fmt.Sprintf("restaurant:%d", id) }

// List applies defaults (page 1, limit 10), delegates to the repository and
// computes pagination metadata: total_pages = ceil(total/limit).
func (s *QueryService) List(ctx context.Context, req ListRequest) ([]domain.Restaurant, Pagination, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}

	out, err := s.repo.List(ctx, domain.ListQuery{
		Cuisine: req.Cuisine,
		Borough: req.Borough,
		SortBy:  req.SortBy,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	})
	if err != nil {
		return nil, Pagination{}, err
	}

	return out.Items, Pagination{
		CurrentPage:    page,
		TotalPages:     (out.Total + limit - 1) / limit,
		TotalDocuments: out.Total,
		Limit:          limit,
	}, nil
}

// Get serves a single restaurant through the read cache.
func (s *QueryService) Get(ctx context.Context, id int64) (domain.Restaurant, error) {
	key := cacheKey(id)
	var cached domain.Restaurant
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Restaurant{}, err
	}
	_ = s.cache.Set(ctx, key, r, int(s.cacheTTL.Seconds()))
	return r, nil
}

// Search runs a relevance-ranked text search. An empty query is rejected
// here so the store is never hit.
func (s *QueryService) Search(ctx context.Context, query string) ([]domain.Restaurant, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrMissingQuery
	}
	return s.repo.Search(ctx, query)
}
