package app_test

import (
	"context"
	"io"

	"tatler/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	doc    domain.Restaurant
	page   domain.RestaurantPage
	found  []domain.Restaurant
	getErr error

	lastList   domain.ListQuery
	lastQuery  string
	lastPatch  domain.RestaurantPatch
	inserted   []domain.Restaurant
	insertPK   int64
	insertErr  error
	bulkDocs   [][]domain.Restaurant
	bulkResult domain.BulkResult
	bulkErr    error
	grades     []domain.Grade
	comments   []domain.Comment
	deleted    []int64
	searches   int
}

func (f *fakeRepo) List(ctx context.Context, q domain.ListQuery) (domain.RestaurantPage, error) {
	f.lastList = q
	return f.page, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (domain.Restaurant, error) {
	if f.getErr != nil {
		return domain.Restaurant{}, f.getErr
	}
	return f.doc, nil
}

func (f *fakeRepo) Search(ctx context.Context, query string) ([]domain.Restaurant, error) {
	f.searches++
	f.lastQuery = query
	return f.found, nil
}

func (f *fakeRepo) Insert(ctx context.Context, r domain.Restaurant) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserted = append(f.inserted, r)
	return f.insertPK, nil
}

func (f *fakeRepo) BulkInsert(ctx context.Context, rs []domain.Restaurant, partialTolerant bool) (domain.BulkResult, error) {
	if f.bulkErr != nil {
		return domain.BulkResult{}, f.bulkErr
	}
	f.bulkDocs = append(f.bulkDocs, rs)
	return f.bulkResult, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, p domain.RestaurantPatch) (domain.Restaurant, error) {
	if f.getErr != nil {
		return domain.Restaurant{}, f.getErr
	}
	f.lastPatch = p
	return f.doc, nil
}

func (f *fakeRepo) AppendGrade(ctx context.Context, id int64, g domain.Grade) (domain.Restaurant, error) {
	if f.getErr != nil {
		return domain.Restaurant{}, f.getErr
	}
	f.grades = append(f.grades, g)
	return f.doc, nil
}

func (f *fakeRepo) AppendComment(ctx context.Context, id int64, c domain.Comment) (domain.Restaurant, error) {
	if f.getErr != nil {
		return domain.Restaurant{}, f.getErr
	}
	f.comments = append(f.comments, c)
	return f.doc, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if f.getErr != nil {
		return f.getErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCache struct {
	store map[string]domain.Restaurant
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, ok := dst.(*domain.Restaurant); ok {
		*d = v
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]domain.Restaurant{}
	}
	if r, ok := v.(domain.Restaurant); ok {
		c.store[key] = r
	}
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

// sliceSource replays rows and then err (io.EOF when nil).
type sliceSource struct {
	rows []domain.RowRecord
	err  error
	i    int
}

func (s *sliceSource) Next() (domain.RowRecord, error) {
	if s.i >= len(s.rows) {
		if s.err != nil {
			return domain.RowRecord{}, s.err
		}
		return domain.RowRecord{}, io.EOF
	}
	row := s.rows[s.i]
	s.i++
	return row, nil
}
