package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpserver "tatler/internal/adapters/http_server"
	"tatler/internal/app"
	"tatler/internal/domain"
)

// ---- fakes ----

type stubRepo struct {
	doc      domain.Restaurant
	page     domain.RestaurantPage
	found    []domain.Restaurant
	err      error
	inserted int
	grades   int
	comments int
}

func (s *stubRepo) List(ctx context.Context, q domain.ListQuery) (domain.RestaurantPage, error) {
	return s.page, nil
}
func (s *stubRepo) Get(ctx context.Context, id int64) (domain.Restaurant, error) {
	if s.err != nil {
		return domain.Restaurant{}, s.err
	}
	return s.doc, nil
}
func (s *stubRepo) Search(ctx context.Context, query string) ([]domain.Restaurant, error) {
	return s.found, nil
}
func (s *stubRepo) Insert(ctx context.Context, r domain.Restaurant) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.inserted++
	return 1, nil
}
func (s *stubRepo) BulkInsert(ctx context.Context, rs []domain.Restaurant, partialTolerant bool) (domain.BulkResult, error) {
	return domain.BulkResult{}, nil
}
func (s *stubRepo) Update(ctx context.Context, id int64, p domain.RestaurantPatch) (domain.Restaurant, error) {
	if s.err != nil {
		return domain.Restaurant{}, s.err
	}
	return s.doc, nil
}
func (s *stubRepo) AppendGrade(ctx context.Context, id int64, g domain.Grade) (domain.Restaurant, error) {
	if s.err != nil {
		return domain.Restaurant{}, s.err
	}
	s.grades++
	return s.doc, nil
}
func (s *stubRepo) AppendComment(ctx context.Context, id int64, c domain.Comment) (domain.Restaurant, error) {
	if s.err != nil {
		return domain.Restaurant{}, s.err
	}
	s.comments++
	return s.doc, nil
}
func (s *stubRepo) Delete(ctx context.Context, id int64) error { return s.err }

type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (nopCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	return nil
}
func (nopCache) Del(ctx context.Context, key string) error { return nil }

func newServer(repo *stubRepo) http.Handler {
	srv := httpserver.New(0)
	srv.MountHandlers(&httpserver.Handlers{
		Q: app.NewQueryService(repo, nopCache{}, time.Minute),
		C: app.NewCommandService(repo, nopCache{}, nil),
	})
	return srv.Mux()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	out := map[string]any{}
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: invalid JSON body %q", method, path, rr.Body.String())
		}
	}
	return rr, out
}

// ---- tests ----

func TestHealth(t *testing.T) {
	h := newServer(&stubRepo{})
	rr, out := do(t, h, "GET", "/health", "")
	if rr.Code != http.StatusOK || out["success"] != true {
		t.Fatalf("status %d body %v", rr.Code, out)
	}
	if out["message"] != "API is working" {
		t.Fatalf("message: %v", out["message"])
	}
}

func TestGet_InvalidIDFormat(t *testing.T) {
	h := newServer(&stubRepo{})
	rr, out := do(t, h, "GET", "/restaurants/abc", "")
	if rr.Code != http.StatusBadRequest || out["message"] != "Invalid ID format" {
		t.Fatalf("status %d body %v", rr.Code, out)
	}
}

func TestGet_NotFound(t *testing.T) {
	h := newServer(&stubRepo{err: domain.ErrNotFound})
	rr, out := do(t, h, "GET", "/restaurants/42", "")
	if rr.Code != http.StatusNotFound || out["message"] != "Restaurant not found" {
		t.Fatalf("status %d body %v", rr.Code, out)
	}
}

func TestGet_OK(t *testing.T) {
	h := newServer(&stubRepo{doc: domain.Restaurant{ID: 42, RestaurantID: "R42", Name: "Golden Dragon"}})
	rr, out := do(t, h, "GET", "/restaurants/42", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	data := out["data"].(map[string]any)
	if data["name"] != "Golden Dragon" || data["restaurant_id"] != "R42" {
		t.Fatalf("data: %v", data)
	}
}

func TestList_PaginationEnvelope(t *testing.T) {
	h := newServer(&stubRepo{page: domain.RestaurantPage{
		Items: make([]domain.Restaurant, 5),
		Total: 25,
	}})
	rr, out := do(t, h, "GET", "/restaurants?page=3&limit=10", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	pg := out["pagination"].(map[string]any)
	if pg["current_page"] != float64(3) || pg["total_pages"] != float64(3) ||
		pg["total_documents"] != float64(25) || pg["limit"] != float64(10) {
		t.Fatalf("pagination: %v", pg)
	}
}

func TestCreate_MissingFields(t *testing.T) {
	repo := &stubRepo{}
	h := newServer(repo)
	rr, out := do(t, h, "POST", "/restaurants", `{"name":"Golden Dragon"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rr.Code)
	}
	msg, _ := out["message"].(string)
	if !strings.HasPrefix(msg, "Missing required fields:") {
		t.Fatalf("message: %q", msg)
	}
	if repo.inserted != 0 {
		t.Fatal("store must not be touched")
	}
}

func TestCreate_OK(t *testing.T) {
	repo := &stubRepo{}
	h := newServer(repo)
	body := `{"name":"Golden Dragon","borough":"Queens","cuisine":"Chinese","address":{"street":"Main Street","coord":[-73.83,40.75]}}`
	rr, out := do(t, h, "POST", "/restaurants", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status %d body %v", rr.Code, out)
	}
	if out["message"] != "Restaurant created successfully" {
		t.Fatalf("message: %v", out["message"])
	}
	data := out["data"].(map[string]any)
	if id, _ := data["restaurant_id"].(string); id == "" {
		t.Fatalf("restaurant_id missing: %v", data)
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	h := newServer(&stubRepo{err: domain.ErrDuplicateID})
	body := `{"restaurant_id":"R1","name":"Golden Dragon","borough":"Queens","cuisine":"Chinese","address":{"street":"Main Street"}}`
	rr, out := do(t, h, "POST", "/restaurants", body)
	if rr.Code != http.StatusBadRequest || out["message"] != "Error: This value must be unique" {
		t.Fatalf("status %d body %v", rr.Code, out)
	}
}

func TestCreate_BadJSON(t *testing.T) {
	h := newServer(&stubRepo{})
	rr, out := do(t, h, "POST", "/restaurants", `{`)
	if rr.Code != http.StatusBadRequest || out["message"] != "Invalid JSON body" {
		t.Fatalf("status %d body %v", rr.Code, out)
	}
}

func TestAddRating_Validation(t *testing.T) {
	repo := &stubRepo{}
	h := newServer(repo)

	for _, body := range []string{`{}`, `{"score":0}`, `{"score":9}`} {
		rr, out := do(t, h, "POST", "/restaurants/1/ratings", body)
		if rr.Code != http.StatusBadRequest || out["message"] != "Rating must be between 1 and 5" {
			t.Fatalf("body %s: status %d out %v", body, rr.Code, out)
		}
	}
	if repo.grades != 0 {
		t.Fatal("no mutation may occur for rejected ratings")
	}

	rr, _ := do(t, h, "POST", "/restaurants/1/ratings", `{"score":5}`)
	if rr.Code != http.StatusCreated || repo.grades != 1 {
		t.Fatalf("status %d grades %d", rr.Code, repo.grades)
	}
}

func TestAddComment_Validation(t *testing.T) {
	repo := &stubRepo{}
	h := newServer(repo)

	rr, out := do(t, h, "POST", "/restaurants/1/comments", `{"comment":""}`)
	if rr.Code != http.StatusBadRequest || out["message"] != "Comment cannot be empty" {
		t.Fatalf("status %d body %v", rr.Code, out)
	}
	if repo.comments != 0 {
		t.Fatal("no mutation may occur for rejected comments")
	}

	rr, out = do(t, h, "POST", "/restaurants/1/comments", `{"comment":"Great food!"}`)
	if rr.Code != http.StatusCreated || out["message"] != "Comment added successfully" {
		t.Fatalf("status %d body %v", rr.Code, out)
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	h := newServer(&stubRepo{})
	rr, out := do(t, h, "GET", "/restaurants/search", "")
	if rr.Code != http.StatusBadRequest || out["message"] != "Missing search parameter: q" {
		t.Fatalf("status %d body %v", rr.Code, out)
	}
}

func TestSearch_OK(t *testing.T) {
	h := newServer(&stubRepo{found: []domain.Restaurant{{Name: "Golden Dragon"}}})
	rr, out := do(t, h, "GET", "/restaurants/search?q=dragon", "")
	if rr.Code != http.StatusOK || out["count"] != float64(1) {
		t.Fatalf("status %d body %v", rr.Code, out)
	}
}

func TestDelete(t *testing.T) {
	h := newServer(&stubRepo{})
	rr, out := do(t, h, "DELETE", "/restaurants/1", "")
	if rr.Code != http.StatusOK || out["message"] != "Restaurant deleted successfully" {
		t.Fatalf("status %d body %v", rr.Code, out)
	}

	h = newServer(&stubRepo{err: domain.ErrNotFound})
	rr, _ = do(t, h, "DELETE", "/restaurants/1", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestUpdate(t *testing.T) {
	h := newServer(&stubRepo{doc: domain.Restaurant{ID: 1, Name: "Renamed"}})
	rr, out := do(t, h, "PUT", "/restaurants/1", `{"name":"Renamed"}`)
	if rr.Code != http.StatusOK || out["message"] != "Restaurant updated successfully" {
		t.Fatalf("status %d body %v", rr.Code, out)
	}

	rr, out = do(t, h, "PUT", "/restaurants/1", `{"name":"  "}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("blank name must 400, got %d (%v)", rr.Code, out)
	}
}

func TestRouteNotFound(t *testing.T) {
	h := newServer(&stubRepo{})
	rr, out := do(t, h, "GET", "/nope", "")
	if rr.Code != http.StatusNotFound || out["message"] != "Route not found" {
		t.Fatalf("status %d body %v", rr.Code, out)
	}
	if out["path"] != "/nope" {
		t.Fatalf("path: %v", out["path"])
	}
}
