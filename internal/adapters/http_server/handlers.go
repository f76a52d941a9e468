package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tatler/internal/app"
	"tatler/internal/domain"
)

const apiVersion = "1.1.0"

type Handlers struct {
	Q *app.QueryService
	C *app.CommandService
}

// envelope is the uniform response body: {success, data|message|errors}.
type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
	Count      *int            `json:"count,omitempty"`
	Data       any             `json:"data,omitempty"`
	Pagination *app.Pagination `json:"pagination,omitempty"`
	Path       string          `json:"path,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/health", h.health)

	s.mux.Route("/restaurants", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/search", h.search)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/comments", h.addComment)
		r.Post("/{id}/ratings", h.addRating)
	})

	s.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "Route not found", Path: r.URL.Path})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeFail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg})
}

// writeError maps domain errors to the envelope. Unknown errors become a
// generic 500; detail stays in the log, never in the response.
func writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	var rerr *domain.RangeError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false,
			Message: "Missing required fields: " + strings.Join(verr.Fields, ", "),
			Errors:  verr.Fields,
		})
	case errors.As(err, &rerr):
		writeFail(w, http.StatusBadRequest, "Rating must be between 1 and 5")
	case errors.Is(err, app.ErrEmptyComment):
		writeFail(w, http.StatusBadRequest, "Comment cannot be empty")
	case errors.Is(err, app.ErrMissingQuery):
		writeFail(w, http.StatusBadRequest, "Missing search parameter: q")
	case errors.Is(err, domain.ErrNotFound):
		writeFail(w, http.StatusNotFound, "Restaurant not found")
	case errors.Is(err, domain.ErrDuplicateID):
		writeFail(w, http.StatusBadRequest, "Error: This value must be unique")
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid ID format")
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Success   bool      `json:"success"`
		Message   string    `json:"message"`
		Version   string    `json:"version"`
		Timestamp time.Time `json:"timestamp"`
	}{true, "API is working", apiVersion, time.Now().UTC()})
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := app.ListRequest{
		Cuisine: q.Get("cuisine"),
		Borough: q.Get("borough"),
		SortBy:  q.Get("sortBy"),
	}
	if v := q.Get("page"); v != "" {
		req.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}

	items, pg, err := h.Q.List(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: items, Pagination: &pg})
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	items, err := h.Q.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	n := len(items)
	writeJSON(w, http.StatusOK, envelope{Success: true, Count: &n, Data: items})
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	restaurant, err := h.Q.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: restaurant})
}

type addressPayload struct {
	Building string    `json:"building"`
	Street   string    `json:"street"`
	Zipcode  string    `json:"zipcode"`
	Coord    []float64 `json:"coord"`
}

type createPayload struct {
	RestaurantID string         `json:"restaurant_id"`
	Name         string         `json:"name"`
	Borough      string         `json:"borough"`
	Cuisine      string         `json:"cuisine"`
	Phone        string         `json:"phone"`
	Website      string         `json:"website"`
	PriceRange   string         `json:"price_range"`
	Address      addressPayload `json:"address"`
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	var p createPayload
	if !decode(w, r, &p) {
		return
	}
	req := app.CreateRequest{
		RestaurantID: p.RestaurantID,
		Name:         p.Name,
		Borough:      p.Borough,
		Cuisine:      p.Cuisine,
		Phone:        p.Phone,
		Website:      p.Website,
		PriceRange:   p.PriceRange,
		Building:     p.Address.Building,
		Street:       p.Address.Street,
		Zipcode:      p.Address.Zipcode,
		Coord:        coordPair(p.Address.Coord),
	}
	restaurant, err := h.C.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Restaurant created successfully", Data: restaurant})
}

func coordPair(c []float64) [2]float64 {
	var out [2]float64
	copy(out[:], c)
	return out
}

// updatePayload carries only the fields present in the request body.
// restaurant_id and the storage id are deliberately absent: attempts to
// alter them are dropped at decode time.
type updatePayload struct {
	Name       *string `json:"name"`
	Cuisine    *string `json:"cuisine"`
	Borough    *string `json:"borough"`
	Phone      *string `json:"phone"`
	Website    *string `json:"website"`
	PriceRange *string `json:"price_range"`
	Address    *struct {
		Building *string    `json:"building"`
		Street   *string    `json:"street"`
		Zipcode  *string    `json:"zipcode"`
		Coord    *[]float64 `json:"coord"`
	} `json:"address"`
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var p updatePayload
	if !decode(w, r, &p) {
		return
	}

	patch := domain.RestaurantPatch{
		Name:       p.Name,
		Cuisine:    p.Cuisine,
		Borough:    p.Borough,
		Phone:      p.Phone,
		Website:    p.Website,
		PriceRange: p.PriceRange,
	}
	if p.Address != nil {
		patch.Building = p.Address.Building
		patch.Street = p.Address.Street
		patch.Zipcode = p.Address.Zipcode
		if p.Address.Coord != nil {
			c := coordPair(*p.Address.Coord)
			patch.Coord = &c
		}
	}

	restaurant, err := h.C.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Restaurant updated successfully", Data: restaurant})
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.C.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Restaurant deleted successfully"})
}

func (h *Handlers) addComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var p struct {
		Comment string `json:"comment"`
		UserID  string `json:"user_id"`
		Rating  *int   `json:"rating"`
	}
	if !decode(w, r, &p) {
		return
	}
	restaurant, err := h.C.AddComment(r.Context(), id, p.Comment, p.UserID, p.Rating)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Comment added successfully", Data: restaurant})
}

func (h *Handlers) addRating(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var p struct {
		Score *int `json:"score"`
	}
	if !decode(w, r, &p) {
		return
	}
	if p.Score == nil {
		writeFail(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}
	restaurant, err := h.C.AddRating(r.Context(), id, *p.Score)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Rating added successfully", Data: restaurant})
}
