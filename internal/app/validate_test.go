package app_test

import (
	"errors"
	"testing"

	"tatler/internal/app"
	"tatler/internal/domain"
)

func validRow() domain.RowRecord {
	return domain.RowRecord{
		RestaurantID: "R1001",
		Name:         "Golden Dragon",
		Borough:      "Queens",
		Cuisine:      "Chinese",
		Building:     "41",
		Street:       "Main Street",
		Zipcode:      "11355",
		Longitude:    "-73.83",
		Latitude:     "40.75",
		Phone:        "718-555-0101",
		Website:      "http://goldendragon.example",
		PriceRange:   "$",
	}
}

func TestNormalizeRecord_Valid(t *testing.T) {
	doc, err := app.NormalizeRecord(validRow(), 0)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if doc.RestaurantID != "R1001" || doc.Name != "Golden Dragon" {
		t.Fatalf("unexpected doc: %+v", doc)
	}
	if doc.Address.Coord[0] != -73.83 || doc.Address.Coord[1] != 40.75 {
		t.Fatalf("coord: %v", doc.Address.Coord)
	}
	if doc.PriceRange != "$" {
		t.Fatalf("price_range: %q", doc.PriceRange)
	}
}

func TestNormalizeRecord_MissingRequired(t *testing.T) {
	row := validRow()
	row.Name = "   "
	row.Cuisine = ""

	_, err := app.NormalizeRecord(row, 7)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Row != 7 {
		t.Fatalf("row index: %d", verr.Row)
	}
	want := map[string]bool{"name": true, "cuisine": true}
	if len(verr.Fields) != 2 || !want[verr.Fields[0]] || !want[verr.Fields[1]] {
		t.Fatalf("fields: %v", verr.Fields)
	}
}

func TestNormalizeRecord_CoordinateLeniency(t *testing.T) {
	cases := []struct {
		name     string
		lon, lat string
		want     [2]float64
	}{
		{"unparseable longitude", "abc", "40.75", [2]float64{0, 40.75}},
		{"longitude out of range", "200", "40.75", [2]float64{0, 40.75}},
		{"latitude out of range", "-73.83", "-91", [2]float64{-73.83, 0}},
		{"both empty", "", "", [2]float64{0, 0}},
		{"boundary values kept", "180", "-90", [2]float64{180, -90}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := validRow()
			row.Longitude, row.Latitude = tc.lon, tc.lat
			doc, err := app.NormalizeRecord(row, 0)
			if err != nil {
				t.Fatalf("leniency must not reject: %v", err)
			}
			if doc.Address.Coord != tc.want {
				t.Fatalf("coord = %v, want %v", doc.Address.Coord, tc.want)
			}
		})
	}
}

func TestNormalizeRecord_Defaults(t *testing.T) {
	row := validRow()
	row.Borough, row.Phone, row.Website, row.PriceRange = "", "", " ", ""

	doc, err := app.NormalizeRecord(row, 0)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if doc.Borough != "" || doc.Phone != "" || doc.Website != "" {
		t.Fatalf("optional strings must default to empty: %+v", doc)
	}
	if doc.PriceRange != "$$" {
		t.Fatalf("price_range default: %q", doc.PriceRange)
	}
}

func TestNormalizeRecord_TrimsWhitespace(t *testing.T) {
	row := validRow()
	row.Name = "  Golden Dragon  "
	row.Street = " Main Street "

	doc, err := app.NormalizeRecord(row, 0)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if doc.Name != "Golden Dragon" || doc.Address.Street != "Main Street" {
		t.Fatalf("not trimmed: %q / %q", doc.Name, doc.Address.Street)
	}
}
