package app

import (
	"strconv"
	"strings"

	"tatler/internal/domain"
)

const (
	defaultPriceRange = "$$"
	anonymousUserID   = "anonymous"
)

// NormalizeRecord checks a raw record and produces a storage-ready
// restaurant document. Missing required fields reject the record with a
// *domain.ValidationError naming the row index; callers skip and continue.
// Coordinates follow a lenient policy: unparseable or out-of-range values
// become 0.0 rather than rejecting an otherwise valid record.
func NormalizeRecord(row domain.RowRecord, index int) (domain.Restaurant, error) {
	var missing []string
	id := strings.TrimSpace(row.RestaurantID)
	name := strings.TrimSpace(row.Name)
	cuisine := strings.TrimSpace(row.Cuisine)
	street := strings.TrimSpace(row.Street)

	if id == "" {
		missing = append(missing, "restaurant_id")
	}
	if name == "" {
		missing = append(missing, "name")
	}
	if cuisine == "" {
		missing = append(missing, "cuisine")
	}
	if street == "" {
		missing = append(missing, "street")
	}
	if len(missing) > 0 {
		return domain.Restaurant{}, &domain.ValidationError{Row: index, Fields: missing}
	}

	return domain.Restaurant{
		RestaurantID: id,
		Name:         name,
		Cuisine:      cuisine,
		Borough:      defaultStr(row.Borough, ""),
		Phone:        defaultStr(row.Phone, ""),
		Website:      defaultStr(row.Website, ""),
		PriceRange:   defaultStr(row.PriceRange, defaultPriceRange),
		Address: domain.Address{
			Building: strings.TrimSpace(row.Building),
			Street:   street,
			Zipcode:  strings.TrimSpace(row.Zipcode),
			Coord: [2]float64{
				clampCoord(row.Longitude, 180),
				clampCoord(row.Latitude, 90),
			},
		},
	}, nil
}

func defaultStr(s, def string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return def
}

// clampCoord parses s as a float and substitutes 0 when parsing fails or
// the absolute value exceeds bound (180 for longitude, 90 for latitude).
func clampCoord(s string, bound float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < -bound || f > bound {
		return 0
	}
	return f
}

// clampLonLat applies the same lenient policy to already-numeric
// coordinates coming from API payloads.
func clampLonLat(c [2]float64) [2]float64 {
	if c[0] < -180 || c[0] > 180 {
		c[0] = 0
	}
	if c[1] < -90 || c[1] > 90 {
		c[1] = 0
	}
	return c
}
