package domain

import "time"

// Address holds the street address of a restaurant. Coord is
// [longitude, latitude]; invalid source values are normalized to 0.
type Address struct {
	Building string     `json:"building"`
	Street   string     `json:"street"`
	Zipcode  string     `json:"zipcode"`
	Coord    [2]float64 `json:"coord"`
}

// Restaurant is the aggregate root. ID is the storage-assigned numeric
// identifier; RestaurantID is the caller-facing unique business key and
// is immutable after creation.
type Restaurant struct {
	ID           int64     `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Cuisine      string    `json:"cuisine"`
	Borough      string    `json:"borough"`
	Phone        string    `json:"phone"`
	Website      string    `json:"website"`
	PriceRange   string    `json:"price_range"`
	Address      Address   `json:"address"`
	Grades       []Grade   `json:"grades"`
	Comments     []Comment `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Grade is an inspection record owned by a Restaurant. Letter grade and
// numeric score are independent fields; API-appended ratings carry no letter.
type Grade struct {
	Date  time.Time `json:"date"`
	Grade string    `json:"grade,omitempty"`
	Score float64   `json:"score"`
}

// Comment is a user review owned by a Restaurant.
type Comment struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Comment string    `json:"comment"`
	UserID  string    `json:"user_id"`
	Rating  *int      `json:"rating,omitempty"`
}
