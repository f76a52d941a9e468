package domain

// RowRecord is one raw row from an external tabular source, all fields
// still strings exactly as read. Normalization happens in the validator.
type RowRecord struct {
	RestaurantID string
	Name         string
	Borough      string
	Cuisine      string
	Building     string
	Street       string
	Zipcode      string
	Longitude    string
	Latitude     string
	Phone        string
	Website      string
	PriceRange   string
}

// RowSource streams records one at a time. Next returns io.EOF after the
// last row; any other error means the source is corrupt and the whole
// import must abort.
type RowSource interface {
	Next() (RowRecord, error)
}
