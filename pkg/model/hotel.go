package model

import "time"

// HotelCandidate is one record returned by the retrieval service.
// Immutable; referenced by ID inside turns when the concierge proposes
// options.
type HotelCandidate struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	PricePerNight  float64   `json:"price_per_night"`
	Rating         float64   `json:"rating"`
	Amenities      []string  `json:"amenities,omitempty"`
	ReviewSnippets []string  `json:"review_snippets,omitempty"`
	AvailableFrom  time.Time `json:"available_from,omitempty"`
	AvailableTo    time.Time `json:"available_to,omitempty"`
}

// HasAmenity checks amenity membership case-sensitively; catalog data
// uses lower-case amenity keys.
func (h HotelCandidate) HasAmenity(name string) bool {
	for _, a := range h.Amenities {
		if a == name {
			return true
		}
	}
	return false
}

// SearchQuery is a structured hotel catalog query.
type SearchQuery struct {
	Location  string    `json:"location,omitempty"`
	MinRating float64   `json:"min_rating,omitempty"`
	MaxPrice  float64   `json:"max_price,omitempty"`
	Amenities []string  `json:"amenities,omitempty"`
	CheckIn   time.Time `json:"check_in,omitempty"`
	CheckOut  time.Time `json:"check_out,omitempty"`
	Limit     int       `json:"limit,omitempty"`
}
