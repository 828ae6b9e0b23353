// Package model defines domain models and data structures.
package model

import (
	"errors"
	"math"
	"strings"
	"time"
)

// DateLayout is the layout of event dates and creation dates.
const DateLayout = "2006-01-02"

// Event represents a cleanup event shown on the map and in the events list.
type Event struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	Location    string  `json:"location"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Attendees   int     `json:"attendees"`
	CreatedDate string  `json:"createdDate"`
}

// CreateEventParams represents parameters for creating a new event.
type CreateEventParams struct {
	Name     string  `json:"name"`
	Date     string  `json:"date"`
	Location string  `json:"location"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// Normalize trims surrounding whitespace from the text fields.
func (p *CreateEventParams) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Date = strings.TrimSpace(p.Date)
	p.Location = strings.TrimSpace(p.Location)
}

// Validate validates the create event parameters. All violations are joined
// so callers can match each with errors.Is.
func (p *CreateEventParams) Validate() error {
	var errs []error

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ErrInvalidName)
	}

	if _, err := time.Parse(DateLayout, strings.TrimSpace(p.Date)); err != nil {
		errs = append(errs, ErrInvalidDate)
	}

	if strings.TrimSpace(p.Location) == "" {
		errs = append(errs, ErrInvalidLocation)
	}

	if !ValidCoordinates(p.Lat, p.Lng) {
		errs = append(errs, ErrInvalidCoordinates)
	}

	return errors.Join(errs...)
}

// ValidCoordinates reports whether lat/lng are finite and within WGS84 bounds.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}

	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
