package model

import "errors"

var (
	// ErrInvalidName is returned when an event or crew member name is empty.
	ErrInvalidName = errors.New("name is required")
	// ErrInvalidDate is returned when an event date is missing or not YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")
	// ErrInvalidLocation is returned when an event location name is empty.
	ErrInvalidLocation = errors.New("location is required")
	// ErrInvalidCoordinates is returned when latitude or longitude is out of range.
	ErrInvalidCoordinates = errors.New("coordinates are out of range")
	// ErrInvalidZoom is returned when a map zoom level is outside the tile range.
	ErrInvalidZoom = errors.New("zoom is out of range")
	// ErrInvalidAvatar is returned when a crew avatar is not an absolute http(s) URL.
	ErrInvalidAvatar = errors.New("avatar must be an http(s) URL")
	// ErrEventNotFound is returned when no event has the requested identifier.
	ErrEventNotFound = errors.New("event not found")
	// ErrCrewMemberNotFound is returned when no crew member has the requested identifier.
	ErrCrewMemberNotFound = errors.New("crew member not found")
	// ErrGeolocationDenied is returned when the user refused to share a position.
	ErrGeolocationDenied = errors.New("geolocation permission denied")
	// ErrGeolocationUnavailable is returned when no geolocation capability exists.
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
	// ErrWeatherUnavailable wraps every weather fetch failure.
	ErrWeatherUnavailable = errors.New("weather unavailable")
)
