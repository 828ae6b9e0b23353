// Package mapview keeps the server-side model of the page's Leaflet map.
package mapview

import (
	"context"
	"errors"
	"sync"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
	"github.com/LooKaiJun/ShoreSquad/internal/state"
)

// Map defaults.
const (
	DefaultLat         = 37.7749
	DefaultLng         = -122.4194
	DefaultZoom        = 12
	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = "© OpenStreetMap contributors"
	MaxZoom            = 19
	EventZoom          = 15
	UserZoom           = 13
	UserMarkerTitle    = "Your Location"
)

// User-facing geolocation failure messages.
const (
	MessageLocationDenied      = "Unable to get your location. Please check browser permissions."
	MessageLocationUnsupported = "Geolocation is not supported by your browser."
)

// Locator provides the user's position.
type Locator interface {
	Locate(ctx context.Context) (model.Location, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (model.Location, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context) (model.Location, error) {
	return f(ctx)
}

// Marker is one pin on the map.
type Marker struct {
	ID    string  `json:"id,omitempty"`
	Title string  `json:"title"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Name  string  `json:"name,omitempty"`
	Date  string  `json:"date,omitempty"`
}

// Snapshot is the JSON form of the map handed to the page.
type Snapshot struct {
	Center      model.Location `json:"center"`
	Zoom        int            `json:"zoom"`
	MaxZoom     int            `json:"maxZoom"`
	TileURL     string         `json:"tileURL"`
	Attribution string         `json:"attribution"`
	Markers     []Marker       `json:"markers"`
	User        *Marker        `json:"user,omitempty"`
}

// Options configures a View. Zero values fall back to the defaults.
type Options struct {
	Lat     float64
	Lng     float64
	Zoom    int
	TileURL string
}

// View is the map model: event markers, an optional user marker and the
// current viewport.
type View struct {
	state *state.State

	mu      sync.RWMutex
	center  model.Location
	zoom    int
	tileURL string
	markers []Marker
	user    *Marker
}

// New creates a View centered on the configured default.
func New(st *state.State, opts Options) *View {
	if opts.Lat == 0 && opts.Lng == 0 {
		opts.Lat, opts.Lng = DefaultLat, DefaultLng
	}
	if opts.Zoom == 0 {
		opts.Zoom = DefaultZoom
	}
	if opts.TileURL == "" {
		opts.TileURL = DefaultTileURL
	}

	return &View{
		state:   st,
		center:  model.Location{Lat: opts.Lat, Lng: opts.Lng},
		zoom:    opts.Zoom,
		tileURL: opts.TileURL,
		markers: []Marker{},
	}
}

// RenderMarkers replaces every event marker with one per event.
func (v *View) RenderMarkers(events []model.Event) {
	markers := make([]Marker, 0, len(events))
	for _, e := range events {
		markers = append(markers, Marker{
			ID:    e.ID,
			Title: e.Name,
			Lat:   e.Lat,
			Lng:   e.Lng,
			Name:  e.Name,
			Date:  e.Date,
		})
	}

	v.mu.Lock()
	v.markers = markers
	v.mu.Unlock()
}

// CenterOn moves the viewport. Invalid coordinates and zoom are reported
// together.
func (v *View) CenterOn(lat, lng float64, zoom int) error {
	var errs []error
	if !model.ValidCoordinates(lat, lng) {
		errs = append(errs, model.ErrInvalidCoordinates)
	}
	if zoom < 0 || zoom > MaxZoom {
		errs = append(errs, model.ErrInvalidZoom)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	v.mu.Lock()
	v.center = model.Location{Lat: lat, Lng: lng}
	v.zoom = zoom
	v.mu.Unlock()

	return nil
}

// ZoomToEvent centers on the marker of the given event. It reports false
// when no marker has the identifier.
func (v *View) ZoomToEvent(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, m := range v.markers {
		if m.ID == id {
			v.center = model.Location{Lat: m.Lat, Lng: m.Lng}
			v.zoom = EventZoom
			return true
		}
	}

	return false
}

// ShowUserLocation places the user marker, centers on it and records the
// location in the application state.
func (v *View) ShowUserLocation(lat, lng float64) error {
	if !model.ValidCoordinates(lat, lng) {
		return model.ErrInvalidCoordinates
	}

	loc := model.Location{Lat: lat, Lng: lng}

	v.mu.Lock()
	v.center = loc
	v.zoom = UserZoom
	v.user = &Marker{Title: UserMarkerTitle, Lat: lat, Lng: lng}
	v.mu.Unlock()

	if v.state != nil {
		v.state.SetUserLocation(loc)
	}

	return nil
}

// Locate asks loc for the user's position and shows it. On failure the view
// is left unchanged. A locator failure is a *LocateError carrying a message
// fit for the user; a position outside WGS84 bounds is
// model.ErrInvalidCoordinates.
func (v *View) Locate(ctx context.Context, loc Locator) (model.Location, error) {
	if loc == nil {
		return model.Location{}, &LocateError{Err: model.ErrGeolocationUnavailable}
	}

	pos, err := loc.Locate(ctx)
	if err != nil {
		return model.Location{}, &LocateError{Err: err}
	}

	if err := v.ShowUserLocation(pos.Lat, pos.Lng); err != nil {
		return model.Location{}, err
	}

	return pos, nil
}

// Snapshot returns a copy of the current map model.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := Snapshot{
		Center:      v.center,
		Zoom:        v.zoom,
		MaxZoom:     MaxZoom,
		TileURL:     v.tileURL,
		Attribution: DefaultAttribution,
		Markers:     make([]Marker, len(v.markers)),
	}
	copy(s.Markers, v.markers)

	if v.user != nil {
		u := *v.user
		s.User = &u
	}

	return s
}

// LocateError is returned by Locate.
type LocateError struct {
	Err error
}

func (e *LocateError) Error() string {
	return e.Message()
}

func (e *LocateError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the user.
func (e *LocateError) Message() string {
	if errors.Is(e.Err, model.ErrGeolocationUnavailable) {
		return MessageLocationUnsupported
	}
	return MessageLocationDenied
}
