// Package handler provides the HTTP surface: the page, its fragments and the
// JSON API.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/LooKaiJun/ShoreSquad/internal/auth"
	"github.com/LooKaiJun/ShoreSquad/internal/mapview"
	"github.com/LooKaiJun/ShoreSquad/internal/metrics"
	"github.com/LooKaiJun/ShoreSquad/internal/model"
	"github.com/LooKaiJun/ShoreSquad/internal/render"
	"github.com/LooKaiJun/ShoreSquad/internal/service"
	"github.com/LooKaiJun/ShoreSquad/internal/state"
)

// jitterDegrees bounds the random offset applied to events created without
// coordinates.
const jitterDegrees = 0.25

// Options carries the APIServer collaborators.
type Options struct {
	Events   service.EventService
	Crew     service.CrewService
	Weather  service.WeatherService
	State    *state.State
	View     *mapview.View
	Renderer *render.Renderer
	Sync     *render.Sync
	Auth     *auth.Middleware
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	// DefaultCenter is used for weather when the user has not been located.
	DefaultCenter model.Location
	// Jitter returns a value in [0,1). Defaults to math/rand/v2.
	Jitter func() float64
}

// APIServer handles HTTP requests for events, crew, weather and the map.
type APIServer struct {
	events        service.EventService
	crew          service.CrewService
	weather       service.WeatherService
	state         *state.State
	view          *mapview.View
	renderer      *render.Renderer
	sync          *render.Sync
	auth          *auth.Middleware
	metrics       *metrics.Metrics
	logger        *slog.Logger
	defaultCenter model.Location
	jitter        func() float64
}

// NewAPIServer creates a new API server instance.
func NewAPIServer(opts Options) *APIServer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Auth == nil {
		opts.Auth = auth.NewMiddleware(nil, opts.Logger)
	}
	if opts.Jitter == nil {
		opts.Jitter = rand.Float64
	}

	return &APIServer{
		events:        opts.Events,
		crew:          opts.Crew,
		weather:       opts.Weather,
		state:         opts.State,
		view:          opts.View,
		renderer:      opts.Renderer,
		sync:          opts.Sync,
		auth:          opts.Auth,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		defaultCenter: opts.DefaultCenter,
		jitter:        opts.Jitter,
	}
}

// Routes returns the HTTP handler with every route registered.
func (s *APIServer) Routes() http.Handler {
	mux := http.NewServeMux()
	protect := s.auth.Require

	mux.HandleFunc("GET /{$}", s.Index)
	mux.HandleFunc("GET /health", s.HealthCheck)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("GET /fragments/events", s.EventsFragment)
	mux.HandleFunc("GET /fragments/crew", s.CrewFragment)
	mux.HandleFunc("GET /fragments/weather", s.WeatherFragment)

	mux.HandleFunc("GET /api/state", s.GetState)

	mux.HandleFunc("GET /api/events", s.ListEvents)
	mux.HandleFunc("POST /api/events", protect(s.CreateEvent))
	mux.HandleFunc("POST /api/events/{id}/join", protect(s.JoinEvent))
	mux.HandleFunc("DELETE /api/events/{id}", protect(s.RemoveEvent))
	mux.HandleFunc("POST /api/events/{id}/zoom", protect(s.ZoomToEvent))

	mux.HandleFunc("GET /api/crew", s.ListCrew)
	mux.HandleFunc("POST /api/crew", protect(s.AddCrewMember))
	mux.HandleFunc("DELETE /api/crew/{id}", protect(s.RemoveCrewMember))

	mux.HandleFunc("GET /api/weather", s.GetWeather)
	mux.HandleFunc("POST /api/locate", protect(s.Locate))

	mux.HandleFunc("GET /api/map", s.GetMap)
	mux.HandleFunc("POST /api/map/center", protect(s.CenterMap))
	mux.HandleFunc("POST /api/map/refresh", s.RefreshMap)

	return s.instrument(mux)
}

// Index renders the full page.
func (s *APIServer) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := render.PageData{
		Events:  s.events.List(ctx),
		Crew:    s.crew.List(ctx),
		Weather: s.state.Weather(),
		Map:     s.view.Snapshot(),
	}

	w.Header().Set(contentTypeHeader, textHTML)
	if err := s.renderer.Page(w, data); err != nil {
		s.logger.Error("failed to render page", slog.String("error", err.Error()))
	}
}

// HealthCheck handles GET /health endpoint for service health check.
func (s *APIServer) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// EventsFragment returns the last rendered events list.
func (s *APIServer) EventsFragment(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(contentTypeHeader, textHTML)
	_, _ = w.Write([]byte(s.sync.EventsFragment()))
}

// CrewFragment returns the last rendered crew roster.
func (s *APIServer) CrewFragment(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(contentTypeHeader, textHTML)
	_, _ = w.Write([]byte(s.sync.CrewFragment()))
}

// WeatherFragment fetches weather for the current location and renders the
// card, or the error card when the fetch fails.
func (s *APIServer) WeatherFragment(w http.ResponseWriter, r *http.Request) {
	loc := s.currentLocation()
	weather, fetchErr := s.weather.Current(r.Context(), loc.Lat, loc.Lng)

	html, err := s.renderer.Weather(weather, fetchErr)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}

	w.Header().Set(contentTypeHeader, textHTML)
	_, _ = w.Write([]byte(html))
}

type stateResponse struct {
	Events       []model.Event      `json:"events"`
	Crew         []model.CrewMember `json:"crew"`
	UserLocation *model.Location    `json:"userLocation"`
	Weather      *model.Weather     `json:"weather"`
}

// GetState returns the whole application state.
func (s *APIServer) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, stateResponse{
		Events:       s.events.List(r.Context()),
		Crew:         s.crew.List(r.Context()),
		UserLocation: s.state.UserLocation(),
		Weather:      s.state.Weather(),
	})
}

// ListEvents handles GET /api/events.
func (s *APIServer) ListEvents(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.events.List(r.Context()))
}

type createEventRequest struct {
	Name     string   `json:"name"`
	Date     string   `json:"date"`
	Location string   `json:"location"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
}

// CreateEvent handles POST /api/events. Events submitted without
// coordinates are placed near the default map center.
func (s *APIServer) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	params := &model.CreateEventParams{
		Name:     req.Name,
		Date:     req.Date,
		Location: req.Location,
	}
	if req.Lat != nil && req.Lng != nil {
		params.Lat, params.Lng = *req.Lat, *req.Lng
	} else {
		params.Lat = s.defaultCenter.Lat + s.offset()
		params.Lng = s.defaultCenter.Lng + s.offset()
	}

	event, err := s.events.Create(r.Context(), params)
	if err != nil {
		s.handleMutationError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, event)
}

// JoinEvent handles POST /api/events/{id}/join. Unknown identifiers answer
// 204 with nothing changed.
func (s *APIServer) JoinEvent(w http.ResponseWriter, r *http.Request) {
	event, found, err := s.events.Join(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}

	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.writeJSON(w, http.StatusOK, event)
}

// RemoveEvent handles DELETE /api/events/{id}.
func (s *APIServer) RemoveEvent(w http.ResponseWriter, r *http.Request) {
	if _, err := s.events.Remove(r.Context(), r.PathValue("id")); err != nil {
		s.writeInternalError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCrew handles GET /api/crew.
func (s *APIServer) ListCrew(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.crew.List(r.Context()))
}

// AddCrewMember handles POST /api/crew.
func (s *APIServer) AddCrewMember(w http.ResponseWriter, r *http.Request) {
	var params model.AddCrewMemberParams
	if err := decodeJSON(w, r, &params); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	member, err := s.crew.Add(r.Context(), &params)
	if err != nil {
		s.handleMutationError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, member)
}

// RemoveCrewMember handles DELETE /api/crew/{id}.
func (s *APIServer) RemoveCrewMember(w http.ResponseWriter, r *http.Request) {
	if _, err := s.crew.Remove(r.Context(), r.PathValue("id")); err != nil {
		s.writeInternalError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetWeather handles GET /api/weather?lat=&lng=. Without coordinates it
// uses the user's location, else the default map center.
func (s *APIServer) GetWeather(w http.ResponseWriter, r *http.Request) {
	loc := s.currentLocation()

	q := r.URL.Query()
	if q.Has("lat") || q.Has("lng") {
		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
		if latErr != nil || lngErr != nil {
			s.writeValidationError(w, model.ErrInvalidCoordinates)
			return
		}
		loc = model.Location{Lat: lat, Lng: lng}
	}

	weather, err := s.weather.Current(r.Context(), loc.Lat, loc.Lng)
	switch {
	case errors.Is(err, model.ErrInvalidCoordinates):
		s.writeValidationError(w, err)
	case err != nil:
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, weather)
	}
}

type locateRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Error string   `json:"error"`
}

type locateResponse struct {
	Location     model.Location `json:"location"`
	Weather      *model.Weather `json:"weather"`
	WeatherError string         `json:"weatherError,omitempty"`
}

// Locate handles POST /api/locate with the browser's geolocation outcome,
// then refreshes weather for the new position.
func (s *APIServer) Locate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	pos, err := s.view.Locate(r.Context(), req.locator())
	if err != nil {
		var locErr *mapview.LocateError
		if errors.As(err, &locErr) {
			s.writeError(w, http.StatusUnprocessableEntity, locErr.Message())
			return
		}
		s.writeValidationError(w, err)
		return
	}

	resp := locateResponse{Location: pos}
	weather, err := s.weather.Current(r.Context(), pos.Lat, pos.Lng)
	if err != nil {
		resp.WeatherError = render.WeatherErrorText
	} else {
		resp.Weather = weather
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (req locateRequest) locator() mapview.Locator {
	switch {
	case req.Error == "denied":
		return mapview.LocatorFunc(func(_ context.Context) (model.Location, error) {
			return model.Location{}, model.ErrGeolocationDenied
		})
	case req.Error != "" || req.Lat == nil || req.Lng == nil:
		return nil
	default:
		loc := model.Location{Lat: *req.Lat, Lng: *req.Lng}
		return mapview.LocatorFunc(func(_ context.Context) (model.Location, error) {
			return loc, nil
		})
	}
}

// GetMap returns the map model.
func (s *APIServer) GetMap(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.view.Snapshot())
}

type centerRequest struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom *int    `json:"zoom"`
}

// CenterMap handles POST /api/map/center. Zoom keeps its current level when
// omitted.
func (s *APIServer) CenterMap(w http.ResponseWriter, r *http.Request) {
	var req centerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	zoom := s.view.Snapshot().Zoom
	if req.Zoom != nil {
		zoom = *req.Zoom
	}

	if err := s.view.CenterOn(req.Lat, req.Lng, zoom); err != nil {
		s.writeValidationError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.view.Snapshot())
}

// ZoomToEvent handles POST /api/events/{id}/zoom, the marker popup's details
// action. Unknown identifiers answer 204 with the map unchanged.
func (s *APIServer) ZoomToEvent(w http.ResponseWriter, r *http.Request) {
	if !s.view.ZoomToEvent(r.PathValue("id")) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.writeJSON(w, http.StatusOK, s.view.Snapshot())
}

// RefreshMap rebuilds the event markers from the registry.
func (s *APIServer) RefreshMap(w http.ResponseWriter, r *http.Request) {
	s.view.RenderMarkers(s.events.List(r.Context()))
	s.writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *APIServer) handleMutationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidName),
		errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, model.ErrInvalidLocation),
		errors.Is(err, model.ErrInvalidCoordinates),
		errors.Is(err, model.ErrInvalidAvatar):
		s.writeValidationError(w, err)
	default:
		s.writeInternalError(w, r, err)
	}
}

func (s *APIServer) currentLocation() model.Location {
	if loc := s.state.UserLocation(); loc != nil {
		return *loc
	}
	return s.defaultCenter
}

// offset returns a value in [-jitterDegrees, jitterDegrees).
func (s *APIServer) offset() float64 {
	return (s.jitter()*2 - 1) * jitterDegrees
}
