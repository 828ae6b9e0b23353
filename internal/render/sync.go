package render

import (
	"html/template"
	"log/slog"
	"sync"

	"github.com/LooKaiJun/ShoreSquad/internal/mapview"
	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

// Sync keeps the last rendered fragments and the map markers in step with
// the collections. It is registered as the registries' change listener.
type Sync struct {
	renderer *Renderer
	view     *mapview.View
	logger   *slog.Logger

	mu     sync.RWMutex
	events template.HTML
	crew   template.HTML
}

// NewSync creates a Sync and renders the initial collections.
func NewSync(r *Renderer, view *mapview.View, logger *slog.Logger, events []model.Event, crew []model.CrewMember) *Sync {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Sync{renderer: r, view: view, logger: logger}
	s.EventsChanged(events)
	s.CrewChanged(crew)

	return s
}

// EventsChanged re-renders the events list and the map markers.
func (s *Sync) EventsChanged(events []model.Event) {
	html, err := s.renderer.Events(events)
	if err != nil {
		s.logger.Error("failed to render events", slog.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	s.events = html
	s.mu.Unlock()

	if s.view != nil {
		s.view.RenderMarkers(events)
	}
}

// CrewChanged re-renders the crew roster.
func (s *Sync) CrewChanged(crew []model.CrewMember) {
	html, err := s.renderer.Crew(crew)
	if err != nil {
		s.logger.Error("failed to render crew", slog.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	s.crew = html
	s.mu.Unlock()
}

// EventsFragment returns the last rendered events list.
func (s *Sync) EventsFragment() template.HTML {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events
}

// CrewFragment returns the last rendered crew roster.
func (s *Sync) CrewFragment() template.HTML {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.crew
}
