// Package state holds the session's application state and keeps the
// persisted snapshot in step with it.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
	"github.com/LooKaiJun/ShoreSquad/internal/repository"
)

// Data is the mutable part of the state handed to Update callbacks.
type Data struct {
	Events []model.Event
	Crew   []model.CrewMember
}

// State is the single owner of events, crew, user location and the last
// weather reading. Registries receive it explicitly.
type State struct {
	mu   sync.RWMutex
	repo repository.SnapshotRepository
	log  *slog.Logger

	data         Data
	userLocation *model.Location
	weather      *model.Weather
}

// New creates an empty state bound to repo.
func New(repo repository.SnapshotRepository, logger *slog.Logger) *State {
	return &State{
		repo: repo,
		log:  logger,
		data: Data{
			Events: []model.Event{},
			Crew:   []model.CrewMember{},
		},
	}
}

// Initialize populates the collections from the repository.
func (s *State) Initialize(ctx context.Context) error {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = Data{
		Events: snapshot.Events,
		Crew:   snapshot.Crew,
	}

	s.log.Info("state initialized",
		slog.Int("events", len(s.data.Events)),
		slog.Int("crew", len(s.data.Crew)),
	)

	return nil
}

// Persist saves the current collections.
func (s *State) Persist(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.persistLocked(ctx, s.data)
}

// Update applies fn to a working copy and persists it before returning. The
// copy replaces the live data only when both fn and the save succeed, so a
// failed save leaves memory and storage agreeing.
//
// Each committed hook runs after the swap while the lock is still held, so
// hooks observe commits in order. Hooks must not call back into State.
func (s *State) Update(ctx context.Context, fn func(d *Data) error, committed ...func(d Data)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := cloneData(s.data)
	if err := fn(&working); err != nil {
		return err
	}

	if err := s.persistLocked(ctx, working); err != nil {
		return err
	}

	s.data = working

	for _, hook := range committed {
		hook(cloneData(working))
	}

	return nil
}

func (s *State) persistLocked(ctx context.Context, d Data) error {
	if err := s.repo.Save(ctx, &model.Snapshot{Events: d.Events, Crew: d.Crew}); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}

	return nil
}

// Events returns a copy of the event collection.
func (s *State) Events() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, len(s.data.Events))
	copy(out, s.data.Events)

	return out
}

// Crew returns a copy of the crew collection.
func (s *State) Crew() []model.CrewMember {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CrewMember, len(s.data.Crew))
	copy(out, s.data.Crew)

	return out
}

// UserLocation returns the last known user location, or nil.
func (s *State) UserLocation() *model.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.userLocation == nil {
		return nil
	}

	loc := *s.userLocation

	return &loc
}

// SetUserLocation records the user's position. It is not persisted.
func (s *State) SetUserLocation(loc model.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userLocation = &loc
}

// Weather returns the last successful weather reading, or nil.
func (s *State) Weather() *model.Weather {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.weather == nil {
		return nil
	}

	w := *s.weather

	return &w
}

// SetWeather records a weather reading. It is not persisted.
func (s *State) SetWeather(w model.Weather) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.weather = &w
}

func cloneData(d Data) Data {
	out := Data{
		Events: make([]model.Event, len(d.Events)),
		Crew:   make([]model.CrewMember, len(d.Crew)),
	}
	copy(out.Events, d.Events)
	copy(out.Crew, d.Crew)

	return out
}
