package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
	"github.com/LooKaiJun/ShoreSquad/internal/state"
)

const entityEvent = "event"

// EventServiceImpl implements EventService over the application state.
type EventServiceImpl struct {
	deps Dependencies
}

// NewEventServiceImpl creates a new EventService implementation.
func NewEventServiceImpl(deps Dependencies) *EventServiceImpl {
	return &EventServiceImpl{deps: deps.withDefaults()}
}

// Create validates params, appends a new event with one attendee and persists it.
func (s *EventServiceImpl) Create(ctx context.Context, params *model.CreateEventParams) (*model.Event, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		s.deps.Metrics.ObserveMutation(entityEvent, "create", "invalid")
		return nil, err
	}

	event := model.Event{
		ID:          s.deps.IDGenerator(),
		Name:        params.Name,
		Date:        params.Date,
		Location:    params.Location,
		Lat:         params.Lat,
		Lng:         params.Lng,
		Attendees:   1,
		CreatedDate: s.deps.Now().Format(model.DateLayout),
	}

	err := s.deps.State.Update(ctx, func(d *state.Data) error {
		d.Events = append(d.Events, event)
		return nil
	}, s.committed)
	if err != nil {
		s.deps.Metrics.ObserveMutation(entityEvent, "create", "error")
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.afterChange(ctx, "create", model.ActivityEventCreated, event.ID, event.Name)
	s.deps.Logger.Info("event created", slog.String("event_id", event.ID), slog.String("name", event.Name))

	return &event, nil
}

// Join increments the attendee count of the matching event.
func (s *EventServiceImpl) Join(ctx context.Context, id string) (*model.Event, bool, error) {
	var joined model.Event

	err := s.deps.State.Update(ctx, func(d *state.Data) error {
		for i := range d.Events {
			if d.Events[i].ID == id {
				d.Events[i].Attendees++
				joined = d.Events[i]
				return nil
			}
		}
		return model.ErrEventNotFound
	}, s.committed)
	if errors.Is(err, model.ErrEventNotFound) {
		s.deps.Metrics.ObserveMutation(entityEvent, "join", "noop")
		return nil, false, nil
	}
	if err != nil {
		s.deps.Metrics.ObserveMutation(entityEvent, "join", "error")
		return nil, false, fmt.Errorf("failed to join event: %w", err)
	}

	s.afterChange(ctx, "join", model.ActivityEventJoined, joined.ID, joined.Name)

	return &joined, true, nil
}

// Remove deletes the matching event.
func (s *EventServiceImpl) Remove(ctx context.Context, id string) (bool, error) {
	var removed model.Event

	err := s.deps.State.Update(ctx, func(d *state.Data) error {
		for i := range d.Events {
			if d.Events[i].ID == id {
				removed = d.Events[i]
				d.Events = append(d.Events[:i], d.Events[i+1:]...)
				return nil
			}
		}
		return model.ErrEventNotFound
	}, s.committed)
	if errors.Is(err, model.ErrEventNotFound) {
		s.deps.Metrics.ObserveMutation(entityEvent, "remove", "noop")
		return false, nil
	}
	if err != nil {
		s.deps.Metrics.ObserveMutation(entityEvent, "remove", "error")
		return false, fmt.Errorf("failed to remove event: %w", err)
	}

	s.afterChange(ctx, "remove", model.ActivityEventRemoved, removed.ID, removed.Name)

	return true, nil
}

// List returns the events in creation order.
func (s *EventServiceImpl) List(_ context.Context) []model.Event {
	return s.deps.State.Events()
}

// committed runs inside State.Update so listeners see commits in order.
func (s *EventServiceImpl) committed(d state.Data) {
	s.deps.Metrics.SetEntityCount(entityEvent, len(d.Events))
	s.deps.Listener.EventsChanged(d.Events)
}

func (s *EventServiceImpl) afterChange(ctx context.Context, op string, action model.ActivityAction, id, name string) {
	s.deps.Metrics.ObserveMutation(entityEvent, op, "ok")
	s.deps.publish(ctx, action, id, name)
}
