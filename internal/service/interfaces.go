// Package service provides business logic layer implementations.
package service

import (
	"context"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

// EventService defines the event registry operations.
type EventService interface {
	Create(ctx context.Context, params *model.CreateEventParams) (*model.Event, error)
	// Join increments the attendee count. found is false, and nothing changes,
	// when no event has the identifier.
	Join(ctx context.Context, id string) (event *model.Event, found bool, err error)
	// Remove deletes the event. Removing an unknown identifier is a no-op.
	Remove(ctx context.Context, id string) (found bool, err error)
	List(ctx context.Context) []model.Event
}

// CrewService defines the crew roster operations.
type CrewService interface {
	Add(ctx context.Context, params *model.AddCrewMemberParams) (*model.CrewMember, error)
	Remove(ctx context.Context, id string) (found bool, err error)
	List(ctx context.Context) []model.CrewMember
}

// WeatherService returns current conditions for a coordinate.
type WeatherService interface {
	Current(ctx context.Context, lat, lng float64) (*model.Weather, error)
}

// WeatherFetcher is the outbound weather capability.
type WeatherFetcher interface {
	FetchCurrent(ctx context.Context, lat, lng float64) (*model.Weather, error)
}

// ActivityPublisher announces acknowledged mutations to other processes.
type ActivityPublisher interface {
	Publish(ctx context.Context, activity *model.Activity) error
}

// ChangeListener is told about collection changes after they are persisted
// so views can re-render. Calls arrive one per commit, in commit order.
type ChangeListener interface {
	EventsChanged(events []model.Event)
	CrewChanged(crew []model.CrewMember)
}
