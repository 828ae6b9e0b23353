package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/LooKaiJun/ShoreSquad/internal/metrics"
	"github.com/LooKaiJun/ShoreSquad/internal/model"
	"github.com/LooKaiJun/ShoreSquad/internal/state"
)

// Dependencies are shared by the registries.
type Dependencies struct {
	State       *state.State
	IDGenerator func() string
	Now         func() time.Time
	Listener    ChangeListener
	Publisher   ActivityPublisher
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

func (d Dependencies) withDefaults() Dependencies {
	if d.IDGenerator == nil {
		d.IDGenerator = NewID
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Listener == nil {
		d.Listener = nopListener{}
	}
	if d.Publisher == nil {
		d.Publisher = NopActivityPublisher{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

func (d Dependencies) publish(ctx context.Context, action model.ActivityAction, id, name string) {
	activity := &model.Activity{
		Action:     action,
		EntityID:   id,
		Name:       name,
		OccurredAt: d.Now(),
	}

	if err := d.Publisher.Publish(ctx, activity); err != nil {
		d.Logger.Warn("failed to publish activity",
			slog.String("action", string(action)),
			slog.String("entity_id", id),
			slog.String("error", err.Error()),
		)
	}
}

type nopListener struct{}

func (nopListener) EventsChanged([]model.Event) {}
func (nopListener) CrewChanged([]model.CrewMember) {}
