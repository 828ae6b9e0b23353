package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
	"github.com/LooKaiJun/ShoreSquad/internal/state"
)

const entityCrew = "crew"

// CrewServiceImpl implements CrewService over the application state.
type CrewServiceImpl struct {
	deps Dependencies
}

// NewCrewServiceImpl creates a new CrewService implementation.
func NewCrewServiceImpl(deps Dependencies) *CrewServiceImpl {
	return &CrewServiceImpl{deps: deps.withDefaults()}
}

// Add validates params and appends a new crew member joined today.
func (s *CrewServiceImpl) Add(ctx context.Context, params *model.AddCrewMemberParams) (*model.CrewMember, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		s.deps.Metrics.ObserveMutation(entityCrew, "add", "invalid")
		return nil, err
	}

	member := model.CrewMember{
		ID:         s.deps.IDGenerator(),
		Name:       params.Name,
		Avatar:     params.Avatar,
		JoinedDate: s.deps.Now().Format(model.DateLayout),
	}

	err := s.deps.State.Update(ctx, func(d *state.Data) error {
		d.Crew = append(d.Crew, member)
		return nil
	}, s.committed)
	if err != nil {
		s.deps.Metrics.ObserveMutation(entityCrew, "add", "error")
		return nil, fmt.Errorf("failed to add crew member: %w", err)
	}

	s.afterChange(ctx, "add", model.ActivityCrewAdded, member.ID, member.Name)
	s.deps.Logger.Info("crew member added", slog.String("member_id", member.ID), slog.String("name", member.Name))

	return &member, nil
}

// Remove deletes the matching crew member.
func (s *CrewServiceImpl) Remove(ctx context.Context, id string) (bool, error) {
	var removed model.CrewMember

	err := s.deps.State.Update(ctx, func(d *state.Data) error {
		for i := range d.Crew {
			if d.Crew[i].ID == id {
				removed = d.Crew[i]
				d.Crew = append(d.Crew[:i], d.Crew[i+1:]...)
				return nil
			}
		}
		return model.ErrCrewMemberNotFound
	}, s.committed)
	if errors.Is(err, model.ErrCrewMemberNotFound) {
		s.deps.Metrics.ObserveMutation(entityCrew, "remove", "noop")
		return false, nil
	}
	if err != nil {
		s.deps.Metrics.ObserveMutation(entityCrew, "remove", "error")
		return false, fmt.Errorf("failed to remove crew member: %w", err)
	}

	s.afterChange(ctx, "remove", model.ActivityCrewRemoved, removed.ID, removed.Name)

	return true, nil
}

// List returns the crew in the order members were added.
func (s *CrewServiceImpl) List(_ context.Context) []model.CrewMember {
	return s.deps.State.Crew()
}

// committed runs inside State.Update so listeners see commits in order.
func (s *CrewServiceImpl) committed(d state.Data) {
	s.deps.Metrics.SetEntityCount(entityCrew, len(d.Crew))
	s.deps.Listener.CrewChanged(d.Crew)
}

func (s *CrewServiceImpl) afterChange(ctx context.Context, op string, action model.ActivityAction, id, name string) {
	s.deps.Metrics.ObserveMutation(entityCrew, op, "ok")
	s.deps.publish(ctx, action, id, name)
}
