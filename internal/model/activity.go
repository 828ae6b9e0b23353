package model

import (
	"errors"
	"fmt"
	"time"
)

// ActivityAction represents the kind of registry mutation.
type ActivityAction string

const (
	// ActivityEventCreated is recorded when an event is created.
	ActivityEventCreated ActivityAction = "event_created"
	// ActivityEventJoined is recorded when someone joins an event.
	ActivityEventJoined ActivityAction = "event_joined"
	// ActivityEventRemoved is recorded when an event is deleted.
	ActivityEventRemoved ActivityAction = "event_removed"
	// ActivityCrewAdded is recorded when a crew member is added.
	ActivityCrewAdded ActivityAction = "crew_added"
	// ActivityCrewRemoved is recorded when a crew member is removed.
	ActivityCrewRemoved ActivityAction = "crew_removed"
)

// Stream field names of an encoded activity.
const (
	ActivityFieldAction     = "action"
	ActivityFieldEntityID   = "entity_id"
	ActivityFieldName       = "name"
	ActivityFieldOccurredAt = "occurred_at"
)

// Activity describes one acknowledged registry mutation.
type Activity struct {
	Action     ActivityAction `json:"action"`
	EntityID   string         `json:"entity_id"`
	Name       string         `json:"name"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Fields encodes the activity as stream field values.
func (a *Activity) Fields() map[string]string {
	return map[string]string{
		ActivityFieldAction:     string(a.Action),
		ActivityFieldEntityID:   a.EntityID,
		ActivityFieldName:       a.Name,
		ActivityFieldOccurredAt: a.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

// ParseActivity decodes stream field values produced by Fields.
func ParseActivity(fields map[string]string) (*Activity, error) {
	action, ok := fields[ActivityFieldAction]
	if !ok || action == "" {
		return nil, errors.New("missing action in activity")
	}

	entityID, ok := fields[ActivityFieldEntityID]
	if !ok || entityID == "" {
		return nil, errors.New("missing entity_id in activity")
	}

	activity := &Activity{
		Action:   ActivityAction(action),
		EntityID: entityID,
		Name:     fields[ActivityFieldName],
	}

	if raw := fields[ActivityFieldOccurredAt]; raw != "" {
		occurredAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse occurred_at: %w", err)
		}
		activity.OccurredAt = occurredAt
	}

	return activity, nil
}
