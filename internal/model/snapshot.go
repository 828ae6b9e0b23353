package model

import "time"

// Snapshot is the persisted record: the event and crew collections.
type Snapshot struct {
	Events []Event      `json:"events"`
	Crew   []CrewMember `json:"crew"`
}

// EmptySnapshot returns a snapshot with non-nil empty collections.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Events: []Event{},
		Crew:   []CrewMember{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return EmptySnapshot()
	}

	out := &Snapshot{
		Events: make([]Event, len(s.Events)),
		Crew:   make([]CrewMember, len(s.Crew)),
	}
	copy(out.Events, s.Events)
	copy(out.Crew, s.Crew)

	return out
}

// Weather is the last fetched current-conditions reading. It is never persisted.
type Weather struct {
	Temp      int       `json:"temp"`
	Condition string    `json:"condition"`
	Icon      string    `json:"icon"`
	WindSpeed int       `json:"windSpeed"`
	Unit      string    `json:"unit"`
	WindUnit  string    `json:"windUnit"`
	Location  string    `json:"location"`
	FetchedAt time.Time `json:"fetchedAt"`
}
