package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LooKaiJun/ShoreSquad/internal/logger"
	"github.com/LooKaiJun/ShoreSquad/internal/model"
	"github.com/LooKaiJun/ShoreSquad/internal/state"
)

type memoryRepo struct {
	mu       sync.Mutex
	snapshot *model.Snapshot
	saves    int
	failSave bool
}

func (m *memoryRepo) Load(context.Context) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.Clone(), nil
}

func (m *memoryRepo) Save(_ context.Context, s *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("disk full")
	}
	m.saves++
	m.snapshot = s.Clone()
	return nil
}

func (m *memoryRepo) persisted() *model.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.Clone()
}

type recordingListener struct {
	eventRenders int
	crewRenders  int
	lastEvents   []model.Event
	lastCrew     []model.CrewMember
}

func (l *recordingListener) EventsChanged(events []model.Event) {
	l.eventRenders++
	l.lastEvents = events
}

func (l *recordingListener) CrewChanged(crew []model.CrewMember) {
	l.crewRenders++
	l.lastCrew = crew
}

type recordingPublisher struct {
	activities []*model.Activity
	err        error
}

func (p *recordingPublisher) Publish(_ context.Context, a *model.Activity) error {
	p.activities = append(p.activities, a)
	return p.err
}

type fixture struct {
	repo      *memoryRepo
	state     *state.State
	listener  *recordingListener
	publisher *recordingPublisher
	deps      Dependencies
}

var fixedNow = time.Date(2024, 11, 5, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := &memoryRepo{snapshot: model.EmptySnapshot()}
	st := state.New(repo, logger.Discard())
	require.NoError(t, st.Initialize(context.Background()))

	counter := 0
	f := &fixture{
		repo:      repo,
		state:     st,
		listener:  &recordingListener{},
		publisher: &recordingPublisher{},
	}
	f.deps = Dependencies{
		State: st,
		IDGenerator: func() string {
			counter++
			return fmt.Sprintf("id-%d", counter)
		},
		Now:       func() time.Time { return fixedNow },
		Listener:  f.listener,
		Publisher: f.publisher,
		Logger:    logger.Discard(),
	}

	return f
}
