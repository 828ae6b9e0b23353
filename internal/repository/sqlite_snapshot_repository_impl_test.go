package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LooKaiJun/ShoreSquad/internal/logger"
)

func newTestSQLiteRepo(t *testing.T) *SQLiteSnapshotRepositoryImpl {
	t.Helper()

	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSQLiteSnapshotRepositoryImpl(db, "shoresquad-data", logger.Discard())
	require.NoError(t, repo.Migrate(context.Background()))

	return repo
}

func TestSQLiteSnapshotRepository_EmptyWhenNoRow(t *testing.T) {
	repo := newTestSQLiteRepo(t)

	snapshot, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot.Events)
	assert.Empty(t, snapshot.Crew)
}

func TestSQLiteSnapshotRepository_RoundTripAndUpsert(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSnapshot()))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), loaded)

	updated := sampleSnapshot()
	updated.Crew = nil
	require.NoError(t, repo.Save(ctx, updated))

	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Crew)
	assert.Len(t, loaded.Events, 2)
}

func TestSQLiteSnapshotRepository_CorruptPayloadIsEmpty(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, payload, updated_at) VALUES (?, ?, ?)`,
		"shoresquad-data", "garbage", "2024-01-01T00:00:00Z",
	)
	require.NoError(t, err)

	snapshot, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Events)
}

func TestSQLiteSnapshotRepository_KeysAreIsolated(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	other := NewSQLiteSnapshotRepositoryImpl(repo.db, "other-key", logger.Discard())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSnapshot()))

	snapshot, err := other.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Events)
}
