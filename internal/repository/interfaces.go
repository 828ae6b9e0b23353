// Package repository provides data access interfaces and implementations.
package repository

import (
	"context"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

// SnapshotRepository persists the event and crew collections as one blob
// under a fixed key.
type SnapshotRepository interface {
	// Load returns the stored snapshot. Absent or malformed data yields an
	// empty snapshot and a nil error.
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, snapshot *model.Snapshot) error
}

// TransactionManager defines methods for database transaction management.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

var (
	_ SnapshotRepository = (*FileSnapshotRepositoryImpl)(nil)
	_ SnapshotRepository = (*SQLiteSnapshotRepositoryImpl)(nil)
	_ SnapshotRepository = (*PostgresSnapshotRepositoryImpl)(nil)
	_ SnapshotRepository = (*RedisSnapshotRepositoryImpl)(nil)
)
