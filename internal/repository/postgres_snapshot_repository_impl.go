package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresSnapshotRepositoryImpl implements SnapshotRepository using PostgreSQL.
type PostgresSnapshotRepositoryImpl struct {
	pool           *pgxpool.Pool
	transactionMgr TransactionManager
	key            string
	logger         *slog.Logger
}

// NewPostgresSnapshotRepositoryImpl creates a new PostgreSQL-backed SnapshotRepository.
func NewPostgresSnapshotRepositoryImpl(
	pool *pgxpool.Pool,
	transactionMgr TransactionManager,
	key string,
	logger *slog.Logger,
) *PostgresSnapshotRepositoryImpl {
	return &PostgresSnapshotRepositoryImpl{
		pool:           pool,
		transactionMgr: transactionMgr,
		key:            key,
		logger:         logger,
	}
}

// Migrate creates the snapshots table.
func (r *PostgresSnapshotRepositoryImpl) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to migrate postgres: %w", err)
	}

	return nil
}

// Load reads the snapshot row for the configured key.
func (r *PostgresSnapshotRepositoryImpl) Load(ctx context.Context) (*model.Snapshot, error) {
	var payload string

	err := querierFrom(ctx, r.pool).
		QueryRow(ctx, `SELECT payload FROM snapshots WHERE key = $1`, r.key).
		Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.EmptySnapshot(), nil
		}

		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return decodeOrEmpty(r.logger, "postgres:"+r.key, []byte(payload)), nil
}

// Save upserts the snapshot under a transaction-scoped advisory lock on the
// key, so concurrent API instances write one at a time.
func (r *PostgresSnapshotRepositoryImpl) Save(ctx context.Context, snapshot *model.Snapshot) error {
	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	return r.transactionMgr.WithTransaction(ctx, func(ctx context.Context) error {
		q := querierFrom(ctx, r.pool)

		if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, r.key); err != nil {
			return fmt.Errorf("failed to lock snapshot key: %w", err)
		}

		_, err := q.Exec(ctx,
			`INSERT INTO snapshots (key, payload, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
			r.key, string(data),
		)
		if err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}

		return nil
	})
}
