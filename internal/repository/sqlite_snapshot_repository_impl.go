package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	// registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteSnapshotRepositoryImpl implements SnapshotRepository on SQLite.
type SQLiteSnapshotRepositoryImpl struct {
	db     *sql.DB
	key    string
	logger *slog.Logger
}

// OpenSQLite opens (creating when needed) the SQLite database at path.
// ":memory:" keeps the database in process.
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// One connection: writes are serialized and an in-memory database stays shared.
	db.SetMaxOpenConns(1)

	return db, nil
}

// NewSQLiteSnapshotRepositoryImpl creates a new SQLite-backed SnapshotRepository.
func NewSQLiteSnapshotRepositoryImpl(db *sql.DB, key string, logger *slog.Logger) *SQLiteSnapshotRepositoryImpl {
	return &SQLiteSnapshotRepositoryImpl{
		db:     db,
		key:    key,
		logger: logger,
	}
}

// Migrate creates the snapshots table.
func (r *SQLiteSnapshotRepositoryImpl) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to migrate sqlite: %w", err)
	}

	return nil
}

// Load reads the snapshot row for the configured key.
func (r *SQLiteSnapshotRepositoryImpl) Load(ctx context.Context) (*model.Snapshot, error) {
	var payload string

	err := r.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE key = ?`, r.key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.EmptySnapshot(), nil
		}

		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return decodeOrEmpty(r.logger, "sqlite:"+r.key, []byte(payload)), nil
}

// Save upserts the snapshot row for the configured key.
func (r *SQLiteSnapshotRepositoryImpl) Save(ctx context.Context, snapshot *model.Snapshot) error {
	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		r.key, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}
