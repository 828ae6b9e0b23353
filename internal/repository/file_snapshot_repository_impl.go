package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

const (
	tmpSuffix       = ".tmp"
	filePermissions = 0o644
	dirPermissions  = 0o755
)

// FileSnapshotRepositoryImpl implements SnapshotRepository on a JSON file.
type FileSnapshotRepositoryImpl struct {
	path   string
	logger *slog.Logger
}

// NewFileSnapshotRepositoryImpl creates a new file-backed SnapshotRepository.
func NewFileSnapshotRepositoryImpl(path string, logger *slog.Logger) *FileSnapshotRepositoryImpl {
	return &FileSnapshotRepositoryImpl{
		path:   path,
		logger: logger,
	}
}

// Load reads the snapshot file. A missing file is treated as no prior data.
func (r *FileSnapshotRepositoryImpl) Load(_ context.Context) (*model.Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.EmptySnapshot(), nil
		}

		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	return decodeOrEmpty(r.logger, r.path, data), nil
}

// Save writes the snapshot to a temp file and renames it into place.
func (r *FileSnapshotRepositoryImpl) Save(_ context.Context, snapshot *model.Snapshot) error {
	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), dirPermissions); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmpFile := r.path + tmpSuffix
	if err := os.WriteFile(tmpFile, data, filePermissions); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := os.Rename(tmpFile, r.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return nil
}
