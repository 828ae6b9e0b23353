package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/rueidis"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

// RedisSnapshotRepositoryImpl implements SnapshotRepository as a single Redis string key.
type RedisSnapshotRepositoryImpl struct {
	redisClient rueidis.Client
	key         string
	logger      *slog.Logger
}

// NewRedisSnapshotRepositoryImpl creates a new Redis-backed SnapshotRepository.
func NewRedisSnapshotRepositoryImpl(redisClient rueidis.Client, key string, logger *slog.Logger) *RedisSnapshotRepositoryImpl {
	return &RedisSnapshotRepositoryImpl{
		redisClient: redisClient,
		key:         key,
		logger:      logger,
	}
}

// Load reads the key. A nil reply means no prior data.
func (r *RedisSnapshotRepositoryImpl) Load(ctx context.Context) (*model.Snapshot, error) {
	cmd := r.redisClient.B().Get().Key(r.key).Build()

	payload, err := r.redisClient.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return model.EmptySnapshot(), nil
		}

		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return decodeOrEmpty(r.logger, "redis:"+r.key, []byte(payload)), nil
}

// Save overwrites the key with the encoded snapshot.
func (r *RedisSnapshotRepositoryImpl) Save(ctx context.Context, snapshot *model.Snapshot) error {
	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	cmd := r.redisClient.B().Set().Key(r.key).Value(string(data)).Build()
	if err := r.redisClient.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}
