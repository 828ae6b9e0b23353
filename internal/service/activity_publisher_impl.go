package service

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

// RedisActivityPublisherImpl appends activities to a Redis stream.
type RedisActivityPublisherImpl struct {
	redisClient rueidis.Client
	streamKey   string
}

// NewRedisActivityPublisherImpl creates a new ActivityPublisher backed by Redis Streams.
func NewRedisActivityPublisherImpl(redisClient rueidis.Client, streamKey string) *RedisActivityPublisherImpl {
	return &RedisActivityPublisherImpl{
		redisClient: redisClient,
		streamKey:   streamKey,
	}
}

// Publish adds one stream entry per activity.
func (p *RedisActivityPublisherImpl) Publish(ctx context.Context, activity *model.Activity) error {
	fields := activity.Fields()

	cmd := p.redisClient.B().Xadd().Key(p.streamKey).Id("*").
		FieldValue().FieldValue(model.ActivityFieldAction, fields[model.ActivityFieldAction]).
		FieldValue(model.ActivityFieldEntityID, fields[model.ActivityFieldEntityID]).
		FieldValue(model.ActivityFieldName, fields[model.ActivityFieldName]).
		FieldValue(model.ActivityFieldOccurredAt, fields[model.ActivityFieldOccurredAt]).
		Build()

	if err := p.redisClient.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to publish activity to %s: %w", p.streamKey, err)
	}

	return nil
}

// NopActivityPublisher drops every activity.
type NopActivityPublisher struct{}

// Publish implements ActivityPublisher.
func (NopActivityPublisher) Publish(context.Context, *model.Activity) error { return nil }
