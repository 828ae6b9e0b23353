// Package main provides the activity feed consumer. It reads registry
// activities from a Redis stream and logs them.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/rueidis"

	"github.com/LooKaiJun/ShoreSquad/internal/config"
	"github.com/LooKaiJun/ShoreSquad/internal/logger"
	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

const (
	redisBlockTimeout = 1000 // milliseconds
	readBatchSize     = 10
	errorRetryDelay   = 1 * time.Second
	exitCode          = 1
)

// ActivityHandler processes activity stream entries.
type ActivityHandler struct {
	redisClient rueidis.Client
	streamKey   string
	groupName   string
	logger      *slog.Logger
}

// NewActivityHandler creates a new activity handler instance.
func NewActivityHandler(redisClient rueidis.Client, streamKey, groupName string, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		redisClient: redisClient,
		streamKey:   streamKey,
		groupName:   groupName,
		logger:      logger,
	}
}

// HandleActivity records one activity.
func (h *ActivityHandler) HandleActivity(_ context.Context, activity *model.Activity) error {
	h.logger.Info("activity",
		slog.String("action", string(activity.Action)),
		slog.String("entity_id", activity.EntityID),
		slog.String("name", activity.Name),
		slog.Time("occurred_at", activity.OccurredAt),
	)

	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	loggerInstance := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(loggerInstance)

	redisClient, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.RedisAddr},
	})
	if err != nil {
		slog.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := NewActivityHandler(redisClient, cfg.ActivityStream, cfg.ConsumerGroup, loggerInstance)
	handler.createConsumerGroup(ctx)

	slog.Info("starting activity consumer",
		slog.String("service", "consumer"),
		slog.String("stream", cfg.ActivityStream),
		slog.String("group", cfg.ConsumerGroup),
		slog.String("consumer", cfg.ConsumerName),
	)

	handler.run(ctx, cfg.ConsumerName)
}

func (h *ActivityHandler) createConsumerGroup(ctx context.Context) {
	cmd := h.redisClient.B().XgroupCreate().Key(h.streamKey).Group(h.groupName).Id("0").Mkstream().Build()
	if err := h.redisClient.Do(ctx, cmd).Error(); err != nil {
		h.logger.Info("consumer group creation result (may already exist)", slog.String("error", err.Error()))
	}
}

func (h *ActivityHandler) run(ctx context.Context, consumerName string) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("consumer stopped")
			return
		default:
			if err := h.consume(ctx, consumerName); err != nil && ctx.Err() == nil {
				h.logger.Error("error consuming activities", slog.String("error", err.Error()))
				time.Sleep(errorRetryDelay)
			}
		}
	}
}

func (h *ActivityHandler) consume(ctx context.Context, consumerName string) error {
	readCmd := h.redisClient.B().Xreadgroup().Group(h.groupName, consumerName).
		Count(readBatchSize).
		Block(redisBlockTimeout).
		Streams().
		Key(h.streamKey).
		Id(">").
		Build()

	streams, err := h.redisClient.Do(ctx, readCmd).AsXRead()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil // block timeout
		}
		return err
	}

	for _, entries := range streams {
		for _, entry := range entries {
			h.process(ctx, entry)
		}
	}

	return nil
}

func (h *ActivityHandler) process(ctx context.Context, entry rueidis.XRangeEntry) {
	activity, err := model.ParseActivity(entry.FieldValues)
	if err != nil {
		// Malformed entries are acknowledged so they are not redelivered forever.
		h.logger.Warn("skipping malformed activity",
			slog.String("message_id", entry.ID),
			slog.String("error", err.Error()),
		)
	} else if err := h.HandleActivity(ctx, activity); err != nil {
		h.logger.Error("failed to handle activity",
			slog.String("message_id", entry.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	ackCmd := h.redisClient.B().Xack().Key(h.streamKey).Group(h.groupName).Id(entry.ID).Build()
	if err := h.redisClient.Do(ctx, ackCmd).Error(); err != nil {
		h.logger.Error("failed to ACK activity",
			slog.String("message_id", entry.ID),
			slog.String("error", err.Error()),
		)
	}
}
