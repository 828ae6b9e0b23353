// Package main provides the ShoreSquad HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/rueidis"

	"github.com/LooKaiJun/ShoreSquad/internal/auth"
	"github.com/LooKaiJun/ShoreSquad/internal/commands"
	"github.com/LooKaiJun/ShoreSquad/internal/config"
	"github.com/LooKaiJun/ShoreSquad/internal/handler"
	"github.com/LooKaiJun/ShoreSquad/internal/logger"
	"github.com/LooKaiJun/ShoreSquad/internal/mapview"
	"github.com/LooKaiJun/ShoreSquad/internal/metrics"
	"github.com/LooKaiJun/ShoreSquad/internal/model"
	"github.com/LooKaiJun/ShoreSquad/internal/render"
	"github.com/LooKaiJun/ShoreSquad/internal/repository"
	"github.com/LooKaiJun/ShoreSquad/internal/service"
	"github.com/LooKaiJun/ShoreSquad/internal/state"
	"github.com/LooKaiJun/ShoreSquad/internal/weather"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
	exitCode          = 1
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := commands.HashPassword(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitCode)
		}
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	loggerInstance := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(loggerInstance)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, loggerInstance); err != nil {
		slog.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}
}

// closers run in reverse order on shutdown.
type closers []func()

func (c *closers) add(fn func()) { *c = append(*c, fn) }

func (c *closers) closeAll() {
	for i := len(*c) - 1; i >= 0; i-- {
		(*c)[i]()
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	var cleanup closers
	defer cleanup.closeAll()

	var redisClient rueidis.Client
	if cfg.StoreDriver == config.StoreDriverRedis || cfg.ActivityEnabled {
		client, err := rueidis.NewClient(rueidis.ClientOption{
			InitAddress: []string{cfg.RedisAddr},
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		cleanup.add(client.Close)
		redisClient = client
	}

	repo, err := setupRepository(ctx, cfg, redisClient, log, &cleanup)
	if err != nil {
		return err
	}

	st := state.New(repo, log)
	if err := st.Initialize(ctx); err != nil {
		return err
	}

	renderer, err := render.NewRenderer()
	if err != nil {
		return err
	}

	view := mapview.New(st, mapview.Options{
		Lat:     cfg.MapDefaultLat,
		Lng:     cfg.MapDefaultLng,
		Zoom:    cfg.MapDefaultZoom,
		TileURL: cfg.MapTileURL,
	})
	renderSync := render.NewSync(renderer, view, log, st.Events(), st.Crew())
	m := metrics.New()

	var publisher service.ActivityPublisher = service.NopActivityPublisher{}
	if cfg.ActivityEnabled {
		publisher = service.NewRedisActivityPublisherImpl(redisClient, cfg.ActivityStream)
	}

	deps := service.Dependencies{
		State:     st,
		Listener:  renderSync,
		Publisher: publisher,
		Metrics:   m,
		Logger:    log,
	}
	eventService := service.NewEventServiceImpl(deps)
	crewService := service.NewCrewServiceImpl(deps)

	weatherClient := weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherUnit, cfg.UserAgent, cfg.WeatherTimeout)
	weatherService := service.NewWeatherServiceImpl(weatherClient, st, cfg.WeatherCacheTTL, m, log)

	if cfg.SeedDemoData {
		seed, err := service.LoadSeed(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := service.Seed(ctx, seed, eventService, crewService, log); err != nil {
			return err
		}
	}

	creds, err := auth.LoadCredentials(cfg.AuthFile)
	if err != nil {
		return err
	}
	if creds == nil {
		log.Warn("no auth file found, mutating routes are unprotected", slog.String("auth_file", cfg.AuthFile))
	} else {
		log.Info("basic auth enabled", slog.String("user", creds.User))
	}

	server := handler.NewAPIServer(handler.Options{
		Events:        eventService,
		Crew:          crewService,
		Weather:       weatherService,
		State:         st,
		View:          view,
		Renderer:      renderer,
		Sync:          renderSync,
		Auth:          auth.NewMiddleware(creds, log),
		Metrics:       m,
		Logger:        log,
		DefaultCenter: model.Location{Lat: cfg.MapDefaultLat, Lng: cfg.MapDefaultLng},
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server",
			slog.String("service", "api"),
			slog.String("port", cfg.Port),
			slog.String("store", cfg.StoreDriver),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	// Flush once more so the snapshot matches memory on exit.
	return st.Persist(shutdownCtx)
}

func setupRepository(
	ctx context.Context,
	cfg *config.Config,
	redisClient rueidis.Client,
	log *slog.Logger,
	cleanup *closers,
) (repository.SnapshotRepository, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		db, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		cleanup.add(func() { _ = db.Close() })

		repo := repository.NewSQLiteSnapshotRepositoryImpl(db, cfg.StoreKey, log)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	case config.StoreDriverPostgres:
		dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		cleanup.add(dbPool.Close)

		transactionMgr := repository.NewTransactionManagerImpl(dbPool)
		repo := repository.NewPostgresSnapshotRepositoryImpl(dbPool, transactionMgr, cfg.StoreKey, log)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	case config.StoreDriverRedis:
		return repository.NewRedisSnapshotRepositoryImpl(redisClient, cfg.StoreKey, log), nil

	default:
		return repository.NewFileSnapshotRepositoryImpl(cfg.DataFile, log), nil
	}
}
