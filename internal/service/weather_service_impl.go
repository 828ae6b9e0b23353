package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LooKaiJun/ShoreSquad/internal/metrics"
	"github.com/LooKaiJun/ShoreSquad/internal/model"
	"github.com/LooKaiJun/ShoreSquad/internal/state"
)

type weatherCacheEntry struct {
	weather model.Weather
	until   time.Time
}

// WeatherServiceImpl fetches weather through a WeatherFetcher and keeps
// successful readings for a short TTL. Failures are never cached and never
// answered with an older reading.
type WeatherServiceImpl struct {
	fetcher WeatherFetcher
	state   *state.State
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]weatherCacheEntry
}

// NewWeatherServiceImpl creates a new WeatherService implementation. A zero
// ttl disables caching.
func NewWeatherServiceImpl(
	fetcher WeatherFetcher,
	st *state.State,
	ttl time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *WeatherServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherServiceImpl{
		fetcher: fetcher,
		state:   st,
		ttl:     ttl,
		now:     time.Now,
		metrics: m,
		logger:  logger,
		cache:   make(map[string]weatherCacheEntry),
	}
}

// Current returns conditions at lat/lng and records them as the latest reading.
func (s *WeatherServiceImpl) Current(ctx context.Context, lat, lng float64) (*model.Weather, error) {
	if !model.ValidCoordinates(lat, lng) {
		return nil, model.ErrInvalidCoordinates
	}

	key := cacheKey(lat, lng)

	if w, ok := s.cached(key); ok {
		s.metrics.ObserveWeather("cache", "ok", 0)
		s.state.SetWeather(w)
		return &w, nil
	}

	start := s.now()
	w, err := s.fetcher.FetchCurrent(ctx, lat, lng)
	took := s.now().Sub(start)
	if err != nil {
		s.metrics.ObserveWeather("provider", "error", took)
		s.logger.Warn("weather fetch failed",
			slog.Float64("lat", lat),
			slog.Float64("lng", lng),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	s.metrics.ObserveWeather("provider", "ok", took)

	if s.ttl > 0 {
		s.mu.Lock()
		s.cache[key] = weatherCacheEntry{weather: *w, until: s.now().Add(s.ttl)}
		s.mu.Unlock()
	}

	s.state.SetWeather(*w)

	return w, nil
}

func (s *WeatherServiceImpl) cached(key string) (model.Weather, bool) {
	if s.ttl <= 0 {
		return model.Weather{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[key]
	if !ok || !s.now().Before(entry.until) {
		return model.Weather{}, false
	}

	return entry.weather, true
}

// cacheKey buckets coordinates to roughly 100m.
func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("%.3f,%.3f", lat, lng)
}
