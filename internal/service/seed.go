package service

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedEvent is one event entry of a seed file.
type SeedEvent struct {
	Name     string  `yaml:"name"`
	Date     string  `yaml:"date"`
	Location string  `yaml:"location"`
	Lat      float64 `yaml:"lat"`
	Lng      float64 `yaml:"lng"`
}

// SeedMember is one crew entry of a seed file.
type SeedMember struct {
	Name   string `yaml:"name"`
	Avatar string `yaml:"avatar"`
}

// SeedData is the demo content created on first start.
type SeedData struct {
	Events []SeedEvent  `yaml:"events"`
	Crew   []SeedMember `yaml:"crew"`
}

// LoadSeed reads a seed file, or the built-in demo data when path is empty.
func LoadSeed(path string) (*SeedData, error) {
	b := defaultSeed
	if path != "" {
		var err error
		b, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
	}

	var sd SeedData
	if err := yaml.Unmarshal(b, &sd); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return &sd, nil
}

// Seed creates the seed events when there are no events, and the seed crew
// when the roster is empty. Each collection is checked on its own.
func Seed(ctx context.Context, sd *SeedData, events EventService, crew CrewService, logger *slog.Logger) error {
	if len(events.List(ctx)) == 0 {
		for _, e := range sd.Events {
			_, err := events.Create(ctx, &model.CreateEventParams{
				Name:     e.Name,
				Date:     e.Date,
				Location: e.Location,
				Lat:      e.Lat,
				Lng:      e.Lng,
			})
			if err != nil {
				return fmt.Errorf("failed to seed event %q: %w", e.Name, err)
			}
		}
		logger.Info("seeded demo events", slog.Int("count", len(sd.Events)))
	}

	if len(crew.List(ctx)) == 0 {
		for _, m := range sd.Crew {
			if _, err := crew.Add(ctx, &model.AddCrewMemberParams{Name: m.Name, Avatar: m.Avatar}); err != nil {
				return fmt.Errorf("failed to seed crew member %q: %w", m.Name, err)
			}
		}
		logger.Info("seeded demo crew", slog.Int("count", len(sd.Crew)))
	}

	return nil
}
