package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreDriverFile, cfg.StoreDriver)
	assert.Equal(t, "shoresquad-data", cfg.StoreKey)
	assert.Equal(t, "fahrenheit", cfg.WeatherUnit)
	assert.Equal(t, 10*time.Second, cfg.WeatherTimeout)
	assert.InDelta(t, 37.7749, cfg.MapDefaultLat, 1e-9)
	assert.Equal(t, 12, cfg.MapDefaultZoom)
	assert.True(t, cfg.SeedDemoData)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("WEATHER_TEMPERATURE_UNIT", "celsius")
	t.Setenv("WEATHER_CACHE_TTL", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "celsius", cfg.WeatherUnit)
	assert.Equal(t, 30*time.Second, cfg.WeatherCacheTTL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown driver", key: "STORE_DRIVER", value: "mongo"},
		{name: "unknown unit", key: "WEATHER_TEMPERATURE_UNIT", value: "kelvin"},
		{name: "zero timeout", key: "WEATHER_TIMEOUT", value: "0s"},
		{name: "bad zoom", key: "MAP_DEFAULT_ZOOM", value: "30"},
		{name: "bad latitude", key: "MAP_DEFAULT_LAT", value: "120"},
		{name: "unparsable duration", key: "WEATHER_TIMEOUT", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
