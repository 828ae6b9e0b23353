// Package weather fetches current conditions from the Open-Meteo forecast API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

// Open-Meteo docs: https://open-meteo.com/en/docs
// Endpoint used: /v1/forecast?latitude=..&longitude=..&current=temperature_2m,weather_code,wind_speed_10m

const (
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	currentFields  = "temperature_2m,weather_code,wind_speed_10m"
	locationLabel  = "Current Location"
)

// Client fetches current weather for a coordinate.
type Client struct {
	baseURL   string
	unit      string
	userAgent string
	client    *http.Client
	now       func() time.Time
}

type forecastResp struct {
	Current *struct {
		Temperature2m float64 `json:"temperature_2m"`
		WeatherCode   *int    `json:"weather_code"`
		WindSpeed10m  float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// NewClient builds a client. unit is "fahrenheit" or "celsius".
func NewClient(baseURL, unit, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if unit == "" {
		unit = "fahrenheit"
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		unit:      unit,
		userAgent: userAgent,
		client: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		now: time.Now,
	}
}

// FetchCurrent performs one request. Every failure wraps model.ErrWeatherUnavailable.
func (c *Client) FetchCurrent(ctx context.Context, lat, lng float64) (*model.Weather, error) {
	w, err := c.fetch(ctx, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrWeatherUnavailable, err)
	}
	return w, nil
}

func (c *Client) fetch(ctx context.Context, lat, lng float64) (*model.Weather, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("current", currentFields)
	q.Set("temperature_unit", c.unit)
	q.Set("wind_speed_unit", c.windUnitParam())

	u := fmt.Sprintf("%s?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("open-meteo: rate limited (%d)", resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("open-meteo: http %d", resp.StatusCode)
	}

	var data forecastResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("open-meteo: decode: %w", err)
	}
	if data.Current == nil {
		return nil, fmt.Errorf("open-meteo: missing 'current' object")
	}
	if data.Current.WeatherCode == nil {
		return nil, fmt.Errorf("open-meteo: missing 'weather_code'")
	}

	cond := ConditionFor(*data.Current.WeatherCode)
	return &model.Weather{
		Temp:      round(data.Current.Temperature2m),
		Condition: cond.Label,
		Icon:      cond.Icon,
		WindSpeed: round(data.Current.WindSpeed10m),
		Unit:      c.unitSymbol(),
		WindUnit:  c.windUnitLabel(),
		Location:  locationLabel,
		FetchedAt: c.now(),
	}, nil
}

func (c *Client) unitSymbol() string {
	if c.unit == "celsius" {
		return "°C"
	}
	return "°F"
}

func (c *Client) windUnitParam() string {
	if c.unit == "celsius" {
		return "kmh"
	}
	return "mph"
}

func (c *Client) windUnitLabel() string {
	if c.unit == "celsius" {
		return "km/h"
	}
	return "mph"
}

func round(v float64) int {
	return int(math.Round(v))
}
