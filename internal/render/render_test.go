package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LooKaiJun/ShoreSquad/internal/mapview"
	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func TestEvents_EmptyPlaceholder(t *testing.T) {
	r := newRenderer(t)

	for _, events := range [][]model.Event{nil, {}} {
		html, err := r.Events(events)
		require.NoError(t, err)
		assert.Contains(t, string(html), EmptyEventsTitle)
		assert.Contains(t, string(html), EmptyEventsAction)
		assert.Equal(t, 1, strings.Count(string(html), `class="event-card`))
	}
}

func TestEvents_OneCardPerEvent(t *testing.T) {
	r := newRenderer(t)
	events := []model.Event{
		{ID: "a", Name: "Beach Day", Date: "2025-01-01", Location: "Pier 1", Attendees: 2},
		{ID: "b", Name: "Lands End", Date: "2025-01-02", Location: "Trail", Attendees: 1},
	}

	html, err := r.Events(events)
	require.NoError(t, err)

	out := string(html)
	assert.Equal(t, 2, strings.Count(out, `class="event-card`))
	assert.Contains(t, out, "Beach Day")
	assert.Contains(t, out, "2 attending")
	assert.NotContains(t, out, EmptyEventsTitle)
}

func TestEvents_Idempotent(t *testing.T) {
	r := newRenderer(t)
	events := []model.Event{{ID: "a", Name: "Beach Day", Date: "2025-01-01", Location: "Pier 1", Attendees: 1}}

	first, err := r.Events(events)
	require.NoError(t, err)
	second, err := r.Events(events)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvents_EscapesUserText(t *testing.T) {
	r := newRenderer(t)

	html, err := r.Events([]model.Event{{ID: "x", Name: "<script>alert(1)</script>", Date: "2025-01-01", Location: "L"}})
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>")
	assert.Contains(t, string(html), "&lt;script&gt;")
}

func TestCrew(t *testing.T) {
	r := newRenderer(t)

	html, err := r.Crew(nil)
	require.NoError(t, err)
	assert.Contains(t, string(html), EmptyCrewTitle)
	assert.Contains(t, string(html), EmptyCrewAction)

	html, err = r.Crew([]model.CrewMember{{ID: "1", Name: "Alex", Avatar: "https://example.com/a.png", JoinedDate: "2024-11-05"}})
	require.NoError(t, err)
	assert.Contains(t, string(html), "Alex")
	assert.Contains(t, string(html), "Joined 2024-11-05")
	assert.NotContains(t, string(html), EmptyCrewTitle)
}

func TestWeather(t *testing.T) {
	r := newRenderer(t)
	w := &model.Weather{Temp: 64, Condition: "Partly Cloudy", Icon: "⛅", WindSpeed: 8, Unit: "°F", WindUnit: "mph"}

	html, err := r.Weather(w, nil)
	require.NoError(t, err)
	assert.Contains(t, string(html), "64°F")
	assert.Contains(t, string(html), "Partly Cloudy")
	assert.Contains(t, string(html), "Wind: 8 mph")

	html, err = r.Weather(w, errors.New("boom"))
	require.NoError(t, err)
	assert.Contains(t, string(html), WeatherErrorText)
	assert.NotContains(t, string(html), "64°F")
}

func TestPage(t *testing.T) {
	r := newRenderer(t)
	view := mapview.New(nil, mapview.Options{})

	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, PageData{Map: view.Snapshot()}))

	out := buf.String()
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, EmptyEventsTitle)
	assert.Contains(t, out, EmptyCrewTitle)
	assert.Contains(t, out, "openstreetmap")
}

func TestSync(t *testing.T) {
	r := newRenderer(t)
	view := mapview.New(nil, mapview.Options{})

	s := NewSync(r, view, nil, nil, nil)
	assert.Contains(t, string(s.EventsFragment()), EmptyEventsTitle)
	assert.Contains(t, string(s.CrewFragment()), EmptyCrewTitle)

	events := []model.Event{{ID: "a", Name: "Beach Day", Date: "2025-01-01", Location: "Pier 1", Lat: 1, Lng: 2, Attendees: 1}}
	s.EventsChanged(events)
	assert.Contains(t, string(s.EventsFragment()), "Beach Day")
	require.Len(t, view.Snapshot().Markers, 1)

	s.EventsChanged(nil)
	assert.Contains(t, string(s.EventsFragment()), EmptyEventsTitle)
	assert.Empty(t, view.Snapshot().Markers)

	s.CrewChanged([]model.CrewMember{{ID: "1", Name: "Alex", Avatar: "https://example.com/a.png"}})
	assert.Contains(t, string(s.CrewFragment()), "Alex")
}
