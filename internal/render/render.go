// Package render turns application state into HTML.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/LooKaiJun/ShoreSquad/internal/mapview"
	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Text of the placeholders and the weather error card.
const (
	EmptyEventsTitle  = "No events yet"
	EmptyEventsAction = "Create Event"
	EmptyCrewTitle    = "Add Your First Member"
	EmptyCrewAction   = "+ Add Member"
	WeatherErrorText  = "Unable to fetch weather data. Please refresh or try again later."
)

// PageData is everything the full page shows.
type PageData struct {
	Events     []model.Event
	Crew       []model.CrewMember
	Weather    *model.Weather
	WeatherErr error
	Map        mapview.Snapshot
}

// WeatherCard selects the weather card variant.
func (d PageData) WeatherCard() WeatherView {
	return WeatherView{Weather: d.Weather, Failed: d.WeatherErr != nil}
}

// WeatherView is the input of the weather card.
type WeatherView struct {
	Weather *model.Weather
	Failed  bool
}

// Renderer renders fragments and the page. Every call produces the full
// markup for its input.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Events renders the events list, or its placeholder when empty.
func (r *Renderer) Events(events []model.Event) (template.HTML, error) {
	return r.fragment("events", events)
}

// Crew renders the crew roster, or its placeholder when empty.
func (r *Renderer) Crew(crew []model.CrewMember) (template.HTML, error) {
	return r.fragment("crew", crew)
}

// Weather renders the weather card. A non-nil fetchErr renders the error
// card regardless of w.
func (r *Renderer) Weather(w *model.Weather, fetchErr error) (template.HTML, error) {
	return r.fragment("weather", WeatherView{Weather: w, Failed: fetchErr != nil})
}

// Page writes the full document to w.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	if data.Events == nil {
		data.Events = []model.Event{}
	}
	if data.Crew == nil {
		data.Crew = []model.CrewMember{}
	}

	if err := r.tmpl.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	return nil
}

func (r *Renderer) fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}

	return template.HTML(buf.String()), nil
}
