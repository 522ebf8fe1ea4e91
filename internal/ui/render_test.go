package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/ngmaloney/sunshine-terminal/internal/conditions"
	"github.com/ngmaloney/sunshine-terminal/internal/forecastlist"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
)

func TestMapLinks(t *testing.T) {
	tests := []struct {
		name    string
		record  models.ForecastRecord
		wantGeo string
		wantOSM string
	}{
		{
			name: "coordinates",
			record: models.ForecastRecord{
				LocationSetting: "94043",
				Coordinates:     &models.Coordinates{Latitude: 37.3861, Longitude: -122.0839},
			},
			wantGeo: "geo:37.3861,-122.0839",
			wantOSM: "https://www.openstreetmap.org/?mlat=37.3861&mlon=-122.0839#map=11/37.3861/-122.0839",
		},
		{
			name:    "location query",
			record:  models.ForecastRecord{LocationSetting: "London,UK"},
			wantGeo: "geo:0,0?q=London%2CUK",
			wantOSM: "https://www.openstreetmap.org/search?query=London%2CUK",
		},
		{
			name:    "query with spaces",
			record:  models.ForecastRecord{LocationSetting: "New York"},
			wantGeo: "geo:0,0?q=New+York",
			wantOSM: "https://www.openstreetmap.org/search?query=New+York",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo, osm := mapLinks(tt.record)
			if geo != tt.wantGeo {
				t.Errorf("geo = %q, want %q", geo, tt.wantGeo)
			}
			if osm != tt.wantOSM {
				t.Errorf("osm = %q, want %q", osm, tt.wantOSM)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Clear Sky", 14, "Clear Sky"},
		{"Heavy Intensity Rain", 10, "Heavy Int…"},
		{"Mañana", 6, "Mañana"},
		{"Mañana", 4, "Mañ…"},
		{"abc", 1, "a"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestRenderRow(t *testing.T) {
	art, _ := conditions.ArtFor(800)
	icon, _ := conditions.IconFor(500)

	today := &forecastlist.Row{
		Template:    forecastlist.TemplateToday,
		DateLabel:   "Today, June 24",
		Icon:        art,
		Description: "Clear Sky",
		High:        "24°",
		Low:         "12°",
	}
	future := &forecastlist.Row{
		Template:    forecastlist.TemplateFutureDay,
		Date:        time.Date(2026, time.June, 25, 0, 0, 0, 0, time.UTC),
		DateLabel:   "Tomorrow",
		Icon:        icon,
		Description: "Light Rain",
		High:        "19°",
		Low:         "11°",
	}

	out := renderRow(today, false)
	if lines := strings.Count(out, "\n") + 1; lines != todayRowHeight {
		t.Errorf("today row is %d lines, want %d", lines, todayRowHeight)
	}
	for _, want := range []string{"Today, June 24", "Clear Sky", "24°", "12°"} {
		if !strings.Contains(out, want) {
			t.Errorf("today row missing %q:\n%s", want, out)
		}
	}

	out = renderRow(future, true)
	if strings.Contains(out, "\n") {
		t.Errorf("future row should be one line:\n%s", out)
	}
	for _, want := range []string{"Tomorrow", "Light Rain", "19°", "11°"} {
		if !strings.Contains(out, want) {
			t.Errorf("future row missing %q: %s", want, out)
		}
	}
}

func TestRenderDetail(t *testing.T) {
	record := models.NewForecastRecord(time.Date(2026, time.June, 24, 0, 0, 0, 0, time.UTC),
		800, "clear sky", 24, 12, "Oslo", nil)

	out := renderDetail(record, "Wed Jun 24 - Clear Sky - 24°/12°")
	for _, want := range []string{"Wed Jun 24 - Clear Sky - 24°/12°", "800", "geo:0,0?q=Oslo"} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Coordinates") {
		t.Error("detail shows coordinates for a record without them")
	}
}
