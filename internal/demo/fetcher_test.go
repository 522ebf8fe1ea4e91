package demo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ngmaloney/sunshine-terminal/internal/conditions"
	"github.com/ngmaloney/sunshine-terminal/internal/forecast"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
)

func fixedNow() time.Time {
	return time.Date(2026, time.June, 24, 15, 30, 0, 0, time.UTC)
}

func TestFetcher_Fetch(t *testing.T) {
	f := &Fetcher{Days: 7, Now: fixedNow}

	records, err := f.Fetch(context.Background(), "94043", models.Metric)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("got %d records, want 7", len(records))
	}

	snap, err := models.NewSnapshot("94043", records, fixedNow())
	if err != nil {
		t.Fatalf("demo records do not form a valid snapshot: %v", err)
	}
	first, _ := snap.At(0)
	if !first.Date.Equal(time.Date(2026, time.June, 24, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first date = %v, want today at midnight", first.Date)
	}
	for _, r := range records {
		if r.HighTemp < r.LowTemp {
			t.Errorf("%v: high %v below low %v", r.Date, r.HighTemp, r.LowTemp)
		}
	}
}

func TestFetcher_Deterministic(t *testing.T) {
	f := &Fetcher{Days: 5, Now: fixedNow}

	a, _ := f.Fetch(context.Background(), "London,UK", models.Metric)
	b, _ := f.Fetch(context.Background(), "london,uk", models.Metric)
	for i := range a {
		if a[i].WeatherConditionID != b[i].WeatherConditionID || a[i].HighTemp != b[i].HighTemp {
			t.Errorf("day %d differs between calls", i)
		}
	}
}

func TestFetcher_DefaultsToFortnight(t *testing.T) {
	f := &Fetcher{Now: fixedNow}
	records, err := f.Fetch(context.Background(), "Boston", models.Imperial)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(records) != len(pattern) {
		t.Errorf("got %d records, want %d", len(records), len(pattern))
	}
}

func TestFetcher_UnknownLocation(t *testing.T) {
	f := &Fetcher{Now: fixedNow}
	for _, loc := range []string{"", "  ", "Nowhere"} {
		if _, err := f.Fetch(context.Background(), loc, models.Metric); !errors.Is(err, forecast.ErrLocationNotFound) {
			t.Errorf("Fetch(%q) error = %v, want ErrLocationNotFound", loc, err)
		}
	}
}

func TestFetcher_HonorsCancellation(t *testing.T) {
	f := NewFetcher(7, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Fetch(ctx, "94043", models.Metric); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestPattern_AllConditionsHaveIcons(t *testing.T) {
	for _, d := range pattern {
		if _, ok := conditions.IconFor(d.conditionID); !ok {
			t.Errorf("condition %d (%s) has no icon", d.conditionID, d.description)
		}
	}
}
