// Package demo provides an offline forecast source with mock data, for
// trying the UI without an API key.
package demo

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/ngmaloney/sunshine-terminal/internal/forecast"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
)

type day struct {
	conditionID int
	description string
	high, low   float64
}

// A fortnight of plausible weather; locations start at different offsets
var pattern = []day{
	{800, "sky is clear", 24.6, 12.1},
	{801, "few clouds", 23.2, 12.8},
	{500, "light rain", 19.4, 11.0},
	{502, "heavy intensity rain", 16.1, 10.2},
	{803, "broken clouds", 18.7, 9.6},
	{800, "sky is clear", 21.9, 10.4},
	{211, "thunderstorm", 22.5, 14.3},
	{741, "fog", 15.8, 8.9},
	{600, "light snow", 1.2, -4.5},
	{804, "overcast clouds", 12.0, 5.3},
	{300, "light intensity drizzle", 14.4, 7.7},
	{802, "scattered clouds", 17.6, 8.1},
	{800, "sky is clear", 26.3, 13.9},
	{501, "moderate rain", 18.2, 11.6},
}

// Fetcher returns deterministic mock forecasts after a short delay
type Fetcher struct {
	Days    int
	Latency time.Duration
	Now     func() time.Time
}

var _ forecast.Fetcher = (*Fetcher)(nil)

// NewFetcher creates a demo fetcher returning days records per call
func NewFetcher(days int, latency time.Duration) *Fetcher {
	return &Fetcher{Days: days, Latency: latency, Now: time.Now}
}

// Fetch implements forecast.Fetcher. The location "nowhere" is never found,
// which makes the error path easy to try by hand.
func (f *Fetcher) Fetch(ctx context.Context, location string, _ models.UnitSystem) ([]models.ForecastRecord, error) {
	if f.Latency > 0 {
		timer := time.NewTimer(f.Latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	trimmed := strings.TrimSpace(location)
	if trimmed == "" || strings.EqualFold(trimmed, "nowhere") {
		return nil, fmt.Errorf("%w: %q", forecast.ErrLocationNotFound, location)
	}

	days := f.Days
	if days <= 0 {
		days = len(pattern)
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	offset := locationOffset(trimmed)
	coords := &models.Coordinates{
		Latitude:  float64(offset%180) - 90 + 0.5,
		Longitude: float64(offset%360) - 180 + 0.5,
	}

	start := models.MidnightOf(now())
	records := make([]models.ForecastRecord, days)
	for i := range records {
		d := pattern[(offset+i)%len(pattern)]
		records[i] = models.NewForecastRecord(start.AddDate(0, 0, i), d.conditionID, d.description, d.high, d.low, location, coords)
	}
	return records, nil
}

func locationOffset(location string) int {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(location)))
	return int(h.Sum32() % 1000)
}
