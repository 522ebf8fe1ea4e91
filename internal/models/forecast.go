package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrEmptySnapshot is returned when a snapshot would contain no records
	ErrEmptySnapshot = errors.New("snapshot has no forecast records")

	// ErrDuplicateDate is returned when two records fall on the same calendar day
	ErrDuplicateDate = errors.New("duplicate forecast date")

	// ErrMixedLocation is returned when a record belongs to another location
	ErrMixedLocation = errors.New("forecast record belongs to a different location")
)

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ForecastRecord is one day's weather summary for a location.
// Temperatures are always stored in Celsius.
type ForecastRecord struct {
	Date               time.Time    // local midnight
	WeatherConditionID int          // OpenWeatherMap condition code (e.g. 800 = clear)
	Description        string       // e.g. "light rain"
	HighTemp           float64      // Celsius
	LowTemp            float64      // Celsius
	LocationSetting    string       // location query the record was fetched for
	Coordinates        *Coordinates // optional
}

// NewForecastRecord builds a record with its date normalized to midnight
// in the date's own location.
func NewForecastRecord(date time.Time, conditionID int, description string, high, low float64, location string, coords *Coordinates) ForecastRecord {
	return ForecastRecord{
		Date:               MidnightOf(date),
		WeatherConditionID: conditionID,
		Description:        description,
		HighTemp:           high,
		LowTemp:            low,
		LocationSetting:    location,
		Coordinates:        coords,
	}
}

// MidnightOf truncates t to the start of its calendar day
func MidnightOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Snapshot is the complete, immutable set of forecast records for one
// location at one point in time. Build it with NewSnapshot.
type Snapshot struct {
	Location  string
	FetchedAt time.Time

	records []ForecastRecord
}

// NewSnapshot sorts records by date and checks that every record belongs
// to location and that no calendar day appears twice.
func NewSnapshot(location string, records []ForecastRecord, fetchedAt time.Time) (*Snapshot, error) {
	if len(records) == 0 {
		return nil, ErrEmptySnapshot
	}

	sorted := make([]ForecastRecord, len(records))
	copy(sorted, records)
	for i := range sorted {
		sorted[i].Date = MidnightOf(sorted[i].Date)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	s := &Snapshot{
		Location:  location,
		FetchedAt: fetchedAt,
		records:   sorted,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the snapshot invariants: ascending unique dates and a
// single location.
func (s *Snapshot) Validate() error {
	if s == nil || len(s.records) == 0 {
		return ErrEmptySnapshot
	}
	for i, r := range s.records {
		if r.LocationSetting != s.Location {
			return fmt.Errorf("%w: %q in snapshot for %q", ErrMixedLocation, r.LocationSetting, s.Location)
		}
		if i == 0 {
			continue
		}
		prev := s.records[i-1].Date
		if !r.Date.After(prev) {
			return fmt.Errorf("%w: %s", ErrDuplicateDate, r.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Len returns the number of records; a nil snapshot has none
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// At returns the record at position i
func (s *Snapshot) At(i int) (ForecastRecord, bool) {
	if s == nil || i < 0 || i >= len(s.records) {
		return ForecastRecord{}, false
	}
	return s.records[i], true
}

// Records returns a copy of the records in date order
func (s *Snapshot) Records() []ForecastRecord {
	if s == nil {
		return nil
	}
	out := make([]ForecastRecord, len(s.records))
	copy(out, s.records)
	return out
}
