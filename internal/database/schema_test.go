package database

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache", "forecast.db")
	if err := EnsureForecastSchema(dbPath); err != nil {
		t.Fatalf("EnsureForecastSchema() error = %v", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, dbPath
}

const insertDay = `INSERT INTO forecast_days
	(location_setting, date, weather_condition_id, description, high_temp, low_temp, latitude, longitude, fetched_at)
	VALUES (?, ?, 800, 'clear sky', 21.0, 12.0, ?, ?, '2026-06-24T08:00:00Z')`

func TestEnsureForecastSchema_KeepsRows(t *testing.T) {
	db, dbPath := openTestDB(t)
	if _, err := db.Exec(insertDay, "94043", "2026-06-24", 37.39, -122.08); err != nil {
		t.Fatalf("insert error = %v", err)
	}

	if err := EnsureForecastSchema(dbPath); err != nil {
		t.Fatalf("second EnsureForecastSchema() error = %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM forecast_days`).Scan(&count); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("rows = %d after re-running the schema, want 1", count)
	}
}

func TestEnsureForecastSchema_Constraints(t *testing.T) {
	tests := []struct {
		name     string
		location string
		date     string
		lat, lon interface{}
		wantErr  bool
	}{
		{"same day other location", "London,UK", "2026-06-24", 51.51, -0.13, false},
		{"next day", "94043", "2026-06-25", 37.39, -122.08, false},
		{"coordinates optional", "Oslo", "2026-06-24", nil, nil, false},
		{"duplicate day", "94043", "2026-06-24", 37.39, -122.08, true},
	}

	db, _ := openTestDB(t)
	if _, err := db.Exec(insertDay, "94043", "2026-06-24", 37.39, -122.08); err != nil {
		t.Fatalf("seed insert error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Exec(insertDay, tt.location, tt.date, tt.lat, tt.lon)
			if (err != nil) != tt.wantErr {
				t.Errorf("insert error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
