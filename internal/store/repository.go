package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ngmaloney/sunshine-terminal/internal/database"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
	_ "modernc.org/sqlite"
)

// ErrNoCachedSnapshot is returned when nothing was saved for a location
var ErrNoCachedSnapshot = errors.New("no cached forecast for location")

const dateLayout = "2006-01-02"

// Repository mirrors snapshots to SQLite so the last known forecast can be
// shown at startup before the first fetch lands.
type Repository struct {
	dbPath string
}

// NewRepository creates a repository backed by the database at dbPath
func NewRepository(dbPath string) *Repository {
	return &Repository{dbPath: dbPath}
}

func (r *Repository) open() (*sql.DB, error) {
	// Ensure schema exists (safe to call multiple times)
	if err := database.EnsureForecastSchema(r.dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", r.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// SaveSnapshot replaces every stored day for the snapshot's location with
// the snapshot's records in one transaction.
func (r *Repository) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	db, err := r.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM forecast_days WHERE location_setting = ?", snapshot.Location); err != nil {
		return fmt.Errorf("clearing cached forecast: %w", err)
	}

	query := `
		INSERT INTO forecast_days (location_setting, date, weather_condition_id, description, high_temp, low_temp, latitude, longitude, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	fetchedAt := snapshot.FetchedAt.UTC().Format(time.RFC3339Nano)
	for _, rec := range snapshot.Records() {
		var lat, lon sql.NullFloat64
		if rec.Coordinates != nil {
			lat = sql.NullFloat64{Float64: rec.Coordinates.Latitude, Valid: true}
			lon = sql.NullFloat64{Float64: rec.Coordinates.Longitude, Valid: true}
		}

		_, err := tx.ExecContext(ctx, query,
			rec.LocationSetting,
			rec.Date.Format(dateLayout),
			rec.WeatherConditionID,
			rec.Description,
			rec.HighTemp,
			rec.LowTemp,
			lat,
			lon,
			fetchedAt,
		)
		if err != nil {
			return fmt.Errorf("saving forecast day %s: %w", rec.Date.Format(dateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing forecast: %w", err)
	}
	return nil
}

// LoadSnapshot rebuilds the cached snapshot for location. Dates come back
// as local midnights.
func (r *Repository) LoadSnapshot(ctx context.Context, location string) (*models.Snapshot, error) {
	db, err := r.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT date, weather_condition_id, description, high_temp, low_temp, latitude, longitude, fetched_at
		FROM forecast_days
		WHERE location_setting = ?
		ORDER BY date
	`, location)
	if err != nil {
		return nil, fmt.Errorf("querying cached forecast: %w", err)
	}
	defer rows.Close()

	var (
		records   []models.ForecastRecord
		fetchedAt time.Time
	)
	for rows.Next() {
		var (
			date, fetched string
			conditionID   int
			description   string
			high, low     float64
			lat, lon      sql.NullFloat64
		)
		if err := rows.Scan(&date, &conditionID, &description, &high, &low, &lat, &lon, &fetched); err != nil {
			return nil, fmt.Errorf("scanning forecast day: %w", err)
		}

		day, err := time.ParseInLocation(dateLayout, date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parsing forecast date %q: %w", date, err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, fetched); err == nil {
			fetchedAt = ts
		}

		var coords *models.Coordinates
		if lat.Valid && lon.Valid {
			coords = &models.Coordinates{Latitude: lat.Float64, Longitude: lon.Float64}
		}
		records = append(records, models.NewForecastRecord(day, conditionID, description, high, low, location, coords))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading cached forecast: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrNoCachedSnapshot
	}
	return models.NewSnapshot(location, records, fetchedAt)
}
