package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultDBPath returns the forecast cache location under the user cache dir,
// falling back to ./data when no cache dir is known
func DefaultDBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join("data", "sunshine.db")
	}
	return filepath.Join(dir, "sunshine", "sunshine.db")
}

// EnsureForecastSchema creates the database file and the forecast_days table
// if they do not exist yet.
func EnsureForecastSchema(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database to ensure schema: %w", err)
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS forecast_days (
			location_setting TEXT NOT NULL,
			date TEXT NOT NULL,
			weather_condition_id INTEGER NOT NULL,
			description TEXT NOT NULL,
			high_temp REAL NOT NULL,
			low_temp REAL NOT NULL,
			latitude REAL,
			longitude REAL,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (location_setting, date)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating forecast_days table: %w", err)
	}

	return nil
}
