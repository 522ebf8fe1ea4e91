// Package config loads settings from the YAML config file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/ngmaloney/sunshine-terminal/internal/database"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLocation       = "94043"
	DefaultAPIURL         = "https://api.openweathermap.org/data/2.5/forecast/daily"
	DefaultDays           = 14
	DefaultRequestTimeout = 10 * time.Second
	DefaultLanguage       = "en"
)

// Preference keys in the config file
const (
	keyLocation    = "location"
	keyUnits       = "units"
	keyTodayLayout = "use_today_layout"
	keyLanguage    = "language"
)

var validate = validator.New()

// Preferences are the settings the user can change from inside the app
type Preferences struct {
	Location       string            `validate:"required"`
	Units          models.UnitSystem `validate:"oneof=0 1"`
	UseTodayLayout bool
	Language       string `validate:"omitempty,bcp47_language_tag"`
}

// Overrides are preference values taken from the environment or the
// command line, keyed by their config file name.
type Overrides map[string]string

// Config holds application configuration
type Config struct {
	Path        string
	Preferences Preferences
	Overrides   Overrides

	APIKey         string
	APIURL         string        `validate:"required,url"`
	RequestTimeout time.Duration `validate:"gt=0"`
	Days           int           `validate:"min=1,max=16"`

	DBPath      string
	LogFile     string
	LogLevel    string `validate:"omitempty,oneof=debug info warn warning error"`
	MetricsAddr string `validate:"omitempty,hostname_port"`
}

type fileConfig struct {
	Location       string `yaml:"location"`
	Units          string `yaml:"units"`
	UseTodayLayout *bool  `yaml:"use_today_layout"`
	Language       string `yaml:"language"`

	API struct {
		URL     string `yaml:"url"`
		Key     string `yaml:"key"`
		Timeout string `yaml:"timeout"`
		Days    int    `yaml:"days"`
	} `yaml:"api"`

	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`

	Logging struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
}

// DefaultPath returns ~/.config/sunshine/config.yaml, or config.yaml in the
// working directory when the user config dir is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "sunshine", "config.yaml")
}

// DefaultLogPath returns ~/.cache/sunshine/sunshine.log
func DefaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join("data", "sunshine.log")
	}
	return filepath.Join(dir, "sunshine", "sunshine.log")
}

// Load reads the config file at path (DefaultPath when empty). A missing file
// is not an error: the defaults are used and the file is created on the
// first SavePreferences.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath()
	}

	var fc fileConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{Path: path, Overrides: Overrides{}}

	if v := firstNonEmpty(os.Getenv("SUNSHINE_LOCATION")); v != "" {
		cfg.Overrides[keyLocation] = v
	}
	if v := firstNonEmpty(os.Getenv("SUNSHINE_LANGUAGE")); v != "" {
		cfg.Overrides[keyLanguage] = v
	}

	cfg.Preferences.Location = firstNonEmpty(cfg.Overrides[keyLocation], fc.Location, DefaultLocation)

	envUnits := firstNonEmpty(os.Getenv("SUNSHINE_UNITS"))
	cfg.Preferences.Units, err = models.ParseUnitSystem(firstNonEmpty(envUnits, fc.Units, models.Metric.String()))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if envUnits != "" {
		cfg.Overrides[keyUnits] = cfg.Preferences.Units.String()
	}

	cfg.Preferences.UseTodayLayout = true
	if fc.UseTodayLayout != nil {
		cfg.Preferences.UseTodayLayout = *fc.UseTodayLayout
	}
	cfg.Preferences.Language = firstNonEmpty(cfg.Overrides[keyLanguage], fc.Language, DefaultLanguage)

	cfg.APIKey = firstNonEmpty(os.Getenv("OWM_API_KEY"), fc.API.Key)
	cfg.APIURL = firstNonEmpty(fc.API.URL, DefaultAPIURL)
	cfg.RequestTimeout = parseDuration(fc.API.Timeout, DefaultRequestTimeout)
	cfg.Days = fc.API.Days
	if cfg.Days == 0 {
		cfg.Days = DefaultDays
	}

	cfg.DBPath = firstNonEmpty(fc.Storage.DBPath, database.DefaultDBPath())
	cfg.LogFile = firstNonEmpty(fc.Logging.File, DefaultLogPath())
	cfg.LogLevel = strings.ToLower(firstNonEmpty(os.Getenv("LOG_LEVEL"), fc.Logging.Level, "info"))
	cfg.MetricsAddr = fc.Metrics.Addr

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFlags overrides the location and units from the command line.
// Empty values leave the loaded settings alone.
func (c *Config) ApplyFlags(location, units string) error {
	if c.Overrides == nil {
		c.Overrides = Overrides{}
	}
	if location = strings.TrimSpace(location); location != "" {
		c.Preferences.Location = location
		c.Overrides[keyLocation] = location
	}
	if units != "" {
		u, err := models.ParseUnitSystem(units)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		c.Preferences.Units = u
		c.Overrides[keyUnits] = u.String()
	}
	return c.Validate()
}

// Validate checks the configuration after flags have been applied
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SavePreferences writes prefs into the config file at path, keeping every
// other key already in the file. A preference still equal to its override
// came from the environment or a flag, so the file keeps its own value.
func SavePreferences(path string, prefs Preferences, overrides Overrides) error {
	if err := validate.Struct(prefs); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}

	doc := map[string]interface{}{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
		if doc == nil {
			doc = map[string]interface{}{}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("read config file: %w", err)
	}

	values := map[string]string{
		keyLocation: prefs.Location,
		keyUnits:    prefs.Units.String(),
		keyLanguage: prefs.Language,
	}
	for key, value := range values {
		if v, ok := overrides[key]; ok && v == value {
			continue
		}
		doc[key] = value
	}
	doc[keyTodayLayout] = prefs.UseTodayLayout

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// parseDuration parses a duration string, returning defaultVal on empty
// string, parse error or a non-positive value.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
