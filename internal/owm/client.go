// Package owm fetches daily forecasts from the OpenWeatherMap API.
package owm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ngmaloney/sunshine-terminal/internal/forecast"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
	"github.com/ngmaloney/sunshine-terminal/internal/observability"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the OpenWeatherMap daily forecast endpoint
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/forecast/daily"

// DefaultDays matches the fourteen day list the app has always shown
const DefaultDays = 14

// ErrInvalidAPIKey is returned for a missing key or a 401 from the API
var ErrInvalidAPIKey = errors.New("invalid API key")

// Options configures a Client. Zero values pick defaults.
type Options struct {
	APIKey     string
	BaseURL    string
	Days       int
	Timeout    time.Duration
	Backoff    BackoffConfig
	RateLimit  rate.Limit
	RateBurst  int
	Logger     *zap.Logger
	HTTPClient *http.Client
	// Zone the forecast dates are converted to; defaults to time.Local
	Zone *time.Location
}

// Client implements forecast.Fetcher against OpenWeatherMap
type Client struct {
	apiKey    string
	baseURL   string
	days      int
	userAgent string
	zone      *time.Location
	http      HTTPClientConfig
	breaker   *gobreaker.CircuitBreaker
	limiter   *rate.Limiter
	logger    *zap.Logger
}

var _ forecast.Fetcher = (*Client)(nil)

// NewClient creates an OpenWeatherMap client
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Days <= 0 {
		opts.Days = DefaultDays
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Backoff.InitialInterval <= 0 {
		opts.Backoff = BackoffConfig{MaxRetries: 2, InitialInterval: 250 * time.Millisecond, MaxInterval: 2 * time.Second}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Every(time.Second)
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 2
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Zone == nil {
		opts.Zone = time.Local
	}
	logger := observability.OrNop(opts.Logger)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		apiKey:    opts.APIKey,
		baseURL:   opts.BaseURL,
		days:      opts.Days,
		userAgent: "SunshineTerminal/1.0 (github.com/ngmaloney/sunshine-terminal)",
		zone:      opts.Zone,
		http:      HTTPClientConfig{Client: opts.HTTPClient, Backoff: opts.Backoff},
		breaker:   breaker,
		limiter:   rate.NewLimiter(opts.RateLimit, opts.RateBurst),
		logger:    logger,
	}, nil
}

// Fetch retrieves the daily forecast for location. The API is always asked
// for metric values; conversion happens at display time, so units only
// shows up in the logs.
func (c *Client) Fetch(ctx context.Context, location string, units models.UnitSystem) ([]models.ForecastRecord, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", forecast.ErrLocationNotFound)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		observability.UpstreamCallsTotal.WithLabelValues("rate_limited").Inc()
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := doRequestWithResilience(ctx, c.http, c.breaker, func() (*http.Request, error) {
		return c.buildRequest(ctx, location)
	})
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues(callStatus(err)).Inc()
		c.logger.Warn("forecast request failed",
			zap.String("location", location),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, c.mapError(err)
	}
	defer resp.Body.Close()
	observability.UpstreamCallsTotal.WithLabelValues("success").Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", forecast.ErrUpstream, err)
	}

	var apiResp dailyResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %v", forecast.ErrUpstream, err)
	}

	records := c.mapResponse(apiResp, location)
	if len(records) == 0 {
		return nil, forecast.ErrEmptyForecast
	}

	c.logger.Debug("forecast fetched",
		zap.String("location", location),
		zap.String("city", apiResp.City.Name),
		zap.Stringer("units", units),
		zap.Int("days", len(records)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return records, nil
}

func (c *Client) buildRequest(ctx context.Context, location string) (*http.Request, error) {
	baseURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("mode", "json")
	params.Set("units", "metric")
	params.Set("cnt", fmt.Sprintf("%d", c.days))
	params.Set("appid", c.apiKey)
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// mapError translates transport errors into the forecast sentinels
func (c *Client) mapError(err error) error {
	var statusErr *statusError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, errRateLimited):
		return fmt.Errorf("%w: %v", forecast.ErrRateLimited, err)
	case errors.As(err, &statusErr) && statusErr.code == http.StatusNotFound:
		return fmt.Errorf("%w: %v", forecast.ErrLocationNotFound, err)
	case errors.As(err, &statusErr) && statusErr.code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", forecast.ErrUpstream, ErrInvalidAPIKey)
	default:
		return fmt.Errorf("%w: %v", forecast.ErrUpstream, err)
	}
}

func callStatus(err error) string {
	switch {
	case errors.Is(err, errCircuitOpen):
		return "circuit_open"
	case errors.Is(err, errRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}

// Internal types for OpenWeatherMap API responses

type dailyResponse struct {
	City struct {
		Name  string `json:"name"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
	} `json:"city"`
	List []struct {
		Dt   int64 `json:"dt"`
		Temp struct {
			Max float64 `json:"max"`
			Min float64 `json:"min"`
		} `json:"temp"`
		Weather []struct {
			ID          int    `json:"id"`
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

func (c *Client) mapResponse(resp dailyResponse, location string) []models.ForecastRecord {
	coords := &models.Coordinates{Latitude: resp.City.Coord.Lat, Longitude: resp.City.Coord.Lon}
	if coords.Latitude == 0 && coords.Longitude == 0 {
		coords = nil
	}

	records := make([]models.ForecastRecord, 0, len(resp.List))
	for _, day := range resp.List {
		var conditionID int
		var description string
		if len(day.Weather) > 0 {
			conditionID = day.Weather[0].ID
			description = day.Weather[0].Description
		}
		date := time.Unix(day.Dt, 0).In(c.zone)
		records = append(records, models.NewForecastRecord(date, conditionID, description, day.Temp.Max, day.Temp.Min, location, coords))
	}
	return records
}
