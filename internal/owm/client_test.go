package owm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ngmaloney/sunshine-terminal/internal/forecast"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
	"golang.org/x/time/rate"
)

const dailyJSON = `{
  "city": {"name": "Mountain View", "coord": {"lat": 37.3861, "lon": -122.0839}},
  "cnt": 3,
  "list": [
    {"dt": 1782295200, "temp": {"max": 24.6, "min": 12.1}, "weather": [{"id": 800, "description": "sky is clear"}]},
    {"dt": 1782381600, "temp": {"max": 22.0, "min": 11.4}, "weather": [{"id": 500, "description": "light rain"}]},
    {"dt": 1782468000, "temp": {"max": 19.3, "min": 10.0}, "weather": [{"id": 803, "description": "broken clouds"}]}
  ]
}`

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:    "test-key-123456",
		BaseURL:   serverURL,
		Days:      3,
		Backoff:   BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
		RateLimit: rate.Inf,
		Zone:      time.UTC,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestNewClient(t *testing.T) {
	if _, err := NewClient(Options{}); !errors.Is(err, ErrInvalidAPIKey) {
		t.Errorf("NewClient() without key error = %v, want ErrInvalidAPIKey", err)
	}

	client, err := NewClient(Options{APIKey: "abc"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %s, want %s", client.baseURL, DefaultBaseURL)
	}
	if client.days != DefaultDays {
		t.Errorf("days = %d, want %d", client.days, DefaultDays)
	}
	if client.http.Client.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", client.http.Client.Timeout)
	}
	if client.userAgent == "" {
		t.Error("userAgent should not be empty")
	}
}

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "94043" {
			t.Errorf("q = %q, want 94043", q.Get("q"))
		}
		if q.Get("units") != "metric" {
			t.Errorf("units = %q, want metric", q.Get("units"))
		}
		if q.Get("cnt") != "3" {
			t.Errorf("cnt = %q, want 3", q.Get("cnt"))
		}
		if q.Get("mode") != "json" {
			t.Errorf("mode = %q, want json", q.Get("mode"))
		}
		if q.Get("appid") != "test-key-123456" {
			t.Errorf("appid = %q", q.Get("appid"))
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("User-Agent header not set")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(dailyJSON))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	records, err := client.Fetch(context.Background(), "94043", models.Imperial)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	first := records[0]
	wantDate := time.Date(2026, time.June, 24, 0, 0, 0, 0, time.UTC)
	if !first.Date.Equal(wantDate) {
		t.Errorf("Date = %v, want %v", first.Date, wantDate)
	}
	if first.WeatherConditionID != 800 || first.Description != "sky is clear" {
		t.Errorf("condition = %d %q, want 800 sky is clear", first.WeatherConditionID, first.Description)
	}
	if first.HighTemp != 24.6 || first.LowTemp != 12.1 {
		t.Errorf("temps = %v/%v, want 24.6/12.1 (always Celsius)", first.HighTemp, first.LowTemp)
	}
	if first.LocationSetting != "94043" {
		t.Errorf("LocationSetting = %q, want the query", first.LocationSetting)
	}
	if first.Coordinates == nil || first.Coordinates.Latitude != 37.3861 {
		t.Errorf("Coordinates = %+v, want city coordinates", first.Coordinates)
	}

	if _, err := models.NewSnapshot("94043", records, time.Now()); err != nil {
		t.Errorf("fetched records do not form a valid snapshot: %v", err)
	}
}

func TestClient_FetchErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   error
		wantCalls int32
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"cod":"404","message":"city not found"}`, wantErr: forecast.ErrLocationNotFound, wantCalls: 1},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrInvalidAPIKey, wantCalls: 1},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: forecast.ErrRateLimited, wantCalls: 3},
		{name: "server error", status: http.StatusBadGateway, wantErr: forecast.ErrUpstream, wantCalls: 3},
		{name: "bad json", status: http.StatusOK, body: `{"list": [`, wantErr: forecast.ErrUpstream, wantCalls: 1},
		{name: "empty list", status: http.StatusOK, body: `{"city": {"name": "x"}, "list": []}`, wantErr: forecast.ErrEmptyForecast, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			_, err := client.Fetch(context.Background(), "nowhere", models.Metric)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.wantErr)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("server called %d times, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestClient_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(dailyJSON))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	records, err := client.Fetch(context.Background(), "94043", models.Metric)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(records) != 3 || calls.Load() != 2 {
		t.Errorf("got %d records after %d calls, want 3 after 2", len(records), calls.Load())
	}
}

func TestClient_CircuitOpens(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	// Two fetches with three attempts each trip the breaker after five failures
	for i := 0; i < 2; i++ {
		_, _ = client.Fetch(ctx, "94043", models.Metric)
	}
	before := calls.Load()

	_, err := client.Fetch(ctx, "94043", models.Metric)
	if !errors.Is(err, forecast.ErrUpstream) {
		t.Errorf("Fetch() error = %v, want ErrUpstream", err)
	}
	if calls.Load() != before {
		t.Errorf("open breaker still let %d calls through", calls.Load()-before)
	}
}

func TestClient_FetchCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, "94043", models.Metric)
	if forecast.Categorize(err) != forecast.CategoryTimeout {
		t.Errorf("Fetch() error = %v, want a timeout", err)
	}
}

func TestClient_EmptyLocation(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:0")
	if _, err := client.Fetch(context.Background(), "", models.Metric); !errors.Is(err, forecast.ErrLocationNotFound) {
		t.Errorf("Fetch(\"\") error = %v, want ErrLocationNotFound", err)
	}
}
