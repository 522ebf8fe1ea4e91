package forecast

import (
	"context"
	"errors"
	"fmt"

	"github.com/ngmaloney/sunshine-terminal/internal/models"
)

// Errors a Fetcher wraps so the coordinator and the UI can tell failures apart
var (
	ErrLocationNotFound = errors.New("location not found")
	ErrUpstream         = errors.New("forecast service failure")
	ErrRateLimited      = errors.New("rate limited")
	ErrEmptyForecast    = errors.New("forecast service returned no days")
)

// ErrStaleResult is returned by Apply for a completion that was superseded
// by a newer request or arrived after Teardown. It never reaches the user.
var ErrStaleResult = errors.New("stale forecast result discarded")

// FetchError is the single failure type surfaced to the display layer
type FetchError struct {
	Location  string
	RequestID string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching forecast for %q: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrorCategory is a stable label for logs and metrics
type ErrorCategory string

const (
	CategoryLocationNotFound ErrorCategory = "location_not_found"
	CategoryRateLimited      ErrorCategory = "rate_limited"
	CategoryUpstream         ErrorCategory = "upstream"
	CategoryTimeout          ErrorCategory = "timeout"
	CategoryCanceled         ErrorCategory = "canceled"
	CategoryInvalidData      ErrorCategory = "invalid_data"
	CategoryUnknown          ErrorCategory = "unknown"
)

// Categorize maps a fetch error to an ErrorCategory
func Categorize(err error) ErrorCategory {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLocationNotFound):
		return CategoryLocationNotFound
	case errors.Is(err, ErrRateLimited):
		return CategoryRateLimited
	case errors.Is(err, ErrUpstream):
		return CategoryUpstream
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, context.Canceled):
		return CategoryCanceled
	case errors.Is(err, ErrEmptyForecast),
		errors.Is(err, models.ErrEmptySnapshot),
		errors.Is(err, models.ErrDuplicateDate),
		errors.Is(err, models.ErrMixedLocation):
		return CategoryInvalidData
	default:
		return CategoryUnknown
	}
}

// Describe turns a fetch error into the short message shown in the status line
func Describe(err error) string {
	var location string
	var fe *FetchError
	if errors.As(err, &fe) {
		location = fe.Location
	}

	switch Categorize(err) {
	case CategoryLocationNotFound:
		return fmt.Sprintf("Location %q was not found", location)
	case CategoryRateLimited:
		return "Forecast service is rate limiting requests, try again shortly"
	case CategoryUpstream:
		return "Forecast service is unavailable"
	case CategoryTimeout:
		return "Forecast request timed out"
	case CategoryInvalidData:
		return "Forecast service returned unusable data"
	default:
		return "Couldn't refresh the forecast"
	}
}
