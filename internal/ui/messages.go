package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/sunshine-terminal/internal/config"
	"github.com/ngmaloney/sunshine-terminal/internal/forecast"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
)

// Message types for async operations

// refreshRequestedMsg asks Update to start a fetch with the current preferences
type refreshRequestedMsg struct{}

// forecastCompletedMsg carries a finished fetch from the coordinator
type forecastCompletedMsg struct {
	completion forecast.Completion
}

// cachedForecastMsg is sent when the last saved forecast has been loaded
type cachedForecastMsg struct {
	snapshot *models.Snapshot
	err      error
}

// forecastSavedMsg is sent when a snapshot has been written to the cache
type forecastSavedMsg struct {
	err error
}

// preferencesSavedMsg is sent when preferences have been written to disk
type preferencesSavedMsg struct {
	err error
}

// clearStatusMsg hides the status line if it is still the one identified by id
type clearStatusMsg struct {
	id int
}

func requestRefresh() tea.Msg {
	return refreshRequestedMsg{}
}

// waitForCompletion blocks until the coordinator delivers a completion. It
// returns nil once the coordinator is torn down, which ends the loop.
func waitForCompletion(c *forecast.Coordinator) tea.Cmd {
	return func() tea.Msg {
		select {
		case comp := <-c.Completions():
			return forecastCompletedMsg{completion: comp}
		case <-c.Done():
			return nil
		}
	}
}

// loadCachedForecast reads the last saved forecast for location
func loadCachedForecast(cache SnapshotCache, location string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		snapshot, err := cache.LoadSnapshot(ctx, location)
		return cachedForecastMsg{snapshot: snapshot, err: err}
	}
}

// saveForecast writes the snapshot to the cache in the background
func saveForecast(cache SnapshotCache, snapshot *models.Snapshot) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return forecastSavedMsg{err: cache.SaveSnapshot(ctx, snapshot)}
	}
}

// savePreferences writes prefs back to the config file
func savePreferences(path string, prefs config.Preferences, overrides config.Overrides) tea.Cmd {
	return func() tea.Msg {
		return preferencesSavedMsg{err: config.SavePreferences(path, prefs, overrides)}
	}
}

func clearStatusAfter(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}
