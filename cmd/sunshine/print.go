package main

import (
	"fmt"
	"io"
	"time"

	"github.com/ngmaloney/sunshine-terminal/internal/config"
	"github.com/ngmaloney/sunshine-terminal/internal/forecast"
	"github.com/ngmaloney/sunshine-terminal/internal/forecastlist"
	"github.com/ngmaloney/sunshine-terminal/internal/store"
)

// printForecast fetches once and writes one line per day to w
func printForecast(w io.Writer, coord *forecast.Coordinator, st *store.Store, adapter *forecastlist.Adapter, prefs config.Preferences, timeout time.Duration) error {
	unsubscribe := st.Subscribe(adapter)
	defer unsubscribe()

	req := coord.RequestRefresh(prefs.Location, prefs.Units)

	var comp forecast.Completion
	select {
	case comp = <-coord.Completions():
	case <-time.After(timeout + time.Second):
		return fmt.Errorf("forecast for %s: %w", req.Location, forecast.ErrUpstream)
	}

	if _, err := coord.Apply(comp); err != nil {
		return fmt.Errorf("%s: %w", forecast.Describe(err), err)
	}

	fmt.Fprintf(w, "%s (%s)\n\n", prefs.Location, prefs.Units)
	var row *forecastlist.Row
	for pos := 0; pos < adapter.RowCount(); pos++ {
		row = adapter.BindRow(pos, row)
		if row.Template == forecastlist.TemplateToday {
			for _, line := range row.Icon.Lines {
				fmt.Fprintf(w, "  %s\n", line)
			}
			fmt.Fprintf(w, "%s  %s  %s/%s\n\n", row.DateLabel, row.Description, row.High, row.Low)
			continue
		}
		icon := ""
		if len(row.Icon.Lines) > 0 {
			icon = row.Icon.Lines[0]
		}
		fmt.Fprintf(w, "%-2s %-16s %-28s %5s %5s\n", icon, row.DateLabel, row.Description, row.High, row.Low)
	}
	return nil
}
