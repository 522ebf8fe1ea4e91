package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/sunshine-terminal/internal/config"
	"github.com/ngmaloney/sunshine-terminal/internal/demo"
	"github.com/ngmaloney/sunshine-terminal/internal/forecast"
	"github.com/ngmaloney/sunshine-terminal/internal/forecastlist"
	"github.com/ngmaloney/sunshine-terminal/internal/format"
	"github.com/ngmaloney/sunshine-terminal/internal/observability"
	"github.com/ngmaloney/sunshine-terminal/internal/owm"
	"github.com/ngmaloney/sunshine-terminal/internal/store"
	"github.com/ngmaloney/sunshine-terminal/internal/ui"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file (default ~/.config/sunshine/config.yaml)")
	location := flag.String("location", "", "Location to forecast (zip code or city, e.g. 94043 or London,UK)")
	units := flag.String("units", "", "Unit system: metric or imperial")
	demoMode := flag.Bool("demo", false, "Use generated forecasts instead of OpenWeatherMap")
	printMode := flag.Bool("print", false, "Print the forecast and exit instead of starting the UI")
	flag.Parse()

	if err := run(*configPath, *location, *units, *demoMode, *printMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, location, units string, demoMode, printMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyFlags(location, units); err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer observability.Flush(logger)

	if cfg.MetricsAddr != "" {
		srv := observability.ServeMetrics(cfg.MetricsAddr, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	fetcher, err := newFetcher(cfg, demoMode, logger)
	if err != nil {
		return err
	}

	st := store.New()
	coord := forecast.New(fetcher, st,
		forecast.WithLogger(logger),
		forecast.WithFetchTimeout(cfg.RequestTimeout),
	)
	defer coord.Wait()
	defer coord.Teardown()

	adapter := forecastlist.New(
		forecastlist.WithLogger(logger),
		forecastlist.WithLocale(format.NewLocale(cfg.Preferences.Language)),
		forecastlist.WithUnits(cfg.Preferences.Units),
		forecastlist.WithTodayLayout(cfg.Preferences.UseTodayLayout),
	)

	logger.Info("starting",
		zap.String("location", cfg.Preferences.Location),
		zap.Stringer("units", cfg.Preferences.Units),
		zap.Bool("demo", demoMode),
	)

	if printMode {
		return printForecast(os.Stdout, coord, st, adapter, cfg.Preferences, cfg.RequestTimeout)
	}

	m := ui.NewModel(ui.Deps{
		Coordinator: coord,
		Store:       st,
		Adapter:     adapter,
		Preferences: cfg.Preferences,
		Cache:       store.NewRepository(cfg.DBPath),
		ConfigPath:  cfg.Path,
		Overrides:   cfg.Overrides,
		Logger:      logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}

func newFetcher(cfg *config.Config, demoMode bool, logger *zap.Logger) (forecast.Fetcher, error) {
	if demoMode {
		return demo.NewFetcher(cfg.Days, 400*time.Millisecond), nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no OpenWeatherMap API key: set OWM_API_KEY or api.key in %s, or run with -demo", cfg.Path)
	}
	return owm.NewClient(owm.Options{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.APIURL,
		Days:    cfg.Days,
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
	})
}
