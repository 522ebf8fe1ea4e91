// Package forecastlist projects the current forecast snapshot onto display
// rows. Position 0 can use a larger "today" template; every other row uses
// the compact future-day template.
package forecastlist

import (
	"fmt"
	"time"

	"github.com/ngmaloney/sunshine-terminal/internal/conditions"
	"github.com/ngmaloney/sunshine-terminal/internal/format"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
	"github.com/ngmaloney/sunshine-terminal/internal/observability"
	"go.uber.org/zap"
)

// Template selects the row layout
type Template int

const (
	TemplateToday Template = iota
	TemplateFutureDay
)

func (t Template) String() string {
	if t == TemplateToday {
		return "today"
	}
	return "future_day"
}

// Row is a reusable row handle. The adapter only ever writes the fields
// below; the display owns everything else about it.
type Row struct {
	Template    Template
	Position    int
	Date        time.Time
	DateLabel   string
	Icon        conditions.Icon
	IconLabel   string
	Description string
	High        string
	Low         string
}

// Option configures an Adapter
type Option func(*Adapter)

// WithLogger sets the logger used for unmapped condition warnings
func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) { a.logger = observability.OrNop(logger) }
}

// WithClock overrides the clock used to label days
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// WithLocale sets the language for labels and descriptions
func WithLocale(loc format.Locale) Option {
	return func(a *Adapter) { a.locale = loc }
}

// WithUnits sets the display unit system
func WithUnits(units models.UnitSystem) Option {
	return func(a *Adapter) { a.units = units }
}

// WithTodayLayout sets whether position 0 uses the today template
func WithTodayLayout(enabled bool) Option {
	return func(a *Adapter) { a.useTodayLayout = enabled }
}

// Adapter binds snapshot records to rows. Like the store it observes, it
// belongs to the UI goroutine.
type Adapter struct {
	snapshot       *models.Snapshot
	useTodayLayout bool
	units          models.UnitSystem
	locale         format.Locale
	now            func() time.Time
	logger         *zap.Logger
	onChange       func(*models.Snapshot)

	// condition codes already reported for the current snapshot
	reported map[int]bool
}

// New creates an adapter with the today layout enabled and metric units
func New(opts ...Option) *Adapter {
	a := &Adapter{
		useTodayLayout: true,
		units:          models.Metric,
		locale:         format.NewLocale(""),
		now:            time.Now,
		logger:         zap.NewNop(),
		reported:       make(map[int]bool),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SnapshotReplaced implements store.Observer
func (a *Adapter) SnapshotReplaced(snapshot *models.Snapshot) {
	a.snapshot = snapshot
	a.reported = make(map[int]bool)
	if a.onChange != nil {
		a.onChange(snapshot)
	}
}

// OnChange registers the display's "data replaced" callback
func (a *Adapter) OnChange(fn func(*models.Snapshot)) {
	a.onChange = fn
}

// SetUseTodayLayout toggles the today template for position 0
func (a *Adapter) SetUseTodayLayout(enabled bool) {
	a.useTodayLayout = enabled
}

// UseTodayLayout reports whether position 0 uses the today template
func (a *Adapter) UseTodayLayout() bool {
	return a.useTodayLayout
}

// SetUnits changes the unit system used for temperatures
func (a *Adapter) SetUnits(units models.UnitSystem) {
	a.units = units
}

// SetLocale changes the label language
func (a *Adapter) SetLocale(loc format.Locale) {
	a.locale = loc
}

// Snapshot returns the snapshot rows are bound from
func (a *Adapter) Snapshot() *models.Snapshot {
	return a.snapshot
}

// RowCount returns the number of rows, 0 before the first snapshot
func (a *Adapter) RowCount() int {
	return a.snapshot.Len()
}

// RowTemplate returns the template for position
func (a *Adapter) RowTemplate(position int) Template {
	if position == 0 && a.useTodayLayout {
		return TemplateToday
	}
	return TemplateFutureDay
}

// BindRow populates a row for position. recycled is reused when its
// template matches; otherwise a new handle is created. It returns nil when
// position is out of range.
func (a *Adapter) BindRow(position int, recycled *Row) *Row {
	record, ok := a.snapshot.At(position)
	if !ok {
		return nil
	}

	template := a.RowTemplate(position)
	row := recycled
	if row == nil || row.Template != template {
		row = &Row{Template: template}
	}

	var icon conditions.Icon
	var mapped bool
	if template == TemplateToday {
		icon, mapped = conditions.ArtFor(record.WeatherConditionID)
	} else {
		icon, mapped = conditions.IconFor(record.WeatherConditionID)
	}
	if !mapped {
		a.reportUnmapped(record)
	}

	description := a.locale.Description(record.Description)
	useMetric := a.units.IsMetric()

	row.Position = position
	row.Date = record.Date
	row.DateLabel = format.FriendlyDay(record.Date, a.now(), template == TemplateToday, a.locale)
	row.Icon = icon
	row.IconLabel = description
	row.Description = description
	row.High = format.FormatTemperature(record.HighTemp, useMetric)
	row.Low = format.FormatTemperature(record.LowTemp, useMetric)
	return row
}

func (a *Adapter) reportUnmapped(record models.ForecastRecord) {
	if a.reported[record.WeatherConditionID] {
		return
	}
	a.reported[record.WeatherConditionID] = true
	observability.UnmappedConditionsTotal.Inc()
	a.logger.Warn("no icon for weather condition",
		zap.Int("condition_id", record.WeatherConditionID),
		zap.String("description", record.Description),
		zap.String("location", record.LocationSetting),
	)
}

// Record returns the record at position for the detail view
func (a *Adapter) Record(position int) (models.ForecastRecord, bool) {
	return a.snapshot.At(position)
}

// Summary returns the one-line "date - description - high/low" text for
// the record at position.
func (a *Adapter) Summary(position int) (string, bool) {
	record, ok := a.snapshot.At(position)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s - %s - %s",
		format.ShortDate(record.Date, a.locale),
		a.locale.Description(record.Description),
		format.FormatHighLow(record.HighTemp, record.LowTemp, a.units.IsMetric()),
	), true
}
