package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/sunshine-terminal/internal/config"
	"github.com/ngmaloney/sunshine-terminal/internal/forecast"
	"github.com/ngmaloney/sunshine-terminal/internal/forecastlist"
	"github.com/ngmaloney/sunshine-terminal/internal/format"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
	"github.com/ngmaloney/sunshine-terminal/internal/observability"
	"github.com/ngmaloney/sunshine-terminal/internal/store"
	"go.uber.org/zap"
)

const (
	// Terminals at least this wide get the list and the detail side by side
	twoPaneWidth = 120

	statusTimeout = 4 * time.Second
)

// AppState represents the current state of the application
type AppState int

const (
	StateLoading        AppState = iota // Waiting for the first forecast
	StateList                           // Forecast list
	StateDetail                         // Single day detail
	StateLocationPrompt                 // Editing the location
)

// SnapshotCache persists the last forecast between runs
type SnapshotCache interface {
	LoadSnapshot(ctx context.Context, location string) (*models.Snapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error
}

// Deps are the collaborators the model drives
type Deps struct {
	Coordinator *forecast.Coordinator
	Store       *store.Store
	Adapter     *forecastlist.Adapter
	Preferences config.Preferences

	// Optional
	Cache      SnapshotCache
	ConfigPath string // where preference changes are saved; empty disables saving
	Overrides  config.Overrides
	Logger     *zap.Logger
	Now        func() time.Time
}

// Model represents the application's state
type Model struct {
	state  AppState
	width  int
	height int

	coordinator *forecast.Coordinator
	store       *store.Store
	adapter     *forecastlist.Adapter
	list        *listView
	cache       SnapshotCache
	configPath  string
	overrides   config.Overrides
	logger      *zap.Logger
	now         func() time.Time

	prefs     config.Preferences
	locale    format.Locale
	twoPane   bool
	fromCache bool

	// Location typed into the prompt whose first fetch has not landed yet.
	// prefs.Location changes only once it does.
	pendingLocation string

	// Status line
	status      string
	statusError bool
	statusID    int

	spinner       spinner.Model
	locationInput textinput.Model
	keys          keyMap
	help          help.Model
}

// NewModel creates the application model and subscribes the adapter to the store
func NewModel(d Deps) Model {
	ti := textinput.New()
	ti.Placeholder = "Zip code or city, e.g. 94043 or London,UK"
	ti.CharLimit = 100
	ti.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	now := d.Now
	if now == nil {
		now = time.Now
	}

	locale := format.NewLocale(d.Preferences.Language)
	list := newListView(d.Adapter)

	d.Adapter.SetUnits(d.Preferences.Units)
	d.Adapter.SetUseTodayLayout(d.Preferences.UseTodayLayout)
	d.Adapter.SetLocale(locale)
	d.Adapter.OnChange(list.dataChanged)
	d.Store.Subscribe(d.Adapter)

	state := StateLoading
	if snap := d.Store.Current(); snap != nil {
		d.Adapter.SnapshotReplaced(snap)
		state = StateList
	}

	return Model{
		state:         state,
		coordinator:   d.Coordinator,
		store:         d.Store,
		adapter:       d.Adapter,
		list:          list,
		cache:         d.Cache,
		configPath:    d.ConfigPath,
		overrides:     d.Overrides,
		logger:        observability.OrNop(d.Logger),
		now:           now,
		prefs:         d.Preferences,
		locale:        locale,
		spinner:       s,
		locationInput: ti,
		keys:          defaultKeyMap(),
		help:          help.New(),
	}
}

// Init loads the cached forecast and starts the first refresh
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		requestRefresh,
		waitForCompletion(m.coordinator),
	}
	if m.cache != nil {
		cmds = append(cmds, loadCachedForecast(m.cache, m.prefs.Location))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.applyLayout()
		return m, nil

	case refreshRequestedMsg:
		m.refresh()
		return m, m.spinner.Tick

	case forecastCompletedMsg:
		cmd := m.handleCompletion(msg.completion)
		return m, tea.Batch(cmd, waitForCompletion(m.coordinator))

	case cachedForecastMsg:
		if msg.err != nil {
			m.logger.Debug("no cached forecast", zap.String("location", m.prefs.Location), zap.Error(msg.err))
			return m, nil
		}
		if msg.snapshot.Location != m.prefs.Location {
			return m, nil
		}
		if m.coordinator.Seed(msg.snapshot) {
			m.fromCache = true
			if m.state == StateLoading {
				m.state = StateList
			}
		}
		return m, nil

	case forecastSavedMsg:
		if msg.err != nil {
			m.logger.Warn("saving forecast cache failed", zap.Error(msg.err))
		}
		return m, nil

	case preferencesSavedMsg:
		if msg.err != nil {
			m.logger.Warn("saving preferences failed", zap.Error(msg.err))
			return m, m.setStatus("Couldn't save preferences", true)
		}
		return m, nil

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
			m.statusError = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.coordinator.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.state == StateLocationPrompt {
			return m.handleLocationInput(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

// requestedLocation is the location the next fetch is for
func (m Model) requestedLocation() string {
	if m.pendingLocation != "" {
		return m.pendingLocation
	}
	return m.prefs.Location
}

// refresh starts a fetch with the current preferences
func (m *Model) refresh() {
	m.coordinator.RequestRefresh(m.requestedLocation(), m.prefs.Units)
}

func (m *Model) handleCompletion(comp forecast.Completion) tea.Cmd {
	outcome, err := m.coordinator.Apply(comp)
	changingLocation := m.pendingLocation != "" && comp.Request.Location == m.pendingLocation

	switch outcome {
	case forecast.OutcomeApplied:
		m.fromCache = false
		if m.state == StateLoading {
			m.state = StateList
		}
		var cmds []tea.Cmd
		if changingLocation {
			m.prefs.Location = m.pendingLocation
			m.pendingLocation = ""
			cmds = append(cmds, m.persistPreferences())
		}
		if m.cache != nil {
			cmds = append(cmds, saveForecast(m.cache, m.store.Current()))
		}
		cmds = append(cmds, m.setStatus(fmt.Sprintf("Updated %s", m.now().Format("15:04")), false))
		return tea.Batch(cmds...)

	case forecast.OutcomeFailed:
		if changingLocation {
			m.logger.Info("location change abandoned",
				zap.String("location", m.pendingLocation),
				zap.String("kept", m.prefs.Location),
				zap.Error(err),
			)
			m.pendingLocation = ""
		}
		return m.setStatus(forecast.Describe(err), true)
	}
	return nil
}

func (m *Model) setStatus(text string, isError bool) tea.Cmd {
	m.statusID++
	m.status = text
	m.statusError = isError
	return clearStatusAfter(m.statusID, statusTimeout)
}

// handleKey handles keyboard input outside the location prompt
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.coordinator.Teardown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		m.refresh()
		return m, m.spinner.Tick

	case key.Matches(msg, m.keys.Units):
		m.prefs.Units = m.prefs.Units.Toggle()
		m.adapter.SetUnits(m.prefs.Units)
		return m, tea.Batch(m.persistPreferences(), m.setStatus("Showing "+unitLabel(m.prefs.Units), false))

	case key.Matches(msg, m.keys.Layout):
		m.prefs.UseTodayLayout = !m.prefs.UseTodayLayout
		m.applyLayout()
		return m, m.persistPreferences()

	case key.Matches(msg, m.keys.Language):
		m.locale = m.locale.Next()
		m.adapter.SetLocale(m.locale)
		m.prefs.Language = m.locale.Tag().String()
		m.list.rows.Reset()
		return m, tea.Batch(m.persistPreferences(), m.setStatus("Language: "+m.prefs.Language, false))

	case key.Matches(msg, m.keys.Location):
		m.state = StateLocationPrompt
		m.locationInput.SetValue(m.requestedLocation())
		m.locationInput.CursorEnd()
		m.locationInput.Focus()
		return m, textinput.Blink
	}

	switch m.state {
	case StateList:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.list.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.list.move(1)
		case key.Matches(msg, m.keys.Select):
			if m.adapter.RowCount() > 0 {
				m.state = StateDetail
			}
		}

	case StateDetail:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.state = StateList
		case key.Matches(msg, m.keys.Up):
			m.list.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.list.move(1)
		}
	}
	return m, nil
}

// handleLocationInput handles keyboard input in the location prompt
func (m Model) handleLocationInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.coordinator.Teardown()
		return m, tea.Quit

	case tea.KeyEsc:
		m.locationInput.Blur()
		m.state = m.stateAfterPrompt()
		return m, nil

	case tea.KeyEnter:
		location := strings.TrimSpace(m.locationInput.Value())
		if location == "" {
			return m, nil
		}
		m.locationInput.Blur()
		m.state = m.stateAfterPrompt()
		if location == m.requestedLocation() {
			return m, nil
		}

		// The new location is saved once its forecast lands
		m.pendingLocation = location
		if location == m.prefs.Location {
			m.pendingLocation = ""
		}
		m.refresh()
		return m, m.spinner.Tick
	}

	var cmd tea.Cmd
	m.locationInput, cmd = m.locationInput.Update(msg)
	return m, cmd
}

func (m Model) stateAfterPrompt() AppState {
	if m.adapter.RowCount() == 0 {
		return StateLoading
	}
	return StateList
}

func (m Model) persistPreferences() tea.Cmd {
	if m.configPath == "" {
		return nil
	}
	return savePreferences(m.configPath, m.prefs, m.overrides)
}

// applyLayout switches between the single list and the two-pane layout.
// The detail pane already shows today, so two-pane drops the today card.
func (m *Model) applyLayout() {
	m.twoPane = m.width >= twoPaneWidth
	m.adapter.SetUseTodayLayout(m.prefs.UseTodayLayout && !m.twoPane)
	height := 0
	if m.height > 0 {
		height = m.listHeight()
	}
	m.list.relayout(height)
}

// listHeight is the number of lines available to rows
func (m Model) listHeight() int {
	// header (2) + status (1) + help (2)
	h := m.height - 5
	if h < 1 {
		return 1
	}
	return h
}

func unitLabel(u models.UnitSystem) string {
	if u.IsMetric() {
		return "°C"
	}
	return "°F"
}

// View renders the UI
func (m Model) View() string {
	var sections []string
	sections = append(sections, m.viewHeader())

	switch {
	case m.state == StateLocationPrompt:
		sections = append(sections, m.viewLocationPrompt())
	case m.adapter.RowCount() == 0:
		sections = append(sections, m.viewLoading())
	case m.state == StateDetail && !m.twoPane:
		sections = append(sections, m.viewDetail())
	case m.twoPane:
		list := m.viewList()
		detail := detailPaneStyle.Width(m.width/2 - 4).Render(m.viewDetail())
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detail))
	default:
		sections = append(sections, m.viewList())
	}

	sections = append(sections, m.viewStatus(), helpStyle.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewHeader() string {
	title := titleStyle.Render("☀ Sunshine")

	// Name the location the rows belong to, not the one being fetched
	shown := m.prefs.Location
	if snap := m.store.Current(); snap != nil {
		shown = snap.Location
	}
	location := valueStyle.Render(shown)
	if m.pendingLocation != "" {
		location += mutedStyle.Render(" → " + m.pendingLocation)
	}
	meta := mutedStyle.Render(unitLabel(m.prefs.Units))
	if m.fromCache {
		if snap := m.store.Current(); snap != nil {
			meta += mutedStyle.Render(" • cached " + snap.FetchedAt.Local().Format("Jan 2 15:04"))
		}
	}
	line := fmt.Sprintf("%s  %s  %s", title, location, meta)
	if m.coordinator.Pending() {
		line += "  " + m.spinner.View()
	}
	return line + "\n"
}

func (m Model) viewLoading() string {
	if m.coordinator.Pending() {
		return fmt.Sprintf("%s Fetching forecast for %s...", m.spinner.View(), m.coordinator.Latest().Location)
	}
	return mutedStyle.Render("No forecast yet. Press r to retry or l to change the location.")
}

func (m Model) viewLocationPrompt() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("Location"),
		promptBoxStyle.Render(m.locationInput.View()),
		mutedStyle.Render("Enter to save • Esc to cancel"),
	)
}

func (m Model) viewList() string {
	first, n := m.list.visibleRange()
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		pos := first + i
		row := m.list.bind(i, pos)
		if row == nil {
			break
		}
		lines = append(lines, renderRow(row, pos == m.list.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewDetail() string {
	record, ok := m.adapter.Record(m.list.cursor)
	if !ok {
		return ""
	}
	summary, _ := m.adapter.Summary(m.list.cursor)
	return renderDetail(record, summary)
}

func (m Model) viewStatus() string {
	switch {
	case m.status == "":
		return ""
	case m.statusError:
		return errorStyle.Render("✗ " + m.status)
	default:
		return successStyle.Render(m.status)
	}
}
