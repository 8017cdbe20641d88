package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rpkiconsole/rpkiconsole/internal/config"
	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/components"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views/listview"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views/rpki"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views/slurm"
	"github.com/rpkiconsole/rpkiconsole/internal/validator"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Module represents a screen of the application.
type Module string

const (
	ModuleTrustAnchors  = Module(models.ViewTrustAnchors)
	ModuleRoas          = Module(models.ViewRoas)
	ModuleBgp           = Module(models.ViewBgp)
	ModuleIgnoreFilters = Module(models.ViewIgnoreFilters)
	ModuleWhitelist     = Module(models.ViewWhitelist)
	ModuleMonitor       Module = "monitor"
	ModuleHelp          Module = "help"

	moduleQuit Module = "quit"
)

// chrome is the number of lines used by header, alert bar and footer.
const chrome = 6

// maxAlerts bounds the alert history.
const maxAlerts = 10

// Options selects what the application shows on startup.
type Options struct {
	// InitialView defaults to the trust anchors screen.
	InitialView models.ViewID
	// SearchTerm pre-fills the BGP preview filter.
	SearchTerm string
	// TrustAnchorID, when set, opens that trust anchor's monitor.
	TrustAnchorID int64

	Context context.Context
	Logger  *slog.Logger
	// Now is the clock shown in the alert bar.
	Now func() time.Time
}

// App is the main Bubble Tea application model.
type App struct {
	// Dependencies
	config *config.Config
	client *validator.Client
	env    views.Env
	now    func() time.Time
	logger *slog.Logger

	// Screens
	screens map[Module]views.Screen
	started map[Module]bool
	monitor *rpki.MonitorView

	// UI state
	theme       *Theme
	keys        KeyMap
	width       int
	height      int
	ready       bool
	quitting    bool
	showConfirm bool

	currentModule  Module
	previousModule Module
	pendingMonitor int64

	alerts []Alert
}

// Alert represents a message shown in the alert bar.
type Alert struct {
	Level   components.AlertLevel
	Message string
	Time    time.Time
}

// New creates the application.
func New(cfg *config.Config, client *validator.Client, prefs listview.Preferences, opts Options) *App {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	theme := NewTheme(cfg.Display.ColorScheme)
	env := views.Env{
		Client:         client,
		Prefs:          prefs,
		Styles:         theme.Components,
		PageSize:       cfg.Table.DefaultPageSize,
		PageSizes:      cfg.Table.PageSizes,
		Debounce:       cfg.Table.SearchDebounce(),
		DateTimeFormat: cfg.Display.DateFormat + " " + cfg.Display.TimeFormat,
		Context:        ctx,
		Logger:         logger,
	}

	a := &App{
		config: cfg,
		client: client,
		env:    env,
		now:    now,
		logger: logger,
		screens: map[Module]views.Screen{
			ModuleTrustAnchors:  rpki.NewTrustAnchorsView(env),
			ModuleRoas:          rpki.NewRoasView(env),
			ModuleBgp:           rpki.NewBgpView(env, opts.SearchTerm),
			ModuleIgnoreFilters: slurm.NewIgnoreFiltersView(env),
			ModuleWhitelist:     slurm.NewWhitelistView(env),
		},
		started:        map[Module]bool{},
		theme:          theme,
		keys:           DefaultKeyMap(),
		currentModule:  ModuleTrustAnchors,
		pendingMonitor: opts.TrustAnchorID,
	}

	if m := Module(opts.InitialView); a.screens[m] != nil {
		a.currentModule = m
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.start(a.currentModule)}
	if a.pendingMonitor != 0 {
		id := a.pendingMonitor
		a.pendingMonitor = 0
		cmds = append(cmds, func() tea.Msg { return rpki.OpenMonitorMsg{TrustAnchorID: id} })
	}
	return tea.Batch(cmds...)
}

// start initialises a screen the first time it is shown.
func (a *App) start(m Module) tea.Cmd {
	s := a.screens[m]
	if s == nil || a.started[m] {
		return nil
	}
	a.started[m] = true
	if a.ready {
		a.resize(s)
	}
	return s.Init()
}

func (a *App) resize(s views.Screen) {
	s.SetSize(ContentWidth(a.width, 40, MaxContentWidth), ContentHeight(a.height, chrome))
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		for m, s := range a.screens {
			if a.started[m] {
				a.resize(s)
			}
		}
		if a.monitor != nil {
			a.resize(a.monitor)
		}
		return a, nil

	case components.AlertMsg:
		a.AddAlert(msg.Level, msg.Message)
		return a, nil

	case rpki.OpenMonitorMsg:
		return a, a.openMonitor(msg.TrustAnchorID)
	}

	return a, a.broadcast(msg)
}

// broadcast hands msg to every running screen; each ignores what is not
// addressed to it.
func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for m, s := range a.screens {
		if a.started[m] {
			cmds = append(cmds, s.Update(msg))
		}
	}
	if a.monitor != nil {
		cmds = append(cmds, a.monitor.Update(msg))
	}
	return tea.Batch(cmds...)
}

func (a *App) openMonitor(id int64) tea.Cmd {
	if a.monitor != nil {
		a.monitor.Close()
	}
	a.monitor = rpki.NewMonitorView(a.env, id)
	if a.ready {
		a.resize(a.monitor)
	}
	if a.currentModule != ModuleMonitor {
		a.previousModule = a.currentModule
	}
	a.currentModule = ModuleMonitor
	a.logger.Info("opening trust anchor monitor", "trust_anchor_id", id)
	return a.monitor.Init()
}

func (a *App) closeMonitor() {
	if a.monitor != nil {
		a.monitor.Close()
		a.monitor = nil
	}
}

// current returns the screen being shown, nil for help.
func (a *App) current() views.Screen {
	if a.currentModule == ModuleMonitor && a.monitor != nil {
		return a.monitor
	}
	return a.screens[a.currentModule]
}

// handleKeyPress processes key press events.
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle quit confirmation first (modal takes priority)
	if a.showConfirm {
		switch msg.String() {
		case "y", "Y", "enter":
			a.quitting = true
			a.closeAll()
			return a, tea.Quit
		case "n", "N", "esc":
			a.showConfirm = false
			return a, nil
		}
		return a, nil
	}

	screen := a.current()

	// Text input needs every key before the global bindings.
	if screen != nil && screen.Capturing() && msg.String() != "ctrl+c" {
		cmd, _ := screen.HandleKey(msg)
		return a, cmd
	}

	if a.keys.IsFunctionKey(msg) {
		switch m := a.keys.GetFunctionKeyModule(msg); m {
		case moduleQuit:
			a.showConfirm = true
			return a, nil
		case ModuleHelp:
			if a.currentModule != ModuleHelp {
				a.previousModule = a.currentModule
				a.currentModule = ModuleHelp
			}
			return a, nil
		default:
			return a, a.switchTo(m)
		}
	}

	if a.keys.IsQuit(msg) {
		a.showConfirm = true
		return a, nil
	}

	if screen != nil {
		if cmd, handled := screen.HandleKey(msg); handled {
			return a, cmd
		}
	}

	if a.keys.Help.Matches(msg) && a.currentModule != ModuleHelp {
		a.previousModule = a.currentModule
		a.currentModule = ModuleHelp
		return a, nil
	}

	// Back navigation from help and the monitor
	if a.keys.Back.Matches(msg) {
		switch a.currentModule {
		case ModuleMonitor:
			a.closeMonitor()
			a.currentModule = a.orTrustAnchors(a.previousModule)
			a.previousModule = ""
		case ModuleHelp:
			a.currentModule = a.orTrustAnchors(a.previousModule)
			a.previousModule = ""
		}
	}

	return a, nil
}

func (a *App) orTrustAnchors(m Module) Module {
	if m == "" || m == ModuleHelp {
		return ModuleTrustAnchors
	}
	if m == ModuleMonitor && a.monitor == nil {
		return ModuleTrustAnchors
	}
	return m
}

func (a *App) switchTo(m Module) tea.Cmd {
	if a.screens[m] == nil {
		return nil
	}
	if a.currentModule == ModuleMonitor {
		a.closeMonitor()
	}
	a.currentModule = m
	a.previousModule = ""
	return a.start(m)
}

func (a *App) closeAll() {
	for _, s := range a.screens {
		s.Close()
	}
	a.closeMonitor()
}

// CurrentModule returns the module being shown.
func (a *App) CurrentModule() Module { return a.currentModule }

// Alerts returns the alert history, newest first.
func (a *App) Alerts() []Alert { return a.alerts }

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}

	if a.quitting {
		return a.theme.Title.Render("RPKI validator console closing...")
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	b.WriteString(a.renderAlertBar())
	b.WriteString("\n")

	contentHeight := ContentHeight(a.height, chrome)
	if a.showConfirm {
		b.WriteString(a.renderConfirmDialog(contentHeight))
	} else {
		b.WriteString(a.renderContent(contentHeight))
	}

	b.WriteString("\n")
	b.WriteString(a.renderFooter())

	return b.String()
}

// renderHeader renders the top header bar.
func (a *App) renderHeader() string {
	title := fmt.Sprintf("RPKI VALIDATOR CONSOLE v%s", Version)
	target := a.client.BaseURL()

	spacing := max(a.width-lipgloss.Width(title)-lipgloss.Width(target)-4, 1)

	header := a.theme.Header.Render(title) +
		strings.Repeat(" ", spacing) +
		a.theme.Header.Render(target)

	return header + "\n" + a.theme.DoubleLine(a.width)
}

// renderAlertBar renders the clock and the newest alert.
func (a *App) renderAlertBar() string {
	timeStr := a.now().Format(a.config.Display.DateFormat + " " + a.config.Display.TimeFormat)

	var alertText string
	if len(a.alerts) > 0 {
		alert := a.alerts[0]
		switch alert.Level {
		case components.AlertCritical:
			alertText = a.theme.AlertCrit.Render("CRITICAL: " + alert.Message)
		case components.AlertWarning:
			alertText = a.theme.AlertWarn.Render("WARNING: " + alert.Message)
		default:
			alertText = a.theme.Alert.Render("INFO: " + alert.Message)
		}
	} else {
		alertText = a.theme.Muted.Render("No alerts")
	}

	return a.theme.Components.Value.Render(timeStr) + a.theme.StatusDivider.Render() + alertText
}

// renderContent renders the main content area based on current module.
func (a *App) renderContent(height int) string {
	var content string
	if screen := a.current(); screen != nil {
		content = screen.View()
	} else {
		content = a.renderHelp()
	}

	contentWidth := ContentWidth(a.width, 40, MaxContentWidth)

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Top)

	return style.Render(lipgloss.NewStyle().Width(contentWidth).Render(content))
}

// renderHelp renders the help screen.
func (a *App) renderHelp() string {
	st := a.theme.Components
	var b strings.Builder

	b.WriteString(st.Title.Render("═══ HELP ═══"))
	b.WriteString("\n\n")

	section := func(title string, items [][2]string) {
		b.WriteString(st.Subtitle.Render(title))
		b.WriteString("\n\n")
		for _, item := range items {
			b.WriteString(st.Value.Render(fmt.Sprintf("    %-10s  %s", item[0], item[1])))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	section("NAVIGATION", [][2]string{
		{"F1", "Help"},
		{"F2", "Trust anchors"},
		{"F3", "Validated ROAs"},
		{"F4", "BGP preview"},
		{"F5", "Ignore filters"},
		{"F6", "Whitelist"},
		{"F10", "Quit"},
	})
	section("LISTS", [][2]string{
		{"Up/Down", "Move the cursor"},
		{"Left/Right", "Previous and next page"},
		{"Home/End", "First and last page"},
		{"1-9", "Sort by column, again to reverse"},
		{"/", "Search"},
		{"z", "Change page size"},
		{"r", "Reload"},
		{"Enter", "Open trust anchor or announcement"},
		{"a / d", "Add or delete a filter"},
	})

	b.WriteString(st.Muted.Render("Press Esc to return"))
	return b.String()
}

// renderConfirmDialog renders the quit confirmation dialog.
func (a *App) renderConfirmDialog(height int) string {
	st := a.theme.Components
	dialog := a.theme.Box.Render(
		st.Title.Render("CONFIRM EXIT") + "\n\n" +
			st.Value.Render("Are you sure you want to exit?") + "\n\n" +
			st.Label.Render("[Y]es  [N]o"),
	)

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return style.Render(dialog)
}

// renderFooter renders the screen hints and the global key bar.
func (a *App) renderFooter() string {
	help := a.keys.StatusBarHelp()
	if screen := a.current(); screen != nil {
		help = screen.Help() + a.theme.StatusDivider.Render() + help
	}
	return a.theme.Muted.Render(strings.Repeat("─", max(a.width, 0))) + "\n" + a.theme.Footer.Render(help)
}

// AddAlert adds a new alert to the display.
func (a *App) AddAlert(level components.AlertLevel, message string) {
	a.alerts = append([]Alert{{
		Level:   level,
		Message: message,
		Time:    a.now(),
	}}, a.alerts...)

	if len(a.alerts) > maxAlerts {
		a.alerts = a.alerts[:maxAlerts]
	}
}

// ClearAlerts removes all alerts.
func (a *App) ClearAlerts() {
	a.alerts = nil
}

// Run starts the TUI application and blocks until it exits.
func Run(cfg *config.Config, client *validator.Client, prefs listview.Preferences, opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	opts.Context = ctx

	app := New(cfg, client, prefs, opts)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	return err
}
