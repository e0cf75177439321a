package settings

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/goal-tracker/internal/keys"
	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/internal/theme"
)

// SettingsMode represents the current state of the settings view.
type SettingsMode int

const (
	ModeForm       SettingsMode = iota // Editing values
	ModeValidating                     // Testing connection
	ModeResult                         // Show test result, offer to save
)

// pingTimeout bounds the connection test.
const pingTimeout = 10 * time.Second

// SettingsDoneMsg signals the settings view should close without changes.
type SettingsDoneMsg struct{}

// SettingsSavedMsg signals the configuration was written to disk.
type SettingsSavedMsg struct {
	Config model.AppConfig
}

// ValidateResultMsg carries the result of a connection test.
type ValidateResultMsg struct {
	Message string
	Err     error
}

type savedInternalMsg struct {
	cfg model.AppConfig
	err error
}

// PingFunc checks that a backend answers at baseURL.
type PingFunc func(ctx context.Context, baseURL string) (string, error)

// SaveFunc persists a configuration.
type SaveFunc func(cfg model.AppConfig) error

type formBindings struct {
	baseURL         string
	timeoutSec      string
	refreshInterval string
	theme           string
}

// Model is the Bubble Tea model for the settings screen.
type Model struct {
	mode    SettingsMode
	cfg     model.AppConfig
	ping    PingFunc
	save    SaveFunc
	form    *huh.Form
	fb      *formBindings
	spinner spinner.Model

	validResult string
	validError  error
	statusMsg   string

	keys          *keys.KeyMap
	width, height int
}

// New creates a settings view editing cfg.
func New(cfg model.AppConfig, ping PingFunc, save SaveFunc, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:    ModeForm,
		cfg:     cfg,
		ping:    ping,
		save:    save,
		fb:      &formBindings{},
		spinner: sp,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Init loads the current values into the form.
func (m *Model) Init() tea.Cmd {
	m.mode = ModeForm
	m.statusMsg = ""
	m.fb.baseURL = m.cfg.API.BaseURL
	m.fb.timeoutSec = strconv.Itoa(m.cfg.API.TimeoutSec)
	m.fb.refreshInterval = strconv.Itoa(m.cfg.Display.RefreshIntervalSec)
	m.fb.theme = m.cfg.Display.Theme
	if m.fb.theme == "" {
		m.fb.theme = model.DefaultTheme
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Config returns the configuration the view was last saved with.
func (m Model) Config() model.AppConfig {
	return m.cfg
}

// Mode returns the current mode.
func (m Model) Mode() SettingsMode {
	return m.mode
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ValidateResultMsg:
		if m.mode != ModeValidating {
			return m, nil
		}
		m.validResult = msg.Message
		m.validError = msg.Err
		m.mode = ModeResult
		return m, nil

	case savedInternalMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving settings: %v", msg.err)
			m.mode = ModeResult
			return m, nil
		}
		m.cfg = msg.cfg
		cfg := msg.cfg
		return m, func() tea.Msg { return SettingsSavedMsg{Config: cfg} }

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeValidating:
			// Only allow escape during validation
			if key.Matches(msg, m.keys.Back) {
				m.mode = ModeResult
				m.validError = fmt.Errorf("connection test cancelled")
			}
			return m, nil
		case ModeResult:
			return m.handleResultKeys(msg)
		}
	}

	return m.updateForm(msg)
}

func (m Model) handleResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "s":
		return m, m.saveCmd(m.pending())
	case "e":
		m.mode = ModeForm
		m.statusMsg = ""
		m.form = m.buildForm()
		return m, m.form.Init()
	case "r":
		return m, m.startValidation()
	case "esc":
		return m, func() tea.Msg { return SettingsDoneMsg{} }
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.startValidation()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return SettingsDoneMsg{} }
	}

	return m, cmd
}

func (m *Model) startValidation() tea.Cmd {
	m.mode = ModeValidating
	m.validResult = ""
	m.validError = nil
	return tea.Batch(m.spinner.Tick, m.validate(strings.TrimSpace(m.fb.baseURL)))
}

func (m Model) validate(baseURL string) tea.Cmd {
	ping := m.ping
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()

		msg, err := ping(ctx, baseURL)
		return ValidateResultMsg{Message: msg, Err: err}
	}
}

// pending returns the configuration the form currently describes.
func (m Model) pending() model.AppConfig {
	cfg := m.cfg
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(m.fb.baseURL), "/")
	if n, err := strconv.Atoi(strings.TrimSpace(m.fb.timeoutSec)); err == nil {
		cfg.API.TimeoutSec = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(m.fb.refreshInterval)); err == nil {
		cfg.Display.RefreshIntervalSec = n
	}
	cfg.Display.Theme = m.fb.theme
	return cfg
}

func (m Model) saveCmd(cfg model.AppConfig) tea.Cmd {
	save := m.save
	return func() tea.Msg {
		return savedInternalMsg{cfg: cfg, err: save(cfg)}
	}
}

func (m *Model) buildForm() *huh.Form {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Where the Goals Tracker backend is served").
				Placeholder(model.DefaultBaseURL).
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Request timeout (seconds)").
				Value(&m.fb.timeoutSec).
				Validate(validateNumber(1, 600)),
			huh.NewInput().
				Title("Auto-refresh interval (seconds)").
				Description("0 turns auto-refresh off").
				Value(&m.fb.refreshInterval).
				Validate(validateNumber(0, 86400)),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Follow terminal", "auto"),
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&m.fb.theme),
		),
	).WithKeyMap(km).WithWidth(m.formWidth())
}

// View renders the settings screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Settings"))
	b.WriteString("\n")

	switch m.mode {
	case ModeForm:
		if m.form != nil {
			b.WriteString(m.form.View())
		}
	case ModeValidating:
		b.WriteString(fmt.Sprintf("%s Testing connection to %s...", m.spinner.View(), strings.TrimSpace(m.fb.baseURL)))
		b.WriteString("\n\n")
		b.WriteString(theme.HelpStyle.Render("esc cancel"))
	case ModeResult:
		b.WriteString(m.viewResult())
	}

	return theme.DetailPanelStyle.Width(max(m.width-4, 0)).Render(b.String())
}

func (m Model) viewResult() string {
	var b strings.Builder
	if m.validError != nil {
		b.WriteString(theme.ErrorStyle.Render("Connection failed: " + m.validError.Error()))
	} else {
		b.WriteString(theme.SuccessStyle.Render("Connected: " + m.validResult))
	}
	b.WriteString("\n\n")

	pending := m.pending()
	rows := [][2]string{
		{"API base URL", pending.API.BaseURL},
		{"Timeout", fmt.Sprintf("%ds", pending.API.TimeoutSec)},
		{"Auto-refresh", refreshLabel(pending.Display.RefreshIntervalSec)},
		{"Theme", pending.Display.Theme},
	}
	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(14)
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]) + r[1] + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("enter save | e edit | r retest | esc discard"))
	return b.String()
}

func refreshLabel(sec int) string {
	if sec <= 0 {
		return "off"
	}
	return fmt.Sprintf("every %ds", sec)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://localhost:8000)")
	}
	return nil
}

func validateNumber(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("must be a whole number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}
