package settings

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/goal-tracker/internal/keys"
	"github.com/nhle/goal-tracker/internal/model"
)

func testConfig() model.AppConfig {
	var cfg model.AppConfig
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.TimeoutSec = 30
	cfg.Display.RefreshIntervalSec = 60
	cfg.Display.Theme = "dark"
	return cfg
}

func newSettings(ping PingFunc, save SaveFunc) Model {
	if ping == nil {
		ping = func(context.Context, string) (string, error) { return "ok", nil }
	}
	if save == nil {
		save = func(model.AppConfig) error { return nil }
	}
	m := New(testConfig(), ping, save, keys.DefaultKeyMap(), 100, 40)
	m.Init()
	return m
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, validateURL("https://goals.example.com"))
	assert.Error(t, validateURL(""))
	assert.Error(t, validateURL("localhost"))
	assert.Error(t, validateURL("://bad"))
}

func TestValidateNumber(t *testing.T) {
	v := validateNumber(0, 10)
	assert.NoError(t, v(" 5 "))
	assert.EqualError(t, v("x"), "must be a whole number")
	assert.EqualError(t, v("11"), "must be between 0 and 10")
}

func TestInitLoadsCurrentValues(t *testing.T) {
	m := newSettings(nil, nil)

	assert.Equal(t, ModeForm, m.Mode())
	assert.Equal(t, "http://localhost:8000", m.fb.baseURL)
	assert.Equal(t, "30", m.fb.timeoutSec)
	assert.Equal(t, "60", m.fb.refreshInterval)
	assert.Equal(t, "dark", m.fb.theme)
}

func TestPendingNormalizesValues(t *testing.T) {
	m := newSettings(nil, nil)
	m.fb.baseURL = " https://goals.example.com/ "
	m.fb.timeoutSec = "5"
	m.fb.refreshInterval = "0"
	m.fb.theme = "light"

	cfg := m.pending()
	assert.Equal(t, "https://goals.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.TimeoutSec)
	assert.Zero(t, cfg.Display.RefreshIntervalSec)
	assert.Equal(t, "light", cfg.Display.Theme)
}

func TestValidationResultIgnoredOutsideValidation(t *testing.T) {
	m := newSettings(nil, nil)

	m, _ = m.Update(ValidateResultMsg{Message: "late"})
	assert.Equal(t, ModeForm, m.Mode())
}

func TestValidateThenSave(t *testing.T) {
	var pinged string
	var saved model.AppConfig
	m := newSettings(
		func(_ context.Context, baseURL string) (string, error) {
			pinged = baseURL
			return "Goals Tracker API", nil
		},
		func(cfg model.AppConfig) error {
			saved = cfg
			return nil
		},
	)
	m.fb.baseURL = "http://goals.internal:9000"

	m.startValidation()
	require.Equal(t, ModeValidating, m.Mode())

	m, _ = m.Update(m.validate("http://goals.internal:9000")())
	require.Equal(t, ModeResult, m.Mode())
	assert.Equal(t, "http://goals.internal:9000", pinged)
	assert.Contains(t, m.View(), "Connected: Goals Tracker API")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, cmd = m.Update(cmd())
	require.NotNil(t, cmd)

	msg := cmd()
	require.IsType(t, SettingsSavedMsg{}, msg)
	assert.Equal(t, "http://goals.internal:9000", msg.(SettingsSavedMsg).Config.API.BaseURL)
	assert.Equal(t, "http://goals.internal:9000", saved.API.BaseURL)
	assert.Equal(t, "http://goals.internal:9000", m.Config().API.BaseURL)
}

func TestSaveErrorIsShown(t *testing.T) {
	m := newSettings(nil, func(model.AppConfig) error { return errors.New("read-only file system") })
	m.startValidation()
	m, _ = m.Update(ValidateResultMsg{Message: "ok"})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.Equal(t, ModeResult, m.Mode())
	assert.Contains(t, m.View(), "Error saving settings: read-only file system")
	assert.Equal(t, "http://localhost:8000", m.Config().API.BaseURL)
}

func TestEscDuringValidationCancels(t *testing.T) {
	m := newSettings(nil, nil)
	m.startValidation()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeResult, m.Mode())
	assert.Contains(t, m.View(), "connection test cancelled")
}

func TestEscOnResultDiscards(t *testing.T) {
	m := newSettings(nil, nil)
	m.startValidation()
	m, _ = m.Update(ValidateResultMsg{Err: errors.New("connection refused")})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, SettingsDoneMsg{}, cmd())
}
