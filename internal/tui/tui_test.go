package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/config"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/download"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestNewModel_FromSettings(t *testing.T) {
	s := config.DefaultSettings()
	s.OutputFormat = "PNG"
	s.DeleteImages = true

	m := NewModel(s, nil)
	assert.Equal(t, StateInput, m.state)
	assert.True(t, m.png)
	assert.True(t, m.deleteImages)
	assert.True(t, m.textInput.Focused())

	assert.NotNil(t, NewModel(nil, nil).settings)
}

func TestModel_TogglesOnlyWhenInputBlurred(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)

	// typing into the path input does not toggle
	m = update(t, m, key("p"))
	assert.False(t, m.png)
	assert.Equal(t, "p", m.textInput.Value())

	m = update(t, m, key("tab"))
	require.False(t, m.textInput.Focused())

	m = update(t, m, key("p"))
	m = update(t, m, key("x"))
	m = update(t, m, key("v"))
	assert.True(t, m.png)
	assert.True(t, m.deleteImages)
	assert.True(t, m.verbose)
	assert.Equal(t, "p", m.textInput.Value())

	opts := m.options()
	assert.Equal(t, "png", opts.OutputFormat)
	assert.True(t, opts.DeleteImages)
	assert.Equal(t, "pdf", m.settings.OutputFormat, "options copy the settings")
}

func TestModel_ProgressMsgFiltersVerbose(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)

	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "detail", Level: download.LevelVerbose}})
	assert.Empty(t, m.logs)

	for i := 0; i < 12; i++ {
		m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "found", Level: download.LevelInfo}})
	}
	assert.Len(t, m.logs, 10)
}

func TestModel_InitAndDone(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	m.state = StateInitializing

	failed := update(t, m, InitDoneMsg{Err: errors.New("no order found")})
	assert.Equal(t, StateError, failed.state)
	assert.EqualError(t, failed.err, "no order found")

	m.state = StatePrinting
	m = update(t, m, PrintDoneMsg{Files: 3, TotalF: 3, Pages: 2, TotalP: 2, Skipped: 1})
	assert.Equal(t, StateComplete, m.state)
	assert.Equal(t, 1.0, m.percent())
	assert.Contains(t, m.View(), "Print Complete")
}

func TestModel_EscCancels(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	m.state = StateInitializing

	m = update(t, m, key("esc"))
	assert.Equal(t, StateError, m.state)
	assert.Error(t, m.ctx.Err())

	// a late init result is ignored
	m = update(t, m, InitDoneMsg{Orders: []string{"deck (3 cards)"}})
	assert.Equal(t, StateError, m.state)
	assert.Empty(t, m.orders)
}

func TestModel_Percent(t *testing.T) {
	m := Model{}
	assert.Zero(t, m.percent())

	m.totalFiles, m.downloadedFiles = 4, 2
	m.totalPages, m.renderedPages = 2, 1
	assert.InDelta(t, 0.5, m.percent(), 1e-9)
}
