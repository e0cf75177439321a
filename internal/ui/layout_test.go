package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestContentHeight(t *testing.T) {
	l := NewLayout(80, 24)
	assert.Equal(t, 22, l.ContentHeight())
	assert.Equal(t, 80, l.ContentWidth())
}

func TestFrameKeepsStatusBarAtBottom(t *testing.T) {
	l := NewLayout(60, 10)
	out := l.RenderWithFrame(
		l.RenderHeader("Goals Tracker", "signed out"),
		"one line of content",
		l.RenderErrorBar("Session expired. Please sign in again."),
	)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, lines[0], "Goals Tracker")
	assert.Contains(t, lines[0], "signed out")
	assert.Contains(t, lines[9], "Session expired.")
}

func TestBarsFillWidth(t *testing.T) {
	l := NewLayout(50, 10)
	assert.Equal(t, 50, lipgloss.Width(l.RenderStatusBar("q quit")))
	assert.Equal(t, 50, lipgloss.Width(l.RenderErrorBar("boom")))
}
