package goallist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/internal/theme"
)

// GoalItem wraps a model.Goal so it can be used in a bubbles/list.
type GoalItem struct {
	Goal model.Goal
}

// FilterValue returns the string used for filtering.
func (i GoalItem) FilterValue() string {
	return i.Goal.Title + " " + i.Goal.DescriptionText()
}

// Title returns the goal title for the list.
func (i GoalItem) Title() string { return i.Goal.Title }

// Description returns a short summary line for the list.
func (i GoalItem) Description() string {
	return strings.Join(metaParts(i.Goal), " | ")
}

// GoalDelegate renders goals as two-line cards.
type GoalDelegate struct{}

// Height returns the number of lines each item takes.
func (d GoalDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d GoalDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d GoalDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws one goal card: title and total-time chip on the first line,
// description and entry statistics on the second.
func (d GoalDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	gi, ok := item.(GoalItem)
	if !ok {
		return
	}
	g := gi.Goal
	isSelected := index == m.Index()

	chip := theme.MinutesChipStyle(g.TotalMinutes).Render(model.FormatMinutes(g.TotalMinutes))
	title := lipgloss.NewStyle().Bold(true).Render(g.Title)
	first := fmt.Sprintf("%s %s", title, chip)

	second := theme.DimmedStyle.Render(strings.Join(metaParts(g), " · "))

	var card string
	if isSelected {
		card = theme.SelectedItemStyle.Render(first + "\n" + second)
	} else {
		card = theme.ListItemStyle.Render(first + "\n" + second)
	}

	fmt.Fprint(w, card)
}

// metaParts returns description, entry count and last-logged time.
func metaParts(g model.Goal) []string {
	var parts []string
	if d := g.DescriptionText(); d != "" {
		parts = append(parts, truncate(firstLine(d), 60))
	}
	parts = append(parts, entryCount(len(g.TimeEntries)))
	if last := g.LastLoggedAt(); !last.IsZero() {
		parts = append(parts, "last logged "+relativeTime(last))
	}
	return parts
}

func entryCount(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}
