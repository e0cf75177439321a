package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/nhle/goal-tracker/internal/model"
)

const timeLayout = "2006-01-02 15:04"

// writeStructured handles the json and yaml formats. It reports false for
// any other format.
func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	case "table", "":
		return false, nil
	default:
		return true, fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func writeGoals(w io.Writer, format string, goals []model.Goal) error {
	if goals == nil {
		goals = []model.Goal{}
	}
	if done, err := writeStructured(w, format, goals); done {
		return err
	}
	if len(goals) == 0 {
		_, err := fmt.Fprintln(w, "Start by creating your first goal.")
		return err
	}

	t := newTable("ID", "TITLE", "TOTAL", "ENTRIES", "LAST LOGGED")
	for _, g := range goals {
		last := "never"
		if at := g.LastLoggedAt(); !at.IsZero() {
			last = at.Local().Format(timeLayout)
		}
		t.Row(
			strconv.FormatInt(g.ID, 10),
			g.Title,
			model.FormatMinutes(g.TotalMinutes),
			strconv.Itoa(len(g.TimeEntries)),
			last,
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeEntries(w io.Writer, format string, entries []model.TimeEntry) error {
	if entries == nil {
		entries = []model.TimeEntry{}
	}
	if done, err := writeStructured(w, format, entries); done {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No time logged yet.")
		return err
	}

	t := newTable("ID", "MINUTES", "NOTE", "LOGGED")
	for _, e := range entries {
		t.Row(
			strconv.FormatInt(e.ID, 10),
			strconv.Itoa(e.Minutes),
			e.NoteText(),
			e.CreatedAt.Local().Format(timeLayout),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeActivity(w io.Writer, format string, entries []model.Activity) error {
	if entries == nil {
		entries = []model.Activity{}
	}
	if done, err := writeStructured(w, format, entries); done {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No activity recorded.")
		return err
	}

	t := newTable("WHEN", "WHAT")
	for _, a := range entries {
		t.Row(a.CreatedAt.Local().Format(timeLayout), a.Summary())
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
