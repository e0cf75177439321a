package model

import (
	"fmt"
	"strings"
	"time"
)

// Goal is a user-defined target with an aggregate of the time logged
// against it. Goals are owned by the backend; the client only holds copies.
type Goal struct {
	// ID is assigned by the backend and unique per goal.
	ID int64 `json:"id" yaml:"id"`

	// Title is the non-empty display name of the goal.
	Title string `json:"title" yaml:"title"`

	// Description is optional free text.
	Description *string `json:"description" yaml:"description,omitempty"`

	CreatedAt Timestamp `json:"created_at" yaml:"created_at"`
	UpdatedAt Timestamp `json:"updated_at" yaml:"updated_at"`

	// TotalMinutes is computed by the backend as the sum of all entries.
	// The client never recomputes it.
	TotalMinutes int `json:"total_minutes" yaml:"total_minutes"`

	// TimeEntries lists the entries in the order the backend returns them.
	TimeEntries []TimeEntry `json:"time_entries" yaml:"time_entries"`
}

// TimeEntry is a single logged interval of minutes against a goal.
type TimeEntry struct {
	ID        int64     `json:"id" yaml:"id"`
	Minutes   int       `json:"minutes" yaml:"minutes"`
	Note      *string   `json:"note" yaml:"note,omitempty"`
	CreatedAt Timestamp `json:"created_at" yaml:"created_at"`
}

// GoalCreate is the request body for creating a goal.
type GoalCreate struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// GoalUpdate is the request body for a partial goal update. Nil fields are
// left unchanged by the backend.
type GoalUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// TimeEntryCreate is the request body for logging time against a goal.
type TimeEntryCreate struct {
	Minutes int     `json:"minutes"`
	Note    *string `json:"note,omitempty"`
}

// DescriptionText returns the description or "" when absent.
func (g Goal) DescriptionText() string {
	if g.Description == nil {
		return ""
	}
	return *g.Description
}

// LastLoggedAt returns the creation time of the newest time entry, or the
// zero time when nothing has been logged yet.
func (g Goal) LastLoggedAt() time.Time {
	var latest time.Time
	for _, e := range g.TimeEntries {
		if e.CreatedAt.Time.After(latest) {
			latest = e.CreatedAt.Time
		}
	}
	return latest
}

// NoteText returns the entry note or "" when absent.
func (e TimeEntry) NoteText() string {
	if e.Note == nil {
		return ""
	}
	return *e.Note
}

// OptionalString returns nil for blank input and a pointer to the trimmed
// value otherwise. Used when building request payloads from form input.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// FormatMinutes renders a minute count for display: "45 min", "2h",
// "1h 35m".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
