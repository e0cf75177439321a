package model

import (
	"fmt"
	"time"
)

// ActivityKind identifies the mutation an Activity records.
type ActivityKind string

const (
	ActivityGoalCreated ActivityKind = "goal_created"
	ActivityGoalUpdated ActivityKind = "goal_updated"
	ActivityGoalDeleted ActivityKind = "goal_deleted"
	ActivityTimeLogged  ActivityKind = "time_logged"
)

// Activity is one entry of the local activity journal: a record of a
// mutation this client performed after the backend acknowledged it.
type Activity struct {
	// ID is the unique identifier for this entry.
	ID string `json:"id" db:"id" yaml:"id"`

	Kind ActivityKind `json:"kind" db:"kind" yaml:"kind"`

	// GoalID and GoalTitle identify the goal as it was at the time.
	GoalID    int64  `json:"goal_id" db:"goal_id" yaml:"goal_id"`
	GoalTitle string `json:"goal_title" db:"goal_title" yaml:"goal_title"`

	// Minutes and Note are only set for ActivityTimeLogged.
	Minutes int    `json:"minutes,omitempty" db:"minutes" yaml:"minutes,omitempty"`
	Note    string `json:"note,omitempty" db:"note" yaml:"note,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at" yaml:"created_at"`
}

// Summary returns a one-line human readable description of the entry.
func (a Activity) Summary() string {
	switch a.Kind {
	case ActivityGoalCreated:
		return fmt.Sprintf("Created goal %q", a.GoalTitle)
	case ActivityGoalUpdated:
		return fmt.Sprintf("Edited goal %q", a.GoalTitle)
	case ActivityGoalDeleted:
		return fmt.Sprintf("Deleted goal %q", a.GoalTitle)
	case ActivityTimeLogged:
		s := fmt.Sprintf("Logged %s on %q", FormatMinutes(a.Minutes), a.GoalTitle)
		if a.Note != "" {
			s += ": " + a.Note
		}
		return s
	default:
		return string(a.Kind)
	}
}
