package store

import (
	"context"
	"time"

	"github.com/nhle/goal-tracker/internal/model"
)

// ActivityFilter controls filtering and pagination for journal queries.
type ActivityFilter struct {
	GoalID *int64
	Kind   *model.ActivityKind
	Since  *time.Time // inclusive
	Limit  int        // 0 means no limit
}

// Store defines the persistence interface for the local activity journal.
type Store interface {
	// Record appends an entry. A missing ID or timestamp is filled in.
	Record(ctx context.Context, a model.Activity) error

	// ListActivity returns entries newest first.
	ListActivity(ctx context.Context, filter ActivityFilter) ([]model.Activity, error)

	// MinutesLogged sums the minutes of time_logged entries since a point in time.
	MinutesLogged(ctx context.Context, since time.Time) (int, error)

	// PruneActivity deletes entries older than before and reports how many went.
	PruneActivity(ctx context.Context, before time.Time) (int64, error)

	// ClearActivity deletes every entry and reports how many went.
	ClearActivity(ctx context.Context) (int64, error)

	Close() error
}
