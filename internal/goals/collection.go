// Package goals mirrors the signed-in user's remote goal list into a local
// cache that the views render from.
//
// The cache is only ever changed after the backend acknowledged an
// operation, and the goal returned by the backend replaces the cached
// copy; totals are never computed locally.
package goals

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/nhle/goal-tracker/internal/model"
)

// ErrStale is returned when a response arrives after its context was
// cancelled or the collection was reset; the response is discarded.
var ErrStale = errors.New("goals: response discarded, view is gone")

// API is the subset of the backend client the collection needs.
type API interface {
	ListGoals(ctx context.Context) ([]model.Goal, error)
	CreateGoal(ctx context.Context, payload model.GoalCreate) (model.Goal, error)
	UpdateGoal(ctx context.Context, id int64, payload model.GoalUpdate) (model.Goal, error)
	DeleteGoal(ctx context.Context, id int64) error
	LogTime(ctx context.Context, id int64, payload model.TimeEntryCreate) (model.Goal, error)
}

// Recorder is notified after each acknowledged mutation. The activity
// journal implements it.
type Recorder interface {
	Record(ctx context.Context, a model.Activity) error
}

// StateKind tags the load state of the collection.
type StateKind int

const (
	StateLoading StateKind = iota
	StateReady
	StateFailed
)

func (k StateKind) String() string {
	switch k {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoadState is the tagged union loading | ready | failed(err).
type LoadState struct {
	Kind StateKind
	Err  error
}

// Collection is the local cache of goals, newest-created first.
// It is safe for concurrent use.
type Collection struct {
	api      API
	recorder Recorder

	mu    sync.Mutex
	goals []model.Goal
	state LoadState
	epoch uint64
}

// Option configures a Collection.
type Option func(*Collection)

// WithRecorder attaches an activity recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Collection) { c.recorder = r }
}

// NewCollection returns an empty collection in the loading state; callers
// are expected to Refresh right away.
func NewCollection(api API, opts ...Option) *Collection {
	c := &Collection{
		api:   api,
		state: LoadState{Kind: StateLoading},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Goals returns a copy of the cached goals.
func (c *Collection) Goals() []model.Goal {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Goal, len(c.goals))
	copy(out, c.goals)
	return out
}

// State returns the current load state.
func (c *Collection) State() LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether a refresh is in flight.
func (c *Collection) Loading() bool {
	return c.State().Kind == StateLoading
}

// Find returns the cached goal with id.
func (c *Collection) Find(id int64) (model.Goal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.goals[i], true
	}
	return model.Goal{}, false
}

// TotalMinutes sums the backend-reported totals of all cached goals.
func (c *Collection) TotalMinutes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, g := range c.goals {
		total += g.TotalMinutes
	}
	return total
}

// Reset empties the cache and returns to the loading state. Responses to
// requests started before Reset are discarded.
func (c *Collection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.goals = nil
	c.state = LoadState{Kind: StateLoading}
}

// Refresh fetches the goal list and replaces the cache. On failure,
// timeouts included, the previous goals are kept and the state becomes
// failed. A cancelled refresh restores the state it started from. Only a
// Reset in the meantime leaves the collection loading, because the reset
// already started over.
func (c *Collection) Refresh(ctx context.Context) error {
	c.mu.Lock()
	epoch := c.epoch
	prev := c.state
	c.state = LoadState{Kind: StateLoading}
	c.mu.Unlock()

	goals, err := c.api.ListGoals(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return ErrStale
	}
	if cause := ctx.Err(); errors.Is(cause, context.Canceled) {
		if prev.Kind == StateLoading {
			prev = LoadState{Kind: StateFailed, Err: cause}
		}
		c.state = prev
		return ErrStale
	}
	if err != nil {
		c.state = LoadState{Kind: StateFailed, Err: err}
		return fmt.Errorf("refreshing goals: %w", err)
	}
	c.goals = goals
	c.state = LoadState{Kind: StateReady}
	return nil
}

// Create creates a goal and prepends it to the cache.
func (c *Collection) Create(ctx context.Context, payload model.GoalCreate) (model.Goal, error) {
	epoch := c.currentEpoch()
	goal, err := c.api.CreateGoal(ctx, payload)
	if err != nil {
		return model.Goal{}, fmt.Errorf("creating goal: %w", err)
	}

	c.mu.Lock()
	if c.staleLocked(ctx, epoch) {
		c.mu.Unlock()
		return goal, ErrStale
	}
	c.goals = append([]model.Goal{goal}, c.goals...)
	c.mu.Unlock()

	c.record(ctx, model.Activity{Kind: model.ActivityGoalCreated, GoalID: goal.ID, GoalTitle: goal.Title})
	return goal, nil
}

// Update applies a partial update and replaces the cached goal.
func (c *Collection) Update(ctx context.Context, id int64, payload model.GoalUpdate) (model.Goal, error) {
	epoch := c.currentEpoch()
	goal, err := c.api.UpdateGoal(ctx, id, payload)
	if err != nil {
		return model.Goal{}, fmt.Errorf("updating goal %d: %w", id, err)
	}

	if err := c.replace(ctx, epoch, id, goal); err != nil {
		return goal, err
	}
	c.record(ctx, model.Activity{Kind: model.ActivityGoalUpdated, GoalID: goal.ID, GoalTitle: goal.Title})
	return goal, nil
}

// Remove deletes goal id and drops it from the cache. On failure the
// cache is left untouched.
func (c *Collection) Remove(ctx context.Context, id int64) error {
	epoch := c.currentEpoch()
	title := ""
	if g, ok := c.Find(id); ok {
		title = g.Title
	}

	if err := c.api.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("deleting goal %d: %w", id, err)
	}

	c.mu.Lock()
	if c.staleLocked(ctx, epoch) {
		c.mu.Unlock()
		return ErrStale
	}
	if i := c.indexLocked(id); i >= 0 {
		c.goals = append(c.goals[:i:i], c.goals[i+1:]...)
	}
	c.mu.Unlock()

	c.record(ctx, model.Activity{Kind: model.ActivityGoalDeleted, GoalID: id, GoalTitle: title})
	return nil
}

// LogTime appends a time entry and replaces the cached goal with the
// backend's updated copy.
func (c *Collection) LogTime(ctx context.Context, id int64, payload model.TimeEntryCreate) (model.Goal, error) {
	epoch := c.currentEpoch()
	goal, err := c.api.LogTime(ctx, id, payload)
	if err != nil {
		return model.Goal{}, fmt.Errorf("logging time on goal %d: %w", id, err)
	}

	if err := c.replace(ctx, epoch, id, goal); err != nil {
		return goal, err
	}

	a := model.Activity{
		Kind:      model.ActivityTimeLogged,
		GoalID:    goal.ID,
		GoalTitle: goal.Title,
		Minutes:   payload.Minutes,
	}
	if payload.Note != nil {
		a.Note = *payload.Note
	}
	c.record(ctx, a)
	return goal, nil
}

func (c *Collection) replace(ctx context.Context, epoch uint64, id int64, goal model.Goal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(ctx, epoch) {
		return ErrStale
	}
	if i := c.indexLocked(id); i >= 0 {
		c.goals[i] = goal
	}
	return nil
}

func (c *Collection) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// staleLocked reports whether a response must be dropped: the caller
// cancelled, or a Reset happened after the request was sent. A deadline
// is not staleness; the request failed and the caller sees the error.
func (c *Collection) staleLocked(ctx context.Context, epoch uint64) bool {
	return errors.Is(ctx.Err(), context.Canceled) || epoch != c.epoch
}

// indexLocked finds id by linear scan.
func (c *Collection) indexLocked(id int64) int {
	for i, g := range c.goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// record forwards to the recorder. Journal failures never fail the
// mutation, which the backend has already applied.
func (c *Collection) record(ctx context.Context, a model.Activity) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(context.WithoutCancel(ctx), a); err != nil {
		log.Printf("recording activity %s for goal %d: %v", a.Kind, a.GoalID, err)
	}
}
