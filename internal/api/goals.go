package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nhle/goal-tracker/internal/model"
)

// ListGoals returns the signed-in user's goals, newest first.
func (c *Client) ListGoals(ctx context.Context) ([]model.Goal, error) {
	var goals []model.Goal
	req := request{method: http.MethodGet, path: "/goals/", auth: true}
	if err := c.call(ctx, req, &goals); err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []model.Goal{}
	}
	return goals, nil
}

// CreateGoal creates a goal and returns it as stored by the backend.
func (c *Client) CreateGoal(ctx context.Context, payload model.GoalCreate) (model.Goal, error) {
	var goal model.Goal
	req := request{method: http.MethodPost, path: "/goals/", json: payload, auth: true}
	if err := c.call(ctx, req, &goal); err != nil {
		return model.Goal{}, err
	}
	return goal, nil
}

// UpdateGoal applies a partial update to goal id.
func (c *Client) UpdateGoal(ctx context.Context, id int64, payload model.GoalUpdate) (model.Goal, error) {
	var goal model.Goal
	req := request{method: http.MethodPut, path: goalPath(id), json: payload, auth: true}
	if err := c.call(ctx, req, &goal); err != nil {
		return model.Goal{}, err
	}
	return goal, nil
}

// DeleteGoal deletes goal id together with its time entries.
func (c *Client) DeleteGoal(ctx context.Context, id int64) error {
	req := request{method: http.MethodDelete, path: goalPath(id), auth: true}
	return c.call(ctx, req, nil)
}

// LogTime appends a time entry to goal id and returns the updated goal,
// including the new aggregate and the appended entry.
func (c *Client) LogTime(ctx context.Context, id int64, payload model.TimeEntryCreate) (model.Goal, error) {
	var goal model.Goal
	req := request{method: http.MethodPost, path: goalPath(id) + "/time", json: payload, auth: true}
	if err := c.call(ctx, req, &goal); err != nil {
		return model.Goal{}, err
	}
	return goal, nil
}

// ListTimeEntries returns the time entries logged against goal id.
func (c *Client) ListTimeEntries(ctx context.Context, id int64) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	req := request{method: http.MethodGet, path: goalPath(id) + "/time", auth: true}
	if err := c.call(ctx, req, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func goalPath(id int64) string {
	return fmt.Sprintf("/goals/%d", id)
}
