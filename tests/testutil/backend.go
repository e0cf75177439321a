package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/goal-tracker/internal/model"
)

// RecordedRequest is a request observed by the FakeBackend.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
}

type fakeUser struct {
	id       int64
	fullName string
	email    string
	hash     []byte
}

type fakeGoal struct {
	owner int64
	goal  model.Goal
}

// FakeBackend is an in-process implementation of the Goals Tracker REST
// API for tests. It mirrors the real backend's status codes and FastAPI
// error bodies.
type FakeBackend struct {
	Server *httptest.Server

	mu        sync.Mutex
	users     map[string]*fakeUser
	tokens    map[string]int64
	goals     map[int64]*fakeGoal
	nextUser  int64
	nextGoal  int64
	nextEntry int64
	now       time.Time
	requests  []RecordedRequest
	failures  map[string]int
	delay     map[string]chan struct{}
}

// NewFakeBackend starts a FakeBackend and closes it when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		users:    make(map[string]*fakeUser),
		tokens:   make(map[string]int64),
		goals:    make(map[int64]*fakeGoal),
		now:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		failures: make(map[string]int),
		delay:    make(map[string]chan struct{}),
	}

	r := mux.NewRouter()
	r.Use(fb.record)
	r.HandleFunc("/", fb.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/auth/register", fb.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", fb.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/goals/", fb.authed(fb.handleListGoals)).Methods(http.MethodGet)
	r.HandleFunc("/goals/", fb.authed(fb.handleCreateGoal)).Methods(http.MethodPost)
	r.HandleFunc("/goals/{id:[0-9]+}", fb.authed(fb.handleUpdateGoal)).Methods(http.MethodPut)
	r.HandleFunc("/goals/{id:[0-9]+}", fb.authed(fb.handleDeleteGoal)).Methods(http.MethodDelete)
	r.HandleFunc("/goals/{id:[0-9]+}/time", fb.authed(fb.handleLogTime)).Methods(http.MethodPost)
	r.HandleFunc("/goals/{id:[0-9]+}/time", fb.authed(fb.handleListEntries)).Methods(http.MethodGet)

	fb.Server = httptest.NewServer(r)
	t.Cleanup(fb.Server.Close)
	return fb
}

// URL returns the base URL of the fake API.
func (fb *FakeBackend) URL() string {
	return fb.Server.URL
}

// AddUser registers an account directly, bypassing HTTP.
func (fb *FakeBackend) AddUser(fullName, email, password string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.addUserLocked(fullName, email, password)
}

// IssueToken signs email in and returns a valid token, bypassing HTTP.
func (fb *FakeBackend) IssueToken(email string) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	u := fb.users[email]
	if u == nil {
		return ""
	}
	token := uuid.NewString()
	fb.tokens[token] = u.id
	return token
}

// SeedGoal creates a goal owned by email, bypassing HTTP.
func (fb *FakeBackend) SeedGoal(email, title string, minutes ...int) model.Goal {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	u := fb.users[email]
	if u == nil {
		return model.Goal{}
	}
	g := fb.createGoalLocked(u.id, title, nil)
	for _, m := range minutes {
		fb.appendEntryLocked(g, m, nil)
	}
	return g.goal
}

// DeleteGoalDirect removes a goal without going through HTTP, simulating
// a deletion made by another client.
func (fb *FakeBackend) DeleteGoalDirect(id int64) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	delete(fb.goals, id)
}

// FailNext makes the next request matching method and path respond with
// status.
func (fb *FakeBackend) FailNext(method, path string, status int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures[method+" "+path] = status
}

// Hold blocks the next requests matching method and path until the
// returned release function is called.
func (fb *FakeBackend) Hold(method, path string) (release func()) {
	ch := make(chan struct{})
	fb.mu.Lock()
	fb.delay[method+" "+path] = ch
	fb.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Requests returns a copy of all recorded requests.
func (fb *FakeBackend) Requests() []RecordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]RecordedRequest, len(fb.requests))
	copy(out, fb.requests)
	return out
}

// LastRequest returns the most recent request.
func (fb *FakeBackend) LastRequest() RecordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.requests) == 0 {
		return RecordedRequest{}
	}
	return fb.requests[len(fb.requests)-1]
}

// GoalCount returns the number of stored goals across all users.
func (fb *FakeBackend) GoalCount() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.goals)
}

func (fb *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		fb.mu.Lock()
		fb.requests = append(fb.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
		})
		status, fail := fb.failures[key]
		delete(fb.failures, key)
		hold := fb.delay[key]
		delete(fb.delay, key)
		fb.mu.Unlock()

		if hold != nil {
			<-hold
		}
		if fail {
			writeDetail(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) authed(h func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		fb.mu.Lock()
		userID, ok := fb.tokens[token]
		fb.mu.Unlock()
		if header == "" || !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		h(w, r, userID)
	}
}

func (fb *FakeBackend) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Goals Tracker API is running"})
}

func (fb *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if len(in.Password) < 8 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{
				"loc":  []string{"body", "password"},
				"msg":  "ensure this value has at least 8 characters",
				"type": "value_error.any_str.min_length",
			}},
		})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, exists := fb.users[in.Email]; exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := fb.addUserLocked(in.FullName, in.Email, in.Password)
	writeJSON(w, http.StatusCreated, model.User{
		ID:        u.id,
		Email:     u.email,
		FullName:  u.fullName,
		CreatedAt: model.NewTimestamp(fb.now),
	})
}

func (fb *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	email := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	u := fb.users[email]
	if u == nil || bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	token := uuid.NewString()
	fb.tokens[token] = u.id
	writeJSON(w, http.StatusOK, model.Token{AccessToken: token, TokenType: "bearer"})
}

func (fb *FakeBackend) handleListGoals(w http.ResponseWriter, _ *http.Request, userID int64) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []model.Goal{}
	for _, g := range fb.goals {
		if g.owner == userID {
			out = append(out, g.goal)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt.Time)
	})
	writeJSON(w, http.StatusOK, out)
}

func (fb *FakeBackend) handleCreateGoal(w http.ResponseWriter, r *http.Request, userID int64) {
	var in model.GoalCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title is required")
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	g := fb.createGoalLocked(userID, in.Title, in.Description)
	writeJSON(w, http.StatusCreated, g.goal)
}

func (fb *FakeBackend) handleUpdateGoal(w http.ResponseWriter, r *http.Request, userID int64) {
	var in model.GoalUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	g := fb.ownedGoalLocked(r, userID)
	if g == nil {
		writeDetail(w, http.StatusNotFound, "Goal not found")
		return
	}
	if in.Title != nil {
		g.goal.Title = *in.Title
	}
	if in.Description != nil {
		d := *in.Description
		g.goal.Description = &d
	}
	g.goal.UpdatedAt = model.NewTimestamp(fb.tick())
	writeJSON(w, http.StatusOK, g.goal)
}

func (fb *FakeBackend) handleDeleteGoal(w http.ResponseWriter, r *http.Request, userID int64) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	g := fb.ownedGoalLocked(r, userID)
	if g == nil {
		writeDetail(w, http.StatusNotFound, "Goal not found")
		return
	}
	delete(fb.goals, g.goal.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (fb *FakeBackend) handleLogTime(w http.ResponseWriter, r *http.Request, userID int64) {
	var in model.TimeEntryCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Minutes <= 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "minutes must be greater than 0")
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	g := fb.ownedGoalLocked(r, userID)
	if g == nil {
		writeDetail(w, http.StatusNotFound, "Goal not found")
		return
	}
	fb.appendEntryLocked(g, in.Minutes, in.Note)
	writeJSON(w, http.StatusCreated, g.goal)
}

func (fb *FakeBackend) handleListEntries(w http.ResponseWriter, r *http.Request, userID int64) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	g := fb.ownedGoalLocked(r, userID)
	if g == nil {
		writeDetail(w, http.StatusNotFound, "Goal not found")
		return
	}
	writeJSON(w, http.StatusOK, g.goal.TimeEntries)
}

func (fb *FakeBackend) addUserLocked(fullName, email, password string) *fakeUser {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	fb.nextUser++
	u := &fakeUser{id: fb.nextUser, fullName: fullName, email: email, hash: hash}
	fb.users[email] = u
	return u
}

func (fb *FakeBackend) createGoalLocked(owner int64, title string, description *string) *fakeGoal {
	fb.nextGoal++
	now := model.NewTimestamp(fb.tick())
	g := &fakeGoal{
		owner: owner,
		goal: model.Goal{
			ID:          fb.nextGoal,
			Title:       title,
			Description: description,
			CreatedAt:   now,
			UpdatedAt:   now,
			TimeEntries: []model.TimeEntry{},
		},
	}
	fb.goals[g.goal.ID] = g
	return g
}

func (fb *FakeBackend) appendEntryLocked(g *fakeGoal, minutes int, note *string) {
	fb.nextEntry++
	g.goal.TimeEntries = append(g.goal.TimeEntries, model.TimeEntry{
		ID:        fb.nextEntry,
		Minutes:   minutes,
		Note:      note,
		CreatedAt: model.NewTimestamp(fb.tick()),
	})
	g.goal.TotalMinutes += minutes
}

func (fb *FakeBackend) ownedGoalLocked(r *http.Request, userID int64) *fakeGoal {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return nil
	}
	g := fb.goals[id]
	if g == nil || g.owner != userID {
		return nil
	}
	return g
}

// tick advances the fake clock so creation order is strictly increasing.
func (fb *FakeBackend) tick() time.Time {
	fb.now = fb.now.Add(time.Second)
	return fb.now
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
