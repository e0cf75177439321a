// Package sync refreshes the goal list in the background on a fixed
// interval while the dashboard is open.
package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/goal-tracker/internal/api"
	"github.com/nhle/goal-tracker/internal/goals"
)

// SyncState represents the current state of the refresher.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus is a snapshot of the refresher.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// RefreshResultMsg is a tea.Msg sent when a background refresh completes.
type RefreshResultMsg struct {
	Error error
	// Unauthorized is set when the backend rejected the session token.
	Unauthorized bool
	At           time.Time
}

// Refresher is what the poller keeps fresh. *goals.Collection satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// fetchTimeout is the maximum time allowed for a single refresh.
const fetchTimeout = 30 * time.Second

// Poller refreshes a Refresher on a ticker and on demand.
type Poller struct {
	target    Refresher
	interval  time.Duration
	status    SyncStatus
	resultCh  chan RefreshResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	mu        gosync.Mutex
	running   bool
	wg        gosync.WaitGroup
}

// New creates a Poller. An interval of zero or less disables the ticker;
// RefreshNow still works.
func New(target Refresher, interval time.Duration) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		target:    target,
		interval:  interval,
		resultCh:  make(chan RefreshResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Interval returns the configured refresh interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start launches the polling goroutine and returns a tea.Cmd that waits
// for the first result. It returns nil if the poller already ran.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running || p.ctx.Err() != nil {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine and cancels an in-flight refresh.
// A stopped poller cannot be restarted.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		p.cancel()
		return
	}
	close(p.stopCh)
	p.running = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// RefreshNow triggers an immediate refresh. Triggers are coalesced while
// one is pending.
func (p *Poller) RefreshNow() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the current sync status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop() {
	defer p.wg.Done()

	var tick <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-p.stopCh:
			return
		case <-tick:
			p.refresh()
		case <-p.triggerCh:
			p.refresh()
		}
	}
}

// refresh performs a single refresh and publishes the result.
func (p *Poller) refresh() {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(p.ctx, fetchTimeout)
	defer cancel()

	err := p.target.Refresh(ctx)
	if errors.Is(err, goals.ErrStale) {
		// The dashboard was left; nobody wants this result.
		p.setStatus(SyncIdle, nil)
		return
	}
	if err != nil {
		p.setStatus(SyncError, err)
		p.sendResult(RefreshResultMsg{
			Error:        err,
			Unauthorized: api.IsUnauthorized(err),
			At:           time.Now(),
		})
		return
	}

	p.setStatus(SyncIdle, nil)
	p.sendResult(RefreshResultMsg{At: time.Now()})
}

func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a result without blocking.
func (p *Poller) sendResult(msg RefreshResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result. Once the
// poller is stopped the command returns nil.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-p.ctx.Done():
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh
// result. Call it after handling each RefreshResultMsg.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
