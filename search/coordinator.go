// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package search

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/quickplay/backend"
	"github.com/poiesic/quickplay/core"
	"github.com/poiesic/quickplay/settings"
	"github.com/poiesic/quickplay/storage"
)

// HistoryDisabledMode selects what a search shows while history is turned off.
type HistoryDisabledMode int

const (
	// HistoryDisabledDropsLive shows an empty list and skips the backend search.
	HistoryDisabledDropsLive HistoryDisabledMode = iota
	// HistoryDisabledLiveOnly shows the live result alone.
	HistoryDisabledLiveOnly
)

// Coordinator runs one Session per settled query and applies the results of
// the newest one to its ResultStore.
//
// Every accepted query gets the next generation. Starting a session cancels
// the previous one, and a finished session is applied only if its generation
// is still the latest started and above the last applied. Each applied
// session triggers exactly one results-changed notification.
type Coordinator struct {
	history      storage.HistoryRepository
	backends     backend.Provider
	settings     settings.View
	store        *ResultStore
	onChanged    func(count int)
	monitor      Monitor
	disabledMode HistoryDisabledMode
	pool         *ants.Pool
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	generation uint64
	current    *Session
	lastText   string
	accepted   bool
	// lastFailed is set when the session for lastText failed, so the same
	// text settling again reruns it.
	lastFailed bool
	closed     bool

	// latest is the highest generation started.
	latest atomic.Uint64

	// applyMu serialises the generation check with the store swap.
	applyMu     sync.Mutex
	lastApplied atomic.Uint64
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithPoolSize sets the number of sessions that may run at once.
// Superseded sessions hold a worker until their lookups return, so the
// minimum is 2. Default is runtime.NumCPU(), at least 4.
func WithPoolSize(size int) Option {
	return func(c *Coordinator) error {
		if size < 2 {
			return ErrInvalidPoolSize
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if c.pool != nil {
			c.pool.Release()
		}
		c.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithMonitor sets hooks that observe sessions.
func WithMonitor(monitor Monitor) Option {
	return func(c *Coordinator) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		c.monitor = monitor
		return nil
	}
}

// WithResultStore sets the store results are applied to.
// Default is a new empty store.
func WithResultStore(store *ResultStore) Option {
	return func(c *Coordinator) error {
		if store != nil {
			c.store = store
		}
		return nil
	}
}

// WithOnResultsChanged sets the callback fired once per applied session with
// the new result count. It runs on a worker goroutine while applies are
// serialised, so it must return quickly.
func WithOnResultsChanged(fn func(count int)) Option {
	return func(c *Coordinator) error {
		c.onChanged = fn
		return nil
	}
}

// WithHistoryDisabledMode sets the behavior while the history limit is none.
// Default is HistoryDisabledDropsLive.
func WithHistoryDisabledMode(mode HistoryDisabledMode) Option {
	return func(c *Coordinator) error {
		c.disabledMode = mode
		return nil
	}
}

// NewCoordinator creates a coordinator.
func NewCoordinator(
	history storage.HistoryRepository,
	backends backend.Provider,
	view settings.View,
	opts ...Option,
) (*Coordinator, error) {
	if history == nil {
		return nil, ErrHistoryStoreRequired
	}
	if backends == nil {
		return nil, ErrBackendRequired
	}
	if view == nil {
		return nil, ErrSettingsRequired
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		history:   history,
		backends:  backends,
		settings:  view,
		store:     NewResultStore(),
		onChanged: func(int) {},
		monitor:   &noopMonitor{},
		logger:    slog.Default().With("component", "search"),
		ctx:       ctx,
		cancel:    cancel,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			c.release()
			return nil, err
		}
	}
	if c.onChanged == nil {
		c.onChanged = func(int) {}
	}

	if c.pool == nil {
		size := runtime.NumCPU()
		if size < 4 {
			size = 4
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			c.release()
			return nil, err
		}
		c.pool = pool
	}

	return c, nil
}

// OnSettled accepts a settled query. Text equal to the previously accepted
// query is ignored unless that query failed; use Refresh to rerun it.
func (c *Coordinator) OnSettled(text string) {
	c.start(text, false)
}

// Refresh reruns the last accepted query under a new generation.
// Does nothing before the first query.
func (c *Coordinator) Refresh() {
	c.mu.Lock()
	if !c.accepted {
		c.mu.Unlock()
		return
	}
	text := c.lastText
	c.mu.Unlock()

	c.start(text, true)
}

func (c *Coordinator) start(text string, force bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if !force && c.accepted && !c.lastFailed && text == c.lastText {
		c.mu.Unlock()
		c.logger.Debug("ignoring identical query", "text", text)
		return
	}

	c.generation++
	q := core.Query{Text: text, Generation: c.generation}

	if prev := c.current; prev != nil && prev.State() == SessionPending {
		prev.Cancel()
		c.monitor.SessionCancelled(prev.Query())
	}

	sess := newSession(c.ctx, q)
	c.current = sess
	c.lastText = text
	c.accepted = true
	c.lastFailed = false
	c.latest.Store(q.Generation)
	c.wg.Add(1)
	c.mu.Unlock()

	plan := c.plan()
	c.monitor.SessionStarted(q)
	c.logger.Debug("starting session", "generation", q.Generation, "text", text,
		"history", plan.loadHistory, "search", plan.search)

	err := c.pool.Submit(func() {
		defer c.wg.Done()
		sess.run(plan)
		c.complete(sess)
	})
	if err != nil {
		c.wg.Done()
		sess.Cancel()
		c.markFailed(sess)
		c.logger.Error("error submitting search session", "generation", q.Generation, "err", err)
	}
}

// plan polls the settings for the lookups a new session should run.
func (c *Coordinator) plan() sessionPlan {
	enabled := c.settings.HistoryLimit().Enabled()
	return sessionPlan{
		history:     c.history,
		backends:    c.backends,
		loadHistory: enabled,
		search:      enabled || c.disabledMode == HistoryDisabledLiveOnly,
		logger:      c.logger,
	}
}

// complete applies a finished session if it is still the newest.
func (c *Coordinator) complete(sess *Session) {
	q := sess.Query()
	state := sess.State()
	if state != SessionCompleted {
		if _, err := sess.Outcome(); err != nil {
			c.logger.Error("search session failed", "generation", q.Generation, "err", err)
		} else {
			c.logger.Debug("discarding session", "generation", q.Generation, "state", state)
		}
		if state == SessionFailed {
			c.markFailed(sess)
		}
		c.monitor.SessionDiscarded(q, state.String())
		return
	}

	out, _ := sess.Outcome()
	if out.SearchErr != nil {
		c.monitor.SearchFailed(q, out.SearchErr)
	}
	items := merge(out.Live, out.History)

	c.applyMu.Lock()
	if q.Generation != c.latest.Load() || q.Generation <= c.lastApplied.Load() {
		c.applyMu.Unlock()
		c.logger.Debug("discarding stale session", "generation", q.Generation, "latest", c.latest.Load())
		c.monitor.SessionDiscarded(q, "stale")
		return
	}
	c.lastApplied.Store(q.Generation)
	c.store.Replace(items)
	c.onChanged(len(items))
	c.applyMu.Unlock()

	c.monitor.Applied(q, len(items))
}

// markFailed lets the text of sess settle again if sess is still current.
func (c *Coordinator) markFailed(sess *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == sess {
		c.lastFailed = true
	}
}

// Store returns the result store the coordinator applies to.
func (c *Coordinator) Store() *ResultStore {
	return c.store
}

// Generation returns the highest generation started so far.
func (c *Coordinator) Generation() uint64 {
	return c.latest.Load()
}

// LastApplied returns the generation of the last applied session.
func (c *Coordinator) LastApplied() uint64 {
	return c.lastApplied.Load()
}

// Wait blocks until every started session has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close cancels running sessions, waits for them and releases the pool.
// Later queries are ignored.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	c.release()
	return nil
}

func (c *Coordinator) release() {
	c.cancel()
	if c.pool != nil {
		c.pool.Release()
	}
}
