package search

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultDelay is the quiet period after which pending text settles.
const DefaultDelay = 300 * time.Millisecond

// Gate collapses rapid text updates into at most one settle per quiet period.
//
// Every Update bumps a token and arms a fresh timer carrying that token. A
// timer whose token is no longer current does nothing when it fires, so only
// the latest Update can settle. Settles never overlap, and text equal to the
// last settled text is dropped.
type Gate struct {
	delay     time.Duration
	onSettled func(text string)
	logger    *slog.Logger

	mu          sync.Mutex
	token       uint64
	timer       *time.Timer
	pending     string
	hasPending  bool
	lastSettled string
	settled     bool
	stopped     bool

	// fireMu serialises settle callbacks.
	fireMu sync.Mutex
}

// GateOption configures a Gate.
type GateOption func(*Gate) error

// WithDelay sets the debounce delay.
// Default is DefaultDelay.
func WithDelay(d time.Duration) GateOption {
	return func(g *Gate) error {
		if d <= 0 {
			return ErrInvalidDelay
		}
		g.delay = d
		return nil
	}
}

// WithGateLogger sets a custom logger.
// Default is slog.Default().
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewGate creates a gate that calls onSettled with each settled text.
func NewGate(onSettled func(text string), opts ...GateOption) (*Gate, error) {
	if onSettled == nil {
		return nil, ErrSettleCallbackRequired
	}

	g := &Gate{
		delay:     DefaultDelay,
		onSettled: onSettled,
		logger:    slog.Default().With("component", "debounce"),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Update records text as the pending value and restarts the quiet period.
func (g *Gate) Update(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}

	g.token++
	token := g.token
	g.pending = text
	g.hasPending = true

	// Stopping is best effort; a timer that already fired sees a stale token.
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.delay, func() { g.fire(token) })
}

// Flush settles the pending text now instead of waiting out the delay.
// Returns false if nothing was pending. Either way it returns only after a
// settle already in progress has finished, so it must not be called from the
// settle callback.
func (g *Gate) Flush() bool {
	g.mu.Lock()
	if g.stopped || !g.hasPending {
		g.mu.Unlock()
		g.fireMu.Lock()
		g.fireMu.Unlock()
		return false
	}
	token := g.token
	if g.timer != nil {
		g.timer.Stop()
	}
	g.mu.Unlock()

	g.fire(token)
	return true
}

// Pending reports whether an update is waiting to settle.
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hasPending
}

// Delay returns the debounce delay.
func (g *Gate) Delay() time.Duration {
	return g.delay
}

// Stop discards any pending text. Later updates are ignored.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopped = true
	g.token++
	g.hasPending = false
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

func (g *Gate) fire(token uint64) {
	g.fireMu.Lock()
	defer g.fireMu.Unlock()

	g.mu.Lock()
	if g.stopped || token != g.token || !g.hasPending {
		g.mu.Unlock()
		return
	}
	text := g.pending
	g.hasPending = false
	g.timer = nil
	if g.settled && text == g.lastSettled {
		g.mu.Unlock()
		g.logger.Debug("ignoring unchanged query", "text", text)
		return
	}
	g.lastSettled = text
	g.settled = true
	g.mu.Unlock()

	g.onSettled(text)
}
