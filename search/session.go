package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/poiesic/quickplay/backend"
	"github.com/poiesic/quickplay/core"
	"github.com/poiesic/quickplay/storage"
	"golang.org/x/sync/errgroup"
)

// SessionState is the lifecycle state of a Session.
type SessionState int32

const (
	SessionPending SessionState = iota
	SessionCompleted
	SessionCancelled
	SessionFailed
)

func (s SessionState) String() string {
	switch s {
	case SessionPending:
		return "pending"
	case SessionCompleted:
		return "completed"
	case SessionCancelled:
		return "cancelled"
	case SessionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is what a finished session produced.
type Outcome struct {
	// Live is the backend result, nil when there is none.
	Live *core.SearchResult
	// History is the filtered history, newest or best match first.
	History []core.HistoryEntry
	// SearchErr is the backend error that was demoted to "no live result".
	SearchErr error
	// HistoryErr is the history error that was demoted to "no history".
	HistoryErr error
}

// sessionPlan tells a session which lookups to run.
type sessionPlan struct {
	history     storage.HistoryRepository
	backends    backend.Provider
	loadHistory bool
	search      bool
	logger      *slog.Logger
}

// Session is one history plus backend round trip for a settled query.
// States move from Pending to exactly one of Completed, Cancelled or Failed.
type Session struct {
	query  core.Query
	ctx    context.Context
	cancel context.CancelFunc
	state  atomic.Int32
	done   chan struct{}

	// Written before done is closed.
	outcome Outcome
	err     error
}

func newSession(parent context.Context, q core.Query) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		query:  q,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Query returns the query the session runs.
func (s *Session) Query() core.Query {
	return s.query
}

// Generation returns the generation of the session's query.
func (s *Session) Generation() uint64 {
	return s.query.Generation
}

// State returns the current state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Cancel requests cancellation. In-flight lookups observe it through their
// context; the session ends Cancelled unless it already finished.
func (s *Session) Cancel() {
	s.cancel()
}

// Done is closed once the session reached a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Outcome returns the session's results and the error that failed it, if any.
// Only meaningful after Done is closed.
func (s *Session) Outcome() (Outcome, error) {
	return s.outcome, s.err
}

// run performs the lookups and moves the session to a terminal state.
func (s *Session) run(plan sessionPlan) {
	defer close(s.done)
	defer s.cancel()
	defer func() {
		if r := recover(); r != nil {
			s.err = fmt.Errorf("%w: %v", ErrSessionPanicked, r)
			s.finish(SessionFailed)
		}
	}()

	text := s.query.Text
	logger := plan.logger.With("generation", s.query.Generation)
	var out Outcome

	g, gctx := errgroup.WithContext(s.ctx)

	if plan.loadHistory {
		g.Go(guard(func() error {
			entries, err := plan.history.Load(gctx)
			if err != nil {
				if gctx.Err() == nil {
					logger.Warn("history load failed", "err", err)
				}
				out.HistoryErr = err
				return nil
			}
			out.History = FilterHistory(entries, text)
			return nil
		}))
	}

	if plan.search && text != "" {
		g.Go(guard(func() error {
			b, err := plan.backends.Backend()
			if err != nil {
				logger.Warn("no search backend", "err", err)
				out.SearchErr = err
				return nil
			}
			result, err := b.Search(gctx, text)
			if err != nil {
				if gctx.Err() == nil {
					logger.Warn("search failed", "query", text, "err", err)
					out.SearchErr = err
				}
				return nil
			}
			if result != nil {
				if err := core.ValidateSearchResult(result); err != nil {
					logger.Debug("dropping incomplete search result", "err", err)
					return nil
				}
			}
			out.Live = result
			return nil
		}))
	}

	if err := g.Wait(); err != nil {
		s.err = err
		s.finish(SessionFailed)
		return
	}

	s.outcome = out
	if s.ctx.Err() != nil {
		s.finish(SessionCancelled)
		return
	}
	s.finish(SessionCompleted)
}

// finish moves a pending session to state. Terminal states are final.
func (s *Session) finish(state SessionState) bool {
	return s.state.CompareAndSwap(int32(SessionPending), int32(state))
}

// guard turns a panic in fn into ErrSessionPanicked.
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrSessionPanicked, r)
			}
		}()
		return fn()
	}
}
