package search

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/poiesic/quickplay/core"
)

// Source tells where a result item came from.
type Source int

const (
	// SourceLive marks the result returned by the backend search.
	SourceLive Source = iota
	// SourceHistory marks a result taken from the play history.
	SourceHistory
)

func (s Source) String() string {
	switch s {
	case SourceLive:
		return "live"
	case SourceHistory:
		return "history"
	default:
		return "unknown"
	}
}

// Item is one entry of the displayed result list.
type Item struct {
	Result core.SearchResult
	Source Source
	// Timestamp is when a history item was last played; zero for live results.
	Timestamp time.Time
}

// ResultStore holds the current result list.
// Replace swaps the whole list atomically, so concurrent readers see either
// the old list or the new one, never a mix.
type ResultStore struct {
	items atomic.Pointer[[]Item]
}

// NewResultStore creates an empty store.
func NewResultStore() *ResultStore {
	s := &ResultStore{}
	empty := []Item{}
	s.items.Store(&empty)
	return s
}

// Replace swaps in a copy of items.
func (s *ResultStore) Replace(items []Item) {
	next := slices.Clone(items)
	if next == nil {
		next = []Item{}
	}
	s.items.Store(&next)
}

// Snapshot returns a copy of the current list. Never nil.
func (s *ResultStore) Snapshot() []Item {
	p := s.items.Load()
	if p == nil {
		return []Item{}
	}
	return slices.Clone(*p)
}

// Len returns the number of items in the current list.
func (s *ResultStore) Len() int {
	p := s.items.Load()
	if p == nil {
		return 0
	}
	return len(*p)
}

// merge builds the display list: the live result first, then history.
func merge(live *core.SearchResult, history []core.HistoryEntry) []Item {
	items := make([]Item, 0, len(history)+1)
	if live != nil {
		items = append(items, Item{Result: *live, Source: SourceLive})
	}
	for _, e := range history {
		items = append(items, Item{Result: e.Result(), Source: SourceHistory, Timestamp: e.Timestamp})
	}
	return items
}
