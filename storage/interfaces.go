package storage

import (
	"context"

	"github.com/poiesic/quickplay/core"
)

// HistoryRepository stores the ordered list of recently played tracks.
// Implementations must be thread-safe and support concurrent access.
type HistoryRepository interface {
	// Load returns all history entries, newest first.
	// Returns an empty slice if there is no history.
	Load(ctx context.Context) ([]core.HistoryEntry, error)

	// Save upserts an entry by VideoID. If an entry with the same VideoID
	// exists, the one with the most recent timestamp is kept.
	// After saving, the oldest entries are evicted so the count does not
	// exceed the configured maximum.
	Save(ctx context.Context, entry core.HistoryEntry) error

	// Trim evicts the oldest entries until at most max remain.
	// A max of zero or less removes nothing.
	Trim(ctx context.Context, max int) error

	// Clear removes every history entry.
	Clear(ctx context.Context) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the repository.
	Close() error
}
