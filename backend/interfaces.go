package backend

import (
	"context"

	"github.com/poiesic/quickplay/core"
)

// SearchBackend talks to the remote player.
// Implementations must be thread-safe for concurrent use.
type SearchBackend interface {
	// Search returns the top result for text.
	// Returns nil, nil when nothing matches, when text is empty, or when the
	// response is missing expected fields. Errors are reserved for transport
	// and authentication failures.
	Search(ctx context.Context, text string) (*core.SearchResult, error)

	// Enqueue adds a track to the player queue at the given position.
	Enqueue(ctx context.Context, videoID string, position core.InsertPosition) error

	// Advance skips playback to the next track in the queue.
	Advance(ctx context.Context) error
}

// Provider resolves the backend to use for the next request.
type Provider interface {
	Backend() (SearchBackend, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() (SearchBackend, error)

// Backend calls f.
func (f ProviderFunc) Backend() (SearchBackend, error) {
	return f()
}

// Static returns a Provider that always resolves to b.
func Static(b SearchBackend) Provider {
	return ProviderFunc(func() (SearchBackend, error) {
		if b == nil {
			return nil, ErrNoBackend
		}
		return b, nil
	})
}

// Factory creates a backend for a validated configuration.
type Factory func(cfg *Config) (SearchBackend, error)

// AddressSource reports the server address currently configured.
// It is polled on every Handle.Backend call.
type AddressSource interface {
	ServerAddress() string
}
