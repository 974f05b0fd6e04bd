package search

import "github.com/poiesic/quickplay/core"

// Monitor provides hooks to observe the coordinator.
// Implement this interface to track sessions for diagnostics or to surface
// search failures in a host UI. Hooks are called from worker goroutines and
// must not block.
type Monitor interface {
	// SessionStarted is called when a settled query starts a session.
	SessionStarted(q core.Query)
	// SessionCancelled is called when a pending session is superseded.
	SessionCancelled(q core.Query)
	// SessionDiscarded is called when a finished session is not applied.
	SessionDiscarded(q core.Query, reason string)
	// SearchFailed is called when the backend search of a session failed.
	// The session still completes without a live result.
	SearchFailed(q core.Query, err error)
	// Applied is called after a session's results replaced the store.
	Applied(q core.Query, count int)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) SessionStarted(_ core.Query)             {}
func (n *noopMonitor) SessionCancelled(_ core.Query)           {}
func (n *noopMonitor) SessionDiscarded(_ core.Query, _ string) {}
func (n *noopMonitor) SearchFailed(_ core.Query, _ error)      {}
func (n *noopMonitor) Applied(_ core.Query, _ int)             {}
