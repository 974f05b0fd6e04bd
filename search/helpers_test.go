package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/quickplay/core"
	"github.com/poiesic/quickplay/storage"
)

// testHistory implements storage.HistoryRepository for testing
type testHistory struct {
	mu      sync.Mutex
	entries []core.HistoryEntry
	loadErr error
	loads   atomic.Int64
}

var _ storage.HistoryRepository = (*testHistory)(nil)

func (h *testHistory) Load(ctx context.Context) ([]core.HistoryEntry, error) {
	h.loads.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loadErr != nil {
		return nil, h.loadErr
	}
	return append([]core.HistoryEntry{}, h.entries...), nil
}

func (h *testHistory) Save(ctx context.Context, entry core.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append([]core.HistoryEntry{entry}, h.entries...)
	return nil
}

func (h *testHistory) Trim(ctx context.Context, max int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if max > 0 && len(h.entries) > max {
		h.entries = h.entries[:max]
	}
	return nil
}

func (h *testHistory) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	return nil
}

func (h *testHistory) Count(ctx context.Context) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries), nil
}

func (h *testHistory) Close() error { return nil }

// recordingMonitor records coordinator hooks
type recordingMonitor struct {
	mu        sync.Mutex
	started   []uint64
	cancelled []uint64
	discarded map[uint64]string
	failed    []uint64
	applied   []uint64
}

func newRecordingMonitor() *recordingMonitor {
	return &recordingMonitor{discarded: map[uint64]string{}}
}

func (m *recordingMonitor) SessionStarted(q core.Query) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, q.Generation)
}

func (m *recordingMonitor) SessionCancelled(q core.Query) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, q.Generation)
}

func (m *recordingMonitor) SessionDiscarded(q core.Query, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discarded[q.Generation] = reason
}

func (m *recordingMonitor) SearchFailed(q core.Query, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, q.Generation)
}

func (m *recordingMonitor) Applied(q core.Query, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied = append(m.applied, q.Generation)
}

func (m *recordingMonitor) discardReason(gen uint64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.discarded[gen]
}

func (m *recordingMonitor) appliedGenerations() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint64(nil), m.applied...)
}

func (m *recordingMonitor) failedGenerations() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint64(nil), m.failed...)
}

// notifications records OnResultsChanged calls
type notifications struct {
	mu     sync.Mutex
	counts []int
	ch     chan int
}

func newNotifications() *notifications {
	return &notifications{ch: make(chan int, 64)}
}

func (n *notifications) record(count int) {
	n.mu.Lock()
	n.counts = append(n.counts, count)
	n.mu.Unlock()
	n.ch <- count
}

func (n *notifications) all() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.counts...)
}

func (n *notifications) next(t *testing.T) int {
	t.Helper()
	select {
	case c := <-n.ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for results changed notification")
		return -1
	}
}

func result(id string) *core.SearchResult {
	return &core.SearchResult{
		Title:              "Live " + id,
		VideoID:            id,
		ThumbnailURL:       "https://example.com/" + id + ".jpg",
		AccessibilityLabel: "Song • Artist",
	}
}

func historyEntry(id, title string, age time.Duration) core.HistoryEntry {
	return core.HistoryEntry{
		VideoID:            id,
		Title:              title,
		AccessibilityLabel: "Song • Artist",
		Timestamp:          time.Now().Add(-age),
	}
}

func videoIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.Result.VideoID
	}
	return ids
}
