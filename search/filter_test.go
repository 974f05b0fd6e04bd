package search

import (
	"testing"
	"time"

	"github.com/poiesic/quickplay/core"
	"github.com/stretchr/testify/assert"
)

func filterFixture() []core.HistoryEntry {
	return []core.HistoryEntry{
		historyEntry("v1", "Bohemian Rhapsody", time.Minute),
		historyEntry("v2", "Dancing Queen", 2*time.Minute),
		{VideoID: "v3", Title: "Imagine", AccessibilityLabel: "Song • John Lennon • 3:04", Timestamp: time.Now().Add(-3 * time.Minute)},
	}
}

func TestFilterHistory_EmptyTextReturnsAll(t *testing.T) {
	entries := filterFixture()

	for _, text := range []string{"", "   "} {
		got := FilterHistory(entries, text)
		assert.Equal(t, entries, got)
	}

	got := FilterHistory(nil, "")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterHistory_MatchesTitle(t *testing.T) {
	got := FilterHistory(filterFixture(), "bohemian")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "v1", got[0].VideoID)
	}
}

func TestFilterHistory_IsCaseInsensitive(t *testing.T) {
	got := FilterHistory(filterFixture(), "QUEEN")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "v2", got[0].VideoID)
	}
}

func TestFilterHistory_MatchesAccessibilityLabel(t *testing.T) {
	got := FilterHistory(filterFixture(), "lennon")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "v3", got[0].VideoID)
	}
}

func TestFilterHistory_FuzzySubsequence(t *testing.T) {
	got := FilterHistory(filterFixture(), "bhrp")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "v1", got[0].VideoID)
	}
}

func TestFilterHistory_NoMatch(t *testing.T) {
	got := FilterHistory(filterFixture(), "zzz-nonexistent-zzz")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterHistory_DoesNotModifyInput(t *testing.T) {
	entries := filterFixture()
	_ = FilterHistory(entries, "queen")
	assert.Equal(t, filterFixture()[0].VideoID, entries[0].VideoID)
	assert.Len(t, entries, 3)
}

func TestFilterHistory_EqualScoresNewestFirst(t *testing.T) {
	// Identical text scores identically, so recency decides
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var entries []core.HistoryEntry
	for _, e := range []struct {
		id  string
		age time.Duration
	}{{"old", 2 * time.Hour}, {"newest", 0}, {"mid", time.Hour}, {"older", 3 * time.Hour}} {
		entry := historyEntry(e.id, "Song A", 0)
		entry.Timestamp = base.Add(-e.age)
		entries = append(entries, entry)
	}

	got := FilterHistory(entries, "song")
	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.VideoID
	}
	assert.Equal(t, []string{"newest", "mid", "old", "older"}, ids)
}
