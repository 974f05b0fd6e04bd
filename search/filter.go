package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/poiesic/quickplay/core"
	"github.com/sahilm/fuzzy"
)

// historySource implements fuzzy.Source over history entries.
// Matching is case-insensitive on title and accessibility label.
type historySource []core.HistoryEntry

func (h historySource) String(i int) string {
	return strings.ToLower(h[i].Title + " " + h[i].AccessibilityLabel)
}

func (h historySource) Len() int {
	return len(h)
}

// FilterHistory returns the entries matching text, best match first.
// Entries with equal scores are ordered newest first, then by input position.
// Blank text returns all entries in their original order.
func FilterHistory(entries []core.HistoryEntry, text string) []core.HistoryEntry {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		out := slices.Clone(entries)
		if out == nil {
			out = []core.HistoryEntry{}
		}
		return out
	}

	matches := fuzzy.FindFrom(text, historySource(entries))
	slices.SortFunc(matches, func(a, b fuzzy.Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := entries[b.Index].Timestamp.Compare(entries[a.Index].Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	out := make([]core.HistoryEntry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out
}
