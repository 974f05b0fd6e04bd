package core

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier derived from content.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Query is a settled query text tagged with the generation it was accepted under.
// Generations are strictly increasing and never reused.
type Query struct {
	Text       string
	Generation uint64
}

// SearchResult is a single track returned by the search backend.
// VideoID is the identity key.
type SearchResult struct {
	Title              string
	VideoID            string
	ThumbnailURL       string
	AccessibilityLabel string // e.g. "Song • Artist • 3:41"
}

// Tags splits the accessibility label into its "•" separated parts.
func (r SearchResult) Tags() []string {
	if r.AccessibilityLabel == "" {
		return nil
	}
	parts := strings.Split(r.AccessibilityLabel, "•")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// HistoryEntry is a previously played track kept in the local history.
// Entries are unique by VideoID; the most recent Timestamp wins.
type HistoryEntry struct {
	VideoID            string
	Title              string
	ThumbnailURL       string
	AccessibilityLabel string
	Timestamp          time.Time
}

// NewHistoryEntry creates a history entry for a search result played at ts.
func NewHistoryEntry(result SearchResult, ts time.Time) HistoryEntry {
	return HistoryEntry{
		VideoID:            result.VideoID,
		Title:              result.Title,
		ThumbnailURL:       result.ThumbnailURL,
		AccessibilityLabel: result.AccessibilityLabel,
		Timestamp:          ts,
	}
}

// Result returns the entry as a SearchResult.
func (e HistoryEntry) Result() SearchResult {
	return SearchResult{
		Title:              e.Title,
		VideoID:            e.VideoID,
		ThumbnailURL:       e.ThumbnailURL,
		AccessibilityLabel: e.AccessibilityLabel,
	}
}

// InsertPosition tells the player where a track is added to the queue.
type InsertPosition int

const (
	// InsertAtEnd appends the track to the end of the queue.
	InsertAtEnd InsertPosition = iota
	// InsertAfterCurrent places the track right after the one playing.
	InsertAfterCurrent
)

// String returns the wire name of the position.
func (p InsertPosition) String() string {
	switch p {
	case InsertAfterCurrent:
		return "INSERT_AFTER_CURRENT_VIDEO"
	default:
		return "INSERT_AT_END"
	}
}

// ParseInsertPosition parses a wire name or one of the short forms "end" and "next".
func ParseInsertPosition(s string) (InsertPosition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "end", "insert_at_end":
		return InsertAtEnd, nil
	case "next", "after", "insert_after_current_video":
		return InsertAfterCurrent, nil
	}
	return InsertAtEnd, fmt.Errorf("%w: %q", ErrInvalidInsertPosition, s)
}

// HistoryLimit is the user selectable cap on the number of history entries.
type HistoryLimit int

const (
	HistoryNone   HistoryLimit = 0
	HistoryOne    HistoryLimit = 1
	HistoryFive   HistoryLimit = 5
	HistoryTen    HistoryLimit = 10
	HistoryTwenty HistoryLimit = 20
)

// HistoryLimits lists the accepted limits in display order.
var HistoryLimits = []HistoryLimit{HistoryNone, HistoryOne, HistoryFive, HistoryTen, HistoryTwenty}

// Max returns the maximum number of entries kept. Zero means history is disabled.
func (l HistoryLimit) Max() int {
	return int(l)
}

// Enabled reports whether history is recorded and shown.
func (l HistoryLimit) Enabled() bool {
	return l != HistoryNone
}

func (l HistoryLimit) String() string {
	if l == HistoryNone {
		return "none"
	}
	return fmt.Sprintf("%d", int(l))
}

// ParseHistoryLimit parses "none", "1", "5", "10" or "20".
func ParseHistoryLimit(s string) (HistoryLimit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range HistoryLimits {
		if l.String() == s {
			return l, nil
		}
	}
	return HistoryNone, fmt.Errorf("%w: %q", ErrInvalidHistoryLimit, s)
}

func (l HistoryLimit) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *HistoryLimit) UnmarshalText(text []byte) error {
	parsed, err := ParseHistoryLimit(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
