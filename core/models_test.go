package core

import (
	"testing"
	"time"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "dQw4w9WgXcQ",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	if IDFromContent("video-1") == IDFromContent("video-2") {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestSearchResult_Tags(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  []string
	}{
		{name: "empty label", label: "", want: nil},
		{name: "single part", label: "Song", want: []string{"Song"}},
		{name: "trims parts", label: "Song • Queen •  5:55 ", want: []string{"Song", "Queen", "5:55"}},
		{name: "drops empty parts", label: "Song •• Queen", want: []string{"Song", "Queen"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchResult{AccessibilityLabel: tt.label}.Tags()
			if len(got) != len(tt.want) {
				t.Fatalf("Tags() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Tags()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHistoryEntry_ResultRoundTrip(t *testing.T) {
	result := SearchResult{
		Title:              "Bohemian Rhapsody",
		VideoID:            "fJ9rUzIMcZQ",
		ThumbnailURL:       "https://example.com/t.jpg",
		AccessibilityLabel: "Song • Queen",
	}
	ts := time.Now().Add(-time.Minute)

	entry := NewHistoryEntry(result, ts)
	if !entry.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", entry.Timestamp, ts)
	}
	if entry.Result() != result {
		t.Errorf("Result() = %+v, want %+v", entry.Result(), result)
	}
}

func TestParseInsertPosition(t *testing.T) {
	tests := []struct {
		in      string
		want    InsertPosition
		wantErr bool
	}{
		{in: "end", want: InsertAtEnd},
		{in: "next", want: InsertAfterCurrent},
		{in: "INSERT_AFTER_CURRENT_VIDEO", want: InsertAfterCurrent},
		{in: "INSERT_AT_END", want: InsertAtEnd},
		{in: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInsertPosition(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseInsertPosition(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInsertPosition(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseInsertPosition(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if InsertAfterCurrent.String() != "INSERT_AFTER_CURRENT_VIDEO" {
		t.Errorf("unexpected wire name %q", InsertAfterCurrent.String())
	}
}

func TestHistoryLimit(t *testing.T) {
	for _, l := range HistoryLimits {
		parsed, err := ParseHistoryLimit(l.String())
		if err != nil {
			t.Fatalf("ParseHistoryLimit(%q) unexpected error: %v", l.String(), err)
		}
		if parsed != l {
			t.Errorf("ParseHistoryLimit(%q) = %v, want %v", l.String(), parsed, l)
		}
	}

	if HistoryNone.Enabled() {
		t.Error("HistoryNone should be disabled")
	}
	if HistoryFive.Max() != 5 {
		t.Errorf("HistoryFive.Max() = %d, want 5", HistoryFive.Max())
	}

	var l HistoryLimit
	if err := l.UnmarshalText([]byte("7")); err == nil {
		t.Error("expected error for unsupported limit")
	}
}
