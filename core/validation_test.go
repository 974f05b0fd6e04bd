package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateHistoryEntry(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		entry   *HistoryEntry
		wantErr error
	}{
		{
			name: "valid entry",
			entry: &HistoryEntry{
				VideoID:   "abc",
				Title:     "Song",
				Timestamp: validTime,
			},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidHistoryEntry,
		},
		{
			name: "empty video id",
			entry: &HistoryEntry{
				Title:     "Song",
				Timestamp: validTime,
			},
			wantErr: ErrEmptyVideoID,
		},
		{
			name: "empty title",
			entry: &HistoryEntry{
				VideoID:   "abc",
				Timestamp: validTime,
			},
			wantErr: ErrEmptyTitle,
		},
		{
			name: "future timestamp",
			entry: &HistoryEntry{
				VideoID:   "abc",
				Title:     "Song",
				Timestamp: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
		{
			name: "zero timestamp",
			entry: &HistoryEntry{
				VideoID: "abc",
				Title:   "Song",
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHistoryEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateHistoryEntry() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateHistoryEntry() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidHistoryEntry) {
				t.Errorf("ValidateHistoryEntry() error should wrap ErrInvalidHistoryEntry, got %v", err)
			}
		})
	}
}

func TestValidateSearchResult(t *testing.T) {
	if err := ValidateSearchResult(&SearchResult{VideoID: "abc", Title: "Song"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateSearchResult(nil); !errors.Is(err, ErrInvalidSearchResult) {
		t.Errorf("expected ErrInvalidSearchResult, got %v", err)
	}
	if err := ValidateSearchResult(&SearchResult{Title: "Song"}); !errors.Is(err, ErrEmptyVideoID) {
		t.Errorf("expected ErrEmptyVideoID, got %v", err)
	}
}
