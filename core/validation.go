// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"time"
)

// ValidateSearchResult validates a SearchResult according to domain rules.
//
// Validation rules:
//   - VideoID must not be empty
//   - Title must not be empty
//
// NOT validated (display only):
//   - ThumbnailURL
//   - AccessibilityLabel
func ValidateSearchResult(result *SearchResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidSearchResult)
	}

	if result.VideoID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSearchResult, ErrEmptyVideoID)
	}

	if result.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSearchResult, ErrEmptyTitle)
	}

	return nil
}

// ValidateHistoryEntry validates a HistoryEntry according to domain rules.
//
// Validation rules:
//   - VideoID must not be empty
//   - Title must not be empty
//   - Timestamp must not be zero or in the future
func ValidateHistoryEntry(entry *HistoryEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidHistoryEntry)
	}

	if entry.VideoID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidHistoryEntry, ErrEmptyVideoID)
	}

	if entry.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidHistoryEntry, ErrEmptyTitle)
	}

	if entry.Timestamp.IsZero() || !IsValidTimestamp(entry.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidHistoryEntry, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
