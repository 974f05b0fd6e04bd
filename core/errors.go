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

import "errors"

// Domain validation errors
var (
	// ErrInvalidHistoryEntry indicates a HistoryEntry failed validation.
	ErrInvalidHistoryEntry = errors.New("invalid history entry")

	// ErrInvalidSearchResult indicates a SearchResult failed validation.
	ErrInvalidSearchResult = errors.New("invalid search result")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyVideoID indicates the VideoID field is empty.
	ErrEmptyVideoID = errors.New("video id cannot be empty")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrInvalidInsertPosition indicates an unknown queue insert position.
	ErrInvalidInsertPosition = errors.New("invalid insert position")

	// ErrInvalidHistoryLimit indicates an unsupported history limit value.
	ErrInvalidHistoryLimit = errors.New("invalid history limit")
)
