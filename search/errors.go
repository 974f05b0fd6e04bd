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

package search

import "errors"

var (
	// ErrHistoryStoreRequired is returned when a history repository is not provided.
	ErrHistoryStoreRequired = errors.New("history store required")

	// ErrBackendRequired is returned when a backend provider is not provided.
	ErrBackendRequired = errors.New("search backend required")

	// ErrSettingsRequired is returned when a settings view is not provided.
	ErrSettingsRequired = errors.New("settings view required")

	// ErrSettleCallbackRequired is returned when a Gate is created without a callback.
	ErrSettleCallbackRequired = errors.New("settle callback required")

	// ErrInvalidDelay is returned for a non-positive debounce delay.
	ErrInvalidDelay = errors.New("debounce delay must be positive")

	// ErrInvalidPoolSize is returned for a worker pool smaller than two.
	ErrInvalidPoolSize = errors.New("pool size must be at least 2")

	// ErrSessionPanicked marks a session whose collaborator panicked.
	ErrSessionPanicked = errors.New("search session panicked")
)
