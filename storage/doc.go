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


// Package storage provides the storage abstraction layer for quickplay.
//
// This package defines the HistoryRepository interface that decouples the
// play history persistence from the search pipeline. The search coordinator
// only ever sees the interface, so the BadgerDB implementation in the badger
// subpackage can be swapped for any other store.
//
// # Ordering and Uniqueness
//
// History entries are unique by VideoID. Saving an entry for a VideoID that
// is already stored keeps whichever entry has the most recent timestamp.
// Load always returns entries newest first.
//
// # Usage
//
// Create a repository instance:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	history := badger.NewHistoryRepository(backend, badger.WithMaxEntries(limitFn))
//
// Use in tests with in-memory storage:
//
//	history, backend, err := badger.NewMemoryHistory()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
