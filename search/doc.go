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

// Package search turns a stream of query text into a single current result list.
//
// The pipeline has four parts:
//   - Gate debounces text updates and settles at most one query per quiet period
//   - Coordinator numbers settled queries by generation and runs a Session for each
//   - Session loads filtered history and the live backend result concurrently
//   - ResultStore holds the merged list of the newest applied session
//
// A session's result is applied only if its generation is still the highest
// started and above the last applied one, so a slow stale session can never
// overwrite a fresher result. Backend and history failures degrade to
// "no live result" and "no history" and are never returned to the caller.
package search
