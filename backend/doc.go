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

// Package backend defines the interface to the remote player API.
//
// A SearchBackend answers free text searches with at most one live result and
// drives the player queue. Concrete implementations live in subpackages:
//   - ytmusic: HTTP client for the player API server
//   - mock: test double with injectable behavior
//
// Handle owns the single live client for the configured server address and
// replaces it when the address changes.
package backend
