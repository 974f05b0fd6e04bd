// Package mock provides a test double for backend.SearchBackend.
//
// MockBackend answers searches from a map of canned results by default.
// Behavior can be replaced per method through function fields, and every
// call is recorded for assertions.
package mock
