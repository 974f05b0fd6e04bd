// Package settings holds the user settings read by the search pipeline.
//
// View is the read-only surface polled at query time. Manager persists the
// settings as TOML and applies the history side effects of a change: turning
// history off clears it, lowering the limit trims it.
package settings
