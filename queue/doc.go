// Package queue adds search results to the player's queue.
//
// The Inserter sends the enqueue request, optionally skips to the inserted
// track, records it in the play history when history is enabled and then
// notifies the caller so the visible results can be refreshed.
//
// InsertAsync runs the same work on a worker pool. Errors during async
// inserts are logged but not returned.
package queue
