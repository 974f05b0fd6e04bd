// Package ytmusic implements backend.SearchBackend over the HTTP API exposed
// by the desktop music player's API server plugin.
//
// All endpoints are POST requests relative to the configured server address:
//
//	auth/{appName}   obtain an access token
//	api/v1/search    top search result for a query
//	api/v1/queue     insert a track into the queue
//	api/v1/next      skip to the next track
//
// The access token is cached and sent as a bearer Authorization header.
// A 401 response triggers one re-authentication and retry.
package ytmusic
