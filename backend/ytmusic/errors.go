package ytmusic

import "errors"

var (
	// ErrRequestFailed is returned when the API server answers with an
	// unexpected status or cannot be reached.
	ErrRequestFailed = errors.New("api request failed")

	// ErrAuthFailed is returned when no access token could be obtained.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrMalformedResponse is returned when a search response lacks the expected fields.
	ErrMalformedResponse = errors.New("malformed search response")
)
