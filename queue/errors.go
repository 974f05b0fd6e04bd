package queue

import "errors"

var (
	// ErrBackendRequired is returned when a backend provider is not provided.
	ErrBackendRequired = errors.New("backend provider required")

	// ErrHistoryStoreRequired is returned when a history repository is not provided.
	ErrHistoryStoreRequired = errors.New("history repository required")

	// ErrSettingsRequired is returned when a settings view is not provided.
	ErrSettingsRequired = errors.New("settings view required")

	// ErrInvalidAdvanceDelay is returned for a negative advance delay.
	ErrInvalidAdvanceDelay = errors.New("advance delay cannot be negative")
)
