package backend

import "errors"

var (
	// ErrInvalidConfig is returned when a backend configuration fails validation.
	ErrInvalidConfig = errors.New("invalid backend config")

	// ErrNoBackend is returned when no backend is available.
	ErrNoBackend = errors.New("no backend available")

	// ErrFactoryRequired is returned when a Handle is created without a factory.
	ErrFactoryRequired = errors.New("backend factory required")

	// ErrAddressSourceRequired is returned when a Handle is created without an address source.
	ErrAddressSourceRequired = errors.New("address source required")

	// ErrHandleClosed is returned by a Handle after Close.
	ErrHandleClosed = errors.New("backend handle closed")
)
