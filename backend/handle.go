package backend

import (
	"io"
	"log/slog"
	"sync"
)

// Handle owns the one live backend for the current server address.
//
// The address is polled on every Backend call. When it changes the old
// backend is closed and replaced under the lock, so two clients for different
// addresses are never live at the same time.
type Handle struct {
	source  AddressSource
	factory Factory
	config  []ConfigOption
	logger  *slog.Logger

	mu      sync.Mutex
	address string
	current SearchBackend
	closed  bool
}

var _ Provider = (*Handle)(nil)

// HandleOption configures a Handle.
type HandleOption func(*Handle) error

// WithConfigOptions sets options applied to every Config built by the handle.
// The server address always comes from the AddressSource.
func WithConfigOptions(opts ...ConfigOption) HandleOption {
	return func(h *Handle) error {
		h.config = append(h.config, opts...)
		return nil
	}
}

// WithHandleLogger sets a custom logger.
// Default is slog.Default().
func WithHandleLogger(logger *slog.Logger) HandleOption {
	return func(h *Handle) error {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
		return nil
	}
}

// NewHandle creates a handle that builds backends with factory for the
// address reported by source.
func NewHandle(source AddressSource, factory Factory, opts ...HandleOption) (*Handle, error) {
	if source == nil {
		return nil, ErrAddressSourceRequired
	}
	if factory == nil {
		return nil, ErrFactoryRequired
	}

	h := &Handle{
		source:  source,
		factory: factory,
		logger:  slog.Default().With("component", "backend"),
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Backend returns the backend for the current server address, creating or
// replacing it as needed.
func (h *Handle) Backend() (SearchBackend, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHandleClosed
	}

	opts := append(append([]ConfigOption{}, h.config...), WithServerAddress(h.source.ServerAddress()))
	cfg := NewConfig(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if h.current != nil && h.address == cfg.ServerAddress {
		return h.current, nil
	}

	b, err := h.factory(cfg)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNoBackend
	}

	if h.current != nil {
		h.logger.Info("server address changed, replacing backend", "from", h.address, "to", cfg.ServerAddress)
		h.closeBackend(h.current)
	} else {
		h.logger.Debug("created backend", "address", cfg.ServerAddress)
	}
	h.current = b
	h.address = cfg.ServerAddress
	return b, nil
}

// Address returns the address of the live backend, or "" if none was created yet.
func (h *Handle) Address() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.address
}

// Close closes the live backend. Later Backend calls return ErrHandleClosed.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	if h.current != nil {
		h.closeBackend(h.current)
		h.current = nil
	}
	return nil
}

func (h *Handle) closeBackend(b SearchBackend) {
	if c, ok := b.(io.Closer); ok {
		if err := c.Close(); err != nil {
			h.logger.Warn("error closing backend", "address", h.address, "err", err)
		}
	}
}
