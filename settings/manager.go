package settings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/quickplay/core"
	"github.com/poiesic/quickplay/storage"
)

// Manager loads, holds and persists Settings.
// It is safe for concurrent use; readers never block on file I/O.
type Manager struct {
	path    string
	history storage.HistoryRepository
	logger  *slog.Logger

	mu      sync.RWMutex
	current Settings
}

var _ View = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager) error

// WithHistory sets the repository trimmed or cleared when the history limit changes.
func WithHistory(history storage.HistoryRepository) Option {
	return func(m *Manager) error {
		m.history = history
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithInitial sets the settings used before anything is loaded.
// Only meaningful for managers without a file path.
func WithInitial(s Settings) Option {
	return func(m *Manager) error {
		s.fillDefaults()
		if err := s.Validate(); err != nil {
			return err
		}
		m.current = s
		return nil
	}
}

// NewManager creates a manager backed by the TOML file at path.
// A missing file yields defaults. An empty path keeps settings in memory only.
func NewManager(path string, opts ...Option) (*Manager, error) {
	m := &Manager{
		path:    path,
		logger:  slog.Default().With("component", "settings"),
		current: Defaults(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	if path != "" {
		if err := m.Reload(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Load reads settings from path. A missing file yields defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Settings{}, fmt.Errorf("reading settings file: %w", err)
	}

	var s Settings
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	s.fillDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save writes s to path as TOML, creating parent directories.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Reload re-reads the settings file.
func (m *Manager) Reload() error {
	if m.path == "" {
		return nil
	}
	s, err := Load(m.path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return nil
}

// Update applies fn to a copy of the current settings, validates and saves
// the result, then brings the history in line with the new limit.
// Nothing changes if fn or validation fails.
func (m *Manager) Update(ctx context.Context, fn func(*Settings) error) error {
	m.mu.Lock()
	next := m.current
	if err := fn(&next); err != nil {
		m.mu.Unlock()
		return err
	}
	next.fillDefaults()
	if err := next.Validate(); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.path != "" {
		if err := Save(m.path, next); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	m.current = next
	m.mu.Unlock()

	m.logger.Debug("settings updated", "history_limit", next.HistoryLimit, "server_address", next.ServerAddress)
	return m.applyHistoryLimit(ctx, next.HistoryLimit)
}

func (m *Manager) applyHistoryLimit(ctx context.Context, limit core.HistoryLimit) error {
	if m.history == nil {
		return nil
	}
	if !limit.Enabled() {
		if err := m.history.Clear(ctx); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		m.logger.Info("history cleared")
		return nil
	}
	if err := m.history.Trim(ctx, limit.Max()); err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}
	return nil
}

// Settings returns a copy of the current settings.
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// HistoryLimit returns the configured history limit.
func (m *Manager) HistoryLimit() core.HistoryLimit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.HistoryLimit
}

// ServerAddress returns the configured API server address.
func (m *Manager) ServerAddress() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.ServerAddress
}

// Debounce returns the configured debounce delay.
func (m *Manager) Debounce() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Debounce.Duration
}

// Path returns the settings file path, or "" for an in-memory manager.
func (m *Manager) Path() string {
	return m.path
}
