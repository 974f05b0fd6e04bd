package settings

import (
	"fmt"
	"slices"
	"time"

	"github.com/poiesic/quickplay/backend"
	"github.com/poiesic/quickplay/core"
)

// DefaultDebounce is the quiet period before a query settles.
const DefaultDebounce = 300 * time.Millisecond

// View exposes the settings the search pipeline polls at query time.
type View interface {
	HistoryLimit() core.HistoryLimit
	ServerAddress() string
}

// Settings is the persisted user configuration.
type Settings struct {
	HistoryLimit  core.HistoryLimit `toml:"history_limit"`
	ServerAddress string            `toml:"server_address"`
	Debounce      Duration          `toml:"debounce"`
}

// Duration wraps time.Duration so it reads and writes as "300ms" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Defaults returns the settings used when no file exists.
// History is off until the user picks a limit.
func Defaults() Settings {
	return Settings{
		HistoryLimit:  core.HistoryNone,
		ServerAddress: backend.DefaultServerAddress,
		Debounce:      Duration{DefaultDebounce},
	}
}

// fillDefaults replaces zero values with defaults.
func (s *Settings) fillDefaults() {
	d := Defaults()
	if s.ServerAddress == "" {
		s.ServerAddress = d.ServerAddress
	}
	if s.Debounce.Duration == 0 {
		s.Debounce = d.Debounce
	}
}

// Validate checks the settings.
func (s *Settings) Validate() error {
	if !slices.Contains(core.HistoryLimits, s.HistoryLimit) {
		return fmt.Errorf("%w: %w: %d", ErrInvalidSettings, core.ErrInvalidHistoryLimit, int(s.HistoryLimit))
	}
	cfg := backend.NewConfig(backend.WithServerAddress(s.ServerAddress))
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if s.Debounce.Duration <= 0 {
		return fmt.Errorf("%w: debounce must be positive", ErrInvalidSettings)
	}
	return nil
}

// Static is a fixed View.
type Static struct {
	Limit   core.HistoryLimit
	Address string
}

var _ View = Static{}

func (s Static) HistoryLimit() core.HistoryLimit {
	return s.Limit
}

func (s Static) ServerAddress() string {
	return s.Address
}
