package backend

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultServerAddress is where the player API server listens out of the box.
	DefaultServerAddress = "http://127.0.0.1:26538/"

	// DefaultAppName identifies this client to the auth endpoint.
	DefaultAppName = "quickplay"

	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 10 * time.Second
)

// Config holds connection settings for the player API server.
type Config struct {
	// ServerAddress is the base URL of the API server.
	// Example: "http://127.0.0.1:26538/"
	ServerAddress string

	// AppName is sent to the auth endpoint to obtain an access token.
	AppName string

	// Timeout bounds each HTTP request.
	// Default: 10s
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithServerAddress sets the API server base URL.
func WithServerAddress(address string) ConfigOption {
	return func(c *Config) {
		c.ServerAddress = address
	}
}

// WithAppName sets the application name used for authentication.
func WithAppName(name string) ConfigOption {
	return func(c *Config) {
		c.AppName = name
	}
}

// WithTimeout sets the per request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// DefaultConfig returns a Config for a player API server on the local machine.
func DefaultConfig() *Config {
	return &Config{
		ServerAddress: DefaultServerAddress,
		AppName:       DefaultAppName,
		Timeout:       DefaultTimeout,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithServerAddress("http://192.168.1.20:26538"),
//	    WithTimeout(5*time.Second),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize trims whitespace and ensures the server address ends with a slash
// so relative API paths resolve beneath it.
func (c *Config) Normalize() {
	c.ServerAddress = strings.TrimSpace(c.ServerAddress)
	if c.ServerAddress != "" && !strings.HasSuffix(c.ServerAddress, "/") {
		c.ServerAddress += "/"
	}
	c.AppName = strings.TrimSpace(c.AppName)
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.ServerAddress == "" {
		return fmt.Errorf("%w: ServerAddress is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.ServerAddress)
	if err != nil {
		return fmt.Errorf("%w: ServerAddress: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: ServerAddress must use http or https, got %q", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: ServerAddress has no host", ErrInvalidConfig)
	}
	if c.AppName == "" {
		return fmt.Errorf("%w: AppName is required", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: Timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
