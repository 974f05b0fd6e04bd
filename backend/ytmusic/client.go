package ytmusic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/poiesic/quickplay/backend"
	"github.com/poiesic/quickplay/core"
	"golang.org/x/oauth2"
)

const (
	searchPath = "api/v1/search"
	queuePath  = "api/v1/queue"
	nextPath   = "api/v1/next"
	authPath   = "auth/"

	maxResponseBytes = 8 << 20
)

// Client is an HTTP client for the player API server.
type Client struct {
	cfg    *backend.Config
	base   *url.URL
	http   *http.Client
	logger *slog.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

var (
	_ backend.SearchBackend = (*Client)(nil)
	_ oauth2.TokenSource    = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient sets the HTTP client used for all requests.
// Default is a client with the configured timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.http = hc
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithAccessToken seeds the client with a known access token, skipping the
// first authentication round trip.
func WithAccessToken(token string) Option {
	return func(c *Client) error {
		if token != "" {
			c.token = &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
		}
		return nil
	}
}

// New creates a client for cfg. The configuration is validated first.
func New(cfg *backend.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = backend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.ServerAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", backend.ErrInvalidConfig, err)
	}

	c := &Client{
		cfg:    cfg,
		base:   base,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default().With("component", "ytmusic"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewFactory returns a backend.Factory that builds clients with opts.
func NewFactory(opts ...Option) backend.Factory {
	return func(cfg *backend.Config) (backend.SearchBackend, error) {
		return New(cfg, opts...)
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Search returns the top card of the search response for text.
// Malformed or empty responses yield nil, nil.
func (c *Client) Search(ctx context.Context, text string) (*core.SearchResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	body, err := c.call(ctx, searchPath, searchRequest{Query: text})
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}

	result, err := parseSearchResponse(body)
	if err != nil {
		c.logger.Debug("ignoring malformed search response", "query", text, "err", err)
		return nil, nil
	}
	return result, nil
}

// Enqueue adds videoID to the player queue.
func (c *Client) Enqueue(ctx context.Context, videoID string, position core.InsertPosition) error {
	if videoID == "" {
		return core.ErrEmptyVideoID
	}
	_, err := c.call(ctx, queuePath, queueRequest{VideoID: videoID, InsertPosition: position.String()})
	return err
}

// Advance skips to the next track.
func (c *Client) Advance(ctx context.Context) error {
	_, err := c.call(ctx, nextPath, nil)
	return err
}

// Token returns the cached access token, authenticating if there is none.
func (c *Client) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()
	return c.accessToken(ctx)
}

// call posts payload to path and returns the response body.
// 204 and 404 yield a nil body. A 401 invalidates the token, re-authenticates
// once and retries; the retried status is handled like the first one, except
// that a second 401 is returned as ErrRequestFailed.
func (c *Client) call(ctx context.Context, path string, payload any) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	status, body, err := c.post(ctx, path, payload, token)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		c.logger.Debug("access token rejected, re-authenticating", "path", path)
		c.invalidate(token)
		token, err = c.accessToken(ctx)
		if err != nil {
			return nil, err
		}
		status, body, err = c.post(ctx, path, payload, token)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s %d after re-authentication", ErrRequestFailed, path, status)
		}
	}

	switch {
	case status == http.StatusNoContent, status == http.StatusNotFound:
		return nil, nil
	case isSuccess(status):
		return body, nil
	default:
		return nil, fmt.Errorf("%w: %s %d", ErrRequestFailed, path, status)
	}
}

func (c *Client) post(ctx context.Context, path string, payload any, token *oauth2.Token) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: encoding request: %w", ErrRequestFailed, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != nil {
		token.SetAuthHeader(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: reading response: %w", ErrRequestFailed, err)
	}
	return resp.StatusCode, body, nil
}

// accessToken returns the cached token or authenticates for a new one.
func (c *Client) accessToken(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Valid() {
		return c.token, nil
	}

	token, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	c.token = token
	return token, nil
}

// invalidate drops the cached token if it is still the one that was rejected.
func (c *Client) invalidate(stale *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == stale {
		c.token = nil
	}
}

func (c *Client) authenticate(ctx context.Context) (*oauth2.Token, error) {
	status, body, err := c.post(ctx, authPath+url.PathEscape(c.cfg.AppName), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	if !isSuccess(status) {
		return nil, fmt.Errorf("%w: status %d", ErrAuthFailed, status)
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrAuthFailed, err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrAuthFailed)
	}

	c.logger.Debug("authenticated", "app", c.cfg.AppName)
	return &oauth2.Token{AccessToken: resp.AccessToken, TokenType: "Bearer"}, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.ResolveReference(&url.URL{Path: path}).String()
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
