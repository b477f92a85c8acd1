// Package api is the HTTP client for the task service. Callers get typed results and a
// normalized *Error for non-2xx responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskdeck/internal/logging"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// TokenProvider supplies the current session token ("" when signed out).
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	baseURL *url.URL
	timeout time.Duration
	log     *log.Logger
	tokens  TokenProvider

	// public carries no credentials (login/register); authed attaches the bearer token.
	public *http.Client
	authed *http.Client
}

type Option func(*Client)

// WithHTTPClient sets the underlying client; its Transport is reused beneath the
// credentials layer.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.public = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func WithTokenProvider(p TokenProvider) Option {
	return func(c *Client) { c.tokens = p }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url must be absolute: %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		timeout: defaultTimeout,
		log:     logging.Discard(),
		public:  &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}

	c.authed = &http.Client{
		Transport: &oauth2.Transport{
			Source: sessionTokenSource{p: c.tokens},
			Base:   c.public.Transport,
		},
		CheckRedirect: c.public.CheckRedirect,
		Jar:           c.public.Jar,
		Timeout:       c.public.Timeout,
	}
	return c, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// sessionTokenSource re-reads the session on every request so login/logout take effect
// without rebuilding the client.
type sessionTokenSource struct {
	p TokenProvider
}

func (s sessionTokenSource) Token() (*oauth2.Token, error) {
	if s.p == nil {
		return nil, ErrNoSession
	}
	tok, err := s.p.Token(context.Background())
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, ErrNoSession
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

type request struct {
	method    string
	path      string
	body      any
	protected bool
}

// do sends req and returns the raw response body for 2xx responses.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	if req.protected {
		if err := c.requireSession(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL.JoinPath(req.path)
	hreq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("X-Request-Id", reqID)
	if body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}

	hc := c.public
	if req.protected {
		hc = c.authed
	}

	start := time.Now()
	resp, err := hc.Do(hreq)
	if err != nil {
		c.log.Warn("request failed", "method", req.method, "path", req.path, "request_id", reqID, "err", err)
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.method, req.path, err)
	}
	c.log.Debug("request", "method", req.method, "path", req.path, "status", resp.StatusCode,
		"request_id", reqID, "dur", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(resp.StatusCode, raw)
		c.log.Warn("request rejected", "method", req.method, "path", req.path, "status", resp.StatusCode,
			"request_id", reqID, "message", apiErr.Message)
		return nil, apiErr
	}
	return raw, nil
}

func (c *Client) requireSession(ctx context.Context) error {
	if c.tokens == nil {
		return ErrNoSession
	}
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if tok == "" {
		return ErrNoSession
	}
	return nil
}

func decode(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
