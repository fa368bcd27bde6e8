// Package apiclient is the HTTP client for the task backend. Every request carries the stored bearer token and
// a rejected token is refreshed once before the request is retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// DefaultTimeout bounds each request.
const DefaultTimeout = 30 * time.Second

// LoginPath is handed to OnAuthFailure after a failed refresh.
const LoginPath = "/login"

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRefreshFailed = errors.New("token refresh failed")
)

// TokenStore persists the access/refresh pair.
type TokenStore interface {
	Token(ctx context.Context) (*oauth2.Token, error)
	SetAccessToken(ctx context.Context, access string) error
	Clear(ctx context.Context) error
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

// Error implements error.
func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, body)
}

// Is lets errors.Is match ErrUnauthorized for 401 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.Code == http.StatusUnauthorized
}

// Config configures a Client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	HTTPClient    *http.Client
	Tokens        TokenStore
	OnAuthFailure func(redirect string)
	Registerer    prometheus.Registerer
	Logger        *charmLog.Logger
}

// Client talks JSON to the backend.
type Client struct {
	baseURL       string
	http          *http.Client
	tokens        TokenStore
	onAuthFailure func(string)
	logger        *charmLog.Logger
	metrics       *metrics
}

// New constructs a client and registers its counters.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = charmLog.Default()
	}
	m, err := newMetrics(cfg.Registerer)
	if err != nil {
		return nil, err
	}
	onAuthFailure := cfg.OnAuthFailure
	if onAuthFailure == nil {
		onAuthFailure = func(string) {}
	}
	return &Client{
		baseURL:       baseURL,
		http:          httpClient,
		tokens:        cfg.Tokens,
		onAuthFailure: onAuthFailure,
		logger:        logger,
		metrics:       m,
	}, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET and decodes the JSON response into out (which may be nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends one request. A 401 triggers a single refresh and retry; if the refresh fails the stored tokens are
// cleared, OnAuthFailure is called with LoginPath, and the original 401 is returned.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = encoded
	}

	err := c.send(ctx, method, path, payload, out)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}
	refreshed, refreshErr := c.refresh(ctx)
	if refreshErr != nil {
		c.logger.Warn("token refresh failed", "path", path, "err", refreshErr)
		if clearErr := c.clearTokens(ctx); clearErr != nil {
			c.logger.Error("clear tokens failed", "err", clearErr)
		}
		c.onAuthFailure(LoginPath)
		return err
	}
	if !refreshed {
		return err
	}
	return c.send(ctx, method, path, payload, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("load token: %w", err)
		}
		if token != nil && token.AccessToken != "" {
			token.SetAuthHeader(req)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.requests.WithLabelValues(endpointLabel(path), "error").Inc()
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.metrics.requests.WithLabelValues(endpointLabel(path), strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(raw)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// refresh exchanges the stored refresh token. It reports false without error when no refresh token is stored.
func (c *Client) refresh(ctx context.Context) (bool, error) {
	if c.tokens == nil {
		return false, nil
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return false, fmt.Errorf("load token: %w", err)
	}
	if token == nil || token.RefreshToken == "" {
		return false, nil
	}

	payload, err := json.Marshal(refreshRequest{Refresh: token.RefreshToken})
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EndpointRefresh, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.refreshes.WithLabelValues("failure").Inc()
		return false, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.refreshes.WithLabelValues("failure").Inc()
		return false, fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.StatusCode)
	}
	var decoded refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil || decoded.Access == "" {
		c.metrics.refreshes.WithLabelValues("failure").Inc()
		return false, fmt.Errorf("%w: missing access token", ErrRefreshFailed)
	}
	if err := c.tokens.SetAccessToken(ctx, decoded.Access); err != nil {
		c.metrics.refreshes.WithLabelValues("failure").Inc()
		return false, fmt.Errorf("%w: store access token: %v", ErrRefreshFailed, err)
	}
	c.metrics.refreshes.WithLabelValues("success").Inc()
	return true, nil
}

func (c *Client) clearTokens(ctx context.Context) error {
	if c.tokens == nil {
		return nil
	}
	return c.tokens.Clear(ctx)
}
