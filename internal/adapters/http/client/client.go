// Package client calls a running recommendation server over HTTP.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/playmatch/internal/domain/types"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultRoutePrefix = "/api/recommendations"
	maxErrorBody       = 4 << 10
)

// Sentinel errors.
var (
	ErrFamilyNotFound = errors.New("family not found")
	ErrUnhealthy      = errors.New("service unhealthy")
	ErrUnexpected     = errors.New("unexpected response")
)

// StatusError is returned for non-200 recommendation responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// Is maps 404 responses to ErrFamilyNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrFamilyNotFound && e.Code == http.StatusNotFound
}

// Client wraps http.Client with the server's base URL and route prefix.
type Client struct {
	baseURL     string
	routePrefix string
	http        *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithRoutePrefix sets the prefix the server mounts /family/{id} under.
func WithRoutePrefix(prefix string) Option {
	return func(c *Client) {
		if prefix = strings.TrimRight(prefix, "/"); prefix != "" {
			c.routePrefix = prefix
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		routePrefix: defaultRoutePrefix,
		http:        &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recommend posts to {prefix}/family/{familyID}.
func (c *Client) Recommend(ctx context.Context, familyID string) (types.Recommendation, error) {
	endpoint := c.baseURL + c.routePrefix + "/family/" + url.PathEscape(familyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, http.NoBody)
	if err != nil {
		return types.Recommendation{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.Recommendation{}, fmt.Errorf("failed to call service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return types.Recommendation{}, readStatusError(resp)
	}

	var body struct {
		Success bool `json:"success"`
		types.Recommendation
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return types.Recommendation{}, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	if !body.Success {
		return types.Recommendation{}, fmt.Errorf("%w: success=false", ErrUnexpected)
	}
	return body.Recommendation, nil
}

// Healthy checks GET /healthz. Any 200 counts as healthy since the
// endpoint serves Prometheus metrics.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

func readStatusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(b))
	if json.Unmarshal(b, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}
