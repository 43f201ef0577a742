// Package http exposes a verification engine over HTTP and provides the client
// that lets the harness use such a remote engine in place of the in-process one.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/encoding"
	"github.com/mark3labs/auth-harness/engine"
	"github.com/mark3labs/auth-harness/retry"
)

// EngineClient is an engine.Engine backed by a remote engine server.
type EngineClient struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	retry   retry.Config
	logger  *zap.Logger
}

var _ engine.Engine = (*EngineClient)(nil)

// ClientOption configures an EngineClient.
type ClientOption func(*EngineClient) error

// NewEngineClient creates a client for the engine served at baseURL.
func NewEngineClient(baseURL string, opts ...ClientOption) (*EngineClient, error) {
	if baseURL == "" {
		return nil, authharness.MissingArgument("engine-url")
	}
	c := &EngineClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: 30 * time.Second,
		retry:   retry.DefaultConfig,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *EngineClient) error {
		c.client = httpClient
		return nil
	}
}

// WithSecret authenticates every request with a token derived from secret.
func WithSecret(secret string) ClientOption {
	return func(c *EngineClient) error {
		auth, err := NewTokenAuth(secret)
		if err != nil {
			return authharness.NewError(authharness.ErrCodeMissingArgument, "invalid engine secret", err)
		}
		base := c.client.Transport
		c.client = &http.Client{
			Transport: &BearerTransport{Base: base, Auth: auth},
			Timeout:   c.client.Timeout,
		}
		return nil
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *EngineClient) error {
		c.timeout = timeout
		return nil
	}
}

// WithRetry sets the backoff used for discovery calls.
func WithRetry(config retry.Config) ClientOption {
	return func(c *EngineClient) error {
		c.retry = config
		return nil
	}
}

// WithClientLogger sets the logger for request tracing.
func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *EngineClient) error {
		c.logger = logger
		return nil
	}
}

// BuildMessage implements engine.Engine.
func (c *EngineClient) BuildMessage(ctx context.Context, unit *authharness.VerifiableUnit) ([]byte, error) {
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "/message", NewUnitPayload(unit), &resp); err != nil {
		return nil, err
	}
	msg, err := encoding.Decode(resp.Message, encoding.Hex)
	if err != nil {
		return nil, authharness.EngineFailure("engine returned an invalid message",
			fmt.Errorf("%w: %v", authharness.ErrEngineUnavailable, err))
	}
	return msg, nil
}

// Verify implements engine.Engine. Verification is not retried.
func (c *EngineClient) Verify(ctx context.Context, unit *authharness.VerifiableUnit) (*engine.Result, error) {
	var resp VerifyResponse
	if err := c.do(ctx, http.MethodPost, "/verify", NewUnitPayload(unit), &resp); err != nil {
		return nil, err
	}
	if !resp.Valid {
		cause := authharness.ErrEngineRejected
		if resp.Code == CodeBudgetExceeded {
			cause = authharness.ErrBudgetExceeded
		}
		return nil, authharness.EngineFailure(resp.Reason, cause).WithDetails("cycles", resp.Cycles)
	}
	return &engine.Result{Cycles: resp.Cycles}, nil
}

// Supported implements engine.Engine. Transport failures are retried.
func (c *EngineClient) Supported(ctx context.Context) ([]authharness.Algorithm, error) {
	resp, err := retry.Do(ctx, c.retry, c.logger, "supported", retry.EngineUnavailable,
		func(ctx context.Context) (*SupportedResponse, error) {
			var resp SupportedResponse
			if err := c.do(ctx, http.MethodGet, "/supported", nil, &resp); err != nil {
				return nil, err
			}
			return &resp, nil
		})
	if err != nil {
		return nil, err
	}

	algs := make([]authharness.Algorithm, 0, len(resp.Algorithms))
	for _, a := range resp.Algorithms {
		algs = append(algs, authharness.Algorithm(a.ID))
	}
	return algs, nil
}

func (c *EngineClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return authharness.NewError(authharness.ErrCodeInternal, "failed to marshal request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return unavailable("failed to create request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("engine request", zap.String("method", method), zap.String("url", req.URL.String()))
	resp, err := c.client.Do(req)
	if err != nil {
		return unavailable("engine unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
			errResp.Error = http.StatusText(resp.StatusCode)
		}
		return unavailable(fmt.Sprintf("engine returned status %d", resp.StatusCode), errors.New(errResp.Error)).
			WithDetails("status", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return unavailable("failed to decode engine response", err)
	}
	return nil
}

func unavailable(detail string, cause error) *authharness.Error {
	return authharness.EngineFailure(detail, fmt.Errorf("%w: %v", authharness.ErrEngineUnavailable, cause))
}
