package agentapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
	defaultBackoff    = 500 * time.Millisecond
)

// Config holds the NeuralSeek endpoints and credentials.
type Config struct {
	// URL receives agent creation requests.
	URL string
	// InvokeURL is the maistro endpoint. Defaults to URL.
	InvokeURL  string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	// Backoff is the first retry delay; it doubles per attempt.
	Backoff time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client is a NeuralSeek API client. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	rest       *resty.Client
	logger     *slog.Logger
}

// New builds a client. Zero timeouts and retry counts fall back to the
// package defaults; a negative MaxRetries disables retries.
func New(cfg Config, options ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	if cfg.InvokeURL == "" {
		cfg.InvokeURL = cfg.URL
	}

	c := &Client{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}

	if c.httpClient != nil {
		c.rest = resty.NewWithClient(c.httpClient)
	} else {
		c.rest = resty.New()
	}
	c.rest.
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	c.logger = c.logger.With("component", "agentapi")
	return c
}

// post sends body to url with the given auth header and returns the raw
// response body. 5xx responses and network errors other than timeouts are
// retried with exponential backoff.
func (c *Client) post(ctx context.Context, url, authHeader string, body any) ([]byte, error) {
	if url == "" {
		return nil, ErrNotConfigured
	}

	backoff := retry.WithMaxRetries(uint64(c.cfg.MaxRetries), retry.NewExponential(c.cfg.Backoff))
	attempt := 0

	var payload []byte
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		resp, err := c.rest.R().
			SetContext(ctx).
			SetHeader(authHeader, c.cfg.APIKey).
			SetBody(body).
			Post(url)
		if err != nil {
			err = classify(err)
			if ctx.Err() != nil || errors.Is(err, ErrTimeout) {
				return err
			}
			c.logger.Warn("request failed", "url", url, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		if resp.IsError() {
			statusErr := &StatusError{Status: resp.StatusCode(), Body: resp.Body()}
			if statusErr.retryable() {
				c.logger.Warn("server error", "url", url, "attempt", attempt, "status", statusErr.Status)
				return retry.RetryableError(statusErr)
			}
			return statusErr
		}
		payload = resp.Body()
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			err = classify(err)
		}
		return nil, fmt.Errorf("agentapi: post %s: %w", url, err)
	}
	return payload, nil
}
