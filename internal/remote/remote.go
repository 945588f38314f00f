// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package remote fetches flat category records from the marketplace API.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"localmarket/internal/models"
)

var (
	// ErrNotConfigured is returned when no API base URL is set.
	ErrNotConfigured = errors.New("category API URL not configured")
	// ErrStatus wraps any non-2xx response.
	ErrStatus = errors.New("unexpected status from category API")
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 16 << 20

// Client talks to the remote category endpoint.
type Client struct {
	baseURL    string
	token      string
	maxRetries int
	interval   time.Duration
	client     *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// WithRetryInterval sets the first backoff delay.
func WithRetryInterval(d time.Duration) Option {
	return func(cl *Client) { cl.interval = d }
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a Client for baseURL. token is sent as a bearer token when set.
// maxRetries bounds the retries after the first attempt.
func New(baseURL, token string, timeout time.Duration, maxRetries int, opts ...Option) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		maxRetries: maxRetries,
		interval:   500 * time.Millisecond,
		client:     &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCategories returns the flat category list. Transport errors and 5xx
// responses are retried with exponential backoff; other failures are not.
func (c *Client) FetchCategories(ctx context.Context) ([]models.Category, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.interval
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.maxRetries)), ctx)

	var records []models.Category
	attempt := 0
	op := func() error {
		attempt++
		var err error
		records, err = c.fetchOnce(ctx)
		return err
	}
	notify := func(err error, next time.Duration) {
		c.logger.Warn("category fetch failed, retrying",
			"attempt", attempt,
			"retry_in", next,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) fetchOnce(ctx context.Context) ([]models.Category, error) {
	url := c.baseURL + "/categories"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("category request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("category http: %w", err))
		}
		return nil, fmt.Errorf("category http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("category read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w (status %d): %s", ErrStatus, resp.StatusCode, snippet(body))
		if resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	records, err := decode(body)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	c.logger.Debug("categories fetched", "count", len(records))
	return records, nil
}

// decode accepts either a bare array of records or an object with a
// "data" array.
func decode(body []byte) ([]models.Category, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("category unmarshal: empty body")
	}

	if trimmed[0] == '[' {
		var records []models.Category
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("category unmarshal: %w", err)
		}
		return records, nil
	}

	var envelope struct {
		Data []models.Category `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("category unmarshal: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("category unmarshal: response has no data array")
	}
	return envelope.Data, nil
}

func snippet(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
