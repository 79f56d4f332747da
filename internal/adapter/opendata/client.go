// Package opendata fetches the raw provider feeds over HTTP.
package opendata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client retrieves raw JSON payloads from the open-data providers. Every
// request is bounded by the configured timeout; transient failures are
// retried with exponential backoff before the fetch is reported as failed.
type Client struct {
	httpClient *http.Client
	maxElapsed time.Duration
	logger     *slog.Logger
}

// NewClient creates a feed client with a per-request timeout and an overall
// retry budget.
func NewClient(timeout, maxElapsed time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxElapsed: maxElapsed,
		logger:     logger,
	}
}

// Fetch downloads one feed and returns its raw bytes. Server-side errors
// (5xx) and transport errors are retried; client errors (4xx) are not.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var payload []byte

	operation := func() error {
		body, err := c.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		payload = body
		return nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(c.maxElapsed),
	), ctx)

	if err := backoff.RetryNotify(operation, policy, func(err error, next time.Duration) {
		c.logger.Warn("fetch failed, retrying", "url", url, "error", err, "next_attempt_in", next)
	}); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("fetch %s: status %d: %s", url, resp.StatusCode, body)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	return io.ReadAll(resp.Body)
}
