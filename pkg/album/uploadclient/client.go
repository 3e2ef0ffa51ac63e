// Package uploadclient uploads media bytes to an issued upload grant. It
// completes the direct-upload loop for Go consumers and tests: request a
// grant, PUT the bytes at the signed URL, then record the caption metadata.
package uploadclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client uploads files to presigned URLs
type Client struct {
	httpClient    *http.Client
	retryAttempts int
	retryDelay    time.Duration
}

// ClientOption is a functional option for configuring a Client
type ClientOption func(*Client)

// NewClient creates a new upload client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Minute, // Long timeout for large uploads
		},
		retryAttempts: 3,
		retryDelay:    1 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRetry configures retry behavior
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// Upload PUTs the data to a presigned URL. The body is buffered once so
// transient failures can be retried; client errors (4xx) are not retried
// since the store has rejected the request outright, typically because the
// grant expired.
func (c *Client) Upload(ctx context.Context, presignedURL string, data io.Reader, contentType string) error {
	body, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read upload body: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("upload failed: %w", err)
			continue
		}

		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("upload failed with status: %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return lastErr
		}
	}

	return fmt.Errorf("upload failed after %d attempts: %w", c.retryAttempts, lastErr)
}
