// Package cma implements the remote gateway over the Content Management HTTP API.
package cma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/debug"
)

const (
	// DefaultBaseURL is the public Content Management API endpoint.
	DefaultBaseURL = "https://api.contentful.com"
	// DefaultRateLimit is the number of requests per second sent by default.
	DefaultRateLimit = 7

	mediaType  = "application/vnd.contentful.management.v1+json"
	maxRetries = 3
)

// Client is an authenticated, rate-limited HTTP client for one access token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the number of requests per second. Zero disables limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a client for token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

func (c *Client) buildRequest(ctx context.Context, method, path string, headers map[string]string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", mediaType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// do sends one request, retrying when the API reports a rate limit, and
// decodes a successful response into target.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, target any) error {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := c.buildRequest(ctx, method, path, headers, body)
		if err != nil {
			return err
		}

		debug.Debug("Sending request", "method", method, "path", path, "attempt", attempt+1)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to perform request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries {
			wait := retryAfter(resp)
			resp.Body.Close()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		return decodeResponse(resp, path, target)
	}
}

func decodeResponse(resp *http.Response, path string, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		reqErr := &domain.RequestError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Message:    resp.Status,
			URL:        path,
		}
		var body errorBody
		if json.Unmarshal(data, &body) == nil {
			if body.Message != "" {
				reqErr.Message = body.Message
			} else if body.Sys.ID != "" {
				reqErr.Message = body.Sys.ID
			}
			reqErr.Details = body.Details
		}
		return reqErr
	}

	if resp.StatusCode == http.StatusNoContent || target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func retryAfter(resp *http.Response) time.Duration {
	for _, h := range []string{"X-Contentful-RateLimit-Reset", "Retry-After"} {
		if secs, err := strconv.Atoi(resp.Header.Get(h)); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Second
}
