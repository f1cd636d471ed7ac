package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies bearer tokens for Graph requests. Tokens are
// requested per call so long runs survive token expiry; implementations
// are expected to cache and refresh internally.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a TokenSource that always yields the given
// token. Useful for tests and short-lived scripted runs.
func StaticTokenSource(token string) TokenSource {
	return staticTokenSource(token)
}

type staticTokenSource string

func (s staticTokenSource) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// RequestRecorder receives a notification per Graph request attempt.
// Satisfied by the telemetry metrics type; may be nil.
type RequestRecorder interface {
	RecordGraphRequest(method, status string)
}

// ClientConfig contains configuration for the Graph client.
type ClientConfig struct {
	// BaseURL is the API base URL including the version segment,
	// e.g. "https://graph.microsoft.com/v1.0".
	BaseURL string

	// Tokens supplies bearer tokens. Required.
	Tokens TokenSource

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxRetries is the number of retries for 429 and 5xx responses.
	MaxRetries int

	// MaxIdleConns is the connection pool size.
	MaxIdleConns int

	// IdleConnTimeout is how long idle connections are kept open.
	IdleConnTimeout time.Duration

	// Recorder receives per-request metrics. Optional.
	Recorder RequestRecorder
}

// Client is a Graph REST client with connection pooling, request timeouts,
// and bounded exponential backoff for transient failures.
type Client struct {
	config ClientConfig
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a Graph client from the given configuration.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Tokens == nil {
		return nil, fmt.Errorf("graph: token source is required")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("graph: base URL is required")
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConns,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: slog.Default().With("component", "graph"),
	}, nil
}

// doRequest performs an HTTP request with retry logic. Transient failures
// (HTTP 429 and 5xx) are retried with exponential backoff; 429 responses
// carrying a Retry-After header are retried after the indicated delay
// instead. The bearer token is fetched fresh for every attempt.
func (c *Client) doRequest(ctx context.Context, operation, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var lastErr error
	var retryAfter time.Duration

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			if retryAfter > backoff {
				backoff = retryAfter
			}
			c.logger.Debug("retrying request",
				"operation", operation,
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		retryAfter = 0

		token, err := c.config.Tokens.Token(ctx)
		if err != nil {
			return nil, &AuthError{Operation: operation, Message: "token acquisition failed", Cause: err}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if req.Header.Get("Content-Type") == "" && body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			c.record(method, "network")

			if ctx.Err() != nil {
				return nil, &TimeoutError{Operation: operation, Timeout: c.config.Timeout}
			}

			c.logger.Warn("request failed, will retry",
				"operation", operation,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		c.record(method, statusClass(resp.StatusCode))

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		errorBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			// Not retryable, and the whole run is doomed without auth.
			return nil, &AuthError{Operation: operation, Message: string(errorBody)}

		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			lastErr = &RateLimitError{
				Operation:  operation,
				RetryAfter: retryAfter,
				Message:    string(errorBody),
			}
			c.logger.Warn("request throttled, will retry",
				"operation", operation,
				"retry_after", retryAfter,
				"attempt", attempt+1,
			)

		case resp.StatusCode >= 500:
			lastErr = &GraphError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}
			c.logger.Warn("request returned server error, will retry",
				"operation", operation,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)

		default:
			// Remaining 4xx codes are the API rejecting the payload; no
			// amount of retrying will change its mind.
			return nil, &GraphError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}
		}
	}

	return nil, lastErr
}

// doJSON performs a JSON request and decodes the response into respBody
// (which may be nil when no body is expected).
func (c *Client) doJSON(ctx context.Context, operation, method, url string, reqBody, respBody interface{}, headers map[string]string) error {
	var bodyBytes []byte
	var err error
	if reqBody != nil {
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := c.doRequest(ctx, operation, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{Operation: operation, Cause: fmt.Errorf("failed to read response: %w", err)}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Operation:   operation,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// url joins the base URL with a path-and-query suffix.
func (c *Client) url(pathAndQuery string) string {
	return strings.TrimSuffix(c.config.BaseURL, "/") + pathAndQuery
}

// record reports a request attempt to the recorder, if one is configured.
func (c *Client) record(method, status string) {
	if c.config.Recorder != nil {
		c.config.Recorder.RecordGraphRequest(method, status)
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

// statusClass folds an HTTP status code into a coarse label for metrics.
// 429 keeps its own label because throttling is the signal the pacing
// delay exists to avoid.
func statusClass(code int) string {
	switch {
	case code == http.StatusTooManyRequests:
		return "429"
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}

// escapeODataLiteral escapes a string for use inside a single-quoted OData
// filter literal.
func escapeODataLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
