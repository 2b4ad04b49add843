package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AnalyticsPath is the endpoint path relative to the base URL.
const AnalyticsPath = "/api/analytics/"

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return fmt.Sprintf("analytics request failed: %d %s", e.StatusCode, text)
	}
	return fmt.Sprintf("analytics request failed: status %d", e.StatusCode)
}

// Client talks to a remote analytics endpoint.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ Provider = (*Client)(nil)

type ClientOption func(*Client)

// WithToken sets the bearer token sent with each request.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a Client for baseURL, e.g. "http://localhost:8000".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the full analytics endpoint URL.
func (c *Client) URL() string {
	return c.baseURL + AnalyticsPath
}

// FetchInsight posts to the analytics endpoint and decodes the insight.
func (c *Client) FetchInsight(ctx context.Context) (Insight, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), nil)
	if err != nil {
		return Insight{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Insight{}, fmt.Errorf("analytics request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Insight{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Insight{}, &HTTPError{StatusCode: resp.StatusCode, Detail: parseDetail(body)}
	}

	var out Insight
	if err := json.Unmarshal(body, &out); err != nil {
		return Insight{}, fmt.Errorf("malformed insight payload: %w", err)
	}
	if strings.TrimSpace(out.Insight) == "" {
		return Insight{}, ErrEmptyInsight
	}
	return out, nil
}

// parseDetail extracts the "detail" field of an error body. Validation
// errors carry a list of objects with "msg" fields instead of a string.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
