// Package builtin implements the restaurant tools the model can call:
// search, details, availability checks, and reservations. All of them talk
// to the restaurant platform API over HTTP.
package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bitebot/internal/agent/ports"
	"bitebot/internal/httpclient"
)

const defaultAPITimeout = 10 * time.Second

// Config points the tools at the restaurant platform API.
type Config struct {
	// BaseURL is the API root, e.g. https://api.example.com/v1.
	BaseURL string
	// Timeout bounds each API call. Zero means defaultAPITimeout.
	Timeout time.Duration
}

// apiClient is the HTTP client shared by every restaurant tool. One circuit
// breaker covers the whole API; if search calls are failing, reservation
// calls will be too.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(cfg Config) *apiClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}
	return &apiClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpclient.NewWithCircuitBreaker(timeout, nil, "restaurant_api"),
	}
}

func (c *apiClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.doJSON(req, out)
}

func (c *apiClient) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *apiClient) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := httpclient.ReadBody(resp.Body, httpclient.MaxRestaurantBody)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("restaurant API returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// errorResult packages a tool failure so the model sees it as output and can
// recover conversationally instead of aborting the turn.
func errorResult(callID string, err error) (*ports.ToolResult, error) {
	return &ports.ToolResult{CallID: callID, Content: fmt.Sprintf("Error: %v", err), Error: err}, nil
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	case string:
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &n); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// All returns every restaurant tool wired to the same API client.
func All(cfg Config) []ports.ToolExecutor {
	client := newAPIClient(cfg)
	return []ports.ToolExecutor{
		NewSearchRestaurants(client),
		NewRestaurantDetails(client),
		NewCheckAvailability(client),
		NewMakeReservation(client),
	}
}
