// Package keap wraps the Keap (Infusionsoft) REST API: request plumbing,
// rate-limit header parsing, the error taxonomy, and per-entity endpoints
// with wire-to-domain decoding.
package keap

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a thin HTTP client for the Keap REST API. All calls are
// synchronous and blocking; retry is layered on top by the caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient validates the API key and builds a pooled HTTP client.
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, &AuthError{Message: "KEAP_API_KEY is not set"}
	}
	if baseURL == "" {
		baseURL = "https://api.keap.com/crm/rest/v1"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// PageInfo is the pagination envelope returned alongside list results.
type PageInfo struct {
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Count    int    `json:"count"`
	Total    int    `json:"total"`
}

// ParseNextOffset extracts the offset query parameter out of a "next" page
// URL. A missing or unparsable offset is treated as end-of-pages (nil).
func ParseNextOffset(next string) *int {
	if next == "" {
		return nil
	}
	u, err := url.Parse(next)
	if err != nil {
		slog.Warn("Failed to parse next URL", "url", next, "error", err)
		return nil
	}
	raw := u.Query().Get("offset")
	if raw == "" {
		return nil
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Failed to parse offset from next URL", "url", next, "error", err)
		return nil
	}
	return &offset
}

// get performs one GET and decodes the body into out.
func (c *Client) get(endpoint string, params url.Values, out any) error {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Keap-API-Key", c.apiKey)

	slog.Debug("Keap API request", "endpoint", endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if err := c.checkResponse(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("read response: %v", err)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Message: fmt.Sprintf("failed to parse JSON response: %v", err)}
	}
	return nil
}

// checkResponse maps HTTP status codes onto the error taxonomy, folding the
// throttle/quota headers into rate-limit errors.
func (c *Client) checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	throttle := parseThrottleHeaders(resp.Header)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		// A 429 with the daily quota at zero is quota exhaustion, not a
		// throttle: no amount of waiting within the run will clear it.
		if throttle.HasQuota && throttle.QuotaAvailable == 0 {
			slog.Error("Daily API quota exhausted",
				"limit", throttle.QuotaLimit, "used", throttle.QuotaUsed)
			return &QuotaExhaustedError{Message: fmt.Sprintf(
				"daily API quota exhausted (limit: %d, used: %d)",
				throttle.QuotaLimit, throttle.QuotaUsed)}
		}
		limitType := "product throttle"
		if throttle.HasTenantThrottle && throttle.TenantThrottleAvailable == 0 && throttle.ProductThrottleAvailable > 0 {
			limitType = "tenant throttle"
		}
		slog.Info("Rate limit exceeded",
			"limit_type", limitType,
			"product_available", throttle.ProductThrottleAvailable,
			"tenant_available", throttle.TenantThrottleAvailable)
		return &RateLimitError{
			Message:  fmt.Sprintf("rate limit exceeded (%s); will retry after throttle period", limitType),
			Throttle: throttle,
		}
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return &AuthError{Message: fmt.Sprintf("authentication failed (status %d)", resp.StatusCode)}
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Message: "resource not found"}
	case resp.StatusCode == http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &ValidationError{Message: fmt.Sprintf("validation failed: %s", strings.TrimSpace(string(body)))}
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("server error: status %d", resp.StatusCode)}
	default:
		return &APIError{Message: fmt.Sprintf("API request failed: status %d", resp.StatusCode)}
	}
}

func parseThrottleHeaders(h http.Header) Throttle {
	t := Throttle{}
	t.ProductThrottleLimit = safeInt(h.Get("x-keap-product-throttle-limit"))
	t.ProductThrottleAvailable, t.HasProductThrottle = safeIntPresent(h.Get("x-keap-product-throttle-available"))
	t.TenantThrottleLimit = safeInt(h.Get("x-keap-tenant-throttle-limit"))
	t.TenantThrottleAvailable, t.HasTenantThrottle = safeIntPresent(h.Get("x-keap-tenant-throttle-available"))
	t.QuotaLimit = safeInt(h.Get("x-keap-product-quota-limit"))
	t.QuotaUsed = safeInt(h.Get("x-keap-product-quota-used"))
	t.QuotaAvailable, t.HasQuota = safeIntPresent(h.Get("x-keap-product-quota-available"))
	// Quota exhaustion only applies to the daily window.
	if t.HasQuota && !strings.EqualFold(strings.TrimSpace(h.Get("x-keap-product-quota-time-unit")), "day") {
		t.HasQuota = false
	}
	return t
}

// safeInt parses a header value, treating empty or malformed values as 0.
func safeInt(v string) int {
	n, _ := safeIntPresent(v)
	return n
}

// safeIntPresent additionally reports whether the header carried a meaningful
// value, since an absent counter must not be confused with a zero one.
func safeIntPresent(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// prepareParams builds the standard list-call query: limit, offset, and any
// extra filters such as since.
func prepareParams(limit, offset int, extra map[string]string) url.Values {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	for k, v := range extra {
		if v != "" {
			params.Set(k, v)
		}
	}
	return params
}
