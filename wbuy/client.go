// Package wbuy is a minimal client for the Wbuy commerce API, enough to pull
// a store's live catalog for comparison with what the agent has stored.
package wbuy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://sistema.sistemawbuy.com.br/api/v1"
	DefaultPageSize = 50
	DefaultMaxPages = 200
)

// APIError is returned for a non-2xx HTTP status or an error responseCode
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("wbuy api error: status %d: %s", e.Status, body)
}

type Client struct {
	BaseURL  string
	Token    string
	PageSize int
	MaxPages int
	HTTP     *http.Client
	Limiter  *rate.Limiter
}

// NewClient builds a client that sends token as the bearer credential.
// requestsPerSecond <= 0 disables throttling.
func NewClient(baseURL, token string, requestsPerSecond float64, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Token:    token,
		PageSize: DefaultPageSize,
		MaxPages: DefaultMaxPages,
		HTTP:     &http.Client{Timeout: timeout},
		Limiter:  rate.NewLimiter(limit, 1),
	}
}

// ListProducts fetches one page and returns the raw JSON of each product
func (c *Client) ListProducts(ctx context.Context, page, limit int) ([]string, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.BaseURL + "/product/?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call wbuy: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read wbuy response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("wbuy returned invalid JSON")
	}

	doc := gjson.ParseBytes(body)
	if code := doc.Get("responseCode"); code.Exists() && (code.Int() < 200 || code.Int() > 299) {
		return nil, &APIError{Status: int(code.Int()), Body: doc.Get("message").String()}
	}

	data := doc.Get("data")
	if !data.Exists() && doc.IsArray() {
		data = doc
	}

	var items []string
	data.ForEach(func(_, v gjson.Result) bool {
		items = append(items, v.Raw)
		return true
	})

	slog.Debug("Wbuy page fetched", "page", page, "count", len(items))
	return items, nil
}

// AllProducts walks pages from 1 until a page comes back shorter than the
// page size, or MaxPages is reached
func (c *Client) AllProducts(ctx context.Context) ([]string, error) {
	var all []string
	for page := 1; page <= c.MaxPages; page++ {
		items, err := c.ListProducts(ctx, page, c.PageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		all = append(all, items...)
		if len(items) < c.PageSize {
			slog.Info("Wbuy catalog fetched", "pages", page, "products", len(all))
			return all, nil
		}
	}

	slog.Warn("Wbuy page limit reached", "max_pages", c.MaxPages, "products", len(all))
	return all, nil
}
