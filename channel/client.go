// Package channel calls the chat-routing showChannel webhook of the backend
package channel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrMissingToken = errors.New("channel token is required")

// ShowChannelURL builds {baseUrl}/v2/api/external/{token}/showChannel
func ShowChannelURL(baseURL, token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return "", fmt.Errorf("channel base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return "", fmt.Errorf("invalid channel base URL: %w", err)
	}
	return base + "/v2/api/external/" + url.PathEscape(token) + "/showChannel", nil
}

type Result struct {
	URL      string        `json:"url"`
	Status   int           `json:"status"`
	Body     string        `json:"body"`
	Duration time.Duration `json:"duration"`
}

// OK reports a 2xx status
func (r *Result) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// ShowChannel sends one request to the webhook. A non-2xx answer is returned
// in the Result, only transport failures are errors.
func (c *Client) ShowChannel(ctx context.Context, method string, body []byte) (*Result, error) {
	endpoint, err := ShowChannelURL(c.BaseURL, c.Token)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = http.MethodPost
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call showChannel: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read showChannel response: %w", err)
	}

	result := &Result{
		URL:      endpoint,
		Status:   resp.StatusCode,
		Body:     string(respBody),
		Duration: time.Since(start),
	}
	slog.Info("showChannel called", "status", result.Status, "duration", result.Duration)
	return result, nil
}
