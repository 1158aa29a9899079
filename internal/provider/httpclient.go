package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/shelf-inventory/shelf/internal/dashboard"
	"github.com/shelf-inventory/shelf/internal/query"
)

// UpstreamError reports a non-2xx answer of the remote API.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream responded %d", e.Status)
	}
	return fmt.Sprintf("upstream responded %d: %s", e.Status, e.Message)
}

// Unwrap maps authentication failures onto ErrUnauthorized.
func (e *UpstreamError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// Notice returns the message to show the user.
func (e *UpstreamError) Notice() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// NoticeFor extracts a user-facing message from a fetch error.
func NoticeFor(err error) string {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Notice()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The inventory service took too long to respond."
	}
	return ""
}

var routes = map[query.Key]string{
	SalesDaily:   "/sales/daily",
	SalesWeekly:  "/sales/weekly",
	SalesMonthly: "/sales/monthly",
	Products:     "/products",
	Categories:   "/categories",
	Brands:       "/brands",
	Sellers:      "/sellers",
	Purchases:    "/purchases",
	ProfileSelf:  "/users/self",
}

// HTTPClient talks to the upstream inventory REST API.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPClient builds a client with the given per-request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Fetch implements Provider.
func (c *HTTPClient) Fetch(ctx context.Context, req Request) (any, error) {
	path, ok := routes[req.Key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, req.Key)
	}
	var out any
	if err := c.Send(ctx, http.MethodGet, path, req.Token, nil, &out); err != nil {
		return nil, fmt.Errorf("provider: fetch %s: %w", req.Key, err)
	}
	return out, nil
}

// UpdateProfile sends edited profile fields of the signed-in user.
func (c *HTTPClient) UpdateProfile(ctx context.Context, caller Caller, fields map[string]string) error {
	if err := c.Send(ctx, http.MethodPatch, routes[ProfileSelf], caller.Token, fields, nil); err != nil {
		return fmt.Errorf("provider: update profile: %w", err)
	}
	return nil
}

// Send performs one JSON round trip. A nil body sends no payload and a nil out
// discards the response.
func (c *HTTPClient) Send(ctx context.Context, method, path, token string, body, out any) error {
	if c == nil || c.BaseURL == "" {
		return errors.New("provider: upstream url not configured")
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set(middleware.RequestIDHeader, requestID(ctx))

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &UpstreamError{Status: resp.StatusCode, Message: upstreamMessage(data)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// upstreamMessage pulls "message" out of an error body, falling back to the
// nested data.message some endpoints use.
func upstreamMessage(data []byte) string {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	row := dashboard.Row(body)
	if msg := row.String("message", "error"); msg != "" {
		return msg
	}
	return row.Nested("data").String("message")
}
