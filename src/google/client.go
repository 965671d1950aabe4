package google

import (
	"QuickToilet/src/types"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	PlacesBaseURL = "https://places.googleapis.com/v1"
	RoutesBaseURL = "https://routes.googleapis.com"

	maxErrorBody = 64 << 10
)

// Client talks to the Places API (New) and the Routes API.
type Client struct {
	apiKey        string
	httpClient    *http.Client
	placesBaseURL string
	routesBaseURL string
}

type Option func(*Client)

func WithBaseURLs(places, routes string) Option {
	return func(c *Client) {
		c.placesBaseURL = places
		c.routesBaseURL = routes
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: timeout},
		placesBaseURL: PlacesBaseURL,
		routesBaseURL: RoutesBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Ready() error {
	if c.apiKey == "" {
		return types.ErrMissingCredential
	}
	return nil
}

// do sends one request with the key and field mask headers and decodes a 2xx
// JSON body into out. Other statuses come back as *types.UpstreamError.
func (c *Client) do(ctx context.Context, op, method, urlStr, fieldMask string, body, out any) error {
	if err := c.Ready(); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &types.UpstreamError{Op: op, Status: resp.StatusCode, Body: string(text)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
