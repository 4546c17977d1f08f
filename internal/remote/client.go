// Package remote talks to the spreadsheet backend: it posts outbox payloads
// and fetches the menu catalog.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// ErrRejected is returned when the backend answers with an error status.
var ErrRejected = errors.New("backend rejected request")

// Client is the HTTP client of the backend.
type Client struct {
	endpoint string
	http     *http.Client
	dialer   net.Dialer
}

// New creates a client for the backend endpoint URL.
func New(endpoint string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", endpoint)
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		dialer:   net.Dialer{Timeout: 3 * time.Second},
	}, nil
}

// Send posts one payload. Any non-2xx answer is an error.
func (c *Client) Send(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post payload: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrRejected, resp.Status)
	}
	return nil
}

type menuResponse struct {
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	MenuConfig []models.MenuItem `json:"menuConfig"`
}

// FetchMenu downloads the catalog. Only a "success" answer with a non-empty
// list is accepted.
func (c *Client) FetchMenu(ctx context.Context) ([]models.MenuItem, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("action", "getMenu")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menu: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrRejected, resp.Status)
	}

	var body menuResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode menu: %w", err)
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("%w: status %q %s", ErrRejected, body.Status, body.Message)
	}
	if len(body.MenuConfig) == 0 {
		return nil, fmt.Errorf("%w: empty menu", ErrRejected)
	}
	return body.MenuConfig, nil
}

// Online reports whether a TCP connection to the backend host succeeds.
func (c *Client) Online(ctx context.Context) bool {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return false
	}
	host := u.Host
	if u.Port() == "" {
		port := "443"
		if u.Scheme == "http" {
			port = "80"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
