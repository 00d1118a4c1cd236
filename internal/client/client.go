// Package client talks to a running inkwell server. It implements the same
// gateway and publisher interfaces as the local disk and git backends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inkwell-cli/internal/gateway"
	"inkwell-cli/internal/model"
	"inkwell-cli/internal/review"
)

var (
	_ gateway.Gateway  = (*Client)(nil)
	_ review.Publisher = (*Client)(nil)
)

// APIError is a non-2xx response. Message is the server's "error" field
// when present, else the raw body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inkwell api: %d: %s", e.Status, e.Message)
}

type Client struct {
	base *url.URL
	http *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("client: empty base url")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", u.Scheme)
	}
	c := &Client{base: u, http: &http.Client{Timeout: 2 * time.Minute}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) LoadAll(ctx context.Context) (model.Collections, error) {
	var out model.Collections
	if err := c.do(ctx, http.MethodGet, "/api/data", nil, &out); err != nil {
		return model.Collections{}, err
	}
	return out.Clone(), nil
}

// SaveCollection validates name before sending anything.
func (c *Client) SaveCollection(ctx context.Context, name string, data any) error {
	if err := gateway.ValidateName(name); err != nil {
		return err
	}
	body := struct {
		Filename string `json:"filename"`
		Data     any    `json:"data"`
	}{name, data}
	return c.do(ctx, http.MethodPost, "/api/save-json", body, nil)
}

func (c *Client) Diff(ctx context.Context) (review.DiffResult, error) {
	var out review.DiffResult
	err := c.do(ctx, http.MethodGet, "/api/git/diff", nil, &out)
	return out, err
}

func (c *Client) Push(ctx context.Context) (review.SyncResult, error) {
	return c.sync(ctx, "/api/git/push")
}

func (c *Client) Pull(ctx context.Context) (review.SyncResult, error) {
	return c.sync(ctx, "/api/git/pull")
}

// sync decodes the result body whatever the status, since failures carry
// git's stdout and stderr.
func (c *Client) sync(ctx context.Context, path string) (review.SyncResult, error) {
	var out review.SyncResult
	err := c.do(ctx, http.MethodPost, path, nil, &out)
	var apiErr *APIError
	if err != nil && !errors.As(err, &apiErr) {
		return review.SyncResult{Success: false, Error: err.Error()}, err
	}
	if !out.Success {
		if err == nil {
			err = errors.New(firstNonEmpty(out.Error, out.Message, "request failed"))
		}
		return out, err
	}
	return out, nil
}

type Locality struct {
	IsLocal  bool   `json:"isLocal"`
	ClientIP string `json:"clientIp"`
}

// IsLocal asks the server how it classifies this client. Any failure
// reports local along with the error.
func (c *Client) IsLocal(ctx context.Context) (Locality, error) {
	var out Locality
	if err := c.do(ctx, http.MethodGet, "/api/is-local", nil, &out); err != nil {
		return Locality{IsLocal: true}, err
	}
	return out, nil
}

type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var apiErr error
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr = &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil && apiErr == nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return apiErr
}

func errorMessage(raw []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(raw))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
