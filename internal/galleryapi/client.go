package galleryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/five82/folio/internal/gallery"
)

// Remote is the gallery service as seen by the catalog.
type Remote interface {
	FetchCategory(ctx context.Context, category string) ([]gallery.Image, error)
	FetchCategories(ctx context.Context) ([]string, error)
	CreateImage(ctx context.Context, category string, fields gallery.Fields) (gallery.Image, error)
	DeleteImage(ctx context.Context, id string) (bool, error)
}

var _ Remote = (*Client)(nil)

// Client talks to the gallery HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultBaseURL = "http://localhost:5000/api/gallery"
	defaultTimeout = 5 * time.Second
)

// UserAgent is sent with every request.
var UserAgent = "folio/0.1"

// NewClient builds a Client for the service rooted at baseURL. A zero timeout
// uses the default.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: UserAgent,
	}, nil
}

// FetchCategory returns every image in category, newest first.
func (c *Client) FetchCategory(ctx context.Context, category string) ([]gallery.Image, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []gallery.Image
	if err := c.do(ctx, http.MethodGet, category, nil, &payload); err != nil {
		return nil, err
	}
	for i := range payload {
		if payload[i].Category == "" {
			payload[i].Category = category
		}
	}
	return payload, nil
}

// FetchCategories returns the category names known to the service.
func (c *Client) FetchCategories(ctx context.Context) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []string
	if err := c.do(ctx, http.MethodGet, gallery.ReservedCategory, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CreateImage stores a new image in category and returns the stored record.
func (c *Client) CreateImage(ctx context.Context, category string, fields gallery.Fields) (gallery.Image, error) {
	if c == nil {
		return gallery.Image{}, fmt.Errorf("client is nil")
	}
	var payload gallery.Image
	if err := c.do(ctx, http.MethodPost, category, fields, &payload); err != nil {
		return gallery.Image{}, err
	}
	if payload.Category == "" {
		payload.Category = category
	}
	return payload, nil
}

// DeleteResponse mirrors the DELETE payload.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// DeleteImage removes the image with id. The id is percent-encoded as a
// single path segment, so ids containing slashes survive the trip.
func (c *Client) DeleteImage(ctx context.Context, id string) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return false, fmt.Errorf("image id required")
	}
	var payload DeleteResponse
	if err := c.do(ctx, http.MethodDelete, id, nil, &payload); err != nil {
		return false, err
	}
	return payload.Success, nil
}

func (c *Client) do(ctx context.Context, method, segment string, body, dest any) error {
	return c.doURL(ctx, method, c.resolve(segment), body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, reqURL *url.URL, body, dest any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{Method: method, Path: reqURL.EscapedPath(), Code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// resolve appends one escaped path segment to the base URL.
func (c *Client) resolve(segment string) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(c.baseURL.Path, "/") + "/" + segment
	u.RawPath = strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + "/" + url.PathEscape(segment)
	return &u
}

// StatusError is returned for non-success HTTP responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Code)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
