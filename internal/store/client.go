package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ziadkadry99/compatbrowse/internal/jsonapi"
)

// MediaType is the content type of the backend's JSON-API responses.
const MediaType = "application/vnd.api+json"

// maxBodyBytes bounds a single response body.
const maxBodyBytes = 16 << 20

var (
	// ErrNotFound is returned when the backend has no such record.
	ErrNotFound = errors.New("record not found")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("api %s: status %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("api %s: status %d", e.URL, e.StatusCode)
}

// Fetcher loads a document for a namespace-relative path such as
// "browsers", "browsers/1" or "versions/12" with optional query values.
type Fetcher interface {
	Fetch(ctx context.Context, path string, query url.Values) (*jsonapi.Document, error)
}

// Client fetches documents from the compatibility API over HTTP.
type Client struct {
	base       *url.URL
	namespace  string
	httpClient *http.Client
}

// NewClient creates a client for the API rooted at baseURL + "/" + namespace.
func NewClient(baseURL, namespace string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:       base,
		namespace:  strings.Trim(namespace, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// URL builds the absolute URL for a namespace-relative path.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.base
	parts := []string{strings.TrimSuffix(u.Path, "/")}
	if c.namespace != "" {
		parts = append(parts, c.namespace)
	}
	parts = append(parts, strings.TrimPrefix(path, "/"))
	u.Path = strings.Join(parts, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, path string, query url.Values) (*jsonapi.Document, error) {
	target := c.URL(path, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", MediaType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", target, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		return nil, &APIError{URL: target, StatusCode: resp.StatusCode, Body: snippet}
	}

	doc, err := jsonapi.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", target, err)
	}
	return doc, nil
}
