package awx

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	PingPath = "/api/v2/ping/"
	JobsPath = "/api/v2/jobs/"

	DefaultPageSize = 20
	DefaultTimeout  = 10 * time.Second
)

// Client makes REST calls to an AWX controller. A Client is immutable once
// built, so a copy can be handed to a background command while the UI drops
// its own reference.
type Client struct {
	baseURL    string
	authHeader string
	pageSize   int
	client     *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithPageSize sets page_size for the jobs listing. Values <= 0 are ignored.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient creates a client for baseURL (no trailing slash, e.g.
// "https://awx.example.com") that sends authHeader on every request.
func NewClient(baseURL, authHeader string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		authHeader: authHeader,
		pageSize:   DefaultPageSize,
		client:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BasicAuth returns the Authorization header value for username and password.
func BasicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// BaseURL returns the controller address the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping requests /api/v2/ping/ with the client's credentials. Any 2xx counts as
// success.
func (c *Client) Ping(ctx context.Context) (*Ping, error) {
	resp, err := c.get(ctx, PingPath, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &AuthenticationError{Status: resp.StatusCode, StatusText: statusText(resp)}
	}

	var p Ping
	// ping bodies vary across AWX releases; an undecodable body still proves
	// the credentials were accepted
	_ = json.NewDecoder(resp.Body).Decode(&p)
	return &p, nil
}

// ListJobs fetches the most recent jobs, newest first, capped at the page
// size. Server ordering is returned untouched.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	q := url.Values{}
	q.Set("order_by", "-id")
	q.Set("page_size", strconv.Itoa(c.pageSize))

	resp, err := c.get(ctx, JobsPath, q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		io.Copy(io.Discard, resp.Body)
		return nil, &SessionExpiredError{}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Status: resp.StatusCode}
	}

	return decodeJobs(resp.Body)
}

func decodeJobs(r io.Reader) ([]Job, error) {
	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, &RenderError{Err: errors.Wrap(err, "decode jobs response")}
	}
	// an absent or null results list is an empty listing
	jobs := []Job{}
	if len(envelope.Results) == 0 || string(envelope.Results) == "null" {
		return jobs, nil
	}
	if err := json.Unmarshal(envelope.Results, &jobs); err != nil {
		return nil, &RenderError{Err: errors.Wrap(err, "decode jobs results")}
	}
	return jobs, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &NetworkError{Op: "GET " + path, Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "GET " + path, Err: err}
	}
	return resp, nil
}

func statusText(resp *http.Response) string {
	// resp.Status is "401 Unauthorized"
	if len(resp.Status) > 4 {
		return resp.Status[4:]
	}
	return http.StatusText(resp.StatusCode)
}
