// Package httpx is the shared HTTP plumbing for upstream adapters.
// One client per upstream, configured with that upstream's base URL and
// auth material. No retries here: a failed call surfaces immediately
// and the batch layer decides what it means
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "opstats/internal/platform/errors"
)

// DefaultTimeout bounds one upstream round trip
const DefaultTimeout = 30 * time.Second

const userAgent = "opstats/1.0"

// Client wraps http.Client with a base URL and default headers
type Client struct {
	base    string
	headers http.Header
	hc      *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBearer attaches a bearer token to every request
func WithBearer(token string) Option {
	return func(c *Client) { c.headers.Set("Authorization", "Bearer "+token) }
}

// WithCookies forwards a raw Cookie header, opaque to this layer
func WithCookies(raw string) Option {
	return func(c *Client) {
		if raw != "" {
			c.headers.Set("Cookie", raw)
		}
	}
}

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

// New builds a Client rooted at base
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(base, "/"),
		headers: http.Header{"User-Agent": []string{userAgent}},
		hc:      &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Response is one upstream reply, body fully read
type Response struct {
	Status int
	Body   []byte
}

// Success reports a 2xx status
func (r Response) Success() bool { return r.Status >= 200 && r.Status < 300 }

// Get issues a GET for path with the given query
func (c *Client) Get(ctx context.Context, path string, q url.Values) (Response, error) {
	return c.do(ctx, http.MethodGet, c.url(path, q), "", nil)
}

// PostForm issues a form-encoded POST
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (Response, error) {
	body := strings.NewReader(form.Encode())
	return c.do(ctx, http.MethodPost, c.url(path, nil), "application/x-www-form-urlencoded", body)
}

func (c *Client) url(path string, q url.Values) string {
	u := c.base + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, u, contentType string, body io.Reader) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return Response{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "build request %s", u)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Response{}, perr.Timeoutf("%s %s: %v", method, u, err)
		}
		var ue *url.Error
		if errors.As(err, &ue) && ue.Timeout() {
			return Response{}, perr.Timeoutf("%s %s: %v", method, u, err)
		}
		return Response{}, perr.Unavailablef("%s %s: %v", method, u, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, perr.Unavailablef("read body %s: %v", u, err)
	}
	return Response{Status: resp.StatusCode, Body: raw}, nil
}

// DecodeJSON unmarshals an upstream JSON body
func DecodeJSON(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(dst); err != nil {
		return perr.Parsef("decode upstream json: %v", err)
	}
	return nil
}
