// Package portal is the HTTP client for the KrushiSetu REST API: documents, profile prefill,
// subsidy catalog and application submission.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// CSRFCookieName is the cookie the server uses for the double-submit token.
	CSRFCookieName = "csrftoken"
	// CSRFHeader carries the token back on state-changing requests.
	CSRFHeader = "X-CSRFToken"
	// ApplicantHeader identifies the applicant to the API gateway.
	ApplicantHeader = "X-Applicant-ID"
)

// DefaultProfilePaths are tried in order when fetching the profile prefill.
var DefaultProfilePaths = []string{"/profile/", "/farmer/profile/", "/users/me/"}

// Config holds the client settings.
type Config struct {
	BaseURL      string
	ApplicantID  string
	CSRFToken    string
	Timeout      time.Duration
	ProfilePaths []string
}

// Client talks to the portal REST API. It is safe for concurrent use.
type Client struct {
	base         *url.URL
	http         *http.Client
	applicantID  string
	profilePaths []string
	log          logrus.FieldLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its cookie jar is used for the CSRF token.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a Client for cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("portal base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	c := &Client{
		base: base,
		http: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		applicantID:  cfg.ApplicantID,
		profilePaths: cfg.ProfilePaths,
		log:          logrus.StandardLogger(),
	}
	if len(c.profilePaths) == 0 {
		c.profilePaths = DefaultProfilePaths
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.CSRFToken != "" && c.http.Jar != nil {
		c.http.Jar.SetCookies(base, []*http.Cookie{{Name: CSRFCookieName, Value: cfg.CSRFToken, Path: "/"}})
	}
	return c, nil
}

func (c *Client) url(path string) string {
	return c.base.String() + path
}

// csrfToken returns the token from the cookie jar, if the server has issued one.
func (c *Client) csrfToken() string {
	if c.http.Jar == nil {
		return ""
	}
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == CSRFCookieName {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.applicantID != "" {
		req.Header.Set(ApplicantHeader, c.applicantID)
	}
	if method != http.MethodGet && method != http.MethodHead {
		if tok := c.csrfToken(); tok != "" {
			req.Header.Set(CSRFHeader, tok)
		}
	}
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out (when out is non-nil).
// Non-2xx responses become *RemoteError.
func (c *Client) do(op string, req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("op", op).Warn("portal request failed")
		return &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	entry := c.log.WithFields(logrus.Fields{
		"op":          op,
		"method":      req.Method,
		"path":        req.URL.Path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := newRemoteError(op, resp)
		entry.WithField("code", rerr.Code).Warn("portal request rejected")
		return rerr
	}
	entry.Debug("portal request done")

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	return c.do(op, req, out)
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(b), "application/json")
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	return c.do(op, req, out)
}
