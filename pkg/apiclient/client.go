package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gai-kavia/kavia-console/pkg/httpclient"
)

const (
	DefaultBaseURL    = "http://localhost:3001"
	DefaultHealthPath = "/health"
	DefaultDocsPath   = "/swagger-ui.html"
	InfoPath          = "/api/info"
	WelcomePath       = "/"

	// DefaultAccept prefers JSON, then plain text, then anything.
	DefaultAccept = "application/json, text/plain;q=0.9, */*;q=0.8"

	jsonContentType = "application/json"
)

// Settings is the resolved, immutable client configuration.
type Settings struct {
	BaseURL    string
	HealthPath string
	// DocsBaseURL and DocsPath only feed DocsURL; they are never fetched.
	DocsBaseURL string
	DocsPath    string
	Timeout     time.Duration
}

// Options overrides the defaults of a single request. A non-nil Headers map
// replaces the default headers entirely.
type Options struct {
	Method  string
	Headers map[string]string
	Body    []byte
}

// Client issues requests against a fixed base URL.
type Client struct {
	http     httpclient.Client
	settings Settings
	log      Logger
}

// New builds a Client. A nil transport falls back to resty with the configured timeout.
func New(settings Settings, transport httpclient.Client, log Logger) *Client {
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultBaseURL
	}
	if settings.HealthPath == "" {
		settings.HealthPath = DefaultHealthPath
	}
	if settings.DocsBaseURL == "" {
		settings.DocsBaseURL = DefaultBaseURL
	}
	if settings.DocsPath == "" {
		settings.DocsPath = DefaultDocsPath
	}
	if transport == nil {
		transport = httpclient.NewRestyClient(settings.Timeout)
	}
	return &Client{
		http:     transport,
		settings: settings,
		log:      ensureLogger(log),
	}
}

// APIBase returns the resolved base URL.
func (c *Client) APIBase() string { return c.settings.BaseURL }

// DocsURL returns the backend documentation link for display.
func (c *Client) DocsURL() string { return c.settings.DocsBaseURL + c.settings.DocsPath }

// URL composes the target for path. No slash normalization is applied.
func (c *Client) URL(path string) string { return c.settings.BaseURL + path }

// Health calls the configured health-check path.
func (c *Client) Health(ctx context.Context) (Result, error) {
	return c.Request(ctx, c.settings.HealthPath, nil)
}

// Info calls /api/info.
func (c *Client) Info(ctx context.Context) (Result, error) {
	return c.Request(ctx, InfoPath, nil)
}

// Welcome calls the backend root.
func (c *Client) Welcome(ctx context.Context) (Result, error) {
	return c.Request(ctx, WelcomePath, nil)
}

// Request performs one call to base+path and classifies the response body.
// Non-2xx statuses yield a *RequestError; nothing is retried.
func (c *Client) Request(ctx context.Context, path string, opts *Options) (Result, error) {
	req := httpclient.Request{
		Method:  http.MethodGet,
		URL:     c.URL(path),
		Headers: map[string]string{"Accept": DefaultAccept},
	}
	if opts != nil {
		if opts.Method != "" {
			req.Method = opts.Method
		}
		if opts.Headers != nil {
			req.Headers = opts.Headers
		}
		req.Body = opts.Body
	}

	start := time.Now()
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.log.WarnObj("api request failed", "api_transport_error", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"error":  err.Error(),
		})
		return Result{}, fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.URL, err)
	}

	contentType := resp.Header("Content-Type")
	isJSON := strings.Contains(contentType, jsonContentType)
	status := resp.StatusCode()

	c.log.DebugObj("api response received", "api_response", map[string]any{
		"method":       req.Method,
		"url":          req.URL,
		"status":       status,
		"content_type": contentType,
		"elapsed_ms":   time.Since(start).Milliseconds(),
	})

	if status < 200 || status > 299 {
		return Result{}, &RequestError{StatusCode: status, Body: errorBody(resp.Body(), isJSON)}
	}

	res := parseBody(resp.Body(), isJSON)
	res.StatusCode = status
	res.ContentType = contentType
	if res.Fallback {
		c.log.DebugObj("json body did not parse; returning text", "api_parse_fallback", map[string]any{
			"url":    req.URL,
			"status": status,
		})
	}
	return res, nil
}

// parseBody decodes JSON-classified bodies. A body that fails to parse is
// returned as text with Fallback set rather than failing the call.
func parseBody(body []byte, isJSON bool) Result {
	if !isJSON {
		return TextResult(string(body))
	}
	res, err := JSONResult(body)
	if err != nil {
		res = TextResult(string(body))
		res.Fallback = true
	}
	return res
}

// errorBody renders an error payload for the message. A JSON-classified body
// that does not parse is treated as unreadable.
func errorBody(body []byte, isJSON bool) string {
	if !isJSON {
		return string(body)
	}
	res, err := JSONResult(body)
	if err != nil {
		return ""
	}
	return res.Compact()
}
