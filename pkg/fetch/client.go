// Package fetch downloads image bytes over HTTP for the asset sinks.
// Requests are paced by a per-minute limiter and never retried.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"threadscraper/pkg/config"
	"threadscraper/pkg/logger"
)

// maxBodyBytes caps a single image download
const maxBodyBytes = 64 << 20

// ErrorType classifies fetch failures
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeTooLarge    ErrorType = "too_large"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is a failed download. Code is the HTTP status, or 0 when no response arrived.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Response is a fully read download
type Response struct {
	Body        []byte
	ContentType string
	StatusCode  int
}

// Client downloads images
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	limiter    *rate.Limiter
	logger     logger.Logger
}

// NewClient creates a Client from the download configuration
func NewClient(cfg config.DownloadConfig, log logger.Logger) *Client {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultConfig().Download.UserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		headers: map[string]string{
			"User-Agent":      ua,
			"Accept":          "image/avif,image/webp,image/apng,image/*,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Sec-Fetch-Dest":  "image",
			"Sec-Fetch-Mode":  "no-cors",
			"Sec-Fetch-Site":  "cross-site",
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.OrGlobal(log),
	}
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetHeader sets a custom header for every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Get downloads url and returns its body and content type
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Type: ErrorTypeRateLimit, Message: "rate limiter wait aborted", URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err), URL: url, Err: err}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"duration": time.Since(start),
		})
		return nil, &Error{Type: ErrorTypeNetwork, Message: fmt.Sprintf("network error: %v", err), URL: url, Err: err}
	}
	defer resp.Body.Close()

	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, float64(time.Since(start).Microseconds())/1000)

	if err := checkResponseStatus(resp, url); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &Error{Type: ErrorTypeNetwork, Message: fmt.Sprintf("failed to read response body: %v", err), Code: resp.StatusCode, URL: url, Err: err}
	}
	if len(body) > maxBodyBytes {
		return nil, &Error{Type: ErrorTypeTooLarge, Message: "response body exceeds size limit", Code: resp.StatusCode, URL: url}
	}

	return &Response{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}

// checkResponseStatus maps non-2xx statuses to typed errors
func checkResponseStatus(resp *http.Response, url string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &Error{Type: ErrorTypeAuth, Message: "access denied", Code: code, URL: url}
	case code == http.StatusNotFound || code == http.StatusGone:
		return &Error{Type: ErrorTypeNotFound, Message: "resource not found", Code: code, URL: url}
	case code == http.StatusTooManyRequests:
		return &Error{Type: ErrorTypeRateLimit, Message: "rate limit exceeded", Code: code, URL: url}
	case code >= 500:
		return &Error{Type: ErrorTypeServerError, Message: "server error", Code: code, URL: url}
	default:
		return &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("unexpected status code: %d", code), Code: code, URL: url}
	}
}
