// Package httputil provides the fetch client used for every page request
// and input sanitization utilities.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTransport wraps network, timeout and HTTP status failures.
var ErrTransport = errors.New("transport error")

// UserAgent is a desktop Chrome user agent, matching the TLS fingerprint.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBody limits every response body.
const maxBody = 10 * 1024 * 1024

// Options configures a Client.
type Options struct {
	Timeout     time.Duration // Per request
	Retries     int           // Extra attempts after the first
	Backoff     time.Duration // Delay before the first retry, doubled each time
	UserAgent   string
	Fingerprint bool // Use the Chrome TLS fingerprint transport
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Timeout:     15 * time.Second,
		Retries:     2,
		Backoff:     2 * time.Second,
		UserAgent:   UserAgent,
		Fingerprint: true,
	}
}

// Client performs GET requests with browser headers, retrying transient
// failures with exponential backoff.
type Client struct {
	http *http.Client
	opts Options
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}

	var transport http.RoundTripper = newPlainTransport()
	if opts.Fingerprint {
		transport = newChromeTransport(opts.Timeout)
	}

	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts: opts,
	}
}

// NewClientWithTransport creates a Client on top of an explicit transport.
func NewClientWithTransport(opts Options, rt http.RoundTripper) *Client {
	opts.Fingerprint = false
	c := NewClient(opts)
	c.http.Transport = rt
	return c
}

// Fetch returns the body of an HTML page as text.
func (c *Client) Fetch(ctx context.Context, url, referer string) (string, error) {
	body, err := c.get(ctx, url, referer, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url, "", "application/json, text/javascript, */*; q=0.01")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing JSON from %s: %w", url, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url, referer, accept string) ([]byte, error) {
	if err := ValidateURL(url); err != nil {
		return nil, fmt.Errorf("%w: invalid URL: %v", ErrTransport, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.opts.Retries; attempt++ {
		if attempt > 0 {
			delay := c.opts.Backoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrTransport, ctx.Err())
			case <-time.After(delay):
			}
		}

		body, retry, err := c.do(ctx, url, referer, accept)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, lastErr
}

// do performs one request. retry reports whether the failure is transient.
func (c *Client) do(ctx context.Context, url, referer, accept string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: creating request: %v", ErrTransport, err)
	}

	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("%w: request failed: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, transient, fmt.Errorf("%w: unexpected status %d for %s", ErrTransport, resp.StatusCode, url)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, true, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}
	return body, false, nil
}
