// Package render turns a URL into page source, either with a plain HTTP
// fetch or after JavaScript has run in a headless browser.
package render

import (
	"context"
)

// Renderer returns the source of the page at url. Each call is independent:
// no navigation state carries over between calls.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Fetcher is the subset of the HTTP client a Renderer needs.
type Fetcher interface {
	Fetch(ctx context.Context, url, referer string) (string, error)
}

// HTTP renders pages with a plain GET and no script execution.
type HTTP struct {
	fetcher Fetcher
}

// NewHTTP creates an HTTP renderer on top of f.
func NewHTTP(f Fetcher) *HTTP {
	return &HTTP{fetcher: f}
}

// Render implements Renderer.
func (h *HTTP) Render(ctx context.Context, url string) (string, error) {
	return h.fetcher.Fetch(ctx, url, "")
}
