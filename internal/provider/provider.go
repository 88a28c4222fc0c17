// Package provider scrapes content sites for shows, episodes and movies.
package provider

import (
	"context"

	"m3uforge/internal/media"
)

// Client is the HTTP client a provider fetches pages and JSON with.
// Implemented by httputil.Client.
type Client interface {
	Fetch(ctx context.Context, url, referer string) (string, error)
	GetJSON(ctx context.Context, url string, v any) error
}

// Catalog lists the items of a paginated listing and the episodes of an item.
type Catalog interface {
	// Listing returns the items on one listing page. An empty result marks
	// the end of the listing.
	Listing(ctx context.Context, pageURL string) ([]media.CatalogItem, error)

	// Episodes returns an item's episodes in chronological order.
	Episodes(ctx context.Context, itemURL string) ([]media.Episode, error)
}

// Searcher finds catalog items by name.
type Searcher interface {
	Search(ctx context.Context, query string) ([]media.CatalogItem, error)
}
