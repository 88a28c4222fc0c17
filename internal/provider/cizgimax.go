package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"m3uforge/internal/httputil"
	"m3uforge/internal/media"
)

// CizgiMax implements Catalog and Searcher for the CizgiMax cartoon site.
type CizgiMax struct {
	base         string // e.g. "https://cizgimax.online"
	searchPath   string // AJAX search endpoint
	itemSelector string // Listing page item links
	client       Client
}

// NewCizgiMax creates a CizgiMax provider.
func NewCizgiMax(base, searchPath, itemSelector string, client Client) *CizgiMax {
	return &CizgiMax{
		base:         strings.TrimRight(base, "/"),
		searchPath:   searchPath,
		itemSelector: itemSelector,
		client:       client,
	}
}

// searchResponse is the AJAX search payload.
type searchResponse struct {
	Data struct {
		Result []searchHit `json:"result"`
	} `json:"data"`
}

type searchHit struct {
	Name string `json:"s_name"`
	Link string `json:"s_link"`
}

// Search queries the AJAX search service. Episode hits are left out so only
// shows are returned.
func (c *CizgiMax) Search(ctx context.Context, query string) ([]media.CatalogItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	searchURL := fmt.Sprintf("%s%s?qr=%s", c.base, c.searchPath, url.QueryEscape(query))

	var resp searchResponse
	if err := c.client.GetJSON(ctx, searchURL, &resp); err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}

	return parseSearchResults(resp, c.base), nil
}

// Episodes returns the episodes of a show, oldest first.
func (c *CizgiMax) Episodes(ctx context.Context, itemURL string) ([]media.Episode, error) {
	doc, err := c.fetchDocument(ctx, itemURL)
	if err != nil {
		return nil, fmt.Errorf("getting episodes: %w", err)
	}
	return parseEpisodes(doc, itemURL), nil
}

// Listing returns the shows on one listing page.
func (c *CizgiMax) Listing(ctx context.Context, pageURL string) ([]media.CatalogItem, error) {
	doc, err := c.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("getting listing: %w", err)
	}
	return parseListing(doc, pageURL, c.itemSelector), nil
}

func (c *CizgiMax) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	html, err := c.client.Fetch(ctx, pageURL, c.base+"/")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// resolve makes a link absolute against the page it was found on.
func resolve(pageURL, href string) string {
	if href == "" {
		return ""
	}
	return httputil.Resolve(pageURL, href)
}
