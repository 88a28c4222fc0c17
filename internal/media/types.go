// Package media defines shared types for the m3uforge application.
package media

import "strings"

// EmbedReference is a third-party player page discovered on a content page.
type EmbedReference struct {
	PageURL  string // Page the embed was found on
	EmbedURL string // Absolute URL of the player page
	Marker   string // Raw attribute value used to pick an extractor
}

// StreamDescriptor is a resolved, directly playable stream.
type StreamDescriptor struct {
	Name     string // Display name
	URL      string // Absolute manifest or media file URL
	Referer  string // Page the stream must be requested from
	Subtitle string // Optional caption file URL
	Source   string // Extractor that produced it, e.g. "SibNet"
}

// Resolved reports whether the descriptor carries a media URL.
func (s StreamDescriptor) Resolved() bool {
	return strings.TrimSpace(s.URL) != ""
}

// WithPrefix returns a copy whose display name is prefixed with context,
// e.g. the episode name.
func (s StreamDescriptor) WithPrefix(prefix string) StreamDescriptor {
	if prefix == "" {
		return s
	}
	if s.Name == "" {
		s.Name = prefix
		return s
	}
	s.Name = prefix + " - " + s.Name
	return s
}

// CatalogItem is a show, series or channel found while crawling.
type CatalogItem struct {
	Title string
	URL   string // Detail page
	Logo  string // Poster, when the listing carries one
}

// Episode is a playable sub-item of a catalog item.
type Episode struct {
	Name string
	URL  string
}

// Movie is a single-page title from a home page listing.
type Movie struct {
	Title  string
	Year   string
	Genres string
	URL    string
	Poster string
}

// ChannelEntry pairs a raw #EXTINF line with the URL that followed it.
type ChannelEntry struct {
	Metadata string
	URL      string
}
