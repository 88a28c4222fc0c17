package extract

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"m3uforge/internal/media"
)

const sibnetHost = "https://video.sibnet.ru"

// player.src([{src: "<path>"
var sibnetSrcRe = regexp.MustCompile(`player\.src\(\[\{src: "([^"]+)"`)

// SibNet extracts direct video paths from SibNet players.
type SibNet struct {
	fetcher Fetcher
}

// NewSibNet creates a SibNet extractor.
func NewSibNet(f Fetcher) *SibNet {
	return &SibNet{fetcher: f}
}

func (s *SibNet) Name() string { return "SibNet" }

// Extract fetches the embed page and reads the player source path.
func (s *SibNet) Extract(ctx context.Context, embed media.EmbedReference) (*media.StreamDescriptor, error) {
	html, err := s.fetcher.Fetch(ctx, embed.EmbedURL, embed.PageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching embed page: %w", err)
	}
	return ParseSibNet(html, embed.EmbedURL)
}

// ParseSibNet finds the player.src path and resolves it against the SibNet host.
func ParseSibNet(content, embedURL string) (*media.StreamDescriptor, error) {
	var path string
	search(content, func(text string) bool {
		if m := sibnetSrcRe.FindStringSubmatch(text); m != nil {
			path = m[1]
			return true
		}
		return false
	})
	if path == "" {
		return nil, fmt.Errorf("%w: player.src call", ErrPatternNotFound)
	}

	base, _ := url.Parse(sibnetHost)
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("%w: bad video path %q", ErrPatternNotFound, path)
	}

	return &media.StreamDescriptor{
		Name:    "SibNet",
		URL:     base.ResolveReference(ref).String(),
		Referer: embedURL,
		Source:  "SibNet",
	}, nil
}
