package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"m3uforge/internal/media"
)

var (
	// bePlayer('<password>', '<json>');
	bePlayerRe = regexp.MustCompile(`bePlayer\('([^']*)',\s*'([^']*)'\);`)

	// "file":"<url>" inside the decrypted player config
	decryptedFileRe = regexp.MustCompile(`"file":"([^"]+)"`)
)

// CizgiDuo extracts streams from CizgiDuo/CizgiPass players, whose source
// list is AES encrypted with a password passed alongside it.
type CizgiDuo struct {
	fetcher Fetcher
}

// NewCizgiDuo creates a CizgiDuo extractor.
func NewCizgiDuo(f Fetcher) *CizgiDuo {
	return &CizgiDuo{fetcher: f}
}

func (c *CizgiDuo) Name() string { return "CizgiDuo" }

// Extract fetches the embed page and decrypts its source list.
func (c *CizgiDuo) Extract(ctx context.Context, embed media.EmbedReference) (*media.StreamDescriptor, error) {
	html, err := c.fetcher.Fetch(ctx, embed.EmbedURL, embed.PageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching embed page: %w", err)
	}
	return ParseCizgiDuo(html, embed.EmbedURL)
}

// playerPayload is the JSON argument of bePlayer.
type playerPayload struct {
	Sources []struct {
		File string `json:"file"`
	} `json:"sources"`
}

// ParseCizgiDuo recovers the stream URL from CizgiDuo embed page content.
func ParseCizgiDuo(content, embedURL string) (*media.StreamDescriptor, error) {
	var match []string
	found := search(content, func(text string) bool {
		match = bePlayerRe.FindStringSubmatch(text)
		return match != nil
	})
	if !found {
		return nil, fmt.Errorf("%w: bePlayer call", ErrPatternNotFound)
	}
	password, payload := match[1], match[2]

	var data playerPayload
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(data.Sources) == 0 || data.Sources[0].File == "" {
		return nil, fmt.Errorf("%w: no sources[0].file", ErrMalformedPayload)
	}

	decrypted, err := DecryptSalted(data.Sources[0].File, password)
	if err != nil {
		return nil, err
	}

	fm := decryptedFileRe.FindStringSubmatch(decrypted)
	if fm == nil {
		return nil, fmt.Errorf("%w: file field in decrypted sources", ErrPatternNotFound)
	}

	return &media.StreamDescriptor{
		Name:    "CizgiDuo",
		URL:     strings.ReplaceAll(fm[1], `\/`, "/"),
		Referer: embedURL,
		Source:  "CizgiDuo",
	}, nil
}
