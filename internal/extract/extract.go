// Package extract resolves embed URLs into playable stream URLs
// by fetching the player page and recovering the media URL from it.
package extract

import (
	"context"
	"errors"
	"strings"

	"m3uforge/internal/media"
)

var (
	// ErrPatternNotFound means the expected player call or field is absent.
	ErrPatternNotFound = errors.New("pattern not found")
	// ErrMalformedPayload means the player payload JSON has an unexpected shape.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrMalformedCiphertext means the encrypted blob cannot hold salt and data.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
	// ErrDecryptionFailed means the blob did not decrypt to UTF-8 text.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Fetcher returns the text of a page. Implemented by httputil.Client.
type Fetcher interface {
	Fetch(ctx context.Context, url, referer string) (string, error)
}

// Extractor resolves an embed reference into a playable stream.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, embed media.EmbedReference) (*media.StreamDescriptor, error)
}

// Route maps URL substrings to the extractor that handles them.
type Route struct {
	Match     []string
	Extractor Extractor
}

// Registry dispatches embeds to extractors. Routes are tried in order.
type Registry struct {
	routes []Route
}

// NewRegistry creates a registry from ordered routes.
func NewRegistry(routes ...Route) *Registry {
	return &Registry{routes: routes}
}

// Default returns the registry of every supported hosting mechanism.
func Default(f Fetcher) *Registry {
	return NewRegistry(
		Route{Match: []string{"cizgiduo", "cizgipass"}, Extractor: NewCizgiDuo(f)},
		Route{Match: []string{"sibnet"}, Extractor: NewSibNet(f)},
	)
}

// Lookup returns the first extractor whose substrings occur in embedURL.
func (r *Registry) Lookup(embedURL string) (Extractor, bool) {
	for _, route := range r.routes {
		for _, m := range route.Match {
			if strings.Contains(embedURL, m) {
				return route.Extractor, true
			}
		}
	}
	return nil, false
}

// Names lists registered extractor names in dispatch order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.routes))
	for _, route := range r.routes {
		names = append(names, route.Extractor.Name())
	}
	return names
}
