// Package pipeline turns a content page into resolved streams: it finds the
// embedded players on the page and hands each one to the matching extractor.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"m3uforge/internal/extract"
	"m3uforge/internal/httputil"
	"m3uforge/internal/media"
)

// Options selects the embed links on a content page.
type Options struct {
	Selector  string // e.g. "ul.linkler li a"
	Attribute string // Attribute holding the embed URL, e.g. "data-frame"
}

// Pipeline resolves every embed on a content page.
type Pipeline struct {
	fetcher  extract.Fetcher
	registry *extract.Registry
	opts     Options
	log      logrus.FieldLogger
}

// New creates a Pipeline.
func New(f extract.Fetcher, registry *extract.Registry, opts Options, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{fetcher: f, registry: registry, opts: opts, log: log}
}

// Resolve fetches pageURL and resolves its embeds in discovery order.
// A page without resolvable embeds yields an empty slice and no error;
// only a failure to load the page itself is returned.
func (p *Pipeline) Resolve(ctx context.Context, pageURL string) ([]media.StreamDescriptor, error) {
	html, err := p.fetcher.Fetch(ctx, pageURL, "")
	if err != nil {
		return nil, fmt.Errorf("fetching content page: %w", err)
	}

	embeds, err := Embeds(html, pageURL, p.opts)
	if err != nil {
		return nil, err
	}
	if len(embeds) == 0 {
		p.log.WithField("page", pageURL).Info("no embeds on page")
		return nil, nil
	}

	return p.ResolveEmbeds(ctx, embeds), nil
}

// ResolveEmbeds dispatches each embed to its extractor. Unsupported embeds
// and extractor failures are logged and skipped.
func (p *Pipeline) ResolveEmbeds(ctx context.Context, embeds []media.EmbedReference) []media.StreamDescriptor {
	var streams []media.StreamDescriptor
	for _, embed := range embeds {
		log := p.log.WithField("embed", embed.EmbedURL)

		ext, ok := p.registry.Lookup(embed.EmbedURL)
		if !ok {
			log.Warn("unsupported embed, skipping")
			continue
		}

		stream, err := ext.Extract(ctx, embed)
		if err != nil {
			logFailure(log.WithField("extractor", ext.Name()), err, "extraction failed")
			continue
		}
		if !stream.Resolved() {
			log.WithField("extractor", ext.Name()).Info("extractor returned no media URL")
			continue
		}

		log.WithFields(logrus.Fields{
			"extractor": ext.Name(),
			"url":       stream.URL,
		}).Info("stream resolved")
		streams = append(streams, *stream)
	}
	return streams
}

// Embeds lists the embed references on a content page in document order.
// Relative embed URLs are resolved against pageURL.
func Embeds(html, pageURL string, opts Options) ([]media.EmbedReference, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing content page: %w", err)
	}

	var embeds []media.EmbedReference
	doc.Find(opts.Selector).Each(func(_ int, s *goquery.Selection) {
		marker := strings.TrimSpace(s.AttrOr(opts.Attribute, ""))
		if marker == "" {
			return
		}
		embeds = append(embeds, media.EmbedReference{
			PageURL:  pageURL,
			EmbedURL: httputil.Resolve(pageURL, marker),
			Marker:   marker,
		})
	})
	return embeds, nil
}

// Classify names the failure category of err for logging.
func Classify(err error) string {
	switch {
	case errors.Is(err, extract.ErrPatternNotFound):
		return "pattern_not_found"
	case errors.Is(err, extract.ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, extract.ErrMalformedCiphertext):
		return "malformed_ciphertext"
	case errors.Is(err, extract.ErrDecryptionFailed):
		return "decryption_failed"
	case errors.Is(err, httputil.ErrTransport):
		return "transport"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}

// logFailure logs a downgraded failure. Missing patterns are expected site
// drift and logged at info; everything else is a warning.
func logFailure(log logrus.FieldLogger, err error, msg string) {
	entry := log.WithError(err).WithField("kind", Classify(err))
	if errors.Is(err, extract.ErrPatternNotFound) {
		entry.Info(msg)
		return
	}
	entry.Warn(msg)
}
