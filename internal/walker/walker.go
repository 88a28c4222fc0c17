// Package walker crawls a site's category listings page by page and resolves
// the streams of every show it finds.
package walker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"m3uforge/internal/config"
	"m3uforge/internal/media"
	"m3uforge/internal/provider"
)

// Resolver turns an episode page into streams. Implemented by
// pipeline.Pipeline.
type Resolver interface {
	Resolve(ctx context.Context, pageURL string) ([]media.StreamDescriptor, error)
}

// Sink receives each newly processed item with its streams. Items whose
// episodes all failed arrive with no streams.
type Sink func(category config.Category, item media.CatalogItem, streams []media.StreamDescriptor) error

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Pace bounds the request rate of a walk.
type Pace struct {
	Episode time.Duration // Between episode resolutions
	Page    time.Duration // Between listing pages
}

// Stats summarizes a walk.
type Stats struct {
	Pages    int
	Items    int
	Skipped  int // Items already processed in this walk
	Episodes int
	Streams  int
	Failures int // Guarded network or sink failures
}

// Walker drives a crawl over categories.
type Walker struct {
	catalog  provider.Catalog
	resolver Resolver
	pace     Pace
	sleep    Sleeper
	log      logrus.FieldLogger
}

// New creates a Walker that sleeps in real time.
func New(catalog provider.Catalog, resolver Resolver, pace Pace, log logrus.FieldLogger) *Walker {
	return &Walker{
		catalog:  catalog,
		resolver: resolver,
		pace:     pace,
		sleep:    sleepContext,
		log:      log,
	}
}

// WithSleeper replaces the pacing sleeper.
func (w *Walker) WithSleeper(s Sleeper) *Walker {
	w.sleep = s
	return w
}

// Walk crawls every category in order with a fresh Session.
func (w *Walker) Walk(ctx context.Context, categories []config.Category, sink Sink) (Stats, error) {
	return w.WalkSession(ctx, NewSession(), categories, sink)
}

// WalkSession crawls categories, skipping items already in session. Each
// category is read from page 1 until a page has no items or fails to load.
// Only cancellation of ctx stops the walk early.
func (w *Walker) WalkSession(ctx context.Context, session *Session, categories []config.Category, sink Sink) (Stats, error) {
	var stats Stats

	for _, cat := range categories {
		log := w.log.WithField("category", cat.Name)
		log.Info("crawling category")

		for page := 1; ; page++ {
			if page > 1 {
				if err := w.sleep(ctx, w.pace.Page); err != nil {
					return stats, err
				}
			}

			pageURL := cat.PageURL(page)
			plog := log.WithField("page", page)

			items, err := w.catalog.Listing(ctx, pageURL)
			if err != nil {
				if ctx.Err() != nil {
					return stats, ctx.Err()
				}
				stats.Failures++
				plog.WithError(err).Warn("listing page failed, ending category")
				break
			}
			if len(items) == 0 {
				plog.Info("empty listing page, ending category")
				break
			}
			stats.Pages++

			for _, item := range items {
				if !session.Add(item.URL) {
					stats.Skipped++
					plog.WithField("item", item.URL).Debug("already processed")
					continue
				}
				stats.Items++

				streams, err := w.item(ctx, item, &stats)
				if err != nil {
					return stats, err
				}
				stats.Streams += len(streams)

				if err := sink(cat, item, streams); err != nil {
					stats.Failures++
					plog.WithError(err).WithField("item", item.URL).Error("writing item failed")
				}
			}
		}
	}

	return stats, nil
}

// item resolves every episode of one catalog item. Failures are logged and
// leave the item with fewer streams; the returned error is only ctx's.
func (w *Walker) item(ctx context.Context, item media.CatalogItem, stats *Stats) ([]media.StreamDescriptor, error) {
	log := w.log.WithField("item", item.URL)
	log.WithField("title", item.Title).Info("processing item")

	episodes, err := w.catalog.Episodes(ctx, item.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		stats.Failures++
		log.WithError(err).Warn("listing episodes failed")
		return nil, nil
	}

	var streams []media.StreamDescriptor
	for i, ep := range episodes {
		if i > 0 {
			if err := w.sleep(ctx, w.pace.Episode); err != nil {
				return nil, err
			}
		}
		stats.Episodes++

		found, err := w.resolver.Resolve(ctx, ep.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			stats.Failures++
			log.WithError(err).WithField("episode", ep.URL).Warn("resolving episode failed")
			continue
		}
		for _, s := range found {
			streams = append(streams, s.WithPrefix(ep.Name))
		}
	}
	return streams, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
