package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"m3uforge/internal/config"
	"m3uforge/internal/extract"
	"m3uforge/internal/media"
	"m3uforge/internal/pipeline"
	"m3uforge/internal/playlist"
	"m3uforge/internal/provider"
	"m3uforge/internal/walker"
)

var flagCategories []string

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the configured categories and write one playlist per show",
	Example: `  m3uforge crawl
  m3uforge crawl --category Diziler --output-dir ~/playlists`,
	Args: cobra.NoArgs,
	RunE: crawlRun,
}

func init() {
	crawlCmd.Flags().StringSliceVar(&flagCategories, "category", nil, "Only crawl these configured categories (repeatable)")
}

func crawlRun(cmd *cobra.Command, args []string) error {
	categories, err := selectCategories(cfg, flagCategories)
	if err != nil {
		return err
	}

	dir, err := cfg.ExpandOutputDir()
	if err != nil {
		return err
	}

	client := newClient(0)
	site := provider.NewCizgiMax(cfg.Site.Base, cfg.Site.SearchPath, cfg.Site.ItemSelector, client)
	p := pipeline.New(client, extract.Default(client), pipeline.Options{
		Selector:  cfg.Site.EmbedSelector,
		Attribute: cfg.Site.EmbedAttribute,
	}, logger)

	w := walker.New(site, p, walker.Pace{
		Episode: cfg.Pace.Episode.Duration,
		Page:    cfg.Pace.Page.Duration,
	}, logger)

	writer := newWriter()
	written := 0
	sink := func(cat config.Category, item media.CatalogItem, streams []media.StreamDescriptor) error {
		if len(streams) == 0 {
			logger.WithField("item", item.URL).Info("no streams, playlist skipped")
			return nil
		}

		b := playlist.NewBuilder()
		b.AddStreams(streams, cat.Name, item.Logo)
		path, err := writer.WriteShow(dir, item.Title, b)
		if err != nil {
			return err
		}
		written++
		logger.WithFields(logrus.Fields{"file": path, "streams": b.Len()}).Info("playlist written")
		return nil
	}

	stats, err := w.Walk(cmd.Context(), categories, sink)
	logger.WithFields(logrus.Fields{
		"pages":     stats.Pages,
		"items":     stats.Items,
		"skipped":   stats.Skipped,
		"episodes":  stats.Episodes,
		"streams":   stats.Streams,
		"failures":  stats.Failures,
		"playlists": written,
	}).Info("crawl finished")
	return err
}

// selectCategories returns the configured categories named on the command
// line, or all of them.
func selectCategories(c *config.Config, names []string) ([]config.Category, error) {
	if len(names) == 0 {
		if len(c.Categories) == 0 {
			return nil, fmt.Errorf("%w: no categories configured", config.ErrInvalid)
		}
		return c.Categories, nil
	}

	out := make([]config.Category, 0, len(names))
	for _, name := range names {
		cat, ok := c.Category(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", config.ErrInvalid, name)
		}
		out = append(out, cat)
	}
	return out, nil
}
