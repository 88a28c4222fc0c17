package cmd

import (
	"errors"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"m3uforge/internal/extract"
	"m3uforge/internal/media"
	"m3uforge/internal/pipeline"
	"m3uforge/internal/playlist"
	"m3uforge/internal/provider"
	"m3uforge/internal/ui"
)

var (
	flagSeriesChoice  int
	flagEpisodeChoice string
	flagSearchOutput  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for a show and write one episode's streams to a playlist",
	Example: `  m3uforge search "rafadan tayfa"
  m3uforge search pepee --series-choice 1 --episode-choice latest -o pepee.m3u`,
	Args: cobra.MinimumNArgs(1),
	RunE: searchRun,
}

func init() {
	searchCmd.Flags().IntVar(&flagSeriesChoice, "series-choice", 0, "1-based search result to use (default: picker, or 1)")
	searchCmd.Flags().StringVar(&flagEpisodeChoice, "episode-choice", "", "'latest' or a 1-based episode number (default: picker, or latest)")
	searchCmd.Flags().StringVarP(&flagSearchOutput, "output", "o", "playlist.m3u", "Playlist file to write")
}

func searchRun(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	ctx := cmd.Context()
	client := newClient(0)

	site := provider.NewCizgiMax(cfg.Site.Base, cfg.Site.SearchPath, cfg.Site.ItemSelector, client)

	logger.WithField("query", query).Info("searching")
	results, err := site.Search(ctx, query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		logger.WithField("query", query).Warn("no search results")
		return nil
	}

	titles := lo.Map(results, func(r media.CatalogItem, _ int) string { return r.Title })
	idx, err := chooseSeries(flagSeriesChoice, titles)
	if err != nil {
		return choiceFailed(err)
	}
	show := results[idx]
	logger.WithField("title", show.Title).Info("series selected")

	episodes, err := site.Episodes(ctx, show.URL)
	if err != nil {
		return err
	}
	if len(episodes) == 0 {
		logger.WithField("item", show.URL).Warn("no episodes found")
		return nil
	}

	names := lo.Map(episodes, func(e media.Episode, _ int) string { return e.Name })
	idx, err = chooseEpisode(flagEpisodeChoice, names)
	if err != nil {
		return choiceFailed(err)
	}
	episode := episodes[idx]
	logger.WithField("episode", episode.Name).Info("episode selected")

	p := pipeline.New(client, extract.Default(client), pipeline.Options{
		Selector:  cfg.Site.EmbedSelector,
		Attribute: cfg.Site.EmbedAttribute,
	}, logger)

	streams, err := p.Resolve(ctx, episode.URL)
	if err != nil {
		logger.WithError(err).WithField("kind", pipeline.Classify(err)).Warn("resolving episode failed")
	}

	b := playlist.NewBuilder()
	for _, s := range streams {
		b.Add(playlist.Item{StreamDescriptor: s.WithPrefix(episode.Name), Group: cfg.Site.Group})
	}

	if err := newWriter().WriteFile(flagSearchOutput, b); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"file":    flagSearchOutput,
		"streams": b.Len(),
	}).Info("playlist written")
	return nil
}

// choiceFailed ends the command without a playlist. A cancelled picker or an
// out-of-range choice is reported but is not a failure of the run.
func choiceFailed(err error) error {
	if errors.Is(err, ui.ErrCancelled) {
		logger.Info("selection cancelled")
		return nil
	}
	logger.Error(err)
	return nil
}

// chooseSeries resolves the series choice: the flag when set, else the
// picker on a terminal, else the first result.
func chooseSeries(choice int, titles []string) (int, error) {
	if choice != 0 {
		return pickSeries(choice, len(titles))
	}
	if ui.Interactive() {
		return ui.Select("Seri seç", titles)
	}
	return 0, nil
}

// chooseEpisode resolves the episode choice: the flag when set, else the
// picker on a terminal, else the latest episode.
func chooseEpisode(choice string, names []string) (int, error) {
	if choice != "" {
		return pickEpisode(choice, len(names))
	}
	if ui.Interactive() {
		return ui.Select("Bölüm seç", names)
	}
	return len(names) - 1, nil
}
