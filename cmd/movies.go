package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"m3uforge/internal/media"
	"m3uforge/internal/pipeline"
	"m3uforge/internal/playlist"
	"m3uforge/internal/provider"
	"m3uforge/internal/render"
)

var (
	flagMoviesLimit  int
	flagMoviesOutput string
	flagNoBrowser    bool
)

var moviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "Scrape the newest movies from the home page into a playlist",
	Example: `  m3uforge movies
  m3uforge movies --limit 10 -o films.m3u`,
	Args: cobra.NoArgs,
	RunE: moviesRun,
}

func init() {
	moviesCmd.Flags().IntVar(&flagMoviesLimit, "limit", 0, "Number of movies to resolve (default from config)")
	moviesCmd.Flags().StringVarP(&flagMoviesOutput, "output", "o", "", "Playlist file to write (default from config)")
	moviesCmd.Flags().BoolVar(&flagNoBrowser, "no-browser", false, "Fetch pages over HTTP instead of rendering them")
}

func moviesRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	limit := cfg.Browser.Limit
	if flagMoviesLimit > 0 {
		limit = flagMoviesLimit
	}
	output := cfg.Browser.Output
	if flagMoviesOutput != "" {
		output = flagMoviesOutput
	}

	var r render.Renderer
	if flagNoBrowser {
		r = render.NewHTTP(newClient(0))
	} else {
		b := render.NewBrowser(render.BrowserOptions{
			Bin:       cfg.Browser.Bin,
			Headless:  cfg.Browser.Headless,
			Timeout:   cfg.Browser.Timeout.Duration,
			UserAgent: cfg.HTTP.UserAgent,
		}, logger)
		defer b.Close()
		r = b
	}

	movies, err := provider.NewHDFilm(cfg.Browser.Home, r).Movies(ctx, limit)
	if err != nil {
		return err
	}
	logger.WithField("movies", len(movies)).Info("movie cards found")

	detail := pipeline.NewDetail(r, logger)
	pl := playlist.NewBuilder()
	for _, m := range movies {
		log := logger.WithField("title", m.Title)
		stream, err := detail.Resolve(ctx, m.URL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Warn("resolving movie failed")
			continue
		}
		if !stream.Resolved() {
			log.Info("no manifest found")
			continue
		}
		pl.Add(movieItem(m, stream))
	}

	if err := newWriter().WriteFile(output, pl); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"file":    output,
		"streams": pl.Len(),
	}).Info("playlist written")
	return nil
}

// movieItem labels a resolved stream with its movie card.
func movieItem(m media.Movie, s media.StreamDescriptor) playlist.Item {
	s.Name = strings.TrimSpace(fmt.Sprintf("%s %s (%s)", m.Genres, m.Title, m.Year))
	return playlist.Item{
		StreamDescriptor: s,
		ID:               m.Title,
		Logo:             m.Poster,
		Group:            m.Genres,
	}
}
