package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"m3uforge/internal/playlist"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Rebuild an IPTV playlist grouped by category",
	Long: `convert downloads convert.source_url, groups its channels by group-title
with regional groups first, rewrites every stream URL to
{base_url}/{id}/{suffix} and writes the result to convert.output_file.`,
	Args: cobra.NoArgs,
	RunE: convertRun,
}

func convertRun(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateConvert(); err != nil {
		return err
	}

	client := newClient(cfg.Convert.Timeout.Duration)
	logger.WithField("url", cfg.Convert.SourceURL).Info("downloading source playlist")
	text, err := client.Fetch(cmd.Context(), cfg.Convert.SourceURL, "")
	if err != nil {
		return err
	}

	out, stats := playlist.Convert(text, playlist.ConvertOptions{
		BaseURL:          cfg.Convert.BaseURL,
		Suffix:           cfg.Convert.Suffix,
		RegionalKeywords: cfg.Convert.RegionalKeywords,
	})

	if err := newWriter().WriteText(cfg.Convert.OutputFile, out); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"file":     cfg.Convert.OutputFile,
		"channels": stats.Channels,
		"groups":   stats.Groups,
		"kept":     stats.Kept,
		"dropped":  stats.Dropped,
	}).Info("playlist converted")
	return nil
}
