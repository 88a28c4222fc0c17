// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"m3uforge/internal/config"
	"m3uforge/internal/httputil"
	"m3uforge/internal/playlist"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagConfig        string
	flagOutputDir     string
	flagLogLevel      string
	flagDebug         bool
	flagNoFingerprint bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// logger is configured by loadConfig before any command runs.
var logger = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "m3uforge",
	Short: "Resolve streaming pages into M3U playlists",
	Long: `m3uforge finds the embedded players on streaming sites, recovers the
playable stream behind each one and writes the results as M3U playlists.
It can also rebuild an IPTV playlist grouped by category.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, config.ErrInvalid) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default: $XDG_CONFIG_HOME/m3uforge/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "", "Directory for per-show playlists")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug | info | warn | error")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagNoFingerprint, "no-fingerprint", false, "Use the standard TLS stack instead of the Chrome fingerprint")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(moviesCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagNoFingerprint {
		cfg.HTTP.TLSFingerprint = false
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	setupLogger()
	return nil
}

func setupLogger() {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.TimeOnly,
	})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if cfg.Debug {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
}

// newClient builds the fetch client from the [http] section. A positive
// timeout overrides the configured one.
func newClient(timeout time.Duration) *httputil.Client {
	opts := httputil.Options{
		Timeout:     cfg.HTTP.Timeout.Duration,
		Retries:     cfg.HTTP.Retries,
		Backoff:     cfg.HTTP.Backoff.Duration,
		UserAgent:   cfg.HTTP.UserAgent,
		Fingerprint: cfg.HTTP.TLSFingerprint,
	}
	if timeout > 0 {
		opts.Timeout = timeout
	}
	return httputil.NewClient(opts)
}

func newWriter() *playlist.Writer {
	return playlist.NewWriter(afero.NewOsFs())
}
