// Package config handles TOML-based configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// ErrInvalid marks configuration errors. They are fatal and reported before
// any network activity.
var ErrInvalid = errors.New("invalid configuration")

// PagePlaceholder is replaced by the page number in category URL templates.
const PagePlaceholder = "{page}"

// Config holds all application configuration.
type Config struct {
	Site       Site       `toml:"site"`
	Categories []Category `toml:"categories"`
	Pace       Pace       `toml:"pace"`
	HTTP       HTTP       `toml:"http"`
	Browser    Browser    `toml:"browser"`
	Convert    Convert    `toml:"convert"`
	OutputDir  string     `toml:"output_dir"`
	LogLevel   string     `toml:"log_level"`
	Debug      bool       `toml:"debug"`
}

// Site describes the catalog site crawled by search and crawl.
type Site struct {
	Base           string `toml:"base"`
	SearchPath     string `toml:"search_path"`
	ItemSelector   string `toml:"item_selector"`
	EmbedSelector  string `toml:"embed_selector"`
	EmbedAttribute string `toml:"embed_attribute"`
	Group          string `toml:"group"`
}

// Category is a named, paginated listing.
type Category struct {
	Name string `toml:"name"`
	URL  string `toml:"url"` // Contains {page}
}

// PageURL expands the template for a 1-based page number.
func (c Category) PageURL(page int) string {
	return strings.ReplaceAll(c.URL, PagePlaceholder, strconv.Itoa(page))
}

// Pace holds the delays that bound the request rate of a crawl.
type Pace struct {
	Episode Duration `toml:"episode"`
	Page    Duration `toml:"page"`
}

// HTTP configures the fetch client.
type HTTP struct {
	Timeout        Duration `toml:"timeout"`
	Retries        int      `toml:"retries"`
	Backoff        Duration `toml:"backoff"`
	UserAgent      string   `toml:"user_agent"`
	TLSFingerprint bool     `toml:"tls_fingerprint"`
}

// Browser configures the headless browser used by the movies command.
type Browser struct {
	Bin      string   `toml:"bin"` // Empty downloads or finds Chromium
	Headless bool     `toml:"headless"`
	Timeout  Duration `toml:"timeout"`
	Home     string   `toml:"home"`
	Limit    int      `toml:"limit"`
	Output   string   `toml:"output"`
}

// Convert configures the grouped playlist rebuild.
type Convert struct {
	SourceURL        string   `toml:"source_url"`
	BaseURL          string   `toml:"base_url"`
	OutputFile       string   `toml:"output_file"`
	Suffix           string   `toml:"suffix"`
	RegionalKeywords []string `toml:"regional_keywords"`
	Timeout          Duration `toml:"timeout"`
}

// Duration is a time.Duration written as a string ("15s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Site: Site{
			Base:           "https://cizgimax.online",
			SearchPath:     "/ajaxservice/index.php",
			ItemSelector:   "div.list-serie a",
			EmbedSelector:  "ul.linkler li a",
			EmbedAttribute: "data-frame",
			Group:          "CizgiMax",
		},
		Categories: []Category{
			{Name: "Diziler", URL: "https://cizgimax.online/diziler/page/{page}"},
		},
		Pace: Pace{
			Episode: Duration{time.Second},
			Page:    Duration{3 * time.Second},
		},
		HTTP: HTTP{
			Timeout:        Duration{15 * time.Second},
			Retries:        2,
			Backoff:        Duration{2 * time.Second},
			TLSFingerprint: true,
		},
		Browser: Browser{
			Headless: true,
			Timeout:  Duration{30 * time.Second},
			Home:     "https://www.hdfilmizle.to/",
			Limit:    5,
			Output:   "hdfilmizle_playlist.m3u",
		},
		Convert: Convert{
			Suffix:           "index.m3u8",
			RegionalKeywords: []string{"turk", "türk", "tr "},
			Timeout:          Duration{30 * time.Second},
		},
		OutputDir: "playlists",
		LogLevel:  "info",
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "m3uforge"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "m3uforge"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the default config file and merges it with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return load(path, false)
}

// LoadFile reads an explicitly named config file, which must exist.
func LoadFile(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, mustExist bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: reading config: %v", ErrInvalid, err)
	}

	// Arrays in the file replace the defaults outright. Decoding into the
	// default slices would merge element by element.
	defaults := Default()
	cfg.Categories = nil
	cfg.Convert.RegionalKeywords = nil

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing config %s: %v", ErrInvalid, path, err)
	}
	if !md.IsDefined("categories") {
		cfg.Categories = defaults.Categories
	}
	if !md.IsDefined("convert", "regional_keywords") {
		cfg.Convert.RegionalKeywords = defaults.Convert.RegionalKeywords
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if err := validURL(c.Site.Base); err != nil {
		return invalid("site.base: %v", err)
	}
	if c.Site.EmbedSelector == "" || c.Site.EmbedAttribute == "" {
		return invalid("site.embed_selector and site.embed_attribute are required")
	}

	for i, cat := range c.Categories {
		if cat.Name == "" {
			return invalid("categories[%d]: name cannot be empty", i)
		}
		if !strings.Contains(cat.URL, PagePlaceholder) {
			return invalid("category %q: url must contain %s", cat.Name, PagePlaceholder)
		}
		if err := validURL(cat.PageURL(1)); err != nil {
			return invalid("category %q: %v", cat.Name, err)
		}
	}

	if c.Pace.Episode.Duration < 0 || c.Pace.Page.Duration < 0 {
		return invalid("pace delays cannot be negative")
	}

	if c.HTTP.Timeout.Duration <= 0 {
		return invalid("http.timeout must be positive")
	}
	if c.HTTP.Retries < 0 || c.HTTP.Retries > 10 {
		return invalid("http.retries must be between 0 and 10, got %d", c.HTTP.Retries)
	}
	if c.HTTP.Backoff.Duration < 0 {
		return invalid("http.backoff cannot be negative")
	}

	if c.Browser.Limit < 0 {
		return invalid("browser.limit cannot be negative")
	}

	if c.OutputDir == "" {
		return invalid("output_dir cannot be empty")
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level: %v", err)
	}

	return nil
}

// ValidateConvert checks the settings the convert command needs.
func (c *Config) ValidateConvert() error {
	if err := validURL(c.Convert.SourceURL); err != nil {
		return invalid("convert.source_url: %v", err)
	}
	if err := validURL(c.Convert.BaseURL); err != nil {
		return invalid("convert.base_url: %v", err)
	}
	if c.Convert.OutputFile == "" {
		return invalid("convert.output_file cannot be empty")
	}
	if c.Convert.Suffix == "" {
		return invalid("convert.suffix cannot be empty")
	}
	return nil
}

// Category returns the configured category with the given name.
func (c *Config) Category(name string) (Category, bool) {
	for _, cat := range c.Categories {
		if strings.EqualFold(cat.Name, name) {
			return cat, true
		}
	}
	return Category{}, false
}

// ExpandOutputDir resolves ~ in the output directory path.
func (c *Config) ExpandOutputDir() (string, error) {
	dir := c.OutputDir
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func validURL(raw string) error {
	if raw == "" {
		return errors.New("cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an absolute HTTP(S) URL", raw)
	}
	return nil
}
