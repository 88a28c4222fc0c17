package render

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"

	"m3uforge/internal/httputil"
)

// BrowserOptions configures the headless browser.
type BrowserOptions struct {
	Bin       string // Chromium binary; empty lets rod find or download one
	Headless  bool
	Timeout   time.Duration // Page load limit per Render
	UserAgent string
}

// Browser renders pages in headless Chromium. The browser is launched on the
// first Render and every Render uses a fresh tab that is closed afterwards.
type Browser struct {
	opts     BrowserOptions
	log      logrus.FieldLogger
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewBrowser creates a Browser. Nothing is started until the first Render.
func NewBrowser(opts BrowserOptions, log logrus.FieldLogger) *Browser {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = httputil.UserAgent
	}
	return &Browser{opts: opts, log: log}
}

func (b *Browser) start(ctx context.Context) error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New().
		Headless(b.opts.Headless).
		NoSandbox(true).
		Set("disable-dev-shm-usage")
	if b.opts.Bin != "" {
		l = l.Bin(b.opts.Bin)
	}

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	b.log.WithField("control_url", controlURL).Debug("browser started")
	b.launcher = l
	b.browser = browser
	return nil
}

// Render implements Renderer.
func (b *Browser) Render(ctx context.Context, url string) (string, error) {
	if err := httputil.ValidateURL(url); err != nil {
		return "", fmt.Errorf("%w: invalid URL: %v", httputil.ErrTransport, err)
	}
	if err := b.start(ctx); err != nil {
		return "", err
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("opening tab: %w", err)
	}
	defer page.Close()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.opts.UserAgent}); err != nil {
		return "", fmt.Errorf("setting user agent: %w", err)
	}

	p := page.Context(ctx).Timeout(b.opts.Timeout)
	if err := p.Navigate(url); err != nil {
		return "", fmt.Errorf("%w: loading %s: %v", httputil.ErrTransport, url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return "", fmt.Errorf("%w: waiting for %s: %v", httputil.ErrTransport, url, err)
	}

	html, err := p.HTML()
	if err != nil {
		return "", fmt.Errorf("reading page source: %w", err)
	}
	return html, nil
}

// Close shuts the browser down. It is safe to call when Render never ran.
func (b *Browser) Close() error {
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.launcher.Cleanup()
	b.browser = nil
	b.launcher = nil
	return err
}
