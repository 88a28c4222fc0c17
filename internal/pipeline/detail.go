package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"m3uforge/internal/extract"
	"m3uforge/internal/httputil"
	"m3uforge/internal/media"
	"m3uforge/internal/render"
)

// playerFrameSelector is tried before falling back to the first iframe.
const playerFrameSelector = "iframe.vpx"

// Detail resolves single-player detail pages that need a rendering browser.
// The player iframe is rendered as its own page, so the detail page never
// has to be navigated back to.
type Detail struct {
	renderer render.Renderer
	log      logrus.FieldLogger
}

// NewDetail creates a Detail resolver.
func NewDetail(r render.Renderer, log logrus.FieldLogger) *Detail {
	return &Detail{renderer: r, log: log}
}

// Resolve renders detailURL and its player frame and searches them for a
// manifest and a caption file. The returned descriptor has an empty URL when
// no manifest was found; only a failure to render the detail page is an error.
func (d *Detail) Resolve(ctx context.Context, detailURL string) (media.StreamDescriptor, error) {
	log := d.log.WithField("page", detailURL)
	stream := media.StreamDescriptor{Referer: detailURL}

	page, err := d.renderer.Render(ctx, detailURL)
	if err != nil {
		return stream, fmt.Errorf("rendering detail page: %w", err)
	}

	frame, err := PlayerFrame(page, detailURL)
	if err != nil {
		return stream, err
	}

	if frame != "" {
		log = log.WithField("embed", frame)
		embed, err := d.renderer.Render(ctx, frame)
		if err != nil {
			logFailure(log, err, "rendering player frame failed")
		} else {
			stream.Referer = frame
			if u, ok := extract.FindMedia(embed); ok {
				stream.URL = u
			}
			if u, ok := extract.FindCaption(embed); ok {
				stream.Subtitle = u
			}
		}
	} else {
		log.Debug("no iframe on detail page")
	}

	if !stream.Resolved() {
		if u, ok := extract.FindMedia(page); ok {
			log.Debug("manifest found in detail page source")
			stream.URL = u
		}
	}

	if stream.Resolved() {
		stream.Source = "iframe"
		log.WithFields(logrus.Fields{
			"url":      stream.URL,
			"subtitle": stream.Subtitle,
		}).Info("stream resolved")
	} else {
		log.Info("no manifest found")
	}
	return stream, nil
}

// PlayerFrame returns the absolute src of the player iframe: the first
// iframe.vpx, else the first iframe on the page. It returns "" when the page
// has no usable iframe.
func PlayerFrame(html, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing detail page: %w", err)
	}

	frame := doc.Find(playerFrameSelector).First()
	if frame.Length() == 0 {
		frame = doc.Find("iframe").First()
	}

	src := strings.TrimSpace(frame.AttrOr("src", ""))
	if src == "" {
		return "", nil
	}
	return httputil.Resolve(pageURL, src), nil
}
