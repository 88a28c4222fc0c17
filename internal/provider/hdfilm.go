package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"m3uforge/internal/media"
	"m3uforge/internal/render"
)

// HDFilm lists the movies on the HDFilmizle home page. The page is built by
// scripts, so it is read through a rendering browser.
type HDFilm struct {
	home     string // e.g. "https://www.hdfilmizle.to/"
	renderer render.Renderer
}

// NewHDFilm creates an HDFilm provider.
func NewHDFilm(home string, r render.Renderer) *HDFilm {
	return &HDFilm{home: home, renderer: r}
}

// Movies returns up to limit movie cards from the home page. A limit of zero
// returns every card.
func (h *HDFilm) Movies(ctx context.Context, limit int) ([]media.Movie, error) {
	html, err := h.renderer.Render(ctx, h.home)
	if err != nil {
		return nil, fmt.Errorf("rendering home page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	movies := parseMovies(doc, h.home)
	if len(movies) == 0 {
		return nil, fmt.Errorf("no movie cards on %s", h.home)
	}
	if limit > 0 && len(movies) > limit {
		movies = movies[:limit]
	}
	return movies, nil
}
