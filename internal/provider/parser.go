package provider

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"m3uforge/internal/media"
)

// episodeMarker appears in the names of search hits that are single episodes.
const episodeMarker = ".Bölüm"

const notAvailable = "N/A"

// parseSearchResults keeps the show hits of an AJAX search response.
func parseSearchResults(resp searchResponse, base string) []media.CatalogItem {
	hits := lo.Filter(resp.Data.Result, func(r searchHit, _ int) bool {
		return r.Link != "" && !strings.Contains(r.Name, episodeMarker)
	})

	return lo.Map(hits, func(r searchHit, _ int) media.CatalogItem {
		return media.CatalogItem{
			Title: strings.TrimSpace(r.Name),
			URL:   resolve(base+"/", r.Link),
		}
	})
}

// parseEpisodes extracts the episode grid of a show page. The site lists
// newest first; the result is oldest first.
func parseEpisodes(doc *goquery.Document, pageURL string) []media.Episode {
	var episodes []media.Episode

	doc.Find("div.asisotope div.ajax_post").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a").First()
		name := s.Find("span.episode-names").First()
		if link.Length() == 0 || name.Length() == 0 {
			return
		}

		href, exists := link.Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}

		episodes = append(episodes, media.Episode{
			Name: strings.TrimSpace(name.Text()),
			URL:  resolve(pageURL, href),
		})
	})

	slices.Reverse(episodes)
	return episodes
}

// parseListing extracts the items of a category listing page.
func parseListing(doc *goquery.Document, pageURL, selector string) []media.CatalogItem {
	var items []media.CatalogItem

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}

		title := strings.TrimSpace(s.AttrOr("title", ""))
		if title == "" {
			title = strings.TrimSpace(s.Text())
		}
		if title == "" {
			return
		}

		items = append(items, media.CatalogItem{
			Title: title,
			URL:   resolve(pageURL, href),
			Logo:  resolve(pageURL, imageSource(s.Find("img").First())),
		})
	})

	return lo.UniqBy(items, func(it media.CatalogItem) string { return it.URL })
}

// parseMovies extracts the movie cards of the HDFilmizle home page.
func parseMovies(doc *goquery.Document, pageURL string) []media.Movie {
	var movies []media.Movie

	doc.Find("a.poster.col-6.col-sm-3").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}

		movies = append(movies, media.Movie{
			Title:  textOr(s.Find("h2.title"), notAvailable),
			Year:   textOr(s.Find(".poster-year"), notAvailable),
			Genres: textOr(s.Find(".poster-genres"), notAvailable),
			URL:    resolve(pageURL, href),
			Poster: resolve(pageURL, imageSource(s.Find("img").First())),
		})
	})

	return movies
}

// imageSource prefers the lazy-load data-src over src.
func imageSource(img *goquery.Selection) string {
	if src := strings.TrimSpace(img.AttrOr("data-src", "")); src != "" {
		return src
	}
	return strings.TrimSpace(img.AttrOr("src", ""))
}

func textOr(s *goquery.Selection, fallback string) string {
	if s.Length() == 0 {
		return fallback
	}
	if text := strings.TrimSpace(s.First().Text()); text != "" {
		return text
	}
	return fallback
}
