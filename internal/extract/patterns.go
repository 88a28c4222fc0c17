package extract

import "regexp"

// Quoted absolute URLs ending in a manifest or caption extension. Each
// pattern has two alternatives; the leftmost occurrence in the text wins.
var (
	mediaRe   = regexp.MustCompile(`["'](https?://[^"']*\.m3u8|https?://[^"']*\.mpd)["']`)
	captionRe = regexp.MustCompile(`["'](https?://[^"']*\.vtt|https?://[^"']*\.srt)["']`)
)

// FindMedia returns the first segmented (.m3u8) or dynamic (.mpd) manifest
// URL quoted in content, including unpacked scripts.
func FindMedia(content string) (string, bool) {
	return findFirst(content, mediaRe)
}

// FindCaption returns the first .vtt or .srt URL quoted in content.
func FindCaption(content string) (string, bool) {
	return findFirst(content, captionRe)
}

func findFirst(content string, re *regexp.Regexp) (string, bool) {
	var found string
	ok := search(content, func(text string) bool {
		if m := re.FindStringSubmatch(text); m != nil {
			found = m[1]
			return true
		}
		return false
	})
	return found, ok
}
