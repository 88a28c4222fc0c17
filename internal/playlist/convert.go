package playlist

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"

	"m3uforge/internal/httputil"
	"m3uforge/internal/media"
)

// DefaultGroup labels entries without a group-title.
const DefaultGroup = "OTHER"

// groupTitleRe reads a group-title value. A quoted value ends at its closing
// quote; a bare one ends at a comma, semicolon or end of line.
var groupTitleRe = regexp.MustCompile(`(?i)group-title=(?:"([^"]*)"|'([^']*)'|["']?([^,;"']*))`)

// ConvertOptions configures a grouped rebuild.
type ConvertOptions struct {
	BaseURL          string   // Rewritten URLs start with this
	Suffix           string   // Trailing file name, e.g. "index.m3u8"
	RegionalKeywords []string // Groups containing any of these come first
}

// Group is a category label with its entries in source order.
type Group struct {
	Label   string
	Entries []media.ChannelEntry
}

// ConvertStats summarizes a rebuild.
type ConvertStats struct {
	Channels int // Metadata/URL pairs parsed
	Groups   int
	Kept     int
	Dropped  int // Entries without a numeric stream ID
}

// Parse pairs each URL line with the #EXTINF line right before it. An #EXTINF
// followed by another #EXTINF is dropped; other comment lines are ignored.
func Parse(text string) []media.ChannelEntry {
	var (
		entries []media.ChannelEntry
		pending string
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "#EXTINF:"):
			pending = line
		case strings.HasPrefix(line, "#"):
		case pending != "":
			entries = append(entries, media.ChannelEntry{Metadata: pending, URL: line})
			pending = ""
		}
	}
	return entries
}

// GroupLabel returns the group-title of an #EXTINF line, or DefaultGroup.
func GroupLabel(extinf string) string {
	m := groupTitleRe.FindStringSubmatch(extinf)
	if m == nil {
		return DefaultGroup
	}
	label, _ := lo.Find(m[1:], func(v string) bool { return strings.TrimSpace(v) != "" })
	if label == "" {
		return DefaultGroup
	}
	return strings.TrimSpace(label)
}

// GroupEntries groups entries by label, keeping first-seen group order and
// source order within each group.
func GroupEntries(entries []media.ChannelEntry) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, e := range entries {
		label := GroupLabel(e.Metadata)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// Order puts regional groups first. Both partitions are sorted by label.
func Order(groups []Group, keywords []string) []Group {
	keywords = lo.Uniq(lo.Compact(lo.Map(keywords, func(k string, _ int) string {
		return strings.ToLower(k)
	})))

	regional := func(g Group, _ int) bool { return IsRegional(g.Label, keywords) }
	first, rest := lo.Filter(groups, regional), lo.Reject(groups, regional)
	sort.SliceStable(first, func(i, j int) bool { return first[i].Label < first[j].Label })
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Label < rest[j].Label })

	return append(first, rest...)
}

// IsRegional reports whether label contains any keyword, ignoring case.
// The label is padded with spaces so a keyword such as "tr " also matches
// a trailing word. This is a heuristic and can match unrelated names.
func IsRegional(label string, keywords []string) bool {
	padded := " " + strings.ToLower(label) + " "
	return lo.SomeBy(keywords, func(k string) bool {
		return k != "" && strings.Contains(padded, strings.ToLower(k))
	})
}

// StreamID returns the last path segment of url once a trailing suffix
// segment and any trailing slash are removed. The suffix only counts as a
// whole segment, so ".../456index.m3u8" keeps "456index.m3u8" and fails.
// ok is false when the segment is not numeric.
func StreamID(url, suffix string) (id string, ok bool) {
	clean := strings.TrimRight(url, "/")
	if suffix != "" {
		clean = strings.TrimSuffix(clean, "/"+suffix)
	}
	clean = strings.TrimRight(clean, "/")

	if i := strings.LastIndex(clean, "/"); i >= 0 {
		id = clean[i+1:]
	} else {
		id = clean
	}
	return id, httputil.ValidateNumericID(id) == nil
}

// Convert rebuilds a playlist grouped by category with every URL rewritten
// to {base}/{id}/{suffix}. Entries without a numeric ID are dropped.
func Convert(text string, opts ConvertOptions) (string, ConvertStats) {
	entries := Parse(text)
	groups := Order(GroupEntries(entries), opts.RegionalKeywords)

	stats := ConvertStats{Channels: len(entries), Groups: len(groups)}
	base := strings.TrimRight(opts.BaseURL, "/")
	lines := []string{Header}

	for _, g := range groups {
		for _, e := range g.Entries {
			id, ok := StreamID(e.URL, opts.Suffix)
			if !ok {
				stats.Dropped++
				continue
			}
			stats.Kept++
			lines = append(lines, e.Metadata, base+"/"+id+"/"+opts.Suffix)
		}
	}

	return strings.Join(lines, "\n") + "\n", stats
}
