// Package playlist assembles and rewrites M3U playlists.
package playlist

import (
	"fmt"
	"io"
	"strings"

	"m3uforge/internal/media"
)

// Header is the first line of every playlist.
const Header = "#EXTM3U"

// Item is a stream with the metadata shown by players.
type Item struct {
	media.StreamDescriptor
	ID    string // tvg-id
	Logo  string // tvg-logo
	Group string // group-title
}

// Builder accumulates items in order and renders them as a playlist.
type Builder struct {
	items []Item
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends an item.
func (b *Builder) Add(item Item) {
	b.items = append(b.items, item)
}

// AddStreams appends streams that share a group and logo.
func (b *Builder) AddStreams(streams []media.StreamDescriptor, group, logo string) {
	for _, s := range streams {
		b.Add(Item{StreamDescriptor: s, Logo: logo, Group: group})
	}
}

// Len returns the number of items that will be written.
func (b *Builder) Len() int {
	n := 0
	for _, it := range b.items {
		if it.Resolved() {
			n++
		}
	}
	return n
}

// WriteTo writes the playlist to w. Items without a media URL are left out.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	sb.WriteString(Header + "\n")

	for _, it := range b.items {
		if !it.Resolved() {
			continue
		}
		fmt.Fprintf(&sb, "#EXTINF:-1 tvg-id=\"%s\" tvg-logo=\"%s\" group-title=\"%s\",%s\n",
			attr(it.ID), attr(it.Logo), attr(it.Group), oneLine(it.Name))
		if it.Referer != "" {
			sb.WriteString("#EXTVLCOPT:http-referrer=" + oneLine(it.Referer) + "\n")
		}
		if it.Subtitle != "" {
			sb.WriteString("#EXTM3U_SUBTITLE:" + oneLine(it.Subtitle) + "\n")
		}
		sb.WriteString(oneLine(strings.TrimSpace(it.URL)) + "\n")
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// String renders the playlist.
func (b *Builder) String() string {
	var sb strings.Builder
	b.WriteTo(&sb)
	return sb.String()
}

var (
	lineReplacer = strings.NewReplacer("\r", " ", "\n", " ")
	attrReplacer = strings.NewReplacer("\r", " ", "\n", " ", `"`, "'")
)

// oneLine keeps a value on a single playlist line.
func oneLine(s string) string {
	return lineReplacer.Replace(s)
}

// attr keeps a value inside a quoted EXTINF attribute.
func attr(s string) string {
	return attrReplacer.Replace(s)
}
