package playlist

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"m3uforge/internal/httputil"
)

// Writer saves playlists, creating directories on demand.
type Writer struct {
	fs afero.Afero
}

// NewWriter creates a Writer on fs. Use afero.NewOsFs() for the real disk.
func NewWriter(fs afero.Fs) *Writer {
	return &Writer{fs: afero.Afero{Fs: fs}}
}

// WriteShow writes b to "<sanitized title>.m3u" inside dir and returns the
// path written.
func (w *Writer) WriteShow(dir, title string, b *Builder) (string, error) {
	path, err := httputil.PlaylistPath(dir, title)
	if err != nil {
		return "", err
	}
	return path, w.write(path, b)
}

// WriteFile writes b to path.
func (w *Writer) WriteFile(path string, b *Builder) error {
	return w.write(path, b)
}

// WriteText writes already rendered playlist text to path.
func (w *Writer) WriteText(path, text string) error {
	if err := w.mkdir(path); err != nil {
		return err
	}
	if err := w.fs.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("writing playlist %s: %w", path, err)
	}
	return nil
}

func (w *Writer) write(path string, b *Builder) error {
	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		return fmt.Errorf("rendering playlist: %w", err)
	}
	return w.WriteText(path, buf.String())
}

func (w *Writer) mkdir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := w.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}
