package httputil

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid HTTPS", "https://example.com/path", false},
		{"valid HTTP", "http://example.com/path", false},
		{"javascript scheme rejected", "javascript:alert(1)", true},
		{"data scheme rejected", "data:text/html,<h1>Hi</h1>", true},
		{"FTP rejected", "ftp://example.com/file", true},
		{"empty string", "", true},
		{"no host", "https://", true},
		{"valid with port", "https://example.com:8080/path", false},
		{"valid with query", "https://example.com/path?q=test&a=b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNumericID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "12345", false},
		{"zero", "0", false},
		{"empty", "", true},
		{"letters", "abc", true},
		{"mixed", "123abc", true},
		{"negative", "-1", true},
		{"decimal", "1.5", true},
		{"arabic-indic digits", "١٢٣", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNumericID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNumericID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"https://cizgimax.online/dizi/x/", "/bolum-1", "https://cizgimax.online/bolum-1"},
		{"https://cizgimax.online/dizi/x/", "bolum-2", "https://cizgimax.online/dizi/x/bolum-2"},
		{"https://cizgimax.online/", "//video.sibnet.ru/shell.php?videoid=1", "https://video.sibnet.ru/shell.php?videoid=1"},
		{"https://cizgimax.online/", "https://cizgiduo.online/e/1", "https://cizgiduo.online/e/1"},
		{"https://cizgimax.online/", "   ", ""},
	}

	for _, tt := range tests {
		if got := Resolve(tt.base, tt.ref); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal title", "Kral Şakir", "Kral Şakir"},
		{"reserved characters", `What? If: "A/B" <C> | D\E*`, "What If AB C  DE"},
		{"null bytes", "Show\x00Name", "ShowName"},
		{"only reserved", `\/*?:"<>|`, "untitled"},
		{"just dots", "..", "untitled"},
		{"empty", "", "untitled"},
		{"surrounding space", "  Rafadan Tayfa  ", "Rafadan Tayfa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeTitle(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPlaylistPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"normal", "Pepee", "Pepee.m3u"},
		{"traversal attempt", "../../etc/passwd", "....etcpasswd.m3u"},
		{"separators", "a/b\\c", "abc.m3u"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := PlaylistPath(dir, tt.title)
			if err != nil {
				t.Fatalf("PlaylistPath(%q) error: %v", tt.title, err)
			}
			if filepath.Base(path) != tt.want {
				t.Errorf("PlaylistPath(%q) = %q, want base %q", tt.title, path, tt.want)
			}
			if !strings.HasPrefix(path, dir) {
				t.Errorf("PlaylistPath(%q) = %q escapes %q", tt.title, path, dir)
			}
		})
	}
}
