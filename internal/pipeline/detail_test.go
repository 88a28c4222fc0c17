package pipeline

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

const filmPage = "https://www.hdfilmizle.to/fantastik-dortlu/"

func TestDetailPrefersVPXFrame(t *testing.T) {
	site := newSitePages(map[string]string{
		filmPage: `<html><body>
<iframe src="https://ads.example/banner"></iframe>
<iframe class="vpx" src="/vr/abc"></iframe>
</body></html>`,
		"https://www.hdfilmizle.to/vr/abc": `<script>
var player = new Playerjs({file:"https://cdn.vidrame.example/hls/abc/master.m3u8",
subtitle:"https://cdn.vidrame.example/subs/abc_tr.vtt"});
</script>`,
	})
	log, _ := test.NewNullLogger()

	got, err := NewDetail(site, log).Resolve(context.Background(), filmPage)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.URL != "https://cdn.vidrame.example/hls/abc/master.m3u8" {
		t.Errorf("URL = %q", got.URL)
	}
	if got.Subtitle != "https://cdn.vidrame.example/subs/abc_tr.vtt" {
		t.Errorf("Subtitle = %q", got.Subtitle)
	}
	if got.Referer != "https://www.hdfilmizle.to/vr/abc" {
		t.Errorf("Referer = %q", got.Referer)
	}
	if site.hits["https://ads.example/banner"] != 0 {
		t.Error("non-player iframe was rendered")
	}
}

func TestDetailFallsBackToFirstFrame(t *testing.T) {
	site := newSitePages(map[string]string{
		filmPage: `<iframe src="https://vidrame.example/vr/1"></iframe><iframe src="https://vidrame.example/vr/2"></iframe>`,
		"https://vidrame.example/vr/1": `sources: [{"file": "https://cdn.example/dash/1.mpd"}]`,
		"https://vidrame.example/vr/2": `"https://cdn.example/2.m3u8"`,
	})
	log, _ := test.NewNullLogger()

	got, err := NewDetail(site, log).Resolve(context.Background(), filmPage)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.URL != "https://cdn.example/dash/1.mpd" {
		t.Errorf("URL = %q, want first iframe's manifest", got.URL)
	}
	if got.Subtitle != "" {
		t.Errorf("Subtitle = %q, want none", got.Subtitle)
	}
}

func TestDetailFallsBackToPageSource(t *testing.T) {
	site := newSitePages(map[string]string{
		filmPage: `<iframe class="vpx" src="https://vidrame.example/vr/9"></iframe>
<script>var backup = "https://cdn.example/backup/index.m3u8";</script>`,
		"https://vidrame.example/vr/9": `<script>var sub = 'https://cdn.example/9.srt';</script>`,
	})
	log, _ := test.NewNullLogger()

	got, err := NewDetail(site, log).Resolve(context.Background(), filmPage)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.URL != "https://cdn.example/backup/index.m3u8" {
		t.Errorf("URL = %q, want manifest from detail page", got.URL)
	}
	if got.Subtitle != "https://cdn.example/9.srt" {
		t.Errorf("Subtitle = %q, want caption from the frame", got.Subtitle)
	}
}

func TestDetailFrameFailureIsNotFatal(t *testing.T) {
	site := newSitePages(map[string]string{
		filmPage: `<iframe class="vpx" src="https://vidrame.example/vr/down"></iframe>
<video src="x"></video><script>load('https://cdn.example/direct.m3u8')</script>`,
	})
	log, hook := test.NewNullLogger()

	got, err := NewDetail(site, log).Resolve(context.Background(), filmPage)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.URL != "https://cdn.example/direct.m3u8" {
		t.Errorf("URL = %q", got.URL)
	}
	if got.Referer != filmPage {
		t.Errorf("Referer = %q, want the detail page", got.Referer)
	}

	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Message == "rendering player frame failed" && e.Data["kind"] == "transport" {
			logged = true
		}
	}
	if !logged {
		t.Error("frame failure was not logged")
	}
}

func TestDetailWithoutMedia(t *testing.T) {
	site := newSitePages(map[string]string{
		filmPage: `<html><body><p>Fragman yakında</p></body></html>`,
	})
	log, _ := test.NewNullLogger()

	got, err := NewDetail(site, log).Resolve(context.Background(), filmPage)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Resolved() {
		t.Errorf("Resolve() = %+v, want no media", got)
	}
}

func TestDetailRenderFailure(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := NewDetail(newSitePages(nil), log).Resolve(context.Background(), filmPage)
	if err == nil {
		t.Error("Resolve() expected error when the detail page cannot be rendered")
	}
}

func TestPlayerFrame(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"vpx wins", `<iframe src="/a"></iframe><iframe class="vpx big" src="/b"></iframe>`, "https://site.example/b"},
		{"first iframe", `<iframe src="https://p.example/1"></iframe><iframe src="/2"></iframe>`, "https://p.example/1"},
		{"no iframe", `<div></div>`, ""},
		{"empty src", `<iframe></iframe>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlayerFrame(tt.html, "https://site.example/film/")
			if err != nil {
				t.Fatalf("PlayerFrame() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PlayerFrame() = %q, want %q", got, tt.want)
			}
		})
	}
}
