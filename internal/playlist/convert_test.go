package playlist

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"m3uforge/internal/media"
)

var defaultKeywords = []string{"turk", "türk", "tr "}

func labels(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Label
	}
	return out
}

func TestGroupLabel(t *testing.T) {
	Convey("GroupLabel", t, func() {
		Convey("Should read a quoted value", func() {
			So(GroupLabel(`#EXTINF:-1 tvg-id="1" group-title="Spor HD",Kanal 1`), ShouldEqual, "Spor HD")
		})
		Convey("Should read a bare value", func() {
			So(GroupLabel(`#EXTINF:-1 group-title=Ulusal,Kanal 2`), ShouldEqual, "Ulusal")
		})
		Convey("Should stop at a semicolon", func() {
			So(GroupLabel(`#EXTINF:-1 group-title='Haber';x`), ShouldEqual, "Haber")
		})
		Convey("Should ignore case of the attribute name", func() {
			So(GroupLabel(`#EXTINF:-1 GROUP-TITLE="Belgesel",Kanal`), ShouldEqual, "Belgesel")
		})
		Convey("Should stop a quoted value at its closing quote", func() {
			So(GroupLabel(`#EXTINF:-1 group-title="Spor" tvg-logo="x.png",Kanal 5`), ShouldEqual, "Spor")
			So(GroupLabel(`#EXTINF:-1 group-title='Ulusal TR' tvg-id="7",Kanal 6`), ShouldEqual, "Ulusal TR")
		})
		Convey("Should default to OTHER", func() {
			So(GroupLabel(`#EXTINF:-1 tvg-id="3",Kanal 3`), ShouldEqual, "OTHER")
			So(GroupLabel(`#EXTINF:-1 group-title="",Kanal 4`), ShouldEqual, "OTHER")
		})
	})
}

func TestStreamID(t *testing.T) {
	Convey("StreamID", t, func() {
		Convey("Should keep numeric IDs", func() {
			id, ok := StreamID("https://host/123/index.m3u8", "index.m3u8")
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, "123")

			id, ok = StreamID("http://panel.example:8080/live/user/pass/714", "index.m3u8")
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, "714")

			id, ok = StreamID("https://host/55/", "index.m3u8")
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, "55")
		})
		Convey("Should reject non-numeric IDs", func() {
			_, ok := StreamID("https://host/abc/index.m3u8", "index.m3u8")
			So(ok, ShouldBeFalse)

			_, ok = StreamID("https://host/123/index.m3u8?token=x", "index.m3u8")
			So(ok, ShouldBeFalse)
		})
		Convey("Should strip the suffix only as a whole segment", func() {
			id, ok := StreamID("http://panel.example/live/u/p/456index.m3u8", "index.m3u8")
			So(ok, ShouldBeFalse)
			So(id, ShouldEqual, "456index.m3u8")

			out, stats := Convert("#EXTM3U\n#EXTINF:-1,Kanal\nhttp://panel.example/live/u/p/456index.m3u8\n",
				ConvertOptions{BaseURL: "http://new", Suffix: "index.m3u8"})
			So(out, ShouldEqual, "#EXTM3U\n")
			So(stats.Kept, ShouldEqual, 0)
			So(stats.Dropped, ShouldEqual, 1)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("Should pair URLs with the preceding EXTINF", func() {
			entries := Parse("#EXTM3U\n#EXTINF:-1,A\nhttp://h/1\n\n#EXTINF:-1,B\r\nhttp://h/2\r\n")
			So(entries, ShouldResemble, []media.ChannelEntry{
				{Metadata: "#EXTINF:-1,A", URL: "http://h/1"},
				{Metadata: "#EXTINF:-1,B", URL: "http://h/2"},
			})
		})
		Convey("Should drop an EXTINF without a URL", func() {
			entries := Parse("#EXTINF:-1 group-title=\"Lost\",Orphan\n#EXTINF:-1,Real\nhttp://h/3\n")
			So(len(entries), ShouldEqual, 1)
			So(entries[0].Metadata, ShouldEqual, "#EXTINF:-1,Real")
		})
		Convey("Should skip other comment lines", func() {
			entries := Parse("#EXTINF:-1,A\n#EXTVLCOPT:http-user-agent=x\nhttp://h/4\n")
			So(len(entries), ShouldEqual, 1)
			So(entries[0].URL, ShouldEqual, "http://h/4")
		})
		Convey("Should ignore URLs without metadata", func() {
			entries := Parse("http://h/5\n#EXTINF:-1,A\nhttp://h/6\nhttp://h/7\n")
			So(len(entries), ShouldEqual, 1)
			So(entries[0].URL, ShouldEqual, "http://h/6")
		})
	})
}

func TestOrder(t *testing.T) {
	Convey("Order", t, func() {
		groups := []Group{{Label: "Spor"}, {Label: "Türkçe"}, {Label: "Ulusal TR"}, {Label: "Belgesel"}}

		Convey("Should put regional groups first, each partition sorted", func() {
			So(labels(Order(groups, defaultKeywords)), ShouldResemble,
				[]string{"Türkçe", "Ulusal TR", "Belgesel", "Spor"})
		})
		Convey("Should only sort when no keyword matches", func() {
			So(labels(Order(groups, []string{"yerli"})), ShouldResemble,
				[]string{"Belgesel", "Spor", "Türkçe", "Ulusal TR"})
		})
		Convey("Should match keywords ignoring case", func() {
			So(IsRegional("TURKISH MOVIES", defaultKeywords), ShouldBeTrue)
			So(IsRegional("TR Haber", defaultKeywords), ShouldBeTrue)
			So(IsRegional("Sports", defaultKeywords), ShouldBeFalse)
			So(IsRegional("Strateji", defaultKeywords), ShouldBeFalse)
		})
	})
}

const sourcePlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="trt1" group-title="Ulusal TR",TRT 1
http://panel.example:8080/live/u/p/101
#EXTINF:-1 group-title="Spor",beIN Sports 1
http://panel.example:8080/live/u/p/201/index.m3u8
#EXTINF:-1 group-title="Spor",Broken
http://panel.example:8080/live/u/p/abc/index.m3u8
#EXTINF:-1 group-title="Türkçe Film",Yesilcam
http://panel.example:8080/movie/u/p/301/
#EXTINF:-1 group-title="Haber",Orphan with no URL
#EXTINF:-1 tvg-id="x",No group
http://panel.example:8080/live/u/p/401
#EXTINF:-1 group-title="Spor",Spor Smart
http://panel.example:8080/live/u/p/202
`

func TestConvert(t *testing.T) {
	Convey("Convert", t, func() {
		out, stats := Convert(sourcePlaylist, ConvertOptions{
			BaseURL:          "https://relay.example/live/",
			Suffix:           "index.m3u8",
			RegionalKeywords: defaultKeywords,
		})

		Convey("Should emit regional groups first and keep source order within groups", func() {
			So(out, ShouldEqual, strings.Join([]string{
				"#EXTM3U",
				`#EXTINF:-1 group-title="Türkçe Film",Yesilcam`,
				"https://relay.example/live/301/index.m3u8",
				`#EXTINF:-1 tvg-id="trt1" group-title="Ulusal TR",TRT 1`,
				"https://relay.example/live/101/index.m3u8",
				`#EXTINF:-1 tvg-id="x",No group`,
				"https://relay.example/live/401/index.m3u8",
				`#EXTINF:-1 group-title="Spor",beIN Sports 1`,
				"https://relay.example/live/201/index.m3u8",
				`#EXTINF:-1 group-title="Spor",Spor Smart`,
				"https://relay.example/live/202/index.m3u8",
				"",
			}, "\n"))
		})

		Convey("Should drop non-numeric entries entirely", func() {
			So(out, ShouldNotContainSubstring, "Broken")
			So(out, ShouldNotContainSubstring, "abc")
		})

		Convey("Should drop the orphan metadata line", func() {
			So(out, ShouldNotContainSubstring, "Orphan")
			So(out, ShouldNotContainSubstring, "Haber")
		})

		Convey("Should report stats", func() {
			So(stats, ShouldResemble, ConvertStats{Channels: 6, Groups: 4, Kept: 5, Dropped: 1})
		})
	})
}
