package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/mmcdole/gofeed/atom"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Source</title>
    <item>
      <title>A&lt;b&gt;B&lt;/b&gt;</title>
      <description><![CDATA[<p>desc</p>]]></description>
      <link>https://x.com/1</link>
      <pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Second</title>
      <link>https://x.com/2</link>
    </item>
  </channel>
</rss>`

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Source</title>
  <entry>
    <title>Atom headline</title>
    <link rel="self" href="https://a.example/self"/>
    <link rel="alternate" href="https://a.example/post"/>
    <summary>Short summary</summary>
    <updated>2024-02-02T08:00:00Z</updated>
  </entry>
</feed>`

func TestParseFeedRSS(t *testing.T) {
	records, err := ParseFeed([]byte(rssFixture))

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(records))
	assert.Equal(t, KindRSSItem, records[0].Kind)

	f := records[0].Fields()
	assert.Equal(t, "A<b>B</b>", f.Title)
	assert.Equal(t, "<p>desc</p>", f.Description)
	assert.Equal(t, "https://x.com/1", f.Link)
	assert.Equal(t, "Mon, 01 Jan 2024 00:00:00 +0000", f.Published)
}

func TestParseFeedAtom(t *testing.T) {
	records, err := ParseFeed([]byte(atomFixture))

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, KindAtomEntry, records[0].Kind)

	f := records[0].Fields()
	assert.Equal(t, "Atom headline", f.Title)
	assert.Equal(t, "Short summary", f.Description)
	assert.Equal(t, "https://a.example/post", f.Link)
	assert.Equal(t, "2024-02-02T08:00:00Z", f.Published)
}

func TestParseFeedUnknown(t *testing.T) {
	_, err := ParseFeed([]byte(`{"items":[]}`))
	assert.Equal(t, true, errors.Is(err, ErrUnknownFeedType))
}

func TestFeedReaderRead(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	reader := NewFeedReader(time.Second)
	records, err := reader.Read(context.Background(), Feed{URL: srv.URL, Name: "Test Source"})

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(records))
	assert.Equal(t, browserUserAgent, gotUA)
}

func TestFeedReaderTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	reader := NewFeedReader(50 * time.Millisecond)
	_, err := reader.Read(context.Background(), Feed{URL: srv.URL, Name: "Slow"})

	assert.NotEqual(t, nil, err)
}

func TestFeedReaderBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	reader := NewFeedReader(time.Second)
	_, err := reader.Read(context.Background(), Feed{URL: srv.URL, Name: "Blocked"})

	assert.NotEqual(t, nil, err)
}

func TestAtomFieldsLink(t *testing.T) {
	tests := []struct {
		name  string
		links []*atom.Link
		want  string
	}{
		{
			name:  "alternate preferred",
			links: []*atom.Link{{Href: "https://a.example/self", Rel: "self"}, {Href: "https://a.example/post", Rel: "alternate"}},
			want:  "https://a.example/post",
		},
		{
			name:  "no rel",
			links: []*atom.Link{nil, {Href: "https://a.example/plain"}},
			want:  "https://a.example/plain",
		},
		{
			name:  "only self",
			links: []*atom.Link{{Href: "https://a.example/self", Rel: "self"}, {Href: "https://a.example/edit", Rel: "edit"}},
			want:  "https://a.example/self",
		},
		{
			name: "none",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AtomRecord(&atom.Entry{Title: "T", Links: tt.links}).Fields().Link
			assert.Equal(t, tt.want, got)
		})
	}
}
