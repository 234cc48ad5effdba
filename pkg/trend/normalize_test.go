package trend

import (
	"crypto/md5"
	"encoding/hex"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"

	"github.com/elonfeng/trendpulse/pkg/source"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testNormalizer() *Normalizer {
	return NewNormalizer(rand.New(rand.NewPCG(1, 2)), func() time.Time { return fixedNow })
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestFeedEntryVietnameseRSS(t *testing.T) {
	n := testNormalizer()
	rec := source.RSSRecord(&rss.Item{
		Title:       "A<b>B</b>",
		Description: "<p>desc</p>",
		Link:        "https://x.com/1",
		PubDate:     "2024-01-01",
	})

	got, ok := n.FeedEntry(rec, source.Feed{Name: "Test Source", Category: CategoryGeneral, Region: "vn"})

	assert.Equal(t, true, ok)
	assert.Equal(t, md5Hex("https://x.com/1-AB"), got.ID)
	assert.Equal(t, "AB", got.TitleVI)
	assert.Equal(t, "desc", got.DescriptionVI)
	assert.Equal(t, "", got.TitleEN)
	assert.Equal(t, "vn", got.Region)
	assert.Equal(t, "News", got.Category)
	assert.Equal(t, "2024-01-01", got.Date)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), got.SortKey)
	assert.Equal(t, []string{"TestSource", "vn", "News"}, got.Tags)
	assert.Equal(t, "Test Source", got.Submitter)
	assert.Equal(t, "https://x.com/1", got.Source)
}

func TestFeedEntryAtomEnglish(t *testing.T) {
	n := testNormalizer()
	rec := source.AtomRecord(&atom.Entry{
		Title:   "Rivian &amp; VW deal",
		Summary: "<![CDATA[Joint <em>venture</em>]]>",
		Links:   []*atom.Link{{Href: "https://a.example/self", Rel: "self"}, {Href: "https://a.example/post", Rel: "alternate"}},
		Updated: "2024-02-02T08:00:00Z",
	})

	got, ok := n.FeedEntry(rec, source.Feed{Name: "Car and Driver", Category: "Cars", Region: "us", Tags: []string{"Cars"}})

	assert.Equal(t, true, ok)
	assert.Equal(t, "Rivian & VW deal", got.TitleEN)
	assert.Equal(t, "Joint venture", got.DescriptionEN)
	assert.Equal(t, "", got.TitleVI)
	assert.Equal(t, "https://a.example/post", got.Source)
	assert.Equal(t, "Cars", got.Category)
	assert.Equal(t, []string{"Cars", "CarandDriver", "us"}, got.Tags)
	assert.Equal(t, md5Hex("https://a.example/post-Rivian & VW deal"), got.ID)
}

func TestFeedEntryMissingDateUsesNow(t *testing.T) {
	n := testNormalizer()
	rec := source.RSSRecord(&rss.Item{Title: "No date", Link: "https://x.com/nodate"})

	got, ok := n.FeedEntry(rec, source.Feed{Name: "BBC News", Category: "News", Region: "uk"})

	assert.Equal(t, true, ok)
	assert.Equal(t, "2024-03-10", got.Date)
	assert.Equal(t, fixedNow.UnixMilli(), got.SortKey)
	assert.Equal(t, defaultDescription, got.DescriptionEN)
}

func TestFeedEntryGarbledDateSortsLast(t *testing.T) {
	n := testNormalizer()
	rec := source.RSSRecord(&rss.Item{Title: "Bad date", Link: "https://x.com/bad", PubDate: "not a date"})

	got, ok := n.FeedEntry(rec, source.Feed{Name: "BBC News", Category: "News", Region: "uk"})

	assert.Equal(t, true, ok)
	assert.Equal(t, "2024-03-10", got.Date)
	assert.Equal(t, int64(0), got.SortKey)
}

func TestFeedEntryEngagementBands(t *testing.T) {
	n := testNormalizer()
	feed := source.Feed{Name: "TechCrunch", Category: "Technology", Region: "us"}

	for i := 0; i < 50; i++ {
		rec := source.RSSRecord(&rss.Item{Title: "Item", Link: "https://x.com/" + string(rune('a'+i%26))})
		got, ok := n.FeedEntry(rec, feed)
		assert.Equal(t, true, ok)

		assert.Equal(t, true, got.Votes >= 1000 && got.Votes < 3000)
		assert.Equal(t, true, got.Views >= got.Votes*15 && got.Views < got.Votes*25)
		assert.Equal(t, true, got.Interactions >= got.Votes*4 && got.Interactions < got.Votes*7)
		assert.Equal(t, true, got.Searches >= got.Votes*3/2 && got.Searches <= got.Votes*5/2)
		assert.Equal(t, true, got.Views > got.Interactions && got.Interactions > got.Searches)
	}
}

func TestHeadline(t *testing.T) {
	n := testNormalizer()
	rec := source.ArticleRecord(source.Article{
		Source:      source.ArticleSource{Name: "BBC News"},
		Title:       "Chip stocks surge",
		URL:         "https://bbc.example/chips",
		PublishedAt: "2024-03-09T10:00:00Z",
	})

	got, ok := n.Headline(rec, "technology")

	assert.Equal(t, true, ok)
	assert.Equal(t, md5Hex("https://bbc.example/chips"), got.ID)
	assert.Equal(t, "Technology", got.Category)
	assert.Equal(t, "global", got.Region)
	assert.Equal(t, []string{"technology", "BBCNews", "global"}, got.Tags)
	assert.Equal(t, defaultDescription, got.DescriptionEN)
	assert.Equal(t, "BBC News", got.Submitter)
	assert.Equal(t, "2024-03-09", got.Date)
	assert.Equal(t, true, got.Votes >= 200 && got.Votes < 700)
}

func TestHeadlineUnparseableDate(t *testing.T) {
	n := testNormalizer()
	rec := source.ArticleRecord(source.Article{Title: "T", URL: "https://u.example", PublishedAt: "yesterday"})

	got, ok := n.Headline(rec, "general")

	assert.Equal(t, true, ok)
	assert.Equal(t, int64(0), got.SortKey)
	assert.Equal(t, "2024-03-10", got.Date)
	assert.Equal(t, "Unknown Source", got.Submitter)
}

func TestSearchResultHasNoEngagement(t *testing.T) {
	n := testNormalizer()
	rec := source.ArticleRecord(source.Article{
		Source: source.ArticleSource{Name: "The Verge"},
		Title:  "EV sales",
		URL:    "https://verge.example/ev",
	})

	got, ok := n.SearchResult(rec)

	assert.Equal(t, true, ok)
	assert.Equal(t, "Search", got.Category)
	assert.Equal(t, []string{"TheVerge"}, got.Tags)
	assert.Equal(t, 0, got.Votes)
	assert.Equal(t, 0, got.Views)
}

func TestInvalidRecordsAreDropped(t *testing.T) {
	n := testNormalizer()
	feed := source.Feed{Name: "Feed", Region: "us"}

	tests := []struct {
		name string
		rec  source.Record
	}{
		{"article without url", source.ArticleRecord(source.Article{Title: "T"})},
		{"article without title", source.ArticleRecord(source.Article{URL: "https://x"})},
		{"removed article", source.ArticleRecord(source.Article{Title: "[Removed]", URL: "https://x"})},
		{"rss without link", source.RSSRecord(&rss.Item{Title: "T"})},
		{"rss without title", source.RSSRecord(&rss.Item{Link: "https://x"})},
		{"rss markup-only title", source.RSSRecord(&rss.Item{Title: "<img src=x>", Link: "https://x"})},
		{"atom without alternate link", source.AtomRecord(&atom.Entry{Title: "T", Links: []*atom.Link{{Href: "https://x", Rel: "self"}}})},
		{"empty record", source.Record{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := n.FeedEntry(tt.rec, feed)
			assert.Equal(t, false, ok)
			_, ok = n.Headline(tt.rec, "general")
			assert.Equal(t, false, ok)
			_, ok = n.SearchResult(tt.rec)
			assert.Equal(t, false, ok)
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Tom & Jerry", cleanText("Tom &amp; Jerry"))
	assert.Equal(t, `say "hi" it's`, cleanText("say &quot;hi&quot; it&#39;s"))
	assert.Equal(t, "bold", cleanText("&lt;b&gt;bold&lt;/b&gt;"))
	assert.Equal(t, "inside", cleanText("<![CDATA[ inside ]]>"))
	assert.Equal(t, "", cleanText("   "))
}

func TestUniqueTags(t *testing.T) {
	assert.Equal(t, []string{"AI", "us"}, uniqueTags("AI", "", "us", "AI"))
}
