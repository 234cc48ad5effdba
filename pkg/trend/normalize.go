package trend

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/elonfeng/trendpulse/pkg/source"
)

const (
	defaultDescription = "No description available."
	unknownPublisher   = "Unknown Source"
	removedTitle       = "[Removed]"
	regionGlobal       = "global"
	regionVietnam      = "vn"
)

var (
	cdataPattern   = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	tagPattern     = regexp.MustCompile(`<[^>]*>?`)
	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&quot;", `"`,
		"&#39;", "'",
		"&lt;", "<",
		"&gt;", ">",
	)
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer turns raw upstream records into Trends.
//
// Engagement counters are synthesized for sources that carry none. They are
// placeholders of plausible magnitude, not measurements.
type Normalizer struct {
	rand Rand
	now  func() time.Time
}

// NewNormalizer creates a Normalizer. Nil arguments select DefaultRand and time.Now.
func NewNormalizer(r Rand, now func() time.Time) *Normalizer {
	if r == nil {
		r = DefaultRand
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{rand: r, now: now}
}

// Headline normalizes a top-headlines article fetched for category.
func (n *Normalizer) Headline(rec source.Record, category string) (Trend, bool) {
	f, ok := validFields(rec)
	if !ok {
		return Trend{}, false
	}

	title := cleanText(f.Title)
	if title == "" {
		return Trend{}, false
	}
	label := capitalize(category)
	publisher := f.Publisher
	if publisher == "" {
		publisher = unknownPublisher
	}
	desc := cleanText(f.Description)
	if desc == "" {
		desc = defaultDescription
	}

	t := Trend{
		ID:            hashID(f.Link),
		TitleEN:       title,
		DescriptionEN: desc,
		Category:      label,
		Tags:          uniqueTags(category, stripSpaces(f.Publisher), regionGlobal),
		Source:        f.Link,
		Submitter:     publisher,
		Region:        regionGlobal,
		PublishedAt:   f.Published,
	}
	t.Date, t.SortKey = n.dates(f.Published, false)
	n.synthesizeEngagement(&t, 200, 700)
	return t, true
}

// FeedEntry normalizes one entry of a syndicated feed.
func (n *Normalizer) FeedEntry(rec source.Record, feed source.Feed) (Trend, bool) {
	f, ok := validFields(rec)
	if !ok {
		return Trend{}, false
	}

	title := cleanText(f.Title)
	if title == "" {
		return Trend{}, false
	}
	desc := cleanText(f.Description)
	if desc == "" {
		desc = defaultDescription
	}

	region := feed.Region
	if region == "" {
		region = regionGlobal
	}
	category := feed.Category
	if category == "" || category == CategoryGeneral {
		category = InferCategory(feed.Name)
	}

	tags := append(append([]string{}, feed.Tags...), stripSpaces(feed.Name), region, category)
	t := Trend{
		ID:          hashID(f.Link + "-" + title),
		Category:    category,
		Tags:        uniqueTags(tags...),
		Source:      f.Link,
		Submitter:   feed.Name,
		Region:      region,
		PublishedAt: f.Published,
	}
	if region == regionVietnam {
		t.TitleVI, t.DescriptionVI = title, desc
	} else {
		t.TitleEN, t.DescriptionEN = title, desc
	}
	t.Date, t.SortKey = n.dates(f.Published, true)
	n.synthesizeEngagement(&t, 1000, 3000)
	return t, true
}

// SearchResult normalizes an article returned by a keyword search. No
// engagement is synthesized for search results.
func (n *Normalizer) SearchResult(rec source.Record) (Trend, bool) {
	f, ok := validFields(rec)
	if !ok {
		return Trend{}, false
	}

	title := cleanText(f.Title)
	if title == "" {
		return Trend{}, false
	}
	publisher := f.Publisher
	if publisher == "" {
		publisher = unknownPublisher
	}
	desc := cleanText(f.Description)
	if desc == "" {
		desc = defaultDescription
	}

	t := Trend{
		ID:            hashID(f.Link),
		TitleEN:       title,
		DescriptionEN: desc,
		Category:      CategorySearch,
		Tags:          uniqueTags(stripSpaces(f.Publisher)),
		Source:        f.Link,
		Submitter:     publisher,
		PublishedAt:   f.Published,
	}
	t.Date, t.SortKey = n.dates(f.Published, false)
	return t, true
}

// validFields extracts the raw fields and rejects records without a usable
// title or link before anything is derived from them.
func validFields(rec source.Record) (source.Fields, bool) {
	f := rec.Fields()
	f.Title = strings.TrimSpace(f.Title)
	f.Link = strings.TrimSpace(f.Link)
	if f.Title == "" || f.Title == removedTitle || f.Link == "" {
		return source.Fields{}, false
	}
	return f, true
}

// dates returns the YYYY-MM-DD date and the epoch-millis sort key of a raw
// publish timestamp. An unparseable timestamp dates the record today with a
// zero sort key. With fallbackNow a missing timestamp counts as published now.
func (n *Normalizer) dates(raw string, fallbackNow bool) (string, int64) {
	if t, ok := parseTime(raw); ok {
		return t.UTC().Format(time.DateOnly), t.UnixMilli()
	}
	now := n.now()
	if fallbackNow && strings.TrimSpace(raw) == "" {
		return now.UTC().Format(time.DateOnly), now.UnixMilli()
	}
	return now.UTC().Format(time.DateOnly), 0
}

func (n *Normalizer) synthesizeEngagement(t *Trend, minVotes, maxVotes int) {
	votes := minVotes + n.rand.IntN(maxVotes-minVotes)
	t.Votes = votes
	t.Views = int(math.Floor(float64(votes) * uniform(n.rand, 15, 25)))
	t.Interactions = int(math.Floor(float64(votes) * uniform(n.rand, 4, 7)))
	t.Searches = int(math.Floor(float64(votes) * uniform(n.rand, 1.5, 2.5)))
}

func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cleanText unwraps CDATA, decodes the common HTML entities and strips markup.
func cleanText(s string) string {
	s = cdataPattern.ReplaceAllString(s, "$1")
	s = entityReplacer.Replace(s)
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func hashID(fingerprint string) string {
	sum := md5.Sum([]byte(fingerprint))
	return hex.EncodeToString(sum[:])
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// uniqueTags drops empty and repeated labels, keeping first occurrences.
func uniqueTags(tags ...string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
