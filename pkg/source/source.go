package source

import (
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
)

// Kind identifies which upstream shape a Record carries.
type Kind string

const (
	KindArticle   Kind = "article"
	KindRSSItem   Kind = "rss"
	KindAtomEntry Kind = "atom"
)

// Article is a news-search API article as returned by NewsAPI.
type Article struct {
	Source      ArticleSource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

// ArticleSource is the publisher block of an Article.
type ArticleSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Record is one raw upstream item. Exactly one variant is set, matching Kind.
type Record struct {
	Kind      Kind
	Article   *Article
	RSSItem   *rss.Item
	AtomEntry *atom.Entry
}

// ArticleRecord wraps a search-API article.
func ArticleRecord(a Article) Record {
	return Record{Kind: KindArticle, Article: &a}
}

// RSSRecord wraps an RSS 2.0 item.
func RSSRecord(item *rss.Item) Record {
	return Record{Kind: KindRSSItem, RSSItem: item}
}

// AtomRecord wraps an Atom entry.
func AtomRecord(entry *atom.Entry) Record {
	return Record{Kind: KindAtomEntry, AtomEntry: entry}
}

// Fields is the raw content every record shape can yield.
type Fields struct {
	Title       string
	Description string
	Link        string
	Published   string
	Publisher   string
}

// Fields extracts the common raw fields from whichever variant is set.
// A record with no variant yields zero Fields.
func (r Record) Fields() Fields {
	switch r.Kind {
	case KindArticle:
		if r.Article == nil {
			return Fields{}
		}
		a := r.Article
		return Fields{
			Title:       a.Title,
			Description: a.Description,
			Link:        a.URL,
			Published:   a.PublishedAt,
			Publisher:   a.Source.Name,
		}
	case KindRSSItem:
		if r.RSSItem == nil {
			return Fields{}
		}
		it := r.RSSItem
		desc := it.Description
		if desc == "" {
			desc = it.Content
		}
		return Fields{
			Title:       it.Title,
			Description: desc,
			Link:        it.Link,
			Published:   it.PubDate,
		}
	case KindAtomEntry:
		if r.AtomEntry == nil {
			return Fields{}
		}
		e := r.AtomEntry
		desc := e.Summary
		if desc == "" && e.Content != nil {
			desc = e.Content.Value
		}
		published := e.Published
		if published == "" {
			published = e.Updated
		}
		return Fields{
			Title:       e.Title,
			Description: desc,
			Link:        atomLink(e.Links),
			Published:   published,
		}
	}
	return Fields{}
}

// atomLink picks the first alternate (or rel-less) link of an entry, else
// the first link of any kind.
func atomLink(links []*atom.Link) string {
	var first *atom.Link
	for _, l := range links {
		if l == nil {
			continue
		}
		if l.Rel == "" || l.Rel == "alternate" {
			return l.Href
		}
		if first == nil {
			first = l
		}
	}
	if first != nil {
		return first.Href
	}
	return ""
}

// Feed is one syndicated endpoint of the fallback roster.
type Feed struct {
	URL      string
	Name     string
	Category string
	Region   string
	Tags     []string
}
