package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	feedAccept       = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.7"

	// maxFeedBytes caps how much of a feed body is read.
	maxFeedBytes = 8 << 20
)

// ErrUnknownFeedType is returned for bodies that are neither RSS nor Atom.
var ErrUnknownFeedType = errors.New("unknown feed type")

// FeedReader fetches syndicated feeds and splits them into records.
type FeedReader struct {
	client  *http.Client
	timeout time.Duration
}

// NewFeedReader creates a reader that bounds every fetch by timeout.
func NewFeedReader(timeout time.Duration) *FeedReader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FeedReader{
		client:  &http.Client{},
		timeout: timeout,
	}
}

// Read fetches one feed and returns its entries.
func (r *FeedReader) Read(ctx context.Context, feed Feed) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", feedAccept)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", feed.Name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", feed.Name, err)
	}

	records, err := ParseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}
	return records, nil
}

// ParseFeed detects whether data is RSS or Atom and wraps each entry as a Record.
func ParseFeed(data []byte) ([]Record, error) {
	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeRSS:
		parser := &rss.Parser{}
		parsed, err := parser.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(parsed.Items))
		for _, item := range parsed.Items {
			if item != nil {
				records = append(records, RSSRecord(item))
			}
		}
		return records, nil

	case gofeed.FeedTypeAtom:
		parser := &atom.Parser{}
		parsed, err := parser.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(parsed.Entries))
		for _, entry := range parsed.Entries {
			if entry != nil {
				records = append(records, AtomRecord(entry))
			}
		}
		return records, nil
	}
	return nil, ErrUnknownFeedType
}
