package trend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/elonfeng/trendpulse/pkg/source"
)

// DefaultCategories are the topic categories requested from the headline provider.
var DefaultCategories = []string{
	"business", "entertainment", "general", "health", "science", "sports", "technology",
}

// HeadlineSource returns the current headlines of one topic category.
type HeadlineSource interface {
	TopHeadlines(ctx context.Context, category string) ([]source.Article, error)
}

// FeedSource fetches the entries of one syndicated feed.
type FeedSource interface {
	Read(ctx context.Context, feed source.Feed) ([]source.Record, error)
}

// BuilderConfig wires a Builder. A nil Headlines skips the primary source.
type BuilderConfig struct {
	Headlines  HeadlineSource
	Categories []string
	Feeds      FeedSource
	Roster     []source.Feed
	Rand       Rand
	Now        func() time.Time
	Logger     zerolog.Logger
}

// Builder assembles the full scored trend list from every configured source.
type Builder struct {
	headlines  HeadlineSource
	categories []string
	feeds      FeedSource
	roster     []source.Feed
	normalizer *Normalizer
	rand       Rand
	logger     zerolog.Logger
}

// NewBuilder creates a Builder from cfg.
func NewBuilder(cfg BuilderConfig) *Builder {
	r := cfg.Rand
	if r == nil {
		r = DefaultRand
	}
	categories := cfg.Categories
	if categories == nil {
		categories = DefaultCategories
	}
	return &Builder{
		headlines:  cfg.Headlines,
		categories: categories,
		feeds:      cfg.Feeds,
		roster:     cfg.Roster,
		normalizer: NewNormalizer(r, cfg.Now),
		rand:       r,
		logger:     cfg.Logger,
	}
}

// Build fetches every source concurrently, normalizes, deduplicates and
// scores the batch, and returns it newest first. A failing source
// contributes nothing; zero trends is a valid result.
func (b *Builder) Build(ctx context.Context) ([]Trend, error) {
	var (
		wg        sync.WaitGroup
		headlines = make([][]source.Article, len(b.categories))
		entries   = make([][]source.Record, len(b.roster))
	)

	if b.headlines == nil {
		if len(b.categories) > 0 {
			b.logger.Warn().Msg("headline source not configured, using feeds only")
		}
	} else {
		for i, category := range b.categories {
			wg.Add(1)
			go func(i int, category string) {
				defer wg.Done()
				defer b.recoverSource("category", category)

				articles, err := b.headlines.TopHeadlines(ctx, category)
				if err != nil {
					b.logger.Warn().Err(err).Str("category", category).Msg("headline fetch failed")
					return
				}
				headlines[i] = articles
			}(i, category)
		}
	}

	if b.feeds != nil {
		for i, feed := range b.roster {
			wg.Add(1)
			go func(i int, feed source.Feed) {
				defer wg.Done()
				defer b.recoverSource("feed", feed.Name)

				records, err := b.feeds.Read(ctx, feed)
				if err != nil {
					b.logger.Warn().Err(err).Str("feed", feed.Name).Str("url", feed.URL).Msg("feed fetch failed")
					return
				}
				entries[i] = records
			}(i, feed)
		}
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build trends: %w", err)
	}

	// Normalization runs after fan-in so the batch is assembled in a fixed
	// order regardless of which fetch finished first.
	var primary, fallback []Trend
	for i, articles := range headlines {
		for _, a := range articles {
			if t, ok := b.normalizer.Headline(source.ArticleRecord(a), b.categories[i]); ok {
				primary = append(primary, t)
			}
		}
	}
	for i, records := range entries {
		for _, rec := range records {
			if t, ok := b.normalizer.FeedEntry(rec, b.roster[i]); ok {
				fallback = append(fallback, t)
			}
		}
	}

	trends := Merge(primary, fallback)
	if len(trends) == 0 {
		b.logger.Info().Msg("no trends found from any source")
		return trends, nil
	}

	ScoreHotness(trends)
	AssignTypes(trends, b.rand)
	SortByRecency(trends)

	b.logger.Info().
		Int("primary", len(primary)).
		Int("fallback", len(fallback)).
		Int("trends", len(trends)).
		Msg("trends built")
	return trends, nil
}

func (b *Builder) recoverSource(kind, name string) {
	if r := recover(); r != nil {
		b.logger.Error().Str(kind, name).Interface("panic", r).Msg("source panicked")
	}
}
