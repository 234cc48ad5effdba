package trend

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/elonfeng/trendpulse/pkg/source"
)

// Query modes.
const (
	ModeHistorical = "historical"
	ModePredictive = "predictive"
)

// DefaultTimeframe applies when a query names none.
const DefaultTimeframe = "7d"

const (
	submitterTrends = "Google Trends"
	submitterNews   = "NewsAPI"

	newsLookbackDays  = 28
	newsPageSize      = 100
	predictiveDays    = 90
	interestScale     = 1000
	maxTopArticles    = 5
	maxRelatedQueries = 5
)

// ErrEmptyTerm is returned when a query has no search term.
var ErrEmptyTerm = errors.New("search term is required")

var whitespacePattern = regexp.MustCompile(`\s`)

// Timeframe is a lookback window in whole hours or whole days. Hours > 0
// selects hourly resolution.
type Timeframe struct {
	Days  int
	Hours int
}

var timeframes = map[string]Timeframe{
	"1h":  {Hours: 1},
	"6h":  {Hours: 6},
	"24h": {Hours: 24},
	"3d":  {Days: 3},
	"7d":  {Days: 7},
	"1m":  {Days: 30},
	"3m":  {Days: 90},
	"12m": {Days: 365},
}

// ResolveTimeframe maps a timeframe key to its window. Predictive mode
// always looks back 90 days; unknown keys fall back to 7 days.
func ResolveTimeframe(key, mode string) Timeframe {
	if mode == ModePredictive {
		return Timeframe{Days: predictiveDays}
	}
	if tf, ok := timeframes[key]; ok {
		return tf
	}
	return timeframes[DefaultTimeframe]
}

// Start returns the beginning of the window ending at now.
func (tf Timeframe) Start(now time.Time) time.Time {
	if tf.Hours > 0 {
		return now.Add(-time.Duration(tf.Hours) * time.Hour)
	}
	return now.AddDate(0, 0, -tf.Days)
}

// InterestSource provides search-interest data for a keyword.
type InterestSource interface {
	InterestOverTime(ctx context.Context, keyword string, start time.Time) ([]source.InterestPoint, error)
	RelatedQueries(ctx context.Context, keyword string, start time.Time) ([][]source.RelatedQuery, error)
}

// SearchSource runs keyword news searches.
type SearchSource interface {
	Everything(ctx context.Context, q source.EverythingQuery) ([]source.Article, error)
}

// QueryRequest is a single free-text trend lookup.
type QueryRequest struct {
	Term      string
	Timeframe string
	Mode      string
}

// QuerierConfig wires a Querier. Nil sources are skipped.
type QuerierConfig struct {
	Interest   InterestSource
	Search     SearchSource
	Aggregator Aggregator
	Forecaster Forecaster
	Now        func() time.Time
	Logger     zerolog.Logger
}

// Querier builds the aggregated result for one search term.
type Querier struct {
	interest   InterestSource
	search     SearchSource
	normalizer *Normalizer
	aggregator Aggregator
	forecaster Forecaster
	now        func() time.Time
	logger     zerolog.Logger
}

// NewQuerier creates a Querier. Zero Aggregator and Forecaster values get
// the default random smoothing and jitter.
func NewQuerier(cfg QuerierConfig) *Querier {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	agg := cfg.Aggregator
	if agg.Multiplier == nil {
		agg.Multiplier = NewAggregator(nil).Multiplier
	}
	if agg.Now == nil {
		agg.Now = now
	}
	fc := cfg.Forecaster
	if fc.Window == 0 && fc.Steps == 0 && fc.Jitter == nil {
		fc = NewForecaster(nil)
	}
	return &Querier{
		interest:   cfg.Interest,
		search:     cfg.Search,
		normalizer: NewNormalizer(nil, now),
		aggregator: agg,
		forecaster: fc,
		now:        now,
		logger:     cfg.Logger,
	}
}

// Query fetches interest, news and related queries for req.Term
// concurrently. It returns nil when no source produced anything.
func (q *Querier) Query(ctx context.Context, req QueryRequest) (*AggregatedQuery, error) {
	term := strings.TrimSpace(req.Term)
	if term == "" {
		return nil, ErrEmptyTerm
	}
	tfKey := req.Timeframe
	if tfKey == "" {
		tfKey = DefaultTimeframe
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeHistorical
	}

	now := q.now()
	tf := ResolveTimeframe(tfKey, mode)
	start := tf.Start(now)

	var (
		wg       sync.WaitGroup
		interest []source.InterestPoint
		articles []source.Article
		related  [][]source.RelatedQuery
	)

	if q.interest != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			points, err := q.interest.InterestOverTime(ctx, term, start)
			if err != nil {
				q.logger.Warn().Err(err).Str("term", term).Msg("interest over time failed")
				return
			}
			interest = points
		}()
		go func() {
			defer wg.Done()
			lists, err := q.interest.RelatedQueries(ctx, term, start)
			if err != nil {
				q.logger.Warn().Err(err).Str("term", term).Msg("related queries failed")
				return
			}
			related = lists
		}()
	}
	if q.search != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := q.search.Everything(ctx, source.EverythingQuery{
				Query:    term,
				From:     now.AddDate(0, 0, -newsLookbackDays),
				SortBy:   "relevancy",
				PageSize: newsPageSize,
				Language: LangEN,
			})
			if err != nil {
				q.logger.Warn().Err(err).Str("term", term).Msg("news search failed")
				return
			}
			articles = found
		}()
	}
	wg.Wait()

	submitter := submitterTrends
	timeline := scaleInterest(interest)

	var results []Trend
	for _, a := range articles {
		if t, ok := q.normalizer.SearchResult(source.ArticleRecord(a)); ok {
			results = append(results, t)
		}
	}
	top := newestArticles(results, maxTopArticles)

	if timeline == nil && len(results) > 0 {
		submitter = submitterNews
		times := make([]time.Time, 0, len(results))
		for _, t := range results {
			if ts, ok := parseTime(t.PublishedAt); ok {
				times = append(times, ts)
			}
		}
		timeline = q.aggregator.Aggregate(times, tf.Days, tf.Hours)
	}

	relatedQueries := selectRelated(related, maxRelatedQueries)

	if timeline == nil && len(top) == 0 && len(relatedQueries) == 0 {
		return nil, nil
	}

	if mode == ModePredictive && len(timeline) > 0 {
		timeline = append(timeline, q.forecaster.Forecast(timeline)...)
	}
	total, peak := engagement(timeline)

	if timeline == nil {
		timeline = []TimelinePoint{}
	}
	if relatedQueries == nil {
		relatedQueries = []source.RelatedQuery{}
	}

	return &AggregatedQuery{
		ID:              "aggregated-" + whitespacePattern.ReplaceAllString(term, "-") + "-" + tfKey + "-" + mode,
		TitleEN:         term,
		IsAggregated:    true,
		Submitter:       submitter,
		TimelineData:    timeline,
		TopArticles:     top,
		RelatedQueries:  relatedQueries,
		TotalEngagement: total,
		PeakEngagement:  peak,
	}, nil
}

// scaleInterest converts interest samples into timeline points. It returns
// nil when there are no samples.
func scaleInterest(points []source.InterestPoint) []TimelinePoint {
	if len(points) == 0 {
		return nil
	}
	timeline := make([]TimelinePoint, 0, len(points))
	for _, p := range points {
		v := 0
		if len(p.Value) > 0 {
			v = p.Value[0] * interestScale
		}
		timeline = append(timeline, TimelinePoint{Time: p.Time, Value: []int{v}})
	}
	return timeline
}

// newestArticles returns at most limit trends, most recently published first.
func newestArticles(trends []Trend, limit int) []Trend {
	sorted := make([]Trend, len(trends))
	copy(sorted, trends)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, _ := parseTime(sorted[i].PublishedAt)
		tj, _ := parseTime(sorted[j].PublishedAt)
		return ti.After(tj)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// selectRelated picks the first ranked list whose every entry has a
// positive value, truncated to limit.
func selectRelated(lists [][]source.RelatedQuery, limit int) []source.RelatedQuery {
	for _, list := range lists {
		if len(list) == 0 {
			continue
		}
		positive := true
		for _, rq := range list {
			if rq.Value <= 0 {
				positive = false
				break
			}
		}
		if !positive {
			continue
		}
		if len(list) > limit {
			list = list[:limit]
		}
		return list
	}
	return nil
}

// engagement sums and maximizes the historical (non-prediction) points.
func engagement(timeline []TimelinePoint) (total, peak int) {
	for _, p := range timeline {
		if p.IsPrediction {
			continue
		}
		v := p.magnitude()
		total += v
		peak = max(peak, v)
	}
	return total, peak
}
