package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const googleTrendsBaseURL = "https://trends.google.com/trends/api"

const (
	widgetTimeseries     = "TIMESERIES"
	widgetRelatedQueries = "RELATED_QUERIES"
)

// GoogleTrends reads interest-over-time and related queries from the
// Google Trends explore API.
type GoogleTrends struct {
	client   *http.Client
	baseURL  string
	hl       string
	tzOffset int
	now      func() time.Time
}

// NewGoogleTrends creates a Google Trends client. An empty baseURL uses the public endpoint.
func NewGoogleTrends(baseURL, hl string) *GoogleTrends {
	if baseURL == "" {
		baseURL = googleTrendsBaseURL
	}
	if hl == "" {
		hl = "en-US"
	}
	return &GoogleTrends{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		hl:      hl,
		now:     time.Now,
	}
}

// InterestPoint is one sample of the interest-over-time series.
type InterestPoint struct {
	Time  int64
	Value []int
}

// RelatedQuery is one ranked related search.
type RelatedQuery struct {
	Query          string `json:"query"`
	Value          int    `json:"value"`
	FormattedValue string `json:"formattedValue,omitempty"`
	Link           string `json:"link,omitempty"`
}

type trendsWidget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

// InterestOverTime returns the interest series for keyword from start until now.
func (g *GoogleTrends) InterestOverTime(ctx context.Context, keyword string, start time.Time) ([]InterestPoint, error) {
	w, err := g.widget(ctx, keyword, start, widgetTimeseries)
	if err != nil {
		return nil, err
	}

	var out struct {
		Default struct {
			TimelineData []struct {
				Time  string `json:"time"`
				Value []int  `json:"value"`
			} `json:"timelineData"`
		} `json:"default"`
	}
	if err := g.widgetData(ctx, "/widgetdata/multiline", w, &out); err != nil {
		return nil, err
	}

	points := make([]InterestPoint, 0, len(out.Default.TimelineData))
	for _, p := range out.Default.TimelineData {
		ts, err := strconv.ParseInt(p.Time, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse interest time %q: %w", p.Time, err)
		}
		points = append(points, InterestPoint{Time: ts, Value: p.Value})
	}
	return points, nil
}

// RelatedQueries returns every ranked list of related queries (top, rising, ...)
// for keyword from start until now.
func (g *GoogleTrends) RelatedQueries(ctx context.Context, keyword string, start time.Time) ([][]RelatedQuery, error) {
	w, err := g.widget(ctx, keyword, start, widgetRelatedQueries)
	if err != nil {
		return nil, err
	}

	var out struct {
		Default struct {
			RankedList []struct {
				RankedKeyword []RelatedQuery `json:"rankedKeyword"`
			} `json:"rankedList"`
		} `json:"default"`
	}
	if err := g.widgetData(ctx, "/widgetdata/relatedsearches", w, &out); err != nil {
		return nil, err
	}

	lists := make([][]RelatedQuery, 0, len(out.Default.RankedList))
	for _, l := range out.Default.RankedList {
		lists = append(lists, l.RankedKeyword)
	}
	return lists, nil
}

// widget runs the explore call and returns the widget with the given id.
func (g *GoogleTrends) widget(ctx context.Context, keyword string, start time.Time, id string) (*trendsWidget, error) {
	explore := map[string]any{
		"comparisonItem": []map[string]any{{
			"keyword": keyword,
			"geo":     "",
			"time":    trendsTimeRange(start, g.now()),
		}},
		"category": 0,
		"property": "",
	}
	reqJSON, err := json.Marshal(explore)
	if err != nil {
		return nil, fmt.Errorf("marshal explore request: %w", err)
	}

	params := g.params()
	params.Set("req", string(reqJSON))

	var out struct {
		Widgets []trendsWidget `json:"widgets"`
	}
	if err := g.get(ctx, "/explore", params, &out); err != nil {
		return nil, err
	}

	for i := range out.Widgets {
		if out.Widgets[i].ID == id {
			return &out.Widgets[i], nil
		}
	}
	return nil, fmt.Errorf("google trends: no %s widget for %q", id, keyword)
}

func (g *GoogleTrends) widgetData(ctx context.Context, path string, w *trendsWidget, v any) error {
	params := g.params()
	params.Set("req", string(w.Request))
	params.Set("token", w.Token)
	return g.get(ctx, path, params, v)
}

func (g *GoogleTrends) params() url.Values {
	params := url.Values{}
	params.Set("hl", g.hl)
	params.Set("tz", strconv.Itoa(g.tzOffset))
	return params
}

func (g *GoogleTrends) get(ctx context.Context, path string, params url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create google trends request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch google trends %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("google trends %s status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read google trends %s: %w", path, err)
	}

	if err := json.Unmarshal(stripXSSIPrefix(body), v); err != nil {
		return fmt.Errorf("decode google trends %s: %w", path, err)
	}
	return nil
}

// stripXSSIPrefix removes the ")]}'" guard (and the trailing comma some
// endpoints add) that Google prepends to JSON bodies.
func stripXSSIPrefix(body []byte) []byte {
	body = bytes.TrimSpace(body)
	body = bytes.TrimPrefix(body, []byte(")]}'"))
	body = bytes.TrimSpace(body)
	body = bytes.TrimPrefix(body, []byte(","))
	return bytes.TrimSpace(body)
}

// trendsTimeRange formats the explore time window. Windows shorter than a
// week are requested at hourly resolution.
func trendsTimeRange(start, end time.Time) string {
	start, end = start.UTC(), end.UTC()
	if end.Sub(start) < 7*24*time.Hour {
		return start.Format("2006-01-02T15") + " " + end.Format("2006-01-02T15")
	}
	return start.Format("2006-01-02") + " " + end.Format("2006-01-02")
}
