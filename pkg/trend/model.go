package trend

import "github.com/elonfeng/trendpulse/pkg/source"

// Trend is the canonical normalized news/topic record.
type Trend struct {
	ID            string   `json:"id"`
	TitleEN       string   `json:"title_en,omitempty"`
	DescriptionEN string   `json:"description_en,omitempty"`
	TitleVI       string   `json:"title_vi,omitempty"`
	DescriptionVI string   `json:"description_vi,omitempty"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Votes         int      `json:"votes"`
	Views         int      `json:"views"`
	Interactions  int      `json:"interactions"`
	Searches      int      `json:"searches"`
	Source        string   `json:"source"`
	Date          string   `json:"date"`
	SortKey       int64    `json:"sortKey"`
	Submitter     string   `json:"submitter"`
	Region        string   `json:"region,omitempty"`
	HotnessScore  float64  `json:"hotnessScore"`
	Type          string   `json:"type,omitempty"`
	PublishedAt   string   `json:"publishedAt,omitempty"`
}

// Title returns the title in lang, falling back to English then Vietnamese.
func (t Trend) Title(lang string) string {
	if lang == LangVI && t.TitleVI != "" {
		return t.TitleVI
	}
	if t.TitleEN != "" {
		return t.TitleEN
	}
	return t.TitleVI
}

// Description returns the description in lang with the same fallback as Title.
func (t Trend) Description(lang string) string {
	if lang == LangVI && t.DescriptionVI != "" {
		return t.DescriptionVI
	}
	if t.DescriptionEN != "" {
		return t.DescriptionEN
	}
	return t.DescriptionVI
}

// Supported locales.
const (
	LangEN = "en"
	LangVI = "vi"
)

// Trend types assigned when a source does not classify its items.
const (
	TypeTopic = "topic"
	TypeQuery = "query"
)

// TimelinePoint is one bucket of a magnitude series.
type TimelinePoint struct {
	Time         int64 `json:"time"`
	Value        []int `json:"value"`
	IsPrediction bool  `json:"isPrediction,omitempty"`
}

func (p TimelinePoint) magnitude() int {
	if len(p.Value) == 0 {
		return 0
	}
	return p.Value[0]
}

// AggregatedQuery is the synthetic result for a single free-text query.
type AggregatedQuery struct {
	ID              string                `json:"id"`
	TitleEN         string                `json:"title_en"`
	IsAggregated    bool                  `json:"isAggregated"`
	Submitter       string                `json:"submitter"`
	TimelineData    []TimelinePoint       `json:"timelineData"`
	TopArticles     []Trend               `json:"topArticles"`
	RelatedQueries  []source.RelatedQuery `json:"relatedQueries"`
	TotalEngagement int                   `json:"totalEngagement"`
	PeakEngagement  int                   `json:"peakEngagement"`
}
