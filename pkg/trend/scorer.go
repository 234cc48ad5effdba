package trend

import (
	"math"
	"sort"
)

// Hotness weights per engagement metric, in percent. They sum to 100.
const (
	weightViews        = 20
	weightInteractions = 40
	weightSearches     = 30
	weightVotes        = 10
)

// ScoreHotness sets HotnessScore on every trend of a complete batch. Each
// metric is normalized by its batch maximum (floored at 1), so the score of
// a trend holding every maximum is exactly 1.
func ScoreHotness(trends []Trend) {
	maxViews, maxInteractions, maxSearches, maxVotes := 1, 1, 1, 1
	for _, t := range trends {
		maxViews = max(maxViews, t.Views)
		maxInteractions = max(maxInteractions, t.Interactions)
		maxSearches = max(maxSearches, t.Searches)
		maxVotes = max(maxVotes, t.Votes)
	}

	for i := range trends {
		t := &trends[i]
		t.HotnessScore = (weightViews*ratio(t.Views, maxViews) +
			weightInteractions*ratio(t.Interactions, maxInteractions) +
			weightSearches*ratio(t.Searches, maxSearches) +
			weightVotes*ratio(t.Votes, maxVotes)) / 100
	}
}

func ratio(v, maxV int) float64 {
	if v <= 0 {
		return 0
	}
	return float64(v) / float64(maxV)
}

// SortByRecency orders trends newest first by SortKey, keeping ties stable.
func SortByRecency(trends []Trend) {
	sort.SliceStable(trends, func(i, j int) bool {
		return trends[i].SortKey > trends[j].SortKey
	})
}

// AssignTypes gives every trend without a type a random topic/query label.
func AssignTypes(trends []Trend, r Rand) {
	for i := range trends {
		if trends[i].Type != "" {
			continue
		}
		if r.IntN(2) == 0 {
			trends[i].Type = TypeTopic
		} else {
			trends[i].Type = TypeQuery
		}
	}
}

// SuccessScore is the advisory percentage shown in quick summaries: the
// hotness scaled into [20, 99], or a random 60..99 placeholder when the
// trend was never scored.
func SuccessScore(hotness float64, r Rand) int {
	if hotness > 0 {
		return int(math.Round(math.Min(99, math.Max(20, hotness*100))))
	}
	return 60 + r.IntN(40)
}
