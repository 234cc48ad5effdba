package trend

import (
	"math"
	"time"
)

// Aggregator buckets timestamps into a synthetic magnitude series.
type Aggregator struct {
	// Now anchors the newest bucket.
	Now func() time.Time
	// Multiplier scales each bucket count. It is a visual smoothing factor,
	// not a measurement; the default draws uniformly from [50, 100).
	Multiplier func() float64
}

// NewAggregator creates an Aggregator with the default clock and a
// multiplier drawn from r.
func NewAggregator(r Rand) Aggregator {
	if r == nil {
		r = DefaultRand
	}
	return Aggregator{
		Now:        time.Now,
		Multiplier: func() float64 { return uniform(r, 50, 100) },
	}
}

// Aggregate counts times per bucket over the lookback window. hours > 0
// selects hourly buckets over the last hours hours; otherwise daily buckets
// over the last days days are used. The result always has lookback+1
// points, oldest first, including empty buckets. Buckets are UTC-aligned.
func (a Aggregator) Aggregate(times []time.Time, days, hours int) []TimelinePoint {
	hourly := hours > 0
	lookback := days
	if hourly {
		lookback = hours
	}
	if lookback < 0 {
		lookback = 0
	}

	counts := make(map[int64]int, len(times))
	for _, t := range times {
		counts[bucketStart(t, hourly).Unix()]++
	}

	newest := bucketStart(a.Now(), hourly)
	points := make([]TimelinePoint, 0, lookback+1)
	for i := lookback; i >= 0; i-- {
		var b time.Time
		if hourly {
			b = newest.Add(-time.Duration(i) * time.Hour)
		} else {
			b = newest.AddDate(0, 0, -i)
		}
		value := float64(counts[b.Unix()]) * a.Multiplier()
		points = append(points, TimelinePoint{
			Time:  b.Unix(),
			Value: []int{int(math.Round(value))},
		})
	}
	return points
}

func bucketStart(t time.Time, hourly bool) time.Time {
	t = t.UTC()
	if hourly {
		return t.Truncate(time.Hour)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
