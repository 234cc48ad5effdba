package trend

import (
	"math"
	"time"
)

const (
	defaultForecastWindow = 14
	defaultForecastSteps  = 7
)

// Forecaster extrapolates a timeline with an ordinary-least-squares line.
type Forecaster struct {
	// Window is how many of the most recent points the line is fit to.
	Window int
	// Steps is how many daily points are projected.
	Steps int
	// Jitter returns the relative noise applied to each projection. The
	// default draws uniformly from [-0.05, 0.05).
	Jitter func() float64
}

// NewForecaster creates a Forecaster with a 14-point window, 7 steps and
// ±5% jitter drawn from r.
func NewForecaster(r Rand) Forecaster {
	if r == nil {
		r = DefaultRand
	}
	return Forecaster{
		Window: defaultForecastWindow,
		Steps:  defaultForecastSteps,
		Jitter: func() float64 { return uniform(r, -0.05, 0.05) },
	}
}

// Forecast returns the projected points that follow timeline. Fewer than two
// points yield nothing. Each projection is one calendar day after the
// previous one and is flagged as a prediction.
func (f Forecaster) Forecast(timeline []TimelinePoint) []TimelinePoint {
	if len(timeline) < 2 {
		return nil
	}

	window := f.Window
	if window <= 0 {
		window = defaultForecastWindow
	}
	steps := f.Steps
	if steps <= 0 {
		steps = defaultForecastSteps
	}

	recent := timeline
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	slope, intercept := fitLine(recent)

	n := len(recent)
	last := time.Unix(timeline[len(timeline)-1].Time, 0).UTC()
	out := make([]TimelinePoint, 0, steps)
	for i := 1; i <= steps; i++ {
		v := slope*float64(n-1+i) + intercept
		if f.Jitter != nil {
			v *= 1 + f.Jitter()
		}
		out = append(out, TimelinePoint{
			Time:         last.AddDate(0, 0, i).Unix(),
			Value:        []int{int(math.Max(0, math.Round(v)))},
			IsPrediction: true,
		})
	}
	return out
}

// fitLine fits y = slope*x + intercept over x = 0..n-1.
func fitLine(points []TimelinePoint) (slope, intercept float64) {
	n := float64(len(points))
	var sumX, sumY, sumXY, sumX2 float64
	for i, p := range points {
		x := float64(i)
		y := float64(p.magnitude())
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
	}
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		slope = 0
	}
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
