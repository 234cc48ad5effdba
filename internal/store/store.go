package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/elonfeng/trendpulse/pkg/trend"
)

// ErrNotFound is returned when no fresh build is cached.
var ErrNotFound = errors.New("no cached build")

// Build is one complete, scored trend batch.
type Build struct {
	ID      string        `json:"buildId"`
	BuiltAt time.Time     `json:"builtAt"`
	Trends  []trend.Trend `json:"trends"`
}

// NewBuild stamps trends with a fresh build id.
func NewBuild(trends []trend.Trend, builtAt time.Time) *Build {
	if trends == nil {
		trends = []trend.Trend{}
	}
	return &Build{ID: uuid.NewString(), BuiltAt: builtAt.UTC(), Trends: trends}
}

// Cache holds the most recent build and the ids of trends already alerted.
type Cache interface {
	// LatestBuild returns the newest build younger than the cache TTL, or
	// ErrNotFound.
	LatestBuild(ctx context.Context) (*Build, error)
	SaveBuild(ctx context.Context, b *Build) error

	MarkAlerted(ctx context.Context, trendID string) error
	Alerted(ctx context.Context, trendID string) (bool, error)

	Close() error
}
