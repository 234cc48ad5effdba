package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/elonfeng/trendpulse/internal/store"
	"github.com/elonfeng/trendpulse/pkg/alert"
	"github.com/elonfeng/trendpulse/pkg/trend"
)

// Builder produces a full trend batch.
type Builder interface {
	Build(ctx context.Context) ([]trend.Trend, error)
}

// Config wires a Scheduler. Cache and Alerts are optional.
type Config struct {
	Builder    Builder
	Cache      store.Cache
	Alerts     *alert.Manager
	Spec       string // cron spec, default "@every 30m"
	Limit      int
	MinHotness float64
	Logger     zerolog.Logger
}

// Scheduler rebuilds the trend batch on a cron schedule, stores it in the
// cache and alerts on hot trends not alerted before.
type Scheduler struct {
	builder    Builder
	cache      store.Cache
	alerts     *alert.Manager
	spec       string
	limit      int
	minHotness float64
	logger     zerolog.Logger
	now        func() time.Time

	mu      sync.Mutex
	alerted map[string]bool // used when no cache is configured
}

// New creates a new scheduler.
func New(cfg Config) *Scheduler {
	spec := cfg.Spec
	if spec == "" {
		spec = "@every 30m"
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 5
	}
	return &Scheduler{
		builder:    cfg.Builder,
		cache:      cfg.Cache,
		alerts:     cfg.Alerts,
		spec:       spec,
		limit:      limit,
		minHotness: cfg.MinHotness,
		logger:     cfg.Logger,
		now:        time.Now,
		alerted:    make(map[string]bool),
	}
}

// Run prewarms once, then on every tick of the schedule. Blocks until ctx
// is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.spec, func() {
		if err := s.Prewarm(ctx); err != nil {
			s.logger.Error().Err(err).Msg("scheduled prewarm failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule prewarm %q: %w", s.spec, err)
	}

	s.logger.Info().Str("schedule", s.spec).Msg("scheduler: initial prewarm")
	if err := s.Prewarm(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial prewarm failed")
	}

	c.Start()
	s.logger.Info().Str("schedule", s.spec).Msg("scheduler: running")

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info().Msg("scheduler: stopped")
	return ctx.Err()
}

// Prewarm builds a fresh batch, caches it and sends alerts.
func (s *Scheduler) Prewarm(ctx context.Context) error {
	trends, err := s.builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("build trends: %w", err)
	}

	if s.cache != nil {
		b := store.NewBuild(trends, s.now())
		if err := s.cache.SaveBuild(ctx, b); err != nil {
			s.logger.Warn().Err(err).Msg("cache build failed")
		} else {
			s.logger.Info().Str("build", b.ID).Int("trends", len(trends)).Msg("build cached")
		}
	}

	sent := s.alert(ctx, trends)
	if sent > 0 {
		s.logger.Info().Int("alerts", sent).Msg("alerts sent")
	}
	return nil
}

// alert broadcasts the hottest unalerted trends at or above the threshold,
// at most limit per run.
func (s *Scheduler) alert(ctx context.Context, trends []trend.Trend) int {
	if s.alerts == nil || !s.alerts.HasNotifiers() {
		return 0
	}

	hot := make([]trend.Trend, 0, len(trends))
	for _, t := range trends {
		if t.HotnessScore >= s.minHotness {
			hot = append(hot, t)
		}
	}
	sort.SliceStable(hot, func(i, j int) bool {
		return hot[i].HotnessScore > hot[j].HotnessScore
	})

	sent := 0
	for _, t := range hot {
		if sent >= s.limit {
			break
		}
		done, err := s.wasAlerted(ctx, t.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("trend", t.ID).Msg("alert lookup failed")
			continue
		}
		if done {
			continue
		}

		if err := s.alerts.Broadcast(ctx, alert.FromTrend(t)); err != nil {
			s.logger.Warn().Err(err).Str("trend", t.ID).Msg("alert failed")
			continue
		}
		if err := s.markAlerted(ctx, t.ID); err != nil {
			s.logger.Warn().Err(err).Str("trend", t.ID).Msg("mark alerted failed")
		}
		sent++
		s.logger.Info().Str("trend", t.ID).Float64("hotness", t.HotnessScore).Msg("alerted")
	}
	return sent
}

func (s *Scheduler) wasAlerted(ctx context.Context, id string) (bool, error) {
	if s.cache != nil {
		return s.cache.Alerted(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alerted[id], nil
}

func (s *Scheduler) markAlerted(ctx context.Context, id string) error {
	if s.cache != nil {
		return s.cache.MarkAlerted(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerted[id] = true
	return nil
}
