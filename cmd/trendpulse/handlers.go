package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/elonfeng/trendpulse/internal/config"
	"github.com/elonfeng/trendpulse/internal/scheduler"
	"github.com/elonfeng/trendpulse/internal/store"
	"github.com/elonfeng/trendpulse/pkg/alert"
	"github.com/elonfeng/trendpulse/pkg/analysis"
	"github.com/elonfeng/trendpulse/pkg/server"
	"github.com/elonfeng/trendpulse/pkg/source"
	"github.com/elonfeng/trendpulse/pkg/trend"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if cfg.Format == "json" {
		out = os.Stderr
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	builder  *trend.Builder
	querier  *trend.Querier
	analyzer *analysis.Analyzer
	closers  []io.Closer
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Log)
	a := &app{cfg: cfg, logger: logger}

	bc := trend.BuilderConfig{
		Categories: cfg.NewsAPI.Categories,
		Feeds:      source.NewFeedReader(cfg.Feeds.ParseTimeout()),
		Roster:     cfg.Feeds.Sources(),
		Logger:     logger,
	}
	qc := trend.QuerierConfig{Logger: logger}

	if cfg.NewsAPI.APIKey != "" {
		news := source.NewNewsAPI(cfg.NewsAPI.APIKey, cfg.NewsAPI.BaseURL, cfg.NewsAPI.Language, cfg.NewsAPI.PageSize)
		bc.Headlines = news
		qc.Search = news
	} else {
		logger.Warn().Str("source", "newsapi").Msg("NEWS_API_KEY not set, skipping headlines and news search")
	}
	if cfg.GoogleTrends.Enabled {
		qc.Interest = source.NewGoogleTrends(cfg.GoogleTrends.BaseURL, cfg.GoogleTrends.HL)
	}

	a.builder = trend.NewBuilder(bc)
	a.querier = trend.NewQuerier(qc)
	a.analyzer, err = a.newAnalyzer(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) newAnalyzer(ctx context.Context) (*analysis.Analyzer, error) {
	ac := a.cfg.Analysis
	gen, err := analysis.NewGenerator(ctx, analysis.GeneratorConfig{
		Provider: ac.Provider,
		Model:    ac.Model,
		APIKey:   ac.APIKey(),
		BaseURL:  ac.BaseURL,
	})
	switch {
	case errors.Is(err, analysis.ErrNotConfigured):
		// summaries still work without a provider
		a.logger.Warn().Str("provider", ac.Provider).Msg("analysis provider not configured")
	case err != nil:
		return nil, fmt.Errorf("create generator: %w", err)
	default:
		a.logger.Info().Str("provider", gen.Name()).Str("model", ac.Model).Msg("analysis provider ready")
		if c, ok := gen.(io.Closer); ok {
			a.closers = append(a.closers, c)
		}
	}

	return analysis.NewAnalyzer(analysis.Config{
		Generator: gen,
		Provider:  ac.Provider,
		Retry: analysis.RetryPolicy{
			MaxAttempts: ac.MaxAttempts,
			Delay:       ac.ParseRetryDelay(),
			Logger:      a.logger,
		},
		Logger: a.logger,
	}), nil
}

// openCache returns nil when caching is disabled.
func (a *app) openCache(ctx context.Context) (store.Cache, error) {
	cc := a.cfg.Cache
	var (
		cache store.Cache
		err   error
	)
	switch cc.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		cache, err = store.NewSQLite(cc.Path, cc.ParseTTL())
	case "redis":
		cache, err = store.NewRedis(ctx, cc.RedisURL, cc.ParseTTL())
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cc.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cc.Driver, err)
	}
	a.closers = append(a.closers, cache)
	a.logger.Info().Str("driver", cc.Driver).Dur("ttl", cc.ParseTTL()).Msg("build cache ready")
	return cache, nil
}

func (a *app) alertManager() *alert.Manager {
	ac := a.cfg.Alerts
	var notifiers []alert.Notifier

	if ac.Slack.Enabled && ac.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(ac.Slack.WebhookURL))
	}
	if ac.Discord.Enabled && ac.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(ac.Discord.WebhookURL))
	}
	if ac.Webhook.Enabled && ac.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(ac.Webhook.URL, ac.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func (a *app) newServer(port int, cache store.Cache) *server.Server {
	if port == 0 {
		port = a.cfg.Server.Port
	}
	return server.New(server.Config{
		Port:     port,
		Builder:  a.builder,
		Querier:  a.querier,
		Analyzer: a.analyzer,
		Cache:    cache,
		Logger:   a.logger,
	})
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close failed")
		}
	}
}

func runBuild(ctx context.Context, jsonOutput bool, limit int) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	trends, err := a.builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("build trends: %w", err)
	}
	if limit > 0 && len(trends) > limit {
		trends = trends[:limit]
	}

	if jsonOutput {
		return printJSON(trends)
	}

	if len(trends) == 0 {
		fmt.Println("no trends found from any source")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HOTNESS\tTYPE\tCATEGORY\tSOURCE\tTITLE\tDATE")
	for _, t := range trends {
		fmt.Fprintf(w, "%.0f%%\t%s\t%s\t%s\t%s\t%s\n",
			t.HotnessScore*100, t.Type, t.Category, t.Submitter,
			truncate(t.Title(trend.LangEN), 70), t.Date)
	}
	return w.Flush()
}

func runQuery(ctx context.Context, term, timeframe string, predictive bool) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	mode := trend.ModeHistorical
	if predictive {
		mode = trend.ModePredictive
	}
	result, err := a.querier.Query(ctx, trend.QueryRequest{Term: term, Timeframe: timeframe, Mode: mode})
	if err != nil {
		return fmt.Errorf("query %q: %w", term, err)
	}
	if result == nil {
		fmt.Fprintf(os.Stderr, "nothing found for %q\n", term)
		return nil
	}
	return printJSON(result)
}

func runAnalyze(ctx context.Context, analysisType, lang, file string) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var r io.Reader = os.Stdin
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("open trend file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var t trend.Trend
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return fmt.Errorf("decode trend: %w", err)
	}

	result, err := a.analyzer.Analyze(ctx, analysis.Request{Trend: &t, AnalysisType: analysisType, Language: lang})
	if err != nil {
		return err
	}
	if result.Summary != nil {
		return printJSON(result.Summary)
	}
	fmt.Println(result.Content)
	return nil
}

func runServe(port int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cache, err := a.openCache(ctx)
	if err != nil {
		return err
	}

	return serveUntilDone(ctx, a.newServer(port, cache), a.logger)
}

func runDaemon(port int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cache, err := a.openCache(ctx)
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Config{
		Builder:    a.builder,
		Cache:      cache,
		Alerts:     a.alertManager(),
		Spec:       a.cfg.Schedule.Prewarm,
		Limit:      a.cfg.Alerts.Limit,
		MinHotness: a.cfg.Alerts.MinHotness,
		Logger:     a.logger,
	})

	// Start scheduler in background.
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	err = serveUntilDone(ctx, a.newServer(port, cache), a.logger)
	cancel()
	<-schedDone
	return err
}

// serveUntilDone runs srv until it fails or ctx is cancelled, then shuts it
// down gracefully.
func serveUntilDone(ctx context.Context, srv *server.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
