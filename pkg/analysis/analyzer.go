// Package analysis produces quick summaries and generated forecasts for a trend.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/elonfeng/trendpulse/pkg/trend"
)

// Analysis types.
const (
	TypeSummary    = "summary"
	TypePrediction = "prediction"
	TypeDetailed   = "detailed"
)

var (
	ErrMissingTrend        = errors.New("news data is missing")
	ErrInvalidAnalysisType = errors.New("invalid analysisType specified")
	ErrNotConfigured       = errors.New("API key is not configured")
	ErrBlocked             = errors.New("content generation blocked due to safety settings")
	ErrEmptyResponse       = errors.New("no content generated in API response")
)

// Request asks for one analysis of a trend.
type Request struct {
	Trend        *trend.Trend `json:"trend"`
	AnalysisType string       `json:"analysisType"`
	Language     string       `json:"language"`
}

// Result holds either a summary or generated HTML, depending on the type.
type Result struct {
	Type    string
	Summary *Summary
	Content string
}

// Data is the value returned to clients: the summary object or the HTML text.
func (r Result) Data() any {
	if r.Summary != nil {
		return r.Summary
	}
	return r.Content
}

// Config wires an Analyzer. A nil Generator leaves the generated analysis
// types unavailable; Provider still names it in the resulting error.
type Config struct {
	Generator Generator
	Provider  string
	Retry     RetryPolicy
	Rand      trend.Rand
	Logger    zerolog.Logger
}

// Analyzer serves analysis requests.
type Analyzer struct {
	generator Generator
	provider  string
	retry     RetryPolicy
	rand      trend.Rand
	logger    zerolog.Logger
}

func NewAnalyzer(cfg Config) *Analyzer {
	r := cfg.Rand
	if r == nil {
		r = trend.DefaultRand
	}
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryPolicy(cfg.Logger)
	}
	return &Analyzer{
		generator: cfg.Generator,
		provider:  cfg.Provider,
		retry:     retry,
		rand:      r,
		logger:    cfg.Logger,
	}
}

// Analyze validates req and runs the requested analysis. Summaries are
// computed locally; predictions and detailed analyses call the generator.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Result, error) {
	if req.Trend == nil {
		return Result{}, ErrMissingTrend
	}
	lang := NormalizeLanguage(req.Language)
	t := *req.Trend

	var prompt string
	switch req.AnalysisType {
	case TypeSummary:
		s := summarize(t, lang, a.rand)
		return Result{Type: TypeSummary, Summary: &s}, nil
	case TypePrediction:
		prompt = predictionPrompt(t, lang)
	case TypeDetailed:
		prompt = detailedPrompt(t, lang)
	default:
		return Result{}, ErrInvalidAnalysisType
	}

	if a.generator == nil {
		return Result{}, fmt.Errorf("%s %w", ProviderLabel(a.provider), ErrNotConfigured)
	}

	text, err := a.retry.Do(ctx, a.generator.Name(), func(ctx context.Context) (string, error) {
		return a.generator.Generate(ctx, prompt)
	})
	if err != nil {
		return Result{}, err
	}
	a.logger.Debug().Str("type", req.AnalysisType).Str("trend", t.ID).Int("bytes", len(text)).Msg("analysis generated")
	return Result{Type: req.AnalysisType, Content: text}, nil
}

// NormalizeLanguage maps anything but Vietnamese to English.
func NormalizeLanguage(lang string) string {
	if lang == trend.LangVI {
		return trend.LangVI
	}
	return trend.LangEN
}

// FailureMessage wraps err in the localized user-facing failure text.
func FailureMessage(lang string, err error) string {
	if NormalizeLanguage(lang) == trend.LangVI {
		return fmt.Sprintf("Đã xảy ra lỗi khi tạo phân tích AI. Vui lòng thử lại sau. (Lỗi: %s)", err)
	}
	return fmt.Sprintf("An error occurred while generating the AI analysis. Please try again later. (Error: %s)", err)
}

// MissingTrendMessage is the localized text for ErrMissingTrend.
func MissingTrendMessage(lang string) string {
	if NormalizeLanguage(lang) == trend.LangVI {
		return "Thiếu dữ liệu tin tức."
	}
	return "News data is missing."
}

// InvalidTypeMessage is the client text for ErrInvalidAnalysisType.
func InvalidTypeMessage() string {
	return "Invalid analysisType specified."
}
