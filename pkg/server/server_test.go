package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/rs/zerolog"

	"github.com/elonfeng/trendpulse/internal/store"
	"github.com/elonfeng/trendpulse/pkg/analysis"
	"github.com/elonfeng/trendpulse/pkg/trend"
)

type fakeBuilder struct {
	trends []trend.Trend
	err    error
	calls  int
}

func (f *fakeBuilder) Build(context.Context) ([]trend.Trend, error) {
	f.calls++
	return f.trends, f.err
}

type fakeQuerier struct {
	result *trend.AggregatedQuery
	err    error
	got    trend.QueryRequest
}

func (f *fakeQuerier) Query(_ context.Context, req trend.QueryRequest) (*trend.AggregatedQuery, error) {
	f.got = req
	if strings.TrimSpace(req.Term) == "" {
		return nil, trend.ErrEmptyTerm
	}
	return f.result, f.err
}

type fakeAnalyzer struct {
	result analysis.Result
	err    error
	got    analysis.Request
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req analysis.Request) (analysis.Result, error) {
	f.got = req
	return f.result, f.err
}

type response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Trends  []json.RawMessage `json:"trends"`
	Data    json.RawMessage   `json:"data"`
}

func newTestServer(cfg Config) http.Handler {
	cfg.Logger = zerolog.Nop()
	if cfg.Builder == nil {
		cfg.Builder = &fakeBuilder{}
	}
	if cfg.Querier == nil {
		cfg.Querier = &fakeQuerier{}
	}
	if cfg.Analyzer == nil {
		cfg.Analyzer = &fakeAnalyzer{}
	}
	return New(cfg).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

func TestHealth(t *testing.T) {
	rec, _ := do(t, newTestServer(Config{}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{\"status\":\"ok\"}\n", rec.Body.String())
}

func TestBuildReturnsTrends(t *testing.T) {
	b := &fakeBuilder{trends: []trend.Trend{{ID: "a", TitleEN: "A"}, {ID: "b", TitleEN: "B"}}}

	rec, resp := do(t, newTestServer(Config{Builder: b}), http.MethodGet, "/api/trends-builder", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp.Success)
	assert.Equal(t, 2, len(resp.Trends))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=1800, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestBuildEmpty(t *testing.T) {
	rec, resp := do(t, newTestServer(Config{}), http.MethodGet, "/api/trends-builder", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp.Success)
	assert.Equal(t, "No trends found from any source.", resp.Message)
	assert.Equal(t, 0, len(resp.Trends))
	assert.Equal(t, true, strings.Contains(rec.Body.String(), `"trends":[]`))
	assert.Equal(t, "", rec.Header().Get("Cache-Control"))
}

func TestBuildError(t *testing.T) {
	b := &fakeBuilder{err: errors.New("boom")}

	rec, resp := do(t, newTestServer(Config{Builder: b}), http.MethodGet, "/api/trends-builder", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, resp.Success)
	assert.Equal(t, "Failed to build trends", resp.Error)
	assert.Equal(t, "boom", resp.Message)
}

func TestBuildServesFromCache(t *testing.T) {
	cache, err := store.NewSQLite(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()
	b := &fakeBuilder{trends: []trend.Trend{{ID: "a", TitleEN: "A"}}}
	h := newTestServer(Config{Builder: b, Cache: cache})

	do(t, h, http.MethodGet, "/api/trends-builder", "")
	rec, resp := do(t, h, http.MethodGet, "/api/trends-builder", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, len(resp.Trends))
	assert.Equal(t, 1, b.calls)
}

func TestBuildWrongMethod(t *testing.T) {
	rec, resp := do(t, newTestServer(Config{}), http.MethodPost, "/api/trends-builder", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method Not Allowed", resp.Message)
}

func TestFetchRequiresTerm(t *testing.T) {
	h := newTestServer(Config{})

	for _, target := range []string{"/api/fetch-trends", "/api/fetch-trends?searchTerm=%20%20"} {
		rec, resp := do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, false, resp.Success)
		assert.Equal(t, "searchTerm is required.", resp.Message)
	}
}

func TestFetchPassesParameters(t *testing.T) {
	q := &fakeQuerier{result: &trend.AggregatedQuery{ID: "agg", TitleEN: "Aggregated trend for: golang", IsAggregated: true}}

	rec, resp := do(t, newTestServer(Config{Querier: q}), http.MethodGet,
		"/api/fetch-trends?searchTerm=golang&timeframe=1m&mode=predictive", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp.Success)
	assert.Equal(t, 1, len(resp.Trends))
	assert.Equal(t, trend.QueryRequest{Term: "golang", Timeframe: "1m", Mode: "predictive"}, q.got)

	var got trend.AggregatedQuery
	assert.Equal(t, nil, json.Unmarshal(resp.Trends[0], &got))
	assert.Equal(t, "agg", got.ID)
	assert.Equal(t, true, got.IsAggregated)
}

func TestFetchNothingFound(t *testing.T) {
	rec, resp := do(t, newTestServer(Config{}), http.MethodGet, "/api/fetch-trends?searchTerm=zzzz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp.Success)
	assert.Equal(t, true, strings.Contains(rec.Body.String(), `"trends":[]`))
}

func TestFetchError(t *testing.T) {
	q := &fakeQuerier{err: errors.New("upstream down")}

	rec, resp := do(t, newTestServer(Config{Querier: q}), http.MethodGet, "/api/fetch-trends?searchTerm=go", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "upstream down", resp.Message)
}

func TestAnalyzeStatusAndPreflight(t *testing.T) {
	h := newTestServer(Config{})

	rec, resp := do(t, h, http.MethodGet, "/api/analyze-trend", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AI service is online.", resp.Message)

	rec, _ = do(t, h, http.MethodOptions, "/api/analyze-trend", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, resp = do(t, h, http.MethodPut, "/api/analyze-trend", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, false, resp.Success)
	assert.Equal(t, "Method Not Allowed", resp.Message)
}

func TestAnalyzeSummary(t *testing.T) {
	a := &fakeAnalyzer{result: analysis.Result{
		Type:    analysis.TypeSummary,
		Summary: &analysis.Summary{SuccessScore: 72, Summary: "<ul></ul>"},
	}}
	body := `{"trend":{"id":"t1","title_en":"Chips"},"analysisType":"summary","language":"vi"}`

	rec, resp := do(t, newTestServer(Config{Analyzer: a}), http.MethodPost, "/api/analyze-trend", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp.Success)
	assert.Equal(t, `{"successScore":72,"summary":"<ul></ul>"}`, string(resp.Data))
	assert.Equal(t, "t1", a.got.Trend.ID)
	assert.Equal(t, "vi", a.got.Language)
}

func TestAnalyzeText(t *testing.T) {
	a := &fakeAnalyzer{result: analysis.Result{Type: analysis.TypeDetailed, Content: "<h3>ok</h3>"}}

	_, resp := do(t, newTestServer(Config{Analyzer: a}), http.MethodPost, "/api/analyze-trend",
		`{"trend":{"id":"t1"},"analysisType":"detailed"}`)

	var text string
	assert.Equal(t, nil, json.Unmarshal(resp.Data, &text))
	assert.Equal(t, "<h3>ok</h3>", text)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		body    string
		status  int
		message string
	}{
		{
			name:    "missing trend en",
			err:     analysis.ErrMissingTrend,
			body:    `{"analysisType":"summary"}`,
			status:  http.StatusBadRequest,
			message: "News data is missing.",
		},
		{
			name:    "missing trend vi",
			err:     analysis.ErrMissingTrend,
			body:    `{"analysisType":"summary","language":"vi"}`,
			status:  http.StatusBadRequest,
			message: "Thiếu dữ liệu tin tức.",
		},
		{
			name:    "invalid type",
			err:     analysis.ErrInvalidAnalysisType,
			body:    `{"trend":{"id":"t1"},"analysisType":"poem"}`,
			status:  http.StatusBadRequest,
			message: "Invalid analysisType specified.",
		},
		{
			name:    "provider failure",
			err:     errors.New("quota exceeded"),
			body:    `{"trend":{"id":"t1"},"analysisType":"detailed"}`,
			status:  http.StatusInternalServerError,
			message: "An error occurred while generating the AI analysis. Please try again later. (Error: quota exceeded)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeAnalyzer{err: tt.err}

			rec, resp := do(t, newTestServer(Config{Analyzer: a}), http.MethodPost, "/api/analyze-trend", tt.body)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestAnalyzeBadBody(t *testing.T) {
	rec, resp := do(t, newTestServer(Config{}), http.MethodPost, "/api/analyze-trend", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, resp.Success)
}

type panickingBuilder struct{}

func (panickingBuilder) Build(context.Context) ([]trend.Trend, error) { panic("kaboom") }

func TestRecoverer(t *testing.T) {
	rec, resp := do(t, newTestServer(Config{Builder: panickingBuilder{}}), http.MethodGet, "/api/trends-builder", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", resp.Message)
}

func TestNotFound(t *testing.T) {
	rec, resp := do(t, newTestServer(Config{}), http.MethodGet, "/api/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, resp.Success)
}
