package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPI queries the NewsAPI v2 headline and search endpoints.
type NewsAPI struct {
	client   *http.Client
	apiKey   string
	baseURL  string
	language string
	pageSize int
}

// NewNewsAPI creates a NewsAPI client. An empty baseURL uses the public endpoint.
func NewNewsAPI(apiKey, baseURL, language string, pageSize int) *NewsAPI {
	if baseURL == "" {
		baseURL = newsAPIBaseURL
	}
	if language == "" {
		language = "en"
	}
	if pageSize <= 0 {
		pageSize = 30
	}
	return &NewsAPI{
		client:   &http.Client{Timeout: 30 * time.Second},
		apiKey:   apiKey,
		baseURL:  baseURL,
		language: language,
		pageSize: pageSize,
	}
}

// EverythingQuery is a keyword search against /everything.
type EverythingQuery struct {
	Query    string
	From     time.Time
	SortBy   string
	PageSize int
	Language string
}

type newsAPIResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}

// TopHeadlines returns the current headlines for one topic category.
func (n *NewsAPI) TopHeadlines(ctx context.Context, category string) ([]Article, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("language", n.language)
	params.Set("pageSize", strconv.Itoa(n.pageSize))

	return n.get(ctx, "/top-headlines", params)
}

// Everything runs a keyword search over recent articles.
func (n *NewsAPI) Everything(ctx context.Context, q EverythingQuery) ([]Article, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	if !q.From.IsZero() {
		params.Set("from", q.From.UTC().Format(time.RFC3339))
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	lang := q.Language
	if lang == "" {
		lang = n.language
	}
	params.Set("language", lang)

	return n.get(ctx, "/everything", params)
}

func (n *NewsAPI) get(ctx context.Context, path string, params url.Values) ([]Article, error) {
	reqURL := n.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create newsapi request: %w", err)
	}
	req.Header.Set("X-Api-Key", n.apiKey)
	req.Header.Set("User-Agent", "trendpulse/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch newsapi %s: %w", path, err)
	}
	defer resp.Body.Close()

	var result newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode newsapi %s (status %d): %w", path, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || result.Status != "ok" {
		return nil, fmt.Errorf("newsapi %s status %d: %s %s", path, resp.StatusCode, result.Code, result.Message)
	}
	return result.Articles, nil
}
