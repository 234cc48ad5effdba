package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestNewsAPITopHeadlines(t *testing.T) {
	var gotPath, gotKey, gotCategory, gotPageSize, gotLanguage string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		gotCategory = r.URL.Query().Get("category")
		gotPageSize = r.URL.Query().Get("pageSize")
		gotLanguage = r.URL.Query().Get("language")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":       "ok",
			"totalResults": 1,
			"articles": []map[string]any{{
				"source":      map[string]any{"id": "bbc-news", "name": "BBC News"},
				"title":       "Markets rally",
				"description": "Stocks rose.",
				"url":         "https://bbc.example/markets",
				"publishedAt": "2024-05-01T10:00:00Z",
			}},
		})
	}))
	defer srv.Close()

	client := NewNewsAPI("secret", srv.URL, "", 0)
	articles, err := client.TopHeadlines(context.Background(), "business")

	assert.Equal(t, nil, err)
	assert.Equal(t, "/top-headlines", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "business", gotCategory)
	assert.Equal(t, "30", gotPageSize)
	assert.Equal(t, "en", gotLanguage)
	assert.Equal(t, 1, len(articles))
	assert.Equal(t, "Markets rally", articles[0].Title)
	assert.Equal(t, "BBC News", articles[0].Source.Name)
	assert.Equal(t, "https://bbc.example/markets", articles[0].URL)
}

func TestNewsAPIEverything(t *testing.T) {
	var gotQuery, gotSort, gotPageSize, gotFrom string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotSort = r.URL.Query().Get("sortBy")
		gotPageSize = r.URL.Query().Get("pageSize")
		gotFrom = r.URL.Query().Get("from")
		w.Write([]byte(`{"status":"ok","totalResults":0,"articles":[]}`))
	}))
	defer srv.Close()

	from := time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)
	client := NewNewsAPI("secret", srv.URL, "en", 30)
	articles, err := client.Everything(context.Background(), EverythingQuery{
		Query:    "electric cars",
		From:     from,
		SortBy:   "relevancy",
		PageSize: 100,
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(articles))
	assert.Equal(t, "electric cars", gotQuery)
	assert.Equal(t, "relevancy", gotSort)
	assert.Equal(t, "100", gotPageSize)
	assert.Equal(t, "2024-04-03T00:00:00Z", gotFrom)
}

func TestNewsAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`))
	}))
	defer srv.Close()

	client := NewNewsAPI("bad", srv.URL, "", 0)
	articles, err := client.TopHeadlines(context.Background(), "science")

	assert.NotEqual(t, nil, err)
	assert.Equal(t, 0, len(articles))
}

func TestNewsAPIMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	client := NewNewsAPI("key", srv.URL, "", 0)
	_, err := client.TopHeadlines(context.Background(), "health")

	assert.NotEqual(t, nil, err)
}
