package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req struct {
			Query      string `json:"query"`
			MaxResults int    `json:"max_results"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "average retail margin 2025" {
			t.Errorf("query = %q", req.Query)
		}
		if req.MaxResults != 3 {
			t.Errorf("max_results = %d, want 3", req.MaxResults)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []Hit{
				{Title: "Retail margins", URL: "https://example.com/a", Content: "Margins averaged 4%."},
				{Title: "Industry report", URL: "https://example.com/b", Content: "..."},
			},
		})
	}))
	defer server.Close()

	c := NewClient(&Config{BaseURL: server.URL, APIKey: "key"})

	hits, err := c.Search(context.Background(), "average retail margin 2025", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].Title != "Retail margins" {
		t.Errorf("hits[0].Title = %q", hits[0].Title)
	}
}

func TestSearchServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(&Config{BaseURL: server.URL})

	_, err := c.Search(context.Background(), "anything", 0)
	if !errors.Is(err, ErrSearch) {
		t.Errorf("Search() error = %v, want ErrSearch", err)
	}
}
