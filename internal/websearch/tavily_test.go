package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/market-engine/internal/httputil"
	"github.com/pdiddy/market-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func withTavilyServer(t *testing.T, handler http.HandlerFunc) *TavilyBackend {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := tavilySearchBase
	tavilySearchBase = ts.URL
	t.Cleanup(func() { tavilySearchBase = old })

	return NewTavilyBackend(types.SearchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "market-engine/test"},
		APIKey:     "tvly-test",
		MaxResults: 5,
	})
}

func TestTavilySearch(t *testing.T) {
	b := withTavilyServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}

		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.APIKey != "tvly-test" {
			t.Errorf("api key = %q", req.APIKey)
		}
		if req.Query != "upi reconciliation problems India" {
			t.Errorf("query = %q", req.Query)
		}
		if req.MaxResults != 3 {
			t.Errorf("max_results = %d", req.MaxResults)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Merchants struggle", "url": "https://reddit.com/r/india/1", "content": "so frustrating", "score": 0.91},
				{"title": "Payment report", "url": "https://inc42.com/report", "content": "67% of merchants", "score": 0.84},
			},
		})
	})

	got, err := b.Search(context.Background(), "upi reconciliation problems India", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].URL != "https://reddit.com/r/india/1" || got[0].Score != 0.91 {
		t.Errorf("first hit = %+v", got[0])
	}
}

func TestTavilySearchDefaultsMaxResults(t *testing.T) {
	b := withTavilyServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req tavilyRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.MaxResults != 5 {
			t.Errorf("max_results = %d, want config default 5", req.MaxResults)
		}
		w.Write([]byte(`{"results":[]}`))
	})

	if _, err := b.Search(context.Background(), "anything", 0); err != nil {
		t.Fatalf("Search: %v", err)
	}
}

func TestTavilySearchHTTPError(t *testing.T) {
	b := withTavilyServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := b.Search(context.Background(), "anything", 3)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("err = %v, want HTTP 403 error", err)
	}
}

func TestTavilySearchMalformedBody(t *testing.T) {
	b := withTavilyServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := b.Search(context.Background(), "anything", 3)
	if err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Errorf("err = %v, want parse error", err)
	}
}
