package websearch

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/market-engine/pkg/types"
)

func testSearchConfig() types.SearchConfig {
	return types.SearchConfig{
		MaxResults:       5,
		CommunityDomains: []string{"reddit.com", "quora.com"},
		RegionalDomains:  []string{"inc42.com"},
	}
}

func TestComplaintQueries(t *testing.T) {
	queries := ComplaintQueries("upi reconciliation", "India", testSearchConfig())

	// Base variants plus one site-filtered variant per community domain.
	if len(queries) != 5 {
		t.Fatalf("len = %d, want 5: %v", len(queries), queries)
	}
	if !strings.Contains(queries[0], "upi reconciliation") || !strings.Contains(queries[0], "India") {
		t.Errorf("base query missing idea or region: %q", queries[0])
	}

	siteFiltered := 0
	for _, q := range queries {
		if strings.Contains(q, "site:reddit.com") || strings.Contains(q, "site:quora.com") {
			siteFiltered++
		}
	}
	if siteFiltered != 2 {
		t.Errorf("site-filtered variants = %d, want 2: %v", siteFiltered, queries)
	}
}

func TestStatisticQueries(t *testing.T) {
	queries := StatisticQueries("merchant payment failures", "India", testSearchConfig())
	if len(queries) != 3 {
		t.Fatalf("len = %d, want 3: %v", len(queries), queries)
	}
	found := false
	for _, q := range queries {
		if strings.Contains(q, "site:inc42.com") {
			found = true
		}
	}
	if !found {
		t.Errorf("no regional site filter in %v", queries)
	}
}

// stubBackend answers each query from a fixed table; unlisted queries fail.
type stubBackend struct {
	hits map[string][]Result
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Search(ctx context.Context, query string, max int) ([]Result, error) {
	hits, ok := s.hits[query]
	if !ok {
		return nil, errors.New("no answer configured")
	}
	return hits, nil
}

func TestFanOutMergesInQueryOrder(t *testing.T) {
	b := &stubBackend{hits: map[string][]Result{
		"first":  {{URL: "https://a.example/1"}, {URL: "https://a.example/2"}},
		"second": {{URL: "https://b.example/1"}},
	}}

	got := FanOut(context.Background(), b, []string{"first", "second"}, 5, io.Discard)

	want := []string{"https://a.example/1", "https://a.example/2", "https://b.example/1"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, url := range want {
		if got[i].URL != url {
			t.Errorf("result %d = %s, want %s", i, got[i].URL, url)
		}
	}
}

func TestFanOutDeduplicatesByURL(t *testing.T) {
	b := &stubBackend{hits: map[string][]Result{
		"first":  {{URL: "https://a.example/page", Title: "kept"}},
		"second": {{URL: "https://a.example/page/", Title: "dropped"}, {URL: "https://b.example"}},
	}}

	got := FanOut(context.Background(), b, []string{"first", "second"}, 5, io.Discard)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].Title != "kept" {
		t.Errorf("dedup kept the wrong hit: %+v", got[0])
	}
}

func TestFanOutToleratesFailures(t *testing.T) {
	b := &stubBackend{hits: map[string][]Result{
		"good": {{URL: "https://a.example"}},
	}}

	var warnings strings.Builder
	got := FanOut(context.Background(), b, []string{"good", "bad"}, 5, &warnings)

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if !strings.Contains(warnings.String(), "bad") {
		t.Errorf("failure not reported: %q", warnings.String())
	}
}

func TestFanOutAllFailuresYieldEmpty(t *testing.T) {
	b := &stubBackend{}
	got := FanOut(context.Background(), b, []string{"q1", "q2"}, 5, io.Discard)
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestFanOutSkipsEmptyURLs(t *testing.T) {
	b := &stubBackend{hits: map[string][]Result{
		"q": {{URL: "", Title: "no url"}, {URL: "https://a.example"}},
	}}
	got := FanOut(context.Background(), b, []string{"q"}, 5, io.Discard)
	if len(got) != 1 || got[0].URL != "https://a.example" {
		t.Errorf("results = %+v", got)
	}
}
