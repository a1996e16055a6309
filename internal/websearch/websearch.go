// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch queries web search APIs for user complaints, market
// statistics, and competitor mentions. Search is evidence-gathering only:
// results feed the scoring packages, which decide what counts.
package websearch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/market-engine/pkg/types"
)

// Result is one search hit with its page content snippet.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Backend searches a single web search API. Implementations handle one query
// and return raw hits.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// ComplaintQueries builds the query variants for discovering user complaints
// about an idea. Community domains get site-filtered variants because that is
// where unfiltered complaints live.
func ComplaintQueries(idea, region string, cfg types.SearchConfig) []string {
	queries := []string{
		fmt.Sprintf("%s problems complaints %s", idea, region),
		fmt.Sprintf("%s frustrating alternatives %s", idea, region),
		fmt.Sprintf("why is %s so hard", idea),
	}
	for _, domain := range cfg.CommunityDomains {
		queries = append(queries, fmt.Sprintf("site:%s %s problems", domain, idea))
	}
	return queries
}

// StatisticQueries builds the query variants for market statistics backing a
// claim. Regional business press gets site-filtered variants because the
// trust table weights those sources highly.
func StatisticQueries(claim, region string, cfg types.SearchConfig) []string {
	queries := []string{
		fmt.Sprintf("%s statistics %s market size", claim, region),
		fmt.Sprintf("%s survey report percentage", claim),
	}
	for _, domain := range cfg.RegionalDomains {
		queries = append(queries, fmt.Sprintf("site:%s %s", domain, claim))
	}
	return queries
}

// CompetitorQueries builds the query variants for finding rival products.
func CompetitorQueries(idea, region string) []string {
	return []string{
		fmt.Sprintf("%s competitors %s", idea, region),
		fmt.Sprintf("best %s apps %s", idea, region),
		fmt.Sprintf("%s alternatives pricing", idea),
	}
}

// FanOut runs every query against the backend concurrently and merges the
// hits. Per-query failures are reported to w as warnings and otherwise
// swallowed: missing evidence shows up downstream as unverified claims, not
// as a dead run. Merged results keep query order and are deduplicated by URL.
func FanOut(ctx context.Context, b Backend, queries []string, maxPerQuery int, w io.Writer) []Result {
	perQuery := make([][]Result, len(queries))
	g, ctx := errgroup.WithContext(ctx)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			hits, err := b.Search(ctx, q, maxPerQuery)
			if err != nil {
				fmt.Fprintf(w, "warning: search %q via %s failed: %v\n", q, b.Name(), err)
				return nil
			}
			perQuery[i] = hits
			return nil
		})
	}
	g.Wait()

	seen := make(map[string]bool)
	var merged []Result
	for _, hits := range perQuery {
		for _, hit := range hits {
			key := strings.TrimSuffix(hit.URL, "/")
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, hit)
		}
	}
	return merged
}
