package scrape

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/market-engine/internal/httputil"
	"github.com/pdiddy/market-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func testScraper() *Scraper {
	return NewScraper(types.ScrapeConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "market-engine/test"},
		DarkPatternKeywords: []string{
			"call to cancel", "no refund", "limited time", "only x left",
		},
		MaxCompetitors: 5,
	})
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"strips tags",
			`<html><body><h1>Acme Pay</h1><p>Reconcile instantly.</p></body></html>`,
			"Acme Pay Reconcile instantly.",
		},
		{
			"drops scripts and styles",
			`<style>.x{color:red}</style><script>alert("hi")</script><p>visible</p>`,
			"visible",
		},
		{
			"multiline script",
			"<script>\nvar a = 1;\nvar b = 2;\n</script>real content",
			"real content",
		},
		{
			"collapses whitespace",
			"<div>  a\n\n  b </div>",
			"a b",
		},
		{"plain text passes through", "already plain", "already plain"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractText(tt.html))
		})
	}
}

func TestScanDarkPatterns(t *testing.T) {
	s := testScraper()

	found, score := s.ScanDarkPatterns("You must call to cancel. No refund policy. Limited time offer!")
	assert.Equal(t, []string{"call to cancel", "no refund", "limited time"}, found)
	assert.Equal(t, 3, score)
}

func TestScanDarkPatternsPerKeywordCap(t *testing.T) {
	s := testScraper()

	// One phrase repeated ten times contributes at most 3.
	text := strings.Repeat("limited time! ", 10)
	found, score := s.ScanDarkPatterns(text)
	assert.Equal(t, []string{"limited time"}, found)
	assert.Equal(t, 3, score)
}

func TestScanDarkPatternsTotalCap(t *testing.T) {
	s := testScraper()

	// Every keyword at its per-keyword cap: 4 keywords x 3 = 12, capped to 10.
	text := strings.Repeat("call to cancel no refund limited time only x left ", 3)
	_, score := s.ScanDarkPatterns(text)
	assert.Equal(t, 10, score)
}

func TestScanDarkPatternsCleanPage(t *testing.T) {
	s := testScraper()
	found, score := s.ScanDarkPatterns("Transparent pricing. Cancel anytime from settings.")
	assert.Empty(t, found)
	assert.Equal(t, 0, score)
}

func TestExtractPrices(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"rupee symbol", "Starts at ₹499/mo for teams", []string{"₹499/mo"}},
		{"rs prefix", "Only Rs. 1,999/year today", []string{"Rs. 1,999/year"}},
		{"dollar", "From $29/month billed annually", []string{"$29/month"}},
		{"bare amount", "Pay ₹99 once", []string{"₹99"}},
		{
			"multiple deduplicated",
			"Basic ₹99/mo. Pro ₹299/mo. Still ₹99/mo for Basic.",
			[]string{"₹99/mo", "₹299/mo"},
		},
		{"no prices", "Contact sales for a quote", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPrices(tt.text))
		})
	}
}

func TestDetectTiers(t *testing.T) {
	tiers := DetectTiers("Choose Basic for starters or Pro for growing teams. Enterprise available.")
	assert.Equal(t, []string{"Basic", "Pro", "Enterprise"}, tiers)

	// Word boundary: "Professional" is not the "Pro" tier.
	assert.Empty(t, DetectTiers("Professional services and Businesses welcome"))
}

func TestFindPricingLink(t *testing.T) {
	html := `<nav><a href="/about">About</a><a href="/pricing">Pricing</a></nav>`
	got := FindPricingLink(html, "https://acme.example/home")
	assert.Equal(t, "https://acme.example/pricing", got)

	assert.Equal(t, "", FindPricingLink(`<a href="/about">About</a>`, "https://acme.example"))
}

func TestAnalyze(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body>
			<h1>Acme Pay</h1>
			<p>Limited time offer! Free trial for 14 days.</p>
			<a href="/pricing">Pricing</a>
		</body></html>`)
	})
	mux.HandleFunc("/pricing", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body>Basic ₹99/mo, Pro ₹299/mo. Free plan available.</body></html>`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	intel := testScraper().Analyze(context.Background(), ts.URL, io.Discard)

	require.True(t, intel.Accessible)
	assert.Contains(t, intel.DarkPatterns, "limited time")
	assert.True(t, intel.HasTrial)
	assert.Equal(t, ts.URL+"/pricing", intel.PricingURL)
	assert.Contains(t, intel.Prices, "₹99/mo")
	assert.Contains(t, intel.Prices, "₹299/mo")
	assert.Contains(t, intel.Tiers, "Basic")
	assert.Contains(t, intel.Tiers, "Pro")
}

func TestAnalyzeInaccessibleSite(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	var warnings strings.Builder
	intel := testScraper().Analyze(context.Background(), ts.URL, &warnings)

	assert.False(t, intel.Accessible)
	assert.Empty(t, intel.DarkPatterns)
	assert.Contains(t, warnings.String(), "could not reach")
}
