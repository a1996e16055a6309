// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape gathers competitive intelligence from competitor websites:
// visible page text, dark-pattern signals, and pricing hints. Sites block
// bots and go down all the time, so every probe degrades to "inaccessible"
// rather than failing the stage.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/market-engine/internal/httputil"
	"github.com/pdiddy/market-engine/pkg/types"
)

const (
	// maxPerKeyword caps how much one repeated phrase contributes to the
	// suspicion score, so a single marketing banner cannot max it out.
	maxPerKeyword = 3

	// maxSuspicion is the score ceiling.
	maxSuspicion = 10

	// maxBodyBytes bounds how much of a page is read.
	maxBodyBytes = 512 * 1024
)

// Intel is what one site visit yields.
type Intel struct {
	// Accessible is false when the site could not be fetched; all other
	// fields are zero in that case.
	Accessible bool

	// Text is the visible page text, scripts and markup stripped.
	Text string

	// DarkPatterns lists the deceptive-UX phrases found, in keyword order.
	DarkPatterns []string

	// SuspicionScore summarizes dark-pattern density, 0-10.
	SuspicionScore int

	// Prices are the price strings found on the page, in page order.
	Prices []string

	// Tiers are the pricing tier names detected on the page.
	Tiers []string

	// HasFreeTier and HasTrial are pricing-model signals.
	HasFreeTier bool
	HasTrial    bool

	// PricingURL is the pricing page, when a link to one was found.
	PricingURL string
}

// Scraper fetches and analyzes competitor pages.
type Scraper struct {
	cfg    types.ScrapeConfig
	client *http.Client
}

// NewScraper builds a Scraper from cfg.
func NewScraper(cfg types.ScrapeConfig) *Scraper {
	return &Scraper{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe  = regexp.MustCompile(`\s+`)

	// priceRe matches rupee and dollar amounts with an optional billing
	// period, e.g. "₹499/mo", "Rs. 1,999/year", "$29/month".
	priceRe = regexp.MustCompile(`(?i)(?:₹|Rs\.?\s?|\$)\s?[\d,]+(?:\.\d+)?(?:\s?/\s?(?:monthly|month|mo|annually|yearly|year|yr))?`)

	// pricingHrefRe finds links to a pricing or plans page.
	pricingHrefRe = regexp.MustCompile(`(?i)href="([^"]*(?:pricing|plans)[^"]*)"`)
)

// tierNames are the pricing tier labels recognized on pricing pages.
var tierNames = []string{
	"Free", "Starter", "Basic", "Standard", "Plus", "Pro", "Premium",
	"Business", "Enterprise",
}

// tierRes holds one word-bounded matcher per tier name, so "Professional
// services" does not count as a "Pro" tier.
var tierRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(tierNames))
	for i, name := range tierNames {
		res[i] = regexp.MustCompile(`(?i)\b` + name + `\b`)
	}
	return res
}()

// Analyze visits one competitor site and extracts everything in a single
// pass. A fetch failure yields Intel{Accessible: false}, never an error:
// the stage records what it could see and moves on.
func (s *Scraper) Analyze(ctx context.Context, siteURL string, w io.Writer) Intel {
	page, err := s.fetch(ctx, siteURL)
	if err != nil {
		fmt.Fprintf(w, "warning: could not reach %s: %v\n", siteURL, err)
		return Intel{}
	}

	text := ExtractText(page)
	intel := Intel{
		Accessible: true,
		Text:       text,
	}
	intel.DarkPatterns, intel.SuspicionScore = s.ScanDarkPatterns(text)
	intel.Prices = ExtractPrices(text)
	intel.Tiers = DetectTiers(text)

	lower := strings.ToLower(text)
	intel.HasFreeTier = strings.Contains(lower, "free tier") || strings.Contains(lower, "free plan") ||
		strings.Contains(lower, "free forever")
	intel.HasTrial = strings.Contains(lower, "free trial") || strings.Contains(lower, "trial period")

	if pricingURL := FindPricingLink(page, siteURL); pricingURL != "" && pricingURL != siteURL {
		intel.PricingURL = pricingURL
		if pricingPage, err := s.fetch(ctx, pricingURL); err == nil {
			pricingText := ExtractText(pricingPage)
			intel.Prices = mergeUnique(intel.Prices, ExtractPrices(pricingText))
			intel.Tiers = mergeUnique(intel.Tiers, DetectTiers(pricingText))
		}
	}

	return intel
}

// fetch retrieves one page's HTML, bounded by maxBodyBytes.
func (s *Scraper) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.client, req, 1)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(body), nil
}

// ExtractText strips scripts, styles, and markup from HTML, collapsing
// whitespace to single spaces.
func ExtractText(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = tagRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// ScanDarkPatterns counts configured deceptive-UX phrases in the page text.
// Each keyword contributes at most maxPerKeyword occurrences and the total
// is capped at maxSuspicion, so the score stays comparable across sites.
func (s *Scraper) ScanDarkPatterns(text string) ([]string, int) {
	lower := strings.ToLower(text)

	var found []string
	score := 0
	for _, keyword := range s.cfg.DarkPatternKeywords {
		n := strings.Count(lower, strings.ToLower(keyword))
		if n == 0 {
			continue
		}
		if n > maxPerKeyword {
			n = maxPerKeyword
		}
		found = append(found, keyword)
		score += n
	}
	if score > maxSuspicion {
		score = maxSuspicion
	}
	return found, score
}

// ExtractPrices returns the price strings found in the text, deduplicated,
// in page order.
func ExtractPrices(text string) []string {
	var prices []string
	seen := make(map[string]bool)
	for _, m := range priceRe.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		if seen[m] {
			continue
		}
		seen[m] = true
		prices = append(prices, m)
	}
	return prices
}

// DetectTiers returns the recognized pricing tier names present in the text,
// in canonical order.
func DetectTiers(text string) []string {
	var tiers []string
	for i, name := range tierNames {
		if tierRes[i].MatchString(text) {
			tiers = append(tiers, name)
		}
	}
	return tiers
}

// FindPricingLink returns the first pricing/plans link in the HTML, resolved
// against the page URL. Empty when none is found.
func FindPricingLink(html, pageURL string) string {
	m := pricingHrefRe.FindStringSubmatch(html)
	if m == nil {
		return ""
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(m[1])
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			a = append(a, v)
		}
	}
	return a
}
