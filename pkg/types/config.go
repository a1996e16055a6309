// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "market-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the web search collaborator.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the search API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the per-query result cap (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// CommunityDomains are prioritized when searching for user complaints.
	CommunityDomains []string `json:"community_domains" yaml:"community_domains"`

	// RegionalDomains are prioritized when searching for market statistics.
	RegionalDomains []string `json:"regional_domains" yaml:"regional_domains"`
}

// AIConfig holds settings for the language-generation collaborator.
type AIConfig struct {
	// Model is the model identifier sent to the chat-completions API.
	Model string `json:"model" yaml:"model"`

	// BaseURL is the API root of an OpenAI-compatible endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature controls sampling randomness.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ScrapeConfig holds settings for the competitor page scraper.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// DarkPatternKeywords are the phrases flagged as deceptive UX signals.
	DarkPatternKeywords []string `json:"dark_pattern_keywords" yaml:"dark_pattern_keywords"`

	// MaxCompetitors caps how many competitor sites one pass visits (default 5).
	MaxCompetitors int `json:"max_competitors" yaml:"max_competitors"`
}

// ScoringConfig holds the deterministic decision thresholds. It is built once
// at run start and passed read-only to every component that gates on it.
type ScoringConfig struct {
	// TrustWeights maps a host, a dotted TLD suffix (e.g. ".gov.in"), or a
	// substring key to a 0-10 trust weight. The "default" key is the weight
	// for unknown hosts.
	TrustWeights map[string]int `json:"trust_weights" yaml:"trust_weights"`

	// MinConfidence is the accumulated score a claim needs to count as
	// verified (default 15).
	MinConfidence int `json:"min_confidence" yaml:"min_confidence"`

	// MinVerifiedClaims is how many individually verified claims a batch
	// needs for the run-level verdict (default 3).
	MinVerifiedClaims int `json:"min_verified_claims" yaml:"min_verified_claims"`

	// MaxPainValence is the sentiment ceiling for genuine pain: only
	// complaints scoring strictly below it pass (default -0.3).
	MaxPainValence float64 `json:"max_pain_valence" yaml:"max_pain_valence"`

	// MinLTVCACRatio is the viability threshold for the business case (default 3.0).
	MinLTVCACRatio float64 `json:"min_ltv_cac_ratio" yaml:"min_ltv_cac_ratio"`

	// RICE bucket breakpoints.
	ScoreBreakpointHigh float64 `json:"score_breakpoint_high" yaml:"score_breakpoint_high"`
	ScoreBreakpointLow  float64 `json:"score_breakpoint_low" yaml:"score_breakpoint_low"`
	EffortBreakpoint    int     `json:"effort_breakpoint" yaml:"effort_breakpoint"`
}

// WorkflowConfig bounds the two feedback loops. The budgets are independent:
// each gate stage increments and checks only its own counter.
type WorkflowConfig struct {
	// MaxVerificationRounds caps re-entries into discovery (default 3).
	MaxVerificationRounds int `json:"max_verification_rounds" yaml:"max_verification_rounds"`

	// MaxViabilityRounds caps re-entries into feature ideation (default 2).
	MaxViabilityRounds int `json:"max_viability_rounds" yaml:"max_viability_rounds"`
}

// ReportFormat selects the report artifact format.
type ReportFormat string

const (
	ReportMarkdown ReportFormat = "markdown"
	ReportHTML     ReportFormat = "html"
)

// ReportConfig holds settings for report compilation.
type ReportConfig struct {
	// OutputDir is the directory for report artifacts (e.g. "output/reports/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Format selects markdown or html. Markdown is always written; html adds
	// a rendered copy alongside it.
	Format ReportFormat `json:"format" yaml:"format"`
}

// StoreConfig holds settings for the run archive.
type StoreConfig struct {
	// DataDir is the directory containing the archive database (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Segment describes one target-market segment used for persona synthesis.
type Segment struct {
	Description string `json:"description" yaml:"description"`
	Population  string `json:"population" yaml:"population"`
	Income      string `json:"income" yaml:"income"`
}

// PipelineConfig groups all component configurations for one run.
type PipelineConfig struct {
	Search   SearchConfig       `json:"search" yaml:"search"`
	GenAI    AIConfig           `json:"genai" yaml:"genai"`
	Scrape   ScrapeConfig       `json:"scrape" yaml:"scrape"`
	Scoring  ScoringConfig      `json:"scoring" yaml:"scoring"`
	Workflow WorkflowConfig     `json:"workflow" yaml:"workflow"`
	Report   ReportConfig       `json:"report" yaml:"report"`
	Store    StoreConfig        `json:"store" yaml:"store"`
	Segments map[string]Segment `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// DefaultScoringConfig returns the curated trust table and decision thresholds.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		TrustWeights: map[string]int{
			// Government and academic.
			".gov.in": 10,
			".gov":    9,
			".edu":    9,
			".ac.in":  9,

			// Top-tier business news.
			"economictimes.com":     8,
			"livemint.com":          8,
			"moneycontrol.com":      8,
			"business-standard.com": 8,
			"reuters.com":           8,
			"bloomberg.com":         8,

			// Startup and tech press.
			"inc42.com":      7,
			"yourstory.com":  7,
			"entrackr.com":   7,
			"techcrunch.com": 7,
			"forbes.com":     7,

			// Community platforms: useful for sentiment, weak for statistics.
			"reddit.com":  4,
			"twitter.com": 3,
			"quora.com":   3,

			"default": 2,
		},
		MinConfidence:       15,
		MinVerifiedClaims:   3,
		MaxPainValence:      -0.3,
		MinLTVCACRatio:      3.0,
		ScoreBreakpointHigh: 5000,
		ScoreBreakpointLow:  1000,
		EffortBreakpoint:    4,
	}
}

// DefaultPipelineConfig returns the full default configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{Timeout: 30 * time.Second, UserAgent: "market-engine/0.1"},
			MaxResults: 5,
			CommunityDomains: []string{
				"reddit.com", "twitter.com", "quora.com",
			},
			RegionalDomains: []string{
				"inc42.com", "yourstory.com", "economictimes.com",
				"livemint.com", "moneycontrol.com", "entrackr.com",
			},
		},
		GenAI: AIConfig{
			Model:       "sonar-pro",
			BaseURL:     "https://api.perplexity.ai",
			Temperature: 0.7,
			MaxRetries:  3,
		},
		Scrape: ScrapeConfig{
			HTTPConfig: HTTPConfig{Timeout: 10 * time.Second, UserAgent: "market-engine/0.1"},
			DarkPatternKeywords: []string{
				"call to cancel",
				"contact support to cancel",
				"cancellation fee",
				"no refund",
				"auto-renew",
				"limited time",
				"act now",
				"only x left",
				"others are viewing",
				"price increase",
			},
			MaxCompetitors: 5,
		},
		Scoring: DefaultScoringConfig(),
		Workflow: WorkflowConfig{
			MaxVerificationRounds: 3,
			MaxViabilityRounds:    2,
		},
		Report: ReportConfig{
			OutputDir: "output/reports",
			Format:    ReportMarkdown,
		},
		Store: StoreConfig{DataDir: "data"},
		Segments: map[string]Segment{
			"India 1": {
				Description: "English-first, high-income, tech-savvy urban professionals",
				Population:  "50M-100M",
				Income:      "> ₹15 LPA",
			},
			"India 2": {
				Description: "UPI-native, Hinglish-preferred, value-driven middle class",
				Population:  "100M-300M",
				Income:      "₹3-15 LPA",
			},
			"India 3": {
				Description: "Offline-to-online, trust-based commerce, vernacular-first",
				Population:  "500M+",
				Income:      "< ₹3 LPA",
			},
		},
	}
}
