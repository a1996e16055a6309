// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"time"

	"github.com/google/uuid"
)

// PainCandidate is an unverified pain point surfaced by discovery search.
// Candidates are never mutated once recorded; the verification gate filters
// and enriches them into VerifiedPain records.
type PainCandidate struct {
	// Pain describes the problem users face, in one sentence.
	Pain string `json:"pain" yaml:"pain"`

	// RawQuote is the user complaint text the pain was distilled from.
	// Valence scoring prefers this over the distilled summary.
	RawQuote string `json:"raw_quote,omitempty" yaml:"raw_quote,omitempty"`

	// Stat is numerical evidence backing the pain, if any (e.g. "67% of users...").
	Stat string `json:"stat,omitempty" yaml:"stat,omitempty"`

	// Sources lists URLs supporting the claim.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Year is the year of the cited data, 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Valence is the lexicon compound sentiment score in [-1, 1].
	Valence float64 `json:"valence" yaml:"valence"`

	// GenuinePain reports whether the valence cleared the pain threshold.
	GenuinePain bool `json:"genuine_pain" yaml:"genuine_pain"`
}

// VerifiedPain is a pain point that cleared the confidence gate: it carries a
// statistic, cited sources, and the score breakdown that verified it.
type VerifiedPain struct {
	Pain    string   `json:"pain" yaml:"pain"`
	Stat    string   `json:"stat" yaml:"stat"`
	Sources []string `json:"sources" yaml:"sources"`
	Year    int      `json:"year,omitempty" yaml:"year,omitempty"`

	// Valence is the sentiment score carried over from the candidate.
	Valence float64 `json:"valence" yaml:"valence"`

	// Confidence is the accumulated trust score that passed the threshold.
	Confidence int `json:"confidence" yaml:"confidence"`

	// SourceWeights maps each source host to its trust weight, for explainability.
	SourceWeights map[string]int `json:"source_weights,omitempty" yaml:"source_weights,omitempty"`
}

// Competitor holds competitive intelligence on a single rival product.
type Competitor struct {
	Name     string   `json:"name" yaml:"name"`
	URL      string   `json:"url,omitempty" yaml:"url,omitempty"`
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`

	// BestAt is what the competitor does exceptionally well.
	BestAt string `json:"best_at,omitempty" yaml:"best_at,omitempty"`

	// Lag is where the competitor is slow to innovate.
	Lag string `json:"lag,omitempty" yaml:"lag,omitempty"`

	// Lack is what the competitor is missing entirely.
	Lack string `json:"lack,omitempty" yaml:"lack,omitempty"`

	// Gap is the opportunity their weakness leaves open.
	Gap string `json:"gap,omitempty" yaml:"gap,omitempty"`

	// DarkPatterns lists deceptive UX signals found on their site.
	DarkPatterns []string `json:"dark_patterns,omitempty" yaml:"dark_patterns,omitempty"`

	// SuspicionScore summarizes dark-pattern density, 0-10.
	SuspicionScore int `json:"suspicion_score,omitempty" yaml:"suspicion_score,omitempty"`

	// Prices and Tiers are pricing signals scraped from the competitor site.
	Prices []string `json:"prices,omitempty" yaml:"prices,omitempty"`
	Tiers  []string `json:"tiers,omitempty" yaml:"tiers,omitempty"`
}

// Persona is a synthesized target-user profile.
type Persona struct {
	Name          string `json:"name" yaml:"name"`
	Segment       string `json:"segment" yaml:"segment"`
	AgeRange      string `json:"age_range,omitempty" yaml:"age_range,omitempty"`
	IncomeBracket string `json:"income_bracket,omitempty" yaml:"income_bracket,omitempty"`

	// TrustDeficit rates how skeptical the persona is of new products, 1-10.
	TrustDeficit int `json:"trust_deficit" yaml:"trust_deficit"`

	LanguagePreference string `json:"language_preference,omitempty" yaml:"language_preference,omitempty"`
	TechComfort        string `json:"tech_comfort,omitempty" yaml:"tech_comfort,omitempty"`
	Description        string `json:"description,omitempty" yaml:"description,omitempty"`

	// Workaround is how the persona solves the problem today.
	Workaround string `json:"workaround,omitempty" yaml:"workaround,omitempty"`
}

// Feature is a proposed product feature with RICE parameters. RICEScore and
// PriorityRank are derived fields: the prioritization engine recomputes them
// whenever the feature list changes, and no upstream producer may supply them.
type Feature struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// LinkedPain names the verified pain this feature addresses.
	LinkedPain string `json:"linked_pain,omitempty" yaml:"linked_pain,omitempty"`

	// LinkedLack names the competitor lack this feature exploits.
	LinkedLack string `json:"linked_lack,omitempty" yaml:"linked_lack,omitempty"`

	// PersonaTarget names the persona that benefits most.
	PersonaTarget string `json:"persona_target,omitempty" yaml:"persona_target,omitempty"`

	// Reach is the number of users affected per quarter.
	Reach int `json:"reach" yaml:"reach"`

	// Impact is 1 (minimal), 2 (medium), or 3 (massive).
	Impact int `json:"impact" yaml:"impact"`

	// Confidence is how sure we are about reach and impact, in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Effort is the build cost in person-weeks.
	Effort int `json:"effort" yaml:"effort"`

	// RICEScore is (Reach * Impact * Confidence) / Effort. Derived.
	RICEScore float64 `json:"rice_score" yaml:"rice_score"`

	// PriorityRank is the 1-based rank by descending score. Derived.
	PriorityRank int `json:"priority_rank" yaml:"priority_rank"`
}

// Financials holds unit-economics inputs and the metrics derived from them.
type Financials struct {
	// CAC is the customer acquisition cost.
	CAC float64 `json:"cac" yaml:"cac"`

	// ARPU is the average revenue per user per month.
	ARPU float64 `json:"arpu" yaml:"arpu"`

	// GrossMargin is a decimal fraction (0.7 = 70%).
	GrossMargin float64 `json:"gross_margin" yaml:"gross_margin"`

	// ChurnRate is the monthly churn as a decimal fraction.
	ChurnRate float64 `json:"churn_rate" yaml:"churn_rate"`

	// PricingTiers maps tier name to monthly price.
	PricingTiers map[string]float64 `json:"pricing_tiers,omitempty" yaml:"pricing_tiers,omitempty"`

	// LTV is (ARPU * GrossMargin) / ChurnRate. +Inf when churn is zero.
	LTV float64 `json:"ltv" yaml:"ltv"`

	// LTVCACRatio is LTV / CAC, the viability ratio.
	LTVCACRatio float64 `json:"ltv_cac_ratio" yaml:"ltv_cac_ratio"`

	// PaybackMonths is CAC / (ARPU * GrossMargin).
	PaybackMonths float64 `json:"payback_months" yaml:"payback_months"`

	// MonthlyContribution is ARPU * GrossMargin.
	MonthlyContribution float64 `json:"monthly_contribution" yaml:"monthly_contribution"`
}

// ProjectionRow is one month of the deterministic P&L simulation.
type ProjectionRow struct {
	Month             int     `json:"month" yaml:"month"`
	Customers         int     `json:"customers" yaml:"customers"`
	NewCustomers      int     `json:"new_customers" yaml:"new_customers"`
	Churned           int     `json:"churned" yaml:"churned"`
	Revenue           float64 `json:"revenue" yaml:"revenue"`
	GrossProfit       float64 `json:"gross_profit" yaml:"gross_profit"`
	CACSpend          float64 `json:"cac_spend" yaml:"cac_spend"`
	Net               float64 `json:"net" yaml:"net"`
	CumulativeRevenue float64 `json:"cumulative_revenue" yaml:"cumulative_revenue"`
	CumulativeProfit  float64 `json:"cumulative_profit" yaml:"cumulative_profit"`
}

// BusinessModel is a lightweight business-model canvas.
type BusinessModel struct {
	KeyPartners    []string `json:"key_partners,omitempty" yaml:"key_partners,omitempty"`
	ValueProps     []string `json:"value_props,omitempty" yaml:"value_props,omitempty"`
	CostStructure  []string `json:"cost_structure,omitempty" yaml:"cost_structure,omitempty"`
	RevenueStreams []string `json:"revenue_streams,omitempty" yaml:"revenue_streams,omitempty"`
}

// MarketState is the single shared record threaded through every pipeline
// stage. The workflow runner owns the one instance per run; stages read it and
// return declarative StateUpdate patches, never mutating it in place.
type MarketState struct {
	// RunID identifies the run in the archive.
	RunID string `json:"run_id" yaml:"run_id"`

	// CreatedAt is the run start time.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// RawIdea and TargetRegion are the run inputs, immutable after creation.
	RawIdea      string `json:"raw_idea" yaml:"raw_idea"`
	TargetRegion string `json:"target_region" yaml:"target_region"`

	// Research artifacts.
	RawPains         []PainCandidate `json:"raw_pains,omitempty" yaml:"raw_pains,omitempty"`
	VerifiedPains    []VerifiedPain  `json:"verified_pains,omitempty" yaml:"verified_pains,omitempty"`
	ProblemStatement string          `json:"problem_statement,omitempty" yaml:"problem_statement,omitempty"`
	DeltaFourLogic   string          `json:"delta_four_logic,omitempty" yaml:"delta_four_logic,omitempty"`

	// Competitive artifacts.
	Competitors []Competitor `json:"competitors,omitempty" yaml:"competitors,omitempty"`
	MarketGaps  []string     `json:"market_gaps,omitempty" yaml:"market_gaps,omitempty"`
	Positioning string       `json:"positioning,omitempty" yaml:"positioning,omitempty"`

	Personas []Persona `json:"personas,omitempty" yaml:"personas,omitempty"`

	// Feature artifacts. FeatureBuckets maps bucket name to feature count.
	Features         []Feature      `json:"features,omitempty" yaml:"features,omitempty"`
	FeatureBuckets   map[string]int `json:"feature_buckets,omitempty" yaml:"feature_buckets,omitempty"`
	ValidationIssues []string       `json:"validation_issues,omitempty" yaml:"validation_issues,omitempty"`

	// Financial artifacts.
	BusinessModel BusinessModel   `json:"business_model,omitempty" yaml:"business_model,omitempty"`
	RevenueModel  Financials      `json:"revenue_model,omitempty" yaml:"revenue_model,omitempty"`
	Projection    []ProjectionRow `json:"projection,omitempty" yaml:"projection,omitempty"`

	// Control fields. The two round counters are independent: each is
	// incremented only by its own gate stage and compared against its own
	// ceiling.
	Verified           bool `json:"verified" yaml:"verified"`
	FinanciallyViable  bool `json:"financially_viable" yaml:"financially_viable"`
	VerificationRounds int  `json:"verification_rounds" yaml:"verification_rounds"`
	ViabilityRounds    int  `json:"viability_rounds" yaml:"viability_rounds"`

	// Feedback consumed by the next loop iteration.
	VerificationFeedback string `json:"verification_feedback,omitempty" yaml:"verification_feedback,omitempty"`
	ViabilityFeedback    string `json:"viability_feedback,omitempty" yaml:"viability_feedback,omitempty"`

	// FinalReportPath is the artifact reference set by report compilation.
	FinalReportPath string `json:"final_report_path,omitempty" yaml:"final_report_path,omitempty"`
}

// NewMarketState creates the initial state for a run: inputs set, collections
// empty, counters zeroed.
func NewMarketState(idea, region string) *MarketState {
	return &MarketState{
		RunID:        uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		RawIdea:      idea,
		TargetRegion: region,
	}
}

// StateUpdate is the declarative patch a stage returns. A nil field leaves the
// corresponding MarketState field untouched; a non-nil field replaces the whole
// value (last-writer-wins per key, no deep merge). Slices and maps use nil as
// the absent marker, so a stage that wants to clear a collection returns an
// empty non-nil value.
type StateUpdate struct {
	RawPains         []PainCandidate
	VerifiedPains    []VerifiedPain
	ProblemStatement *string
	DeltaFourLogic   *string

	Competitors []Competitor
	MarketGaps  []string
	Positioning *string

	Personas []Persona

	Features         []Feature
	FeatureBuckets   map[string]int
	ValidationIssues []string

	BusinessModel *BusinessModel
	RevenueModel  *Financials
	Projection    []ProjectionRow

	Verified           *bool
	FinanciallyViable  *bool
	VerificationRounds *int
	ViabilityRounds    *int

	VerificationFeedback *string
	ViabilityFeedback    *string

	FinalReportPath *string
}

// String returns a pointer to s, for building StateUpdate literals.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for building StateUpdate literals.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i, for building StateUpdate literals.
func Int(i int) *int { return &i }
