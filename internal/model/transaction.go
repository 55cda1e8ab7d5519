package model

import "encoding/json"

// Relationship captures the reporting owner's relationship flags from an
// ownership filing.
type Relationship struct {
	IsDirector      bool   `json:"is_director"`
	IsOfficer       bool   `json:"is_officer"`
	IsTenPctOwner   bool   `json:"is_ten_percent_owner"`
	IsOther         bool   `json:"is_other"`
	OfficerTitle    string `json:"officer_title,omitempty"`
	OtherText       string `json:"other_text,omitempty"`
}

// InsiderTransaction is one reported ownership-change line. Shares and
// price preserve the filed lexemes; TotalValue is computed with exact
// decimal arithmetic only when both inputs are literally present.
type InsiderTransaction struct {
	FilerName        string      `json:"filer_name"`
	Relationship     Relationship `json:"relationship"`
	TransactionDate  Date        `json:"transaction_date"`
	SecurityTitle    string      `json:"security_title"`
	Shares           json.Number `json:"shares,omitempty"`
	PricePerShare    json.Number `json:"price_per_share,omitempty"`
	TransactionCode  string      `json:"transaction_code,omitempty"`
	Acquired         bool        `json:"acquired"`
	SharesOwnedAfter json.Number `json:"shares_owned_after,omitempty"`
	Derivative       bool        `json:"derivative"`
	TotalValue       json.Number `json:"total_value,omitempty"`
	TotalValueMarker string      `json:"total_value_marker,omitempty"`
	FilingRef        *FilingRef  `json:"filing_ref"`
}

// Owner is one reporting owner on an ownership filing. Joint filings
// carry several.
type Owner struct {
	Name         string       `json:"name"`
	CIK          string       `json:"cik"`
	Relationship Relationship `json:"relationship"`
}

// Form4Details is the full structured record of one Form-4-equivalent
// filing: every reported derivative and non-derivative line plus the
// filers' relationships and footnotes. OwnerName, OwnerCIK, and
// Relationship echo the first reporting owner; Owners lists all of them.
type Form4Details struct {
	Ref             FilingRef            `json:"ref"`
	IssuerName      string               `json:"issuer_name"`
	IssuerCIK       string               `json:"issuer_cik"`
	OwnerName       string               `json:"owner_name"`
	OwnerCIK        string               `json:"owner_cik"`
	Relationship    Relationship         `json:"relationship"`
	Owners          []Owner              `json:"owners,omitempty"`
	NonDerivative   []InsiderTransaction `json:"non_derivative_transactions"`
	Derivative      []InsiderTransaction `json:"derivative_transactions"`
	Footnotes       map[string]string    `json:"footnotes,omitempty"`
	PeriodOfReport  Date                 `json:"period_of_report,omitempty"`
}

// TransactionSummary aggregates insider activity over a lookback window.
// Counts and totals come from exact integer/decimal arithmetic.
type TransactionSummary struct {
	BuyCount          int         `json:"buy_count"`
	SellCount         int         `json:"sell_count"`
	UniqueFilers      int         `json:"unique_filers"`
	TotalSharesBought json.Number `json:"total_shares_bought"`
	TotalSharesSold   json.Number `json:"total_shares_sold"`
	FilingRefs        []FilingRef `json:"filing_refs"`
}

// MonthBucket is one calendar-month rollup of insider activity.
type MonthBucket struct {
	Month            string      `json:"month"`
	NetShares        json.Number `json:"net_shares"`
	TransactionCount int         `json:"transaction_count"`
}

// SentimentAnalysis is the deterministic classification of bucketed
// insider activity. TrendLabel derives solely from bucket signs and
// magnitudes; no market data is consulted.
type SentimentAnalysis struct {
	PeriodBuckets []MonthBucket `json:"period_buckets"`
	TrendLabel    string        `json:"trend_label"`
}
