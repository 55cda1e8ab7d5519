package model

import "encoding/json"

// NotAvailable is the explicit marker emitted for any requested data point
// absent from the underlying filing. Missing data is always represented,
// never silently dropped.
const NotAvailable = "not available"

// Fact is a single tagged data point from a filing's structured data.
// Value preserves the literal source lexeme: a filed 37044000000 stays
// 37044000000, never 3.7044e10 and never rounded.
type Fact struct {
	Concept     string            `json:"concept"`
	Namespace   string            `json:"namespace"`
	Value       json.Number       `json:"value"`
	Unit        string            `json:"unit,omitempty"`
	PeriodStart Date              `json:"period_start,omitempty"`
	PeriodEnd   Date              `json:"period_end,omitempty"`
	Instant     Date              `json:"instant,omitempty"`
	ContextID   string            `json:"context_id,omitempty"`
	Decimals    string            `json:"decimals,omitempty"`
	Dimensions  map[string]string `json:"dimensions,omitempty"`
	FiscalYear  int               `json:"fiscal_year,omitempty"`
	Form        string            `json:"form,omitempty"`
	Filed       Date              `json:"filed,omitempty"`
}

// QName returns the namespace-qualified concept name, e.g. "us-gaap:Revenues".
func (f *Fact) QName() string {
	if f.Namespace == "" {
		return f.Concept
	}
	return f.Namespace + ":" + f.Concept
}

// PeriodLabel describes the period a fact applies to: the instant date for
// point-in-time facts, "start to end" for durations.
func (f *Fact) PeriodLabel() string {
	if !f.Instant.IsZero() {
		return f.Instant.String()
	}
	if f.PeriodStart.IsZero() && f.PeriodEnd.IsZero() {
		return ""
	}
	if f.PeriodStart.IsZero() {
		return f.PeriodEnd.String()
	}
	return f.PeriodStart.String() + " to " + f.PeriodEnd.String()
}

// HasDimensions reports whether the fact carries any dimensional qualifier.
// Undimensioned facts belong to the consolidated total, not a segment.
func (f *Fact) HasDimensions() bool { return len(f.Dimensions) > 0 }

// StatementLineItem is one canonical line of a normalized statement. When
// the filing carries no matching tag the Value is the NotAvailable marker
// and MatchedTag is empty; otherwise MatchedTag records which source
// concept satisfied the synonym table, for audit.
type StatementLineItem struct {
	Label      string      `json:"label"`
	Value      json.Number `json:"value,omitempty"`
	Available  bool        `json:"available"`
	Marker     string      `json:"marker,omitempty"`
	Unit       string      `json:"unit,omitempty"`
	Period     string      `json:"period,omitempty"`
	MatchedTag string      `json:"matched_tag,omitempty"`
	Namespace  string      `json:"namespace,omitempty"`
}

// StatementView is a canonical grouping of facts into one statement.
// Items preserve the declared table order so output is deterministic.
type StatementView struct {
	StatementType string              `json:"statement_type"`
	Items         []StatementLineItem `json:"items"`
}

// SegmentValue is one dimensional breakdown entry.
type SegmentValue struct {
	SegmentLabel string      `json:"segment_label"`
	Axis         string      `json:"axis"`
	Member       string      `json:"member"`
	Value        json.Number `json:"value"`
	Unit         string      `json:"unit,omitempty"`
	Period       string      `json:"period"`
}

// YearValue is one entry of a period comparison. Value is nil (null in
// JSON) when no covering filing or matching concept exists for the year;
// the year axis stays contiguous either way.
type YearValue struct {
	Year      int          `json:"year"`
	Value     *json.Number `json:"value"`
	Unit      string       `json:"unit,omitempty"`
	EndDate   Date         `json:"end_date,omitempty"`
	FilingRef *FilingRef   `json:"filing_ref,omitempty"`
}
