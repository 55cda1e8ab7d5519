package service

import "strings"

// ToolGuidance describes the operations best suited to one form type.
type ToolGuidance struct {
	FormType    string   `json:"form_type"`
	Description string   `json:"description"`
	Tools       []string `json:"tools"`
	Tips        []string `json:"tips"`
}

// guidanceTable maps base form types to operation recommendations. The
// table is static so the operation is deterministic and free of upstream
// calls.
var guidanceTable = map[string]ToolGuidance{
	"10-K": {
		FormType:    "10-K",
		Description: "Annual report with audited financial statements, business overview, and risk factors.",
		Tools: []string{
			"get_financial_statements",
			"get_key_metrics",
			"get_segment_data",
			"get_filing_sections",
			"get_filing_content",
			"compare_periods",
		},
		Tips: []string{
			"Use statement_type=all to retrieve income, balance, and cashflow together.",
			"Segment data (geographic, product, business) is usually only tagged in annual reports.",
			"compare_periods charts a metric across fiscal years without re-fetching each filing.",
		},
	},
	"10-Q": {
		FormType:    "10-Q",
		Description: "Quarterly report with unaudited interim financial statements.",
		Tools: []string{
			"get_financial_statements",
			"get_key_metrics",
			"get_filing_sections",
			"get_filing_content",
		},
		Tips: []string{
			"Quarterly filings tag fewer concepts than annual reports; expect more not-available markers.",
			"The mda section carries management's discussion of the quarter.",
		},
	},
	"8-K": {
		FormType:    "8-K",
		Description: "Current report announcing material events between periodic reports.",
		Tools: []string{
			"analyze_8k",
			"get_filing_content",
			"get_recent_filings",
		},
		Tips: []string{
			"Item 2.02 filings carry earnings releases; the exhibit, not the 8-K body, holds the figures.",
			"analyze_8k joins declared item codes with their standard descriptions and text excerpts.",
		},
	},
	"4": {
		FormType:    "4",
		Description: "Statement of changes in beneficial ownership filed by insiders.",
		Tools: []string{
			"get_insider_transactions",
			"get_form4_details",
			"analyze_insider_transactions",
			"get_insider_sentiment",
			"get_insider_summary",
		},
		Tips: []string{
			"Transaction code P is an open-market purchase, S a sale; A/D flags acquisition vs disposition.",
			"get_insider_sentiment buckets activity by calendar month for trend reading.",
		},
	},
	"3": {
		FormType:    "3",
		Description: "Initial statement of beneficial ownership filed when a person becomes an insider.",
		Tools: []string{
			"get_insider_transactions",
			"get_form4_details",
		},
		Tips: []string{
			"Form 3 reports holdings, not transactions; share totals reflect the initial position.",
		},
	},
	"5": {
		FormType:    "5",
		Description: "Annual statement of ownership changes exempt from or missed by Form 4 reporting.",
		Tools: []string{
			"get_insider_transactions",
			"get_form4_details",
		},
		Tips: []string{
			"Form 5 arrives within 45 days of fiscal year end and often carries late-reported transactions.",
		},
	},
	"DEF 14A": {
		FormType:    "DEF 14A",
		Description: "Definitive proxy statement with executive compensation and governance detail.",
		Tools: []string{
			"get_filing_content",
			"get_recent_filings",
		},
		Tips: []string{
			"Proxy statements are narrative documents; section extraction does not apply.",
		},
	},
}

// generalGuidance is the fallback for unrecognized forms.
var generalGuidance = ToolGuidance{
	FormType:    "general",
	Description: "General exploration across filings and tagged financial data.",
	Tools: []string{
		"search_companies",
		"get_company_info",
		"get_recent_filings",
		"get_company_facts",
		"discover_metrics",
		"discover_xbrl_concepts",
	},
	Tips: []string{
		"Resolve the company first; every other operation takes the resolved identifier.",
		"discover_metrics lists which concepts a company actually tags before you ask for values.",
	},
}

// GetRecommendedTools returns static operation guidance for a form type,
// the general entry when the form is unknown or empty.
func (s *Service) GetRecommendedTools(formType string) Result {
	form := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(formType)), "/A")
	guidance, found := guidanceTable[form]
	if !found {
		guidance = generalGuidance
	}
	return ok(map[string]any{
		"requested_form": formType,
		"guidance":       guidance,
	})
}
