package filings

import (
	"regexp"
	"strings"

	"github.com/sells-group/edgar-service/internal/model"
)

// Event is one declared 8-K item with its standard description and the
// text excerpt found at its heading in the filed document.
type Event struct {
	ItemCode    string `json:"item_code"`
	Description string `json:"description"`
	Excerpt     string `json:"excerpt,omitempty"`
}

// eightKItems maps 8-K item codes to their Regulation S-K descriptions.
var eightKItems = map[string]string{
	"1.01": "Entry into a Material Definitive Agreement",
	"1.02": "Termination of a Material Definitive Agreement",
	"1.03": "Bankruptcy or Receivership",
	"1.04": "Mine Safety - Reporting of Shutdowns and Patterns of Violations",
	"2.01": "Completion of Acquisition or Disposition of Assets",
	"2.02": "Results of Operations and Financial Condition",
	"2.03": "Creation of a Direct Financial Obligation",
	"2.04": "Triggering Events That Accelerate or Increase a Direct Financial Obligation",
	"2.05": "Costs Associated with Exit or Disposal Activities",
	"2.06": "Material Impairments",
	"3.01": "Notice of Delisting or Failure to Satisfy a Continued Listing Rule",
	"3.02": "Unregistered Sales of Equity Securities",
	"3.03": "Material Modification to Rights of Security Holders",
	"4.01": "Changes in Registrant's Certifying Accountant",
	"4.02": "Non-Reliance on Previously Issued Financial Statements",
	"5.01": "Changes in Control of Registrant",
	"5.02": "Departure of Directors or Certain Officers; Election of Directors; Appointment of Certain Officers",
	"5.03": "Amendments to Articles of Incorporation or Bylaws; Change in Fiscal Year",
	"5.04": "Temporary Suspension of Trading Under Registrant's Employee Benefit Plans",
	"5.05": "Amendments to the Registrant's Code of Ethics",
	"5.06": "Change in Shell Company Status",
	"5.07": "Submission of Matters to a Vote of Security Holders",
	"5.08": "Shareholder Director Nominations",
	"6.01": "ABS Informational and Computational Material",
	"6.02": "Change of Servicer or Trustee",
	"6.03": "Change in Credit Enhancement or Other External Support",
	"6.04": "Failure to Make a Required Distribution",
	"6.05": "Securities Act Updating Disclosure",
	"7.01": "Regulation FD Disclosure",
	"8.01": "Other Events",
	"9.01": "Financial Statements and Exhibits",
}

// eventExcerptLimit caps the per-item excerpt.
const eventExcerptLimit = 1500

// AnalyzeEvents joins a filing's declared 8-K item codes with the
// standard description table and the text found at each item heading in
// the document. Filings declaring no items return an empty slice.
func AnalyzeEvents(filing *model.Filing) []Event {
	codes := parseItemCodes(filing.Ref.Items)
	if len(codes) == 0 {
		return []Event{}
	}

	events := make([]Event, 0, len(codes))
	for _, code := range codes {
		desc, known := eightKItems[code]
		if !known {
			desc = "Undefined item"
		}
		events = append(events, Event{
			ItemCode:    code,
			Description: desc,
			Excerpt:     itemExcerpt(filing.Document, code),
		})
	}
	return events
}

// parseItemCodes splits the comma-separated submissions items field,
// preserving declared order. EDGAR records both "2.02" and "Item 2.02"
// spellings across vintages.
func parseItemCodes(items string) []string {
	var codes []string
	for _, part := range strings.Split(items, ",") {
		code := strings.TrimSpace(part)
		code = strings.TrimPrefix(code, "Item ")
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// itemExcerpt pulls the text following an item heading in the document,
// stopping at the next item heading.
func itemExcerpt(doc, code string) string {
	if doc == "" {
		return ""
	}
	heading := regexp.MustCompile(`(?i)item\s+` + regexp.QuoteMeta(code))
	locs := heading.FindAllStringIndex(doc, -1)
	if len(locs) == 0 {
		return ""
	}
	// Last occurrence: earlier hits are the cover-page item list.
	start := locs[len(locs)-1][1]
	rest := doc[start:]
	if next := anyItemHeading.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	if len(rest) > eventExcerptLimit {
		rest = rest[:eventExcerptLimit]
	}
	return strings.TrimSpace(rest)
}
