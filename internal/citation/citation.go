// Package citation attaches verifiable source references to every result
// that leaves the service. Every successful payload carries the filing's
// date, form type, accession number, and SEC archive URL so callers can
// independently verify each data point.
package citation

import "github.com/sells-group/edgar-service/internal/model"

// Disclaimer is the fixed attribution string merged into every cited
// result. The wording is stable: results must be byte-identical across
// identical calls.
const Disclaimer = "Data extracted directly from SEC EDGAR filings with no modifications, rounding, or estimates. Verify at the source URL."

// Reference is the filing_reference block carried by every top-level
// result object.
type Reference struct {
	FormType        string     `json:"form_type"`
	FilingDate      model.Date `json:"filing_date"`
	AccessionNumber string     `json:"accession_number"`
	SourceURL       string     `json:"source_url"`
	CompanyName     string     `json:"company_name,omitempty"`
}

// Build creates a Reference from a FilingRef.
func Build(ref model.FilingRef) Reference {
	url := ref.SourceURL
	if url == "" {
		url = model.ArchiveURL(ref.CIK, ref.AccessionNumber, ref.PrimaryDocument)
	}
	return Reference{
		FormType:        ref.FormType,
		FilingDate:      ref.FilingDate,
		AccessionNumber: ref.AccessionNumber,
		SourceURL:       url,
		CompanyName:     ref.CompanyName,
	}
}

// Attach merges the filing_reference block and disclaimer into a payload
// map. Overwrite semantics: attaching twice replaces, never appends, so
// the step is idempotent.
func Attach(payload map[string]any, ref model.FilingRef) map[string]any {
	if payload == nil {
		payload = make(map[string]any)
	}
	payload["filing_reference"] = Build(ref)
	payload["disclaimer"] = Disclaimer
	return payload
}
