package edgar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-service/internal/model"
	"github.com/sells-group/edgar-service/internal/xbrl"
)

// CompanyFacts retrieves the complete tagged fact history for a company
// from the EDGAR XBRL frames API.
func (c *Client) CompanyFacts(ctx context.Context, cik int64) (*xbrl.CompanyFacts, error) {
	u := fmt.Sprintf("%s/companyfacts/CIK%010d.json", xbrlAPIURL, cik)
	body, err := c.get(ctx, u)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, model.NewNotFound("company facts", fmt.Sprintf("CIK %d", cik))
		}
		return nil, eris.Wrap(err, "edgar: fetch company facts")
	}
	return xbrl.ParseCompanyFacts(bytes.NewReader(body))
}

// ConceptHistory retrieves every reported value of one concept for a
// company across all filings, flattened and deterministically ordered.
func (c *Client) ConceptHistory(ctx context.Context, cik int64, taxonomy, concept string) ([]model.Fact, error) {
	u := fmt.Sprintf("%s/companyconcept/CIK%010d/%s/%s.json", xbrlAPIURL, cik, taxonomy, concept)
	body, err := c.get(ctx, u)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, model.NewNotFound("concept", fmt.Sprintf("%s:%s for CIK %d", taxonomy, concept, cik))
		}
		return nil, eris.Wrap(err, "edgar: fetch concept history")
	}

	var resp struct {
		Label       string                      `json:"label"`
		Description string                      `json:"description"`
		Units       map[string][]xbrl.UnitValue `json:"units"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		return nil, eris.Wrap(err, "edgar: decode concept history")
	}
	return xbrl.ConceptFacts(taxonomy, concept, xbrl.Concept{
		Label:       resp.Label,
		Description: resp.Description,
		Units:       resp.Units,
	}), nil
}

// FilingFacts parses the XBRL instance document of a filing into facts.
// A filing without a parseable instance is reported as malformed so the
// caller can mark data explicitly unavailable instead of guessing.
func (c *Client) FilingFacts(ctx context.Context, cik int64, accession string) ([]model.Fact, error) {
	files, err := c.FilingFiles(ctx, cik, accession)
	if err != nil {
		return nil, err
	}

	name := instanceDocument(files)
	if name == "" {
		return nil, &model.MalformedFilingError{
			Accession: accession,
			Reason:    "no XBRL instance document in filing archive",
		}
	}

	raw, err := c.FileContents(ctx, cik, accession, name)
	if err != nil {
		return nil, err
	}

	inst, err := xbrl.ParseInstance(raw)
	if err != nil {
		return nil, &model.MalformedFilingError{
			Accession: accession,
			Reason:    eris.ToString(err, false),
		}
	}
	return inst.Facts, nil
}

// instanceDocument picks the XBRL instance out of a filing's file list.
// Modern inline-XBRL filings carry a *_htm.xml extraction; older filings
// name the instance after the ticker and period. Exhibits, schemas, and
// linkbases are skipped.
func instanceDocument(files []string) string {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	for _, name := range sorted {
		if strings.HasSuffix(name, "_htm.xml") {
			return name
		}
	}
	for _, name := range sorted {
		if !strings.HasSuffix(name, ".xml") {
			continue
		}
		lower := strings.ToLower(name)
		if strings.Contains(lower, "_cal") || strings.Contains(lower, "_def") ||
			strings.Contains(lower, "_lab") || strings.Contains(lower, "_pre") ||
			strings.Contains(lower, "filingsummary") {
			continue
		}
		return name
	}
	return ""
}
