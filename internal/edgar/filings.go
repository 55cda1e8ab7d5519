package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-service/internal/model"
)

// submissionsResponse mirrors the EDGAR submissions JSON: column-oriented
// filing arrays alongside the entity profile.
type submissionsResponse struct {
	CIK            json.Number `json:"cik"`
	EntityType     string      `json:"entityType"`
	SIC            string      `json:"sic"`
	SICDescription string      `json:"sicDescription"`
	Name           string      `json:"name"`
	Tickers        []string    `json:"tickers"`
	Exchanges      []string    `json:"exchanges"`
	Filings        struct {
		Recent filingColumns `json:"recent"`
		Files  []struct {
			Name string `json:"name"`
		} `json:"files"`
	} `json:"filings"`
}

type filingColumns struct {
	AccessionNumber []string `json:"accessionNumber"`
	Form            []string `json:"form"`
	FilingDate      []string `json:"filingDate"`
	ReportDate      []string `json:"reportDate"`
	Items           []string `json:"items"`
	PrimaryDocument []string `json:"primaryDocument"`
	IsXBRL          []int    `json:"isXBRL"`
}

// Filings retrieves every filing recorded for a company, newest first with
// accession number as the deterministic tie-break. Supplemental submission
// pages are followed so older filings are not silently truncated.
func (c *Client) Filings(ctx context.Context, cik int64) ([]model.FilingRef, error) {
	sub, err := c.submissions(ctx, cik)
	if err != nil {
		return nil, err
	}

	refs := columnsToRefs(cik, sub.Name, &sub.Filings.Recent)
	for _, file := range sub.Filings.Files {
		cols, err := c.supplementalSubmissions(ctx, file.Name)
		if err != nil {
			return nil, err
		}
		refs = append(refs, columnsToRefs(cik, sub.Name, cols)...)
	}

	sortFilings(refs)
	return refs, nil
}

func columnsToRefs(cik int64, name string, cols *filingColumns) []model.FilingRef {
	n := len(cols.AccessionNumber)
	refs := make([]model.FilingRef, 0, n)
	for i := 0; i < n; i++ {
		accession := cols.AccessionNumber[i]
		if accession == "" {
			continue
		}
		ref := model.FilingRef{
			CIK:             cik,
			CompanyName:     name,
			AccessionNumber: accession,
			FormType:        columnAt(cols.Form, i),
			FilingDate:      model.ParseDate(columnAt(cols.FilingDate, i)),
			ReportDate:      model.ParseDate(columnAt(cols.ReportDate, i)),
			Items:           columnAt(cols.Items, i),
			PrimaryDocument: columnAt(cols.PrimaryDocument, i),
		}
		if i < len(cols.IsXBRL) {
			ref.IsXBRL = cols.IsXBRL[i] == 1
		}
		ref.SourceURL = model.ArchiveURL(cik, accession, ref.PrimaryDocument)
		refs = append(refs, ref)
	}
	return refs
}

// columnAt returns the string at index i, or empty if out of bounds.
// EDGAR's column arrays are not guaranteed to be equal length.
func columnAt(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

func sortFilings(refs []model.FilingRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].FilingDate != refs[j].FilingDate {
			return refs[i].FilingDate.After(refs[j].FilingDate)
		}
		return refs[i].AccessionNumber > refs[j].AccessionNumber
	})
}

// ftsResponse mirrors the EDGAR full-text search API response.
type ftsResponse struct {
	Hits struct {
		Hits []struct {
			ID     string `json:"_id"`
			Source struct {
				CIKs         []string `json:"ciks"`
				DisplayNames []string `json:"display_names"`
				FileDate     string   `json:"file_date"`
				FormType     string   `json:"form_type"`
				AccessionNo  string   `json:"accession_no"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchFilings finds recent filings across all companies via the EDGAR
// full-text search index, constrained by form type and date range.
func (c *Client) SearchFilings(ctx context.Context, formType string, from, to model.Date, limit int) ([]model.FilingRef, error) {
	params := url.Values{}
	params.Set("q", `""`)
	if formType != "" {
		params.Set("forms", formType)
	}
	if !from.IsZero() {
		params.Set("startdt", from.String())
	}
	if !to.IsZero() {
		params.Set("enddt", to.String())
	}

	body, err := c.get(ctx, ftsURL+"?"+params.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "edgar: full-text search")
	}

	var resp ftsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "edgar: decode full-text search")
	}

	refs := make([]model.FilingRef, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		src := hit.Source
		if src.AccessionNo == "" || len(src.CIKs) == 0 {
			continue
		}
		cik, err := strconv.ParseInt(strings.TrimLeft(src.CIKs[0], "0"), 10, 64)
		if err != nil {
			continue
		}
		name := ""
		if len(src.DisplayNames) > 0 {
			name = src.DisplayNames[0]
		}
		refs = append(refs, model.FilingRef{
			CIK:             cik,
			CompanyName:     name,
			FormType:        src.FormType,
			FilingDate:      model.ParseDate(src.FileDate),
			AccessionNumber: src.AccessionNo,
			SourceURL:       model.ArchiveURL(cik, src.AccessionNo, ""),
		})
	}

	sortFilings(refs)
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

// FilingFiles lists the documents inside a filing's archive directory.
func (c *Client) FilingFiles(ctx context.Context, cik int64, accession string) ([]string, error) {
	u := fmt.Sprintf("%s/%d/%s/index.json", archivesURL, cik, model.NormalizeAccession(accession))
	body, err := c.get(ctx, u)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, model.NewNotFound("filing", accession)
		}
		return nil, eris.Wrap(err, "edgar: fetch filing index")
	}

	var dir struct {
		Directory struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"item"`
		} `json:"directory"`
	}
	if err := json.Unmarshal(body, &dir); err != nil {
		return nil, eris.Wrap(err, "edgar: decode filing index")
	}

	names := make([]string, 0, len(dir.Directory.Items))
	for _, item := range dir.Directory.Items {
		if item.Name != "" {
			names = append(names, item.Name)
		}
	}
	return names, nil
}

// FileContents retrieves one document from a filing's archive directory.
func (c *Client) FileContents(ctx context.Context, cik int64, accession, name string) ([]byte, error) {
	u := fmt.Sprintf("%s/%d/%s/%s", archivesURL, cik, model.NormalizeAccession(accession), name)
	body, err := c.get(ctx, u)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, model.NewNotFound("document", name)
		}
		return nil, eris.Wrapf(err, "edgar: fetch document %s", name)
	}
	return body, nil
}
