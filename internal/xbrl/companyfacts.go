package xbrl

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-service/internal/model"
)

// CompanyFacts represents the EDGAR company facts JSON structure: the
// complete fact history the SEC has tagged for one company.
type CompanyFacts struct {
	CIK        int64                `json:"cik"`
	EntityName string               `json:"entityName"`
	Facts      map[string]Namespace `json:"facts"`
}

// Namespace groups concepts by taxonomy (e.g. "us-gaap", "dei").
type Namespace map[string]Concept

// Concept is a single tagged concept with its units and values.
type Concept struct {
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	Units       map[string][]UnitValue `json:"units"`
}

// UnitValue is a single data point. Val stays a json.Number so the filed
// lexeme survives decode and re-encode byte-identically.
type UnitValue struct {
	Start json.Number `json:"-"`
	End   string      `json:"end"`
	Val   json.Number `json:"val"`
	Accn  string      `json:"accn"`
	FY    int         `json:"fy"`
	FP    string      `json:"fp"`
	Form  string      `json:"form"`
	Filed string      `json:"filed"`
	Frame string      `json:"frame,omitempty"`
}

// ParseCompanyFacts parses EDGAR company facts JSON from a reader.
func ParseCompanyFacts(r io.Reader) (*CompanyFacts, error) {
	var facts CompanyFacts
	if err := json.NewDecoder(r).Decode(&facts); err != nil {
		return nil, eris.Wrap(err, "xbrl: parse company facts")
	}
	return &facts, nil
}

// ConceptFacts flattens one concept's value series into model facts,
// ordered by period end then accession for determinism.
func ConceptFacts(namespace, concept string, c Concept) []model.Fact {
	var out []model.Fact
	units := make([]string, 0, len(c.Units))
	for u := range c.Units {
		units = append(units, u)
	}
	sort.Strings(units)

	for _, unit := range units {
		for _, v := range c.Units[unit] {
			if v.End == "" {
				continue
			}
			out = append(out, model.Fact{
				Concept:    concept,
				Namespace:  namespace,
				Value:      v.Val,
				Unit:       unit,
				PeriodEnd:  model.ParseDate(v.End),
				FiscalYear: v.FY,
				Form:       v.Form,
				Filed:      model.ParseDate(v.Filed),
				ContextID:  v.Accn,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PeriodEnd != out[j].PeriodEnd {
			return out[i].PeriodEnd.Before(out[j].PeriodEnd)
		}
		return out[i].ContextID < out[j].ContextID
	})
	return out
}

// ConceptNames returns the sorted concept names available per namespace.
func (cf *CompanyFacts) ConceptNames() map[string][]string {
	out := make(map[string][]string, len(cf.Facts))
	for ns, concepts := range cf.Facts {
		names := make([]string, 0, len(concepts))
		for name := range concepts {
			names = append(names, name)
		}
		sort.Strings(names)
		out[ns] = names
	}
	return out
}
