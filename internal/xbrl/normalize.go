package xbrl

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/edgar-service/internal/model"
)

// Source is the slice of the filing-source capability surface the
// normalizer depends on. Satisfied by the EDGAR client and by fixtures
// in tests.
type Source interface {
	Filings(ctx context.Context, cik int64) ([]model.FilingRef, error)
	FilingFacts(ctx context.Context, cik int64, accession string) ([]model.Fact, error)
	CompanyFacts(ctx context.Context, cik int64) (*CompanyFacts, error)
	ConceptHistory(ctx context.Context, cik int64, taxonomy, concept string) ([]model.Fact, error)
}

// DefaultMetrics is the fixed set returned when a key-metrics caller does
// not name specific concepts.
var DefaultMetrics = []string{
	"Revenues",
	"NetIncomeLoss",
	"OperatingIncomeLoss",
	"Assets",
	"Liabilities",
	"StockholdersEquity",
	"EarningsPerShareBasic",
	"EarningsPerShareDiluted",
	"CashAndCashEquivalentsAtCarryingValue",
	"LongTermDebt",
	"NetCashProvidedByUsedInOperatingActivities",
	"CommonStockSharesOutstanding",
}

// Normalizer extracts and canonicalizes structured financial data from
// filings. All outputs are deterministic for fixed upstream data.
type Normalizer struct {
	src Source
}

// NewNormalizer creates a Normalizer backed by the given source.
func NewNormalizer(src Source) *Normalizer {
	return &Normalizer{src: src}
}

// LatestFinancialFiling resolves the most recent 10-K or 10-Q for a
// company, used when a caller targets a company rather than a filing.
func (n *Normalizer) LatestFinancialFiling(ctx context.Context, cik int64) (*model.FilingRef, error) {
	refs, err := n.src.Filings(ctx, cik)
	if err != nil {
		return nil, err
	}
	for i := range refs {
		form := refs[i].FormType
		if form == "10-K" || form == "10-Q" {
			return &refs[i], nil
		}
	}
	return nil, model.NewNotFound("filing", "no 10-K or 10-Q on record")
}

// resolveFiling returns the target filing: the named accession when given,
// otherwise the company's latest 10-K/10-Q. A named accession must belong
// to the company.
func (n *Normalizer) resolveFiling(ctx context.Context, cik int64, accession string) (*model.FilingRef, error) {
	if accession == "" {
		return n.LatestFinancialFiling(ctx, cik)
	}
	refs, err := n.src.Filings(ctx, cik)
	if err != nil {
		return nil, err
	}
	for i := range refs {
		if refs[i].AccessionNumber == accession {
			return &refs[i], nil
		}
	}
	return nil, model.NewNotFound("filing", accession)
}

// Financials extracts the canonical financial statements from a filing.
// statementType is one of "income", "balance", "cashflow", or "all".
// Returned map keys are statement types; iteration order for output must
// go through sorted keys.
func (n *Normalizer) Financials(ctx context.Context, cik int64, accession, statementType string) (map[string]model.StatementView, *model.FilingRef, error) {
	statementType = strings.ToLower(strings.TrimSpace(statementType))
	if statementType == "" {
		statementType = "all"
	}

	mappings, err := StatementTable()
	if err != nil {
		return nil, nil, err
	}

	var selected []StatementMapping
	for _, m := range mappings {
		if statementType == "all" || m.Type == statementType {
			selected = append(selected, m)
		}
	}
	if len(selected) == 0 {
		return nil, nil, model.NewValidation("statement_type", "must be one of income, balance, cashflow, all")
	}

	ref, err := n.resolveFiling(ctx, cik, accession)
	if err != nil {
		return nil, nil, err
	}

	facts, err := n.src.FilingFacts(ctx, cik, ref.AccessionNumber)
	if err != nil {
		if !model.IsMalformedFiling(err) {
			return nil, nil, err
		}
		// No XBRL: every canonical item comes back explicitly marked
		// rather than failing the whole operation.
		facts = nil
	}

	views := make(map[string]model.StatementView, len(selected))
	for _, m := range selected {
		views[m.Type] = BuildStatement(facts, m)
	}
	return views, ref, nil
}

// Segments extracts the dimensional breakdown for a segment type from a
// filing's facts.
func (n *Normalizer) Segments(ctx context.Context, cik int64, accession, segmentType string) ([]model.SegmentValue, *model.FilingRef, error) {
	if _, ok := segmentAxes[strings.ToLower(strings.TrimSpace(segmentType))]; !ok {
		return nil, nil, model.NewValidation("segment_type", "must be one of "+strings.Join(SegmentTypes(), ", "))
	}

	ref, err := n.resolveFiling(ctx, cik, accession)
	if err != nil {
		return nil, nil, err
	}
	facts, err := n.src.FilingFacts(ctx, cik, ref.AccessionNumber)
	if err != nil {
		return nil, nil, err
	}
	return SegmentData(facts, segmentType), ref, nil
}

// MetricResult is one requested key metric: the matched fact, or the
// explicit not-available marker. Every requested concept appears in the
// output so callers can enumerate asked vs. returned.
type MetricResult struct {
	Concept   string      `json:"concept"`
	Available bool        `json:"available"`
	Marker    string      `json:"marker,omitempty"`
	Fact      *model.Fact `json:"fact,omitempty"`
}

// KeyMetrics extracts the requested concepts (or the default set) from
// the target filing. Output order follows the request order.
func (n *Normalizer) KeyMetrics(ctx context.Context, cik int64, accession string, metrics []string) ([]MetricResult, *model.FilingRef, error) {
	if len(metrics) == 0 {
		metrics = DefaultMetrics
	}

	ref, err := n.resolveFiling(ctx, cik, accession)
	if err != nil {
		return nil, nil, err
	}

	facts, err := n.src.FilingFacts(ctx, cik, ref.AccessionNumber)
	if err != nil && !model.IsMalformedFiling(err) {
		return nil, nil, err
	}
	index := primaryFactIndex(facts)

	results := make([]MetricResult, 0, len(metrics))
	for _, concept := range metrics {
		if fact, ok := index[concept]; ok {
			f := fact
			results = append(results, MetricResult{Concept: concept, Available: true, Fact: &f})
			continue
		}
		results = append(results, MetricResult{Concept: concept, Marker: model.NotAvailable})
	}
	return results, ref, nil
}

// GrowthEntry is a derived year-over-year change. Growth is computed only
// between two literally present filed values, never interpolated, and is
// kept apart from the raw series.
type GrowthEntry struct {
	FromYear  int    `json:"from_year"`
	ToYear    int    `json:"to_year"`
	GrowthPct string `json:"growth_pct"`
}

// PeriodComparison is the result of comparing one metric across fiscal
// years: a contiguous year axis plus separately-reported growth figures.
type PeriodComparison struct {
	Metric string            `json:"metric"`
	Years  []model.YearValue `json:"years"`
	Growth []GrowthEntry     `json:"growth,omitempty"`
}

// ComparePeriods extracts one metric for each fiscal year in
// [startYear, endYear] inclusive. Years with no covering annual filing or
// no matching concept appear with a null value, preserving the contiguous
// year axis for charting.
func (n *Normalizer) ComparePeriods(ctx context.Context, cik int64, metric string, startYear, endYear int) (*PeriodComparison, error) {
	if metric == "" {
		return nil, model.NewValidation("metric", "must not be empty")
	}
	if startYear > endYear {
		return nil, model.NewValidation("start_year", "must not exceed end_year")
	}

	histories, err := n.FetchConceptHistories(ctx, cik, []string{metric})
	if err != nil {
		return nil, err
	}
	history := histories[metric]

	comparison := &PeriodComparison{Metric: metric}
	for year := startYear; year <= endYear; year++ {
		entry := model.YearValue{Year: year}
		if best := annualFactFor(history, year); best != nil {
			v := best.Value
			entry.Value = &v
			entry.Unit = best.Unit
			entry.EndDate = best.PeriodEnd
			entry.FilingRef = &model.FilingRef{
				CIK:             cik,
				FormType:        best.Form,
				FilingDate:      best.Filed,
				AccessionNumber: best.ContextID,
				SourceURL:       model.ArchiveURL(cik, best.ContextID, ""),
			}
		}
		comparison.Years = append(comparison.Years, entry)
	}

	for i := 1; i < len(comparison.Years); i++ {
		prev, cur := comparison.Years[i-1], comparison.Years[i]
		if prev.Value == nil || cur.Value == nil {
			continue
		}
		pct, ok := growthPct(*prev.Value, *cur.Value)
		if !ok {
			continue
		}
		comparison.Growth = append(comparison.Growth, GrowthEntry{
			FromYear:  prev.Year,
			ToYear:    cur.Year,
			GrowthPct: pct,
		})
	}
	return comparison, nil
}

// annualFactFor selects the annual (10-K) fact covering a fiscal year,
// preferring the latest-filed value so amendments win deterministically.
func annualFactFor(history []model.Fact, year int) *model.Fact {
	var best *model.Fact
	for i := range history {
		f := &history[i]
		if f.FiscalYear != year || !strings.HasPrefix(f.Form, "10-K") {
			continue
		}
		if best == nil || f.PeriodEnd.After(best.PeriodEnd) ||
			(f.PeriodEnd == best.PeriodEnd && f.ContextID > best.ContextID) {
			best = f
		}
	}
	return best
}

// growthPct computes (cur-prev)/prev as a percentage with exact decimal
// arithmetic, rounded to four places. Rounding a derived figure is
// permitted; filed values are never touched.
func growthPct(prev, cur json.Number) (string, bool) {
	p, err := decimal.NewFromString(prev.String())
	if err != nil || p.IsZero() {
		return "", false
	}
	c, err := decimal.NewFromString(cur.String())
	if err != nil {
		return "", false
	}
	pct := c.Sub(p).Div(p.Abs()).Mul(decimal.NewFromInt(100)).Round(4)
	return pct.String(), true
}

// DiscoverMetrics lists the concept names available for a company,
// optionally filtered by a case-insensitive substring.
func (n *Normalizer) DiscoverMetrics(ctx context.Context, cik int64, searchTerm string) ([]string, error) {
	cf, err := n.src.CompanyFacts(ctx, cik)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(searchTerm))
	var names []string
	for _, nsNames := range cf.ConceptNames() {
		for _, name := range nsNames {
			if needle != "" && !strings.Contains(strings.ToLower(name), needle) {
				continue
			}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return dedupe(names), nil
}

// ConceptGroup is all facts for one concept within a filing. A concept
// may carry several facts across contexts; all are returned, never
// merged.
type ConceptGroup struct {
	Concept   string       `json:"concept"`
	Available bool         `json:"available"`
	Marker    string       `json:"marker,omitempty"`
	Facts     []model.Fact `json:"facts,omitempty"`
}

// Concepts extracts the named concepts (or all concepts when none are
// named) from a filing, every context included.
func (n *Normalizer) Concepts(ctx context.Context, cik int64, accession string, concepts []string) ([]ConceptGroup, *model.FilingRef, error) {
	ref, err := n.resolveFiling(ctx, cik, accession)
	if err != nil {
		return nil, nil, err
	}
	facts, err := n.src.FilingFacts(ctx, cik, ref.AccessionNumber)
	if err != nil && !model.IsMalformedFiling(err) {
		return nil, nil, err
	}

	byConcept := make(map[string][]model.Fact)
	for _, f := range facts {
		byConcept[f.Concept] = append(byConcept[f.Concept], f)
	}

	if len(concepts) == 0 {
		concepts = make([]string, 0, len(byConcept))
		for c := range byConcept {
			concepts = append(concepts, c)
		}
		sort.Strings(concepts)
	}

	groups := make([]ConceptGroup, 0, len(concepts))
	for _, c := range concepts {
		if fs, ok := byConcept[c]; ok {
			groups = append(groups, ConceptGroup{Concept: c, Available: true, Facts: fs})
			continue
		}
		groups = append(groups, ConceptGroup{Concept: c, Marker: model.NotAvailable})
	}
	return groups, ref, nil
}

// NamespaceConcepts is the concept inventory of one namespace within a
// filing, flagged standard taxonomy vs. filer extension.
type NamespaceConcepts struct {
	Namespace string   `json:"namespace"`
	Standard  bool     `json:"standard"`
	Concepts  []string `json:"concepts"`
}

// DiscoverConcepts inventories every namespace and concept in a filing,
// optionally filtered to one namespace. Standard-taxonomy namespaces are
// listed before filer extensions; both groups sort by namespace label.
func (n *Normalizer) DiscoverConcepts(ctx context.Context, cik int64, accession, namespaceFilter string) ([]NamespaceConcepts, *model.FilingRef, error) {
	ref, err := n.resolveFiling(ctx, cik, accession)
	if err != nil {
		return nil, nil, err
	}
	facts, err := n.src.FilingFacts(ctx, cik, ref.AccessionNumber)
	if err != nil {
		return nil, nil, err
	}

	byNS := make(map[string]map[string]bool)
	for _, f := range facts {
		if namespaceFilter != "" && f.Namespace != namespaceFilter {
			continue
		}
		if byNS[f.Namespace] == nil {
			byNS[f.Namespace] = make(map[string]bool)
		}
		byNS[f.Namespace][f.Concept] = true
	}

	out := make([]NamespaceConcepts, 0, len(byNS))
	for ns, set := range byNS {
		concepts := make([]string, 0, len(set))
		for c := range set {
			concepts = append(concepts, c)
		}
		sort.Strings(concepts)
		out = append(out, NamespaceConcepts{
			Namespace: ns,
			Standard:  IsStandardNamespace(ns),
			Concepts:  concepts,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Standard != out[j].Standard {
			return out[i].Standard
		}
		return out[i].Namespace < out[j].Namespace
	})
	return out, ref, nil
}

// CompanyFactSummary is the latest value per concept at the company
// level, used by the company-facts operation.
type CompanyFactSummary struct {
	EntityName string         `json:"entity_name"`
	Metrics    []MetricResult `json:"metrics"`
}

// CompanySummary returns the latest annual value for each default metric
// from the company's complete fact history.
func (n *Normalizer) CompanySummary(ctx context.Context, cik int64) (*CompanyFactSummary, error) {
	cf, err := n.src.CompanyFacts(ctx, cik)
	if err != nil {
		return nil, err
	}

	summary := &CompanyFactSummary{EntityName: cf.EntityName}
	gaap := cf.Facts["us-gaap"]
	for _, concept := range DefaultMetrics {
		c, ok := gaap[concept]
		if !ok {
			summary.Metrics = append(summary.Metrics, MetricResult{Concept: concept, Marker: model.NotAvailable})
			continue
		}
		facts := ConceptFacts("us-gaap", concept, c)
		if len(facts) == 0 {
			summary.Metrics = append(summary.Metrics, MetricResult{Concept: concept, Marker: model.NotAvailable})
			continue
		}
		latest := facts[len(facts)-1]
		summary.Metrics = append(summary.Metrics, MetricResult{Concept: concept, Available: true, Fact: &latest})
	}
	return summary, nil
}

// FetchConceptHistories retrieves several concept histories in parallel
// with a bounded group, preserving request order in the result.
func (n *Normalizer) FetchConceptHistories(ctx context.Context, cik int64, concepts []string) (map[string][]model.Fact, error) {
	out := make(map[string][]model.Fact, len(concepts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	results := make([][]model.Fact, len(concepts))
	for i, concept := range concepts {
		i, concept := i, concept
		g.Go(func() error {
			history, err := n.src.ConceptHistory(gctx, cik, "us-gaap", concept)
			if err != nil {
				if model.IsNotFound(err) {
					return nil
				}
				return eris.Wrapf(err, "xbrl: concept history %s", concept)
			}
			results[i] = history
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, concept := range concepts {
		out[concept] = results[i]
	}
	return out, nil
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	var prev string
	for i, s := range sorted {
		if i == 0 || s != prev {
			out = append(out, s)
		}
		prev = s
	}
	return out
}
