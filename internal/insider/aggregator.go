package insider

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/edgar-service/internal/model"
)

// Defaults for the insider lookback windows.
const (
	DefaultDays        = 90
	DefaultLimit       = 50
	DefaultSummaryDays = 180
	DefaultMonths      = 6
)

// DefaultForms is the ownership form set queried when the caller does
// not name forms.
var DefaultForms = []string{"3", "4", "5"}

// Source is the slice of the EDGAR client the aggregator depends on.
type Source interface {
	Filings(ctx context.Context, cik int64) ([]model.FilingRef, error)
	FilingFiles(ctx context.Context, cik int64, accession string) ([]string, error)
	FileContents(ctx context.Context, cik int64, accession, name string) ([]byte, error)
}

// Aggregator retrieves and aggregates insider-ownership filings.
type Aggregator struct {
	src Source
	log *zap.Logger
	now func() time.Time
}

// NewAggregator creates an aggregator over the given source.
func NewAggregator(src Source) *Aggregator {
	return &Aggregator{
		src: src,
		log: zap.L().With(zap.String("component", "insider")),
		now: time.Now,
	}
}

// Transactions lists insider transactions inside the inclusive lookback
// window, newest filing first. Unparseable individual filings are skipped
// with a log line rather than failing the whole listing; the remaining
// lines are still exact.
func (a *Aggregator) Transactions(ctx context.Context, company *model.CompanyRef, formTypes []string, days, limit int) ([]model.InsiderTransaction, error) {
	if days < 0 {
		return nil, model.NewValidation("days", "must not be negative")
	}
	if limit < 0 {
		return nil, model.NewValidation("limit", "must not be negative")
	}
	if days == 0 {
		days = DefaultDays
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if len(formTypes) == 0 {
		formTypes = DefaultForms
	}

	refs, err := a.ownershipFilings(ctx, company.CIK, formTypes, days)
	if err != nil {
		return nil, err
	}

	var out []model.InsiderTransaction
	for i := range refs {
		if len(out) >= limit {
			break
		}
		details, err := a.fetchOwnership(ctx, company.CIK, &refs[i])
		if err != nil {
			a.log.Warn("skipping unparseable ownership filing",
				zap.String("accession", refs[i].AccessionNumber),
				zap.Error(err),
			)
			continue
		}
		for _, tx := range append(details.NonDerivative, details.Derivative...) {
			if len(out) >= limit {
				break
			}
			tx.FilingRef = &refs[i]
			out = append(out, tx)
		}
	}
	return out, nil
}

// Summary aggregates buy/sell activity over the window. Counts and share
// totals cover non-derivative lines only; derivative instruments do not
// move the open-market tally.
func (a *Aggregator) Summary(ctx context.Context, company *model.CompanyRef, days int) (*model.TransactionSummary, error) {
	if days < 0 {
		return nil, model.NewValidation("days", "must not be negative")
	}
	if days == 0 {
		days = DefaultSummaryDays
	}

	refs, err := a.ownershipFilings(ctx, company.CIK, DefaultForms, days)
	if err != nil {
		return nil, err
	}

	summary := &model.TransactionSummary{FilingRefs: []model.FilingRef{}}
	bought := decimal.Zero
	sold := decimal.Zero
	filers := make(map[string]bool)

	for i := range refs {
		details, err := a.fetchOwnership(ctx, company.CIK, &refs[i])
		if err != nil {
			a.log.Warn("skipping unparseable ownership filing",
				zap.String("accession", refs[i].AccessionNumber),
				zap.Error(err),
			)
			continue
		}
		summary.FilingRefs = append(summary.FilingRefs, refs[i])
		for _, owner := range details.Owners {
			if owner.Name != "" {
				filers[owner.Name] = true
			}
		}
		for _, tx := range details.NonDerivative {
			shares, ok := parseDecimal(tx.Shares)
			if !ok {
				continue
			}
			if tx.Acquired {
				summary.BuyCount++
				bought = bought.Add(shares)
			} else {
				summary.SellCount++
				sold = sold.Add(shares)
			}
		}
	}

	summary.UniqueFilers = len(filers)
	summary.TotalSharesBought = json.Number(bought.String())
	summary.TotalSharesSold = json.Number(sold.String())
	return summary, nil
}

// Form4Details retrieves the complete structured record of one ownership
// filing. The accession must belong to the company.
func (a *Aggregator) Form4Details(ctx context.Context, company *model.CompanyRef, accession string) (*model.Form4Details, error) {
	if accession == "" {
		return nil, model.NewValidation("accession_number", "must not be empty")
	}

	refs, err := a.src.Filings(ctx, company.CIK)
	if err != nil {
		return nil, err
	}
	var ref *model.FilingRef
	for i := range refs {
		if refs[i].AccessionNumber == accession {
			ref = &refs[i]
			break
		}
	}
	if ref == nil {
		return nil, model.NewNotFound("filing", accession)
	}

	details, err := a.fetchOwnership(ctx, company.CIK, ref)
	if err != nil {
		return nil, err
	}
	details.Ref = *ref
	return details, nil
}

// Analyze lists windowed transactions with per-line total value computed
// as shares times price with exact decimal arithmetic, only when both
// inputs are literally present in the filing. A line missing either input
// carries the explicit marker instead of a synthesized figure.
func (a *Aggregator) Analyze(ctx context.Context, company *model.CompanyRef, days, limit int) ([]model.InsiderTransaction, error) {
	txs, err := a.Transactions(ctx, company, nil, days, limit)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		shares, okShares := parseDecimal(txs[i].Shares)
		price, okPrice := parseDecimal(txs[i].PricePerShare)
		if okShares && okPrice {
			txs[i].TotalValue = json.Number(shares.Mul(price).String())
			continue
		}
		txs[i].TotalValueMarker = model.NotAvailable
	}
	return txs, nil
}

// Sentiment buckets insider activity by calendar month over the trailing
// window and labels the trend from bucket signs alone: every non-zero
// bucket positive is net-buying, every one negative is net-selling,
// anything else is mixed. No market data is consulted.
func (a *Aggregator) Sentiment(ctx context.Context, company *model.CompanyRef, months int) (*model.SentimentAnalysis, error) {
	if months < 0 {
		return nil, model.NewValidation("months", "must not be negative")
	}
	if months == 0 {
		months = DefaultMonths
	}

	// The rollup covers every transaction in the window, so it walks all
	// ownership filings directly rather than a truncated listing.
	refs, err := a.ownershipFilings(ctx, company.CIK, DefaultForms, months*31)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		net   decimal.Decimal
		count int
	}
	buckets := make(map[string]*bucket)

	// The month axis is contiguous: every month in the window appears
	// even when no transaction landed in it. Months step back from the
	// first of the anchor month; stepping from the anchor day itself
	// would skip a month whenever the day does not exist in the shorter
	// neighbor (March 31 minus one month normalizes past February).
	anchor := a.now().UTC()
	monthStart := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		buckets[monthStart.AddDate(0, -i, 0).Format("2006-01")] = &bucket{}
	}

	for i := range refs {
		details, err := a.fetchOwnership(ctx, company.CIK, &refs[i])
		if err != nil {
			a.log.Warn("skipping unparseable ownership filing",
				zap.String("accession", refs[i].AccessionNumber),
				zap.Error(err),
			)
			continue
		}
		for _, tx := range details.NonDerivative {
			if tx.TransactionDate.IsZero() {
				continue
			}
			b, ok := buckets[tx.TransactionDate.Time().Format("2006-01")]
			if !ok {
				continue
			}
			shares, ok := parseDecimal(tx.Shares)
			if !ok {
				continue
			}
			if !tx.Acquired {
				shares = shares.Neg()
			}
			b.net = b.net.Add(shares)
			b.count++
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	analysis := &model.SentimentAnalysis{}
	positive, negative := 0, 0
	for _, k := range keys {
		b := buckets[k]
		analysis.PeriodBuckets = append(analysis.PeriodBuckets, model.MonthBucket{
			Month:            k,
			NetShares:        json.Number(b.net.String()),
			TransactionCount: b.count,
		})
		switch b.net.Sign() {
		case 1:
			positive++
		case -1:
			negative++
		}
	}

	switch {
	case positive > 0 && negative == 0:
		analysis.TrendLabel = "net-buying"
	case negative > 0 && positive == 0:
		analysis.TrendLabel = "net-selling"
	default:
		analysis.TrendLabel = "mixed"
	}
	return analysis, nil
}

// ownershipFilings windows the company's filings to ownership forms
// filed inside the inclusive lookback, newest first.
func (a *Aggregator) ownershipFilings(ctx context.Context, cik int64, formTypes []string, days int) ([]model.FilingRef, error) {
	refs, err := a.src.Filings(ctx, cik)
	if err != nil {
		return nil, err
	}

	today := model.DateOf(a.now())
	cutoff := model.DateOf(a.now().AddDate(0, 0, -days))

	var out []model.FilingRef
	for _, ref := range refs {
		if ref.FilingDate.Before(cutoff) || ref.FilingDate.After(today) {
			continue
		}
		if !matchesOwnershipForm(ref.FormType, formTypes) {
			continue
		}
		out = append(out, ref)
	}
	return out, nil
}

// matchesOwnershipForm compares base form types, so "4/A" matches a
// request for form 4.
func matchesOwnershipForm(got string, want []string) bool {
	base := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(got)), "/A")
	for _, w := range want {
		if base == strings.ToUpper(strings.TrimSpace(w)) {
			return true
		}
	}
	return false
}

// fetchOwnership locates and parses the ownership XML inside a filing.
func (a *Aggregator) fetchOwnership(ctx context.Context, cik int64, ref *model.FilingRef) (*model.Form4Details, error) {
	name := ownershipDocumentName(ref.PrimaryDocument)
	if name == "" {
		files, err := a.src.FilingFiles(ctx, cik, ref.AccessionNumber)
		if err != nil {
			return nil, err
		}
		name = ownershipDocumentFrom(files)
	}
	if name == "" {
		return nil, &model.MalformedFilingError{
			Accession: ref.AccessionNumber,
			Reason:    "no ownership XML document in filing archive",
		}
	}

	raw, err := a.src.FileContents(ctx, cik, ref.AccessionNumber, name)
	if err != nil {
		return nil, err
	}
	return ParseOwnershipDocument(raw)
}

// ownershipDocumentName derives the raw XML name from the primary
// document. EDGAR lists ownership primaries behind an XSL viewer prefix
// ("xslF345X05/form4.xml"); the raw instance is the bare name.
func ownershipDocumentName(primary string) string {
	if !strings.HasSuffix(primary, ".xml") {
		return ""
	}
	if idx := strings.LastIndex(primary, "/"); idx >= 0 {
		return primary[idx+1:]
	}
	return primary
}

// ownershipDocumentFrom picks the ownership XML from a filing's file
// list, skipping XSL-rendered copies.
func ownershipDocumentFrom(files []string) string {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)
	for _, f := range sorted {
		lower := strings.ToLower(f)
		if strings.HasSuffix(lower, ".xml") && !strings.HasPrefix(lower, "xsl") {
			return f
		}
	}
	return ""
}

// numberLexeme trims a filed numeric string into a json.Number without
// altering the lexeme itself. Empty inputs stay empty so omitempty drops
// them.
func numberLexeme(s string) json.Number {
	return json.Number(strings.TrimSpace(s))
}

func parseDecimal(n json.Number) (decimal.Decimal, bool) {
	if n == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
