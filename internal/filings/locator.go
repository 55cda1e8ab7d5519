// Package filings locates and retrieves SEC filings: recent-filing
// windows, single-filing retrieval with section extraction, and 8-K
// event analysis.
package filings

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/edgar-service/internal/model"
)

// Defaults for the recent-filings window.
const (
	DefaultDays  = 30
	DefaultLimit = 50
)

// Source is the slice of the EDGAR client the locator depends on.
type Source interface {
	Filings(ctx context.Context, cik int64) ([]model.FilingRef, error)
	SearchFilings(ctx context.Context, formType string, from, to model.Date, limit int) ([]model.FilingRef, error)
	FileContents(ctx context.Context, cik int64, accession, name string) ([]byte, error)
}

// Locator finds and fetches filings. The lookback anchor is injectable so
// windowing behavior is testable without wall-clock coupling.
type Locator struct {
	src Source
	log *zap.Logger
	now func() time.Time
}

// NewLocator creates a locator over the given source.
func NewLocator(src Source) *Locator {
	return &Locator{
		src: src,
		log: zap.L().With(zap.String("component", "filings")),
		now: time.Now,
	}
}

// ListRecent returns filings inside the inclusive lookback window, newest
// first. With a company the submissions record is windowed; without one
// the EDGAR full-text search index is queried. Filtering always happens
// before truncation so the limit never hides in-window filings behind
// out-of-window ones.
func (l *Locator) ListRecent(ctx context.Context, company *model.CompanyRef, formType string, days, limit int) ([]model.FilingRef, error) {
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

	today := model.DateOf(l.now())
	cutoff := model.DateOf(l.now().AddDate(0, 0, -days))

	if company == nil {
		return l.src.SearchFilings(ctx, formType, cutoff, today, limit)
	}

	refs, err := l.src.Filings(ctx, company.CIK)
	if err != nil {
		return nil, err
	}

	out := make([]model.FilingRef, 0, limit)
	for _, ref := range refs {
		if ref.FilingDate.Before(cutoff) || ref.FilingDate.After(today) {
			continue
		}
		if formType != "" && !matchesForm(ref.FormType, formType) {
			continue
		}
		out = append(out, ref)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// matchesForm compares form types exactly, tolerating case and
// whitespace. "10-K" does not match "10-K/A"; amendments are distinct
// forms and callers ask for them explicitly.
func matchesForm(got, want string) bool {
	return strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want))
}

// Get retrieves one filing with its primary document and extracted
// sections. The accession must belong to the company.
func (l *Locator) Get(ctx context.Context, company *model.CompanyRef, accession string) (*model.Filing, error) {
	if accession == "" {
		return nil, model.NewValidation("accession_number", "must not be empty")
	}

	refs, err := l.src.Filings(ctx, company.CIK)
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

	filing := &model.Filing{Ref: *ref}
	if ref.PrimaryDocument == "" {
		return filing, nil
	}

	raw, err := l.src.FileContents(ctx, company.CIK, accession, ref.PrimaryDocument)
	if err != nil {
		if model.IsNotFound(err) {
			// Metadata without a retrievable document is still a usable
			// answer; sections just come back empty.
			l.log.Warn("primary document missing",
				zap.String("accession", accession),
				zap.String("document", ref.PrimaryDocument),
			)
			return filing, nil
		}
		return nil, err
	}

	filing.Document = stripMarkup(string(raw))
	filing.Sections = ExtractSections(filing.Document, ref.FormType)
	return filing, nil
}
