// Package service is the exposed operation surface: one method per
// operation, each validating parameters before any upstream call and
// returning a structured success/failure envelope a host can relay
// without crashing.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/edgar-service/internal/citation"
	"github.com/sells-group/edgar-service/internal/edgar"
	"github.com/sells-group/edgar-service/internal/filings"
	"github.com/sells-group/edgar-service/internal/insider"
	"github.com/sells-group/edgar-service/internal/model"
	"github.com/sells-group/edgar-service/internal/resolve"
	"github.com/sells-group/edgar-service/internal/xbrl"
)

// Result is the envelope every operation returns. Failures carry a
// machine-checkable kind alongside the message; Data is present only on
// success.
type Result struct {
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	ErrorKind string         `json:"error_kind,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Error kinds in failure envelopes.
const (
	KindNotFound   = "not_found"
	KindUpstream   = "upstream_unavailable"
	KindMalformed  = "malformed_filing"
	KindValidation = "validation"
	KindInternal   = "internal"
)

// Service wires the resolver, locator, normalizer, and aggregator behind
// the operation surface.
type Service struct {
	resolver   *resolve.Resolver
	locator    *filings.Locator
	normalizer *xbrl.Normalizer
	insiders   *insider.Aggregator
	log        *zap.Logger
}

// Options configures the service.
type Options struct {
	CacheSize int
}

// New creates a Service over an EDGAR client.
func New(client *edgar.Client, opts Options) (*Service, error) {
	resolver, err := resolve.NewResolver(client, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		resolver:   resolver,
		locator:    filings.NewLocator(client),
		normalizer: xbrl.NewNormalizer(client),
		insiders:   insider.NewAggregator(client),
		log:        zap.L().With(zap.String("component", "service")),
	}, nil
}

// NewWith assembles a Service from pre-built components, used by tests
// to substitute fixture sources.
func NewWith(resolver *resolve.Resolver, locator *filings.Locator, normalizer *xbrl.Normalizer, insiders *insider.Aggregator) *Service {
	return &Service{
		resolver:   resolver,
		locator:    locator,
		normalizer: normalizer,
		insiders:   insiders,
		log:        zap.L().With(zap.String("component", "service")),
	}
}

func ok(data map[string]any) Result {
	return Result{Success: true, Data: data}
}

// fail maps an error onto the failure envelope. Every error kind the
// components raise has a stable wire name; anything else is internal.
func (s *Service) fail(op string, err error) Result {
	kind := KindInternal
	switch {
	case model.IsValidation(err):
		kind = KindValidation
	case model.IsNotFound(err):
		kind = KindNotFound
	case model.IsMalformedFiling(err):
		kind = KindMalformed
	case model.IsUpstream(err):
		kind = KindUpstream
	}
	if kind == KindInternal || kind == KindUpstream {
		s.log.Error("operation failed", zap.String("operation", op), zap.Error(err))
	} else {
		s.log.Debug("operation failed", zap.String("operation", op), zap.Error(err))
	}
	return Result{Error: err.Error(), ErrorKind: kind}
}

// cite attaches the filing reference and disclaimer to a payload.
func cite(payload map[string]any, ref *model.FilingRef) map[string]any {
	if ref == nil {
		return payload
	}
	return citation.Attach(payload, *ref)
}

// GetCIKByTicker resolves a ticker to its CIK number.
func (s *Service) GetCIKByTicker(ctx context.Context, ticker string) Result {
	company, err := s.resolver.Resolve(ctx, ticker)
	if err != nil {
		return s.fail("get_cik_by_ticker", err)
	}
	return ok(map[string]any{
		"ticker":     company.PrimaryTicker(),
		"cik":        company.CIK,
		"cik_padded": company.PaddedCIK(),
	})
}

// GetCompanyInfo resolves an identifier to the full company profile.
func (s *Service) GetCompanyInfo(ctx context.Context, identifier string) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("get_company_info", err)
	}
	return ok(map[string]any{"company": company})
}

// SearchCompanies finds companies by ticker or name fragment.
func (s *Service) SearchCompanies(ctx context.Context, query string, limit int) Result {
	if limit < 0 {
		return s.fail("search_companies", model.NewValidation("limit", "must not be negative"))
	}
	results, err := s.resolver.Search(ctx, query, limit)
	if err != nil {
		return s.fail("search_companies", err)
	}
	return ok(map[string]any{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

// GetRecentFilings lists filings in the lookback window. identifier may
// be empty for a cross-company query via the full-text search index.
func (s *Service) GetRecentFilings(ctx context.Context, identifier, formType string, days, limit int) Result {
	var company *model.CompanyRef
	if identifier != "" {
		var err error
		company, err = s.resolver.Resolve(ctx, identifier)
		if err != nil {
			return s.fail("get_recent_filings", err)
		}
	}

	refs, err := s.locator.ListRecent(ctx, company, formType, days, limit)
	if err != nil {
		return s.fail("get_recent_filings", err)
	}

	payload := map[string]any{
		"filings": refs,
		"count":   len(refs),
	}
	if company != nil {
		payload["company"] = company
	}
	return ok(payload)
}

// GetFilingContent retrieves one filing's metadata, document text, and
// extracted sections.
func (s *Service) GetFilingContent(ctx context.Context, identifier, accession string) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("get_filing_content", err)
	}
	filing, err := s.locator.Get(ctx, company, accession)
	if err != nil {
		return s.fail("get_filing_content", err)
	}

	payload := map[string]any{
		"filing":   filing.Ref,
		"sections": filing.Sections,
		"document": filing.Document,
	}
	return ok(cite(payload, &filing.Ref))
}

// GetFilingSections extracts the form-specific sections of one filing.
// formType overrides the filing's own form when set, so a caller can
// apply a known taxonomy to an amended or unusually-labeled filing;
// empty formType uses the form the filing was submitted under.
func (s *Service) GetFilingSections(ctx context.Context, identifier, accession, formType string) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("get_filing_sections", err)
	}
	filing, err := s.locator.Get(ctx, company, accession)
	if err != nil {
		return s.fail("get_filing_sections", err)
	}

	form := filing.Ref.FormType
	sections := filing.Sections
	if formType != "" {
		form = formType
		sections = filings.ExtractSections(filing.Document, formType)
	}
	payload := map[string]any{
		"filing":    filing.Ref,
		"form_type": form,
		"sections":  sections,
	}
	return ok(cite(payload, &filing.Ref))
}

// AnalyzeEightK joins a filing's declared 8-K items with descriptions
// and document excerpts.
func (s *Service) AnalyzeEightK(ctx context.Context, identifier, accession string) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("analyze_8k", err)
	}
	filing, err := s.locator.Get(ctx, company, accession)
	if err != nil {
		return s.fail("analyze_8k", err)
	}

	payload := map[string]any{
		"filing": filing.Ref,
		"events": filings.AnalyzeEvents(filing),
	}
	return ok(cite(payload, &filing.Ref))
}
