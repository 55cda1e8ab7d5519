package service

import (
	"context"
	"sort"

	"github.com/sells-group/edgar-service/internal/model"
)

// GetFinancialStatements extracts canonical statements from a filing.
// accession may be empty to target the company's latest 10-K/10-Q.
// statementType is income, balance, cashflow, or all.
func (s *Service) GetFinancialStatements(ctx context.Context, identifier, accession, statementType string) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("get_financial_statements", err)
	}

	views, ref, err := s.normalizer.Financials(ctx, company.CIK, accession, statementType)
	if err != nil {
		return s.fail("get_financial_statements", err)
	}

	// Map ordering is non-deterministic on marshal; emit sorted keys as
	// an ordered slice instead.
	types := make([]string, 0, len(views))
	for t := range views {
		types = append(types, t)
	}
	sort.Strings(types)

	statements := make([]model.StatementView, 0, len(types))
	for _, t := range types {
		statements = append(statements, views[t])
	}

	payload := map[string]any{
		"company":    company,
		"statements": statements,
	}
	return ok(cite(payload, ref))
}

// GetSegmentData extracts the dimensional revenue breakdown for a
// segment type (geographic, product, business).
func (s *Service) GetSegmentData(ctx context.Context, identifier, accession, segmentType string) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("get_segment_data", err)
	}

	segments, ref, err := s.normalizer.Segments(ctx, company.CIK, accession, segmentType)
	if err != nil {
		return s.fail("get_segment_data", err)
	}

	payload := map[string]any{
		"company":      company,
		"segment_type": segmentType,
		"segments":     segments,
		"count":        len(segments),
	}
	return ok(cite(payload, ref))
}

// GetKeyMetrics extracts the requested concepts from a filing, the
// default set when none are named. Misses are explicitly marked.
func (s *Service) GetKeyMetrics(ctx context.Context, identifier, accession string, metrics []string) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("get_key_metrics", err)
	}

	results, ref, err := s.normalizer.KeyMetrics(ctx, company.CIK, accession, metrics)
	if err != nil {
		return s.fail("get_key_metrics", err)
	}

	payload := map[string]any{
		"company": company,
		"metrics": results,
	}
	return ok(cite(payload, ref))
}

// ComparePeriods extracts one metric across a contiguous range of fiscal
// years, missing years null-valued, growth reported apart from filed
// values.
func (s *Service) ComparePeriods(ctx context.Context, identifier, metric string, startYear, endYear int) Result {
	if startYear > endYear {
		return s.fail("compare_periods", model.NewValidation("start_year", "must not exceed end_year"))
	}
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("compare_periods", err)
	}

	comparison, err := s.normalizer.ComparePeriods(ctx, company.CIK, metric, startYear, endYear)
	if err != nil {
		return s.fail("compare_periods", err)
	}
	return ok(map[string]any{
		"company":    company,
		"comparison": comparison,
	})
}

// DiscoverMetrics lists a company's available concept names, optionally
// substring-filtered.
func (s *Service) DiscoverMetrics(ctx context.Context, identifier, searchTerm string) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("discover_metrics", err)
	}

	names, err := s.normalizer.DiscoverMetrics(ctx, company.CIK, searchTerm)
	if err != nil {
		return s.fail("discover_metrics", err)
	}
	return ok(map[string]any{
		"company": company,
		"metrics": names,
		"count":   len(names),
	})
}

// GetXBRLConcepts extracts the named concepts from a filing with every
// reported context; all concepts when none are named.
func (s *Service) GetXBRLConcepts(ctx context.Context, identifier, accession string, concepts []string) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("get_xbrl_concepts", err)
	}

	groups, ref, err := s.normalizer.Concepts(ctx, company.CIK, accession, concepts)
	if err != nil {
		return s.fail("get_xbrl_concepts", err)
	}

	payload := map[string]any{
		"company":  company,
		"concepts": groups,
	}
	return ok(cite(payload, ref))
}

// DiscoverXBRLConcepts inventories a filing's namespaces and concepts,
// standard taxonomies separated from filer extensions.
func (s *Service) DiscoverXBRLConcepts(ctx context.Context, identifier, accession, namespace string) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("discover_xbrl_concepts", err)
	}

	inventory, ref, err := s.normalizer.DiscoverConcepts(ctx, company.CIK, accession, namespace)
	if err != nil {
		return s.fail("discover_xbrl_concepts", err)
	}

	payload := map[string]any{
		"company":    company,
		"namespaces": inventory,
	}
	return ok(cite(payload, ref))
}

// GetCompanyFacts summarizes the latest value of each default metric
// from the company's complete tagged history.
func (s *Service) GetCompanyFacts(ctx context.Context, identifier string) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("get_company_facts", err)
	}

	summary, err := s.normalizer.CompanySummary(ctx, company.CIK)
	if err != nil {
		return s.fail("get_company_facts", err)
	}
	return ok(map[string]any{
		"company": company,
		"facts":   summary,
	})
}
