package service

import (
	"context"
)

// GetInsiderTransactions lists ownership transactions in the lookback
// window. formTypes defaults to 3/4/5.
func (s *Service) GetInsiderTransactions(ctx context.Context, identifier string, formTypes []string, days, limit int) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("get_insider_transactions", err)
	}

	txs, err := s.insiders.Transactions(ctx, company, formTypes, days, limit)
	if err != nil {
		return s.fail("get_insider_transactions", err)
	}
	return ok(map[string]any{
		"company":      company,
		"transactions": txs,
		"count":        len(txs),
	})
}

// GetInsiderSummary aggregates buy/sell activity over the window.
func (s *Service) GetInsiderSummary(ctx context.Context, identifier string, days int) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("get_insider_summary", err)
	}

	summary, err := s.insiders.Summary(ctx, company, days)
	if err != nil {
		return s.fail("get_insider_summary", err)
	}
	return ok(map[string]any{
		"company": company,
		"summary": summary,
	})
}

// GetForm4Details retrieves the complete structured record of one
// ownership filing.
func (s *Service) GetForm4Details(ctx context.Context, identifier, accession string) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("get_form4_details", err)
	}

	details, err := s.insiders.Form4Details(ctx, company, accession)
	if err != nil {
		return s.fail("get_form4_details", err)
	}

	payload := map[string]any{
		"company": company,
		"details": details,
	}
	return ok(cite(payload, &details.Ref))
}

// AnalyzeInsiderTransactions lists windowed transactions with exact
// per-line total values where both shares and price are filed.
func (s *Service) AnalyzeInsiderTransactions(ctx context.Context, identifier string, days, limit int) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("analyze_insider_transactions", err)
	}

	txs, err := s.insiders.Analyze(ctx, company, days, limit)
	if err != nil {
		return s.fail("analyze_insider_transactions", err)
	}
	return ok(map[string]any{
		"company":      company,
		"transactions": txs,
		"count":        len(txs),
	})
}

// GetInsiderSentiment buckets insider activity by calendar month with a
// deterministic trend label.
func (s *Service) GetInsiderSentiment(ctx context.Context, identifier string, months int) Result {
	company, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return s.fail("get_insider_sentiment", err)
	}

	analysis, err := s.insiders.Sentiment(ctx, company, months)
	if err != nil {
		return s.fail("get_insider_sentiment", err)
	}
	return ok(map[string]any{
		"company":   company,
		"sentiment": analysis,
	})
}
