package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/edgar-service/internal/filings"
	"github.com/sells-group/edgar-service/internal/insider"
	"github.com/sells-group/edgar-service/internal/model"
	"github.com/sells-group/edgar-service/internal/resolve"
	"github.com/sells-group/edgar-service/internal/xbrl"
)

// fixtureSource implements every component's source interface from
// memory, counting upstream calls so tests can assert validation happens
// first.
type fixtureSource struct {
	calls        int
	companies    []model.CompanyRef
	profiles     map[int64]*model.CompanyRef
	filings      []model.FilingRef
	filingFacts  map[string][]model.Fact
	companyFacts *xbrl.CompanyFacts
	history      map[string][]model.Fact
	contents     map[string][]byte
}

func (f *fixtureSource) Companies(_ context.Context) ([]model.CompanyRef, error) {
	f.calls++
	return f.companies, nil
}

func (f *fixtureSource) Company(_ context.Context, cik int64) (*model.CompanyRef, error) {
	f.calls++
	if ref, ok := f.profiles[cik]; ok {
		return ref, nil
	}
	return nil, model.NewNotFound("company", "fixture")
}

func (f *fixtureSource) Filings(_ context.Context, _ int64) ([]model.FilingRef, error) {
	f.calls++
	return f.filings, nil
}

func (f *fixtureSource) SearchFilings(_ context.Context, _ string, _, _ model.Date, _ int) ([]model.FilingRef, error) {
	f.calls++
	return nil, nil
}

func (f *fixtureSource) FilingFiles(_ context.Context, _ int64, _ string) ([]string, error) {
	f.calls++
	return nil, nil
}

func (f *fixtureSource) FileContents(_ context.Context, _ int64, accession, name string) ([]byte, error) {
	f.calls++
	if body, ok := f.contents[accession+"/"+name]; ok {
		return body, nil
	}
	return nil, model.NewNotFound("document", name)
}

func (f *fixtureSource) FilingFacts(_ context.Context, _ int64, accession string) ([]model.Fact, error) {
	f.calls++
	facts, ok := f.filingFacts[accession]
	if !ok {
		return nil, &model.MalformedFilingError{Accession: accession, Reason: "no XBRL instance document in filing archive"}
	}
	return facts, nil
}

func (f *fixtureSource) CompanyFacts(_ context.Context, _ int64) (*xbrl.CompanyFacts, error) {
	f.calls++
	if f.companyFacts == nil {
		return nil, model.NewNotFound("company facts", "fixture")
	}
	return f.companyFacts, nil
}

func (f *fixtureSource) ConceptHistory(_ context.Context, _ int64, _, concept string) ([]model.Fact, error) {
	f.calls++
	facts, ok := f.history[concept]
	if !ok {
		return nil, model.NewNotFound("concept", concept)
	}
	return facts, nil
}

func tenKRef() model.FilingRef {
	return model.FilingRef{
		CIK:             1045810,
		CompanyName:     "NVIDIA CORP",
		FormType:        "10-K",
		FilingDate:      model.DateOf(time.Now().AddDate(0, 0, -5)),
		AccessionNumber: "0001045810-24-000029",
		PrimaryDocument: "nvda-20240128.htm",
	}
}

func newFixture() *fixtureSource {
	nvda := &model.CompanyRef{CIK: 1045810, Name: "NVIDIA CORP", Tickers: []string{"NVDA"}}
	revenue := model.Fact{
		Concept:     "Revenues",
		Namespace:   "us-gaap",
		Value:       json.Number("37044000000"),
		Unit:        "USD",
		PeriodStart: model.ParseDate("2023-01-30"),
		PeriodEnd:   model.ParseDate("2024-01-28"),
		ContextID:   "FY2024",
	}
	return &fixtureSource{
		companies: []model.CompanyRef{*nvda},
		profiles:  map[int64]*model.CompanyRef{1045810: nvda},
		filings:   []model.FilingRef{tenKRef()},
		filingFacts: map[string][]model.Fact{
			"0001045810-24-000029": {revenue},
		},
	}
}

func newTestService(t *testing.T, fx *fixtureSource) *Service {
	t.Helper()
	resolver, err := resolve.NewResolver(fx, 16)
	require.NoError(t, err)
	return NewWith(resolver, filings.NewLocator(fx), xbrl.NewNormalizer(fx), insider.NewAggregator(fx))
}

func TestGetCompanyInfo(t *testing.T) {
	svc := newTestService(t, newFixture())

	t.Run("success envelope", func(t *testing.T) {
		res := svc.GetCompanyInfo(context.Background(), "NVDA")
		require.True(t, res.Success)
		assert.Empty(t, res.Error)
		assert.Contains(t, res.Data, "company")
	})

	t.Run("unknown identifier maps to not_found", func(t *testing.T) {
		res := svc.GetCompanyInfo(context.Background(), "ZZZZ")
		require.False(t, res.Success)
		assert.Equal(t, KindNotFound, res.ErrorKind)
		assert.Nil(t, res.Data)
	})
}

func TestValidationBeforeUpstream(t *testing.T) {
	fx := newFixture()
	svc := newTestService(t, fx)

	res := svc.SearchCompanies(context.Background(), "nvidia", -1)
	require.False(t, res.Success)
	assert.Equal(t, KindValidation, res.ErrorKind)
	assert.Zero(t, fx.calls)

	res = svc.ComparePeriods(context.Background(), "NVDA", "Revenues", 2024, 2020)
	require.False(t, res.Success)
	assert.Equal(t, KindValidation, res.ErrorKind)
	assert.Zero(t, fx.calls)

	res = svc.GetCompanyInfo(context.Background(), "")
	assert.Equal(t, KindValidation, res.ErrorKind)
	assert.Zero(t, fx.calls)
}

func TestGetFinancialStatements(t *testing.T) {
	svc := newTestService(t, newFixture())

	t.Run("citation attached", func(t *testing.T) {
		res := svc.GetFinancialStatements(context.Background(), "NVDA", "", "income")
		require.True(t, res.Success)
		require.Contains(t, res.Data, "filing_reference")
		require.Contains(t, res.Data, "disclaimer")
	})

	t.Run("numeric fidelity through the envelope", func(t *testing.T) {
		res := svc.GetFinancialStatements(context.Background(), "NVDA", "", "income")
		require.True(t, res.Success)
		b, err := json.Marshal(res)
		require.NoError(t, err)
		assert.Contains(t, string(b), "37044000000")
		assert.NotContains(t, string(b), "3.7044")
	})

	t.Run("missing items marked not omitted", func(t *testing.T) {
		res := svc.GetFinancialStatements(context.Background(), "NVDA", "", "balance")
		require.True(t, res.Success)
		b, err := json.Marshal(res)
		require.NoError(t, err)
		assert.Contains(t, string(b), model.NotAvailable)
	})

	t.Run("double call byte equality", func(t *testing.T) {
		a, err := json.Marshal(svc.GetFinancialStatements(context.Background(), "NVDA", "", "all"))
		require.NoError(t, err)
		b, err := json.Marshal(svc.GetFinancialStatements(context.Background(), "NVDA", "", "all"))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	})

	t.Run("invalid statement type", func(t *testing.T) {
		res := svc.GetFinancialStatements(context.Background(), "NVDA", "", "ledger")
		assert.Equal(t, KindValidation, res.ErrorKind)
	})
}

func TestGetFilingSections(t *testing.T) {
	fx := newFixture()
	fx.contents = map[string][]byte{
		"0001045810-24-000029/nvda-20240128.htm": []byte(`<html><body>
<p>Item 1. Business</p>
<p>NVIDIA is a full-stack computing company.</p>
<p>Item 1A. Risk Factors</p>
<p>Demand may not match supply.</p>
<p>Item 7. Management's Discussion and Analysis</p>
<p>Revenue grew on data center strength.</p>
</body></html>`),
	}
	svc := newTestService(t, fx)

	t.Run("extracts sections with citation", func(t *testing.T) {
		res := svc.GetFilingSections(context.Background(), "NVDA", "0001045810-24-000029", "")
		require.True(t, res.Success)
		assert.Equal(t, "10-K", res.Data["form_type"])
		require.Contains(t, res.Data, "filing_reference")

		sections, ok := res.Data["sections"].(map[string]string)
		require.True(t, ok)
		assert.Contains(t, sections["business"], "full-stack computing")
		assert.Contains(t, sections["mda"], "data center strength")
	})

	t.Run("form type override applies its taxonomy", func(t *testing.T) {
		res := svc.GetFilingSections(context.Background(), "NVDA", "0001045810-24-000029", "DEF 14A")
		require.True(t, res.Success)
		assert.Equal(t, "DEF 14A", res.Data["form_type"])
		sections := res.Data["sections"].(map[string]string)
		assert.Empty(t, sections)
	})

	t.Run("unknown accession maps to not_found", func(t *testing.T) {
		res := svc.GetFilingSections(context.Background(), "NVDA", "0000000000-00-000000", "")
		require.False(t, res.Success)
		assert.Equal(t, KindNotFound, res.ErrorKind)
	})
}

func TestGetRecentFilings(t *testing.T) {
	svc := newTestService(t, newFixture())

	res := svc.GetRecentFilings(context.Background(), "NVDA", "10-K", 30, 5)
	require.True(t, res.Success)
	refs, ok := res.Data["filings"].([]model.FilingRef)
	require.True(t, ok)
	require.Len(t, refs, 1)
	assert.Equal(t, "10-K", refs[0].FormType)

	// Newest-first ordering is part of the contract.
	for i := 1; i < len(refs); i++ {
		assert.False(t, refs[i].FilingDate.After(refs[i-1].FilingDate))
	}
}

func TestGetKeyMetrics(t *testing.T) {
	svc := newTestService(t, newFixture())

	res := svc.GetKeyMetrics(context.Background(), "NVDA", "", []string{"Revenues", "Goodwill"})
	require.True(t, res.Success)

	metrics, ok := res.Data["metrics"].([]xbrl.MetricResult)
	require.True(t, ok)
	require.Len(t, metrics, 2)
	assert.True(t, metrics[0].Available)
	assert.Equal(t, model.NotAvailable, metrics[1].Marker)
}

func TestGetRecommendedTools(t *testing.T) {
	svc := newTestService(t, newFixture())

	t.Run("known form", func(t *testing.T) {
		res := svc.GetRecommendedTools("10-K")
		require.True(t, res.Success)
		guidance, ok := res.Data["guidance"].(ToolGuidance)
		require.True(t, ok)
		assert.Contains(t, guidance.Tools, "get_financial_statements")
	})

	t.Run("amendment maps to base form", func(t *testing.T) {
		res := svc.GetRecommendedTools("10-k/a")
		guidance := res.Data["guidance"].(ToolGuidance)
		assert.Equal(t, "10-K", guidance.FormType)
	})

	t.Run("unknown form falls back to general", func(t *testing.T) {
		res := svc.GetRecommendedTools("S-1")
		guidance := res.Data["guidance"].(ToolGuidance)
		assert.Equal(t, "general", guidance.FormType)
	})
}

func TestMalformedFilingKind(t *testing.T) {
	fx := newFixture()
	// A 10-K whose facts cannot be fetched surfaces partial data with
	// markers through Financials; segment extraction has nothing partial
	// to give and reports the malformed kind.
	delete(fx.filingFacts, "0001045810-24-000029")
	svc := newTestService(t, fx)

	res := svc.GetSegmentData(context.Background(), "NVDA", "", "business")
	require.False(t, res.Success)
	assert.Equal(t, KindMalformed, res.ErrorKind)
}

func TestGetCIKByTicker(t *testing.T) {
	svc := newTestService(t, newFixture())
	res := svc.GetCIKByTicker(context.Background(), "NVDA")
	require.True(t, res.Success)
	assert.Equal(t, int64(1045810), res.Data["cik"])
	assert.Equal(t, "0001045810", res.Data["cik_padded"])
}
