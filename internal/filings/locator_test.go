package filings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/edgar-service/internal/model"
)

// fixtureSource is a network-free Source for locator tests.
type fixtureSource struct {
	filings       []model.FilingRef
	searchResults []model.FilingRef
	contents      map[string][]byte
}

func (s *fixtureSource) Filings(_ context.Context, _ int64) ([]model.FilingRef, error) {
	return s.filings, nil
}

func (s *fixtureSource) SearchFilings(_ context.Context, _ string, _, _ model.Date, limit int) ([]model.FilingRef, error) {
	refs := s.searchResults
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (s *fixtureSource) FileContents(_ context.Context, _ int64, _, name string) ([]byte, error) {
	if body, ok := s.contents[name]; ok {
		return body, nil
	}
	return nil, model.NewNotFound("document", name)
}

var anchor = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func ref(form, filed, accession string) model.FilingRef {
	return model.FilingRef{
		CIK:             1045810,
		CompanyName:     "NVIDIA CORP",
		FormType:        form,
		FilingDate:      model.ParseDate(filed),
		AccessionNumber: accession,
	}
}

func newLocator(src Source) *Locator {
	l := NewLocator(src)
	l.now = func() time.Time { return anchor }
	return l
}

func TestListRecent(t *testing.T) {
	company := &model.CompanyRef{CIK: 1045810, Name: "NVIDIA CORP"}
	src := &fixtureSource{
		filings: []model.FilingRef{
			ref("8-K", "2024-03-10", "0001045810-24-000060"),
			ref("10-K", "2024-02-21", "0001045810-24-000029"),
			ref("8-K", "2024-02-14", "0001045810-24-000020"),
			ref("10-Q", "2023-11-21", "0001045810-23-000227"),
		},
	}

	t.Run("window is inclusive at the boundary", func(t *testing.T) {
		// Anchor 2024-03-15 minus 30 days is 2024-02-14: the filing on
		// exactly that day is in.
		refs, err := newLocator(src).ListRecent(context.Background(), company, "", 30, 0)
		require.NoError(t, err)
		require.Len(t, refs, 3)
		assert.Equal(t, "0001045810-24-000020", refs[2].AccessionNumber)
	})

	t.Run("form filter applies before truncation", func(t *testing.T) {
		refs, err := newLocator(src).ListRecent(context.Background(), company, "10-K", 30, 1)
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, "10-K", refs[0].FormType)
	})

	t.Run("amendments are distinct forms", func(t *testing.T) {
		amended := &fixtureSource{filings: []model.FilingRef{ref("10-K/A", "2024-03-01", "0001045810-24-000040")}}
		refs, err := newLocator(amended).ListRecent(context.Background(), company, "10-K", 30, 0)
		require.NoError(t, err)
		assert.Empty(t, refs)
	})

	t.Run("defaults applied", func(t *testing.T) {
		refs, err := newLocator(src).ListRecent(context.Background(), company, "", 0, 0)
		require.NoError(t, err)
		// Default 30-day window.
		assert.Len(t, refs, 3)
	})

	t.Run("company-absent goes through full-text search", func(t *testing.T) {
		searchSrc := &fixtureSource{searchResults: []model.FilingRef{ref("8-K", "2024-03-14", "0000000001-24-000001")}}
		refs, err := newLocator(searchSrc).ListRecent(context.Background(), nil, "8-K", 7, 10)
		require.NoError(t, err)
		assert.Len(t, refs, 1)
	})

	t.Run("negative parameters rejected", func(t *testing.T) {
		_, err := newLocator(src).ListRecent(context.Background(), company, "", -1, 0)
		assert.True(t, model.IsValidation(err))
		_, err = newLocator(src).ListRecent(context.Background(), company, "", 0, -1)
		assert.True(t, model.IsValidation(err))
	})
}

const sampleTenK = `<html><body>
<p>Item 1. Business</p><p>Item 1A. Risk Factors</p><p>Item 7. MD&amp;A</p>
<p>Item 1. Business</p>
<p>We design GPUs and accelerated computing platforms.</p>
<p>Item 1A. Risk Factors</p>
<p>Demand may fluctuate significantly.</p>
<p>Item 7. Management&#8217;s Discussion and Analysis</p>
<p>Revenue grew substantially year over year.</p>
<p>Item 8. Financial Statements</p>
<p>See accompanying notes.</p>
</body></html>`

func TestGet(t *testing.T) {
	company := &model.CompanyRef{CIK: 1045810, Name: "NVIDIA CORP"}
	filing := ref("10-K", "2024-02-21", "0001045810-24-000029")
	filing.PrimaryDocument = "nvda-20240128.htm"
	src := &fixtureSource{
		filings:  []model.FilingRef{filing},
		contents: map[string][]byte{"nvda-20240128.htm": []byte(sampleTenK)},
	}

	t.Run("document and sections", func(t *testing.T) {
		got, err := newLocator(src).Get(context.Background(), company, "0001045810-24-000029")
		require.NoError(t, err)
		assert.Contains(t, got.Document, "accelerated computing")
		assert.Contains(t, got.Sections["business"], "GPUs")
		assert.Contains(t, got.Sections["risk_factors"], "Demand may fluctuate")
	})

	t.Run("accession must belong to the company", func(t *testing.T) {
		_, err := newLocator(src).Get(context.Background(), company, "0009999999-24-000001")
		assert.True(t, model.IsNotFound(err))
	})

	t.Run("empty accession rejected", func(t *testing.T) {
		_, err := newLocator(src).Get(context.Background(), company, "")
		assert.True(t, model.IsValidation(err))
	})

	t.Run("missing primary document still returns metadata", func(t *testing.T) {
		bare := filing
		bare.PrimaryDocument = "missing.htm"
		srcMissing := &fixtureSource{filings: []model.FilingRef{bare}}
		got, err := newLocator(srcMissing).Get(context.Background(), company, bare.AccessionNumber)
		require.NoError(t, err)
		assert.Empty(t, got.Document)
		assert.Empty(t, got.Sections)
	})
}

func TestExtractSections(t *testing.T) {
	text := stripMarkup(sampleTenK)

	t.Run("unknown form returns empty map", func(t *testing.T) {
		sections := ExtractSections(text, "DEF 14A")
		assert.NotNil(t, sections)
		assert.Empty(t, sections)
	})

	t.Run("amendment uses base taxonomy", func(t *testing.T) {
		sections := ExtractSections(text, "10-K/A")
		assert.Contains(t, sections, "business")
	})

	t.Run("section ends at next item heading", func(t *testing.T) {
		sections := ExtractSections(text, "10-K")
		assert.NotContains(t, sections["business"], "Demand may fluctuate")
	})
}

func TestSectionNames(t *testing.T) {
	assert.Contains(t, SectionNames("10-K"), "risk_factors")
	assert.Contains(t, SectionNames("10-Q"), "mda")
	assert.Empty(t, SectionNames("4"))
}

func TestAnalyzeEvents(t *testing.T) {
	t.Run("declared items joined with table and excerpts", func(t *testing.T) {
		doc := stripMarkup(`<p>Item 2.02 Results of Operations and Financial Condition</p>
<p>On February 21, 2024, the registrant issued a press release.</p>
<p>Item 9.01 Financial Statements and Exhibits</p>
<p>Exhibit 99.1</p>`)
		filing := &model.Filing{
			Ref:      model.FilingRef{FormType: "8-K", Items: "2.02,9.01"},
			Document: doc,
		}
		events := AnalyzeEvents(filing)
		require.Len(t, events, 2)
		assert.Equal(t, "2.02", events[0].ItemCode)
		assert.Equal(t, "Results of Operations and Financial Condition", events[0].Description)
		assert.Contains(t, events[0].Excerpt, "press release")
		assert.Equal(t, "9.01", events[1].ItemCode)
	})

	t.Run("no declared items yields empty slice", func(t *testing.T) {
		events := AnalyzeEvents(&model.Filing{Ref: model.FilingRef{FormType: "8-K"}})
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})

	t.Run("unknown item code still listed", func(t *testing.T) {
		events := AnalyzeEvents(&model.Filing{Ref: model.FilingRef{Items: "12.34"}})
		require.Len(t, events, 1)
		assert.Equal(t, "Undefined item", events[0].Description)
	})
}

func TestStripMarkup(t *testing.T) {
	got := stripMarkup(`<div><b>Revenue</b>&nbsp;was&nbsp;<span>$60,922</span>&amp; million</div>`)
	assert.Equal(t, "Revenue was $60,922 & million", got)
}
