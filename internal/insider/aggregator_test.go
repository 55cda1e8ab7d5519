package insider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/edgar-service/internal/model"
)

const sampleForm4 = `<?xml version="1.0"?>
<ownershipDocument>
  <documentType>4</documentType>
  <periodOfReport>2024-03-05</periodOfReport>
  <issuer>
    <issuerCik>0001045810</issuerCik>
    <issuerName>NVIDIA CORP</issuerName>
    <issuerTradingSymbol>NVDA</issuerTradingSymbol>
  </issuer>
  <reportingOwner>
    <reportingOwnerId>
      <rptOwnerCik>0001234567</rptOwnerCik>
      <rptOwnerName>HUANG JEN HSUN</rptOwnerName>
    </reportingOwnerId>
    <reportingOwnerRelationship>
      <isDirector>1</isDirector>
      <isOfficer>1</isOfficer>
      <isTenPercentOwner>0</isTenPercentOwner>
      <officerTitle>President and CEO</officerTitle>
    </reportingOwnerRelationship>
  </reportingOwner>
  <nonDerivativeTable>
    <nonDerivativeTransaction>
      <securityTitle><value>Common Stock</value></securityTitle>
      <transactionDate><value>2024-03-04</value></transactionDate>
      <transactionCoding><transactionCode>S</transactionCode></transactionCoding>
      <transactionAmounts>
        <transactionShares><value>12000</value></transactionShares>
        <transactionPricePerShare><value>852.06</value></transactionPricePerShare>
        <transactionAcquiredDisposedCode><value>D</value></transactionAcquiredDisposedCode>
      </transactionAmounts>
      <postTransactionAmounts>
        <sharesOwnedFollowingTransaction><value>75839246</value></sharesOwnedFollowingTransaction>
      </postTransactionAmounts>
    </nonDerivativeTransaction>
    <nonDerivativeTransaction>
      <securityTitle><value>Common Stock</value></securityTitle>
      <transactionDate><value>2024-03-04</value></transactionDate>
      <transactionCoding><transactionCode>P</transactionCode></transactionCoding>
      <transactionAmounts>
        <transactionShares><value>500</value></transactionShares>
        <transactionPricePerShare><value>850.10</value></transactionPricePerShare>
        <transactionAcquiredDisposedCode><value>A</value></transactionAcquiredDisposedCode>
      </transactionAmounts>
    </nonDerivativeTransaction>
  </nonDerivativeTable>
  <derivativeTable>
    <derivativeTransaction>
      <securityTitle><value>Restricted Stock Unit</value></securityTitle>
      <transactionDate><value>2024-03-04</value></transactionDate>
      <transactionCoding><transactionCode>M</transactionCode></transactionCoding>
      <transactionAmounts>
        <transactionShares><value>6000</value></transactionShares>
        <transactionAcquiredDisposedCode><value>A</value></transactionAcquiredDisposedCode>
      </transactionAmounts>
    </derivativeTransaction>
  </derivativeTable>
  <footnotes>
    <footnote id="F1">Shares sold pursuant to a Rule 10b5-1 trading plan.</footnote>
  </footnotes>
</ownershipDocument>`

func TestParseOwnershipDocument(t *testing.T) {
	details, err := ParseOwnershipDocument([]byte(sampleForm4))
	require.NoError(t, err)

	t.Run("issuer and owner", func(t *testing.T) {
		assert.Equal(t, "NVIDIA CORP", details.IssuerName)
		assert.Equal(t, "HUANG JEN HSUN", details.OwnerName)
		assert.Equal(t, "2024-03-05", details.PeriodOfReport.String())
	})

	t.Run("relationship flags", func(t *testing.T) {
		assert.True(t, details.Relationship.IsDirector)
		assert.True(t, details.Relationship.IsOfficer)
		assert.False(t, details.Relationship.IsTenPctOwner)
		assert.Equal(t, "President and CEO", details.Relationship.OfficerTitle)
	})

	t.Run("non-derivative lines", func(t *testing.T) {
		require.Len(t, details.NonDerivative, 2)
		sell := details.NonDerivative[0]
		assert.Equal(t, "S", sell.TransactionCode)
		assert.False(t, sell.Acquired)
		assert.Equal(t, json.Number("12000"), sell.Shares)
		assert.Equal(t, json.Number("852.06"), sell.PricePerShare)
		assert.Equal(t, json.Number("75839246"), sell.SharesOwnedAfter)
		assert.False(t, sell.Derivative)

		buy := details.NonDerivative[1]
		assert.True(t, buy.Acquired)
	})

	t.Run("derivative lines flagged", func(t *testing.T) {
		require.Len(t, details.Derivative, 1)
		assert.True(t, details.Derivative[0].Derivative)
		assert.Empty(t, details.Derivative[0].PricePerShare)
	})

	t.Run("footnotes", func(t *testing.T) {
		assert.Contains(t, details.Footnotes["F1"], "10b5-1")
	})
}

const jointForm4 = `<?xml version="1.0"?>
<ownershipDocument>
  <documentType>4</documentType>
  <periodOfReport>2024-03-05</periodOfReport>
  <issuer>
    <issuerCik>0001045810</issuerCik>
    <issuerName>NVIDIA CORP</issuerName>
  </issuer>
  <reportingOwner>
    <reportingOwnerId>
      <rptOwnerCik>0001234567</rptOwnerCik>
      <rptOwnerName>HUANG JEN HSUN</rptOwnerName>
    </reportingOwnerId>
    <reportingOwnerRelationship>
      <isOfficer>1</isOfficer>
      <officerTitle>President and CEO</officerTitle>
    </reportingOwnerRelationship>
  </reportingOwner>
  <reportingOwner>
    <reportingOwnerId>
      <rptOwnerCik>0007654321</rptOwnerCik>
      <rptOwnerName>HUANG FAMILY TRUST</rptOwnerName>
    </reportingOwnerId>
    <reportingOwnerRelationship>
      <isTenPercentOwner>1</isTenPercentOwner>
    </reportingOwnerRelationship>
  </reportingOwner>
  <nonDerivativeTable>
    <nonDerivativeTransaction>
      <securityTitle><value>Common Stock</value></securityTitle>
      <transactionDate><value>2024-03-04</value></transactionDate>
      <transactionCoding><transactionCode>S</transactionCode></transactionCoding>
      <transactionAmounts>
        <transactionShares><value>1000</value></transactionShares>
        <transactionPricePerShare><value>852.06</value></transactionPricePerShare>
        <transactionAcquiredDisposedCode><value>D</value></transactionAcquiredDisposedCode>
      </transactionAmounts>
    </nonDerivativeTransaction>
  </nonDerivativeTable>
</ownershipDocument>`

func TestParseOwnershipDocumentJointFiling(t *testing.T) {
	details, err := ParseOwnershipDocument([]byte(jointForm4))
	require.NoError(t, err)

	require.Len(t, details.Owners, 2)
	assert.Equal(t, "HUANG JEN HSUN", details.Owners[0].Name)
	assert.Equal(t, "HUANG FAMILY TRUST", details.Owners[1].Name)
	assert.True(t, details.Owners[1].Relationship.IsTenPctOwner)

	// Flat fields echo the first owner.
	assert.Equal(t, "HUANG JEN HSUN", details.OwnerName)
	assert.Equal(t, "0001234567", details.OwnerCIK)
	assert.True(t, details.Relationship.IsOfficer)
}

func TestParseOwnershipDocumentMalformed(t *testing.T) {
	_, err := ParseOwnershipDocument([]byte("<ownershipDocument><unclosed"))
	assert.Error(t, err)
}

// fixtureSource serves ownership filings from memory.
type fixtureSource struct {
	filings  []model.FilingRef
	files    map[string][]string
	contents map[string][]byte
}

func (s *fixtureSource) Filings(_ context.Context, _ int64) ([]model.FilingRef, error) {
	return s.filings, nil
}

func (s *fixtureSource) FilingFiles(_ context.Context, _ int64, accession string) ([]string, error) {
	return s.files[accession], nil
}

func (s *fixtureSource) FileContents(_ context.Context, _ int64, accession, name string) ([]byte, error) {
	if body, ok := s.contents[accession+"/"+name]; ok {
		return body, nil
	}
	return nil, model.NewNotFound("document", name)
}

var anchor = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func form4Ref(filed, accession string) model.FilingRef {
	return model.FilingRef{
		CIK:             1045810,
		CompanyName:     "NVIDIA CORP",
		FormType:        "4",
		FilingDate:      model.ParseDate(filed),
		AccessionNumber: accession,
		PrimaryDocument: "xslF345X05/form4.xml",
	}
}

func newAggregator(src Source) *Aggregator {
	a := NewAggregator(src)
	a.now = func() time.Time { return anchor }
	return a
}

func newFixture() *fixtureSource {
	r := form4Ref("2024-03-05", "0001234567-24-000001")
	return &fixtureSource{
		filings: []model.FilingRef{r},
		contents: map[string][]byte{
			r.AccessionNumber + "/form4.xml": []byte(sampleForm4),
		},
	}
}

var company = &model.CompanyRef{CIK: 1045810, Name: "NVIDIA CORP"}

func TestTransactions(t *testing.T) {
	a := newAggregator(newFixture())

	t.Run("lists lines with filing ref attached", func(t *testing.T) {
		txs, err := a.Transactions(context.Background(), company, nil, 0, 0)
		require.NoError(t, err)
		require.Len(t, txs, 3)
		for _, tx := range txs {
			require.NotNil(t, tx.FilingRef)
			assert.Equal(t, "0001234567-24-000001", tx.FilingRef.AccessionNumber)
		}
	})

	t.Run("limit truncates", func(t *testing.T) {
		txs, err := a.Transactions(context.Background(), company, nil, 0, 2)
		require.NoError(t, err)
		assert.Len(t, txs, 2)
	})

	t.Run("out-of-window filings excluded", func(t *testing.T) {
		old := newFixture()
		old.filings[0].FilingDate = model.ParseDate("2023-01-01")
		txs, err := newAggregator(old).Transactions(context.Background(), company, nil, 30, 0)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("negative days rejected", func(t *testing.T) {
		_, err := a.Transactions(context.Background(), company, nil, -1, 0)
		assert.True(t, model.IsValidation(err))
	})
}

func TestSummary(t *testing.T) {
	a := newAggregator(newFixture())
	summary, err := a.Summary(context.Background(), company, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.BuyCount)
	assert.Equal(t, 1, summary.SellCount)
	assert.Equal(t, 1, summary.UniqueFilers)
	assert.Equal(t, json.Number("500"), summary.TotalSharesBought)
	assert.Equal(t, json.Number("12000"), summary.TotalSharesSold)
	require.Len(t, summary.FilingRefs, 1)
}

func TestSummaryJointFiling(t *testing.T) {
	src := newFixture()
	joint := form4Ref("2024-03-06", "0001234567-24-000005")
	src.filings = append(src.filings, joint)
	src.contents[joint.AccessionNumber+"/form4.xml"] = []byte(jointForm4)

	summary, err := newAggregator(src).Summary(context.Background(), company, 0)
	require.NoError(t, err)
	// The joint filing's second owner counts as a distinct filer.
	assert.Equal(t, 2, summary.UniqueFilers)
	assert.Equal(t, 2, summary.SellCount)
}

func TestForm4Details(t *testing.T) {
	a := newAggregator(newFixture())

	t.Run("full record with ref", func(t *testing.T) {
		details, err := a.Form4Details(context.Background(), company, "0001234567-24-000001")
		require.NoError(t, err)
		assert.Equal(t, "0001234567-24-000001", details.Ref.AccessionNumber)
		assert.Len(t, details.NonDerivative, 2)
	})

	t.Run("foreign accession not found", func(t *testing.T) {
		_, err := a.Form4Details(context.Background(), company, "0009999999-24-000001")
		assert.True(t, model.IsNotFound(err))
	})
}

func TestAnalyze(t *testing.T) {
	a := newAggregator(newFixture())
	txs, err := a.Analyze(context.Background(), company, 0, 0)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	t.Run("exact decimal total value", func(t *testing.T) {
		// 12000 * 852.06 computed exactly, no float drift.
		assert.Equal(t, json.Number("10224720"), txs[0].TotalValue)
		assert.Empty(t, txs[0].TotalValueMarker)

		assert.Equal(t, json.Number("425050"), txs[1].TotalValue)
	})

	t.Run("missing price marks value unavailable", func(t *testing.T) {
		rsu := txs[2]
		assert.Empty(t, rsu.TotalValue)
		assert.Equal(t, model.NotAvailable, rsu.TotalValueMarker)
	})
}

func TestSentiment(t *testing.T) {
	t.Run("contiguous months with net shares", func(t *testing.T) {
		a := newAggregator(newFixture())
		analysis, err := a.Sentiment(context.Background(), company, 6)
		require.NoError(t, err)
		require.Len(t, analysis.PeriodBuckets, 6)

		var march *model.MonthBucket
		for i := range analysis.PeriodBuckets {
			if analysis.PeriodBuckets[i].Month == "2024-03" {
				march = &analysis.PeriodBuckets[i]
			}
		}
		require.NotNil(t, march)
		// 500 bought minus 12000 sold; derivative line excluded.
		assert.Equal(t, json.Number("-11500"), march.NetShares)
		assert.Equal(t, 2, march.TransactionCount)
	})

	t.Run("trend labels from bucket signs", func(t *testing.T) {
		a := newAggregator(newFixture())
		analysis, err := a.Sentiment(context.Background(), company, 6)
		require.NoError(t, err)
		assert.Equal(t, "net-selling", analysis.TrendLabel)
	})

	t.Run("no activity is mixed", func(t *testing.T) {
		empty := &fixtureSource{}
		analysis, err := newAggregator(empty).Sentiment(context.Background(), company, 3)
		require.NoError(t, err)
		assert.Equal(t, "mixed", analysis.TrendLabel)
	})
}

// manyPurchasesForm4 builds an ownership document with n one-share
// purchases dated the same day.
func manyPurchasesForm4(date string, n int) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><ownershipDocument><documentType>4</documentType>` +
		`<issuer><issuerCik>0001045810</issuerCik><issuerName>NVIDIA CORP</issuerName></issuer>` +
		`<reportingOwner><reportingOwnerId><rptOwnerCik>0001234567</rptOwnerCik>` +
		`<rptOwnerName>HUANG JEN HSUN</rptOwnerName></reportingOwnerId></reportingOwner>` +
		`<nonDerivativeTable>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<nonDerivativeTransaction>`+
			`<transactionDate><value>%s</value></transactionDate>`+
			`<transactionCoding><transactionCode>P</transactionCode></transactionCoding>`+
			`<transactionAmounts><transactionShares><value>1</value></transactionShares>`+
			`<transactionAcquiredDisposedCode><value>A</value></transactionAcquiredDisposedCode>`+
			`</transactionAmounts></nonDerivativeTransaction>`, date)
	}
	b.WriteString(`</nonDerivativeTable></ownershipDocument>`)
	return []byte(b.String())
}

func TestSentimentMonthEndAnchor(t *testing.T) {
	// Anchored on the 31st, stepping months back from the anchor day
	// would normalize past the shorter neighbor and lose its bucket.
	ref := form4Ref("2024-02-15", "0001234567-24-000003")
	src := &fixtureSource{
		filings: []model.FilingRef{ref},
		contents: map[string][]byte{
			ref.AccessionNumber + "/form4.xml": manyPurchasesForm4("2024-02-15", 1),
		},
	}
	a := newAggregator(src)
	a.now = func() time.Time { return time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC) }

	analysis, err := a.Sentiment(context.Background(), company, 2)
	require.NoError(t, err)
	require.Len(t, analysis.PeriodBuckets, 2)
	assert.Equal(t, "2024-02", analysis.PeriodBuckets[0].Month)
	assert.Equal(t, "2024-03", analysis.PeriodBuckets[1].Month)

	feb := analysis.PeriodBuckets[0]
	assert.Equal(t, json.Number("1"), feb.NetShares)
	assert.Equal(t, 1, feb.TransactionCount)
	assert.Equal(t, "net-buying", analysis.TrendLabel)
}

func TestSentimentCountsEveryWindowedTransaction(t *testing.T) {
	// A busy month exceeds the listing default; the rollup still covers
	// every line in the window.
	ref := form4Ref("2024-03-05", "0001234567-24-000004")
	src := &fixtureSource{
		filings: []model.FilingRef{ref},
		contents: map[string][]byte{
			ref.AccessionNumber + "/form4.xml": manyPurchasesForm4("2024-03-04", 60),
		},
	}

	analysis, err := newAggregator(src).Sentiment(context.Background(), company, 1)
	require.NoError(t, err)
	require.Len(t, analysis.PeriodBuckets, 1)
	assert.Equal(t, "2024-03", analysis.PeriodBuckets[0].Month)
	assert.Equal(t, json.Number("60"), analysis.PeriodBuckets[0].NetShares)
	assert.Equal(t, 60, analysis.PeriodBuckets[0].TransactionCount)
}

func TestSentimentDeterministic(t *testing.T) {
	a := newAggregator(newFixture())
	first, err := a.Sentiment(context.Background(), company, 6)
	require.NoError(t, err)
	second, err := a.Sentiment(context.Background(), company, 6)
	require.NoError(t, err)

	aj, _ := json.Marshal(first)
	bj, _ := json.Marshal(second)
	assert.Equal(t, string(aj), string(bj))
}

func TestOwnershipDocumentName(t *testing.T) {
	assert.Equal(t, "form4.xml", ownershipDocumentName("xslF345X05/form4.xml"))
	assert.Equal(t, "wk-form4_1709677022.xml", ownershipDocumentName("wk-form4_1709677022.xml"))
	assert.Empty(t, ownershipDocumentName("form4.html"))
}

func TestMatchesOwnershipForm(t *testing.T) {
	assert.True(t, matchesOwnershipForm("4", []string{"3", "4", "5"}))
	assert.True(t, matchesOwnershipForm("4/A", []string{"4"}))
	assert.False(t, matchesOwnershipForm("10-K", []string{"3", "4", "5"}))
}

func TestSummarySkipsUnparseable(t *testing.T) {
	src := newFixture()
	bad := form4Ref("2024-03-06", "0001234567-24-000002")
	src.filings = append([]model.FilingRef{bad}, src.filings...)
	src.contents[bad.AccessionNumber+"/form4.xml"] = []byte("<ownershipDocument><unclosed")

	summary, err := newAggregator(src).Summary(context.Background(), company, 0)
	require.NoError(t, err)
	// Bad filing skipped; good one still counted.
	assert.Equal(t, 1, summary.SellCount)
	assert.Len(t, summary.FilingRefs, 1)
}

func ExampleParseOwnershipDocument() {
	details, _ := ParseOwnershipDocument([]byte(sampleForm4))
	fmt.Println(details.IssuerName)
	// Output: NVIDIA CORP
}
