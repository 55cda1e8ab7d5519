package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d := ParseDate("2024-01-28")
		assert.Equal(t, 2024, d.Year)
		assert.Equal(t, time.January, d.Month)
		assert.Equal(t, 28, d.Day)
	})

	t.Run("empty and malformed return zero", func(t *testing.T) {
		assert.True(t, ParseDate("").IsZero())
		assert.True(t, ParseDate("not a date").IsZero())
		assert.True(t, ParseDate("2024-13-99").IsZero())
	})
}

func TestDateRoundTrip(t *testing.T) {
	d := ParseDate("2024-01-28")
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-28"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)
}

func TestDateOrdering(t *testing.T) {
	a := ParseDate("2024-01-01")
	b := ParseDate("2024-06-30")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
}

func TestNormalizeAccession(t *testing.T) {
	assert.Equal(t, "000104581024000029", NormalizeAccession("0001045810-24-000029"))
	assert.Equal(t, "000104581024000029", NormalizeAccession(" 000104581024000029 "))
}

func TestArchiveURL(t *testing.T) {
	t.Run("with document", func(t *testing.T) {
		got := ArchiveURL(1045810, "0001045810-24-000029", "nvda-20240128.htm")
		assert.Equal(t, "https://www.sec.gov/Archives/edgar/data/1045810/000104581024000029/nvda-20240128.htm", got)
	})

	t.Run("directory only", func(t *testing.T) {
		got := ArchiveURL(1045810, "0001045810-24-000029", "")
		assert.Equal(t, "https://www.sec.gov/Archives/edgar/data/1045810/000104581024000029", got)
	})
}

func TestFactValuePreservesLexeme(t *testing.T) {
	f := Fact{Concept: "Revenues", Namespace: "us-gaap", Value: json.Number("37044000000")}
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"value":37044000000`)
}

func TestPeriodLabel(t *testing.T) {
	t.Run("instant", func(t *testing.T) {
		f := Fact{Instant: ParseDate("2024-01-28")}
		assert.Equal(t, "2024-01-28", f.PeriodLabel())
	})

	t.Run("duration", func(t *testing.T) {
		f := Fact{PeriodStart: ParseDate("2023-01-30"), PeriodEnd: ParseDate("2024-01-28")}
		assert.Equal(t, "2023-01-30 to 2024-01-28", f.PeriodLabel())
	})

	t.Run("no period", func(t *testing.T) {
		assert.Empty(t, (&Fact{}).PeriodLabel())
	})
}
