package model

import (
	"fmt"
	"strings"
	"time"
)

// FilingRef identifies one filed document. A filing has exactly one
// accession number; a company has many FilingRefs ordered newest first.
type FilingRef struct {
	CIK             int64  `json:"cik"`
	CompanyName     string `json:"company_name,omitempty"`
	FormType        string `json:"form_type"`
	FilingDate      Date   `json:"filing_date"`
	ReportDate      Date   `json:"report_date,omitempty"`
	AccessionNumber string `json:"accession_number"`
	PrimaryDocument string `json:"primary_document,omitempty"`
	Items           string `json:"items,omitempty"`
	IsXBRL          bool   `json:"is_xbrl,omitempty"`
	SourceURL       string `json:"source_url"`
}

// Filing is a retrieved document: the reference, the primary document text,
// and the section map parsed from it.
type Filing struct {
	Ref      FilingRef         `json:"ref"`
	Document string            `json:"-"`
	Sections map[string]string `json:"sections,omitempty"`
}

// NormalizeAccession strips dashes from an accession number for use in
// EDGAR archive paths.
func NormalizeAccession(accession string) string {
	return strings.ReplaceAll(strings.TrimSpace(accession), "-", "")
}

// ArchiveURL returns the verifiable source URL for a filing document.
func ArchiveURL(cik int64, accession, document string) string {
	base := fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%d/%s", cik, NormalizeAccession(accession))
	if document == "" {
		return base
	}
	return base + "/" + document
}

// Date is a civil date (no time-of-day, no zone). Filing dates from EDGAR
// carry no timezone information and must round-trip byte-identically.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses an EDGAR "2006-01-02" date string. The zero Date is
// returned for empty or malformed input.
func ParseDate(s string) Date {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}
	}
	return DateOf(t)
}

// DateOf truncates a time.Time to its civil date in UTC.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return Date{Year: u.Year(), Month: u.Month(), Day: u.Day()}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d == Date{} }

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as "2006-01-02", or empty for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool { return d.Time().Before(other.Time()) }

// After reports whether d is later than other.
func (d Date) After(other Date) bool { return d.Time().After(other.Time()) }

// MarshalJSON encodes the date as a "2006-01-02" string (empty when zero).
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "2006-01-02" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	*d = ParseDate(s)
	return nil
}
