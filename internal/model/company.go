// Package model defines the domain types shared across the filing service:
// company references, filing references, XBRL facts, insider transactions,
// and the error kinds every operation surfaces.
package model

import "fmt"

// CompanyRef identifies a company resolved against SEC records. It is
// immutable once resolved and safe to cache and share across requests.
type CompanyRef struct {
	CIK            int64    `json:"cik"`
	Name           string   `json:"name"`
	Tickers        []string `json:"tickers,omitempty"`
	Exchanges      []string `json:"exchanges,omitempty"`
	SIC            string   `json:"sic,omitempty"`
	SICDescription string   `json:"sic_description,omitempty"`
	EntityType     string   `json:"entity_type,omitempty"`
}

// PaddedCIK returns the 10-digit zero-padded CIK string used by EDGAR URLs.
func (c *CompanyRef) PaddedCIK() string {
	return fmt.Sprintf("%010d", c.CIK)
}

// PrimaryTicker returns the first listed ticker, or empty string.
func (c *CompanyRef) PrimaryTicker() string {
	if len(c.Tickers) == 0 {
		return ""
	}
	return c.Tickers[0]
}
