// Package insider aggregates insider-ownership reports (Forms 3, 4, 5):
// transaction listings, buy/sell summaries, per-filing detail, and
// calendar-month sentiment bucketing. All aggregation uses exact decimal
// arithmetic; filed share and price lexemes are never altered.
package insider

import (
	"encoding/xml"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-service/internal/model"
)

// ownershipDocument mirrors the EDGAR ownership XML schema shared by
// Forms 3, 4, and 5. Most leaf values nest under a <value> element with
// an optional footnote reference alongside.
type ownershipDocument struct {
	XMLName        xml.Name `xml:"ownershipDocument"`
	DocumentType   string   `xml:"documentType"`
	PeriodOfReport string   `xml:"periodOfReport"`
	Issuer         struct {
		CIK    string `xml:"issuerCik"`
		Name   string `xml:"issuerName"`
		Symbol string `xml:"issuerTradingSymbol"`
	} `xml:"issuer"`
	ReportingOwners []struct {
		ID struct {
			CIK  string `xml:"rptOwnerCik"`
			Name string `xml:"rptOwnerName"`
		} `xml:"reportingOwnerId"`
		Relationship struct {
			IsDirector        string `xml:"isDirector"`
			IsOfficer         string `xml:"isOfficer"`
			IsTenPercentOwner string `xml:"isTenPercentOwner"`
			IsOther           string `xml:"isOther"`
			OfficerTitle      string `xml:"officerTitle"`
			OtherText         string `xml:"otherText"`
		} `xml:"reportingOwnerRelationship"`
	} `xml:"reportingOwner"`
	NonDerivative struct {
		Transactions []ownershipTransaction `xml:"nonDerivativeTransaction"`
		Holdings     []ownershipTransaction `xml:"nonDerivativeHolding"`
	} `xml:"nonDerivativeTable"`
	Derivative struct {
		Transactions []ownershipTransaction `xml:"derivativeTransaction"`
		Holdings     []ownershipTransaction `xml:"derivativeHolding"`
	} `xml:"derivativeTable"`
	Footnotes struct {
		Notes []struct {
			ID   string `xml:"id,attr"`
			Text string `xml:",chardata"`
		} `xml:"footnote"`
	} `xml:"footnotes"`
}

type ownershipTransaction struct {
	SecurityTitle valueElem `xml:"securityTitle"`
	Date          valueElem `xml:"transactionDate"`
	Coding        struct {
		Code string `xml:"transactionCode"`
	} `xml:"transactionCoding"`
	Amounts struct {
		Shares        valueElem `xml:"transactionShares"`
		PricePerShare valueElem `xml:"transactionPricePerShare"`
		AcquiredCode  valueElem `xml:"transactionAcquiredDisposedCode"`
	} `xml:"transactionAmounts"`
	PostAmounts struct {
		SharesOwned valueElem `xml:"sharesOwnedFollowingTransaction"`
	} `xml:"postTransactionAmounts"`
}

type valueElem struct {
	Value string `xml:"value"`
}

// ParseOwnershipDocument parses a Form 3/4/5 XML document into structured
// details. The caller attaches the filing reference.
func ParseOwnershipDocument(raw []byte) (*model.Form4Details, error) {
	var doc ownershipDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrap(err, "insider: parse ownership document")
	}

	details := &model.Form4Details{
		IssuerName:     doc.Issuer.Name,
		IssuerCIK:      strings.TrimSpace(doc.Issuer.CIK),
		PeriodOfReport: model.ParseDate(doc.PeriodOfReport),
	}

	// Joint filings carry several reporting owners; all are kept, and the
	// first doubles as the primary for the flat fields and per-line filer.
	for _, owner := range doc.ReportingOwners {
		details.Owners = append(details.Owners, model.Owner{
			Name: owner.ID.Name,
			CIK:  strings.TrimSpace(owner.ID.CIK),
			Relationship: model.Relationship{
				IsDirector:    xmlFlag(owner.Relationship.IsDirector),
				IsOfficer:     xmlFlag(owner.Relationship.IsOfficer),
				IsTenPctOwner: xmlFlag(owner.Relationship.IsTenPercentOwner),
				IsOther:       xmlFlag(owner.Relationship.IsOther),
				OfficerTitle:  strings.TrimSpace(owner.Relationship.OfficerTitle),
				OtherText:     strings.TrimSpace(owner.Relationship.OtherText),
			},
		})
	}

	var rel model.Relationship
	if len(details.Owners) > 0 {
		details.OwnerName = details.Owners[0].Name
		details.OwnerCIK = details.Owners[0].CIK
		rel = details.Owners[0].Relationship
	}
	details.Relationship = rel

	for _, tx := range doc.NonDerivative.Transactions {
		details.NonDerivative = append(details.NonDerivative, toTransaction(tx, details.OwnerName, rel, false))
	}
	for _, tx := range doc.Derivative.Transactions {
		details.Derivative = append(details.Derivative, toTransaction(tx, details.OwnerName, rel, true))
	}

	if len(doc.Footnotes.Notes) > 0 {
		details.Footnotes = make(map[string]string, len(doc.Footnotes.Notes))
		for _, note := range doc.Footnotes.Notes {
			details.Footnotes[note.ID] = strings.TrimSpace(note.Text)
		}
	}
	return details, nil
}

func toTransaction(tx ownershipTransaction, filer string, rel model.Relationship, derivative bool) model.InsiderTransaction {
	return model.InsiderTransaction{
		FilerName:        filer,
		Relationship:     rel,
		TransactionDate:  model.ParseDate(strings.TrimSpace(tx.Date.Value)),
		SecurityTitle:    strings.TrimSpace(tx.SecurityTitle.Value),
		Shares:           numberLexeme(tx.Amounts.Shares.Value),
		PricePerShare:    numberLexeme(tx.Amounts.PricePerShare.Value),
		TransactionCode:  strings.TrimSpace(tx.Coding.Code),
		Acquired:         strings.TrimSpace(tx.Amounts.AcquiredCode.Value) == "A",
		SharesOwnedAfter: numberLexeme(tx.PostAmounts.SharesOwned.Value),
		Derivative:       derivative,
	}
}

// xmlFlag parses the schema's boolean spellings ("1", "true").
func xmlFlag(s string) bool {
	s = strings.TrimSpace(s)
	return s == "1" || strings.EqualFold(s, "true")
}
