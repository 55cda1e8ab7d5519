package edgar

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-service/internal/model"
)

// Companies retrieves the full ticker-to-CIK table published by the SEC.
// The table is the resolution base for ticker lookups and name search.
func (c *Client) Companies(ctx context.Context) ([]model.CompanyRef, error) {
	body, err := c.get(ctx, companyTickersURL)
	if err != nil {
		return nil, eris.Wrap(err, "edgar: fetch company tickers")
	}

	var table struct {
		Fields []string `json:"fields"`
		Data   [][]any  `json:"data"`
	}
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, eris.Wrap(err, "edgar: decode company tickers")
	}

	// Rows are [cik, name, ticker, exchange]. Companies listed on several
	// exchanges appear once per ticker; collapse by CIK preserving the
	// published row order.
	byCIK := make(map[int64]*model.CompanyRef)
	var order []int64
	for _, row := range table.Data {
		if len(row) != 4 {
			continue
		}
		cikF, ok := row[0].(float64)
		if !ok {
			continue
		}
		name, _ := row[1].(string)
		ticker, _ := row[2].(string)
		exchange, _ := row[3].(string)

		cik := int64(cikF)
		ref, seen := byCIK[cik]
		if !seen {
			ref = &model.CompanyRef{CIK: cik, Name: name}
			byCIK[cik] = ref
			order = append(order, cik)
		}
		if ticker != "" {
			ref.Tickers = append(ref.Tickers, ticker)
		}
		if exchange != "" {
			ref.Exchanges = append(ref.Exchanges, exchange)
		}
	}

	refs := make([]model.CompanyRef, 0, len(order))
	for _, cik := range order {
		refs = append(refs, *byCIK[cik])
	}
	return refs, nil
}

// Company retrieves a company's profile from its submissions file.
func (c *Client) Company(ctx context.Context, cik int64) (*model.CompanyRef, error) {
	sub, err := c.submissions(ctx, cik)
	if err != nil {
		return nil, err
	}
	return &model.CompanyRef{
		CIK:            cik,
		Name:           sub.Name,
		Tickers:        sub.Tickers,
		Exchanges:      sub.Exchanges,
		SIC:            sub.SIC,
		SICDescription: sub.SICDescription,
		EntityType:     sub.EntityType,
	}, nil
}

func (c *Client) submissions(ctx context.Context, cik int64) (*submissionsResponse, error) {
	u := fmt.Sprintf("%s/CIK%010d.json", submissionsURL, cik)
	body, err := c.get(ctx, u)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, model.NewNotFound("company", fmt.Sprintf("CIK %d", cik))
		}
		return nil, eris.Wrap(err, "edgar: fetch submissions")
	}

	var sub submissionsResponse
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, eris.Wrap(err, "edgar: decode submissions")
	}
	return &sub, nil
}

func (c *Client) supplementalSubmissions(ctx context.Context, name string) (*filingColumns, error) {
	body, err := c.get(ctx, submissionsURL+"/"+name)
	if err != nil {
		return nil, eris.Wrapf(err, "edgar: fetch supplemental submissions %s", name)
	}

	var cols filingColumns
	if err := json.Unmarshal(body, &cols); err != nil {
		return nil, eris.Wrap(err, "edgar: decode supplemental submissions")
	}
	return &cols, nil
}
