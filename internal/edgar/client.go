// Package edgar implements the filing-source collaborator adapter: an HTTP
// client for SEC EDGAR (data.sec.gov, www.sec.gov, efts.sec.gov) with
// per-host rate limiting and bounded retry for transient failures. Retry
// policy lives here, in the adapter, never in the core components.
package edgar

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/edgar-service/internal/model"
	"github.com/sells-group/edgar-service/internal/resilience"
)

const (
	submissionsURL    = "https://data.sec.gov/submissions"
	companyTickersURL = "https://www.sec.gov/files/company_tickers_exchange.json"
	archivesURL       = "https://www.sec.gov/Archives/edgar/data"
	xbrlAPIURL        = "https://data.sec.gov/api/xbrl"
	ftsURL            = "https://efts.sec.gov/LATEST/search-index"
)

// Options configures the EDGAR client. The SEC requires a descriptive
// User-Agent identifying the caller.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
}

// Client is the HTTP implementation of the EDGAR filing source.
type Client struct {
	client   *http.Client
	opts     Options
	limiters map[string]*rate.Limiter
}

// DefaultRateLimiters returns the per-host rate limiters. SEC fair-access
// policy allows 10 requests per second per host.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"www.sec.gov":  rate.NewLimiter(10, 10),
		"data.sec.gov": rate.NewLimiter(10, 10),
		"efts.sec.gov": rate.NewLimiter(10, 10),
	}
}

// NewClient creates an EDGAR client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "edgar-service/1.0"
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: DefaultRateLimiters(),
	}
}

func (c *Client) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rate.NewLimiter(10, 10)
	}
	if lim, ok := c.limiters[u.Host]; ok {
		return lim
	}
	return rate.NewLimiter(10, 10)
}

// get fetches a URL with rate limiting and bounded retry on transient
// failures (throttling, 5xx, network faults). 404 maps to NotFoundError;
// other failures surface as UpstreamError so the caller can relay them
// without crashing.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	policy := resilience.Policy{
		MaxAttempts: c.opts.MaxRetries,
		OnRetry:     resilience.Logger("edgar", rawURL),
	}
	return resilience.Do(ctx, policy, func(ctx context.Context) ([]byte, error) {
		return c.fetch(ctx, rawURL)
	})
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiterFor(rawURL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "edgar: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "edgar: create request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &model.UpstreamError{Operation: "get", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, model.NewNotFound("document", rawURL)
	case resp.StatusCode != http.StatusOK:
		return nil, &model.UpstreamError{Operation: "get", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "edgar: read response body")
	}
	return body, nil
}
