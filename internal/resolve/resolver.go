// Package resolve maps user-supplied company identifiers (tickers, CIK
// numbers, company names) onto canonical SEC company references. Every
// downstream operation starts here so the rest of the service deals only
// in resolved CIKs.
package resolve

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/edgar-service/internal/model"
)

// Directory is the slice of the EDGAR client the resolver depends on.
type Directory interface {
	Companies(ctx context.Context) ([]model.CompanyRef, error)
	Company(ctx context.Context, cik int64) (*model.CompanyRef, error)
}

// DefaultSearchLimit caps search results when the caller does not name a
// limit.
const DefaultSearchLimit = 10

// tableTTL bounds how long the ticker table is served from memory before
// a refresh. The SEC publishes updates daily.
const tableTTL = 12 * time.Hour

// Resolver resolves identifiers against the SEC ticker table and company
// submissions, with an in-memory bounded cache so repeated lookups do not
// re-fetch. Resolution itself is pure: identical inputs against identical
// upstream data produce identical outputs.
type Resolver struct {
	dir Directory
	sf  singleflight.Group
	log *zap.Logger

	profiles *lru.Cache[int64, *model.CompanyRef]

	mu        sync.RWMutex
	table     []model.CompanyRef
	byTicker  map[string]int
	fetchedAt time.Time
}

// NewResolver creates a resolver over the given directory. cacheSize
// bounds the company-profile cache; zero uses a sensible default.
func NewResolver(dir Directory, cacheSize int) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	profiles, err := lru.New[int64, *model.CompanyRef](cacheSize)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: create profile cache")
	}
	return &Resolver{
		dir:      dir,
		log:      zap.L().With(zap.String("component", "resolver")),
		profiles: profiles,
	}, nil
}

// Resolve maps an identifier to a canonical company reference. The
// identifier may be a ticker symbol ("NVDA", case-insensitive) or a CIK
// number with or without leading zeros ("1045810", "0001045810").
// Unresolvable identifiers return NotFoundError, never a guess.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*model.CompanyRef, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, model.NewValidation("identifier", "must not be empty")
	}

	if cik, ok := parseCIK(identifier); ok {
		ref, err := r.Profile(ctx, cik)
		if err != nil {
			if model.IsNotFound(err) {
				return nil, model.NewNotFound("company", identifier)
			}
			return nil, err
		}
		return ref, nil
	}

	cik, ok, err := r.lookupTicker(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewNotFound("company", identifier)
	}
	return r.Profile(ctx, cik)
}

// Profile retrieves the full company profile for a CIK, cached.
func (r *Resolver) Profile(ctx context.Context, cik int64) (*model.CompanyRef, error) {
	if ref, ok := r.profiles.Get(cik); ok {
		return ref, nil
	}

	v, err, _ := r.sf.Do("profile:"+strconv.FormatInt(cik, 10), func() (any, error) {
		ref, err := r.dir.Company(ctx, cik)
		if err != nil {
			return nil, err
		}
		r.profiles.Add(cik, ref)
		return ref, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.CompanyRef), nil
}

// SearchResult is one ranked search hit.
type SearchResult struct {
	Company model.CompanyRef `json:"company"`
	Match   string           `json:"match"`
}

// Search finds companies whose ticker or name matches the query,
// case-insensitive. Ranking is fixed: exact ticker, then ticker prefix,
// then name prefix, then name substring, with ascending CIK as the final
// tie-break so equal-rank output order is stable.
func (r *Resolver) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.NewValidation("query", "must not be empty")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	table, _, err := r.companyTable(ctx)
	if err != nil {
		return nil, err
	}

	upper := strings.ToUpper(query)
	lower := strings.ToLower(query)

	type scored struct {
		result SearchResult
		rank   int
		cik    int64
	}
	var hits []scored
	for i := range table {
		ref := &table[i]
		rank, match := matchRank(ref, upper, lower)
		if rank < 0 {
			continue
		}
		hits = append(hits, scored{
			result: SearchResult{Company: *ref, Match: match},
			rank:   rank,
			cik:    ref.CIK,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		return hits[i].cik < hits[j].cik
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, h.result)
	}
	return results, nil
}

func matchRank(ref *model.CompanyRef, upperQuery, lowerQuery string) (int, string) {
	for _, t := range ref.Tickers {
		tu := strings.ToUpper(t)
		if tu == upperQuery || normalizeTicker(tu) == normalizeTicker(upperQuery) {
			return 0, "ticker"
		}
	}
	for _, t := range ref.Tickers {
		if strings.HasPrefix(strings.ToUpper(t), upperQuery) {
			return 1, "ticker_prefix"
		}
	}
	name := strings.ToLower(ref.Name)
	if strings.HasPrefix(name, lowerQuery) {
		return 2, "name_prefix"
	}
	if strings.Contains(name, lowerQuery) {
		return 3, "name"
	}
	return -1, ""
}

// lookupTicker resolves a ticker against the cached table, tolerating the
// dot/dash class-share spelling difference ("BRK.B" vs "BRK-B").
func (r *Resolver) lookupTicker(ctx context.Context, ticker string) (int64, bool, error) {
	table, byTicker, err := r.companyTable(ctx)
	if err != nil {
		return 0, false, err
	}
	key := normalizeTicker(strings.ToUpper(ticker))
	idx, ok := byTicker[key]
	if !ok {
		return 0, false, nil
	}
	return table[idx].CIK, true, nil
}

// companyTable returns the cached ticker table, refreshing it when stale.
// Concurrent refreshes collapse into one upstream fetch.
func (r *Resolver) companyTable(ctx context.Context) ([]model.CompanyRef, map[string]int, error) {
	r.mu.RLock()
	if r.table != nil && time.Since(r.fetchedAt) < tableTTL {
		table, byTicker := r.table, r.byTicker
		r.mu.RUnlock()
		return table, byTicker, nil
	}
	r.mu.RUnlock()

	_, err, _ := r.sf.Do("companies", func() (any, error) {
		refs, err := r.dir.Companies(ctx)
		if err != nil {
			// Serve the stale table rather than failing when upstream
			// wobbles and we still have data.
			r.mu.RLock()
			stale := r.table != nil
			r.mu.RUnlock()
			if stale && model.IsUpstream(err) {
				r.log.Warn("ticker table refresh failed, serving stale copy", zap.Error(err))
				return nil, nil
			}
			return nil, err
		}

		byTicker := make(map[string]int)
		for i, ref := range refs {
			for _, t := range ref.Tickers {
				key := normalizeTicker(strings.ToUpper(t))
				if _, exists := byTicker[key]; !exists {
					byTicker[key] = i
				}
			}
		}

		r.mu.Lock()
		r.table = refs
		r.byTicker = byTicker
		r.fetchedAt = time.Now()
		r.mu.Unlock()
		r.log.Debug("ticker table refreshed", zap.Int("companies", len(refs)))
		return nil, nil
	})
	if err != nil {
		return nil, nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table, r.byTicker, nil
}

func normalizeTicker(t string) string {
	return strings.ReplaceAll(t, ".", "-")
}

// parseCIK reports whether the identifier is a CIK: all digits, at most
// ten of them. Tickers never consist solely of digits.
func parseCIK(s string) (int64, bool) {
	if len(s) == 0 || len(s) > 10 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	cik, err := strconv.ParseInt(s, 10, 64)
	if err != nil || cik == 0 {
		return 0, false
	}
	return cik, true
}
