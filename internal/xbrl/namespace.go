package xbrl

import (
	"net/url"
	"strings"
)

// Standard taxonomy namespace labels. Concepts outside this set are
// filer-specific extension concepts.
var standardNamespaces = map[string]bool{
	"us-gaap":   true,
	"dei":       true,
	"srt":       true,
	"ifrs-full": true,
	"invest":    true,
	"country":   true,
	"currency":  true,
	"exch":      true,
	"stpr":      true,
	"naics":     true,
	"sic":       true,
}

// namespacePatterns maps well-known taxonomy URI fragments to their
// canonical prefix labels.
var namespacePatterns = []struct {
	fragment string
	label    string
}{
	{"fasb.org/us-gaap", "us-gaap"},
	{"fasb.org/srt", "srt"},
	{"xbrl.sec.gov/dei", "dei"},
	{"xbrl.sec.gov/country", "country"},
	{"xbrl.sec.gov/currency", "currency"},
	{"xbrl.sec.gov/exch", "exch"},
	{"xbrl.sec.gov/stpr", "stpr"},
	{"xbrl.sec.gov/naics", "naics"},
	{"xbrl.sec.gov/sic", "sic"},
	{"xbrl.sec.gov/invest", "invest"},
	{"xbrl.ifrs.org", "ifrs-full"},
}

// NamespaceLabel maps a taxonomy namespace URI to its canonical prefix
// label. Unknown URIs are filer extension taxonomies; the label derives
// deterministically from the URI host (e.g. "http://www.nvidia.com/20240128"
// becomes "nvidia").
func NamespaceLabel(uri string) string {
	for _, p := range namespacePatterns {
		if strings.Contains(uri, p.fragment) {
			return p.label
		}
	}

	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return uri
	}
	host := strings.TrimPrefix(u.Host, "www.")
	if idx := strings.Index(host, "."); idx > 0 {
		host = host[:idx]
	}
	return host
}

// IsStandardNamespace reports whether a namespace label belongs to a
// known standard taxonomy rather than a filer extension.
func IsStandardNamespace(label string) bool {
	return standardNamespaces[label]
}
