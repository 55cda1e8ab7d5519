package filings

import (
	"regexp"
	"sort"
	"strings"
)

// sectionSpec names one extractable section and the item heading that
// opens it in the filed document.
type sectionSpec struct {
	Name    string
	Heading *regexp.Regexp
}

// Form-specific section taxonomies. Patterns anchor on the standard item
// numbering; filers vary whitespace and punctuation but not the numbers.
var (
	tenKSections = []sectionSpec{
		{"business", itemHeading(`1`)},
		{"risk_factors", itemHeading(`1A`)},
		{"legal_proceedings", itemHeading(`3`)},
		{"mda", itemHeading(`7`)},
		{"financial_statements", itemHeading(`8`)},
	}
	tenQSections = []sectionSpec{
		{"mda", itemHeading(`2`)},
		{"quantitative_qualitative_disclosures", itemHeading(`3`)},
		{"controls", itemHeading(`4`)},
		{"risk_factors", itemHeading(`1A`)},
	}
)

// anyItemHeading finds the next item boundary of any number, used to
// close an open section.
var anyItemHeading = regexp.MustCompile(`(?i)item\s+\d+[A-Z]?\s*[\.\:—\-]`)

// sectionExcerptLimit caps extracted section text. Sections are excerpts
// for navigation and citation, not full-document transfer.
const sectionExcerptLimit = 20000

func itemHeading(num string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)item\s+` + num + `\s*[\.\:—\-]`)
}

// ExtractSections extracts the form-specific sections from a filing's
// plain text. Forms without a known taxonomy return an empty map, never
// an error. Each section runs from its item heading to the next item
// heading of any number, truncated to the excerpt limit.
func ExtractSections(text, formType string) map[string]string {
	var specs []sectionSpec
	switch normalizeForm(formType) {
	case "10-K":
		specs = tenKSections
	case "10-Q":
		specs = tenQSections
	default:
		return map[string]string{}
	}

	out := make(map[string]string, len(specs))
	for _, spec := range specs {
		if excerpt := extractSection(text, spec.Heading); excerpt != "" {
			out[spec.Name] = excerpt
		}
	}
	return out
}

// SectionNames lists the extractable section names for a form type,
// sorted, for caller discovery.
func SectionNames(formType string) []string {
	var specs []sectionSpec
	switch normalizeForm(formType) {
	case "10-K":
		specs = tenKSections
	case "10-Q":
		specs = tenQSections
	}
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// normalizeForm collapses amendment suffixes for section taxonomy
// selection; a 10-K/A carries the same item structure as a 10-K.
func normalizeForm(formType string) string {
	form := strings.ToUpper(strings.TrimSpace(formType))
	return strings.TrimSuffix(form, "/A")
}

// extractSection picks the LAST heading occurrence: filed documents
// repeat every item in the table of contents, and the body occurrence
// comes after it.
func extractSection(text string, heading *regexp.Regexp) string {
	locs := heading.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return ""
	}
	start := locs[len(locs)-1][0]
	rest := text[start:]

	// Skip past the matched heading itself before looking for the next
	// item boundary.
	headLen := locs[len(locs)-1][1] - start
	if next := anyItemHeading.FindStringIndex(rest[headLen:]); next != nil {
		rest = rest[:headLen+next[0]]
	}
	if len(rest) > sectionExcerptLimit {
		rest = rest[:sectionExcerptLimit]
	}
	return strings.TrimSpace(rest)
}

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	scriptPattern = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	spacePattern  = regexp.MustCompile(`[ \t\x{00a0}]+`)
	blankPattern  = regexp.MustCompile(`\n{3,}`)
)

// stripMarkup reduces a filed HTML document to plain text: tags removed,
// entities decoded for the handful EDGAR filings actually use, whitespace
// collapsed. Primary documents that are already plain text pass through
// unchanged apart from whitespace normalization.
func stripMarkup(doc string) string {
	doc = scriptPattern.ReplaceAllString(doc, " ")
	doc = tagPattern.ReplaceAllString(doc, " ")

	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#8217;", "'",
		"&#8220;", `"`,
		"&#8221;", `"`,
		"&#8211;", "-",
		"&#8212;", "-",
	)
	doc = replacer.Replace(doc)

	doc = spacePattern.ReplaceAllString(doc, " ")
	doc = blankPattern.ReplaceAllString(doc, "\n\n")
	return strings.TrimSpace(doc)
}
