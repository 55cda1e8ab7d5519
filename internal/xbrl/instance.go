// Package xbrl implements the normalization engine: parsing XBRL fact data
// from EDGAR filings and shaping it into canonical, citation-ready
// structures. Numeric values are carried as literal source lexemes end to
// end; nothing here rounds, coerces, or synthesizes a value.
package xbrl

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-service/internal/model"
)

const (
	xbrliNS  = "http://www.xbrl.org/2003/instance"
	xbrldiNS = "http://xbrl.org/2006/xbrldi"
	linkNS   = "http://www.xbrl.org/2003/linkbase"
	xlinkNS  = "http://www.w3.org/1999/xlink"
)

// Instance is a parsed XBRL instance document: every tagged fact with its
// resolved context and unit.
type Instance struct {
	Facts []model.Fact
}

type instContext struct {
	id         string
	instant    model.Date
	start      model.Date
	end        model.Date
	dimensions map[string]string
}

type instUnit struct {
	id      string
	measure string
}

// ParseInstance parses an XBRL instance document from raw bytes using a
// streaming token walk. Facts are any non-structural elements carrying a
// contextRef; their character content is preserved verbatim.
func ParseInstance(data []byte) (*Instance, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	contexts := make(map[string]instContext)
	units := make(map[string]instUnit)
	var facts []model.Fact

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "xbrl: parse instance document")
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case start.Name.Space == xbrliNS && start.Name.Local == "context":
			c, err := parseContext(dec, start)
			if err != nil {
				return nil, err
			}
			contexts[c.id] = c
		case start.Name.Space == xbrliNS && start.Name.Local == "unit":
			u, err := parseUnit(dec, start)
			if err != nil {
				return nil, err
			}
			units[u.id] = u
		case start.Name.Space == xbrliNS || start.Name.Space == linkNS || start.Name.Space == xlinkNS:
			// Structural element; descend without recording.
		default:
			fact, ok, err := parseFact(dec, start)
			if err != nil {
				return nil, err
			}
			if ok {
				facts = append(facts, fact)
			}
		}
	}

	resolved := make([]model.Fact, 0, len(facts))
	for _, f := range facts {
		if ctx, ok := contexts[f.ContextID]; ok {
			f.Instant = ctx.instant
			f.PeriodStart = ctx.start
			f.PeriodEnd = ctx.end
			f.Dimensions = ctx.dimensions
		}
		if u, ok := units[f.Unit]; ok {
			f.Unit = u.measure
		}
		resolved = append(resolved, f)
	}

	// Deterministic ordering: concept, then namespace, then context id.
	sort.SliceStable(resolved, func(i, j int) bool {
		if resolved[i].Concept != resolved[j].Concept {
			return resolved[i].Concept < resolved[j].Concept
		}
		if resolved[i].Namespace != resolved[j].Namespace {
			return resolved[i].Namespace < resolved[j].Namespace
		}
		return resolved[i].ContextID < resolved[j].ContextID
	})

	return &Instance{Facts: resolved}, nil
}

func parseContext(dec *xml.Decoder, start xml.StartElement) (instContext, error) {
	c := instContext{}
	for _, attr := range start.Attr {
		if attr.Name.Local == "id" {
			c.id = attr.Value
		}
	}

	depth := 1
	var inElement string
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return c, eris.Wrap(err, "xbrl: parse context")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			inElement = t.Name.Local
			if t.Name.Space == xbrldiNS && t.Name.Local == "explicitMember" {
				dim := ""
				for _, attr := range t.Attr {
					if attr.Name.Local == "dimension" {
						dim = attr.Value
					}
				}
				member, err := collectText(dec)
				if err != nil {
					return c, err
				}
				depth--
				if dim != "" {
					if c.dimensions == nil {
						c.dimensions = make(map[string]string)
					}
					c.dimensions[dim] = strings.TrimSpace(member)
				}
				inElement = ""
			}
		case xml.EndElement:
			depth--
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			switch inElement {
			case "instant":
				c.instant = model.ParseDate(text)
			case "startDate":
				c.start = model.ParseDate(text)
			case "endDate":
				c.end = model.ParseDate(text)
			}
		}
	}
	return c, nil
}

func parseUnit(dec *xml.Decoder, start xml.StartElement) (instUnit, error) {
	u := instUnit{}
	for _, attr := range start.Attr {
		if attr.Name.Local == "id" {
			u.id = attr.Value
		}
	}

	depth := 1
	var measures []string
	var divider bool
	var inMeasure bool
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return u, eris.Wrap(err, "xbrl: parse unit")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			inMeasure = t.Name.Local == "measure"
			if t.Name.Local == "divide" {
				divider = true
			}
		case xml.EndElement:
			depth--
			inMeasure = false
		case xml.CharData:
			if !inMeasure {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text != "" {
				measures = append(measures, cleanMeasure(text))
			}
		}
	}

	switch {
	case divider && len(measures) >= 2:
		u.measure = measures[0] + "/" + measures[1]
	case len(measures) > 0:
		u.measure = measures[0]
	}
	return u, nil
}

// cleanMeasure strips the measure prefix: "iso4217:USD" becomes "USD",
// "xbrli:shares" becomes "shares".
func cleanMeasure(m string) string {
	if idx := strings.Index(m, ":"); idx >= 0 {
		return m[idx+1:]
	}
	return m
}

func parseFact(dec *xml.Decoder, start xml.StartElement) (model.Fact, bool, error) {
	var contextRef, unitRef, decimals string
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "contextRef":
			contextRef = attr.Value
		case "unitRef":
			unitRef = attr.Value
		case "decimals":
			decimals = attr.Value
		}
	}
	if contextRef == "" {
		if err := dec.Skip(); err != nil {
			return model.Fact{}, false, eris.Wrap(err, "xbrl: skip element")
		}
		return model.Fact{}, false, nil
	}

	value, err := collectText(dec)
	if err != nil {
		return model.Fact{}, false, err
	}

	return model.Fact{
		Concept:   start.Name.Local,
		Namespace: NamespaceLabel(start.Name.Space),
		Value:     json.Number(strings.TrimSpace(value)),
		Unit:      unitRef,
		ContextID: contextRef,
		Decimals:  decimals,
	}, true, nil
}

// collectText reads character data until the current element closes.
// Nested markup (rare, for text-block facts) is flattened.
func collectText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", eris.Wrap(err, "xbrl: read element text")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(t)
		}
	}
	return sb.String(), nil
}
