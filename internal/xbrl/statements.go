package xbrl

import (
	_ "embed"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/edgar-service/internal/model"
)

//go:embed statements.yaml
var statementsYAML []byte

// LineItemMapping is one canonical line item with its candidate source
// concepts in priority order.
type LineItemMapping struct {
	Label    string   `yaml:"label"`
	Concepts []string `yaml:"concepts"`
}

// StatementMapping is the ordered mapping table for one statement type.
type StatementMapping struct {
	Type  string            `yaml:"type"`
	Items []LineItemMapping `yaml:"items"`
}

type statementTable struct {
	Statements []StatementMapping `yaml:"statements"`
}

var (
	tableOnce sync.Once
	table     statementTable
	tableErr  error
)

// StatementTable returns the embedded canonical line-item mapping table.
func StatementTable() ([]StatementMapping, error) {
	tableOnce.Do(func() {
		tableErr = yaml.Unmarshal(statementsYAML, &table)
		if tableErr != nil {
			tableErr = eris.Wrap(tableErr, "xbrl: parse statement mapping table")
		}
	})
	return table.Statements, tableErr
}

// StatementTypes lists the canonical statement types in table order.
func StatementTypes() []string {
	mappings, err := StatementTable()
	if err != nil {
		return nil
	}
	types := make([]string, 0, len(mappings))
	for _, m := range mappings {
		types = append(types, m.Type)
	}
	return types
}

// BuildStatement maps a filing's facts onto one canonical statement.
// Matching is strictly first-match by the table's declared priority
// order. Canonical items with no matching tag are emitted with the
// explicit not-available marker, never omitted, so callers can tell
// "absent from filing" apart from "not requested".
func BuildStatement(facts []model.Fact, mapping StatementMapping) model.StatementView {
	view := model.StatementView{
		StatementType: mapping.Type,
		Items:         make([]model.StatementLineItem, 0, len(mapping.Items)),
	}

	index := primaryFactIndex(facts)

	for _, item := range mapping.Items {
		line := model.StatementLineItem{Label: item.Label}
		for _, concept := range item.Concepts {
			fact, ok := index[concept]
			if !ok {
				continue
			}
			line.Value = fact.Value
			line.Available = true
			line.Unit = fact.Unit
			line.Period = fact.PeriodLabel()
			line.MatchedTag = fact.Concept
			line.Namespace = fact.Namespace
			break
		}
		if !line.Available {
			line.Marker = model.NotAvailable
		}
		view.Items = append(view.Items, line)
	}
	return view
}

// primaryFactIndex selects, for each concept, the fact representing the
// filing's primary reported figure: undimensioned (consolidated total),
// latest period end, longest duration, with context id as the final
// deterministic tie-break.
func primaryFactIndex(facts []model.Fact) map[string]model.Fact {
	index := make(map[string]model.Fact)
	for _, f := range facts {
		if f.HasDimensions() || f.Value == "" {
			continue
		}
		cur, seen := index[f.Concept]
		if !seen || betterPrimary(f, cur) {
			index[f.Concept] = f
		}
	}
	return index
}

func betterPrimary(a, b model.Fact) bool {
	aEnd, bEnd := factEnd(a), factEnd(b)
	if aEnd != bEnd {
		return aEnd.After(bEnd)
	}
	aSpan, bSpan := factSpan(a), factSpan(b)
	if aSpan != bSpan {
		return aSpan > bSpan
	}
	return a.ContextID < b.ContextID
}

func factEnd(f model.Fact) model.Date {
	if !f.Instant.IsZero() {
		return f.Instant
	}
	return f.PeriodEnd
}

// factSpan returns the duration covered by a fact in days; zero for
// instants.
func factSpan(f model.Fact) int {
	if f.PeriodStart.IsZero() || f.PeriodEnd.IsZero() {
		return 0
	}
	return int(f.PeriodEnd.Time().Sub(f.PeriodStart.Time()).Hours() / 24)
}
