package xbrl

import (
	"sort"
	"strings"

	"github.com/sells-group/edgar-service/internal/model"
)

// segmentAxes maps a caller-facing segment type to the XBRL dimensional
// axes that carry it, in priority order.
var segmentAxes = map[string][]string{
	"geographic": {"StatementGeographicalAxis", "GeographicDistributionAxis"},
	"product":    {"ProductOrServiceAxis"},
	"business":   {"StatementBusinessSegmentsAxis", "OperatingSegmentsAxis", "SegmentReportingInformationBySegmentAxis"},
}

// revenueConcepts lists the concepts considered when breaking revenue
// down by segment, in priority order.
var revenueConcepts = []string{
	"RevenueFromContractWithCustomerExcludingAssessedTax",
	"Revenues",
	"SalesRevenueNet",
	"RevenueFromContractWithCustomerIncludingAssessedTax",
}

// SegmentTypes returns the supported segment types, sorted.
func SegmentTypes() []string {
	types := make([]string, 0, len(segmentAxes))
	for t := range segmentAxes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// SegmentData extracts the dimensional revenue breakdown for one segment
// type. Only facts carrying a matching axis/member pair qualify; facts
// without any segment dimension belong to the consolidated total and are
// excluded. The first revenue concept with any dimensional facts wins;
// concepts are never mixed in one breakdown.
func SegmentData(facts []model.Fact, segmentType string) []model.SegmentValue {
	axes, ok := segmentAxes[strings.ToLower(strings.TrimSpace(segmentType))]
	if !ok {
		return nil
	}

	for _, concept := range revenueConcepts {
		values := segmentValuesFor(facts, concept, axes)
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

func segmentValuesFor(facts []model.Fact, concept string, axes []string) []model.SegmentValue {
	var out []model.SegmentValue
	for _, f := range facts {
		if f.Concept != concept || !f.HasDimensions() || f.Value == "" {
			continue
		}
		axis, member, ok := matchAxis(f.Dimensions, axes)
		if !ok {
			continue
		}
		// A fact qualified by additional axes beyond the requested one is
		// a sub-breakdown, not a top-level segment value.
		if len(f.Dimensions) > 1 {
			continue
		}
		out = append(out, model.SegmentValue{
			SegmentLabel: memberLabel(member),
			Axis:         axis,
			Member:       member,
			Value:        f.Value,
			Unit:         f.Unit,
			Period:       f.PeriodLabel(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period > out[j].Period
		}
		return out[i].SegmentLabel < out[j].SegmentLabel
	})
	return out
}

func matchAxis(dims map[string]string, axes []string) (axis, member string, ok bool) {
	for dim, mem := range dims {
		local := dim
		if idx := strings.Index(local, ":"); idx >= 0 {
			local = local[idx+1:]
		}
		for _, want := range axes {
			if local == want {
				return dim, mem, true
			}
		}
	}
	return "", "", false
}

// memberLabel renders a dimension member QName as a readable label:
// "country:US" becomes "US", "nvda:ComputeAndNetworkingMember" becomes
// "Compute And Networking".
func memberLabel(member string) string {
	if idx := strings.Index(member, ":"); idx >= 0 {
		member = member[idx+1:]
	}
	member = strings.TrimSuffix(member, "Member")

	var sb strings.Builder
	for i, r := range member {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := rune(member[i-1])
			if prev >= 'a' && prev <= 'z' {
				sb.WriteByte(' ')
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
