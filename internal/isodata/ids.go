package isodata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// HyphenateCondition replaces underscores so that IDs split on "_" stay
// unambiguous.
func HyphenateCondition(c string) string {
	return strings.ReplaceAll(c, "_", "-")
}

// ObservationID builds "<condition>_T<time>_<rep>".
func ObservationID(condition string, time, rep int64) string {
	return GroupID(condition, time) + "_" + strconv.FormatInt(rep, 10)
}

// GroupID builds "<condition>_T<time>".
func GroupID(condition string, time int64) string {
	return condition + "_T" + strconv.FormatInt(time, 10)
}

// Identify hyphenates conditions and assigns IDs on copies of both tables.
func Identify(obs []Observation, groups []GroupSummary) ([]Observation, []GroupSummary, error) {
	outObs := make([]Observation, len(obs))
	for i, o := range obs {
		if strings.TrimSpace(o.Condition) == "" {
			return nil, nil, &FormattingError{Field: ColCondition, Row: i + 1}
		}
		o.Condition = HyphenateCondition(o.Condition)
		o.ID = ObservationID(o.Condition, o.Time, o.NumberRep)
		outObs[i] = o
	}

	outGroups := make([]GroupSummary, len(groups))
	origin := make(map[GroupKey]string, len(groups))
	for i, g := range groups {
		if strings.TrimSpace(g.Condition) == "" {
			return nil, nil, &FormattingError{Field: ColCondition, Row: i + 1}
		}
		raw := g.Condition
		g.Condition = HyphenateCondition(raw)
		if prev, clash := origin[g.GroupKey]; clash && prev != raw {
			return nil, nil, &FormattingError{Reason: fmt.Sprintf(
				"conditions %q and %q are identical once underscores become hyphens", prev, raw)}
		}
		origin[g.GroupKey] = raw
		g.ID = GroupID(g.Condition, g.Time)
		outGroups[i] = g
	}
	sort.SliceStable(outGroups, func(i, j int) bool { return outGroups[i].GroupKey.Less(outGroups[j].GroupKey) })
	return outObs, outGroups, nil
}
