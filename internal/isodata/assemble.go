package isodata

import (
	"math"
	"sort"
)

// Assembly is the output of Assemble.
type Assembly struct {
	Groups []GroupSummary
	Final  []FinalRow
	// MixedOrder lists groups whose replicates carried different
	// condition_order values; the lowest one was kept.
	MixedOrder []GroupKey
}

// Assemble restores condition_order on the group table and left-joins the
// observations with their group statistics into the final table. Missing
// values left by the join are replaced with 0.
func Assemble(obs []Observation, groups []GroupSummary) Assembly {
	type orderInfo struct {
		value float64
		mixed bool
	}
	orders := make(map[GroupKey]*orderInfo, len(groups))
	for _, o := range obs {
		k := o.Key()
		oi, ok := orders[k]
		if !ok {
			orders[k] = &orderInfo{value: o.ConditionOrder}
			continue
		}
		if o.ConditionOrder != oi.value {
			oi.mixed = true
			oi.value = math.Min(oi.value, o.ConditionOrder)
		}
	}

	var res Assembly
	res.Groups = make([]GroupSummary, len(groups))
	byKey := make(map[GroupKey]GroupSummary, len(groups))
	for i, g := range groups {
		if oi, ok := orders[g.GroupKey]; ok {
			g.ConditionOrder = oi.value
			if oi.mixed {
				res.MixedOrder = append(res.MixedOrder, g.GroupKey)
			}
		}
		res.Groups[i] = g
		byKey[g.GroupKey] = g
	}

	res.Final = make([]FinalRow, 0, len(obs))
	for _, o := range obs {
		row := FinalRow{
			GroupKey:       o.Key(),
			NumberRep:      o.NumberRep,
			Sample:         o.Sample,
			ConditionOrder: zeroIfNaN(o.ConditionOrder),
			Area:           zeroIfNaN(o.Area),
			Value:          o.Values.zeroNaN(),
		}
		if g, ok := byKey[row.GroupKey]; ok {
			row.Mean = g.Mean.zeroNaN()
			row.SD = g.SD.zeroNaN()
		}
		res.Final = append(res.Final, row)
	}
	sort.SliceStable(res.Final, func(i, j int) bool {
		a, b := res.Final[i], res.Final[j]
		if a.GroupKey != b.GroupKey {
			return a.GroupKey.Less(b.GroupKey)
		}
		return a.NumberRep < b.NumberRep
	})
	return res
}

func zeroIfNaN(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}
