package isodata

import (
	"errors"
	"math"
	"sort"
	"strconv"
)

// toInt64 converts a numerically integral value. 6.0 and 6 map to the same key.
func toInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("value is not finite")
	}
	if f != math.Trunc(f) {
		return 0, errors.New("value is not an integer")
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, errors.New("value out of range")
	}
	return int64(f), nil
}

// CoerceKeys converts time and number_rep to integers and returns the
// individual observation table.
func CoerceKeys(rows []Joined) ([]Observation, error) {
	out := make([]Observation, len(rows))
	for i, r := range rows {
		t, err := toInt64(r.Time)
		if err != nil {
			return nil, &ConversionError{Table: tableMetadata, Column: ColTime, Sample: r.Sample,
				Value: strconv.FormatFloat(r.Time, 'g', -1, 64), Err: err}
		}
		rep, err := toInt64(r.NumberRep)
		if err != nil {
			return nil, &ConversionError{Table: tableMetadata, Column: ColNumberRep, Sample: r.Sample,
				Value: strconv.FormatFloat(r.NumberRep, 'g', -1, 64), Err: err}
		}
		out[i] = Observation{
			Measurement:    r.Measurement,
			Condition:      r.Condition,
			ConditionOrder: r.ConditionOrder,
			Time:           t,
			NumberRep:      rep,
			Normalization:  r.Normalization,
		}
	}
	return out, nil
}

type groupAcc struct {
	key  GroupKey
	n    int
	vals [3]accumulator
}

// Aggregate groups observations by (metabolite, condition, time,
// isotopologue) and returns one summary per group, sorted by key.
// ConditionOrder is left unset; Assemble restores it.
func Aggregate(obs []Observation) []GroupSummary {
	byKey := make(map[GroupKey]*groupAcc)
	var order []GroupKey
	for _, o := range obs {
		k := o.Key()
		g, ok := byKey[k]
		if !ok {
			g = &groupAcc{key: k}
			byKey[k] = g
			order = append(order, k)
		}
		g.n++
		v := o.Values.slice()
		for i := range v {
			g.vals[i].add(v[i])
		}
	}

	groups := make([]GroupSummary, 0, len(order))
	for _, k := range order {
		g := byKey[k]
		var mean, sd [3]float64
		for i := range g.vals {
			mean[i] = g.vals[i].mean()
			sd[i] = g.vals[i].sd()
		}
		groups = append(groups, GroupSummary{
			GroupKey: k,
			N:        g.n,
			Mean:     valuesFrom(mean),
			SD:       valuesFrom(sd),
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].GroupKey.Less(groups[j].GroupKey) })
	return groups
}

// Less orders keys by metabolite, condition, time then isotopologue.
func (k GroupKey) Less(o GroupKey) bool {
	if k.Metabolite != o.Metabolite {
		return k.Metabolite < o.Metabolite
	}
	if k.Condition != o.Condition {
		return k.Condition < o.Condition
	}
	if k.Time != o.Time {
		return k.Time < o.Time
	}
	return k.Isotopologue < o.Isotopologue
}
