package isodata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// All selects every available value.
const All = "all"

// Selector is a user choice of metabolites, conditions or times.
type Selector struct {
	All    bool
	Values []string
}

// ParseSelector reads "all" or a comma separated list.
func ParseSelector(arg string) Selector {
	arg = strings.TrimSpace(arg)
	if arg == "" || strings.EqualFold(arg, All) {
		return Selector{All: true}
	}
	var vals []string
	for _, v := range strings.Split(arg, ",") {
		if v = strings.TrimSpace(v); v != "" {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return Selector{All: true}
	}
	return Selector{Values: vals}
}

// String renders the selector the way ParseSelector reads it.
func (s Selector) String() string {
	if s.All {
		return All
	}
	return strings.Join(s.Values, ",")
}

// Resolve returns the selected values in the order of available. A value
// that is not available is an error naming it.
func (s Selector) Resolve(what string, available []string) ([]string, error) {
	if s.All {
		return append([]string(nil), available...), nil
	}
	have := make(map[string]bool, len(available))
	for _, a := range available {
		have[a] = true
	}
	want := make(map[string]bool, len(s.Values))
	for _, v := range s.Values {
		if !have[v] {
			return nil, fmt.Errorf("%s %q not found, available: %s", what, v, strings.Join(available, ", "))
		}
		want[v] = true
	}
	var out []string
	for _, a := range available {
		if want[a] {
			out = append(out, a)
		}
	}
	return out, nil
}

// Dataset holds the outputs of an assembled pipeline.
type Dataset struct {
	Observations []Observation
	Groups       []GroupSummary
	Final        []FinalRow
	Summary      Summary
}

// Metabolites returns the distinct metabolites, sorted.
func (d *Dataset) Metabolites() []string {
	return distinct(d.Final, func(r FinalRow) string { return r.Metabolite })
}

// Conditions returns the distinct conditions, sorted.
func (d *Dataset) Conditions() []string {
	return distinct(d.Final, func(r FinalRow) string { return r.Condition })
}

// Times returns the distinct times in numeric order, as strings.
func (d *Dataset) Times() []string {
	seen := map[int64]bool{}
	var ts []int64
	for _, r := range d.Final {
		if !seen[r.Time] {
			seen[r.Time] = true
			ts = append(ts, r.Time)
		}
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = strconv.FormatInt(t, 10)
	}
	return out
}

func distinct(rows []FinalRow, key func(FinalRow) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rows {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Selection is a resolved set of filters.
type Selection struct {
	Metabolites []string
	Conditions  []string
	Times       []string
}

// Select validates the three selectors against the dataset. Conditions
// may be given with underscores; they are matched in hyphenated form.
func (d *Dataset) Select(metabolites, conditions, times Selector) (Selection, error) {
	var sel Selection
	var err error
	if sel.Metabolites, err = metabolites.Resolve("metabolite", d.Metabolites()); err != nil {
		return Selection{}, err
	}
	conds := Selector{All: conditions.All}
	for _, c := range conditions.Values {
		conds.Values = append(conds.Values, HyphenateCondition(c))
	}
	if sel.Conditions, err = conds.Resolve("condition", d.Conditions()); err != nil {
		return Selection{}, err
	}
	if sel.Times, err = times.Resolve("time", d.Times()); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

// Filter returns a dataset restricted to sel.
func (d *Dataset) Filter(sel Selection) *Dataset {
	m, c, t := toSet(sel.Metabolites), toSet(sel.Conditions), toSet(sel.Times)
	keep := func(k GroupKey) bool {
		return m[k.Metabolite] && c[k.Condition] && t[strconv.FormatInt(k.Time, 10)]
	}
	out := &Dataset{Summary: d.Summary}
	for _, o := range d.Observations {
		if keep(o.Key()) {
			out.Observations = append(out.Observations, o)
		}
	}
	for _, g := range d.Groups {
		if keep(g.GroupKey) {
			out.Groups = append(out.Groups, g)
		}
	}
	for _, r := range d.Final {
		if keep(r.GroupKey) {
			out.Final = append(out.Final, r)
		}
	}
	return out
}

func toSet(vs []string) map[string]bool {
	s := make(map[string]bool, len(vs))
	for _, v := range vs {
		s[v] = true
	}
	return s
}
