package isodata

import (
	"fmt"
	"sort"
)

// JoinKey lists the columns the merge matches on.
var JoinKey = []string{ColSample}

// MergeResult is the output of Merge.
type MergeResult struct {
	Rows []Joined
	// Unmatched lists measurement samples with no metadata row, in first-seen order.
	Unmatched []string
	// Collisions lists extra columns present on both inputs; metadata values were kept.
	Collisions []string
}

type observationIndex struct {
	metabolite   string
	condition    string
	time         float64
	numberRep    float64
	isotopologue int
}

// Merge inner-joins measurements with metadata on sample. Measurement rows
// whose sample has no metadata row are dropped and reported in Unmatched.
func Merge(data []Measurement, meta []Metadata) (MergeResult, error) {
	if len(data) == 0 {
		return MergeResult{}, &MergeError{Reason: "measurement data is missing, load it first"}
	}
	if len(meta) == 0 {
		return MergeResult{}, &MergeError{Reason: "metadata template is missing, load it first"}
	}
	bySample := make(map[string]Metadata, len(meta))
	for i, md := range meta {
		if _, dup := bySample[md.Sample]; dup {
			return MergeResult{}, &MergeError{
				Reason: fmt.Sprintf("sample %q appears more than once in the template (row %d)", md.Sample, sheetRow(i))}
		}
		bySample[md.Sample] = md
	}

	res := MergeResult{Rows: make([]Joined, 0, len(data))}
	unmatched := map[string]bool{}
	collisions := map[string]bool{}
	seen := make(map[observationIndex]int, len(data))
	for i, m := range data {
		md, ok := bySample[m.Sample]
		if !ok {
			if !unmatched[m.Sample] {
				unmatched[m.Sample] = true
				res.Unmatched = append(res.Unmatched, m.Sample)
			}
			continue
		}
		j := Joined{
			Measurement:    m,
			Condition:      md.Condition,
			ConditionOrder: md.ConditionOrder,
			Time:           md.Time,
			NumberRep:      md.NumberRep,
			Normalization:  md.Normalization,
		}
		if len(md.Extra) > 0 {
			extra := make(map[string]string, len(m.Extra)+len(md.Extra))
			for k, v := range m.Extra {
				extra[k] = v
			}
			for k, v := range md.Extra {
				if _, clash := extra[k]; clash {
					collisions[k] = true
				}
				extra[k] = v
			}
			j.Extra = extra
		}
		key := observationIndex{m.Metabolite, md.Condition, md.Time, md.NumberRep, m.Isotopologue}
		if first, dup := seen[key]; dup {
			return MergeResult{}, &MergeError{Reason: fmt.Sprintf(
				"rows %d and %d share metabolite %q, condition %q, time %v, replicate %v and isotopologue %d",
				sheetRow(first), sheetRow(i), m.Metabolite, md.Condition, md.Time, md.NumberRep, m.Isotopologue)}
		}
		seen[key] = i
		res.Rows = append(res.Rows, j)
	}
	for k := range collisions {
		res.Collisions = append(res.Collisions, k)
	}
	sort.Strings(res.Collisions)
	return res, nil
}
