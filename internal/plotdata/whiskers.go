package plotdata

import (
	"fmt"
	"strings"
)

// Whisker holds error bar ends for one isotopologue of a stacked bar chart.
type Whisker struct {
	Isotopologue int       `json:"isotopologue"`
	Base         []string  `json:"base"`
	Upper        []float64 `json:"upper"`
	Lower        []float64 `json:"lower"`
}

// Whiskers stacks the columns of a mean pivot and places each error bar at
// the top of its segment, plus or minus the SD.
func Whiskers(m *Matrix) ([]Whisker, error) {
	if m.SD == nil {
		return nil, fmt.Errorf("matrix for %s has no standard deviations", m.Metabolite)
	}
	out := make([]Whisker, len(m.Isotopologues))
	for c, iso := range m.Isotopologues {
		out[c] = Whisker{
			Isotopologue: iso,
			Base:         append([]string(nil), m.Rows...),
			Upper:        make([]float64, len(m.Rows)),
			Lower:        make([]float64, len(m.Rows)),
		}
	}
	for r := range m.Rows {
		height := 0.0
		for c := range m.Isotopologues {
			height += m.Cells[r][c]
			out[c].Upper[r] = height + m.SD[r][c]
			out[c].Lower[r] = height - m.SD[r][c]
		}
	}
	return out, nil
}

// IDParts are the fields encoded in a replicate or group ID.
type IDParts struct {
	Condition string
	Time      string
	Replicate string
}

// SplitID recovers condition, time and, for replicate IDs, the replicate
// number. The leading "T" of the time part is kept, as in the ID.
func SplitID(id string) (IDParts, error) {
	parts := strings.Split(id, "_")
	switch len(parts) {
	case 2:
		return IDParts{Condition: parts[0], Time: parts[1]}, nil
	case 3:
		return IDParts{Condition: parts[0], Time: parts[1], Replicate: parts[2]}, nil
	}
	return IDParts{}, fmt.Errorf("id %q must contain one or two underscores, found %d", id, len(parts)-1)
}

// SplitIDs splits every ID in order; all IDs must have the same shape.
func SplitIDs(ids []string) ([]IDParts, error) {
	out := make([]IDParts, len(ids))
	for i, id := range ids {
		p, err := SplitID(id)
		if err != nil {
			return nil, err
		}
		if i > 0 && (p.Replicate == "") != (out[0].Replicate == "") {
			return nil, fmt.Errorf("id %q does not match the shape of %q", id, ids[0])
		}
		out[i] = p
	}
	return out, nil
}
