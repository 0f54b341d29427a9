// Package plotdata prepares chart-ready tables from a computed dataset.
// Drawing the charts is left to whatever consumes these tables.
package plotdata

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/llegregam/isoplot/internal/isodata"
)

// Matrix is a pivot with one row per ID and one column per isotopologue.
// Missing cells are 0 so the matrix always encodes to JSON.
type Matrix struct {
	Metabolite    string      `json:"metabolite"`
	Value         string      `json:"value"`
	Rows          []string    `json:"rows"`
	Isotopologues []int       `json:"isotopologues"`
	Cells         [][]float64 `json:"cells"`
	SD            [][]float64 `json:"sd,omitempty"`
}

// Cell returns the value at row id and isotopologue iso.
func (m *Matrix) Cell(id string, iso int) (float64, bool) {
	r, c := indexOf(m.Rows, id), -1
	for i, v := range m.Isotopologues {
		if v == iso {
			c = i
		}
	}
	if r < 0 || c < 0 {
		return 0, false
	}
	return m.Cells[r][c], true
}

func indexOf(vs []string, s string) int {
	for i, v := range vs {
		if v == s {
			return i
		}
	}
	return -1
}

func checkValue(value string) error {
	for _, v := range isodata.ValueColumns {
		if v == value {
			return nil
		}
	}
	return fmt.Errorf("unknown value %q (choose from %s)", value, strings.Join(isodata.ValueColumns, ", "))
}

type pivotPoint struct {
	id    string
	order float64
	iso   int
	value float64
	sd    float64
}

func buildMatrix(metabolite, value string, pts []pivotPoint, withSD bool) *Matrix {
	m := &Matrix{Metabolite: metabolite, Value: value}
	rowOrder := map[string]float64{}
	isoSeen := map[int]bool{}
	for _, p := range pts {
		if o, ok := rowOrder[p.id]; !ok || p.order < o {
			rowOrder[p.id] = p.order
		}
		if !isoSeen[p.iso] {
			isoSeen[p.iso] = true
			m.Isotopologues = append(m.Isotopologues, p.iso)
		}
	}
	for id := range rowOrder {
		m.Rows = append(m.Rows, id)
	}
	sort.Slice(m.Rows, func(i, j int) bool {
		a, b := m.Rows[i], m.Rows[j]
		if rowOrder[a] != rowOrder[b] {
			return rowOrder[a] < rowOrder[b]
		}
		return a < b
	})
	sort.Ints(m.Isotopologues)

	rowIdx := make(map[string]int, len(m.Rows))
	for i, id := range m.Rows {
		rowIdx[id] = i
	}
	colIdx := make(map[int]int, len(m.Isotopologues))
	for i, iso := range m.Isotopologues {
		colIdx[iso] = i
	}
	m.Cells = newGrid(len(m.Rows), len(m.Isotopologues))
	if withSD {
		m.SD = newGrid(len(m.Rows), len(m.Isotopologues))
	}
	for _, p := range pts {
		r, c := rowIdx[p.id], colIdx[p.iso]
		m.Cells[r][c] = finite(p.value)
		if withSD {
			m.SD[r][c] = finite(p.sd)
		}
	}
	return m
}

func newGrid(rows, cols int) [][]float64 {
	g := make([][]float64, rows)
	for i := range g {
		g[i] = make([]float64, cols)
	}
	return g
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Pivot lays out replicate values of one metabolite. Rows are replicate IDs
// ordered by condition_order, then ID. mean_enrichment keeps isotopologue 0 only.
func Pivot(obs []isodata.Observation, metabolite, value string) (*Matrix, error) {
	if err := checkValue(value); err != nil {
		return nil, err
	}
	var pts []pivotPoint
	for _, o := range obs {
		if o.Metabolite != metabolite || (value == isodata.ColMeanEnrichment && o.Isotopologue != 0) {
			continue
		}
		v, _ := o.Values.Get(value)
		pts = append(pts, pivotPoint{id: o.ID, order: o.ConditionOrder, iso: o.Isotopologue, value: v})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("no rows for metabolite %q", metabolite)
	}
	return buildMatrix(metabolite, value, pts, false), nil
}

// MeanPivot lays out group means of one metabolite with their SD.
func MeanPivot(groups []isodata.GroupSummary, metabolite, value string) (*Matrix, error) {
	if err := checkValue(value); err != nil {
		return nil, err
	}
	var pts []pivotPoint
	for _, g := range groups {
		if g.Metabolite != metabolite || (value == isodata.ColMeanEnrichment && g.Isotopologue != 0) {
			continue
		}
		mean, _ := g.Mean.Get(value)
		sd, _ := g.SD.Get(value)
		pts = append(pts, pivotPoint{id: g.ID, order: g.ConditionOrder, iso: g.Isotopologue, value: mean, sd: sd})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("no groups for metabolite %q", metabolite)
	}
	return buildMatrix(metabolite, value, pts, true), nil
}
