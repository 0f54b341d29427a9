package plotdata

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/llegregam/isoplot/internal/isodata"
	"github.com/llegregam/isoplot/internal/utils"
)

// Heatmap holds mean enrichment per metabolite (rows) and group (columns).
type Heatmap struct {
	Rows    []string    `json:"metabolites"`
	Columns []string    `json:"groups"`
	Cells   [][]float64 `json:"cells"`
}

// BuildHeatmap uses mean_enrichment_mean at isotopologue 0. Missing
// combinations are 0.
func BuildHeatmap(groups []isodata.GroupSummary) *Heatmap {
	h := &Heatmap{}
	colOrder := map[string]float64{}
	rowSeen := map[string]bool{}
	for _, g := range groups {
		if g.Isotopologue != 0 {
			continue
		}
		if !rowSeen[g.Metabolite] {
			rowSeen[g.Metabolite] = true
			h.Rows = append(h.Rows, g.Metabolite)
		}
		if o, ok := colOrder[g.ID]; !ok || g.ConditionOrder < o {
			colOrder[g.ID] = g.ConditionOrder
		}
	}
	sort.Strings(h.Rows)
	for id := range colOrder {
		h.Columns = append(h.Columns, id)
	}
	sort.Slice(h.Columns, func(i, j int) bool {
		a, b := h.Columns[i], h.Columns[j]
		if colOrder[a] != colOrder[b] {
			return colOrder[a] < colOrder[b]
		}
		return a < b
	})
	h.Cells = newGrid(len(h.Rows), len(h.Columns))
	for _, g := range groups {
		if g.Isotopologue != 0 {
			continue
		}
		h.Cells[indexOf(h.Rows, g.Metabolite)][indexOf(h.Columns, g.ID)] = finite(g.Mean.MeanEnrichment)
	}
	return h
}

// Bundle is everything a chart of one metabolite and value needs.
type Bundle struct {
	Metabolite string    `json:"metabolite"`
	Value      string    `json:"value"`
	Individual *Matrix   `json:"individual"`
	Mean       *Matrix   `json:"mean"`
	Whiskers   []Whisker `json:"whiskers"`
}

func build(ds *isodata.Dataset, metabolite, value string) (Bundle, error) {
	ind, err := Pivot(ds.Observations, metabolite, value)
	if err != nil {
		return Bundle{}, err
	}
	mean, err := MeanPivot(ds.Groups, metabolite, value)
	if err != nil {
		return Bundle{}, err
	}
	w, err := Whiskers(mean)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{Metabolite: metabolite, Value: value, Individual: ind, Mean: mean, Whiskers: w}, nil
}

// BuildAll prepares a bundle for every metabolite and value with at most
// workers goroutines. Results follow metabolites order, then values order.
func BuildAll(ctx context.Context, ds *isodata.Dataset, metabolites, values []string, workers int) ([]Bundle, error) {
	for _, v := range values {
		if err := checkValue(v); err != nil {
			return nil, err
		}
	}
	if workers < 1 {
		workers = 1
	}
	out := make([]Bundle, len(metabolites)*len(values))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, m := range metabolites {
		for j, v := range values {
			slot := i*len(values) + j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				b, err := build(ds, m, v)
				if err != nil {
					return fmt.Errorf("%s/%s: %w", m, v, err)
				}
				out[slot] = b
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteAll saves each bundle as <metabolite>_<value>.json and the heatmap as
// heatmap.json under dir.
func WriteAll(dir string, bundles []Bundle, heat *Heatmap) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	var paths []string
	write := func(name string, v any) error {
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return err
		}
		p := filepath.Join(dir, name)
		if err := utils.SafeWriteFile(p, b); err != nil {
			return err
		}
		paths = append(paths, p)
		return nil
	}
	for _, b := range bundles {
		if err := write(fmt.Sprintf("%s_%s.json", utils.FileStem(b.Metabolite), b.Value), b); err != nil {
			return paths, err
		}
	}
	if heat != nil {
		if err := write("heatmap.json", heat); err != nil {
			return paths, err
		}
	}
	return paths, nil
}
