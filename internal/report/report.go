// Package report renders a computed dataset as a compact markdown summary.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/llegregam/isoplot/internal/isodata"
)

// Options controls what Markdown prints.
type Options struct {
	// Value is the summarized column shown per group; defaults to isotopologue_fraction.
	Value string
	// MaxGroups caps the groups printed per metabolite; 0 prints all.
	MaxGroups int
}

// Markdown renders the dataset summary, run notes and per-metabolite groups.
func Markdown(ds *isodata.Dataset, opt Options) string {
	if opt.Value == "" {
		opt.Value = isodata.ColIsotopologueFraction
	}
	s := ds.Summary
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.DataPath != "" {
		b.WriteString(fmt.Sprintf("Measurements: %s\n", s.DataPath))
	}
	if s.TemplatePath != "" {
		b.WriteString(fmt.Sprintf("Template: %s\n", s.TemplatePath))
	}
	b.WriteString(fmt.Sprintf("Rows: %d measured, %d merged, %d final\n", s.MeasurementRows, s.MergedRows, len(ds.Final)))
	b.WriteString(fmt.Sprintf("Metabolites: %d, conditions: %d, times: %s\n",
		len(ds.Metabolites()), len(ds.Conditions()), strings.Join(ds.Times(), ", ")))
	b.WriteString(fmt.Sprintf("Groups: %d\n", len(ds.Groups)))

	notes := runNotes(s)
	if len(notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range notes {
			b.WriteString("- " + n + "\n")
		}
	}

	b.WriteString(fmt.Sprintf("\n[GROUP SUMMARY] %s mean ± sd\n", opt.Value))
	byMetabolite := map[string][]isodata.GroupSummary{}
	for _, g := range ds.Groups {
		byMetabolite[g.Metabolite] = append(byMetabolite[g.Metabolite], g)
	}
	for _, met := range ds.Metabolites() {
		groups := byMetabolite[met]
		b.WriteString(fmt.Sprintf("- %s (%d groups)", safeVal(met), len(groups)))
		if line := enrichmentLine(groups); line != "" {
			b.WriteString(" " + line)
		}
		b.WriteString("\n")
		limit := len(groups)
		if opt.MaxGroups > 0 && opt.MaxGroups < limit {
			limit = opt.MaxGroups
		}
		for _, g := range groups[:limit] {
			mean, _ := g.Mean.Get(opt.Value)
			sd, _ := g.SD.Get(opt.Value)
			b.WriteString(fmt.Sprintf("  • %s M%d (n=%d): %s ± %.4g\n", g.ID, g.Isotopologue, g.N, fmtNum(mean), sd))
		}
		if limit < len(groups) {
			b.WriteString(fmt.Sprintf("  • ... %d more\n", len(groups)-limit))
		}
	}
	return b.String()
}

func runNotes(s isodata.Summary) []string {
	var notes []string
	if len(s.UnmatchedSamples) > 0 {
		notes = append(notes, fmt.Sprintf("%d sample(s) missing from the template were dropped: %s",
			len(s.UnmatchedSamples), strings.Join(s.UnmatchedSamples, ", ")))
	}
	if s.NormalizationUsed {
		notes = append(notes, "corrected_area was divided by the normalization factors")
	} else {
		notes = append(notes, "all normalization factors are 1, corrected_area is unchanged")
	}
	for _, c := range s.ExtraCollisions {
		notes = append(notes, fmt.Sprintf("column %s exists in both inputs, template values kept", c))
	}
	for _, k := range s.MixedOrder {
		notes = append(notes, fmt.Sprintf("replicates of %s %s T%d disagree on condition_order", k.Metabolite, k.Condition, k.Time))
	}
	return notes
}

// enrichmentLine summarizes mean enrichment at isotopologue 0 across groups.
func enrichmentLine(groups []isodata.GroupSummary) string {
	var vs stats.Float64Data
	for _, g := range groups {
		if g.Isotopologue == 0 && !math.IsNaN(g.Mean.MeanEnrichment) {
			vs = append(vs, g.Mean.MeanEnrichment)
		}
	}
	if len(vs) == 0 {
		return ""
	}
	med, _ := vs.Median()
	lo, _ := vs.Min()
	hi, _ := vs.Max()
	return fmt.Sprintf("mean enrichment median %.4g (min %.4g, max %.4g)", med, lo, hi)
}

func fmtNum(f float64) string {
	if math.IsNaN(f) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", f)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
