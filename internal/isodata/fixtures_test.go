package isodata

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/llegregam/isoplot/internal/tabular"
)

func meas(sample, metabolite string, iso int, ca, frac, me float64) Measurement {
	return Measurement{
		Sample:       sample,
		Metabolite:   metabolite,
		Isotopologue: iso,
		Area:         ca * 1.1,
		Values:       Values{CorrectedArea: ca, IsotopologueFraction: frac, MeanEnrichment: me},
	}
}

func meta(sample, condition string, order, tm, rep, norm float64) Metadata {
	return Metadata{Sample: sample, Condition: condition, ConditionOrder: order, Time: tm, NumberRep: rep, Normalization: norm}
}

// labelledData holds two conditions with three replicates each at time 6,
// plus S7 which has no metadata row.
func labelledData() []Measurement {
	return []Measurement{
		meas("S1", "Lac", 0, 10, 0.5, 0.2),
		meas("S1", "Lac", 1, 10, 0.5, math.NaN()),
		meas("S2", "Lac", 0, 20, 0.4, 0.3),
		meas("S2", "Lac", 1, 30, 0.6, math.NaN()),
		meas("S3", "Lac", 0, 30, 0.6, 0.4),
		meas("S3", "Lac", 1, 20, 0.4, math.NaN()),
		meas("S4", "Lac", 0, 5, 1, 0),
		meas("S4", "Lac", 1, 0, 0, math.NaN()),
		meas("S5", "Lac", 0, 7, 1, 0),
		meas("S5", "Lac", 1, 0, 0, math.NaN()),
		meas("S6", "Lac", 0, 9, 1, 0),
		meas("S6", "Lac", 1, 0, 0, math.NaN()),
		meas("S7", "Lac", 0, 1, 1, 0),
	}
}

func labelledMeta() []Metadata {
	return []Metadata{
		meta("S1", "wild_type", 1, 6, 1, 1),
		meta("S2", "wild_type", 1, 6, 2, 1),
		meta("S3", "wild_type", 1, 6, 3, 1),
		meta("S4", "mutant", 2, 6, 1, 1),
		meta("S5", "mutant", 2, 6, 2, 1),
		meta("S6", "mutant", 2, 6, 3, 1),
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// writeMeasurements writes rows as an upstream correction tool would,
// including its diagnostic columns.
func writeMeasurements(t *testing.T, dir string, rows []Measurement) string {
	t.Helper()
	header := append(append([]string(nil), MeasurementColumns...), "derivative", "residuum")
	var out [][]string
	for _, m := range rows {
		out = append(out, []string{
			m.Sample, m.Metabolite, strconv.Itoa(m.Isotopologue), formatFloat(m.Area),
			formatFloat(m.CorrectedArea), formatFloat(m.IsotopologueFraction), formatFloat(m.MeanEnrichment),
			"", "0",
		})
	}
	p := filepath.Join(dir, "data.tsv")
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, tabular.WriteDelimited(f, '\t', header, out))
	return p
}

func writeMetadata(t *testing.T, dir string, rows []Metadata) string {
	t.Helper()
	p := filepath.Join(dir, "template.xlsx")
	require.NoError(t, WriteTemplate(p, rows))
	return p
}

func sheetOf(header []string, rows ...[]tabular.Cell) *tabular.Sheet {
	return &tabular.Sheet{Header: header, Rows: rows}
}
