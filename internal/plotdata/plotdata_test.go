package plotdata

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llegregam/isoplot/internal/isodata"
)

func m(sample, metabolite string, iso int, ca, frac, me float64) isodata.Measurement {
	return isodata.Measurement{
		Sample: sample, Metabolite: metabolite, Isotopologue: iso, Area: ca,
		Values: isodata.Values{CorrectedArea: ca, IsotopologueFraction: frac, MeanEnrichment: me},
	}
}

func dataset(t *testing.T) *isodata.Dataset {
	t.Helper()
	data := []isodata.Measurement{
		m("A1", "Lac", 0, 6, 0.6, 0.4), m("A1", "Lac", 1, 4, 0.4, 0),
		m("A2", "Lac", 0, 8, 0.8, 0.2), m("A2", "Lac", 1, 2, 0.2, 0),
		m("B1", "Lac", 0, 10, 1, 0), m("B1", "Lac", 1, 0, 0, 0),
		m("A1", "Cit", 0, 1, 1, 0.5),
		m("A2", "Cit", 0, 1, 1, 0.7),
		m("B1", "Cit", 0, 1, 1, 0.1),
	}
	meta := []isodata.Metadata{
		{Sample: "A1", Condition: "ctrl", ConditionOrder: 2, Time: 0, NumberRep: 1, Normalization: 1},
		{Sample: "A2", Condition: "ctrl", ConditionOrder: 2, Time: 0, NumberRep: 2, Normalization: 1},
		{Sample: "B1", Condition: "glc_13C", ConditionOrder: 1, Time: 0, NumberRep: 1, Normalization: 1},
	}
	p := isodata.NewPipeline(nil)
	require.NoError(t, p.UseData(data))
	require.NoError(t, p.UseTemplate(meta))
	require.NoError(t, p.Compute(context.Background()))
	ds, err := p.Dataset()
	require.NoError(t, err)
	return ds
}

func TestPivotOrdersByConditionOrder(t *testing.T) {
	ds := dataset(t)
	mx, err := Pivot(ds.Observations, "Lac", isodata.ColIsotopologueFraction)
	require.NoError(t, err)
	assert.Equal(t, []string{"glc-13C_T0_1", "ctrl_T0_1", "ctrl_T0_2"}, mx.Rows)
	assert.Equal(t, []int{0, 1}, mx.Isotopologues)
	v, ok := mx.Cell("ctrl_T0_2", 1)
	require.True(t, ok)
	assert.InDelta(t, 0.2, v, 1e-12)
	assert.Nil(t, mx.SD)
}

func TestPivotMeanEnrichmentKeepsIsotopologueZero(t *testing.T) {
	ds := dataset(t)
	mx, err := Pivot(ds.Observations, "Lac", isodata.ColMeanEnrichment)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, mx.Isotopologues)

	_, err = Pivot(ds.Observations, "Lac", "area")
	require.Error(t, err)
	_, err = Pivot(ds.Observations, "Pyr", isodata.ColMeanEnrichment)
	require.Error(t, err)
}

func TestMeanPivotAndWhiskers(t *testing.T) {
	ds := dataset(t)
	mx, err := MeanPivot(ds.Groups, "Lac", isodata.ColCorrectedArea)
	require.NoError(t, err)
	assert.Equal(t, []string{"glc-13C_T0", "ctrl_T0"}, mx.Rows)
	v, _ := mx.Cell("ctrl_T0", 0)
	assert.Equal(t, 7.0, v)

	ws, err := Whiskers(mx)
	require.NoError(t, err)
	require.Len(t, ws, 2)
	// ctrl: segment 0 = 7 ± 1.414, segment 1 stacks on top: 7 + 3 = 10 ± 1.414
	assert.InDelta(t, 7+1.41421356, ws[0].Upper[1], 1e-6)
	assert.InDelta(t, 10-1.41421356, ws[1].Lower[1], 1e-6)
	assert.Equal(t, mx.Rows, ws[1].Base)

	ind, _ := Pivot(ds.Observations, "Lac", isodata.ColCorrectedArea)
	_, err = Whiskers(ind)
	require.Error(t, err)
}

func TestSplitID(t *testing.T) {
	p, err := SplitID("wild-type_T6_2")
	require.NoError(t, err)
	assert.Equal(t, IDParts{Condition: "wild-type", Time: "T6", Replicate: "2"}, p)

	p, err = SplitID("wild-type_T6")
	require.NoError(t, err)
	assert.Equal(t, "", p.Replicate)

	_, err = SplitID("wild_type_T6_2")
	require.Error(t, err)
	_, err = SplitIDs([]string{"a_T1_1", "a_T1"})
	require.Error(t, err)
}

func TestBuildHeatmap(t *testing.T) {
	ds := dataset(t)
	h := BuildHeatmap(ds.Groups)
	assert.Equal(t, []string{"Cit", "Lac"}, h.Rows)
	assert.Equal(t, []string{"glc-13C_T0", "ctrl_T0"}, h.Columns)
	assert.InDelta(t, 0.6, h.Cells[0][1], 1e-12)
	assert.InDelta(t, 0.0, h.Cells[1][0], 1e-12)
}

func TestBuildAllAndWrite(t *testing.T) {
	ds := dataset(t)
	bundles, err := BuildAll(context.Background(), ds, ds.Metabolites(), isodata.ValueColumns, 3)
	require.NoError(t, err)
	require.Len(t, bundles, 6)
	assert.Equal(t, "Cit", bundles[0].Metabolite)
	assert.Equal(t, isodata.ColMeanEnrichment, bundles[5].Value)

	dir := filepath.Join(t.TempDir(), "plots")
	paths, err := WriteAll(dir, bundles, BuildHeatmap(ds.Groups))
	require.NoError(t, err)
	assert.Len(t, paths, 7)
	b, err := os.ReadFile(filepath.Join(dir, "Lac_corrected_area.json"))
	require.NoError(t, err)
	var got Bundle
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "Lac", got.Metabolite)

	_, err = BuildAll(context.Background(), ds, []string{"Pyr"}, []string{isodata.ColCorrectedArea}, 2)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = BuildAll(ctx, ds, ds.Metabolites(), isodata.ValueColumns, 2)
	require.ErrorIs(t, err, context.Canceled)
}
