package isodata

import (
	"math"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanSD(t *testing.T) {
	mean, sd := MeanSD([]float64{10, 20, 30})
	assert.Equal(t, 20.0, mean)
	assert.Equal(t, 10.0, sd)

	mean, sd = MeanSD([]float64{4.2})
	assert.Equal(t, 4.2, mean)
	assert.Equal(t, 0.0, sd, "a singleton has no spread")

	mean, sd = MeanSD([]float64{math.NaN(), 1, 3})
	assert.Equal(t, 2.0, mean, "NaN is skipped")
	assert.InDelta(t, math.Sqrt2, sd, 1e-12)

	mean, sd = MeanSD([]float64{math.NaN()})
	assert.True(t, math.IsNaN(mean))
	assert.Equal(t, 0.0, sd)
}

func TestMeanSDMatchesSampleStatistics(t *testing.T) {
	vs := []float64{0.12, 0.4711, 0.33, 0.9, 0.000015, 0.25}
	mean, sd := MeanSD(vs)
	wantMean, err := stats.Mean(vs)
	require.NoError(t, err)
	wantSD, err := stats.StandardDeviationSample(vs)
	require.NoError(t, err)
	assert.InDelta(t, wantMean, mean, 1e-12)
	assert.InDelta(t, wantSD, sd, 1e-12)
}

func TestCoerceKeys(t *testing.T) {
	md := labelledMeta()
	md[0].Time = 6.0
	obs, err := CoerceKeys(joinedFixture(t, md))
	require.NoError(t, err)
	assert.Equal(t, int64(6), obs[0].Time)
	assert.Equal(t, int64(1), obs[0].NumberRep)

	md[1].Time = 6.5
	_, err = CoerceKeys(joinedFixture(t, md))
	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ColTime, ce.Column)
	assert.Equal(t, "6.5", ce.Value)
	assert.Equal(t, md[1].Sample, ce.Sample)
	assert.Contains(t, err.Error(), `for sample "`+md[1].Sample+`"`)
	assert.Zero(t, ce.Row)

	md = labelledMeta()
	md[2].NumberRep = math.NaN()
	_, err = CoerceKeys(joinedFixture(t, md))
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ColNumberRep, ce.Column)
	assert.Equal(t, md[2].Sample, ce.Sample)
}

func TestAggregateGroups(t *testing.T) {
	obs, err := CoerceKeys(joinedFixture(t, labelledMeta()))
	require.NoError(t, err)
	groups := Aggregate(obs)
	require.Len(t, groups, 4)

	// sorted: mutant before wild_type
	assert.Equal(t, GroupKey{"Lac", "mutant", 6, 0}, groups[0].GroupKey)
	assert.Equal(t, GroupKey{"Lac", "wild_type", 6, 1}, groups[3].GroupKey)

	wt0 := groups[2]
	assert.Equal(t, 3, wt0.N)
	assert.Equal(t, 20.0, wt0.Mean.CorrectedArea)
	assert.Equal(t, 10.0, wt0.SD.CorrectedArea)
	assert.InDelta(t, 0.5, wt0.Mean.IsotopologueFraction, 1e-12)
	assert.InDelta(t, 0.3, wt0.Mean.MeanEnrichment, 1e-12)

	wt1 := groups[3]
	assert.True(t, math.IsNaN(wt1.Mean.MeanEnrichment), "no values at isotopologue 1")
	assert.Equal(t, 0.0, wt1.SD.MeanEnrichment)
}

func TestAggregateSingletonGroup(t *testing.T) {
	obs := []Observation{{Measurement: meas("S1", "Lac", 0, 5, 1, 0.1), Condition: "wt", Time: 1, NumberRep: 1}}
	groups := Aggregate(obs)
	require.Len(t, groups, 1)
	assert.Equal(t, Values{}, groups[0].SD)
	assert.Equal(t, 5.0, groups[0].Mean.CorrectedArea)
}

func TestAggregateIntegralTimesShareAGroup(t *testing.T) {
	md := labelledMeta()
	md[0].Time = 6.0
	md[1].Time = 6
	obs, err := CoerceKeys(joinedFixture(t, md))
	require.NoError(t, err)
	for _, g := range Aggregate(obs) {
		assert.Equal(t, 3, g.N)
	}
}
