package isodata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identified(t *testing.T, md []Metadata) ([]Observation, []GroupSummary) {
	t.Helper()
	obs, err := CoerceKeys(joinedFixture(t, md))
	require.NoError(t, err)
	obs, groups, err := Identify(obs, Aggregate(obs))
	require.NoError(t, err)
	return obs, groups
}

func TestAssembleFinalTable(t *testing.T) {
	obs, groups := identified(t, labelledMeta())
	a := Assemble(obs, groups)
	require.Len(t, a.Final, len(obs))
	assert.Empty(t, a.MixedOrder)

	for i := 1; i < len(a.Final); i++ {
		prev, cur := a.Final[i-1], a.Final[i]
		if prev.GroupKey == cur.GroupKey {
			assert.Less(t, prev.NumberRep, cur.NumberRep)
		} else {
			assert.True(t, prev.GroupKey.Less(cur.GroupKey))
		}
	}

	first := a.Final[0]
	assert.Equal(t, GroupKey{"Lac", "mutant", 6, 0}, first.GroupKey)
	assert.Equal(t, int64(1), first.NumberRep)
	assert.Equal(t, "S4", first.Sample)
	assert.Equal(t, 2.0, first.ConditionOrder)
	assert.Equal(t, 7.0, first.Mean.CorrectedArea)
	assert.Equal(t, 2.0, first.SD.CorrectedArea)
}

func TestAssembleReplacesMissingWithZero(t *testing.T) {
	obs, groups := identified(t, labelledMeta())
	a := Assemble(obs, groups)
	for _, r := range a.Final {
		if r.Isotopologue == 1 {
			assert.Equal(t, 0.0, r.Value.MeanEnrichment)
			assert.Equal(t, 0.0, r.Mean.MeanEnrichment)
			assert.Equal(t, 0.0, r.SD.MeanEnrichment)
		}
	}
}

func TestAssembleRestoresConditionOrder(t *testing.T) {
	md := labelledMeta()
	md[1].ConditionOrder = 0 // S2 disagrees with S1 and S3
	obs, groups := identified(t, md)
	for _, g := range groups {
		assert.Zero(t, g.ConditionOrder, "aggregation does not carry condition_order")
	}

	a := Assemble(obs, groups)
	require.Len(t, a.Groups, len(groups))
	byID := map[GroupKey]float64{}
	for _, g := range a.Groups {
		byID[g.GroupKey] = g.ConditionOrder
	}
	assert.Equal(t, 2.0, byID[GroupKey{"Lac", "mutant", 6, 0}])
	assert.Equal(t, 0.0, byID[GroupKey{"Lac", "wild-type", 6, 0}], "lowest value wins")
	assert.Len(t, a.MixedOrder, 2)
}
