package isodata

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierFormat(t *testing.T) {
	c := HyphenateCondition("wild_type")
	assert.Equal(t, "wild-type_T6_2", ObservationID(c, 6, 2))
	assert.Equal(t, "wild-type_T6", GroupID(c, 6))
}

func TestIdentify(t *testing.T) {
	obs, err := CoerceKeys(joinedFixture(t, labelledMeta()))
	require.NoError(t, err)
	groups := Aggregate(obs)

	idObs, idGroups, err := Identify(obs, groups)
	require.NoError(t, err)
	assert.Equal(t, "wild_type", obs[0].Condition, "input untouched")
	assert.Equal(t, "wild-type", idObs[0].Condition)
	assert.Equal(t, "wild-type_T6_1", idObs[0].ID)

	ids := map[string]bool{}
	for _, o := range idObs {
		key := fmt.Sprintf("%s/%s/%d", o.ID, o.Metabolite, o.Isotopologue)
		assert.False(t, ids[key], "duplicate id %s", key)
		ids[key] = true
	}
	for _, g := range idGroups {
		assert.Equal(t, GroupID(g.Condition, g.Time), g.ID)
	}
	assert.Equal(t, "wild-type", idGroups[len(idGroups)-1].Condition)
}

func TestIdentifyMissingCondition(t *testing.T) {
	obs := []Observation{{Measurement: meas("S1", "Lac", 0, 1, 1, 0), Condition: " ", Time: 1, NumberRep: 1}}
	_, _, err := Identify(obs, nil)
	var fe *FormattingError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ColCondition, fe.Field)
	assert.Equal(t, 1, fe.Row)
}

func TestIdentifyRejectsHyphenationClash(t *testing.T) {
	obs := []Observation{
		{Measurement: meas("S1", "Lac", 0, 1, 1, 0), Condition: "a_b", Time: 1, NumberRep: 1},
		{Measurement: meas("S2", "Lac", 0, 1, 1, 0), Condition: "a-b", Time: 1, NumberRep: 1},
	}
	_, _, err := Identify(obs, Aggregate(obs))
	var fe *FormattingError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, err.Error(), `"a_b"`)
}
