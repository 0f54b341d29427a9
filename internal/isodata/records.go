// Package isodata turns isotopologue measurements and experiment metadata
// into replicate-level and group-level tables ready for export or plotting.
package isodata

import "math"

// Column names shared by the input files and the export table.
const (
	ColSample               = "sample"
	ColMetabolite           = "metabolite"
	ColIsotopologue         = "isotopologue"
	ColArea                 = "area"
	ColCorrectedArea        = "corrected_area"
	ColIsotopologueFraction = "isotopologue_fraction"
	ColMeanEnrichment       = "mean_enrichment"

	ColCondition      = "condition"
	ColConditionOrder = "condition_order"
	ColTime           = "time"
	ColNumberRep      = "number_rep"
	ColNormalization  = "normalization"
)

// ValueColumns are the columns summarized per group.
var ValueColumns = []string{ColCorrectedArea, ColIsotopologueFraction, ColMeanEnrichment}

// Values holds the three summarized quantities of one row or group.
type Values struct {
	CorrectedArea        float64 `json:"corrected_area"`
	IsotopologueFraction float64 `json:"isotopologue_fraction"`
	MeanEnrichment       float64 `json:"mean_enrichment"`
}

// Get returns the value stored for column name.
func (v Values) Get(name string) (float64, bool) {
	switch name {
	case ColCorrectedArea:
		return v.CorrectedArea, true
	case ColIsotopologueFraction:
		return v.IsotopologueFraction, true
	case ColMeanEnrichment:
		return v.MeanEnrichment, true
	}
	return 0, false
}

func (v Values) slice() [3]float64 {
	return [3]float64{v.CorrectedArea, v.IsotopologueFraction, v.MeanEnrichment}
}

func valuesFrom(a [3]float64) Values {
	return Values{CorrectedArea: a[0], IsotopologueFraction: a[1], MeanEnrichment: a[2]}
}

func (v Values) zeroNaN() Values {
	a := v.slice()
	for i := range a {
		if math.IsNaN(a[i]) {
			a[i] = 0
		}
	}
	return valuesFrom(a)
}

// Measurement is one validated row of the measurement file.
type Measurement struct {
	Sample       string
	Metabolite   string
	Isotopologue int
	Area         float64
	Values
	// Extra holds any non-required columns, e.g. derivative and residuum.
	Extra map[string]string
}

// Metadata maps one sample to its experimental design.
type Metadata struct {
	Sample         string
	Condition      string
	ConditionOrder float64
	Time           float64
	NumberRep      float64
	Normalization  float64
	Extra          map[string]string
}

// Joined is a measurement merged with its sample metadata. Time and
// replicate are still the raw numeric values read from the template.
type Joined struct {
	Measurement
	Condition      string
	ConditionOrder float64
	Time           float64
	NumberRep      float64
	Normalization  float64
}

// Observation is one replicate-level row of the individual table with
// integer time and replicate keys.
type Observation struct {
	Measurement
	Condition      string
	ConditionOrder float64
	Time           int64
	NumberRep      int64
	Normalization  float64
	ID             string
}

// GroupKey identifies one aggregation group.
type GroupKey struct {
	Metabolite   string
	Condition    string
	Time         int64
	Isotopologue int
}

// Key returns the group the observation belongs to.
func (o Observation) Key() GroupKey {
	return GroupKey{Metabolite: o.Metabolite, Condition: o.Condition, Time: o.Time, Isotopologue: o.Isotopologue}
}

// GroupSummary holds the replicate statistics of one group.
type GroupSummary struct {
	GroupKey
	ConditionOrder float64
	N              int
	Mean           Values
	SD             Values
	ID             string
}

// ExportColumns is the fixed column order of the final table after its
// (metabolite, condition, time, isotopologue) index.
var ExportColumns = []string{
	ColNumberRep, ColSample, ColConditionOrder, ColArea,
	"corrected_area", "corrected_area_mean", "corrected_area_sd",
	"isotopologue_fraction", "isotopologue_fraction_mean", "isotopologue_fraction_sd",
	"mean_enrichment", "mean_enrichment_mean", "mean_enrichment_sd",
}

// IndexColumns index the final table.
var IndexColumns = []string{ColMetabolite, ColCondition, ColTime, ColIsotopologue}

// FinalRow is one row of the final export and plotting table.
type FinalRow struct {
	GroupKey
	NumberRep      int64
	Sample         string
	ConditionOrder float64
	Area           float64
	Value          Values
	Mean           Values
	SD             Values
}

// Numbers returns the numeric export columns keyed by name. Sample is the
// only export column not included.
func (r FinalRow) Numbers() map[string]float64 {
	return map[string]float64{
		ColNumberRep:                 float64(r.NumberRep),
		ColConditionOrder:            r.ConditionOrder,
		ColArea:                      r.Area,
		"corrected_area":             r.Value.CorrectedArea,
		"corrected_area_mean":        r.Mean.CorrectedArea,
		"corrected_area_sd":          r.SD.CorrectedArea,
		"isotopologue_fraction":      r.Value.IsotopologueFraction,
		"isotopologue_fraction_mean": r.Mean.IsotopologueFraction,
		"isotopologue_fraction_sd":   r.SD.IsotopologueFraction,
		"mean_enrichment":            r.Value.MeanEnrichment,
		"mean_enrichment_mean":       r.Mean.MeanEnrichment,
		"mean_enrichment_sd":         r.SD.MeanEnrichment,
	}
}
