package isodata

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/llegregam/isoplot/internal/tabular"
)

// Placeholder values written to a generated template.
const (
	DefaultCondition      = "your_condition"
	DefaultConditionOrder = 1
	DefaultTime           = 1
	DefaultNumberRep      = 3
	DefaultNormalization  = 1.0
)

// NaturalSort sorts names so that embedded numbers compare numerically,
// e.g. "S2" before "S10".
func NaturalSort(names []string) {
	c := collate.New(language.Und, collate.Numeric)
	sort.SliceStable(names, func(i, j int) bool {
		if r := c.CompareString(names[i], names[j]); r != 0 {
			return r < 0
		}
		return names[i] < names[j]
	})
}

// TemplateRows returns one placeholder metadata row per distinct sample.
func TemplateRows(data []Measurement) []Metadata {
	seen := map[string]bool{}
	var samples []string
	for _, m := range data {
		if !seen[m.Sample] {
			seen[m.Sample] = true
			samples = append(samples, m.Sample)
		}
	}
	NaturalSort(samples)
	rows := make([]Metadata, len(samples))
	for i, s := range samples {
		rows[i] = Metadata{
			Sample:         s,
			Condition:      DefaultCondition,
			ConditionOrder: DefaultConditionOrder,
			Time:           DefaultTime,
			NumberRep:      DefaultNumberRep,
			Normalization:  DefaultNormalization,
		}
	}
	return rows
}

// Cells renders the row in MetadataColumns order.
func (m Metadata) Cells() []tabular.Cell {
	return []tabular.Cell{
		tabular.Str(m.Sample),
		tabular.Str(m.Condition),
		tabular.Num(m.ConditionOrder),
		tabular.Num(m.Time),
		tabular.Num(m.NumberRep),
		tabular.Num(m.Normalization),
	}
}

// WriteTemplate saves rows as a single-sheet workbook.
func WriteTemplate(path string, rows []Metadata) error {
	cells := make([][]tabular.Cell, len(rows))
	for i, r := range rows {
		cells[i] = r.Cells()
	}
	return tabular.WriteXLSXFile(path, "Sheet1", MetadataColumns, cells)
}
