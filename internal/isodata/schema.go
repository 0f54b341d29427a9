package isodata

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/llegregam/isoplot/internal/tabular"
)

const (
	tableMeasurements = "measurements"
	tableMetadata     = "metadata"
)

// MeasurementColumns are required in the measurement file.
var MeasurementColumns = []string{
	ColSample, ColMetabolite, ColIsotopologue, ColArea,
	ColCorrectedArea, ColIsotopologueFraction, ColMeanEnrichment,
}

// MetadataColumns are required in the metadata template.
var MetadataColumns = []string{
	ColSample, ColCondition, ColConditionOrder, ColTime, ColNumberRep, ColNormalization,
}

var (
	metadataStringColumns  = []string{ColCondition, ColSample}
	metadataNumericColumns = []string{ColConditionOrder, ColTime, ColNumberRep, ColNormalization}
)

// sheetRow converts a table index into the row number a user sees in a
// spreadsheet or text editor, where line 1 is the header.
func sheetRow(i int) int { return i + 2 }

func missingColumns(header []string, required []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, c := range required {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// ValidateMeasurements checks the measurement table for required columns
// and at least one data row. It does not modify t.
func ValidateMeasurements(t *tabular.Table) error {
	if missing := missingColumns(t.Header, MeasurementColumns); len(missing) > 0 {
		return &SchemaError{Table: tableMeasurements, Missing: missing}
	}
	if len(t.Rows) == 0 {
		return &SchemaError{Table: tableMeasurements, Empty: true}
	}
	return nil
}

// ValidateMetadata checks the metadata sheet for required columns and cell
// types. Every offending row of a column is reported together.
func ValidateMetadata(s *tabular.Sheet) error {
	if missing := missingColumns(s.Header, MetadataColumns); len(missing) > 0 {
		return &SchemaError{Table: tableMetadata, Missing: missing}
	}
	if len(s.Rows) == 0 {
		return &SchemaError{Table: tableMetadata, Empty: true}
	}
	for _, col := range metadataStringColumns {
		idx := s.Index(col)
		var bad []int
		for i, row := range s.Rows {
			if row[idx].Kind != tabular.CellString {
				bad = append(bad, sheetRow(i))
			}
		}
		if len(bad) > 0 {
			return &TypeError{Table: tableMetadata, Column: col, Expected: "string", Rows: bad}
		}
	}
	for _, col := range metadataNumericColumns {
		idx := s.Index(col)
		var bad []int
		for i, row := range s.Rows {
			c := row[idx]
			if c.Kind == tabular.CellNumber {
				continue
			}
			if col == ColNormalization && c.IsEmpty() {
				continue
			}
			bad = append(bad, sheetRow(i))
		}
		if len(bad) > 0 {
			return &TypeError{Table: tableMetadata, Column: col, Expected: "integer or real", Rows: bad}
		}
	}
	return nil
}

// ParseMeasurements validates t and converts it into typed rows.
func ParseMeasurements(t *tabular.Table) ([]Measurement, error) {
	if err := ValidateMeasurements(t); err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		idx[h] = i
	}
	required := make(map[string]bool, len(MeasurementColumns))
	for _, c := range MeasurementColumns {
		required[c] = true
	}

	out := make([]Measurement, 0, len(t.Rows))
	for i, row := range t.Rows {
		num := func(col string) (float64, error) {
			v := row[idx[col]]
			f, err := parseNumber(v)
			if err != nil {
				return 0, &ConversionError{Table: tableMeasurements, Column: col, Row: sheetRow(i), Value: v, Err: err}
			}
			return f, nil
		}
		m := Measurement{
			Sample:     strings.TrimSpace(row[idx[ColSample]]),
			Metabolite: strings.TrimSpace(row[idx[ColMetabolite]]),
		}
		iso, err := num(ColIsotopologue)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(iso) || iso < 0 || iso != math.Trunc(iso) {
			return nil, &ConversionError{Table: tableMeasurements, Column: ColIsotopologue, Row: sheetRow(i),
				Value: row[idx[ColIsotopologue]], Err: errors.New("isotopologue must be a non-negative integer")}
		}
		m.Isotopologue = int(iso)
		if m.Area, err = num(ColArea); err != nil {
			return nil, err
		}
		if m.CorrectedArea, err = num(ColCorrectedArea); err != nil {
			return nil, err
		}
		if m.IsotopologueFraction, err = num(ColIsotopologueFraction); err != nil {
			return nil, err
		}
		if m.MeanEnrichment, err = num(ColMeanEnrichment); err != nil {
			return nil, err
		}
		for name, j := range idx {
			if required[name] || name == "" {
				continue
			}
			if m.Extra == nil {
				m.Extra = map[string]string{}
			}
			m.Extra[name] = row[j]
		}
		out = append(out, m)
	}
	return out, nil
}

// parseNumber accepts the missing-value tokens written by upstream tools.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "nan", "NaN", "NA", "N/A":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// ParseMetadata validates s and converts it into typed rows.
func ParseMetadata(s *tabular.Sheet) ([]Metadata, error) {
	if err := ValidateMetadata(s); err != nil {
		return nil, err
	}
	required := make(map[string]bool, len(MetadataColumns))
	for _, c := range MetadataColumns {
		required[c] = true
	}
	col := func(row []tabular.Cell, name string) tabular.Cell { return row[s.Index(name)] }

	out := make([]Metadata, 0, len(s.Rows))
	for _, row := range s.Rows {
		md := Metadata{
			Sample:         strings.TrimSpace(col(row, ColSample).Str),
			Condition:      strings.TrimSpace(col(row, ColCondition).Str),
			ConditionOrder: col(row, ColConditionOrder).Num,
			Time:           col(row, ColTime).Num,
			NumberRep:      col(row, ColNumberRep).Num,
			Normalization:  1.0,
		}
		if c := col(row, ColNormalization); !c.IsEmpty() {
			md.Normalization = c.Num
		}
		for j, name := range s.Header {
			if required[name] || name == "" || j >= len(row) {
				continue
			}
			if md.Extra == nil {
				md.Extra = map[string]string{}
			}
			md.Extra[name] = row[j].String()
		}
		out = append(out, md)
	}
	return out, nil
}

func checkRegularFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return &PathError{Path: path, Err: err}
	}
	if !fi.Mode().IsRegular() {
		return &PathError{Path: path, Err: errors.New("not a regular file")}
	}
	return nil
}

// LoadData reads and validates a tab-separated measurement file.
func LoadData(path string) ([]Measurement, error) {
	if err := checkRegularFile(path); err != nil {
		return nil, err
	}
	t, err := tabular.ReadDelimitedFile(path, '\t')
	if err != nil {
		return nil, &PathError{Path: path, Err: err}
	}
	return ParseMeasurements(t)
}

// LoadTemplate reads and validates the metadata workbook. sheetIndex is
// 1-based; values below 1 select the first sheet.
func LoadTemplate(path string, sheetIndex int) ([]Metadata, error) {
	if err := checkRegularFile(path); err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return nil, &TypeError{Table: tableMetadata,
			Expected: fmt.Sprintf("template file %q must be an excel file (.xlsx extension)", filepath.Base(path))}
	}
	s, err := tabular.ReadXLSXFile(path, "", sheetIndex)
	if err != nil {
		return nil, &PathError{Path: path, Err: err}
	}
	return ParseMetadata(s)
}
