package isodata

import (
	"fmt"
	"strconv"
	"strings"
)

// PathError indicates an input file that is missing or unreadable.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid path %q", e.Path)
	}
	return fmt.Sprintf("invalid path %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// SchemaError indicates required columns are absent or the table is empty.
type SchemaError struct {
	Table   string
	Missing []string
	Empty   bool
}

func (e *SchemaError) Error() string {
	if e.Empty {
		return fmt.Sprintf("%s: table has no rows", e.Table)
	}
	return fmt.Sprintf("%s: missing required column(s): %s", e.Table, strings.Join(e.Missing, ", "))
}

// TypeError indicates a typed column holds values of the wrong kind.
// Rows are spreadsheet row numbers (table index + 2).
type TypeError struct {
	Table    string
	Column   string
	Expected string
	Rows     []int
}

func (e *TypeError) Error() string {
	if len(e.Rows) == 0 {
		return fmt.Sprintf("%s: %s", e.Table, e.Expected)
	}
	rows := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		rows[i] = strconv.Itoa(r)
	}
	return fmt.Sprintf("%s: column %q must hold %s values; check row(s) %s",
		e.Table, e.Column, e.Expected, strings.Join(rows, ", "))
}

// MergeError indicates the join could not be performed.
type MergeError struct {
	Reason string
}

func (e *MergeError) Error() string { return "merge: " + e.Reason }

// NormalizationError indicates a normalization factor that cannot divide.
type NormalizationError struct {
	Row    int
	Sample string
	Factor float64
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize: sample %q (row %d) has invalid normalization factor %v", e.Sample, e.Row, e.Factor)
}

// ConversionError indicates a value could not be coerced to the column type.
type ConversionError struct {
	Table  string
	Column string
	Row    int
	// Sample is set when the value came from a template row.
	Sample string
	Value  string
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("%s: cannot convert %q in column %q", e.Table, e.Value, e.Column)
	if e.Sample != "" {
		msg += fmt.Sprintf(" for sample %q", e.Sample)
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" at row %d", e.Row)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// FormattingError indicates an identifier could not be built.
type FormattingError struct {
	Field  string
	Row    int
	Reason string
}

func (e *FormattingError) Error() string {
	if e.Reason != "" {
		return "identifier: " + e.Reason
	}
	return fmt.Sprintf("identifier: field %q is missing for row %d", e.Field, e.Row)
}

// MissingDataError is returned when an operation runs before its prerequisite stage.
type MissingDataError struct {
	Op      string
	Need    Stage
	Current Stage
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing data: %s requires stage %s (pipeline is at %s)", e.Op, e.Need, e.Current)
}

// StageError is returned when a completed step is invoked again.
type StageError struct {
	Op      string
	Current Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s already done (pipeline is at %s)", e.Op, e.Current)
}
