package tabular

import (
	"strconv"
	"strings"
)

// CellKind is the stored type of a spreadsheet cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellBool
	CellError
)

func (k CellKind) String() string {
	switch k {
	case CellString:
		return "string"
	case CellNumber:
		return "number"
	case CellBool:
		return "bool"
	case CellError:
		return "error"
	default:
		return "empty"
	}
}

// Cell is one typed spreadsheet value.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Bool bool
}

// Str returns a string cell.
func Str(s string) Cell { return Cell{Kind: CellString, Str: s} }

// Num returns a numeric cell.
func Num(f float64) Cell { return Cell{Kind: CellNumber, Num: f} }

// Int returns a numeric cell holding an integer.
func Int(i int) Cell { return Cell{Kind: CellNumber, Num: float64(i)} }

// IsEmpty reports whether the cell holds nothing.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// String renders the cell the way a reader would see it in the sheet.
func (c Cell) String() string {
	switch c.Kind {
	case CellString, CellError:
		return c.Str
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'g', -1, 64)
	case CellBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Sheet is a header plus typed rows read from a workbook.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]Cell
}

// Index returns the position of column name, or -1.
func (s *Sheet) Index(name string) int {
	return indexOf(s.Header, name)
}

// Table is a header plus raw string rows read from a delimited file.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	return indexOf(t.Header, name)
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}
