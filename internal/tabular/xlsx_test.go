package tabular

import (
	"archive/zip"
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWorkbook zips the given parts into an in-memory xlsx.
func buildWorkbook(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const wbTwoSheets = `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Notes" sheetId="7" r:id="rId2"/><sheet name="Data" sheetId="3" r:id="rId1"/></sheets></workbook>`

const relsTwoSheets = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Target="/xl/worksheets/data.xml"/>
<Relationship Id="rId2" Target="worksheets/notes.xml"/>
</Relationships>`

const sharedTwoSheets = `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>sample</t></si><si><t>condition</t></si><si><r><t>Gl</t></r><r><t>c</t></r></si><si><t>note</t></si>
</sst>`

const dataSheet = `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="inlineStr"><is><t>time</t></is></c><c r="D1" t="inlineStr"><is><t>flag</t></is></c></row>
<row r="2"><c r="A2" t="s"><v>2</v></c><c r="C2"><v>12.5</v></c><c r="D2" t="b"><v>1</v></c></row>
<row r="3"><c r="A3" t="str"><v>x</v></c><c r="B3" t="e"><v>#DIV/0!</v></c><c r="C3"><v>3</v></c></row>
<row r="4"></row>
<row r="5"><c r="A5" s="1"/></row>
</sheetData></worksheet>`

const notesSheet = `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>3</v></c></row>
<row r="2"><c r="A2" t="inlineStr"><is><t>hello</t></is></c></row>
</sheetData></worksheet>`

func twoSheetWorkbook(t *testing.T) []byte {
	return buildWorkbook(t, map[string]string{
		"xl/workbook.xml":            wbTwoSheets,
		"xl/_rels/workbook.xml.rels": relsTwoSheets,
		"xl/sharedStrings.xml":       sharedTwoSheets,
		"xl/worksheets/data.xml":     dataSheet,
		"xl/worksheets/notes.xml":    notesSheet,
	})
}

func TestReadXLSXFirstSheetFollowsWorkbookOrder(t *testing.T) {
	s, err := ReadXLSX(twoSheetWorkbook(t), "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"note"}, s.Header)
	require.Len(t, s.Rows, 1)
	assert.Equal(t, Str("hello"), s.Rows[0][0])
}

func TestReadXLSXTypedCells(t *testing.T) {
	s, err := ReadXLSX(twoSheetWorkbook(t), "data", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"sample", "condition", "time", "flag"}, s.Header)
	require.Len(t, s.Rows, 2, "blank trailing rows are dropped")

	r := s.Rows[0]
	assert.Equal(t, Str("Glc"), r[0], "rich text runs are concatenated")
	assert.True(t, r[1].IsEmpty())
	assert.Equal(t, CellNumber, r[2].Kind)
	assert.InDelta(t, 12.5, r[2].Num, 1e-12)
	assert.Equal(t, Cell{Kind: CellBool, Bool: true}, r[3])

	r = s.Rows[1]
	assert.Equal(t, Str("x"), r[0])
	assert.Equal(t, CellError, r[1].Kind)
	assert.Equal(t, "#DIV/0!", r[1].String())
	assert.Len(t, r, 4, "short rows are padded to the header width")
}

func TestReadXLSXUnknownSheet(t *testing.T) {
	_, err := ReadXLSX(twoSheetWorkbook(t), "missing", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Notes, Data")
}

func TestReadXLSXNotAZip(t *testing.T) {
	_, err := ReadXLSX([]byte("sample\tcondition\n"), "", 0)
	require.Error(t, err)
}

func TestWriteXLSXReadBack(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.xlsx")
	header := []string{"sample", "time", "note"}
	rows := [][]Cell{
		{Str("S1 <a&b>"), Int(1), Str("")},
		{Str("S2"), Num(0.25), Cell{}},
		{Str("S3"), Num(math.NaN()), Cell{Kind: CellBool}},
	}
	require.NoError(t, WriteXLSXFile(p, "Data", header, rows))

	s, err := ReadXLSXFile(p, "Data", 0)
	require.NoError(t, err)
	assert.Equal(t, "out.xlsx", s.Name)
	assert.Equal(t, header, s.Header)
	require.Len(t, s.Rows, 3)
	assert.Equal(t, Str("S1 <a&b>"), s.Rows[0][0])
	assert.Equal(t, Num(1), s.Rows[0][1])
	assert.Equal(t, Num(0.25), s.Rows[1][1])
	assert.True(t, s.Rows[1][2].IsEmpty())
	assert.True(t, s.Rows[2][1].IsEmpty(), "NaN is written as a blank cell")
	assert.Equal(t, "FALSE", s.Rows[2][2].String())
}

func TestReadXLSXFileMissing(t *testing.T) {
	_, err := ReadXLSXFile(filepath.Join(t.TempDir(), "nope.xlsx"), "", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestColumnRefs(t *testing.T) {
	cases := map[string]int{"A1": 0, "C12": 2, "Z3": 25, "AA1": 26, "az9": 51, "BA2": 52}
	for ref, want := range cases {
		assert.Equal(t, want, colIndexFromRef(ref), ref)
	}
	assert.Equal(t, "A1", colRef(0, 1))
	assert.Equal(t, "AA7", colRef(26, 7))
	assert.Equal(t, "BA2", colRef(52, 2))
}

func TestReadXLSXRefsWithoutColumnLetters(t *testing.T) {
	assert.Equal(t, -1, colIndexFromRef("1"))
	assert.Equal(t, -1, colIndexFromRef(""))

	sheet := `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="1" t="inlineStr"><is><t>sample</t></is></c><c r="2" t="inlineStr"><is><t>time</t></is></c></row>
<row r="2"><c t="inlineStr"><is><t>S1</t></is></c><c r="B2"><v>4</v></c></row>
</sheetData></worksheet>`
	b := buildWorkbook(t, map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Sheet1" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Target="worksheets/sheet1.xml"/>
</Relationships>`,
		"xl/worksheets/sheet1.xml": sheet,
	})
	s, err := ReadXLSX(b, "", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"sample", "time"}, s.Header)
	require.Len(t, s.Rows, 1)
	assert.Equal(t, []Cell{Str("S1"), Num(4)}, s.Rows[0])
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"styles.xml", "xl/styles.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.input); got != tt.expected {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
