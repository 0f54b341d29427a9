package tabular

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>
<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>
</Types>`
	rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>
</Relationships>`
	workbookRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
</Relationships>`
)

// WriteXLSXFile writes a single-sheet workbook to p.
func WriteXLSXFile(p, sheetName string, header []string, rows [][]Cell) error {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sheetName, header, rows); err != nil {
		return err
	}
	return os.WriteFile(p, buf.Bytes(), 0o644)
}

// WriteXLSX writes a minimal single-sheet workbook. Strings are stored inline
// so no shared string table is needed.
func WriteXLSX(w io.Writer, sheetName string, header []string, rows [][]Cell) error {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		body []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"xl/workbook.xml", workbookXML(sheetName)},
		{"xl/_rels/workbook.xml.rels", []byte(workbookRelsXML)},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("xlsx %s: %w", p.name, err)
		}
		if _, err := f.Write(p.body); err != nil {
			return fmt.Errorf("xlsx %s: %w", p.name, err)
		}
	}
	f, err := zw.Create("xl/worksheets/sheet1.xml")
	if err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	if err := writeSheetXML(f, header, rows); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	return zw.Close()
}

func workbookXML(sheetName string) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets><sheet name="`)
	_ = xml.EscapeText(&b, []byte(sheetName))
	b.WriteString(`" sheetId="1" r:id="rId1"/></sheets></workbook>`)
	return b.Bytes()
}

func writeSheetXML(w io.Writer, header []string, rows [][]Cell) error {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)
	hdr := make([]Cell, len(header))
	for i, h := range header {
		hdr[i] = Str(h)
	}
	writeRowXML(&b, 1, hdr)
	for i, row := range rows {
		writeRowXML(&b, i+2, row)
	}
	b.WriteString(`</sheetData></worksheet>`)
	_, err := w.Write(b.Bytes())
	return err
}

func writeRowXML(b *bytes.Buffer, rowNum int, row []Cell) {
	fmt.Fprintf(b, `<row r="%d">`, rowNum)
	for col, c := range row {
		ref := colRef(col, rowNum)
		switch c.Kind {
		case CellString, CellError:
			fmt.Fprintf(b, `<c r="%s" t="inlineStr"><is><t xml:space="preserve">`, ref)
			_ = xml.EscapeText(b, []byte(c.Str))
			b.WriteString(`</t></is></c>`)
		case CellNumber:
			if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
				// Excel has no NaN literal; leave the cell blank.
				continue
			}
			fmt.Fprintf(b, `<c r="%s"><v>%s</v></c>`, ref, strconv.FormatFloat(c.Num, 'g', -1, 64))
		case CellBool:
			v := "0"
			if c.Bool {
				v = "1"
			}
			fmt.Fprintf(b, `<c r="%s" t="b"><v>%s</v></c>`, ref, v)
		}
	}
	b.WriteString(`</row>`)
}
