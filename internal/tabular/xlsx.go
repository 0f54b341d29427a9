package tabular

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadXLSXFile reads the selected sheet of a .xlsx workbook into typed cells.
// If sheetName is empty and sheetIndex <= 0, it defaults to the first sheet.
// sheetIndex is 1-based (Sheet1 == 1).
func ReadXLSXFile(p string, sheetName string, sheetIndex int) (*Sheet, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	s, err := ReadXLSX(b, sheetName, sheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
	}
	s.Name = filepath.Base(p)
	return s, nil
}

// ReadXLSX parses workbook bytes. The first non-empty row is the header.
func ReadXLSX(b []byte, sheetName string, sheetIndex int) (*Sheet, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	sheets := parseWorkbook(readZipFile(zr, "xl/workbook.xml"))
	rels := parseRelationships(readZipFile(zr, "xl/_rels/workbook.xml.rels"))
	shared := parseSharedStrings(readZipFile(zr, "xl/sharedStrings.xml"))

	target := ""
	if sheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.Name, sheetName) {
				if rel, ok := rels[s.RID]; ok {
					target = normalizeRelPath(rel)
				}
				break
			}
		}
		if target == "" {
			available := make([]string, len(sheets))
			for i, s := range sheets {
				available[i] = s.Name
			}
			return nil, fmt.Errorf("sheet '%s' not found.\nAvailable sheets: %s",
				sheetName, strings.Join(available, ", "))
		}
	}
	if target == "" {
		idx := sheetIndex
		if idx <= 0 {
			idx = 1
		}
		// Workbook order decides "first sheet"; sheetId is only a fallback.
		var rid string
		if idx <= len(sheets) {
			rid = sheets[idx-1].RID
		} else {
			for _, s := range sheets {
				if s.SheetID == idx {
					rid = s.RID
					break
				}
			}
		}
		if rel, ok := rels[rid]; ok && rid != "" {
			target = normalizeRelPath(rel)
		}
		if target == "" {
			target = path.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", idx))
		}
	}
	sheetXML := readZipFile(zr, target)
	if sheetXML == nil {
		return nil, fmt.Errorf("worksheet %s missing from workbook", target)
	}

	rr := newSheetRowReader(sheetXML, shared)
	out := &Sheet{}
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		if out.Header == nil {
			if allEmpty(row) {
				continue
			}
			out.Header = make([]string, len(row))
			for i, c := range row {
				out.Header[i] = strings.TrimSpace(c.String())
			}
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	// Trailing rows that only carry formatting are not data.
	for len(out.Rows) > 0 && allEmpty(out.Rows[len(out.Rows)-1]) {
		out.Rows = out.Rows[:len(out.Rows)-1]
	}
	ncol := len(out.Header)
	for i, row := range out.Rows {
		if len(row) < ncol {
			tmp := make([]Cell, ncol)
			copy(tmp, row)
			out.Rows[i] = tmp
		}
	}
	return out, nil
}

func allEmpty(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// parseWorkbook extracts sheet entries with names and relationship ids.
func parseWorkbook(data []byte) []wbSheet {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var sheets []wbSheet
	for {
		tok, err := dec.Token()
		if err != nil {
			return sheets
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "sheet" {
			var s wbSheet
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "name":
					s.Name = a.Value
				case "sheetId":
					s.SheetID = atoiSafe(a.Value)
				case "id":
					s.RID = a.Value // in r: namespace
				}
			}
			sheets = append(sheets, s)
		}
	}
}

type wbSheet struct {
	Name    string
	SheetID int
	RID     string
}

// parseRelationships returns map[r:id]Target.
func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			var id, target string
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "Id":
					id = a.Value
				case "Target":
					target = a.Value
				}
			}
			if id != "" && target != "" {
				out[id] = target
			}
		}
	}
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil
			}
			defer rc.Close()
			b, _ := io.ReadAll(rc)
			return b
		}
	}
	return nil
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT, inPhonetic bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			case "rPh":
				inPhonetic = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "rPh":
				inPhonetic = false
			case "si":
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT && !inPhonetic {
				buf.Write(se)
			}
		}
	}
}

type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
	inRow  bool
	curRow []Cell
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

func (r *sheetRowReader) Next() ([]Cell, bool) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				r.inRow = true
				r.curRow = nil
			}
			if r.inRow && se.Name.Local == "c" {
				var rAttr, tAttr string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						rAttr = a.Value
					case "t":
						tAttr = a.Value
					}
				}
				colIdx := len(r.curRow)
				if i := colIndexFromRef(rAttr); i >= 0 {
					colIdx = i
				}
				cell := r.readCell(tAttr)
				if len(r.curRow) <= colIdx {
					tmp := make([]Cell, colIdx+1)
					copy(tmp, r.curRow)
					r.curRow = tmp
				}
				r.curRow[colIdx] = cell
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				r.inRow = false
				return r.curRow, true
			}
		}
	}
}

// readCell consumes tokens up to </c> and decodes the value according to
// the cell type attribute.
func (r *sheetRowReader) readCell(tAttr string) Cell {
	var val string
	var seen bool
	for {
		tok, err := r.dec.Token()
		if err != nil {
			break
		}
		if se, ok := tok.(xml.StartElement); ok && (se.Name.Local == "v" || se.Name.Local == "t") {
			var sb strings.Builder
			for {
				tk, er := r.dec.Token()
				if er != nil {
					break
				}
				if ed, ok := tk.(xml.EndElement); ok && (ed.Name.Local == "v" || ed.Name.Local == "t") {
					break
				}
				if ch, ok := tk.(xml.CharData); ok {
					sb.Write(ch)
				}
			}
			val += sb.String()
			seen = true
			continue
		}
		if ed, ok := tok.(xml.EndElement); ok && ed.Name.Local == "c" {
			break
		}
	}
	if !seen {
		return Cell{}
	}
	switch tAttr {
	case "s":
		idx := atoiSafe(val)
		if idx >= 0 && idx < len(r.shared) {
			return Str(r.shared[idx])
		}
		return Cell{}
	case "inlineStr", "str", "d":
		return Str(val)
	case "b":
		return Cell{Kind: CellBool, Bool: strings.TrimSpace(val) == "1"}
	case "e":
		return Cell{Kind: CellError, Str: val}
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return Str(val)
		}
		return Num(f)
	}
}

// helpers for refs like "C12" -> 2 (0-based index); -1 when ref has no
// column letters.
func colIndexFromRef(ref string) int {
	i := 0
	for i < len(ref) {
		c := ref[i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			i++
			continue
		}
		break
	}
	s := strings.ToUpper(ref[:i])
	idx := 0
	for j := 0; j < len(s); j++ {
		idx = idx*26 + int(s[j]-'A'+1)
	}
	return idx - 1
}

// colRef is the inverse of colIndexFromRef for a 0-based column and 1-based row.
func colRef(col, row int) string {
	var letters []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		letters = append([]byte{byte('A' + (n-1)%26)}, letters...)
	}
	return string(letters) + strconv.Itoa(row)
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath converts relationship Target paths to ZIP-compatible paths.
// Relationships may have leading slashes (e.g., "/xl/worksheets/sheet1.xml")
// but ZIP entries don't include the leading slash.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
