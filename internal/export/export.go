// Package export writes the final table of a computed dataset to disk.
package export

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/llegregam/isoplot/internal/isodata"
	"github.com/llegregam/isoplot/internal/utils"
)

// Format is an output file type.
type Format string

const (
	FormatTSV    Format = "tsv"
	FormatJSON   Format = "json"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// Formats lists every supported format.
var Formats = []Format{FormatTSV, FormatJSON, FormatXLSX, FormatSQLite}

// Ext returns the file extension written for f.
func (f Format) Ext() string {
	if f == FormatSQLite {
		return ".db"
	}
	return "." + string(f)
}

// ParseFormats validates a list of format names. Duplicates are dropped.
func ParseFormats(names []string) ([]Format, error) {
	seen := map[Format]bool{}
	var out []Format
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			f := Format(strings.ToLower(strings.TrimSpace(part)))
			if f == "" {
				continue
			}
			if !f.valid() {
				return nil, fmt.Errorf("unsupported export format %q (choose from %s)", f, formatList())
			}
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	if len(out) == 0 {
		return []Format{FormatTSV}, nil
	}
	return out, nil
}

func (f Format) valid() bool {
	for _, k := range Formats {
		if k == f {
			return true
		}
	}
	return false
}

func formatList() string {
	s := make([]string, len(Formats))
	for i, f := range Formats {
		s[i] = string(f)
	}
	return strings.Join(s, ", ")
}

// Header returns the index columns followed by the fixed export columns.
func Header() []string {
	h := make([]string, 0, len(isodata.IndexColumns)+len(isodata.ExportColumns))
	h = append(h, isodata.IndexColumns...)
	return append(h, isodata.ExportColumns...)
}

// Record renders one row in Header order.
func Record(r isodata.FinalRow) []string {
	nums := r.Numbers()
	rec := []string{
		r.Metabolite,
		r.Condition,
		strconv.FormatInt(r.Time, 10),
		strconv.Itoa(r.Isotopologue),
	}
	for _, col := range isodata.ExportColumns {
		switch col {
		case isodata.ColSample:
			rec = append(rec, r.Sample)
		case isodata.ColNumberRep:
			rec = append(rec, strconv.FormatInt(r.NumberRep, 10))
		default:
			rec = append(rec, formatFloat(nums[col]))
		}
	}
	return rec
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Request describes one export run.
type Request struct {
	Dir     string
	Name    string
	RunID   string
	Formats []Format
	Rows    []isodata.FinalRow
}

// Write exports rows in every requested format and returns the written
// paths in format order.
func Write(req Request) ([]string, error) {
	if r, ok := utils.SafeName(req.Name); !ok {
		return nil, fmt.Errorf("run name %q contains forbidden character %q", req.Name, r)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("run name is empty")
	}
	if err := utils.EnsureDir(req.Dir); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	var paths []string
	for _, f := range req.Formats {
		p := filepath.Join(req.Dir, req.Name+f.Ext())
		var err error
		switch f {
		case FormatTSV:
			err = WriteTSVFile(p, req.Rows)
		case FormatJSON:
			err = WriteJSONFile(p, req.Rows)
		case FormatXLSX:
			err = WriteXLSXFile(p, req.Rows)
		case FormatSQLite:
			err = WriteSQLite(p, req.RunID, req.Name, req.Rows)
		default:
			err = fmt.Errorf("unsupported export format %q", f)
		}
		if err != nil {
			return paths, fmt.Errorf("export %s: %w", f, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
