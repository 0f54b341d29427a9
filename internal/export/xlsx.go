package export

import (
	"bytes"

	"github.com/llegregam/isoplot/internal/isodata"
	"github.com/llegregam/isoplot/internal/tabular"
	"github.com/llegregam/isoplot/internal/utils"
)

// WriteXLSXFile writes rows as a single-sheet workbook with typed cells.
func WriteXLSXFile(path string, rows []isodata.FinalRow) error {
	cells := make([][]tabular.Cell, len(rows))
	for i, r := range rows {
		nums := r.Numbers()
		row := []tabular.Cell{
			tabular.Str(r.Metabolite),
			tabular.Str(r.Condition),
			tabular.Num(float64(r.Time)),
			tabular.Int(r.Isotopologue),
		}
		for _, col := range isodata.ExportColumns {
			if col == isodata.ColSample {
				row = append(row, tabular.Str(r.Sample))
				continue
			}
			row = append(row, tabular.Num(nums[col]))
		}
		cells[i] = row
	}
	var buf bytes.Buffer
	if err := tabular.WriteXLSX(&buf, "final", Header(), cells); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
