package export

import (
	"encoding/json"
	"io"

	"github.com/llegregam/isoplot/internal/isodata"
	"github.com/llegregam/isoplot/internal/utils"
)

// jsonRows keys each row by the Header columns. Numbers stay numbers.
func jsonRows(rows []isodata.FinalRow) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		m := map[string]any{
			isodata.ColMetabolite:   r.Metabolite,
			isodata.ColCondition:    r.Condition,
			isodata.ColTime:         r.Time,
			isodata.ColIsotopologue: r.Isotopologue,
			isodata.ColNumberRep:    r.NumberRep,
			isodata.ColSample:       r.Sample,
		}
		for col, v := range r.Numbers() {
			if col != isodata.ColNumberRep {
				m[col] = v
			}
		}
		out[i] = m
	}
	return out
}

// WriteJSON writes rows as a JSON array of objects.
func WriteJSON(w io.Writer, rows []isodata.FinalRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonRows(rows))
}

// WriteJSONFile writes rows to path atomically.
func WriteJSONFile(path string, rows []isodata.FinalRow) error {
	b, err := utils.PrettyJSON(jsonRows(rows))
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}
