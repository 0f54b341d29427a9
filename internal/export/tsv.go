package export

import (
	"bytes"
	"io"

	"github.com/llegregam/isoplot/internal/isodata"
	"github.com/llegregam/isoplot/internal/tabular"
	"github.com/llegregam/isoplot/internal/utils"
)

// WriteTSV writes rows as tab-separated text.
func WriteTSV(w io.Writer, rows []isodata.FinalRow) error {
	recs := make([][]string, len(rows))
	for i, r := range rows {
		recs[i] = Record(r)
	}
	return tabular.WriteDelimited(w, '\t', Header(), recs)
}

// WriteTSVFile writes rows to path atomically.
func WriteTSVFile(path string, rows []isodata.FinalRow) error {
	var buf bytes.Buffer
	if err := WriteTSV(&buf, rows); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
