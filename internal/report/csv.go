package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV renders records as delimited text: a header of the schema fields
// prefixed by the page number, then one row per record in the given order.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	fields := Fields()

	header := append([]string{"page"}, fields...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, rec := range records {
		row := make([]string, 0, len(fields)+1)
		row = append(row, strconv.Itoa(i+1))
		for _, f := range fields {
			row = append(row, rec[f])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
