// Package export serializes tabular data for download endpoints.
package export

import (
	"bytes"
	"encoding/csv"
)

type Table struct {
	Header []string
	Rows   [][]string
}

// CSV renders the table as RFC 4180 text, header first.
func CSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if len(t.Header) > 0 {
		if err := w.Write(t.Header); err != nil {
			return nil, err
		}
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
