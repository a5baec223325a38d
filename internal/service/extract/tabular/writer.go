// Package tabular serializes extracted rows to the published CSV format.
package tabular

import (
	"encoding/csv"
	"io"

	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/fhir"
)

// Writer emits the fixed-column CSV extract: a header row followed by one
// record per row, in input order. Quoting follows RFC 4180, so cells holding
// delimiters, quotes or newlines survive a round trip through any standard
// CSV reader.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// Write serializes rows to out. The header is emitted even for zero rows.
func (w *Writer) Write(out io.Writer, rows []fhir.Row) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(fhir.Columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
