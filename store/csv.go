package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/meenmo/rmbs/errs"
	"github.com/meenmo/rmbs/loan"
)

// CSVSource reads a comma-separated snapshot with a header row.
type CSVSource struct {
	Path string
}

func (s CSVSource) Load(ctx context.Context) ([]loan.Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("CSVSource: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a snapshot from r.
func ReadCSV(r io.Reader) ([]loan.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errs.Input("csv: %v", err)
	}
	if len(rows) == 0 {
		return nil, errs.Input("csv: empty file")
	}
	return parseRows(rows[0], rows[1:])
}
