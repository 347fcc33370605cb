package store

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/meenmo/rmbs/errs"
	"github.com/meenmo/rmbs/loan"
)

// XLSXSource reads a snapshot from a worksheet whose first row is the header. An empty
// Sheet means the first sheet in the workbook.
type XLSXSource struct {
	Path  string
	Sheet string
}

func (s XLSXSource) Load(ctx context.Context) ([]loan.Record, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("XLSXSource: %w", err)
	}
	defer f.Close()
	return readWorkbook(f, s.Sheet)
}

func readWorkbook(f *excelize.File, sheet string) ([]loan.Record, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errs.Input("xlsx: workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errs.Input("xlsx: sheet %q: %v", sheet, err)
	}
	if len(rows) == 0 {
		return nil, errs.Input("xlsx: sheet %q is empty", sheet)
	}
	return parseRows(rows[0], rows[1:])
}
