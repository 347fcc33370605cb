package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/meenmo/rmbs/gap"
	"github.com/meenmo/rmbs/portfolio"
	"github.com/meenmo/rmbs/valuation"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// WriteCSV writes the header and rows of t.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("WriteCSV %s: %w", t.Name, err)
	}
	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = cellString(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteCSV %s: %w", t.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV %s: %w", t.Name, err)
	}
	return nil
}

type jsonTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

func jsonCell(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return json.Number(d.String())
	}
	return v
}

// WriteJSON writes t as {"name", "columns", "data"} with numeric cells as JSON numbers.
func WriteJSON(w io.Writer, t Table) error {
	out := jsonTable{Name: t.Name, Columns: t.Header, Data: make([][]any, len(t.Rows))}
	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = jsonCell(v)
		}
		out.Data[i] = cells
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("WriteJSON %s: %w", t.Name, err)
	}
	return nil
}

func xlsxCell(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return v
}

// WriteXLSX writes each table to its own worksheet with a bold, frozen header row.
func WriteXLSX(w io.Writer, tables ...Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("WriteXLSX: no tables")
	}
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("WriteXLSX: %w", err)
	}
	for i, t := range tables {
		sheet := t.Name
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("WriteXLSX %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("WriteXLSX %s: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, t, header); err != nil {
			return fmt.Errorf("WriteXLSX %s: %w", sheet, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("WriteXLSX: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t Table, headerStyle int) error {
	head := make([]any, len(t.Header))
	for i, h := range t.Header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for r, row := range t.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = xlsxCell(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// Write renders t in format (csv, json or xlsx).
func Write(w io.Writer, format string, t Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatJSON:
		return WriteJSON(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	default:
		return fmt.Errorf("report: unsupported format %q", format)
	}
}

func WriteForecastCSV(w io.Writer, f portfolio.Forecast) error {
	return WriteCSV(w, ForecastTable(f))
}

func WriteForecastJSON(w io.Writer, f portfolio.Forecast) error {
	return WriteJSON(w, ForecastTable(f))
}

func WritePricesCSV(w io.Writer, priced []valuation.PricedLoan) error {
	return WriteCSV(w, PricesTable(priced))
}

func WritePricesJSON(w io.Writer, priced []valuation.PricedLoan) error {
	return WriteJSON(w, PricesTable(priced))
}

func WriteGapCSV(w io.Writer, f gap.Forecast) error {
	return WriteCSV(w, GapTable(f))
}

func WriteGapJSON(w io.Writer, f gap.Forecast) error {
	return WriteJSON(w, GapTable(f))
}

func WriteCurveCSV(w io.Writer, c Curve, months int) error {
	return WriteCSV(w, CurveTable(c, months))
}

func WriteCurveJSON(w io.Writer, c Curve, months int) error {
	return WriteJSON(w, CurveTable(c, months))
}
