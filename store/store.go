// Package store loads loan snapshots from files and databases.
package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/meenmo/rmbs/errs"
	"github.com/meenmo/rmbs/loan"
)

// Source loads one loan snapshot.
type Source interface {
	Load(ctx context.Context) ([]loan.Record, error)
}

// Column names of a loan snapshot. curr_bal is accepted as an alias of current_balance.
const (
	ColID             = "loan_id"
	ColNoteRate       = "note_rate"
	ColCoupon         = "coupon"
	ColTerm           = "term"
	ColAge            = "age"
	ColCurrentBalance = "current_balance"
	ColCurrBal        = "curr_bal"
)

var requiredColumns = []string{ColNoteRate, ColCoupon, ColTerm, ColAge, ColCurrentBalance}

// columnIndex maps normalized header names to positions and checks required columns.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		if name == ColCurrBal {
			name = ColCurrentBalance
		}
		idx[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, errs.Input("snapshot: missing column %q", col)
		}
	}
	return idx, nil
}

// parseRows converts a header plus string rows into validated records. Blank rows are
// skipped; line numbers in errors are 1-based and count the header.
func parseRows(header []string, rows [][]string) ([]loan.Record, error) {
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}
	get := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]loan.Record, 0, len(rows))
	for n, row := range rows {
		line := n + 2
		if isBlank(row) {
			continue
		}
		rec := loan.Record{ID: get(row, ColID)}
		if rec.ID == "" {
			rec.ID = strconv.Itoa(len(out) + 1)
		}
		if rec.NoteRate, err = parseFloat(get(row, ColNoteRate)); err != nil {
			return nil, errs.Input("snapshot line %d: note_rate: %v", line, err)
		}
		if rec.Coupon, err = parseFloat(get(row, ColCoupon)); err != nil {
			return nil, errs.Input("snapshot line %d: coupon: %v", line, err)
		}
		if rec.Term, err = parseMonths(get(row, ColTerm)); err != nil {
			return nil, errs.Input("snapshot line %d: term: %v", line, err)
		}
		if rec.Age, err = parseMonths(get(row, ColAge)); err != nil {
			return nil, errs.Input("snapshot line %d: age: %v", line, err)
		}
		if rec.CurrentBalance, err = parseFloat(get(row, ColCurrentBalance)); err != nil {
			return nil, errs.Input("snapshot line %d: current_balance: %v", line, err)
		}
		if err := rec.Validate(); err != nil {
			return nil, errs.Input("snapshot line %d: %v", line, err)
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, errs.Input("snapshot: no loans")
	}
	return out, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// parseMonths accepts integral values written as floats ("360.0"), as exported by
// spreadsheet tools.
func parseMonths(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, errs.Input("%q is not a whole number of months", s)
	}
	return int(f), nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
