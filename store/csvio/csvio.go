/*
Package csvio reads and writes the tabular ledger and the code book as CSV.

LEDGER SCHEMA:
  Code,Project ID,Activity ID,Award ID,Earning,<date>,<date>,...
  with one ISO "2006-01-02" column per calendar day in the reporting
  window and non-negative decimal hours in the cells. This is the same
  table the redistribution engine consumes and produces, so a file can be
  read, redistributed, and written back without any shape change.

CODE BOOK SCHEMA:
  Code,Project ID,Activity ID,Award ID,Description,ProRate,Include
  ProRate and Include are 0/1 flags.
*/
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidewater/timesheet-engine/prorate"
	"github.com/tidewater/timesheet-engine/timesheet"
)

// ledgerHeader holds the fixed identity columns preceding the date columns.
var ledgerHeader = []string{"Code", "Project ID", "Activity ID", "Award ID", "Earning"}

// =============================================================================
// LEDGER
// =============================================================================

// ReadLedger parses a ledger CSV. The reporting window spans the first
// through the last date column; rows are zero-filled over it.
func ReadLedger(r io.Reader) (*prorate.Grid, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ledger csv is empty")
	}

	header := records[0]
	if len(header) < len(ledgerHeader)+1 {
		return nil, fmt.Errorf("ledger csv needs %d identity columns and at least one date column", len(ledgerHeader))
	}
	for i, want := range ledgerHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return nil, fmt.Errorf("ledger csv column %d: want %q, got %q", i+1, want, header[i])
		}
	}

	dates := make([]prorate.Date, 0, len(header)-len(ledgerHeader))
	for _, col := range header[len(ledgerHeader):] {
		d, err := prorate.ParseDate(strings.TrimSpace(col))
		if err != nil {
			return nil, fmt.Errorf("ledger csv date column %q: %w", col, err)
		}
		dates = append(dates, d)
	}

	rows := make([]*prorate.Row, 0, len(records)-1)
	for n, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("ledger csv line %d: %d fields, want %d", n+2, len(rec), len(header))
		}
		row := prorate.NewRow(prorate.RowID{
			Code:       prorate.Code(strings.TrimSpace(rec[0])),
			ProjectID:  strings.TrimSpace(rec[1]),
			ActivityID: strings.TrimSpace(rec[2]),
			AwardID:    strings.TrimSpace(rec[3]),
			Earning:    prorate.EarningCategory(strings.TrimSpace(rec[4])),
		})
		for i, d := range dates {
			cell := strings.TrimSpace(rec[len(ledgerHeader)+i])
			if cell == "" {
				continue
			}
			hours, err := decimal.NewFromString(cell)
			if err != nil {
				return nil, fmt.Errorf("ledger csv line %d, column %s: %w", n+2, d, err)
			}
			if hours.IsNegative() {
				return nil, fmt.Errorf("ledger csv line %d, column %s: negative hours %s", n+2, d, hours)
			}
			row.Set(d, hours)
		}
		rows = append(rows, row)
	}

	window := prorate.Window{Start: dates[0], End: dates[len(dates)-1]}
	return prorate.NewGrid(window, rows), nil
}

// WriteLedger emits the grid in the same schema ReadLedger consumes.
func WriteLedger(w io.Writer, g *prorate.Grid) error {
	cw := csv.NewWriter(w)
	days := g.Window.Days()

	header := append([]string{}, ledgerHeader...)
	for _, d := range days {
		header = append(header, d.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range g.Rows {
		rec := []string{
			string(r.ID.Code),
			r.ID.ProjectID,
			r.ID.ActivityID,
			r.ID.AwardID,
			string(r.ID.Earning),
		}
		for _, d := range days {
			rec = append(rec, r.On(d).String())
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// =============================================================================
// CODE BOOK
// =============================================================================

var bookHeader = []string{"Code", "Project ID", "Activity ID", "Award ID", "Description", "ProRate", "Include"}

// ReadCodeBook parses the project codes database.
func ReadCodeBook(r io.Reader) (*timesheet.CodeBook, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading code book csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("code book csv is empty")
	}
	if len(records[0]) != len(bookHeader) {
		return nil, fmt.Errorf("code book csv: %d columns, want %d", len(records[0]), len(bookHeader))
	}

	entries := make([]timesheet.CodeEntry, 0, len(records)-1)
	for n, rec := range records[1:] {
		if len(rec) != len(bookHeader) {
			return nil, fmt.Errorf("code book csv line %d: %d fields, want %d", n+2, len(rec), len(bookHeader))
		}
		prorateFlag, err := parseFlag(rec[5])
		if err != nil {
			return nil, fmt.Errorf("code book csv line %d, ProRate: %w", n+2, err)
		}
		include, err := parseFlag(rec[6])
		if err != nil {
			return nil, fmt.Errorf("code book csv line %d, Include: %w", n+2, err)
		}
		entries = append(entries, timesheet.CodeEntry{
			Code:        prorate.Code(strings.TrimSpace(rec[0])),
			ProjectID:   strings.TrimSpace(rec[1]),
			ActivityID:  strings.TrimSpace(rec[2]),
			AwardID:     strings.TrimSpace(rec[3]),
			Description: strings.TrimSpace(rec[4]),
			ProRate:     prorateFlag,
			Include:     include,
		})
	}
	return timesheet.NewCodeBook(entries)
}

func parseFlag(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "0", "":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("flag must be 0 or 1, got %q", s)
	}
}
