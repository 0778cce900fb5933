/*
report.go - Pivot raw time entries into a ledger grid

PURPOSE:
  Upstream extraction (out of scope here) produces flat time entries:
  one record per meeting/block with a date, an hour count, and a
  category label. The report builder normalizes the labels, groups the
  hours by (code, earning, date), joins the code book for the project
  identifiers, and pivots the lot into a Grid over the reporting month -
  zero-filled across every day so downstream stages see a dense table.
*/
package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidewater/timesheet-engine/prorate"
)

// =============================================================================
// TIME ENTRIES
// =============================================================================

// Entry is one normalized block of recorded time.
type Entry struct {
	Code    prorate.Code
	Date    prorate.Date
	Hours   decimal.Decimal
	Earning prorate.EarningCategory
}

// ParseEntry builds an Entry from a raw calendar record, running the
// category label through the normalizer.
func ParseEntry(date prorate.Date, hours decimal.Decimal, label string) Entry {
	earning, code := ParseCategoryLabel(label)
	return Entry{Code: code, Date: date, Hours: hours, Earning: earning}
}

// =============================================================================
// REPORTING WINDOW HELPERS
// =============================================================================

// MonthWindow returns the reporting window covering a calendar month.
func MonthWindow(year int, month time.Month) prorate.Window {
	start := prorate.NewDate(year, month, 1)
	end := prorate.NewDate(year, month+1, 1).AddDays(-1)
	return prorate.Window{Start: start, End: end}
}

// Workdays counts the Monday-Friday days in a calendar month.
func Workdays(year int, month time.Month) int {
	n := 0
	for _, d := range MonthWindow(year, month).Days() {
		wd := d.Time().Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

// =============================================================================
// GRID BUILDER
// =============================================================================

// BuildGrid pivots entries into a ledger grid over the window, joining the
// code book for project identifiers. Entries outside the window, and
// entries whose code the book does not know, are skipped; the skipped
// codes come back so the caller can report them.
func BuildGrid(entries []Entry, window prorate.Window, book *CodeBook) (*prorate.Grid, []prorate.Code) {
	index := make(map[prorate.RowID]*prorate.Row)
	var rows []*prorate.Row
	var skipped []prorate.Code
	seenSkipped := make(map[prorate.Code]bool)

	for _, e := range entries {
		if !window.Contains(e.Date) {
			continue
		}
		entry, ok := book.Lookup(e.Code)
		if !ok {
			if !seenSkipped[e.Code] {
				seenSkipped[e.Code] = true
				skipped = append(skipped, e.Code)
			}
			continue
		}
		id := entry.RowID(e.Earning)
		row, ok := index[id]
		if !ok {
			row = prorate.NewRow(id)
			index[id] = row
			rows = append(rows, row)
		}
		row.Add(e.Date, e.Hours)
	}

	prorate.SortRows(rows)
	return prorate.NewGrid(window, rows), skipped
}
