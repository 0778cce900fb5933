/*
codebook.go - The project codes database

PURPOSE:
  The code book is the per-project configuration table maintained outside
  the tool: for every project code it carries the identifiers the
  timesheet system wants (Project/Activity/Award IDs) plus the two human
  decisions the prorate engine consumes:

    ProRate - true marks the code as virtual (its hours are given away)
    Include - false keeps the code out of the redistribution targets

  Entries carrying the reserved project identifier are excepted from
  redistribution entirely.
*/
package timesheet

import (
	"fmt"

	"github.com/tidewater/timesheet-engine/prorate"
)

// =============================================================================
// CODE BOOK
// =============================================================================

type CodeEntry struct {
	Code        prorate.Code
	ProjectID   string
	ActivityID  string
	AwardID     string
	Description string
	ProRate     bool
	Include     bool
}

// RowID builds the ledger identity for hours booked against this entry
// in the given earning category.
func (e CodeEntry) RowID(earning prorate.EarningCategory) prorate.RowID {
	return prorate.RowID{
		Code:       e.Code,
		ProjectID:  e.ProjectID,
		ActivityID: e.ActivityID,
		AwardID:    e.AwardID,
		Earning:    earning,
	}
}

type CodeBook struct {
	entries []CodeEntry
	byCode  map[prorate.Code]CodeEntry
}

// NewCodeBook indexes the entries. Duplicate codes are a configuration
// error: the book must map each code to exactly one project line.
func NewCodeBook(entries []CodeEntry) (*CodeBook, error) {
	book := &CodeBook{
		entries: entries,
		byCode:  make(map[prorate.Code]CodeEntry, len(entries)),
	}
	for _, e := range entries {
		if _, dup := book.byCode[e.Code]; dup {
			return nil, fmt.Errorf("duplicate code %q in code book", e.Code)
		}
		book.byCode[e.Code] = e
	}
	return book, nil
}

func (b *CodeBook) Lookup(code prorate.Code) (CodeEntry, bool) {
	e, ok := b.byCode[code]
	return e, ok
}

func (b *CodeBook) Entries() []CodeEntry {
	out := make([]CodeEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// ProrateFlags derives the classification table the engine consumes.
// Entries under the reserved identifier are left out; the engine's
// excepted predicate claims those rows before the flag lookup.
func (b *CodeBook) ProrateFlags() map[prorate.Code]bool {
	flags := make(map[prorate.Code]bool, len(b.entries))
	for _, e := range b.entries {
		if e.ProjectID == prorate.ReservedProjectID {
			continue
		}
		flags[e.Code] = e.ProRate
	}
	return flags
}

// Selection derives the target-selection table from the Include column.
func (b *CodeBook) Selection() map[prorate.Code]bool {
	sel := make(map[prorate.Code]bool, len(b.entries))
	for _, e := range b.entries {
		sel[e.Code] = e.Include
	}
	return sel
}
