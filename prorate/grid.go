package prorate

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// GRID - The tabular ledger: rows x calendar days
// =============================================================================

// Grid is the ledger the engine consumes and produces: one row per booking
// line, one column per calendar day in the reporting window.
//
// INVARIANTS:
//   - every row is zero-filled over the window (identical date-key sets)
//   - hours are never negative on well-formed input
type Grid struct {
	Window Window
	Rows   []*Row
}

// NewGrid builds a grid over the window, zero-filling every row.
// The rows are used as-is (not cloned); callers that need to keep the
// originals untouched should Clone first.
func NewGrid(window Window, rows []*Row) *Grid {
	g := &Grid{Window: window, Rows: rows}
	for _, r := range g.Rows {
		r.zeroFill(window)
	}
	return g
}

func (g *Grid) Clone() *Grid {
	rows := make([]*Row, len(g.Rows))
	for i, r := range g.Rows {
		rows[i] = r.Clone()
	}
	return &Grid{Window: g.Window, Rows: rows}
}

// Earnings returns the distinct earning categories present, sorted.
func (g *Grid) Earnings() []EarningCategory {
	return earningsOf(g.Rows)
}

func earningsOf(rows []*Row) []EarningCategory {
	seen := make(map[EarningCategory]bool)
	var out []EarningCategory
	for _, r := range rows {
		if !seen[r.ID.Earning] {
			seen[r.ID.Earning] = true
			out = append(out, r.ID.Earning)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// =============================================================================
// CELL TOTALS - Per-(EarningCategory, Date) sums
// =============================================================================

// CellTotals sums hours per (earning, date) over a row set. This is the
// quantity the reconciler conserves.
func CellTotals(rows []*Row, window Window) map[Cell]decimal.Decimal {
	totals := make(map[Cell]decimal.Decimal)
	for _, r := range rows {
		for d := window.Start; d.BeforeOrEqual(window.End); d = d.AddDays(1) {
			h := r.On(d)
			if h.IsZero() {
				continue
			}
			cell := Cell{Earning: r.ID.Earning, Date: d}
			totals[cell] = totals[cell].Add(h)
		}
	}
	return totals
}

// =============================================================================
// MERGE - Collapse duplicate identities
// =============================================================================

// MergeRows sums the date columns of rows sharing an identical RowID.
// The first occurrence keeps its position; later duplicates fold into it.
// Guards against duplicate synthesized rows after allocation.
func MergeRows(rows []*Row) []*Row {
	index := make(map[RowID]*Row, len(rows))
	var out []*Row
	for _, r := range rows {
		if existing, ok := index[r.ID]; ok {
			for d, h := range r.Hours {
				existing.Add(d, h)
			}
			continue
		}
		index[r.ID] = r
		out = append(out, r)
	}
	return out
}

// SortRows orders rows by their canonical identity order, in place.
func SortRows(rows []*Row) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID.Less(rows[j].ID) })
}
