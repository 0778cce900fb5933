/*
reconcile.go - Per-cell repair of rounding drift

PURPOSE:
  Summing already-rounded contributions from multiple virtual rows can
  drift from the true proportional total by more than a single rounding
  step. The reconciler re-validates, for every (earning, date) cell, that
  the post-allocation total matches the pre-allocation total, and repairs
  any residual mismatch.

REPAIR RULES (per cell, diff = original total - current total):
  diff > 0 (too low):  the single row with the largest current hours on
    the date absorbs the full diff, then rounds. The mismatch is never
    split, to minimize the number of rows touched.
  diff < 0 (too high): rows give hours back, but only hours they actually
    received from the allocator - a row is never reduced below its
    pre-allocation baseline. Candidates are walked in descending order of
    received = current - original, each giving back up to its received
    amount, carrying the remainder onward.

  A residual no candidate can absorb is a data-quality warning, not a
  fatal error: it is logged and left in place.

DETERMINISM:
  Cells are visited in sorted (earning, date) order and ties in the
  candidate sorts break on the canonical RowID order, so repeated runs on
  identical input produce identical output. Repair is strictly local: a
  cell's repair reads and writes only that date/category pair.
*/
package prorate

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SNAPSHOT - Pre-allocation hours, read-only
// =============================================================================

// Snapshot captures target rows' hours before allocation. The repair rule
// needs to know how many hours each row received *from prorate* as opposed
// to hours it already owned; that distinction must never be lost.
type Snapshot map[RowID]map[Date]decimal.Decimal

// TakeSnapshot copies the rows' current hours.
func TakeSnapshot(rows []*Row) Snapshot {
	s := make(Snapshot, len(rows))
	for _, r := range rows {
		hours := make(map[Date]decimal.Decimal, len(r.Hours))
		for d, h := range r.Hours {
			hours[d] = h
		}
		s[r.ID] = hours
	}
	return s
}

// On returns the snapshotted hours for a row on a date. A row absent from
// the snapshot (synthesized during allocation) has a zero baseline.
func (s Snapshot) On(id RowID, d Date) decimal.Decimal {
	if hours, ok := s[id]; ok {
		return hours[d]
	}
	return decimal.Zero
}

// =============================================================================
// RECONCILER
// =============================================================================

// Tolerance is the default conservation tolerance, well below one
// rounding step.
var Tolerance = decimal.RequireFromString("0.001")

// Reconcile repairs every (earning, date) cell of the working set whose
// total drifted from the pre-allocation total beyond the tolerance. Rows
// are mutated in place. Returns the number of cells repaired and the
// warnings for residuals that could not be absorbed.
func Reconcile(rows []*Row, original map[Cell]decimal.Decimal, snapshot Snapshot, window Window, step, tolerance decimal.Decimal) (int, []Warning) {
	byEarning := make(map[EarningCategory][]*Row)
	for _, r := range rows {
		byEarning[r.ID.Earning] = append(byEarning[r.ID.Earning], r)
	}

	repaired := 0
	var warnings []Warning
	for _, earning := range earningsOf(rows) {
		candidates := byEarning[earning]
		for d := window.Start; d.BeforeOrEqual(window.End); d = d.AddDays(1) {
			cell := Cell{Earning: earning, Date: d}
			current := decimal.Zero
			for _, r := range candidates {
				current = current.Add(r.On(d))
			}
			diff := original[cell].Sub(current)
			if diff.Abs().LessThanOrEqual(tolerance) {
				continue
			}
			repaired++
			if diff.IsPositive() {
				topUp(candidates, d, diff, step)
				continue
			}
			if residual := reclaim(candidates, d, diff.Neg(), snapshot, step); residual.GreaterThan(tolerance) {
				warnings = append(warnings, Warning{Earning: earning, Date: d, Residual: residual})
			}
		}
	}
	return repaired, warnings
}

// topUp adds the full missing amount to the row with the largest current
// hours on the date.
func topUp(candidates []*Row, d Date, diff, step decimal.Decimal) {
	var best *Row
	for _, r := range candidates {
		switch {
		case best == nil,
			r.On(d).GreaterThan(best.On(d)),
			r.On(d).Equal(best.On(d)) && r.ID.Less(best.ID):
			best = r
		}
	}
	if best == nil {
		return
	}
	best.Set(d, roundTo(best.On(d).Add(diff), step))
}

// reclaim walks the candidates in descending order of hours received from
// prorate, taking back up to each row's received amount until the shortfall
// is covered. Returns the unresolved residual (zero when fully absorbed).
func reclaim(candidates []*Row, d Date, shortfall decimal.Decimal, snapshot Snapshot, step decimal.Decimal) decimal.Decimal {
	type donor struct {
		row      *Row
		received decimal.Decimal
	}
	var donors []donor
	for _, r := range candidates {
		received := r.On(d).Sub(snapshot.On(r.ID, d))
		if received.IsPositive() {
			donors = append(donors, donor{row: r, received: received})
		}
	}
	sort.SliceStable(donors, func(i, j int) bool {
		if !donors[i].received.Equal(donors[j].received) {
			return donors[i].received.GreaterThan(donors[j].received)
		}
		return donors[i].row.ID.Less(donors[j].row.ID)
	})

	remaining := shortfall
	for _, don := range donors {
		if !remaining.IsPositive() {
			break
		}
		give := don.received
		if give.GreaterThan(remaining) {
			give = remaining
		}
		don.row.Set(d, roundTo(don.row.On(d).Sub(give), step))
		remaining = remaining.Sub(give)
	}
	return remaining
}
