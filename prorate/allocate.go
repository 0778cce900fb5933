/*
allocate.go - Proportional spreading of virtual hours

PURPOSE:
  Redistributes every virtual row's per-day hours across the target rows,
  in proportion to the targets' own hour totals.

THE TWO BRANCHES:
  - Regular category: virtual hours are added directly onto the target
    rows themselves, date by date. No new rows are created.
  - Any other category (leave types, holidays): a target project usually
    has no prior entries in that category, so for every target row the
    allocator finds or synthesizes a row carrying the target's project
    identifiers and the virtual row's earning category, and adds the
    proportional hours there.

WEIGHTS:
  weight(target) = totalHours(target) / sum(totalHours(all targets)),
  uniform 1/N when the sum is zero. The vector is recomputed fresh for
  every virtual row: earlier allocations change the targets' totals, and
  synthesized rows only reshape the set between virtual-row iterations.

ROUNDING:
  Accumulation is exact decimal arithmetic. Only after every virtual row
  has been processed are duplicate identities merged and all cells rounded
  to the granularity step. This is the single rounding site in the whole
  pipeline - and the origin of the drift the reconciler repairs.
*/
package prorate

import "github.com/shopspring/decimal"

// =============================================================================
// WEIGHT VECTOR
// =============================================================================

// weightsFor computes one weight per target row from the targets' current
// hour totals across the full date range. Zero-sum sets get uniform 1/N.
func weightsFor(targets []*Row) []decimal.Decimal {
	weights := make([]decimal.Decimal, len(targets))
	total := decimal.Zero
	for _, t := range targets {
		total = total.Add(t.Total())
	}
	if total.IsZero() {
		n := decimal.NewFromInt(int64(len(targets)))
		for i := range weights {
			weights[i] = decimal.NewFromInt(1).Div(n)
		}
		return weights
	}
	for i, t := range targets {
		weights[i] = t.Total().Div(total)
	}
	return weights
}

// =============================================================================
// ALLOCATOR
// =============================================================================

// Allocate spreads the virtual rows' hours across the targets, mutating the
// target rows in place. It returns the full post-allocation working set:
// the targets plus any synthesized leave rows, merged by identity and with
// every cell rounded to the granularity step.
//
// The caller owns snapshotting: pre-allocation hours must be captured
// before calling if they are needed later (the reconciler needs them).
func Allocate(virtual, targets []*Row, window Window, regular EarningCategory, step decimal.Decimal) ([]*Row, error) {
	if len(virtual) > 0 && len(targets) == 0 {
		return nil, ErrNoTargets
	}

	working := make([]*Row, len(targets))
	copy(working, targets)
	index := make(map[RowID]*Row, len(working))
	for _, r := range working {
		index[r.ID] = r
	}

	for _, v := range virtual {
		weights := weightsFor(targets)

		for i, target := range targets {
			receiver := target
			if v.ID.Earning != regular {
				// Leave hours land on the target project's row in the
				// virtual row's category, synthesized on first use.
				counterpart := target.ID.WithEarning(v.ID.Earning)
				r, ok := index[counterpart]
				if !ok {
					r = NewRow(counterpart)
					r.zeroFill(window)
					index[counterpart] = r
					working = append(working, r)
				}
				receiver = r
			}

			for d := window.Start; d.BeforeOrEqual(window.End); d = d.AddDays(1) {
				h := v.On(d)
				if h.IsZero() {
					continue
				}
				receiver.Add(d, h.Mul(weights[i]))
			}
		}
	}

	working = MergeRows(working)
	for _, r := range working {
		for d, h := range r.Hours {
			r.Hours[d] = roundTo(h, step)
		}
	}
	return working, nil
}
