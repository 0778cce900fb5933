/*
Package prorate implements the timesheet redistribution engine.

PURPOSE:
  Labor hours are often recorded against "virtual" project codes —
  administrative placeholders that the payroll system will not accept.
  Before submission those hours must be reallocated onto real, billable
  project codes while exactly preserving the total hours recorded per
  earning category per calendar day.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date/Window: day-granularity time points and the reporting window
  - RowID: the five-part identity of a ledger row
  - Row: a sparse time series of hours, zero-filled over the window
  - Cell: an (EarningCategory, Date) coordinate in the conservation grid

DESIGN PRINCIPLES:
  1. Precision: all hour quantities use decimal.Decimal, never float64
  2. Staged pipeline: classify -> select -> allocate -> reconcile; no row
     is touched by more than one stage at a time
  3. Determinism: every sort and iteration order is fixed, so identical
     inputs always produce identical output ledgers

PIPELINE:
  Grid -> Classify -> SelectTargets -> Allocate -> Reconcile -> Grid

SEE ALSO:
  - classify.go:  virtual / real / excepted partition
  - allocate.go:  proportional spreading of virtual hours
  - reconcile.go: per-cell repair of rounding drift
  - pipeline.go:  the Engine tying the stages together
*/
package prorate

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Code is the timesheet system's per-row project code (the ledger key).
type Code string

// EarningCategory is the leave/labor classification governing which rows'
// totals must balance against each other (e.g. REGULAR, VACATION, SICK).
type EarningCategory string

// RowID is the full identity of a ledger row. Two rows with equal RowIDs
// describe the same booking line and are merged by summing date columns.
type RowID struct {
	Code       Code
	ProjectID  string
	ActivityID string
	AwardID    string
	Earning    EarningCategory
}

// WithEarning returns the identity of this row's counterpart in another
// earning category. Used when synthesizing leave rows for a target project.
func (id RowID) WithEarning(e EarningCategory) RowID {
	id.Earning = e
	return id
}

// Less provides the canonical ordering used for deterministic tie-breaks.
func (id RowID) Less(other RowID) bool {
	if id.Code != other.Code {
		return id.Code < other.Code
	}
	if id.ProjectID != other.ProjectID {
		return id.ProjectID < other.ProjectID
	}
	if id.ActivityID != other.ActivityID {
		return id.ActivityID < other.ActivityID
	}
	if id.AwardID != other.AwardID {
		return id.AwardID < other.AwardID
	}
	return id.Earning < other.Earning
}

// =============================================================================
// DATE - Day-granularity time point
// =============================================================================

// Date is a calendar day in UTC. It is comparable and safe to use as a map
// key as long as it is built through NewDate/ParseDate/AddDays.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO "2006-01-02" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AddDays(n int) Date {
	t := d.t.AddDate(0, 0, n)
	return NewDate(t.Year(), t.Month(), t.Day())
}
func (d Date) Time() time.Time { return d.t }
func (d Date) IsZero() bool    { return d.t.IsZero() }
func (d Date) String() string  { return d.t.Format("2006-01-02") }

// =============================================================================
// WINDOW - The reporting window (inclusive on both ends)
// =============================================================================

type Window struct {
	Start Date
	End   Date
}

func (w Window) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days enumerates every calendar day in the window, in order.
func (w Window) Days() []Date {
	var days []Date
	for d := w.Start; d.BeforeOrEqual(w.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + "]"
}

// =============================================================================
// CELL - Coordinate in the conservation grid
// =============================================================================

// Cell identifies one (EarningCategory, Date) pair. Conservation is checked
// and repaired cell by cell: the sum of hours in a cell before allocation
// must equal the sum after reconciliation.
type Cell struct {
	Earning EarningCategory
	Date    Date
}

// =============================================================================
// ROW - One booking line with a per-day hour series
// =============================================================================

type Row struct {
	ID    RowID
	Hours map[Date]decimal.Decimal
}

func NewRow(id RowID) *Row {
	return &Row{ID: id, Hours: make(map[Date]decimal.Decimal)}
}

// On returns the hours recorded on a date (zero when absent).
func (r *Row) On(d Date) decimal.Decimal {
	return r.Hours[d]
}

func (r *Row) Set(d Date, hours decimal.Decimal) {
	r.Hours[d] = hours
}

// Add accumulates hours onto a date with exact decimal arithmetic.
func (r *Row) Add(d Date, hours decimal.Decimal) {
	r.Hours[d] = r.Hours[d].Add(hours)
}

// Total sums the row's hours across its full date range.
func (r *Row) Total() decimal.Decimal {
	total := decimal.Zero
	for _, h := range r.Hours {
		total = total.Add(h)
	}
	return total
}

func (r *Row) Clone() *Row {
	c := NewRow(r.ID)
	for d, h := range r.Hours {
		c.Hours[d] = h
	}
	return c
}

// zeroFill ensures the row carries an explicit entry for every day in the
// window, so all rows in a grid share an identical date-key set.
func (r *Row) zeroFill(w Window) {
	for d := w.Start; d.BeforeOrEqual(w.End); d = d.AddDays(1) {
		if _, ok := r.Hours[d]; !ok {
			r.Hours[d] = decimal.Zero
		}
	}
}

// =============================================================================
// ROUNDING - The 1/4-hour granularity helper
// =============================================================================

// QuarterHour is the default granularity both payroll systems accept.
var QuarterHour = decimal.RequireFromString("0.25")

// roundTo rounds hours to the nearest multiple of the granularity step,
// half away from zero: round(x/step)*step.
func roundTo(hours, step decimal.Decimal) decimal.Decimal {
	return hours.Div(step).Round(0).Mul(step)
}
