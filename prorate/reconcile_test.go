package prorate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidewater/timesheet-engine/prorate"
)

func cell(earning string, day int) prorate.Cell {
	return prorate.Cell{Earning: prorate.EarningCategory(earning), Date: march(day)}
}

func reconcile(rows []*prorate.Row, original map[prorate.Cell]decimal.Decimal, snapshot prorate.Snapshot) (int, []prorate.Warning) {
	return prorate.Reconcile(rows, original, snapshot, marchWeek(),
		prorate.QuarterHour, prorate.Tolerance)
}

func TestReconcile_NoDriftTouchesNothing(t *testing.T) {
	a := newRow("ALPHA", "REGULAR", map[int]float64{3: 6})
	b := newRow("BETA", "REGULAR", map[int]float64{3: 2})
	rows := []*prorate.Row{a, b}
	snapshot := prorate.TakeSnapshot(rows)
	original := map[prorate.Cell]decimal.Decimal{cell("REGULAR", 3): h(8)}

	repaired, warnings := reconcile(rows, original, snapshot)

	assert.Zero(t, repaired)
	assert.Empty(t, warnings)
	assertHours(t, a, 3, 6)
	assertHours(t, b, 3, 2)
}

func TestReconcile_ShortfallGoesToLargestRowWhole(t *testing.T) {
	// Current total 7.75 vs original 8: the full 0.25 lands on the row
	// with the largest current hours, never split.
	a := newRow("ALPHA", "REGULAR", map[int]float64{3: 5.75})
	b := newRow("BETA", "REGULAR", map[int]float64{3: 2})
	rows := []*prorate.Row{a, b}
	snapshot := prorate.Snapshot{} // both fully received from prorate
	original := map[prorate.Cell]decimal.Decimal{cell("REGULAR", 3): h(8)}

	repaired, warnings := reconcile(rows, original, snapshot)

	assert.Equal(t, 1, repaired)
	assert.Empty(t, warnings)
	assertHours(t, a, 3, 6)
	assertHours(t, b, 3, 2)
}

func TestReconcile_ExcessReclaimedFromLargestReceiverFirst(t *testing.T) {
	// Rounding drift: two rows received 0.665h each, both rounded up to
	// 0.75h, so the cell holds 1.5h against an original 1.25h. The row
	// that received more from prorate gives back first.
	a := newRow("ALPHA", "VACATION", map[int]float64{5: 0.75})
	b := newRow("BETA", "VACATION", map[int]float64{5: 0.75})
	rows := []*prorate.Row{a, b}
	snapshot := prorate.Snapshot{} // zero baseline: everything was received
	original := map[prorate.Cell]decimal.Decimal{cell("VACATION", 5): h(1.25)}

	repaired, warnings := reconcile(rows, original, snapshot)

	assert.Equal(t, 1, repaired)
	assert.Empty(t, warnings)
	// Equal received amounts tie-break on identity order: ALPHA pays.
	assertHours(t, a, 5, 0.5)
	assertHours(t, b, 5, 0.75)
}

func TestReconcile_ExcessCarriesAcrossDonors(t *testing.T) {
	// A received 0.25 (baseline 0.75), B received 0.5 (baseline 0).
	// Shortfall of 0.75 drains B fully, then takes the rest from A.
	a := newRow("ALPHA", "REGULAR", map[int]float64{3: 1})
	b := newRow("BETA", "REGULAR", map[int]float64{3: 0.5})
	rows := []*prorate.Row{a, b}

	baseline := newRow("ALPHA", "REGULAR", map[int]float64{3: 0.75})
	snapshot := prorate.TakeSnapshot([]*prorate.Row{baseline})
	original := map[prorate.Cell]decimal.Decimal{cell("REGULAR", 3): h(0.75)}

	repaired, warnings := reconcile(rows, original, snapshot)

	assert.Equal(t, 1, repaired)
	assert.Empty(t, warnings)
	assertHours(t, b, 3, 0)
	assertHours(t, a, 3, 0.75)
}

func TestReconcile_NeverDropsBelowBaseline(t *testing.T) {
	// The row owned 6h before allocation and received 0.5h; even a large
	// excess can only reclaim the 0.5h it received.
	a := newRow("ALPHA", "REGULAR", map[int]float64{3: 6.5})
	rows := []*prorate.Row{a}

	baseline := newRow("ALPHA", "REGULAR", map[int]float64{3: 6})
	snapshot := prorate.TakeSnapshot([]*prorate.Row{baseline})
	original := map[prorate.Cell]decimal.Decimal{cell("REGULAR", 3): h(5)}

	repaired, warnings := reconcile(rows, original, snapshot)

	assert.Equal(t, 1, repaired)
	assertHours(t, a, 3, 6)
	// The 1h that nobody can give back is a warning, not an error.
	require.Len(t, warnings, 1)
	assert.Equal(t, prorate.EarningCategory("REGULAR"), warnings[0].Earning)
	assert.True(t, warnings[0].Date.Equal(march(3)))
	assert.True(t, warnings[0].Residual.Equal(h(1)), "residual %s", warnings[0].Residual)
}

func TestReconcile_RowsWithNothingReceivedAreSkipped(t *testing.T) {
	// B received nothing (current equals baseline); only A can donate.
	a := newRow("ALPHA", "REGULAR", map[int]float64{3: 2.25})
	b := newRow("BETA", "REGULAR", map[int]float64{3: 4})
	rows := []*prorate.Row{a, b}

	baselineA := newRow("ALPHA", "REGULAR", map[int]float64{3: 2})
	baselineB := newRow("BETA", "REGULAR", map[int]float64{3: 4})
	snapshot := prorate.TakeSnapshot([]*prorate.Row{baselineA, baselineB})
	original := map[prorate.Cell]decimal.Decimal{cell("REGULAR", 3): h(6)}

	repaired, warnings := reconcile(rows, original, snapshot)

	assert.Equal(t, 1, repaired)
	assert.Empty(t, warnings)
	assertHours(t, a, 3, 2)
	assertHours(t, b, 3, 4)
}

func TestReconcile_RepairIsLocalToTheCell(t *testing.T) {
	// Drift on March 3 must not disturb March 4, nor the SICK category.
	a := newRow("ALPHA", "REGULAR", map[int]float64{3: 4.25, 4: 8})
	s := newRow("ALPHA", "SICK", map[int]float64{3: 2})
	rows := []*prorate.Row{a, s}
	snapshot := prorate.Snapshot{}
	original := map[prorate.Cell]decimal.Decimal{
		cell("REGULAR", 3): h(4),
		cell("REGULAR", 4): h(8),
		cell("SICK", 3):    h(2),
	}

	repaired, warnings := reconcile(rows, original, snapshot)

	assert.Equal(t, 1, repaired)
	assert.Empty(t, warnings)
	assertHours(t, a, 3, 4)
	assertHours(t, a, 4, 8)
	assertHours(t, s, 3, 2)
}

func TestReconcile_Deterministic(t *testing.T) {
	build := func() []*prorate.Row {
		return []*prorate.Row{
			newRow("ALPHA", "REGULAR", map[int]float64{3: 0.75, 4: 1.5}),
			newRow("BETA", "REGULAR", map[int]float64{3: 0.75, 4: 1.5}),
			newRow("GAMMA", "REGULAR", map[int]float64{3: 0.75, 4: 1.5}),
		}
	}
	original := map[prorate.Cell]decimal.Decimal{
		cell("REGULAR", 3): h(2),
		cell("REGULAR", 4): h(4.25),
	}

	first := build()
	reconcile(first, original, prorate.Snapshot{})
	second := build()
	reconcile(second, original, prorate.Snapshot{})

	for i := range first {
		for _, d := range marchWeek().Days() {
			assert.True(t, first[i].On(d).Equal(second[i].On(d)),
				"run divergence at row %d date %s", i, d)
		}
	}
}
