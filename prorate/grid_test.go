package prorate_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidewater/timesheet-engine/prorate"
)

// =============================================================================
// TEST HELPERS (shared across the package's tests)
// =============================================================================

func h(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func march(day int) prorate.Date { return prorate.NewDate(2025, time.March, day) }

func marchWeek() prorate.Window {
	return prorate.Window{Start: march(3), End: march(7)}
}

func rowID(code, earning string) prorate.RowID {
	return prorate.RowID{
		Code:       prorate.Code(code),
		ProjectID:  "P-" + code,
		ActivityID: "100",
		AwardID:    "A-" + code,
		Earning:    prorate.EarningCategory(earning),
	}
}

func newRow(code, earning string, hours map[int]float64) *prorate.Row {
	r := prorate.NewRow(rowID(code, earning))
	for day, v := range hours {
		r.Set(march(day), h(v))
	}
	return r
}

func assertHours(t *testing.T, r *prorate.Row, day int, want float64) {
	t.Helper()
	got := r.On(march(day))
	assert.True(t, got.Equal(h(want)), "row %v on %s: want %v, got %s", r.ID, march(day), want, got)
}

// =============================================================================
// DATE & WINDOW
// =============================================================================

func TestWindow_Days_Inclusive(t *testing.T) {
	days := marchWeek().Days()
	require.Len(t, days, 5)
	assert.Equal(t, "2025-03-03", days[0].String())
	assert.Equal(t, "2025-03-07", days[4].String())
}

func TestDate_Roundtrip(t *testing.T) {
	d, err := prorate.ParseDate("2025-03-05")
	require.NoError(t, err)
	assert.True(t, d.Equal(march(5)))
	assert.Equal(t, "2025-03-05", d.String())

	_, err = prorate.ParseDate("03/05/2025")
	assert.Error(t, err)
}

func TestDate_UsableAsMapKey(t *testing.T) {
	// Dates constructed via different paths must collide as map keys.
	m := map[prorate.Date]int{march(3): 1}
	parsed, err := prorate.ParseDate("2025-03-03")
	require.NoError(t, err)
	added := march(1).AddDays(2)
	assert.Equal(t, 1, m[parsed])
	assert.Equal(t, 1, m[added])
}

// =============================================================================
// GRID
// =============================================================================

func TestNewGrid_ZeroFillsEveryRow(t *testing.T) {
	r := newRow("ALPHA", "REGULAR", map[int]float64{4: 8})
	g := prorate.NewGrid(marchWeek(), []*prorate.Row{r})

	for _, d := range g.Window.Days() {
		_, ok := r.Hours[d]
		assert.True(t, ok, "missing date key %s after zero-fill", d)
	}
	assertHours(t, r, 3, 0)
	assertHours(t, r, 4, 8)
}

func TestMergeRows_SumsDuplicateIdentities(t *testing.T) {
	a := newRow("ALPHA", "VACATION", map[int]float64{3: 2})
	b := newRow("ALPHA", "VACATION", map[int]float64{3: 1.5, 4: 1})
	c := newRow("BETA", "VACATION", map[int]float64{3: 4})

	merged := prorate.MergeRows([]*prorate.Row{a, b, c})
	require.Len(t, merged, 2)
	assertHours(t, merged[0], 3, 3.5)
	assertHours(t, merged[0], 4, 1)
	assertHours(t, merged[1], 3, 4)
}

func TestCellTotals_GroupsByEarningAndDate(t *testing.T) {
	rows := []*prorate.Row{
		newRow("ALPHA", "REGULAR", map[int]float64{3: 8}),
		newRow("BETA", "REGULAR", map[int]float64{3: 2, 4: 6}),
		newRow("GAMMA", "SICK", map[int]float64{3: 8}),
	}
	totals := prorate.CellTotals(rows, marchWeek())

	assert.True(t, totals[prorate.Cell{Earning: "REGULAR", Date: march(3)}].Equal(h(10)))
	assert.True(t, totals[prorate.Cell{Earning: "REGULAR", Date: march(4)}].Equal(h(6)))
	assert.True(t, totals[prorate.Cell{Earning: "SICK", Date: march(3)}].Equal(h(8)))
	// Zero cells are not materialized.
	_, ok := totals[prorate.Cell{Earning: "SICK", Date: march(4)}]
	assert.False(t, ok)
}
