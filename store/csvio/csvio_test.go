package csvio_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidewater/timesheet-engine/prorate"
	"github.com/tidewater/timesheet-engine/store/csvio"
)

const sampleLedger = `Code,Project ID,Activity ID,Award ID,Earning,2025-03-03,2025-03-04,2025-03-05
WF-2301,P23010,100,AW-7,REGULAR,8,6.5,0
OVERHEAD,P00001,100,AW-0,REGULAR,0,1.5,8
HOLD,XXXXXX,0,0,VACATION,0,0,1.25
`

func TestReadLedger(t *testing.T) {
	grid, err := csvio.ReadLedger(strings.NewReader(sampleLedger))
	require.NoError(t, err)

	assert.Equal(t, "2025-03-03", grid.Window.Start.String())
	assert.Equal(t, "2025-03-05", grid.Window.End.String())
	require.Len(t, grid.Rows, 3)

	wf := grid.Rows[0]
	assert.Equal(t, prorate.Code("WF-2301"), wf.ID.Code)
	assert.Equal(t, "P23010", wf.ID.ProjectID)
	assert.Equal(t, prorate.EarningCategory("REGULAR"), wf.ID.Earning)
	assert.True(t, wf.On(prorate.NewDate(2025, time.March, 4)).Equal(decimal.NewFromFloat(6.5)))

	hold := grid.Rows[2]
	assert.Equal(t, prorate.ReservedProjectID, hold.ID.ProjectID)
	assert.True(t, hold.On(prorate.NewDate(2025, time.March, 5)).Equal(decimal.NewFromFloat(1.25)))
}

func TestReadLedger_RejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"no date columns":  "Code,Project ID,Activity ID,Award ID,Earning\n",
		"bad date header":  "Code,Project ID,Activity ID,Award ID,Earning,03/04/2025\nA,B,C,D,REGULAR,1\n",
		"negative hours":   "Code,Project ID,Activity ID,Award ID,Earning,2025-03-03\nA,B,C,D,REGULAR,-1\n",
		"non-decimal cell": "Code,Project ID,Activity ID,Award ID,Earning,2025-03-03\nA,B,C,D,REGULAR,eight\n",
		"wrong identity":   "Kode,Project ID,Activity ID,Award ID,Earning,2025-03-03\nA,B,C,D,REGULAR,1\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := csvio.ReadLedger(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestWriteLedger_EmitsTheSameSchema(t *testing.T) {
	grid, err := csvio.ReadLedger(strings.NewReader(sampleLedger))
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, csvio.WriteLedger(&out, grid))

	reread, err := csvio.ReadLedger(strings.NewReader(out.String()))
	require.NoError(t, err)
	require.Len(t, reread.Rows, 3)
	for i, r := range reread.Rows {
		assert.Equal(t, grid.Rows[i].ID, r.ID)
		for _, d := range grid.Window.Days() {
			assert.True(t, r.On(d).Equal(grid.Rows[i].On(d)))
		}
	}
}

const sampleBook = `Code,Project ID,Activity ID,Award ID,Description,ProRate,Include
WF-2301,P23010,100,AW-7,Basin restoration,0,1
OVERHEAD,P00001,100,AW-0,Facility overhead,1,1
STANDBY,P00002,100,AW-0,Bench time,0,0
`

func TestReadCodeBook(t *testing.T) {
	book, err := csvio.ReadCodeBook(strings.NewReader(sampleBook))
	require.NoError(t, err)

	entry, ok := book.Lookup("OVERHEAD")
	require.True(t, ok)
	assert.True(t, entry.ProRate)
	assert.Equal(t, "Facility overhead", entry.Description)

	flags := book.ProrateFlags()
	assert.False(t, flags["STANDBY"])
	sel := book.Selection()
	assert.False(t, sel["STANDBY"])
	assert.True(t, sel["WF-2301"])
}

func TestReadCodeBook_RejectsBadFlags(t *testing.T) {
	bad := "Code,Project ID,Activity ID,Award ID,Description,ProRate,Include\nA,B,C,D,x,yes,1\n"
	_, err := csvio.ReadCodeBook(strings.NewReader(bad))
	assert.Error(t, err)
}
