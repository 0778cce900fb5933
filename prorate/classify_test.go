package prorate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidewater/timesheet-engine/prorate"
)

func exceptedSentinel() prorate.ExceptedFunc {
	return prorate.ExceptedByProjectID(prorate.ReservedProjectID)
}

func TestClassify_ThreeWayPartition(t *testing.T) {
	overhead := newRow("OVERHEAD", "REGULAR", map[int]float64{3: 8})
	alpha := newRow("ALPHA", "REGULAR", map[int]float64{3: 4})
	reserved := newRow("HOLD", "REGULAR", map[int]float64{3: 1})
	reserved.ID.ProjectID = prorate.ReservedProjectID

	rows := []*prorate.Row{overhead, alpha, reserved}
	flags := map[prorate.Code]bool{"OVERHEAD": true, "ALPHA": false}

	part, err := prorate.Classify(rows, flags, exceptedSentinel())
	require.NoError(t, err)

	require.Len(t, part.Virtual, 1)
	require.Len(t, part.Real, 1)
	require.Len(t, part.Excepted, 1)
	assert.Same(t, overhead, part.Virtual[0])
	assert.Same(t, alpha, part.Real[0])
	assert.Same(t, reserved, part.Excepted[0])
}

func TestClassify_ExceptedNeedsNoProrateEntry(t *testing.T) {
	// The reserved identifier wins before the flag lookup, so excepted
	// codes may be absent from the classification table.
	reserved := newRow("HOLD", "REGULAR", map[int]float64{3: 1})
	reserved.ID.ProjectID = prorate.ReservedProjectID

	part, err := prorate.Classify([]*prorate.Row{reserved}, map[prorate.Code]bool{}, exceptedSentinel())
	require.NoError(t, err)
	assert.Len(t, part.Excepted, 1)
}

func TestClassify_UnclassifiedCodeIsFatal(t *testing.T) {
	rows := []*prorate.Row{
		newRow("ALPHA", "REGULAR", map[int]float64{3: 4}),
		newRow("MYSTERY", "REGULAR", map[int]float64{3: 4}),
		newRow("MYSTERY", "SICK", map[int]float64{4: 2}),
	}
	flags := map[prorate.Code]bool{"ALPHA": false}

	_, err := prorate.Classify(rows, flags, exceptedSentinel())
	require.Error(t, err)
	assert.True(t, errors.Is(err, prorate.ErrUnclassifiedCode))

	var unclassified *prorate.UnclassifiedCodeError
	require.True(t, errors.As(err, &unclassified))
	// Each missing code is reported once, however many rows carry it.
	assert.Equal(t, []prorate.Code{"MYSTERY"}, unclassified.Codes)
}

func TestClassify_Idempotent(t *testing.T) {
	// Re-running the classifier on its own re-merged output must yield
	// the same three-way partition.
	rows := []*prorate.Row{
		newRow("OVERHEAD", "REGULAR", map[int]float64{3: 8}),
		newRow("ALPHA", "REGULAR", map[int]float64{3: 4}),
		newRow("BETA", "VACATION", map[int]float64{4: 2}),
	}
	flags := map[prorate.Code]bool{"OVERHEAD": true, "ALPHA": false, "BETA": false}

	first, err := prorate.Classify(rows, flags, exceptedSentinel())
	require.NoError(t, err)
	second, err := prorate.Classify(first.Rows(), flags, exceptedSentinel())
	require.NoError(t, err)

	assert.ElementsMatch(t, first.Virtual, second.Virtual)
	assert.ElementsMatch(t, first.Real, second.Real)
	assert.ElementsMatch(t, first.Excepted, second.Excepted)
}

// =============================================================================
// TARGET SELECTION
// =============================================================================

func TestSelectTargets_DefaultsToInclude(t *testing.T) {
	alpha := newRow("ALPHA", "REGULAR", map[int]float64{3: 4})
	beta := newRow("BETA", "REGULAR", map[int]float64{3: 4})
	gamma := newRow("GAMMA", "REGULAR", map[int]float64{3: 4})

	// ALPHA explicitly out, BETA explicitly in, GAMMA unspecified.
	selection := map[prorate.Code]bool{"ALPHA": false, "BETA": true}
	targets, retained := prorate.SelectTargets([]*prorate.Row{alpha, beta, gamma}, selection)

	require.Len(t, targets, 2)
	require.Len(t, retained, 1)
	assert.Same(t, beta, targets[0])
	assert.Same(t, gamma, targets[1])
	assert.Same(t, alpha, retained[0])
}

func TestSelectTargets_NilSelectionTakesEveryRealRow(t *testing.T) {
	rows := []*prorate.Row{
		newRow("ALPHA", "REGULAR", map[int]float64{3: 4}),
		newRow("BETA", "REGULAR", map[int]float64{3: 4}),
	}
	targets, retained := prorate.SelectTargets(rows, nil)
	assert.Len(t, targets, 2)
	assert.Empty(t, retained)
}
