/*
pipeline.go - The redistribution engine

PURPOSE:
  Ties the stages into a single pure, total function from
  (ledger, classification, selection) to a new ledger:

    Grid -> Classify -> SelectTargets -> Allocate -> Reconcile -> Grid

  The engine is stateless between calls. Everything a run needs - the
  pre-allocation snapshot, the accumulated warnings - lives on a
  per-invocation run object, never on the engine itself.

GUARANTEES (on well-formed input):
  - Conservation: per (earning, date), the total over virtual + selected
    target rows before allocation equals the total over target rows after
    reconciliation, within the tolerance.
  - Non-interference: retained and excepted rows come back bit-identical.
  - Monotonic floor: no target row drops below its pre-allocation hours.
  - Granularity: every emitted hour value is a multiple of the step.
  - Input grid is never mutated.
*/
package prorate

import "github.com/shopspring/decimal"

// =============================================================================
// OPTIONS
// =============================================================================

// DefaultRegularCategory is the baseline earning category whose virtual
// hours are added onto the target rows themselves.
const DefaultRegularCategory EarningCategory = "REGULAR"

type Options struct {
	// Regular is the default/baseline earning category.
	// Defaults to DefaultRegularCategory.
	Regular EarningCategory

	// Granularity is the rounding step for emitted hours.
	// Defaults to QuarterHour.
	Granularity decimal.Decimal

	// Tolerance is the conservation tolerance. Defaults to Tolerance.
	Tolerance decimal.Decimal

	// ReservedProjectID marks excepted rows. Defaults to ReservedProjectID.
	// Excepted overrides the whole predicate when set.
	ReservedProjectID string

	// Excepted, when non-nil, replaces the reserved-project-ID predicate.
	Excepted ExceptedFunc
}

func (o Options) withDefaults() Options {
	if o.Regular == "" {
		o.Regular = DefaultRegularCategory
	}
	if o.Granularity.IsZero() {
		o.Granularity = QuarterHour
	}
	if o.Tolerance.IsZero() {
		o.Tolerance = Tolerance
	}
	if o.ReservedProjectID == "" {
		o.ReservedProjectID = ReservedProjectID
	}
	if o.Excepted == nil {
		o.Excepted = ExceptedByProjectID(o.ReservedProjectID)
	}
	return o
}

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Input is everything a run consumes. The grid is read-only to the engine;
// the tables are the two external decisions (what is virtual, who receives).
type Input struct {
	Grid *Grid

	// ProrateFlags maps every non-excepted code to its class:
	// true = virtual, false = real. Missing entries are fatal.
	ProrateFlags map[Code]bool

	// Selection maps codes to "participate as redistribution target".
	// Missing entries default to true. Nil selects every real row.
	Selection map[Code]bool
}

// Summary describes what a run did, for the end-of-run report.
type Summary struct {
	VirtualRows     int
	TargetRows      int
	RetainedRows    int
	ExceptedRows    int
	SynthesizedRows int
	CellsRepaired   int
}

type Result struct {
	Grid     *Grid
	Warnings []Warning
	Summary  Summary
}

// Run redistributes the virtual rows' hours onto the selected targets and
// reconciles rounding drift. The input grid is left untouched; the result
// grid carries the reconciled targets (and synthesized rows) followed by
// the retained and excepted rows, unmodified.
func (e *Engine) Run(in Input) (*Result, error) {
	if in.Grid.Window.End.Before(in.Grid.Window.Start) {
		return nil, ErrEmptyWindow
	}

	// Stage boundaries never alias: every stage works on its own copies.
	grid := in.Grid.Clone()
	for _, r := range grid.Rows {
		r.zeroFill(grid.Window)
	}

	part, err := Classify(grid.Rows, in.ProrateFlags, e.opts.Excepted)
	if err != nil {
		return nil, err
	}
	targets, retained := SelectTargets(part.Real, in.Selection)
	if len(part.Virtual) > 0 && len(targets) == 0 {
		return nil, ErrNoTargets
	}

	// Per-invocation run state: the conserved totals and the baseline the
	// reconciler measures "received from prorate" against.
	conserved := CellTotals(append(append([]*Row{}, part.Virtual...), targets...), grid.Window)
	snapshot := TakeSnapshot(targets)

	working, err := Allocate(part.Virtual, targets, grid.Window, e.opts.Regular, e.opts.Granularity)
	if err != nil {
		return nil, err
	}
	repaired, warnings := Reconcile(working, conserved, snapshot, grid.Window, e.opts.Granularity, e.opts.Tolerance)

	out := make([]*Row, 0, len(working)+len(retained)+len(part.Excepted))
	out = append(out, working...)
	out = append(out, retained...)
	out = append(out, part.Excepted...)

	return &Result{
		Grid:     &Grid{Window: grid.Window, Rows: out},
		Warnings: warnings,
		Summary: Summary{
			VirtualRows:     len(part.Virtual),
			TargetRows:      len(targets),
			RetainedRows:    len(retained),
			ExceptedRows:    len(part.Excepted),
			SynthesizedRows: len(working) - len(targets),
			CellsRepaired:   repaired,
		},
	}, nil
}
