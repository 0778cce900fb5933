/*
errors.go - Error taxonomy for the redistribution engine

PURPOSE:
  All error types in one place. The engine distinguishes three severities:

  1. Configuration errors (fatal, not retried): the input tables are
     inconsistent with the ledger - an unclassified code, or no target
     rows to redistribute onto. The whole run aborts; the caller decides
     whether to fall back to the raw, non-redistributed ledger.

  2. Data-quality warnings (non-fatal): a rounding residual at some
     (earning, date) cell could not be fully absorbed by any candidate
     row. Warnings accumulate on the Result and are reported once per run.

  3. Invariant violations: cannot occur on well-formed input and are
     treated as defects, not user errors.

USAGE:
  if errors.Is(err, prorate.ErrUnclassifiedCode) { ... }
*/
package prorate

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnclassifiedCode is returned when a code present in the ledger has
	// no entry in the prorate-flag table. Classification must be a total
	// function over the ledger's codes.
	ErrUnclassifiedCode = errors.New("code has no classification entry")

	// ErrNoTargets is returned when virtual hours exist but no real row was
	// selected to receive them.
	ErrNoTargets = errors.New("no target rows selected for redistribution")

	// ErrEmptyWindow is returned when the grid's reporting window is not a
	// valid inclusive range.
	ErrEmptyWindow = errors.New("invalid reporting window: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnclassifiedCodeError reports which codes lacked prorate-flag entries.
type UnclassifiedCodeError struct {
	Codes []Code
}

func (e *UnclassifiedCodeError) Error() string {
	return fmt.Sprintf("%d code(s) missing from the classification table: %v", len(e.Codes), e.Codes)
}

func (e *UnclassifiedCodeError) Unwrap() error {
	return ErrUnclassifiedCode
}

// =============================================================================
// WARNINGS - Non-fatal data-quality signals
// =============================================================================

// Warning records a rounding residual that could not be repaired at one
// (earning, date) cell: every candidate row's prorate-received hours were
// exhausted and a discrepancy remains in the output ledger.
type Warning struct {
	Earning  EarningCategory
	Date     Date
	Residual decimal.Decimal
}

func (w Warning) String() string {
	return fmt.Sprintf("unresolved rounding residual of %sh for %s on %s",
		w.Residual.String(), w.Earning, w.Date)
}
