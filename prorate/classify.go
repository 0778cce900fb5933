/*
classify.go - Three-way partition of ledger rows

PURPOSE:
  Splits the ledger into the three disjoint groups the pipeline operates
  on. Virtual rows give hours away, real rows may receive them, excepted
  rows pass through untouched.

CLASSIFICATION RULES (in precedence order):
  1. Excepted: the row's identity matches the reserved-identifier
     predicate (by default, the sentinel project ID). Excepted rows need
     no prorate-flag entry.
  2. Virtual:  prorate flag is true for the row's code.
  3. Real:     prorate flag is false for the row's code.

  A non-excepted code with no prorate-flag entry is a configuration
  error: the whole run aborts.
*/
package prorate

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Class is the derived, immutable per-code tag.
type Class string

const (
	ClassVirtual  Class = "virtual"
	ClassReal     Class = "real"
	ClassExcepted Class = "excepted"
)

// ReservedProjectID is the sentinel project identifier marking excepted
// rows in the codes database.
const ReservedProjectID = "XXXXXX"

// ExceptedFunc decides whether a row is excepted from redistribution.
type ExceptedFunc func(RowID) bool

// ExceptedByProjectID returns the standard reserved-identifier predicate.
func ExceptedByProjectID(projectID string) ExceptedFunc {
	return func(id RowID) bool { return id.ProjectID == projectID }
}

// Partition is the classifier's output: three disjoint row sets whose
// union is the input set. Row order within each set follows input order.
type Partition struct {
	Virtual  []*Row
	Real     []*Row
	Excepted []*Row
}

// Rows re-merges the partition in virtual, real, excepted order.
func (p Partition) Rows() []*Row {
	out := make([]*Row, 0, len(p.Virtual)+len(p.Real)+len(p.Excepted))
	out = append(out, p.Virtual...)
	out = append(out, p.Real...)
	out = append(out, p.Excepted...)
	return out
}

// Classify partitions rows using the per-code prorate flags and the
// excepted predicate. Returns UnclassifiedCodeError when any non-excepted
// code lacks a prorate entry; classification must be total.
func Classify(rows []*Row, prorateFlags map[Code]bool, excepted ExceptedFunc) (Partition, error) {
	var p Partition
	var missing []Code
	seen := make(map[Code]bool)

	for _, r := range rows {
		if excepted != nil && excepted(r.ID) {
			p.Excepted = append(p.Excepted, r)
			continue
		}
		virtual, ok := prorateFlags[r.ID.Code]
		if !ok {
			if !seen[r.ID.Code] {
				seen[r.ID.Code] = true
				missing = append(missing, r.ID.Code)
			}
			continue
		}
		if virtual {
			p.Virtual = append(p.Virtual, r)
		} else {
			p.Real = append(p.Real, r)
		}
	}

	if len(missing) > 0 {
		return Partition{}, &UnclassifiedCodeError{Codes: missing}
	}
	return p, nil
}
