package prorate

// =============================================================================
// TARGET SELECTION
// =============================================================================

// SelectTargets splits the real rows into redistribution targets and
// retained rows using the externally supplied per-code selection.
//
// The default is inclusive: a code absent from the selection participates
// as a target, so omitting a decision never silently drops a project from
// receiving hours. Retained rows keep their original hours throughout
// allocation and reconciliation and are merged back only afterwards.
func SelectTargets(real []*Row, selection map[Code]bool) (targets, retained []*Row) {
	for _, r := range real {
		include, ok := selection[r.ID.Code]
		if !ok {
			include = true
		}
		if include {
			targets = append(targets, r)
		} else {
			retained = append(retained, r)
		}
	}
	return targets, retained
}
