package evaluation

// CompletionCounts are the counts for one evaluator and one evaluation type.
// Assigned is the number of WBS items to evaluate, Records the number of
// evaluation rows that exist and Completed the rows marked complete.
type CompletionCounts struct {
	Assigned  int
	Records   int
	Completed int
}

// ResolveStatus maps counts to none, in_progress or complete.
func ResolveStatus(c CompletionCounts) Status {
	switch {
	case c.Assigned <= 0:
		return StatusNone
	case c.Records <= 0:
		return StatusNone
	case c.Completed >= c.Assigned:
		return StatusComplete
	case c.Completed >= 0:
		return StatusInProgress
	default:
		return StatusNone
	}
}

// IsSubmitted reports whether every assigned item has been completed. It is
// computed from the counts directly, not from ResolveStatus.
func IsSubmitted(c CompletionCounts) bool {
	return c.Assigned > 0 && c.Completed >= c.Assigned && c.Completed > 0
}

func (s EvaluatorStat) Counts() CompletionCounts {
	return CompletionCounts{Assigned: s.AssignedCount, Records: s.RecordCount, Completed: s.CompletedCount}
}

func (s EvaluatorStat) Complete() bool {
	return s.AssignedCount > 0 && s.CompletedCount >= s.AssignedCount
}
