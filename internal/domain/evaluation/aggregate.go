package evaluation

// CombineWithApproval merges a completion status with an approval workflow
// status. Precedence:
//  1. revision_requested, revision_completed and approved from the workflow win.
//  2. none and in_progress from the evaluation win next; nothing can be
//     approved before it is submitted.
//  3. Otherwise the workflow status is used, pending when absent.
func CombineWithApproval(evalStatus, approvalStatus Status) Status {
	switch approvalStatus {
	case StatusRevisionRequested, StatusRevisionCompleted, StatusApproved:
		return approvalStatus
	}
	switch evalStatus {
	case StatusNone, StatusInProgress:
		return evalStatus
	}
	if approvalStatus == "" {
		return StatusPending
	}
	return approvalStatus
}

// CombineSecondaryStatuses folds the statuses of every secondary evaluator into
// one. When evaluators disagree the least finished state is reported, and a
// revision raised by any single evaluator is never dropped. Precedence:
//  1. no statuses, or all none: none
//  2. any revision_completed: revision_completed
//  3. any revision_requested: revision_requested
//  4. any pending: pending
//  5. some progress next to missing or ongoing work: in_progress
//  6. all approved: approved
//  7. anything else: in_progress
func CombineSecondaryStatuses(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusNone
	}

	var (
		allNone       = true
		allApproved   = true
		anyRevDone    bool
		anyRevAsked   bool
		anyPending    bool
		anyStarted    bool
		anyUnfinished bool
	)
	for _, s := range statuses {
		if s != StatusNone {
			allNone = false
		}
		if s != StatusApproved {
			allApproved = false
		}
		switch s {
		case StatusRevisionCompleted:
			anyRevDone = true
		case StatusRevisionRequested:
			anyRevAsked = true
		case StatusPending:
			anyPending = true
		}
		if s == StatusInProgress || s == StatusComplete {
			anyStarted = true
		}
		if s == StatusNone || s == StatusInProgress {
			anyUnfinished = true
		}
	}

	switch {
	case allNone:
		return StatusNone
	case anyRevDone:
		return StatusRevisionCompleted
	case anyRevAsked:
		return StatusRevisionRequested
	case anyPending:
		return StatusPending
	case anyStarted && anyUnfinished:
		return StatusInProgress
	case allApproved:
		return StatusApproved
	default:
		return StatusInProgress
	}
}
