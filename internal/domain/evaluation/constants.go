package evaluation

type EvaluationType string

const (
	TypeSelf      EvaluationType = "self"
	TypePrimary   EvaluationType = "primary"
	TypeSecondary EvaluationType = "secondary"
)

// Status covers both completion states and approval workflow states so that
// the two can be combined into one dashboard value.
type Status string

const (
	StatusNone       Status = "none"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"

	// StatusInvalidData marks a section whose records or weights could not be
	// scored.
	StatusInvalidData Status = "invalid_data"

	StatusPending           Status = "pending"
	StatusApproved          Status = "approved"
	StatusRevisionRequested Status = "revision_requested"
	StatusRevisionCompleted Status = "revision_completed"
)

const (
	UnknownEvaluatorName = "unknown"
	NotAvailable         = "N/A"
)

const maxScalePercent = 100.0
