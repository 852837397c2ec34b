package evaluation

type GradeBand struct {
	Grade    string  `json:"grade" yaml:"grade"`
	MinRange float64 `json:"minRange" yaml:"minRange"`
	MaxRange float64 `json:"maxRange" yaml:"maxRange"`
}

type Period struct {
	ID                    string      `json:"id" yaml:"id"`
	Name                  string      `json:"name" yaml:"name"`
	MaxSelfEvaluationRate float64     `json:"maxSelfEvaluationRate" yaml:"maxSelfEvaluationRate"`
	GradeBands            []GradeBand `json:"gradeBands" yaml:"gradeBands"`
}

type WbsWeight struct {
	WbsItemID string  `json:"wbsItemId" yaml:"wbsItemId"`
	Weight    float64 `json:"weight" yaml:"weight"`
}

// Record is one self or downward evaluation of a single WBS item. Score is
// nil until the evaluator enters one.
type Record struct {
	WbsItemID      string         `json:"wbsItemId" yaml:"wbsItemId"`
	EvaluatorID    string         `json:"evaluatorId,omitempty" yaml:"evaluatorId"`
	EvaluationType EvaluationType `json:"evaluationType" yaml:"evaluationType"`
	Score          *float64       `json:"score" yaml:"score"`
	IsCompleted    bool           `json:"isCompleted" yaml:"isCompleted"`
}

func (r Record) scored() bool {
	return r.IsCompleted && r.Score != nil
}

type SecondaryAssignment struct {
	WbsItemID   string `json:"wbsItemId" yaml:"wbsItemId"`
	EvaluatorID string `json:"evaluatorId" yaml:"evaluatorId"`
}

type EvaluatorInfo struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	EmployeeNumber string `json:"employeeNumber" yaml:"employeeNumber"`
	Email          string `json:"email" yaml:"email"`
	DepartmentName string `json:"departmentName,omitempty" yaml:"departmentName"`
	RankName       string `json:"rankName,omitempty" yaml:"rankName"`
}

// Approvals holds the approval workflow state per evaluation type. An empty
// value means the item has not entered the workflow.
type Approvals struct {
	Self      Status            `json:"self,omitempty" yaml:"self"`
	Primary   Status            `json:"primary,omitempty" yaml:"primary"`
	Secondary map[string]Status `json:"secondary,omitempty" yaml:"secondary"`
}

// SummaryInput is a consistent snapshot of everything needed to summarize one
// employee for one period.
type SummaryInput struct {
	Period                Period                `json:"period" yaml:"period"`
	EmployeeID            string                `json:"employeeId" yaml:"employeeId"`
	Weights               []WbsWeight           `json:"weights" yaml:"weights"`
	SelfRecords           []Record              `json:"selfRecords" yaml:"selfRecords"`
	DownwardRecords       []Record              `json:"downwardRecords" yaml:"downwardRecords"`
	PrimaryEvaluatorIDs   []string              `json:"primaryEvaluatorIds" yaml:"primaryEvaluatorIds"`
	SecondaryEvaluatorIDs []string              `json:"secondaryEvaluatorIds" yaml:"secondaryEvaluatorIds"`
	SecondaryAssignments  []SecondaryAssignment `json:"secondaryAssignments" yaml:"secondaryAssignments"`
	Evaluators            []EvaluatorInfo       `json:"evaluators" yaml:"evaluators"`
	Approvals             Approvals             `json:"approvals" yaml:"approvals"`
}

type EvaluatorStat struct {
	EvaluatorID    string `json:"evaluatorId"`
	AssignedCount  int    `json:"assignedCount"`
	RecordCount    int    `json:"recordCount"`
	CompletedCount int    `json:"completedCount"`
}

type SelfSummary struct {
	TotalScore *float64 `json:"totalScore"`
	Grade      *string  `json:"grade"`
	Status     Status   `json:"status"`
	Error      string   `json:"error,omitempty"`
}

type PrimarySummary struct {
	EvaluatorID string   `json:"evaluatorId,omitempty"`
	TotalScore  *float64 `json:"totalScore"`
	Grade       *string  `json:"grade"`
	IsSubmitted bool     `json:"isSubmitted"`
	Status      Status   `json:"status"`
	Error       string   `json:"error,omitempty"`
}

type SecondaryEvaluatorSummary struct {
	EvaluatorID              string `json:"evaluatorId"`
	EvaluatorName            string `json:"evaluatorName"`
	EvaluatorEmployeeNumber  string `json:"evaluatorEmployeeNumber"`
	EvaluatorEmail           string `json:"evaluatorEmail"`
	AssignedWbsCount         int    `json:"assignedWbsCount"`
	CompletedEvaluationCount int    `json:"completedEvaluationCount"`
	IsSubmitted              bool   `json:"isSubmitted"`
	Status                   Status `json:"status"`
}

type SecondarySummary struct {
	TotalScore  *float64                    `json:"totalScore"`
	Grade       *string                     `json:"grade"`
	IsSubmitted bool                        `json:"isSubmitted"`
	Status      Status                      `json:"status"`
	Evaluators  []SecondaryEvaluatorSummary `json:"evaluators"`
	Error       string                      `json:"error,omitempty"`
}

type Summary struct {
	PeriodID   string           `json:"periodId"`
	EmployeeID string           `json:"employeeId"`
	Self       SelfSummary      `json:"self"`
	Primary    PrimarySummary   `json:"primary"`
	Secondary  SecondarySummary `json:"secondary"`
}
