package evaluation

import (
	"errors"
	"math"
	"testing"
)

type recordingLogger struct {
	infos []string
	warns []string
}

func (l *recordingLogger) Info(msg string, args ...any) { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(msg string, args ...any) { l.warns = append(l.warns, msg) }

func (l *recordingLogger) has(msgs []string, msg string) bool {
	for _, m := range msgs {
		if m == msg {
			return true
		}
	}
	return false
}

func fullSnapshot() SummaryInput {
	return SummaryInput{
		Period:     Period{ID: "p1", Name: "2026 H1", MaxSelfEvaluationRate: 120, GradeBands: standardBands},
		EmployeeID: "emp1",
		Weights:    []WbsWeight{{WbsItemID: "w1", Weight: 60}, {WbsItemID: "w2", Weight: 40}},
		SelfRecords: []Record{
			scoredRecord(TypeSelf, "w1", "", 90),
			scoredRecord(TypeSelf, "w2", "", 120),
		},
		DownwardRecords: []Record{
			scoredRecord(TypePrimary, "w1", "m1", 120),
			scoredRecord(TypePrimary, "w2", "m1", 96),
			scoredRecord(TypeSecondary, "w1", "s1", 108),
			scoredRecord(TypeSecondary, "w2", "s1", 120),
			scoredRecord(TypeSecondary, "w1", "s2", 84),
		},
		PrimaryEvaluatorIDs:   []string{"m1", "m1"},
		SecondaryEvaluatorIDs: []string{"s1", "s2", "s3"},
		SecondaryAssignments: []SecondaryAssignment{
			{WbsItemID: "w1", EvaluatorID: "s1"},
			{WbsItemID: "w2", EvaluatorID: "s1"},
			{WbsItemID: "w1", EvaluatorID: "s2"},
		},
		Evaluators: []EvaluatorInfo{
			{ID: "s1", Name: "Dana Kim", EmployeeNumber: "E-100", Email: "dana@example.com"},
		},
		Approvals: Approvals{
			Primary:   StatusApproved,
			Secondary: map[string]Status{"s1": StatusApproved},
		},
	}
}

func TestBuildSummaryComplete(t *testing.T) {
	log := &recordingLogger{}
	summary, err := NewBuilder(log).Build(fullSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Self.TotalScore == nil || *summary.Self.TotalScore != 85 {
		t.Fatalf("expected self score 85, got %v", summary.Self.TotalScore)
	}
	if summary.Self.Grade == nil || *summary.Self.Grade != "A" {
		t.Fatalf("expected self grade A, got %v", summary.Self.Grade)
	}
	if summary.Self.Status != StatusPending {
		t.Fatalf("expected self status pending, got %s", summary.Self.Status)
	}

	if summary.Primary.EvaluatorID != "m1" {
		t.Fatalf("expected primary evaluator m1, got %q", summary.Primary.EvaluatorID)
	}
	if summary.Primary.TotalScore == nil || *summary.Primary.TotalScore != 92 {
		t.Fatalf("expected primary score 92, got %v", summary.Primary.TotalScore)
	}
	if !summary.Primary.IsSubmitted || summary.Primary.Status != StatusApproved {
		t.Fatalf("unexpected primary summary: %+v", summary.Primary)
	}

	if summary.Secondary.TotalScore == nil || *summary.Secondary.TotalScore != 88 {
		t.Fatalf("expected secondary score 88, got %v", summary.Secondary.TotalScore)
	}
	if summary.Secondary.Grade == nil || *summary.Secondary.Grade != "A" {
		t.Fatalf("expected secondary grade A, got %v", summary.Secondary.Grade)
	}
	if !summary.Secondary.IsSubmitted {
		t.Fatal("expected secondary to be submitted")
	}
	if summary.Secondary.Status != StatusPending {
		t.Fatalf("expected secondary status pending, got %s", summary.Secondary.Status)
	}
	if len(summary.Secondary.Evaluators) != 3 {
		t.Fatalf("expected 3 evaluators, got %d", len(summary.Secondary.Evaluators))
	}

	s1, s2, s3 := summary.Secondary.Evaluators[0], summary.Secondary.Evaluators[1], summary.Secondary.Evaluators[2]
	if s1.EvaluatorName != "Dana Kim" || s1.AssignedWbsCount != 2 || s1.CompletedEvaluationCount != 2 || !s1.IsSubmitted {
		t.Fatalf("unexpected s1 breakdown: %+v", s1)
	}
	if s2.EvaluatorName != UnknownEvaluatorName || s2.EvaluatorEmployeeNumber != NotAvailable || s2.EvaluatorEmail != NotAvailable {
		t.Fatalf("expected fallback display fields for s2, got %+v", s2)
	}
	if s3.AssignedWbsCount != 0 || s3.IsSubmitted || s3.Status != StatusNone {
		t.Fatalf("unexpected s3 breakdown: %+v", s3)
	}

	if len(log.warns) != 0 {
		t.Fatalf("expected no warnings, got %v", log.warns)
	}
}

func TestBuildSummaryPartial(t *testing.T) {
	in := SummaryInput{
		Period:     Period{ID: "p1", MaxSelfEvaluationRate: 100, GradeBands: standardBands},
		EmployeeID: "emp2",
		Weights:    []WbsWeight{{WbsItemID: "w1", Weight: 50}, {WbsItemID: "w2", Weight: 50}},
		SelfRecords: []Record{
			scoredRecord(TypeSelf, "w1", "", 80),
			{WbsItemID: "w2", EvaluationType: TypeSelf},
		},
		DownwardRecords: []Record{
			scoredRecord(TypeSecondary, "w1", "s1", 70),
		},
		SecondaryAssignments: []SecondaryAssignment{
			{WbsItemID: "w1", EvaluatorID: "s1"},
			{WbsItemID: "w2", EvaluatorID: "s1"},
		},
	}

	log := &recordingLogger{}
	summary, err := NewBuilder(log).Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Self.TotalScore != nil || summary.Self.Grade != nil {
		t.Fatalf("expected no self score, got %+v", summary.Self)
	}
	if summary.Self.Status != StatusInProgress {
		t.Fatalf("expected self in progress, got %s", summary.Self.Status)
	}

	if summary.Primary.TotalScore != nil || summary.Primary.IsSubmitted || summary.Primary.Status != StatusNone {
		t.Fatalf("expected empty primary summary, got %+v", summary.Primary)
	}
	if !log.has(log.infos, "no primary evaluator assigned") {
		t.Fatalf("expected missing primary evaluator to be logged, got %v", log.infos)
	}

	if summary.Secondary.TotalScore != nil || summary.Secondary.IsSubmitted {
		t.Fatalf("expected no secondary score, got %+v", summary.Secondary)
	}
	if summary.Secondary.Status != StatusInProgress {
		t.Fatalf("expected secondary in progress, got %s", summary.Secondary.Status)
	}
}

func TestBuildSummaryEvaluatorWithoutAssignmentsDoesNotBlock(t *testing.T) {
	in := fullSnapshot()
	in.SecondaryEvaluatorIDs = append(in.SecondaryEvaluatorIDs, "s4")

	summary, err := NewBuilder(nil).Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.Secondary.IsSubmitted || summary.Secondary.TotalScore == nil {
		t.Fatalf("expected secondary score despite idle evaluators, got %+v", summary.Secondary)
	}
}

func TestBuildSummaryPrimaryScopedToFirstEvaluator(t *testing.T) {
	in := fullSnapshot()
	in.PrimaryEvaluatorIDs = []string{"m2", "m1"}
	in.Approvals.Primary = ""

	log := &recordingLogger{}
	summary, err := NewBuilder(log).Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Primary.EvaluatorID != "m2" {
		t.Fatalf("expected m2, got %q", summary.Primary.EvaluatorID)
	}
	if summary.Primary.TotalScore != nil || summary.Primary.IsSubmitted || summary.Primary.Status != StatusNone {
		t.Fatalf("expected m2 to have nothing submitted, got %+v", summary.Primary)
	}
	if !log.has(log.warns, "multiple primary evaluators, using first") {
		t.Fatalf("expected warning for multiple primary evaluators, got %v", log.warns)
	}
	if summary.Self.TotalScore == nil || summary.Secondary.TotalScore == nil {
		t.Fatal("expected self and secondary scores to be unaffected")
	}
}

func TestBuildSummaryScoreOutsideBands(t *testing.T) {
	in := fullSnapshot()
	in.Period.GradeBands = []GradeBand{{Grade: "S", MinRange: 99, MaxRange: 100}}

	summary, err := NewBuilder(nil).Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Self.TotalScore == nil || summary.Self.Grade != nil {
		t.Fatalf("expected a score without grade, got %+v", summary.Self)
	}
}

func TestBuildSummaryWarnsOnOverlappingBands(t *testing.T) {
	in := fullSnapshot()
	in.Period.GradeBands = []GradeBand{
		{Grade: "A", MinRange: 80, MaxRange: 100},
		{Grade: "B", MinRange: 60, MaxRange: 85},
	}

	log := &recordingLogger{}
	summary, err := NewBuilder(log).Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !log.has(log.warns, "grade band misconfigured") {
		t.Fatalf("expected band warning, got %v", log.warns)
	}
	if summary.Self.Grade == nil || *summary.Self.Grade != "A" {
		t.Fatalf("expected first listed band A, got %v", summary.Self.Grade)
	}
}

func TestBuildSummaryRejectsNegativeWeight(t *testing.T) {
	in := fullSnapshot()
	in.Weights[0].Weight = -60

	summary, err := NewBuilder(nil).Build(in)
	if !errors.Is(err, ErrNegativeWeight) {
		t.Fatalf("expected ErrNegativeWeight, got %v", err)
	}
	for name, status := range map[string]Status{"self": summary.Self.Status, "primary": summary.Primary.Status, "secondary": summary.Secondary.Status} {
		if status != StatusInvalidData {
			t.Fatalf("expected %s invalid_data, got %s", name, status)
		}
	}
	if summary.Self.TotalScore != nil || summary.Self.Error == "" {
		t.Fatalf("expected self rejected without a score, got %+v", summary.Self)
	}
}

func TestBuildSummaryInvalidSectionKeepsOthers(t *testing.T) {
	in := SummaryInput{
		Period:      Period{ID: "p1", MaxSelfEvaluationRate: 100, GradeBands: standardBands},
		EmployeeID:  "emp1",
		Weights:     []WbsWeight{{WbsItemID: "w1", Weight: 100}},
		SelfRecords: []Record{scoredRecord(TypeSelf, "w1", "", 80)},
		DownwardRecords: []Record{
			scoredRecord(TypePrimary, "w1", "m1", 70),
			scoredRecord(TypeSecondary, "w1", "s1", math.NaN()),
		},
		PrimaryEvaluatorIDs:  []string{"m1"},
		SecondaryAssignments: []SecondaryAssignment{{WbsItemID: "w1", EvaluatorID: "s1"}},
	}

	log := &recordingLogger{}
	summary, err := NewBuilder(log).Build(in)
	if !errors.Is(err, ErrInvalidScore) {
		t.Fatalf("expected ErrInvalidScore, got %v", err)
	}
	if summary.Self.TotalScore == nil || *summary.Self.TotalScore != 80 {
		t.Fatalf("expected self score 80, got %v", summary.Self.TotalScore)
	}
	if summary.Primary.TotalScore == nil || *summary.Primary.TotalScore != 70 {
		t.Fatalf("expected primary score 70, got %v", summary.Primary.TotalScore)
	}
	if summary.Secondary.Status != StatusInvalidData || summary.Secondary.TotalScore != nil {
		t.Fatalf("expected secondary rejected, got %+v", summary.Secondary)
	}
	if len(summary.Secondary.Evaluators) != 1 {
		t.Fatalf("expected evaluator breakdown to survive, got %+v", summary.Secondary.Evaluators)
	}
	if !log.has(log.warns, "evaluation data rejected") {
		t.Fatalf("expected rejected section to be logged, got %v", log.warns)
	}
}

func TestBuildSummarySecondaryIgnoresUnassignedItems(t *testing.T) {
	in := SummaryInput{
		Period:          Period{ID: "p1", MaxSelfEvaluationRate: 100, GradeBands: standardBands},
		EmployeeID:      "emp1",
		Weights:         []WbsWeight{{WbsItemID: "w1", Weight: 50}, {WbsItemID: "w2", Weight: 50}},
		DownwardRecords: []Record{scoredRecord(TypeSecondary, "w2", "s1", 10)},
		SecondaryAssignments: []SecondaryAssignment{
			{WbsItemID: "w1", EvaluatorID: "s1"},
		},
	}

	summary, err := NewBuilder(nil).Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Secondary.IsSubmitted || summary.Secondary.TotalScore != nil {
		t.Fatalf("expected no secondary submission, got %+v", summary.Secondary)
	}
	s1 := summary.Secondary.Evaluators[0]
	if s1.CompletedEvaluationCount != 0 || s1.IsSubmitted || s1.Status != StatusNone {
		t.Fatalf("expected s1 without completed assigned work, got %+v", s1)
	}
}

func TestBuildSummaryDuplicateWeightRows(t *testing.T) {
	in := SummaryInput{
		Period:              Period{ID: "p1", MaxSelfEvaluationRate: 100, GradeBands: standardBands},
		EmployeeID:          "emp1",
		Weights:             []WbsWeight{{WbsItemID: "w1", Weight: 100}, {WbsItemID: "w1", Weight: 100}},
		SelfRecords:         []Record{scoredRecord(TypeSelf, "w1", "", 90)},
		DownwardRecords:     []Record{scoredRecord(TypePrimary, "w1", "m1", 90)},
		PrimaryEvaluatorIDs: []string{"m1"},
	}

	summary, err := NewBuilder(nil).Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Self.Status != StatusPending || summary.Self.TotalScore == nil {
		t.Fatalf("expected completed self, got %+v", summary.Self)
	}
	if !summary.Primary.IsSubmitted || summary.Primary.TotalScore == nil || *summary.Primary.TotalScore != 90 {
		t.Fatalf("expected submitted primary scoring 90, got %+v", summary.Primary)
	}
}

func TestSecondaryEvaluatorStats(t *testing.T) {
	stats := SecondaryEvaluatorStats(fullSnapshot())
	if len(stats) != 3 {
		t.Fatalf("expected 3 stats, got %d", len(stats))
	}
	want := []EvaluatorStat{
		{EvaluatorID: "s1", AssignedCount: 2, RecordCount: 2, CompletedCount: 2},
		{EvaluatorID: "s2", AssignedCount: 1, RecordCount: 1, CompletedCount: 1},
		{EvaluatorID: "s3"},
	}
	for i := range want {
		if stats[i] != want[i] {
			t.Fatalf("stat %d: expected %+v, got %+v", i, want[i], stats[i])
		}
	}
}
