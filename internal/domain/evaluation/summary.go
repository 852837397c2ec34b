package evaluation

import (
	"errors"
	"fmt"
)

type Builder struct {
	log Logger
}

func NewBuilder(log Logger) *Builder {
	if log == nil {
		log = nopLogger{}
	}
	return &Builder{log: log}
}

// Build summarizes one employee for one period. Self, primary and secondary
// sections are computed independently; missing data in one section leaves its
// score and grade nil without affecting the others. A section built from
// malformed input such as negative weights or non-finite scores is marked
// StatusInvalidData and the joined section errors are returned alongside the
// summary, which is always complete for the valid sections.
func (b *Builder) Build(in SummaryInput) (Summary, error) {
	for _, issue := range ValidateGradeBands(in.Period.GradeBands) {
		b.log.Warn("grade band misconfigured", "periodId", in.Period.ID, "issue", issue.String())
	}

	weights := WeightMap(in.Weights)
	summary := Summary{PeriodID: in.Period.ID, EmployeeID: in.EmployeeID}
	var errs []error

	self, err := b.buildSelf(in, weights)
	if err != nil {
		self = SelfSummary{Status: StatusInvalidData, Error: err.Error()}
		errs = append(errs, b.rejected(in, TypeSelf, err))
	}
	summary.Self = self

	primary, err := b.buildPrimary(in, weights)
	if err != nil {
		primary.Status, primary.Error = StatusInvalidData, err.Error()
		errs = append(errs, b.rejected(in, TypePrimary, err))
	}
	summary.Primary = primary

	secondary, err := b.buildSecondary(in, weights)
	if err != nil {
		secondary.Status, secondary.Error = StatusInvalidData, err.Error()
		errs = append(errs, b.rejected(in, TypeSecondary, err))
	}
	summary.Secondary = secondary

	return summary, errors.Join(errs...)
}

func (b *Builder) rejected(in SummaryInput, evalType EvaluationType, err error) error {
	b.log.Warn("evaluation data rejected", "periodId", in.Period.ID, "employeeId", in.EmployeeID, "type", evalType, "err", err)
	return fmt.Errorf("%s evaluation: %w", evalType, err)
}

func (b *Builder) buildSelf(in SummaryInput, weights map[string]float64) (SelfSummary, error) {
	total := len(in.SelfRecords)
	completed := 0
	for _, record := range in.SelfRecords {
		if record.IsCompleted {
			completed++
		}
	}

	counts := CompletionCounts{Assigned: len(weights), Records: total, Completed: completed}
	out := SelfSummary{Status: CombineWithApproval(ResolveStatus(counts), in.Approvals.Self)}
	if total == 0 || completed != total {
		return out, nil
	}

	score, err := ComputeWeightedScore(ScoreInput{
		Type:    TypeSelf,
		Records: in.SelfRecords,
		Weights: weights,
		MaxRate: in.Period.MaxSelfEvaluationRate,
	})
	if err != nil {
		return SelfSummary{}, err
	}
	out.TotalScore, out.Grade = b.scoreAndGrade(in, TypeSelf, score)
	return out, nil
}

func (b *Builder) buildPrimary(in SummaryInput, weights map[string]float64) (PrimarySummary, error) {
	evaluators := distinct(in.PrimaryEvaluatorIDs)
	if len(evaluators) == 0 {
		b.log.Info("no primary evaluator assigned", "periodId", in.Period.ID, "employeeId", in.EmployeeID)
		return PrimarySummary{Status: StatusNone}, nil
	}
	if len(evaluators) > 1 {
		b.log.Warn("multiple primary evaluators, using first", "periodId", in.Period.ID, "employeeId", in.EmployeeID, "evaluatorIds", evaluators)
	}
	evaluatorID := evaluators[0]

	records := filterRecords(in.DownwardRecords, TypePrimary, evaluatorID)
	counts := CompletionCounts{Assigned: len(weights), Records: len(records), Completed: countCompleted(records)}

	out := PrimarySummary{
		EvaluatorID: evaluatorID,
		IsSubmitted: IsSubmitted(counts),
		Status:      CombineWithApproval(ResolveStatus(counts), in.Approvals.Primary),
	}
	if counts.Assigned == 0 || counts.Completed != counts.Assigned {
		return out, nil
	}

	score, err := ComputeWeightedScore(ScoreInput{
		Type:    TypePrimary,
		Records: records,
		Weights: weights,
		MaxRate: in.Period.MaxSelfEvaluationRate,
	})
	if err != nil {
		return out, err
	}
	out.TotalScore, out.Grade = b.scoreAndGrade(in, TypePrimary, score)
	return out, nil
}

func (b *Builder) buildSecondary(in SummaryInput, weights map[string]float64) (SecondarySummary, error) {
	stats := SecondaryEvaluatorStats(in)
	out := SecondarySummary{Evaluators: make([]SecondaryEvaluatorSummary, 0, len(stats))}
	if len(stats) == 0 {
		b.log.Info("no secondary evaluator assigned", "periodId", in.Period.ID, "employeeId", in.EmployeeID)
		out.Status = StatusNone
		return out, nil
	}

	infos := make(map[string]EvaluatorInfo, len(in.Evaluators))
	for _, info := range in.Evaluators {
		infos[info.ID] = info
	}

	var (
		active      []EvaluatorStat
		statuses    []Status
		allComplete = true
	)
	for _, stat := range stats {
		status := CombineWithApproval(ResolveStatus(stat.Counts()), in.Approvals.Secondary[stat.EvaluatorID])
		out.Evaluators = append(out.Evaluators, evaluatorSummary(stat, infos[stat.EvaluatorID], status))
		if stat.AssignedCount == 0 {
			continue
		}
		active = append(active, stat)
		statuses = append(statuses, status)
		if !stat.Complete() || !IsSubmitted(stat.Counts()) {
			allComplete = false
		}
	}

	out.Status = CombineSecondaryStatuses(statuses)
	if len(active) == 0 || !allComplete {
		return out, nil
	}
	out.IsSubmitted = true

	_, assigned := secondaryAssignments(in)
	var records []Record
	for _, stat := range active {
		records = append(records, assignedRecords(in.DownwardRecords, stat.EvaluatorID, assigned[stat.EvaluatorID])...)
	}
	score, err := ComputeWeightedScore(ScoreInput{
		Type:    TypeSecondary,
		Records: records,
		Weights: weights,
		MaxRate: in.Period.MaxSelfEvaluationRate,
	})
	if err != nil {
		return out, err
	}
	out.TotalScore, out.Grade = b.scoreAndGrade(in, TypeSecondary, score)
	return out, nil
}

func (b *Builder) scoreAndGrade(in SummaryInput, evalType EvaluationType, score *float64) (*float64, *string) {
	if score == nil {
		b.log.Info("no weighted score available", "periodId", in.Period.ID, "employeeId", in.EmployeeID, "type", evalType)
		return nil, nil
	}
	grade, ok := ResolveGrade(*score, in.Period.GradeBands)
	if !ok {
		b.log.Info("score outside grade bands", "periodId", in.Period.ID, "employeeId", in.EmployeeID, "type", evalType, "score", *score)
		return score, nil
	}
	return score, &grade
}

// SecondaryEvaluatorStats returns one stat per distinct secondary evaluator, in
// order of first appearance across SecondaryEvaluatorIDs then
// SecondaryAssignments. AssignedCount counts distinct WBS items; record and
// completion counts only cover records on those items.
func SecondaryEvaluatorStats(in SummaryInput) []EvaluatorStat {
	order, assigned := secondaryAssignments(in)
	stats := make([]EvaluatorStat, 0, len(order))
	for _, id := range order {
		records := assignedRecords(in.DownwardRecords, id, assigned[id])
		stats = append(stats, EvaluatorStat{
			EvaluatorID:    id,
			AssignedCount:  len(assigned[id]),
			RecordCount:    len(records),
			CompletedCount: countCompleted(records),
		})
	}
	return stats
}

func secondaryAssignments(in SummaryInput) ([]string, map[string]map[string]struct{}) {
	var order []string
	assigned := make(map[string]map[string]struct{})
	seen := func(id string) {
		if id == "" {
			return
		}
		if _, ok := assigned[id]; !ok {
			assigned[id] = make(map[string]struct{})
			order = append(order, id)
		}
	}
	for _, id := range in.SecondaryEvaluatorIDs {
		seen(id)
	}
	for _, a := range in.SecondaryAssignments {
		seen(a.EvaluatorID)
		if a.EvaluatorID != "" && a.WbsItemID != "" {
			assigned[a.EvaluatorID][a.WbsItemID] = struct{}{}
		}
	}
	return order, assigned
}

// assignedRecords keeps the evaluator's secondary records on the given WBS
// items.
func assignedRecords(records []Record, evaluatorID string, items map[string]struct{}) []Record {
	var out []Record
	for _, record := range filterRecords(records, TypeSecondary, evaluatorID) {
		if _, ok := items[record.WbsItemID]; ok {
			out = append(out, record)
		}
	}
	return out
}

func evaluatorSummary(stat EvaluatorStat, info EvaluatorInfo, status Status) SecondaryEvaluatorSummary {
	return SecondaryEvaluatorSummary{
		EvaluatorID:              stat.EvaluatorID,
		EvaluatorName:            fallback(info.Name, UnknownEvaluatorName),
		EvaluatorEmployeeNumber:  fallback(info.EmployeeNumber, NotAvailable),
		EvaluatorEmail:           fallback(info.Email, NotAvailable),
		AssignedWbsCount:         stat.AssignedCount,
		CompletedEvaluationCount: stat.CompletedCount,
		IsSubmitted:              IsSubmitted(stat.Counts()),
		Status:                   status,
	}
}

func filterRecords(records []Record, evalType EvaluationType, evaluatorID string) []Record {
	var out []Record
	for _, record := range records {
		if record.EvaluationType == evalType && record.EvaluatorID == evaluatorID {
			out = append(out, record)
		}
	}
	return out
}

func countCompleted(records []Record) int {
	n := 0
	for _, record := range records {
		if record.IsCompleted {
			n++
		}
	}
	return n
}

func distinct(ids []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func fallback(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
