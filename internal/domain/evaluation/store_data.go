package evaluation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) GetPeriod(ctx context.Context, periodID string) (Period, error) {
	return getPeriod(ctx, s.DB, periodID)
}

// LoadSnapshot reads every input of one summary inside a single read-only
// repeatable-read transaction so weights, assignments and records agree.
func (s *Store) LoadSnapshot(ctx context.Context, periodID, employeeID string) (SummaryInput, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return SummaryInput{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	period, err := getPeriod(ctx, tx, periodID)
	if err != nil {
		return SummaryInput{}, err
	}
	if err := employeeExists(ctx, tx, employeeID); err != nil {
		return SummaryInput{}, err
	}

	in := SummaryInput{Period: period, EmployeeID: employeeID}
	if in.Weights, err = listWeights(ctx, tx, periodID, employeeID); err != nil {
		return SummaryInput{}, fmt.Errorf("list wbs weights: %w", err)
	}
	if in.SelfRecords, err = listSelfRecords(ctx, tx, periodID, employeeID); err != nil {
		return SummaryInput{}, fmt.Errorf("list self evaluations: %w", err)
	}
	if in.DownwardRecords, err = listDownwardRecords(ctx, tx, periodID, employeeID); err != nil {
		return SummaryInput{}, fmt.Errorf("list downward evaluations: %w", err)
	}
	if err := loadEvaluationLines(ctx, tx, periodID, employeeID, &in); err != nil {
		return SummaryInput{}, fmt.Errorf("list evaluation lines: %w", err)
	}
	if in.Approvals, err = loadApprovals(ctx, tx, periodID, employeeID); err != nil {
		return SummaryInput{}, fmt.Errorf("list approvals: %w", err)
	}

	ids := append(append([]string{}, in.PrimaryEvaluatorIDs...), in.SecondaryEvaluatorIDs...)
	if in.Evaluators, err = listEvaluators(ctx, tx, distinct(ids)); err != nil {
		return SummaryInput{}, fmt.Errorf("list evaluators: %w", err)
	}

	return in, tx.Commit(ctx)
}

func (s *Store) CountPeriodEmployees(ctx context.Context, periodID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(DISTINCT employee_id)
    FROM wbs_assignments
    WHERE period_id = $1 AND deleted_at IS NULL
  `, periodID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ListPeriodEmployeeIDs(ctx context.Context, periodID string, limit, offset int) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id
    FROM employees e
    WHERE e.deleted_at IS NULL
      AND EXISTS (
        SELECT 1 FROM wbs_assignments a
        WHERE a.employee_id = e.id AND a.period_id = $1 AND a.deleted_at IS NULL
      )
    ORDER BY e.employee_number, e.id
    LIMIT $2 OFFSET $3
  `, periodID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func getPeriod(ctx context.Context, q querier, periodID string) (Period, error) {
	var period Period
	err := q.QueryRow(ctx, `
    SELECT id, name, max_self_evaluation_rate
    FROM evaluation_periods
    WHERE id = $1 AND deleted_at IS NULL
  `, periodID).Scan(&period.ID, &period.Name, &period.MaxSelfEvaluationRate)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrPeriodNotFound
	}
	if err != nil {
		return Period{}, err
	}

	rows, err := q.Query(ctx, `
    SELECT grade, min_range, max_range
    FROM period_grade_bands
    WHERE period_id = $1
    ORDER BY sort_order, min_range DESC
  `, periodID)
	if err != nil {
		return Period{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var band GradeBand
		if err := rows.Scan(&band.Grade, &band.MinRange, &band.MaxRange); err != nil {
			return Period{}, err
		}
		period.GradeBands = append(period.GradeBands, band)
	}
	return period, rows.Err()
}

func employeeExists(ctx context.Context, q querier, employeeID string) error {
	var count int
	if err := q.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE id = $1 AND deleted_at IS NULL", employeeID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func listWeights(ctx context.Context, q querier, periodID, employeeID string) ([]WbsWeight, error) {
	rows, err := q.Query(ctx, `
    SELECT wbs_item_id, weight
    FROM wbs_assignments
    WHERE period_id = $1 AND employee_id = $2 AND deleted_at IS NULL
    ORDER BY wbs_item_id
  `, periodID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weights []WbsWeight
	for rows.Next() {
		var w WbsWeight
		if err := rows.Scan(&w.WbsItemID, &w.Weight); err != nil {
			return nil, err
		}
		weights = append(weights, w)
	}
	return weights, rows.Err()
}

func listSelfRecords(ctx context.Context, q querier, periodID, employeeID string) ([]Record, error) {
	rows, err := q.Query(ctx, `
    SELECT wbs_item_id, score, is_completed
    FROM self_evaluations
    WHERE period_id = $1 AND employee_id = $2 AND deleted_at IS NULL
  `, periodID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record := Record{EvaluationType: TypeSelf}
		if err := rows.Scan(&record.WbsItemID, &record.Score, &record.IsCompleted); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func listDownwardRecords(ctx context.Context, q querier, periodID, employeeID string) ([]Record, error) {
	rows, err := q.Query(ctx, `
    SELECT wbs_item_id, evaluator_id, evaluation_type, score, is_completed
    FROM downward_evaluations
    WHERE period_id = $1 AND employee_id = $2 AND deleted_at IS NULL
  `, periodID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var evalType string
		if err := rows.Scan(&record.WbsItemID, &record.EvaluatorID, &evalType, &record.Score, &record.IsCompleted); err != nil {
			return nil, err
		}
		record.EvaluationType = EvaluationType(evalType)
		records = append(records, record)
	}
	return records, rows.Err()
}

func loadEvaluationLines(ctx context.Context, q querier, periodID, employeeID string, in *SummaryInput) error {
	rows, err := q.Query(ctx, `
    SELECT evaluator_id, evaluator_type, COALESCE(wbs_item_id::text, '')
    FROM evaluation_lines
    WHERE period_id = $1 AND employee_id = $2 AND deleted_at IS NULL
    ORDER BY created_at, id
  `, periodID, employeeID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var evaluatorID, evaluatorType, wbsItemID string
		if err := rows.Scan(&evaluatorID, &evaluatorType, &wbsItemID); err != nil {
			return err
		}
		switch EvaluationType(evaluatorType) {
		case TypePrimary:
			in.PrimaryEvaluatorIDs = append(in.PrimaryEvaluatorIDs, evaluatorID)
		case TypeSecondary:
			in.SecondaryEvaluatorIDs = append(in.SecondaryEvaluatorIDs, evaluatorID)
			if wbsItemID != "" {
				in.SecondaryAssignments = append(in.SecondaryAssignments, SecondaryAssignment{WbsItemID: wbsItemID, EvaluatorID: evaluatorID})
			}
		}
	}
	in.SecondaryEvaluatorIDs = distinct(in.SecondaryEvaluatorIDs)
	return rows.Err()
}

func loadApprovals(ctx context.Context, q querier, periodID, employeeID string) (Approvals, error) {
	rows, err := q.Query(ctx, `
    SELECT evaluation_type, COALESCE(evaluator_id::text, ''), status
    FROM evaluation_approvals
    WHERE period_id = $1 AND employee_id = $2
  `, periodID, employeeID)
	if err != nil {
		return Approvals{}, err
	}
	defer rows.Close()

	approvals := Approvals{Secondary: map[string]Status{}}
	for rows.Next() {
		var evalType, evaluatorID, status string
		if err := rows.Scan(&evalType, &evaluatorID, &status); err != nil {
			return Approvals{}, err
		}
		switch EvaluationType(evalType) {
		case TypeSelf:
			approvals.Self = Status(status)
		case TypePrimary:
			approvals.Primary = Status(status)
		case TypeSecondary:
			approvals.Secondary[evaluatorID] = Status(status)
		}
	}
	return approvals, rows.Err()
}

func listEvaluators(ctx context.Context, q querier, ids []string) ([]EvaluatorInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := q.Query(ctx, `
    SELECT id, name, employee_number, email, COALESCE(department_name, ''), COALESCE(rank_name, '')
    FROM employees
    WHERE id::text = ANY($1)
  `, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []EvaluatorInfo
	for rows.Next() {
		var info EvaluatorInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.EmployeeNumber, &info.Email, &info.DepartmentName, &info.RankName); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
