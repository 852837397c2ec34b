package evaluation

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	MetricSummariesBuilt = "evaluation.summaries_built"
	MetricSummaryErrors  = "evaluation.summary_errors"
)

type Counter interface {
	Inc(name string)
}

type Service struct {
	store       StoreAPI
	builder     *Builder
	counter     Counter
	concurrency int
}

func NewService(store StoreAPI, log Logger, counter Counter, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{store: store, builder: NewBuilder(log), counter: counter, concurrency: concurrency}
}

func (s *Service) GetPeriod(ctx context.Context, periodID string) (Period, error) {
	return s.store.GetPeriod(ctx, periodID)
}

// EmployeeSummary loads and summarizes one employee. Sections rejected for
// malformed data are reported in the summary itself with StatusInvalidData;
// only store failures are returned as errors.
func (s *Service) EmployeeSummary(ctx context.Context, periodID, employeeID string) (Summary, error) {
	in, err := s.store.LoadSnapshot(ctx, periodID, employeeID)
	if err != nil {
		return Summary{}, err
	}
	summary, err := s.builder.Build(in)
	if err != nil {
		s.inc(MetricSummaryErrors)
	}
	s.inc(MetricSummariesBuilt)
	return summary, nil
}

type Dashboard struct {
	PeriodID string    `json:"periodId"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
	Items    []Summary `json:"items"`
}

// PeriodDashboard summarizes one page of the employees evaluated in a period.
// Summaries are built concurrently; Items keeps the store's employee order.
func (s *Service) PeriodDashboard(ctx context.Context, periodID string, limit, offset int) (Dashboard, error) {
	if _, err := s.store.GetPeriod(ctx, periodID); err != nil {
		return Dashboard{}, err
	}
	total, err := s.store.CountPeriodEmployees(ctx, periodID)
	if err != nil {
		return Dashboard{}, err
	}
	employeeIDs, err := s.store.ListPeriodEmployeeIDs(ctx, periodID, limit, offset)
	if err != nil {
		return Dashboard{}, err
	}

	items := make([]Summary, len(employeeIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, employeeID := range employeeIDs {
		i, employeeID := i, employeeID
		g.Go(func() error {
			summary, err := s.EmployeeSummary(gctx, periodID, employeeID)
			if err != nil {
				return err
			}
			items[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	return Dashboard{PeriodID: periodID, Total: total, Limit: limit, Offset: offset, Items: items}, nil
}

type GradePreview struct {
	PeriodID string  `json:"periodId"`
	Score    float64 `json:"score"`
	Grade    *string `json:"grade"`
}

func (s *Service) PreviewGrade(ctx context.Context, periodID string, score float64) (GradePreview, error) {
	if !isFinite(score) {
		return GradePreview{}, ErrInvalidScore
	}
	period, err := s.store.GetPeriod(ctx, periodID)
	if err != nil {
		return GradePreview{}, err
	}
	preview := GradePreview{PeriodID: periodID, Score: score}
	if grade, ok := ResolveGrade(score, period.GradeBands); ok {
		preview.Grade = &grade
	}
	return preview, nil
}

func (s *Service) inc(name string) {
	if s.counter != nil {
		s.counter.Inc(name)
	}
}
