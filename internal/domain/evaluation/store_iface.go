package evaluation

import "context"

type StoreAPI interface {
	GetPeriod(ctx context.Context, periodID string) (Period, error)
	LoadSnapshot(ctx context.Context, periodID, employeeID string) (SummaryInput, error)
	CountPeriodEmployees(ctx context.Context, periodID string) (int, error)
	ListPeriodEmployeeIDs(ctx context.Context, periodID string, limit, offset int) ([]string, error)
}
