package employee

import "context"

// CompensationRepository reads employee compensation snapshots. Every method
// is scoped by companyID.
type CompensationRepository interface {
	GetCompensation(ctx context.Context, employeeID string, companyID string) (EmployeeCompensation, error)
	// ListActiveCompensations returns active employees ordered by employee
	// code. A non-empty employeeIDs restricts the result to those employees.
	ListActiveCompensations(ctx context.Context, companyID string, employeeIDs []string) ([]EmployeeCompensation, error)
	UpsertCompensation(ctx context.Context, c EmployeeCompensation) (EmployeeCompensation, error)
}
