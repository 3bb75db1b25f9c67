package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll records.
// All methods include companyID parameter to prevent cross-company data access.
type PayrollRepository interface {
	// CreatePayrollRecord inserts a new record. A second record for the same
	// (company, employee, month) fails with ErrPayrollRecordAlreadyExists.
	CreatePayrollRecord(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetPayrollRecordByID(ctx context.Context, id string, companyID string) (PayrollRecord, error)
	GetPayrollRecordByEmployeeMonth(ctx context.Context, employeeID string, month Month, companyID string) (PayrollRecord, error)
	ListPayrollRecords(ctx context.Context, companyID string, filter PayrollFilter) ([]PayrollRecord, int64, error)

	// TransitionStatus moves a record from one status to another only if it
	// is still in from. A record in any other status fails with a
	// *TransitionError; a missing record with ErrPayrollRecordNotFound.
	TransitionStatus(ctx context.Context, companyID string, id string, from, to PayrollStatus, actorID string, at time.Time) (PayrollRecord, error)

	// Aggregations
	GetPayrollSummary(ctx context.Context, companyID string, month Month) (PayrollSummary, error)
}
