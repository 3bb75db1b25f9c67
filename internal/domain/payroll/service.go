package payroll

import "context"

// PayrollService owns the payroll lifecycle. Calculation happens exactly once
// per (company, employee, month); every later operation only moves the status
// forward.
type PayrollService interface {
	CalculatePayroll(ctx context.Context, req CalculatePayrollRequest) (PayrollRecordResponse, error)
	CalculateBatch(ctx context.Context, req CalculateBatchRequest) (CalculateBatchResponse, error)

	ApprovePayroll(ctx context.Context, req TransitionPayrollRequest) (PayrollRecordResponse, error)
	ProcessPayroll(ctx context.Context, req TransitionPayrollRequest) (PayrollRecordResponse, error)
	// ArchivePayroll marks a processed payroll as PAID.
	ArchivePayroll(ctx context.Context, req TransitionPayrollRequest) (PayrollRecordResponse, error)
	// ClosePayroll moves a paid payroll to the terminal ARCHIVED status.
	ClosePayroll(ctx context.Context, req TransitionPayrollRequest) (PayrollRecordResponse, error)

	GetPayroll(ctx context.Context, companyID, id string) (PayrollRecordResponse, error)
	ListPayroll(ctx context.Context, req ListPayrollRequest) (ListPayrollRecordResponse, error)
	GetPayrollSummary(ctx context.Context, companyID, month string) (PayrollSummary, error)
}
