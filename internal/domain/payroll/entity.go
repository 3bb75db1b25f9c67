package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
)

// PayrollRecord is the stored outcome of one employee's calculation for one
// month. The breakdown is frozen at calculation time; only status and the
// audit stamps change afterwards.
type PayrollRecord struct {
	ID              string
	CompanyID       string
	EmployeeID      string
	Month           Month
	Status          PayrollStatus
	SalaryType      salary.SalaryType
	Gross           salary.Money
	TotalDeductions salary.Money
	Net             salary.Money
	AnnualCTC       salary.Money
	Breakdown       salary.Breakdown
	TablesVersion   string

	CalculatedAt time.Time
	CalculatedBy *string
	ApprovedAt   *time.Time
	ApprovedBy   *string
	ProcessedAt  *time.Time
	ProcessedBy  *string
	PaidAt       *time.Time
	PaidBy       *string
	ArchivedAt   *time.Time
	ArchivedBy   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// NewPayrollRecord builds the record a calculation produces: the conceptual
// DRAFT moved through ActionCalculate.
func NewPayrollRecord(companyID, employeeID string, month Month, b salary.Breakdown, actorID string, at time.Time) (PayrollRecord, error) {
	status, err := ActionCalculate.Apply(PayrollStatusDraft)
	if err != nil {
		return PayrollRecord{}, err
	}

	rec := PayrollRecord{
		CompanyID:       companyID,
		EmployeeID:      employeeID,
		Month:           month,
		Status:          status,
		SalaryType:      b.SalaryType,
		Gross:           b.Gross,
		TotalDeductions: b.TotalDeductions,
		Net:             b.Net,
		AnnualCTC:       b.AnnualCTC,
		Breakdown:       b,
		TablesVersion:   b.TablesVersion,
		CalculatedAt:    at,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
	if actorID != "" {
		rec.CalculatedBy = &actorID
	}
	return rec, nil
}

// Stamp records who moved the record into status to, and when. It does not
// check the transition table.
func (r *PayrollRecord) Stamp(to PayrollStatus, actorID string, at time.Time) {
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	r.Status = to
	r.UpdatedAt = at
	switch to {
	case PayrollStatusApproved:
		r.ApprovedAt, r.ApprovedBy = &at, actor
	case PayrollStatusProcessed:
		r.ProcessedAt, r.ProcessedBy = &at, actor
	case PayrollStatusPaid:
		r.PaidAt, r.PaidBy = &at, actor
	case PayrollStatusArchived:
		r.ArchivedAt, r.ArchivedBy = &at, actor
	}
}
