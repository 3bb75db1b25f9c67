package employee

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "ACTIVE"
	EmploymentStatusInactive   EmploymentStatus = "INACTIVE"
	EmploymentStatusTerminated EmploymentStatus = "TERMINATED"
)

// EmployeeCompensation is the slice of an employee record payroll reads: who
// the employee is and the current compensation snapshot.
type EmployeeCompensation struct {
	EmployeeID       string
	CompanyID        string
	EmployeeCode     string
	FullName         string
	Department       *string
	EmploymentStatus EmploymentStatus
	Compensation     salary.Compensation
	UpdatedAt        time.Time
}

func (e EmployeeCompensation) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
