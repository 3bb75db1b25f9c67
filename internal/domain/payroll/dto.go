package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ========== REQUEST DTOs ==========

// CalculatePayrollRequest computes one employee's payroll for a month. When
// Compensation is nil the stored compensation snapshot is used.
type CalculatePayrollRequest struct {
	CompanyID    string               `json:"company_id"`
	EmployeeID   string               `json:"employee_id"`
	Month        string               `json:"month"`
	Compensation *salary.Compensation `json:"compensation,omitempty"`
	ActorID      string               `json:"actor_id,omitempty"`
}

func (r *CalculatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "company_id is required"})
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be in YYYY-MM format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CalculateBatchRequest computes payroll for several employees. Empty
// EmployeeIDs means every active employee of the company.
type CalculateBatchRequest struct {
	CompanyID   string   `json:"company_id"`
	Month       string   `json:"month"`
	EmployeeIDs []string `json:"employee_ids,omitempty"`
	ActorID     string   `json:"actor_id,omitempty"`
}

func (r *CalculateBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "company_id is required"})
	}
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be in YYYY-MM format"})
	}
	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "employee_ids must not contain empty values"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TransitionPayrollRequest drives approve, process, archive and close.
type TransitionPayrollRequest struct {
	CompanyID string `json:"company_id"`
	ID        string `json:"id"`
	ActorID   string `json:"actor_id,omitempty"`
}

func (r *TransitionPayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "company_id is required"})
	}
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListPayrollRequest struct {
	CompanyID  string `json:"company_id"`
	Month      string `json:"month,omitempty"`
	Status     string `json:"status,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
	SalaryType string `json:"salary_type,omitempty"`
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	SortBy     string `json:"sort_by,omitempty"`
	SortOrder  string `json:"sort_order,omitempty"`
}

// PayrollFilter is the validated form of ListPayrollRequest.
type PayrollFilter struct {
	Month      *Month
	Status     *PayrollStatus
	EmployeeID *string
	SalaryType *salary.SalaryType
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

func (f PayrollFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

var sortableColumns = []string{"created_at", "month", "net", "gross", "status"}

// ToFilter validates the request and applies paging defaults.
func (r *ListPayrollRequest) ToFilter() (PayrollFilter, error) {
	var errs validator.ValidationErrors
	f := PayrollFilter{Page: r.Page, Limit: r.Limit, SortBy: r.SortBy, SortOrder: r.SortOrder}

	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "company_id is required"})
	}
	if r.Month != "" {
		m, err := ParseMonth(r.Month)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be in YYYY-MM format"})
		} else {
			f.Month = &m
		}
	}
	if r.Status != "" {
		st, err := ParseStatus(r.Status)
		if err != nil || st == PayrollStatusDraft {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "unknown payroll status"})
		} else {
			f.Status = &st
		}
	}
	if r.EmployeeID != "" {
		id := r.EmployeeID
		f.EmployeeID = &id
	}
	if r.SalaryType != "" {
		st, err := salary.ParseSalaryType(r.SalaryType)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "salary_type", Message: "salary_type must be STANDARD or SALES"})
		} else {
			f.SalaryType = &st
		}
	}
	if f.SortBy != "" && !validator.IsInSlice(f.SortBy, sortableColumns) {
		errs = append(errs, validator.ValidationError{Field: "sort_by", Message: "unsupported sort column"})
	}
	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		errs = append(errs, validator.ValidationError{Field: "sort_order", Message: "sort_order must be asc or desc"})
	}
	if f.Page < 0 || f.Limit < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page and limit must not be negative"})
	}

	if len(errs) > 0 {
		return PayrollFilter{}, errs
	}

	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	return f, nil
}

// ========== RESPONSE DTOs ==========

type PayrollRecordResponse struct {
	ID              string            `json:"id"`
	CompanyID       string            `json:"company_id"`
	EmployeeID      string            `json:"employee_id"`
	EmployeeName    string            `json:"employee_name,omitempty"`
	EmployeeCode    string            `json:"employee_code,omitempty"`
	Month           Month             `json:"month"`
	Status          PayrollStatus     `json:"status"`
	SalaryType      salary.SalaryType `json:"salary_type"`
	Gross           salary.Money      `json:"gross"`
	TotalDeductions salary.Money      `json:"total_deductions"`
	Net             salary.Money      `json:"net"`
	AnnualCTC       salary.Money      `json:"annual_ctc"`
	Breakdown       salary.Breakdown  `json:"breakdown"`
	CalculatedAt    string            `json:"calculated_at"`
	CalculatedBy    *string           `json:"calculated_by,omitempty"`
	ApprovedAt      *string           `json:"approved_at,omitempty"`
	ApprovedBy      *string           `json:"approved_by,omitempty"`
	ProcessedAt     *string           `json:"processed_at,omitempty"`
	ProcessedBy     *string           `json:"processed_by,omitempty"`
	PaidAt          *string           `json:"paid_at,omitempty"`
	PaidBy          *string           `json:"paid_by,omitempty"`
	ArchivedAt      *string           `json:"archived_at,omitempty"`
	ArchivedBy      *string           `json:"archived_by,omitempty"`
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
}

type BatchItemResult struct {
	EmployeeID string                 `json:"employee_id"`
	Record     *PayrollRecordResponse `json:"record,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// CalculateBatchResponse splits the outcome per employee. Skipped employees
// already had a record for the month.
type CalculateBatchResponse struct {
	Month   Month             `json:"month"`
	Created []BatchItemResult `json:"created"`
	Skipped []BatchItemResult `json:"skipped"`
	Failed  []BatchItemResult `json:"failed"`
}

// PayrollSummary aggregates one company month.
type PayrollSummary struct {
	Month           Month                 `json:"month"`
	TotalRecords    int                   `json:"total_records"`
	CountByStatus   map[PayrollStatus]int `json:"count_by_status"`
	TotalGross      salary.Money          `json:"total_gross"`
	TotalDeductions salary.Money          `json:"total_deductions"`
	TotalNet        salary.Money          `json:"total_net"`
	TotalAnnualCTC  salary.Money          `json:"total_annual_ctc"`
	GeneratedAt     time.Time             `json:"generated_at"`
}
