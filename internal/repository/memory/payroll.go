package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/google/uuid"
)

type payrollKey struct {
	companyID  string
	employeeID string
	month      payroll.Month
}

// PayrollRepository keeps payroll records in process memory. The mutex makes
// create and status transitions atomic in the same way the unique constraint
// and conditional UPDATE do in PostgreSQL.
type PayrollRepository struct {
	mu      sync.RWMutex
	records map[string]payroll.PayrollRecord
	byKey   map[payrollKey]string
	now     func() time.Time
}

func NewPayrollRepository() *PayrollRepository {
	return &PayrollRepository{
		records: make(map[string]payroll.PayrollRecord),
		byKey:   make(map[payrollKey]string),
		now:     time.Now,
	}
}

func (r *PayrollRepository) CreatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	if err := ctx.Err(); err != nil {
		return payroll.PayrollRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := payrollKey{record.CompanyID, record.EmployeeID, record.Month}
	if _, exists := r.byKey[key]; exists {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
	}

	if record.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return payroll.PayrollRecord{}, err
		}
		record.ID = id.String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}

	r.records[record.ID] = record
	r.byKey[key] = record.ID
	return record, nil
}

func (r *PayrollRepository) GetPayrollRecordByID(ctx context.Context, id string, companyID string) (payroll.PayrollRecord, error) {
	if err := ctx.Err(); err != nil {
		return payroll.PayrollRecord{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok || rec.CompanyID != companyID {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return rec, nil
}

func (r *PayrollRepository) GetPayrollRecordByEmployeeMonth(ctx context.Context, employeeID string, month payroll.Month, companyID string) (payroll.PayrollRecord, error) {
	if err := ctx.Err(); err != nil {
		return payroll.PayrollRecord{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[payrollKey{companyID, employeeID, month}]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return r.records[id], nil
}

func (r *PayrollRepository) ListPayrollRecords(ctx context.Context, companyID string, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	var matched []payroll.PayrollRecord
	for _, rec := range r.records {
		if matchesFilter(rec, companyID, filter) {
			matched = append(matched, rec)
		}
	}
	r.mu.RUnlock()

	sortRecords(matched, filter.SortBy, filter.SortOrder)

	total := int64(len(matched))
	if filter.Limit <= 0 {
		filter.Limit = payroll.DefaultPageLimit
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	start := filter.Offset()
	if start >= len(matched) {
		return []payroll.PayrollRecord{}, total, nil
	}
	end := min(start+filter.Limit, len(matched))
	return matched[start:end], total, nil
}

func (r *PayrollRepository) TransitionStatus(ctx context.Context, companyID string, id string, from, to payroll.PayrollStatus, actorID string, at time.Time) (payroll.PayrollRecord, error) {
	if err := ctx.Err(); err != nil {
		return payroll.PayrollRecord{}, err
	}

	if !payroll.CanTransition(from, to) {
		return payroll.PayrollRecord{}, &payroll.TransitionError{Current: from, From: from, To: to}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.CompanyID != companyID {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	if rec.Status != from {
		return payroll.PayrollRecord{}, &payroll.TransitionError{Current: rec.Status, From: from, To: to}
	}

	rec.Stamp(to, actorID, at)
	r.records[id] = rec
	return rec, nil
}

func (r *PayrollRepository) GetPayrollSummary(ctx context.Context, companyID string, month payroll.Month) (payroll.PayrollSummary, error) {
	if err := ctx.Err(); err != nil {
		return payroll.PayrollSummary{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := payroll.PayrollSummary{
		Month:         month,
		CountByStatus: make(map[payroll.PayrollStatus]int),
		GeneratedAt:   r.now(),
	}
	for _, rec := range r.records {
		if rec.CompanyID != companyID || rec.Month != month {
			continue
		}
		summary.TotalRecords++
		summary.CountByStatus[rec.Status]++
		summary.TotalGross += rec.Gross
		summary.TotalDeductions += rec.TotalDeductions
		summary.TotalNet += rec.Net
		summary.TotalAnnualCTC += rec.AnnualCTC
	}
	return summary, nil
}

func matchesFilter(rec payroll.PayrollRecord, companyID string, f payroll.PayrollFilter) bool {
	if rec.CompanyID != companyID {
		return false
	}
	if f.Month != nil && rec.Month != *f.Month {
		return false
	}
	if f.Status != nil && rec.Status != *f.Status {
		return false
	}
	if f.EmployeeID != nil && rec.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.SalaryType != nil && rec.SalaryType != *f.SalaryType {
		return false
	}
	return true
}

func sortRecords(records []payroll.PayrollRecord, sortBy, order string) {
	less := func(a, b payroll.PayrollRecord) bool {
		switch sortBy {
		case "month":
			if a.Month != b.Month {
				return a.Month.Before(b.Month)
			}
		case "net":
			if a.Net != b.Net {
				return a.Net < b.Net
			}
		case "gross":
			if a.Gross != b.Gross {
				return a.Gross < b.Gross
			}
		case "status":
			if a.Status != b.Status {
				return a.Status.Rank() < b.Status.Rank()
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}

	desc := order != "asc"
	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}
