package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
)

type compensationKey struct {
	companyID  string
	employeeID string
}

// CompensationRepository keeps employee compensation snapshots in memory.
type CompensationRepository struct {
	mu    sync.RWMutex
	items map[compensationKey]employee.EmployeeCompensation
}

func NewCompensationRepository(seed ...employee.EmployeeCompensation) *CompensationRepository {
	r := &CompensationRepository{items: make(map[compensationKey]employee.EmployeeCompensation)}
	for _, c := range seed {
		r.items[compensationKey{c.CompanyID, c.EmployeeID}] = c
	}
	return r
}

func (r *CompensationRepository) GetCompensation(ctx context.Context, employeeID string, companyID string) (employee.EmployeeCompensation, error) {
	if err := ctx.Err(); err != nil {
		return employee.EmployeeCompensation{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[compensationKey{companyID, employeeID}]
	if !ok {
		return employee.EmployeeCompensation{}, employee.ErrEmployeeNotFound
	}
	return c, nil
}

func (r *CompensationRepository) ListActiveCompensations(ctx context.Context, companyID string, employeeIDs []string) ([]employee.EmployeeCompensation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		wanted[id] = true
	}

	r.mu.RLock()
	var result []employee.EmployeeCompensation
	for key, c := range r.items {
		if key.companyID != companyID || !c.IsActive() {
			continue
		}
		if len(wanted) > 0 && !wanted[key.employeeID] {
			continue
		}
		result = append(result, c)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].EmployeeCode != result[j].EmployeeCode {
			return result[i].EmployeeCode < result[j].EmployeeCode
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})
	return result, nil
}

func (r *CompensationRepository) UpsertCompensation(ctx context.Context, c employee.EmployeeCompensation) (employee.EmployeeCompensation, error) {
	if err := ctx.Err(); err != nil {
		return employee.EmployeeCompensation{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	r.items[compensationKey{c.CompanyID, c.EmployeeID}] = c
	return c, nil
}
