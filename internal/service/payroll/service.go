package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 8

// SalaryCalculator turns a compensation snapshot into a breakdown.
type SalaryCalculator interface {
	Calculate(comp salary.Compensation) (salary.Breakdown, error)
}

type PayrollServiceImpl struct {
	payrollRepo      payroll.PayrollRepository
	compensationRepo employee.CompensationRepository
	calculator       SalaryCalculator
	logger           *zap.Logger
	now              func() time.Time
	batchConcurrency int
}

type Option func(*PayrollServiceImpl)

// WithClock replaces time.Now for audit stamps.
func WithClock(now func() time.Time) Option {
	return func(s *PayrollServiceImpl) {
		s.now = now
	}
}

// WithBatchConcurrency bounds how many employees CalculateBatch computes at once.
func WithBatchConcurrency(n int) Option {
	return func(s *PayrollServiceImpl) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	compensationRepo employee.CompensationRepository,
	calculator SalaryCalculator,
	logger *zap.Logger,
	opts ...Option,
) payroll.PayrollService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PayrollServiceImpl{
		payrollRepo:      payrollRepo,
		compensationRepo: compensationRepo,
		calculator:       calculator,
		logger:           logger.Named("payroll"),
		now:              time.Now,
		batchConcurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ========== CALCULATION ==========

func (s *PayrollServiceImpl) CalculatePayroll(ctx context.Context, req payroll.CalculatePayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	month, err := payroll.ParseMonth(req.Month)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var emp employee.EmployeeCompensation
	if req.Compensation != nil {
		emp = employee.EmployeeCompensation{
			EmployeeID:       req.EmployeeID,
			CompanyID:        req.CompanyID,
			EmploymentStatus: employee.EmploymentStatusActive,
			Compensation:     *req.Compensation,
		}
	} else {
		emp, err = s.loadCompensation(ctx, req.CompanyID, req.EmployeeID)
		if err != nil {
			return payroll.PayrollRecordResponse{}, err
		}
	}

	rec, err := s.calculateOne(ctx, month, emp, req.ActorID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return mapToRecordResponse(rec), nil
}

func (s *PayrollServiceImpl) CalculateBatch(ctx context.Context, req payroll.CalculateBatchRequest) (payroll.CalculateBatchResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.CalculateBatchResponse{}, err
	}
	month, err := payroll.ParseMonth(req.Month)
	if err != nil {
		return payroll.CalculateBatchResponse{}, err
	}
	if s.compensationRepo == nil {
		return payroll.CalculateBatchResponse{}, errors.New("batch calculation requires a compensation repository")
	}

	employees, err := s.compensationRepo.ListActiveCompensations(ctx, req.CompanyID, req.EmployeeIDs)
	if err != nil {
		return payroll.CalculateBatchResponse{}, fmt.Errorf("failed to list active employees: %w", err)
	}
	if len(employees) == 0 && len(req.EmployeeIDs) == 0 {
		return payroll.CalculateBatchResponse{}, fmt.Errorf("no active employees found: %w", employee.ErrEmployeeNotFound)
	}

	resp := payroll.CalculateBatchResponse{
		Month:   month,
		Created: []payroll.BatchItemResult{},
		Skipped: []payroll.BatchItemResult{},
		Failed:  []payroll.BatchItemResult{},
	}

	// Requested employees that are missing or inactive never reach the calculator.
	found := make(map[string]bool, len(employees))
	for _, e := range employees {
		found[e.EmployeeID] = true
	}
	for _, id := range req.EmployeeIDs {
		if !found[id] {
			resp.Failed = append(resp.Failed, payroll.BatchItemResult{
				EmployeeID: id,
				Error:      "employee not found or not active",
			})
			found[id] = true
		}
	}

	type outcome struct {
		rec payroll.PayrollRecord
		err error
	}
	outcomes := make([]outcome, len(employees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, emp := range employees {
		i, emp := i, emp
		g.Go(func() error {
			rec, err := s.calculateOne(gctx, month, emp, req.ActorID)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			outcomes[i] = outcome{rec: rec, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.CalculateBatchResponse{}, err
	}

	for i, o := range outcomes {
		item := payroll.BatchItemResult{EmployeeID: employees[i].EmployeeID}
		switch {
		case o.err == nil:
			r := mapToRecordResponse(o.rec)
			item.Record = &r
			resp.Created = append(resp.Created, item)
		case errors.Is(o.err, payroll.ErrPayrollRecordAlreadyExists):
			item.Error = o.err.Error()
			resp.Skipped = append(resp.Skipped, item)
		default:
			item.Error = o.err.Error()
			resp.Failed = append(resp.Failed, item)
		}
	}

	s.logger.Info("payroll batch calculated",
		zap.String("company_id", req.CompanyID),
		zap.String("month", month.String()),
		zap.Int("created", len(resp.Created)),
		zap.Int("skipped", len(resp.Skipped)),
		zap.Int("failed", len(resp.Failed)),
	)
	return resp, nil
}

func (s *PayrollServiceImpl) loadCompensation(ctx context.Context, companyID, employeeID string) (employee.EmployeeCompensation, error) {
	if s.compensationRepo == nil {
		return employee.EmployeeCompensation{}, fmt.Errorf("no compensation supplied for employee %s: %w", employeeID, employee.ErrEmployeeNotFound)
	}
	emp, err := s.compensationRepo.GetCompensation(ctx, employeeID, companyID)
	if err != nil {
		return employee.EmployeeCompensation{}, err
	}
	if !emp.IsActive() {
		return employee.EmployeeCompensation{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

// calculateOne runs the calculator and stores the result as CALCULATED. The
// existence check gives a fast conflict; the repository's uniqueness guard
// decides races between concurrent callers.
func (s *PayrollServiceImpl) calculateOne(ctx context.Context, month payroll.Month, emp employee.EmployeeCompensation, actorID string) (payroll.PayrollRecord, error) {
	log := s.logger.With(
		zap.String("company_id", emp.CompanyID),
		zap.String("employee_id", emp.EmployeeID),
		zap.String("month", month.String()),
	)

	existing, err := s.payrollRepo.GetPayrollRecordByEmployeeMonth(ctx, emp.EmployeeID, month, emp.CompanyID)
	if err == nil {
		log.Warn("payroll already calculated", zap.String("payroll_id", existing.ID), zap.String("status", string(existing.Status)))
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
	}
	if !errors.Is(err, payroll.ErrPayrollRecordNotFound) {
		return payroll.PayrollRecord{}, err
	}

	breakdown, err := s.calculator.Calculate(emp.Compensation)
	if err != nil {
		if errors.Is(err, salary.ErrComputationInvariant) {
			log.Error("salary computation invariant violated", zap.Error(err))
		}
		return payroll.PayrollRecord{}, err
	}

	rec, err := payroll.NewPayrollRecord(emp.CompanyID, emp.EmployeeID, month, breakdown, actorID, s.now())
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if emp.FullName != "" {
		name, code := emp.FullName, emp.EmployeeCode
		rec.EmployeeName, rec.EmployeeCode = &name, &code
	}

	created, err := s.payrollRepo.CreatePayrollRecord(ctx, rec)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollRecordAlreadyExists) {
			log.Warn("payroll calculated concurrently")
		}
		return payroll.PayrollRecord{}, err
	}
	if created.EmployeeName == nil {
		created.EmployeeName, created.EmployeeCode = rec.EmployeeName, rec.EmployeeCode
	}

	log.Info("payroll calculated",
		zap.String("payroll_id", created.ID),
		zap.String("salary_type", string(created.SalaryType)),
		zap.String("net", created.Net.String()),
		zap.String("from", string(payroll.PayrollStatusDraft)),
		zap.String("to", string(created.Status)),
	)
	return created, nil
}

// ========== STATUS TRANSITIONS ==========

func (s *PayrollServiceImpl) ApprovePayroll(ctx context.Context, req payroll.TransitionPayrollRequest) (payroll.PayrollRecordResponse, error) {
	return s.transition(ctx, req, payroll.ActionApprove)
}

func (s *PayrollServiceImpl) ProcessPayroll(ctx context.Context, req payroll.TransitionPayrollRequest) (payroll.PayrollRecordResponse, error) {
	return s.transition(ctx, req, payroll.ActionProcess)
}

func (s *PayrollServiceImpl) ArchivePayroll(ctx context.Context, req payroll.TransitionPayrollRequest) (payroll.PayrollRecordResponse, error) {
	return s.transition(ctx, req, payroll.ActionArchive)
}

func (s *PayrollServiceImpl) ClosePayroll(ctx context.Context, req payroll.TransitionPayrollRequest) (payroll.PayrollRecordResponse, error) {
	return s.transition(ctx, req, payroll.ActionClose)
}

func (s *PayrollServiceImpl) transition(ctx context.Context, req payroll.TransitionPayrollRequest, action payroll.Action) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	current, err := s.payrollRepo.GetPayrollRecordByID(ctx, req.ID, req.CompanyID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	log := s.logger.With(
		zap.String("company_id", current.CompanyID),
		zap.String("employee_id", current.EmployeeID),
		zap.String("month", current.Month.String()),
		zap.String("payroll_id", current.ID),
		zap.String("action", string(action)),
	)

	to, err := action.Apply(current.Status)
	if err != nil {
		log.Warn("payroll transition rejected", zap.String("status", string(current.Status)), zap.Error(err))
		return payroll.PayrollRecordResponse{}, err
	}

	updated, err := s.payrollRepo.TransitionStatus(ctx, req.CompanyID, req.ID, current.Status, to, req.ActorID, s.now())
	if err != nil {
		if errors.Is(err, payroll.ErrInvalidStatusTransition) {
			log.Warn("payroll status changed concurrently", zap.Error(err))
		}
		return payroll.PayrollRecordResponse{}, err
	}
	if updated.EmployeeName == nil {
		updated.EmployeeName, updated.EmployeeCode = current.EmployeeName, current.EmployeeCode
	}

	log.Info("payroll status changed",
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
	)
	return mapToRecordResponse(updated), nil
}

// ========== QUERIES ==========

func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, companyID, id string) (payroll.PayrollRecordResponse, error) {
	rec, err := s.payrollRepo.GetPayrollRecordByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return mapToRecordResponse(rec), nil
}

func (s *PayrollServiceImpl) ListPayroll(ctx context.Context, req payroll.ListPayrollRequest) (payroll.ListPayrollRecordResponse, error) {
	filter, err := req.ToFilter()
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	records, total, err := s.payrollRepo.ListPayrollRecords(ctx, req.CompanyID, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return payroll.ListPayrollRecordResponse{
		Data:       mapToRecordResponses(records),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *PayrollServiceImpl) GetPayrollSummary(ctx context.Context, companyID, month string) (payroll.PayrollSummary, error) {
	m, err := payroll.ParseMonth(month)
	if err != nil {
		return payroll.PayrollSummary{}, err
	}
	return s.payrollRepo.GetPayrollSummary(ctx, companyID, m)
}

// ========== HELPERS ==========

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	str := t.Format(time.RFC3339)
	return &str
}

func mapToRecordResponse(r payroll.PayrollRecord) payroll.PayrollRecordResponse {
	employeeName := ""
	employeeCode := ""
	if r.EmployeeName != nil {
		employeeName = *r.EmployeeName
	}
	if r.EmployeeCode != nil {
		employeeCode = *r.EmployeeCode
	}

	return payroll.PayrollRecordResponse{
		ID:              r.ID,
		CompanyID:       r.CompanyID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    employeeName,
		EmployeeCode:    employeeCode,
		Month:           r.Month,
		Status:          r.Status,
		SalaryType:      r.SalaryType,
		Gross:           r.Gross,
		TotalDeductions: r.TotalDeductions,
		Net:             r.Net,
		AnnualCTC:       r.AnnualCTC,
		Breakdown:       r.Breakdown,
		CalculatedAt:    r.CalculatedAt.Format(time.RFC3339),
		CalculatedBy:    r.CalculatedBy,
		ApprovedAt:      formatTime(r.ApprovedAt),
		ApprovedBy:      r.ApprovedBy,
		ProcessedAt:     formatTime(r.ProcessedAt),
		ProcessedBy:     r.ProcessedBy,
		PaidAt:          formatTime(r.PaidAt),
		PaidBy:          r.PaidBy,
		ArchivedAt:      formatTime(r.ArchivedAt),
		ArchivedBy:      r.ArchivedBy,
	}
}

func mapToRecordResponses(records []payroll.PayrollRecord) []payroll.PayrollRecordResponse {
	result := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToRecordResponse(r))
	}
	return result
}
