package payroll_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/memory"
	payrollsvc "github.com/cmlabs-hris/payroll-engine-go/internal/service/payroll"
	salarysvc "github.com/cmlabs-hris/payroll-engine-go/internal/service/salary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const companyID = "0191f3a0-0000-7000-8000-000000000001"

var fixedNow = time.Date(2024, time.April, 30, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc          payroll.PayrollService
	payrollRepo  *memory.PayrollRepository
	compensation *memory.CompensationRepository
	logs         *observer.ObservedLogs
}

func newFixture(t *testing.T, seed ...employee.EmployeeCompensation) fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	f := fixture{
		payrollRepo:  memory.NewPayrollRepository(),
		compensation: memory.NewCompensationRepository(seed...),
		logs:         logs,
	}
	f.svc = payrollsvc.NewPayrollService(
		f.payrollRepo,
		f.compensation,
		salarysvc.NewCalculator(salary.DefaultTables()),
		zap.New(core),
		payrollsvc.WithClock(func() time.Time { return fixedNow }),
		payrollsvc.WithBatchConcurrency(4),
	)
	return f
}

func standardComp(basic int64) *salary.Compensation {
	return &salary.Compensation{SalaryType: salary.SalaryTypeStandard, BasicSalary: salary.Rupees(basic)}
}

func salesComp(stage salary.CareerStage, sales, referrals int) *salary.Compensation {
	return &salary.Compensation{SalaryType: salary.SalaryTypeSales, CareerStage: stage, SalesCount: sales, ReferralCount: referrals}
}

func activeEmployee(id, code string, comp *salary.Compensation) employee.EmployeeCompensation {
	return employee.EmployeeCompensation{
		EmployeeID:       id,
		CompanyID:        companyID,
		EmployeeCode:     code,
		FullName:         "Employee " + code,
		EmploymentStatus: employee.EmploymentStatusActive,
		Compensation:     *comp,
	}
}

func calculate(t *testing.T, svc payroll.PayrollService, employeeID, month string, comp *salary.Compensation) payroll.PayrollRecordResponse {
	t.Helper()
	rec, err := svc.CalculatePayroll(context.Background(), payroll.CalculatePayrollRequest{
		CompanyID:    companyID,
		EmployeeID:   employeeID,
		Month:        month,
		Compensation: comp,
		ActorID:      "hr-admin",
	})
	require.NoError(t, err)
	return rec
}

func TestCalculatePayroll_Standard(t *testing.T) {
	f := newFixture(t)

	rec := calculate(t, f.svc, "emp-1", "2024-04", standardComp(25000))

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, payroll.PayrollStatusCalculated, rec.Status)
	assert.Equal(t, payroll.Month{Year: 2024, Month: time.April}, rec.Month)
	assert.Equal(t, salary.Rupees(34500), rec.Gross)
	assert.Equal(t, salary.Rupees(3540), rec.TotalDeductions)
	assert.Equal(t, salary.Rupees(30960), rec.Net)
	assert.Equal(t, salary.Rupees(414000), rec.AnnualCTC)
	assert.Equal(t, fixedNow.Format(time.RFC3339), rec.CalculatedAt)
	require.NotNil(t, rec.CalculatedBy)
	assert.Equal(t, "hr-admin", *rec.CalculatedBy)

	entries := f.logs.FilterMessage("payroll calculated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "CALCULATED", entries[0].ContextMap()["to"])
}

func TestCalculatePayroll_SalesWithLowercaseStage(t *testing.T) {
	f := newFixture(t)

	rec := calculate(t, f.svc, "emp-sales", "2024-04", salesComp("established", 35, 5))

	assert.Equal(t, payroll.PayrollStatusCalculated, rec.Status)
	assert.Equal(t, salary.CareerStageEstablished, rec.Breakdown.CareerStage)
	require.NotNil(t, rec.Breakdown.Sales)
	assert.Equal(t, salary.Rupees(89500), rec.Breakdown.Sales.TotalCommission)
	assert.Equal(t, salary.Rupees(1000), rec.Breakdown.Sales.MilestoneBonus)
	assert.Equal(t, salary.Rupees(9000), rec.Breakdown.Sales.ReferralBonus)
	assert.Equal(t, salary.Rupees(117750), rec.Gross)
	assert.Equal(t, salary.Rupees(117200), rec.Net)
}

func TestCalculatePayroll_MonthNormalizedToFirstDay(t *testing.T) {
	f := newFixture(t)

	calculate(t, f.svc, "emp-1", "2024-04-17", standardComp(25000))

	_, err := f.svc.CalculatePayroll(context.Background(), payroll.CalculatePayrollRequest{
		CompanyID:    companyID,
		EmployeeID:   "emp-1",
		Month:        "2024-04",
		Compensation: standardComp(25000),
	})
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyExists)
}

func TestCalculatePayroll_SecondCalculationConflicts(t *testing.T) {
	f := newFixture(t)
	first := calculate(t, f.svc, "emp-1", "2024-04", standardComp(25000))

	_, err := f.svc.CalculatePayroll(context.Background(), payroll.CalculatePayrollRequest{
		CompanyID:    companyID,
		EmployeeID:   "emp-1",
		Month:        "2024-04",
		Compensation: standardComp(90000),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, payroll.ErrPayrollRecordAlreadyExists))

	stored, err := f.svc.GetPayroll(context.Background(), companyID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Net, stored.Net, "existing record must not be overwritten")

	// another month and another company are independent keys
	calculate(t, f.svc, "emp-1", "2024-05", standardComp(25000))
	_, err = f.svc.CalculatePayroll(context.Background(), payroll.CalculatePayrollRequest{
		CompanyID:    "0191f3a0-0000-7000-8000-000000000002",
		EmployeeID:   "emp-1",
		Month:        "2024-04",
		Compensation: standardComp(25000),
	})
	assert.NoError(t, err)
}

func TestCalculatePayroll_ConcurrentRequestsCreateOneRecord(t *testing.T) {
	f := newFixture(t)

	const workers = 50
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.CalculatePayroll(context.Background(), payroll.CalculatePayrollRequest{
				CompanyID:    companyID,
				EmployeeID:   "emp-1",
				Month:        "2024-04",
				Compensation: standardComp(25000),
			})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, payroll.ErrPayrollRecordAlreadyExists):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(workers-1), conflicts.Load())

	list, err := f.svc.ListPayroll(context.Background(), payroll.ListPayrollRequest{CompanyID: companyID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
}

func TestCalculatePayroll_UsesStoredCompensation(t *testing.T) {
	f := newFixture(t,
		activeEmployee("emp-sales", "0001-0001", salesComp(salary.CareerStageEstablished, 35, 5)),
		employee.EmployeeCompensation{
			EmployeeID:       "emp-left",
			CompanyID:        companyID,
			EmploymentStatus: employee.EmploymentStatusInactive,
			Compensation:     *standardComp(25000),
		},
	)

	rec := calculate(t, f.svc, "emp-sales", "2024-04", nil)
	assert.Equal(t, salary.SalaryTypeSales, rec.SalaryType)
	assert.Equal(t, salary.Rupees(117750), rec.Gross)
	assert.Equal(t, "Employee 0001-0001", rec.EmployeeName)
	require.NotNil(t, rec.Breakdown.Sales)
	assert.Equal(t, salary.Rupees(9000), rec.Breakdown.Sales.ReferralBonus)

	_, err := f.svc.CalculatePayroll(context.Background(), payroll.CalculatePayrollRequest{
		CompanyID: companyID, EmployeeID: "emp-left", Month: "2024-04",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)

	_, err = f.svc.CalculatePayroll(context.Background(), payroll.CalculatePayrollRequest{
		CompanyID: companyID, EmployeeID: "nobody", Month: "2024-04",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestCalculatePayroll_CalculatorErrorsPersistNothing(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		comp  *salary.Compensation
		check func(t *testing.T, err error)
	}{
		{
			name: "capitalised career stage",
			comp: salesComp("Established", 35, 5),
			check: func(t *testing.T, err error) {
				ve, ok := validator.AsValidationErrors(err)
				require.True(t, ok)
				assert.Equal(t, []string{"career_stage"}, ve.Fields())
			},
		},
		{
			name: "sales count too large",
			comp: salesComp(salary.CareerStageEstablished, 1<<50, 0),
			check: func(t *testing.T, err error) {
				assert.False(t, errors.Is(err, salary.ErrComputationInvariant))
				ve, ok := validator.AsValidationErrors(err)
				require.True(t, ok)
				assert.Equal(t, []string{"sales_count"}, ve.Fields())
			},
		},
		{
			name: "unknown salary type",
			comp: &salary.Compensation{SalaryType: "HOURLY", BasicSalary: salary.Rupees(100)},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, salary.ErrUnknownSalaryType)
			},
		},
		{
			name: "zero basic",
			comp: &salary.Compensation{SalaryType: salary.SalaryTypeStandard},
			check: func(t *testing.T, err error) {
				ve, ok := validator.AsValidationErrors(err)
				require.True(t, ok)
				assert.Equal(t, []string{"basic_salary"}, ve.Fields())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CalculatePayroll(context.Background(), payroll.CalculatePayrollRequest{
				CompanyID:    companyID,
				EmployeeID:   "emp-bad",
				Month:        "2024-04",
				Compensation: tt.comp,
			})
			require.Error(t, err)
			tt.check(t, err)
		})
	}

	list, err := f.svc.ListPayroll(context.Background(), payroll.ListPayrollRequest{CompanyID: companyID})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestCalculatePayroll_RequestValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CalculatePayroll(context.Background(), payroll.CalculatePayrollRequest{Month: "April"})
	ve, ok := validator.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"company_id", "employee_id", "month"}, ve.Fields())
}

type brokenCalculator struct{}

func (brokenCalculator) Calculate(salary.Compensation) (salary.Breakdown, error) {
	return salary.Breakdown{}, fmt.Errorf("%w: net 1.00 != gross 2.00 - deductions 0.00", salary.ErrComputationInvariant)
}

func TestCalculatePayroll_InvariantViolationIsLoud(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	repo := memory.NewPayrollRepository()
	svc := payrollsvc.NewPayrollService(repo, nil, brokenCalculator{}, zap.New(core))

	_, err := svc.CalculatePayroll(context.Background(), payroll.CalculatePayrollRequest{
		CompanyID:    companyID,
		EmployeeID:   "emp-1",
		Month:        "2024-04",
		Compensation: standardComp(25000),
	})
	require.ErrorIs(t, err, salary.ErrComputationInvariant)

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "salary computation invariant violated", entries[0].Message)

	_, err = repo.GetPayrollRecordByEmployeeMonth(context.Background(), "emp-1", payroll.Month{Year: 2024, Month: time.April}, companyID)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestPayrollLifecycle_ForwardPath(t *testing.T) {
	f := newFixture(t)
	rec := calculate(t, f.svc, "emp-1", "2024-04", standardComp(25000))
	req := payroll.TransitionPayrollRequest{CompanyID: companyID, ID: rec.ID, ActorID: "finance"}
	ctx := context.Background()

	approved, err := f.svc.ApprovePayroll(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, "finance", *approved.ApprovedBy)

	processed, err := f.svc.ProcessPayroll(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusProcessed, processed.Status)
	assert.NotNil(t, processed.ProcessedAt)

	paid, err := f.svc.ArchivePayroll(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	closed, err := f.svc.ClosePayroll(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusArchived, closed.Status)
	assert.NotNil(t, closed.ArchivedAt)

	// money never changes after calculation
	assert.Equal(t, rec.Breakdown, closed.Breakdown)
	assert.Equal(t, rec.Net, closed.Net)

	changes := f.logs.FilterMessage("payroll status changed").All()
	require.Len(t, changes, 4)
	assert.Equal(t, "PROCESSED", changes[2].ContextMap()["from"])
	assert.Equal(t, "PAID", changes[2].ContextMap()["to"])
}

func TestPayrollLifecycle_RejectsOutOfOrderTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := calculate(t, f.svc, "emp-1", "2024-04", standardComp(25000))
	req := payroll.TransitionPayrollRequest{CompanyID: companyID, ID: rec.ID}

	type step func(context.Context, payroll.TransitionPayrollRequest) (payroll.PayrollRecordResponse, error)
	all := map[string]step{
		"approve": f.svc.ApprovePayroll,
		"process": f.svc.ProcessPayroll,
		"archive": f.svc.ArchivePayroll,
		"close":   f.svc.ClosePayroll,
	}
	order := []string{"approve", "process", "archive", "close"}

	for i, next := range order {
		// every action other than the next legal one must conflict
		for name, fn := range all {
			if name == next {
				continue
			}
			_, err := fn(ctx, req)
			require.Error(t, err, "%s before %s", name, next)
			assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition, "%s at step %d", name, i)

			var te *payroll.TransitionError
			require.ErrorAs(t, err, &te)
		}
		_, err := all[next](ctx, req)
		require.NoError(t, err, next)
	}

	final, err := f.svc.GetPayroll(ctx, companyID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusArchived, final.Status)
	for name, fn := range all {
		_, err := fn(ctx, req)
		assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition, "%s on archived record", name)
	}
}

func TestPayrollLifecycle_ApproveTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	rec := calculate(t, f.svc, "emp-1", "2024-04", standardComp(25000))
	req := payroll.TransitionPayrollRequest{CompanyID: companyID, ID: rec.ID}

	_, err := f.svc.ApprovePayroll(context.Background(), req)
	require.NoError(t, err)
	_, err = f.svc.ApprovePayroll(context.Background(), req)
	assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition)
}

func TestPayrollLifecycle_ConcurrentApprovalsOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	rec := calculate(t, f.svc, "emp-1", "2024-04", standardComp(25000))

	const workers = 20
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := f.svc.ApprovePayroll(context.Background(), payroll.TransitionPayrollRequest{
				CompanyID: companyID,
				ID:        rec.ID,
				ActorID:   fmt.Sprintf("approver-%d", i),
			})
			if err == nil {
				successes.Add(1)
				return
			}
			if !errors.Is(err, payroll.ErrInvalidStatusTransition) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
}

func TestPayrollLifecycle_NotFound(t *testing.T) {
	f := newFixture(t)
	rec := calculate(t, f.svc, "emp-1", "2024-04", standardComp(25000))

	_, err := f.svc.ApprovePayroll(context.Background(), payroll.TransitionPayrollRequest{CompanyID: companyID, ID: "missing"})
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)

	// records are invisible to other companies
	_, err = f.svc.ApprovePayroll(context.Background(), payroll.TransitionPayrollRequest{CompanyID: "other-company", ID: rec.ID})
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)

	_, err = f.svc.GetPayroll(context.Background(), "other-company", rec.ID)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestPayrollLifecycle_SnapshotSurvivesTableChange(t *testing.T) {
	f := newFixture(t)
	rec := calculate(t, f.svc, "emp-1", "2024-04", standardComp(25000))

	changed := salary.DefaultTables()
	changed.PFRate = salary.Percent(15)
	changed.Version = "2025-26"
	later := payrollsvc.NewPayrollService(f.payrollRepo, f.compensation, salarysvc.NewCalculator(changed), zap.NewNop())

	approved, err := later.ApprovePayroll(context.Background(), payroll.TransitionPayrollRequest{CompanyID: companyID, ID: rec.ID})
	require.NoError(t, err)

	pf, _ := approved.Breakdown.Deduction(salary.CodePF)
	assert.Equal(t, salary.Rupees(3240), pf)
	assert.Equal(t, "2024-25", approved.Breakdown.TablesVersion)
}

func TestCalculateBatch(t *testing.T) {
	f := newFixture(t,
		activeEmployee("emp-a", "0001-0001", standardComp(25000)),
		activeEmployee("emp-b", "0001-0002", salesComp(salary.CareerStageProbation, 8, 0)),
		activeEmployee("emp-c", "0001-0003", salesComp("Established", 1, 0)),
		activeEmployee("emp-d", "0001-0004", standardComp(10000)),
		employee.EmployeeCompensation{EmployeeID: "emp-x", CompanyID: companyID, EmploymentStatus: employee.EmploymentStatusTerminated, Compensation: *standardComp(1000)},
	)
	calculate(t, f.svc, "emp-d", "2024-04", nil)

	resp, err := f.svc.CalculateBatch(context.Background(), payroll.CalculateBatchRequest{
		CompanyID: companyID,
		Month:     "2024-04",
		ActorID:   "hr-admin",
	})
	require.NoError(t, err)

	ids := func(items []payroll.BatchItemResult) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.EmployeeID)
		}
		return out
	}
	assert.Equal(t, []string{"emp-a", "emp-b"}, ids(resp.Created))
	assert.Equal(t, []string{"emp-d"}, ids(resp.Skipped))
	assert.Equal(t, []string{"emp-c"}, ids(resp.Failed))
	assert.Contains(t, resp.Failed[0].Error, "career_stage")
	require.NotNil(t, resp.Created[1].Record)
	assert.Equal(t, salary.Rupees(19250), resp.Created[1].Record.Gross)

	// a rerun only skips
	again, err := f.svc.CalculateBatch(context.Background(), payroll.CalculateBatchRequest{CompanyID: companyID, Month: "2024-04"})
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Len(t, again.Skipped, 3)
}

func TestCalculateBatch_NoActiveEmployees(t *testing.T) {
	f := newFixture(t,
		employee.EmployeeCompensation{EmployeeID: "emp-x", CompanyID: companyID, EmploymentStatus: employee.EmploymentStatusInactive, Compensation: *standardComp(1000)},
	)

	_, err := f.svc.CalculateBatch(context.Background(), payroll.CalculateBatchRequest{CompanyID: companyID, Month: "2024-04"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestCalculateBatch_SelectedEmployees(t *testing.T) {
	f := newFixture(t,
		activeEmployee("emp-a", "0001-0001", standardComp(25000)),
		activeEmployee("emp-b", "0001-0002", standardComp(30000)),
		employee.EmployeeCompensation{EmployeeID: "emp-x", CompanyID: companyID, EmploymentStatus: employee.EmploymentStatusInactive, Compensation: *standardComp(1000)},
	)

	resp, err := f.svc.CalculateBatch(context.Background(), payroll.CalculateBatchRequest{
		CompanyID:   companyID,
		Month:       "2024-04",
		EmployeeIDs: []string{"emp-b", "emp-x", "ghost"},
	})
	require.NoError(t, err)

	require.Len(t, resp.Created, 1)
	assert.Equal(t, "emp-b", resp.Created[0].EmployeeID)
	require.Len(t, resp.Failed, 2)
	assert.Equal(t, "emp-x", resp.Failed[0].EmployeeID)
	assert.Equal(t, "ghost", resp.Failed[1].EmployeeID)
}

func TestListPayroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		calculate(t, f.svc, fmt.Sprintf("emp-%02d", i), "2024-04", standardComp(int64(20000+i*1000)))
	}
	sales := calculate(t, f.svc, "emp-sales", "2024-05", salesComp(salary.CareerStageEstablished, 35, 5))
	_, err := f.svc.ApprovePayroll(ctx, payroll.TransitionPayrollRequest{CompanyID: companyID, ID: sales.ID})
	require.NoError(t, err)

	page, err := f.svc.ListPayroll(ctx, payroll.ListPayrollRequest{CompanyID: companyID, Month: "2024-04"})
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.TotalCount)
	assert.Len(t, page.Data, 20)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.Page)

	second, err := f.svc.ListPayroll(ctx, payroll.ListPayrollRequest{CompanyID: companyID, Month: "2024-04", Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Data, 5)

	capped, err := f.svc.ListPayroll(ctx, payroll.ListPayrollRequest{CompanyID: companyID, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, payroll.MaxPageLimit, capped.Limit)
	assert.Len(t, capped.Data, 26)

	approved, err := f.svc.ListPayroll(ctx, payroll.ListPayrollRequest{CompanyID: companyID, Status: "approved"})
	require.NoError(t, err)
	require.Len(t, approved.Data, 1)
	assert.Equal(t, sales.ID, approved.Data[0].ID)

	byType, err := f.svc.ListPayroll(ctx, payroll.ListPayrollRequest{CompanyID: companyID, SalaryType: "SALES"})
	require.NoError(t, err)
	assert.Len(t, byType.Data, 1)

	byNet, err := f.svc.ListPayroll(ctx, payroll.ListPayrollRequest{CompanyID: companyID, Month: "2024-04", SortBy: "net", SortOrder: "asc", Limit: 3})
	require.NoError(t, err)
	require.Len(t, byNet.Data, 3)
	assert.Less(t, byNet.Data[0].Net, byNet.Data[1].Net)

	_, err = f.svc.ListPayroll(ctx, payroll.ListPayrollRequest{CompanyID: companyID, Status: "DRAFT", Month: "13-2024"})
	ve, ok := validator.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"month", "status"}, ve.Fields())
}

func TestGetPayrollSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := calculate(t, f.svc, "emp-a", "2024-04", standardComp(25000))
	calculate(t, f.svc, "emp-b", "2024-04", salesComp(salary.CareerStageEstablished, 35, 5))
	calculate(t, f.svc, "emp-c", "2024-05", standardComp(25000))
	_, err := f.svc.ApprovePayroll(ctx, payroll.TransitionPayrollRequest{CompanyID: companyID, ID: a.ID})
	require.NoError(t, err)

	summary, err := f.svc.GetPayrollSummary(ctx, companyID, "2024-04")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalRecords)
	assert.Equal(t, 1, summary.CountByStatus[payroll.PayrollStatusApproved])
	assert.Equal(t, 1, summary.CountByStatus[payroll.PayrollStatusCalculated])
	assert.Equal(t, salary.Rupees(34500+117750), summary.TotalGross)
	assert.Equal(t, salary.Rupees(30960+117200), summary.TotalNet)

	_, err = f.svc.GetPayrollSummary(ctx, companyID, "April")
	assert.ErrorIs(t, err, payroll.ErrInvalidMonth)
}
