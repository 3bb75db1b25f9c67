package salary_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	salarysvc "github.com/cmlabs-hris/payroll-engine-go/internal/service/salary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator_Dispatch(t *testing.T) {
	calc := salarysvc.NewCalculator(salary.DefaultTables())

	std, err := calc.Calculate(salary.Compensation{
		SalaryType:  salary.SalaryTypeStandard,
		BasicSalary: salary.Rupees(25000),
		// ignored on the standard path
		SalesCount: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, salary.SalaryTypeStandard, std.SalaryType)
	assert.Equal(t, salary.Rupees(30960), std.Net)

	sales, err := calc.Calculate(salary.Compensation{
		SalaryType:    salary.SalaryTypeSales,
		CareerStage:   salary.CareerStageEstablished,
		SalesCount:    35,
		ReferralCount: 5,
		// ignored on the sales path
		BasicSalary: salary.Rupees(99999),
	})
	require.NoError(t, err)
	assert.Equal(t, salary.SalaryTypeSales, sales.SalaryType)
	assert.Equal(t, salary.Rupees(117750), sales.Gross)
	assert.Equal(t, "2024-25", sales.TablesVersion)
}

func TestCalculator_UnknownSalaryType(t *testing.T) {
	calc := salarysvc.NewCalculator(salary.DefaultTables())

	for _, st := range []salary.SalaryType{"", "standard", "CONTRACT"} {
		b, err := calc.Calculate(salary.Compensation{SalaryType: st, BasicSalary: salary.Rupees(1000)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, salary.ErrUnknownSalaryType), "salary type %q", st)
		assert.Equal(t, salary.Breakdown{}, b)
	}
}

func TestCalculator_Deterministic(t *testing.T) {
	calc := salarysvc.NewCalculator(salary.DefaultTables())

	inputs := []salary.Compensation{
		{SalaryType: salary.SalaryTypeStandard, BasicSalary: salary.MustParseMoney("12345.67"), SpecialAllowance: salary.Rupees(321), IncomeTax: salary.Rupees(150)},
		{SalaryType: salary.SalaryTypeSales, CareerStage: salary.CareerStageEstablished, SalesCount: 77, ReferralCount: 2},
		{SalaryType: salary.SalaryTypeSales, CareerStage: salary.CareerStageProbation, SalesCount: 5},
	}
	for _, in := range inputs {
		first, err := calc.Calculate(in)
		require.NoError(t, err)
		second, err := calc.Calculate(in)
		require.NoError(t, err)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
		assert.Equal(t, first, second)
	}
}

func TestCalculator_ConcurrentUse(t *testing.T) {
	calc := salarysvc.NewCalculator(salary.DefaultTables())
	in := salary.Compensation{SalaryType: salary.SalaryTypeSales, CareerStage: salary.CareerStageEstablished, SalesCount: 35, ReferralCount: 5}

	want, err := calc.Calculate(in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]salary.Breakdown, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = calc.Calculate(in)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestCalculator_EmployerCost(t *testing.T) {
	calc := salarysvc.NewCalculator(salary.DefaultTables())

	above, err := calc.Calculate(salary.Compensation{SalaryType: salary.SalaryTypeStandard, BasicSalary: salary.Rupees(25000)})
	require.NoError(t, err)
	ec := calc.EmployerCost(above)
	assert.Equal(t, salary.Rupees(3240), ec.ProvidentFund)
	assert.Equal(t, salary.Money(0), ec.ESI)
	assert.Equal(t, salary.Rupees(37740), ec.Monthly)
	assert.Equal(t, salary.Rupees(452880), ec.Annual)
	assert.Equal(t, salary.Rupees(414000), above.AnnualCTC, "annual CTC stays gross times twelve")

	below, err := calc.Calculate(salary.Compensation{SalaryType: salary.SalaryTypeStandard, BasicSalary: salary.Rupees(10000)})
	require.NoError(t, err)
	ec = calc.EmployerCost(below)
	assert.Equal(t, salary.Rupees(1296), ec.ProvidentFund)
	assert.Equal(t, salary.MustParseMoney("448.50"), ec.ESI)

	sales, err := calc.Calculate(salary.Compensation{SalaryType: salary.SalaryTypeSales, CareerStage: salary.CareerStageProbation, SalesCount: 1})
	require.NoError(t, err)
	ec = calc.EmployerCost(sales)
	assert.Equal(t, salary.Money(0), ec.ProvidentFund+ec.ESI)
	assert.Equal(t, sales.Gross, ec.Monthly)
}
