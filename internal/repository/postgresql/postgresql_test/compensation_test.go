package postgresql_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompensationRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewCompensationRepository(setup.DB)
	ctx := context.Background()

	seed := []employee.EmployeeCompensation{
		{
			EmployeeID: "emp-2", CompanyID: testCompanyID, EmployeeCode: "E002", FullName: "Ravi Kumar",
			Compensation: salary.Compensation{
				SalaryType:    salary.SalaryTypeSales,
				CareerStage:   salary.CareerStageEstablished,
				SalesCount:    35,
				ReferralCount: 4,
			},
		},
		{
			EmployeeID: "emp-1", CompanyID: testCompanyID, EmployeeCode: "E001", FullName: "Asha Rao",
			Compensation: salary.Compensation{SalaryType: salary.SalaryTypeStandard, BasicSalary: salary.MustParseMoney("12345.67")},
		},
		{
			EmployeeID: "emp-3", CompanyID: testCompanyID, EmployeeCode: "E003", FullName: "Left Already",
			EmploymentStatus: employee.EmploymentStatusTerminated,
			Compensation:     salary.Compensation{SalaryType: salary.SalaryTypeStandard, BasicSalary: salary.Rupees(20000)},
		},
	}
	for _, c := range seed {
		_, err := repo.UpsertCompensation(ctx, c)
		require.NoError(t, err)
	}

	got, err := repo.GetCompensation(ctx, "emp-1", testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, salary.MustParseMoney("12345.67"), got.Compensation.BasicSalary)
	assert.True(t, got.IsActive())

	sales, err := repo.GetCompensation(ctx, "emp-2", testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, salary.CareerStageEstablished, sales.Compensation.CareerStage)
	assert.Equal(t, 35, sales.Compensation.SalesCount)

	_, err = repo.GetCompensation(ctx, "emp-1", "company-b")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	active, err := repo.ListActiveCompensations(ctx, testCompanyID, nil)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "E001", active[0].EmployeeCode)
	assert.Equal(t, "E002", active[1].EmployeeCode)

	selected, err := repo.ListActiveCompensations(ctx, testCompanyID, []string{"emp-2", "emp-3"})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "emp-2", selected[0].EmployeeID)
}
