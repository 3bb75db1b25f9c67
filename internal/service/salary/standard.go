package salary

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
)

// StandardCalculator handles salaried employees: HRA and DA are fixed
// percentages of basic, and the full statutory deductions apply.
type StandardCalculator struct {
	tables    *salary.Tables
	statutory *StatutoryCalculator
}

func NewStandardCalculator(tables *salary.Tables, statutory *StatutoryCalculator) *StandardCalculator {
	return &StandardCalculator{tables: tables, statutory: statutory}
}

func (c *StandardCalculator) Calculate(in salary.StandardInput) (salary.Breakdown, error) {
	if err := in.Validate(); err != nil {
		return salary.Breakdown{}, err
	}

	hra := c.tables.Standard.HRARate.Of(in.BasicSalary)
	da := c.tables.Standard.DARate.Of(in.BasicSalary)

	earnings := []salary.LineItem{
		{Code: salary.CodeBasic, Label: "Basic Salary", Amount: in.BasicSalary},
		{Code: salary.CodeHRA, Label: "House Rent Allowance", Amount: hra},
		{Code: salary.CodeDA, Label: "Dearness Allowance", Amount: da},
		{Code: salary.CodeSpecialAllowance, Label: "Special Allowance", Amount: in.SpecialAllowance},
		{Code: salary.CodeOtherAllowance, Label: "Other Allowance", Amount: in.OtherAllowance},
	}
	gross := salary.Sum(in.BasicSalary, hra, da, in.SpecialAllowance, in.OtherAllowance)

	pt, err := c.statutory.ProfessionalTax(gross)
	if err != nil {
		return salary.Breakdown{}, err
	}
	it, err := c.statutory.IncomeTax(in.IncomeTax)
	if err != nil {
		return salary.Breakdown{}, err
	}

	deductions := []salary.LineItem{
		{Code: salary.CodePF, Label: "Provident Fund", Amount: c.statutory.ProvidentFund(in.BasicSalary, da)},
		{Code: salary.CodeProfessionalTax, Label: "Professional Tax", Amount: pt},
		{Code: salary.CodeESI, Label: "Employee State Insurance", Amount: c.statutory.ESI(gross)},
		{Code: salary.CodeIncomeTax, Label: "Income Tax", Amount: it},
		{Code: salary.CodeOtherDeductions, Label: "Other Deductions", Amount: in.OtherDeductions},
	}

	b := salary.NewBreakdown(salary.SalaryTypeStandard, earnings, deductions)
	b.TablesVersion = c.tables.Version
	if err := b.Verify(); err != nil {
		return salary.Breakdown{}, err
	}
	return b, nil
}
