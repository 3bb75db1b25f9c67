package salary

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
)

// Calculator is the single entry point for computing a month's salary. It
// holds no mutable state and is safe for concurrent use.
type Calculator struct {
	tables    *salary.Tables
	statutory *StatutoryCalculator
	standard  *StandardCalculator
	sales     *SalesCalculator
}

func NewCalculator(tables *salary.Tables) *Calculator {
	statutory := NewStatutoryCalculator(tables)
	return &Calculator{
		tables:    tables,
		statutory: statutory,
		standard:  NewStandardCalculator(tables, statutory),
		sales:     NewSalesCalculator(tables),
	}
}

// Calculate routes on the salary type. Any type other than STANDARD or SALES
// fails rather than falling back to a default calculator.
func (c *Calculator) Calculate(comp salary.Compensation) (salary.Breakdown, error) {
	switch comp.SalaryType {
	case salary.SalaryTypeStandard:
		return c.standard.Calculate(comp.Standard())
	case salary.SalaryTypeSales:
		return c.sales.Calculate(comp.Sales())
	default:
		return salary.Breakdown{}, fmt.Errorf("%w: %q", salary.ErrUnknownSalaryType, comp.SalaryType)
	}
}

func (c *Calculator) Tables() *salary.Tables {
	return c.tables
}

func (c *Calculator) Statutory() *StatutoryCalculator {
	return c.statutory
}

func (c *Calculator) Standard() *StandardCalculator {
	return c.standard
}

func (c *Calculator) Sales() *SalesCalculator {
	return c.sales
}

// EmployerCost is the employer-side contribution on top of gross pay.
type EmployerCost struct {
	ProvidentFund salary.Money `json:"provident_fund"`
	ESI           salary.Money `json:"esi"`
	Monthly       salary.Money `json:"monthly"`
	Annual        salary.Money `json:"annual"`
}

// EmployerCost reports employer PF and ESI for a standard breakdown. It is
// kept apart from Breakdown.AnnualCTC, which stays at gross times twelve.
// Sales breakdowns carry no statutory contributions.
func (c *Calculator) EmployerCost(b salary.Breakdown) EmployerCost {
	var ec EmployerCost
	if b.SalaryType == salary.SalaryTypeStandard {
		basic, _ := b.Earning(salary.CodeBasic)
		da, _ := b.Earning(salary.CodeDA)
		ec.ProvidentFund = c.tables.EmployerPFRate.Of(basic + da)
		if b.Gross <= c.tables.ESICeiling {
			ec.ESI = c.tables.EmployerESIRate.Of(b.Gross)
		}
	}
	ec.Monthly = b.Gross + ec.ProvidentFund + ec.ESI
	ec.Annual = ec.Monthly.Times(12)
	return ec
}
