package salary

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

// StatutoryCalculator computes PT, PF, ESI and income tax against injected tables.
type StatutoryCalculator struct {
	tables *salary.Tables
}

func NewStatutoryCalculator(tables *salary.Tables) *StatutoryCalculator {
	return &StatutoryCalculator{tables: tables}
}

// ProfessionalTax looks up the band containing gross.
func (c *StatutoryCalculator) ProfessionalTax(gross salary.Money) (salary.Money, error) {
	if gross.IsNegative() {
		return 0, validator.ValidationErrors{{Field: "gross", Message: "gross must not be negative"}}
	}

	bands := c.tables.ProfessionalTax.Bands
	band := bands[len(bands)-1]
	for _, b := range bands {
		if b.UpTo == 0 || gross <= b.UpTo {
			band = b
			break
		}
	}

	if band.Rate == 0 {
		return band.Flat, nil
	}
	tax := band.Rate.Of(gross)
	if band.Cap > 0 && tax > band.Cap {
		tax = band.Cap
	}
	return tax, nil
}

// ProvidentFund is the employee share on basic plus DA. No wage ceiling applies.
func (c *StatutoryCalculator) ProvidentFund(basic, da salary.Money) salary.Money {
	return c.tables.PFRate.Of(basic + da)
}

// ESI applies up to and including the ceiling and drops to zero above it.
func (c *StatutoryCalculator) ESI(gross salary.Money) salary.Money {
	if gross > c.tables.ESICeiling {
		return 0
	}
	return c.tables.ESIRate.Of(gross)
}

// IncomeTax passes the caller-supplied monthly amount through unchanged.
func (c *StatutoryCalculator) IncomeTax(supplied salary.Money) (salary.Money, error) {
	if supplied.IsNegative() {
		return 0, validator.ValidationErrors{{Field: "income_tax", Message: "income_tax must not be negative"}}
	}
	return supplied, nil
}

// EstimateAnnualIncomeTax applies the progressive slabs to annual income after
// the standard deduction. It is a helper for callers that need to derive the
// supplied income tax figure; the salary calculators never call it.
func (c *StatutoryCalculator) EstimateAnnualIncomeTax(annual salary.Money) salary.Money {
	taxable := annual - c.tables.StandardDeduction
	if taxable <= 0 {
		return 0
	}

	var tax, lower salary.Money
	for _, slab := range c.tables.IncomeTax {
		upper := slab.UpTo
		if upper == 0 || taxable < upper {
			upper = taxable
		}
		if upper > lower {
			tax += slab.Rate.Of(upper - lower)
		}
		if upper == taxable {
			break
		}
		lower = slab.UpTo
	}
	return tax
}

// MonthlyIncomeTax spreads the annual estimate over twelve months.
func (c *StatutoryCalculator) MonthlyIncomeTax(annual salary.Money) salary.Money {
	return c.EstimateAnnualIncomeTax(annual).DivRound(12)
}
