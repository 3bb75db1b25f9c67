package salary

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

// SalaryType selects the calculator used for an employee.
type SalaryType string

const (
	SalaryTypeStandard SalaryType = "STANDARD"
	SalaryTypeSales    SalaryType = "SALES"
)

// ParseSalaryType accepts only the exact enum literals.
func ParseSalaryType(s string) (SalaryType, error) {
	switch t := SalaryType(s); t {
	case SalaryTypeStandard, SalaryTypeSales:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSalaryType, s)
}

// CareerStage gates base pay and bonus rules on the sales path.
type CareerStage string

const (
	CareerStageProbation   CareerStage = "PROBATION"
	CareerStageEstablished CareerStage = "ESTABLISHED"
)

// ParseCareerStage accepts the enum literals and the lowercase literals
// employee records carry ("probation", "established"). Any other spelling,
// including "Established" or padded values, is rejected.
func ParseCareerStage(s string) (CareerStage, error) {
	switch s {
	case "PROBATION", "probation":
		return CareerStageProbation, nil
	case "ESTABLISHED", "established":
		return CareerStageEstablished, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCareerStage, s)
}

func (c CareerStage) IsValid() bool {
	return c == CareerStageProbation || c == CareerStageEstablished
}

// Upper bounds on inputs. They keep every intermediate product well inside
// int64 paise.
const (
	MaxMonthlyAmount Money = 100_000_000 * 100
	MaxSalesCount          = 100_000
	MaxReferralCount       = 100_000
)

// StandardInput is the compensation consumed by the standard calculator.
// IncomeTax and OtherDeductions are supplied by the caller and passed through.
type StandardInput struct {
	BasicSalary      Money
	SpecialAllowance Money
	OtherAllowance   Money
	IncomeTax        Money
	OtherDeductions  Money
}

func (i StandardInput) Validate() error {
	var errs validator.ValidationErrors

	if i.BasicSalary <= 0 {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "basic_salary must be greater than zero"})
	} else if i.BasicSalary > MaxMonthlyAmount {
		errs = append(errs, exceedsMax("basic_salary"))
	}
	for _, f := range []struct {
		field string
		value Money
	}{
		{"special_allowance", i.SpecialAllowance},
		{"other_allowance", i.OtherAllowance},
		{"income_tax", i.IncomeTax},
		{"other_deductions", i.OtherDeductions},
	} {
		if f.value.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: f.field, Message: f.field + " must not be negative"})
		} else if f.value > MaxMonthlyAmount {
			errs = append(errs, exceedsMax(f.field))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SalesInput is the compensation consumed by the sales calculator.
type SalesInput struct {
	CareerStage   CareerStage
	SalesCount    int
	ReferralCount int
}

func (i SalesInput) Validate() error {
	var errs validator.ValidationErrors

	if _, err := ParseCareerStage(string(i.CareerStage)); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "career_stage",
			Message: fmt.Sprintf("career_stage must be %s or %s, got %q", CareerStageProbation, CareerStageEstablished, i.CareerStage),
		})
	}
	if i.SalesCount < 0 {
		errs = append(errs, validator.ValidationError{Field: "sales_count", Message: "sales_count must not be negative"})
	} else if i.SalesCount > MaxSalesCount {
		errs = append(errs, validator.ValidationError{Field: "sales_count", Message: fmt.Sprintf("sales_count must not exceed %d", MaxSalesCount)})
	}
	if i.ReferralCount < 0 {
		errs = append(errs, validator.ValidationError{Field: "referral_count", Message: "referral_count must not be negative"})
	} else if i.ReferralCount > MaxReferralCount {
		errs = append(errs, validator.ValidationError{Field: "referral_count", Message: fmt.Sprintf("referral_count must not exceed %d", MaxReferralCount)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func exceedsMax(field string) validator.ValidationError {
	return validator.ValidationError{Field: field, Message: fmt.Sprintf("%s must not exceed %s", field, MaxMonthlyAmount)}
}

// Compensation is the per-employee snapshot handed to the dispatcher. Only the
// fields relevant to SalaryType are read.
type Compensation struct {
	SalaryType       SalaryType  `json:"salary_type"`
	CareerStage      CareerStage `json:"career_stage,omitempty"`
	BasicSalary      Money       `json:"basic_salary"`
	SpecialAllowance Money       `json:"special_allowance"`
	OtherAllowance   Money       `json:"other_allowance"`
	IncomeTax        Money       `json:"income_tax"`
	OtherDeductions  Money       `json:"other_deductions"`
	SalesCount       int         `json:"sales_count"`
	ReferralCount    int         `json:"referral_count"`
}

func (c Compensation) Standard() StandardInput {
	return StandardInput{
		BasicSalary:      c.BasicSalary,
		SpecialAllowance: c.SpecialAllowance,
		OtherAllowance:   c.OtherAllowance,
		IncomeTax:        c.IncomeTax,
		OtherDeductions:  c.OtherDeductions,
	}
}

func (c Compensation) Sales() SalesInput {
	return SalesInput{
		CareerStage:   c.CareerStage,
		SalesCount:    c.SalesCount,
		ReferralCount: c.ReferralCount,
	}
}
