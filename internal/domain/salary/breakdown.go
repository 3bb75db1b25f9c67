package salary

import "fmt"

// Line item codes.
const (
	CodeBasic             = "basic"
	CodeHRA               = "hra"
	CodeDA                = "da"
	CodeSpecialAllowance  = "special_allowance"
	CodeOtherAllowance    = "other_allowance"
	CodeBaseSalary        = "base_salary"
	CodeSkillAllowance    = "skill_allowance"
	CodeMedicalAllowance  = "medical_allowance"
	CodeWellnessAllowance = "wellness_allowance"
	CodeCommission        = "commission"
	CodeMilestoneBonus    = "milestone_bonus"
	CodeReferralBonus     = "referral_bonus"

	CodePF              = "pf"
	CodeProfessionalTax = "professional_tax"
	CodeESI             = "esi"
	CodeIncomeTax       = "income_tax"
	CodeOtherDeductions = "other_deductions"
	CodeWelfareFund     = "welfare_fund"
	CodeCommunication   = "communication"
)

type LineItem struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Amount Money  `json:"amount"`
}

type FixedComponent struct {
	BaseSalary        Money `json:"base_salary"`
	SkillAllowance    Money `json:"skill_allowance"`
	MedicalAllowance  Money `json:"medical_allowance"`
	WellnessAllowance Money `json:"wellness_allowance"`
	Total             Money `json:"total"`
}

// CommissionTierLine records how many sales one tier absorbed.
type CommissionTierLine struct {
	Tier        int    `json:"tier"`
	Range       string `json:"range"`
	RatePerSale Money  `json:"rate_per_sale"`
	SalesCount  int    `json:"sales_count"`
	Commission  Money  `json:"commission"`
}

type SalesDetail struct {
	Fixed            FixedComponent       `json:"fixed"`
	Commission       []CommissionTierLine `json:"commission_tiers"`
	TotalCommission  Money                `json:"total_commission"`
	MilestoneBonus   Money                `json:"milestone_bonus"`
	ReferralsCounted int                  `json:"referrals_counted"`
	ReferralBonus    Money                `json:"referral_bonus"`
}

// Breakdown is the result of one salary calculation. It is a value: callers
// store it as produced and never edit the amounts.
type Breakdown struct {
	SalaryType      SalaryType   `json:"salary_type"`
	CareerStage     CareerStage  `json:"career_stage,omitempty"`
	TablesVersion   string       `json:"tables_version"`
	Earnings        []LineItem   `json:"earnings"`
	Gross           Money        `json:"gross"`
	Deductions      []LineItem   `json:"deductions"`
	TotalDeductions Money        `json:"total_deductions"`
	Net             Money        `json:"net"`
	AnnualCTC       Money        `json:"annual_ctc"`
	Sales           *SalesDetail `json:"sales,omitempty"`
}

// NewBreakdown totals the itemized sections and derives net pay and annual CTC.
func NewBreakdown(salaryType SalaryType, earnings, deductions []LineItem) Breakdown {
	b := Breakdown{
		SalaryType: salaryType,
		Earnings:   earnings,
		Deductions: deductions,
	}
	b.Gross = sumItems(earnings)
	b.TotalDeductions = sumItems(deductions)
	b.Net = b.Gross - b.TotalDeductions
	b.AnnualCTC = b.Gross.Times(12)
	return b
}

// Earning returns the amount of the earning with the given code.
func (b Breakdown) Earning(code string) (Money, bool) {
	return findItem(b.Earnings, code)
}

// Deduction returns the amount of the deduction with the given code.
func (b Breakdown) Deduction(code string) (Money, bool) {
	return findItem(b.Deductions, code)
}

// Verify checks the arithmetic relations every breakdown must satisfy. A
// failure means a calculator bug and wraps ErrComputationInvariant.
func (b Breakdown) Verify() error {
	if got := sumItems(b.Earnings); got != b.Gross {
		return fmt.Errorf("%w: gross %s != sum of earnings %s", ErrComputationInvariant, b.Gross, got)
	}
	if got := sumItems(b.Deductions); got != b.TotalDeductions {
		return fmt.Errorf("%w: total deductions %s != sum of deductions %s", ErrComputationInvariant, b.TotalDeductions, got)
	}
	if b.Net != b.Gross-b.TotalDeductions {
		return fmt.Errorf("%w: net %s != gross %s - deductions %s", ErrComputationInvariant, b.Net, b.Gross, b.TotalDeductions)
	}
	if b.Net.IsNegative() {
		return fmt.Errorf("%w: negative net pay %s", ErrComputationInvariant, b.Net)
	}
	for _, it := range append(append([]LineItem{}, b.Earnings...), b.Deductions...) {
		if it.Amount.IsNegative() {
			return fmt.Errorf("%w: negative line item %s = %s", ErrComputationInvariant, it.Code, it.Amount)
		}
	}
	if b.Sales != nil {
		var total Money
		for _, t := range b.Sales.Commission {
			total += t.Commission
		}
		if total != b.Sales.TotalCommission {
			return fmt.Errorf("%w: commission tiers sum %s != total commission %s", ErrComputationInvariant, total, b.Sales.TotalCommission)
		}
	}
	return nil
}

func sumItems(items []LineItem) Money {
	var total Money
	for _, it := range items {
		total += it.Amount
	}
	return total
}

func findItem(items []LineItem, code string) (Money, bool) {
	for _, it := range items {
		if it.Code == code {
			return it.Amount, true
		}
	}
	return 0, false
}
