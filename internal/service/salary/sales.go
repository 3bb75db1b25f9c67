package salary

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
)

// SalesCalculator handles commission-based employees. Pay is a stage-dependent
// fixed component plus tiered commission, milestone and referral bonuses, with
// flat welfare and communication deductions instead of statutory ones.
type SalesCalculator struct {
	tables *salary.Tables
}

func NewSalesCalculator(tables *salary.Tables) *SalesCalculator {
	return &SalesCalculator{tables: tables}
}

func (c *SalesCalculator) Calculate(in salary.SalesInput) (salary.Breakdown, error) {
	if err := in.Validate(); err != nil {
		return salary.Breakdown{}, err
	}
	in.CareerStage, _ = salary.ParseCareerStage(string(in.CareerStage))

	fixed := c.FixedComponent(in.CareerStage)
	tiers, commission := c.Commission(in.SalesCount)
	milestone := c.MilestoneBonus(in.CareerStage, in.SalesCount)
	counted, referral := c.ReferralBonus(in.CareerStage, in.ReferralCount)

	earnings := []salary.LineItem{
		{Code: salary.CodeBaseSalary, Label: "Base Salary", Amount: fixed.BaseSalary},
		{Code: salary.CodeSkillAllowance, Label: "Skill Allowance", Amount: fixed.SkillAllowance},
		{Code: salary.CodeMedicalAllowance, Label: "Medical Allowance", Amount: fixed.MedicalAllowance},
		{Code: salary.CodeWellnessAllowance, Label: "Wellness Allowance", Amount: fixed.WellnessAllowance},
		{Code: salary.CodeCommission, Label: "Sales Commission", Amount: commission},
		{Code: salary.CodeMilestoneBonus, Label: "Milestone Bonus", Amount: milestone},
		{Code: salary.CodeReferralBonus, Label: "Referral Bonus", Amount: referral},
	}
	deductions := []salary.LineItem{
		{Code: salary.CodeWelfareFund, Label: "Welfare Fund", Amount: c.tables.Sales.WelfareFund},
		{Code: salary.CodeCommunication, Label: "Communication", Amount: c.tables.Sales.Communication},
	}

	b := salary.NewBreakdown(salary.SalaryTypeSales, earnings, deductions)
	b.CareerStage = in.CareerStage
	b.TablesVersion = c.tables.Version
	b.Sales = &salary.SalesDetail{
		Fixed:            fixed,
		Commission:       tiers,
		TotalCommission:  commission,
		MilestoneBonus:   milestone,
		ReferralsCounted: counted,
		ReferralBonus:    referral,
	}
	if err := b.Verify(); err != nil {
		return salary.Breakdown{}, err
	}
	return b, nil
}

// FixedComponent is the stage base pay plus the allowances every stage gets.
func (c *SalesCalculator) FixedComponent(stage salary.CareerStage) salary.FixedComponent {
	s := c.tables.Sales
	f := salary.FixedComponent{
		BaseSalary:        s.BasePay[stage],
		SkillAllowance:    s.SkillAllowance,
		MedicalAllowance:  s.MedicalAllowance,
		WellnessAllowance: s.WellnessAllowance,
	}
	f.Total = salary.Sum(f.BaseSalary, f.SkillAllowance, f.MedicalAllowance, f.WellnessAllowance)
	return f
}

// Commission walks the tiers in ascending order, letting each absorb as many
// of the remaining sales as it has room for.
func (c *SalesCalculator) Commission(sales int) ([]salary.CommissionTierLine, salary.Money) {
	lines := make([]salary.CommissionTierLine, 0, len(c.tables.Sales.Commission))
	var total salary.Money

	remaining := sales
	for _, tier := range c.tables.Sales.Commission {
		if remaining <= 0 {
			break
		}
		consumed := remaining
		if capacity := tier.Capacity(); capacity >= 0 && consumed > capacity {
			consumed = capacity
		}
		amount := tier.RatePerSale.Times(int64(consumed))
		lines = append(lines, salary.CommissionTierLine{
			Tier:        tier.Tier,
			Range:       tier.Range(),
			RatePerSale: tier.RatePerSale,
			SalesCount:  consumed,
			Commission:  amount,
		})
		total += amount
		remaining -= consumed
	}
	return lines, total
}

// MilestoneBonus adds every milestone the sales count has reached.
func (c *SalesCalculator) MilestoneBonus(stage salary.CareerStage, sales int) salary.Money {
	var bonus salary.Money
	for _, m := range c.tables.Sales.Milestones[stage] {
		if sales >= m.AtSale {
			bonus += m.Bonus
		}
	}
	return bonus
}

// ReferralBonus sums the amounts for the counted referrals, averages over the
// divisor and only then applies the cap. It returns how many referrals counted.
func (c *SalesCalculator) ReferralBonus(stage salary.CareerStage, referrals int) (int, salary.Money) {
	r := c.tables.Sales.Referral
	if stage != r.EligibleStage || referrals <= 0 {
		return 0, 0
	}

	counted := min(referrals, len(r.Amounts))
	bonus := salary.Sum(r.Amounts[:counted]...).DivRound(r.Divisor)
	if bonus > r.Cap {
		bonus = r.Cap
	}
	return counted, bonus
}
