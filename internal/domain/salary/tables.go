package salary

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

// PTScheme names the professional tax schedule in force.
type PTScheme string

const (
	PTSchemeFlat    PTScheme = "flat"
	PTSchemePercent PTScheme = "percent"
)

// PTBand covers gross salaries up to and including UpTo. UpTo of zero marks
// the open top band, which must be last. A band charges either Flat or Rate
// (optionally limited by Cap), never both.
type PTBand struct {
	UpTo Money
	Flat Money
	Rate Rate
	Cap  Money
}

type ProfessionalTaxTable struct {
	Scheme PTScheme
	Bands  []PTBand
}

// IncomeTaxSlab applies Rate to the slice of annual income up to UpTo.
type IncomeTaxSlab struct {
	UpTo Money
	Rate Rate
}

// CommissionTier pays RatePerSale for every sale numbered From..To. To of zero
// is the open top tier.
type CommissionTier struct {
	Tier        int
	From        int
	To          int
	RatePerSale Money
}

// Capacity is the number of sales the tier absorbs; -1 when unbounded.
func (t CommissionTier) Capacity() int {
	if t.To == 0 {
		return -1
	}
	return t.To - t.From + 1
}

func (t CommissionTier) Range() string {
	if t.To == 0 {
		return fmt.Sprintf("%d+", t.From)
	}
	return fmt.Sprintf("%d-%d", t.From, t.To)
}

// Milestone pays Bonus once the sales count reaches AtSale.
type Milestone struct {
	AtSale int
	Bonus  Money
}

// ReferralTable averages the first len(Amounts) referral amounts over Divisor
// months and caps the result.
type ReferralTable struct {
	Amounts       []Money
	Divisor       int64
	Cap           Money
	EligibleStage CareerStage
}

type StandardTables struct {
	HRARate Rate
	DARate  Rate
}

type SalesTables struct {
	BasePay           map[CareerStage]Money
	SkillAllowance    Money
	MedicalAllowance  Money
	WellnessAllowance Money
	Commission        []CommissionTier
	Milestones        map[CareerStage][]Milestone
	Referral          ReferralTable
	WelfareFund       Money
	Communication     Money
}

// Tables is the versioned statutory configuration. Calculators receive it at
// construction and never modify it.
type Tables struct {
	Version           string
	ProfessionalTax   ProfessionalTaxTable
	PFRate            Rate
	ESIRate           Rate
	ESICeiling        Money
	IncomeTax         []IncomeTaxSlab
	StandardDeduction Money
	EmployerPFRate    Rate
	EmployerESIRate   Rate
	Standard          StandardTables
	Sales             SalesTables
}

// FlatPTSchedule charges a fixed amount per gross band.
func FlatPTSchedule() ProfessionalTaxTable {
	return ProfessionalTaxTable{
		Scheme: PTSchemeFlat,
		Bands: []PTBand{
			{UpTo: Rupees(10000), Flat: 0},
			{UpTo: Rupees(15000), Flat: Rupees(100)},
			{UpTo: Rupees(20000), Flat: Rupees(150)},
			{UpTo: Rupees(25000), Flat: Rupees(200)},
			{UpTo: Rupees(30000), Flat: Rupees(250)},
			{Flat: Rupees(300)},
		},
	}
}

// PercentPTSchedule charges a percentage of gross, capped in the top band.
func PercentPTSchedule() ProfessionalTaxTable {
	return ProfessionalTaxTable{
		Scheme: PTSchemePercent,
		Bands: []PTBand{
			{UpTo: Rupees(10000), Rate: 0},
			{UpTo: Rupees(20000), Rate: Percent(1)},
			{Rate: Percent(2), Cap: Rupees(2500)},
		},
	}
}

// PTSchedule returns the built-in schedule for scheme.
func PTSchedule(scheme PTScheme) (ProfessionalTaxTable, error) {
	switch scheme {
	case PTSchemeFlat:
		return FlatPTSchedule(), nil
	case PTSchemePercent:
		return PercentPTSchedule(), nil
	}
	return ProfessionalTaxTable{}, fmt.Errorf("%w: unknown professional tax scheme %q", ErrInvalidTables, scheme)
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() *Tables {
	return &Tables{
		Version:         "2024-25",
		ProfessionalTax: FlatPTSchedule(),
		PFRate:          Percent(12),
		ESIRate:         75,
		ESICeiling:      Rupees(21000),
		IncomeTax: []IncomeTaxSlab{
			{UpTo: Rupees(250000), Rate: 0},
			{UpTo: Rupees(500000), Rate: Percent(5)},
			{UpTo: Rupees(1000000), Rate: Percent(20)},
			{Rate: Percent(30)},
		},
		StandardDeduction: Rupees(50000),
		EmployerPFRate:    Percent(12),
		EmployerESIRate:   325,
		Standard: StandardTables{
			HRARate: Percent(30),
			DARate:  Percent(8),
		},
		Sales: SalesTables{
			BasePay: map[CareerStage]Money{
				CareerStageProbation:   Rupees(5000),
				CareerStageEstablished: Rupees(13000),
			},
			SkillAllowance:    Rupees(1500),
			MedicalAllowance:  Rupees(1250),
			WellnessAllowance: Rupees(2500),
			Commission: []CommissionTier{
				{Tier: 1, From: 1, To: 12, RatePerSale: Rupees(1000)},
				{Tier: 2, From: 13, To: 20, RatePerSale: Rupees(2500)},
				{Tier: 3, From: 21, To: 30, RatePerSale: Rupees(3500)},
				{Tier: 4, From: 31, To: 40, RatePerSale: Rupees(4500)},
				{Tier: 5, From: 41, To: 50, RatePerSale: Rupees(5500)},
				{Tier: 6, From: 51, RatePerSale: Rupees(6500)},
			},
			Milestones: map[CareerStage][]Milestone{
				CareerStageProbation: {
					{AtSale: 4, Bonus: Rupees(500)},
					{AtSale: 8, Bonus: Rupees(500)},
				},
				CareerStageEstablished: {
					{AtSale: 3, Bonus: Rupees(500)},
					{AtSale: 8, Bonus: Rupees(500)},
				},
			},
			Referral: ReferralTable{
				Amounts:       []Money{Rupees(4500), Rupees(5500), Rupees(7000), Rupees(10000)},
				Divisor:       3,
				Cap:           Rupees(30000),
				EligibleStage: CareerStageEstablished,
			},
			WelfareFund:   Rupees(150),
			Communication: Rupees(400),
		},
	}
}

// Validate checks the structural rules the calculators rely on: ascending
// bands with one open top band, contiguous commission tiers starting at sale 1,
// and a positive referral divisor.
func (t *Tables) Validate() error {
	var errs validator.ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, validator.ValidationError{Field: field, Message: msg})
	}

	switch t.ProfessionalTax.Scheme {
	case PTSchemeFlat, PTSchemePercent:
	default:
		add("professional_tax.scheme", fmt.Sprintf("unknown scheme %q", t.ProfessionalTax.Scheme))
	}
	validateBands(t.ProfessionalTax.Bands, add)

	for _, r := range []struct {
		field string
		rate  Rate
	}{
		{"pf_rate", t.PFRate},
		{"esi_rate", t.ESIRate},
		{"employer_pf_rate", t.EmployerPFRate},
		{"employer_esi_rate", t.EmployerESIRate},
		{"standard.hra_rate", t.Standard.HRARate},
		{"standard.da_rate", t.Standard.DARate},
	} {
		if r.rate < 0 || r.rate > Percent(100) {
			add(r.field, "rate must be between 0% and 100%")
		}
	}
	if t.ESICeiling <= 0 {
		add("esi_ceiling", "esi_ceiling must be greater than zero")
	}

	if len(t.IncomeTax) == 0 {
		add("income_tax", "at least one slab is required")
	}
	var prevSlab Money
	for i, s := range t.IncomeTax {
		field := fmt.Sprintf("income_tax[%d]", i)
		last := i == len(t.IncomeTax)-1
		switch {
		case s.UpTo == 0 && !last:
			add(field, "only the last slab may be open")
		case s.UpTo != 0 && last:
			add(field, "the last slab must be open")
		case s.UpTo != 0 && s.UpTo <= prevSlab:
			add(field, "slabs must be ascending")
		}
		prevSlab = s.UpTo
	}

	validateSales(&t.Sales, add)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTables, errs)
	}
	return nil
}

func validateBands(bands []PTBand, add func(field, msg string)) {
	if len(bands) == 0 {
		add("professional_tax.bands", "at least one band is required")
		return
	}
	var prev Money
	for i, b := range bands {
		field := fmt.Sprintf("professional_tax.bands[%d]", i)
		last := i == len(bands)-1
		switch {
		case b.UpTo == 0 && !last:
			add(field, "only the last band may be open")
		case b.UpTo != 0 && last:
			add(field, "the last band must be open")
		case b.UpTo != 0 && b.UpTo <= prev:
			add(field, "bands must be ascending")
		}
		if b.Flat != 0 && b.Rate != 0 {
			add(field, "a band is either flat or percentage")
		}
		if b.Flat < 0 || b.Rate < 0 || b.Cap < 0 {
			add(field, "amounts must not be negative")
		}
		prev = b.UpTo
	}
}

func validateSales(s *SalesTables, add func(field, msg string)) {
	for _, stage := range []CareerStage{CareerStageProbation, CareerStageEstablished} {
		if _, ok := s.BasePay[stage]; !ok {
			add("sales.base_pay", fmt.Sprintf("missing base pay for %s", stage))
		}
	}

	if len(s.Commission) == 0 {
		add("sales.commission", "at least one tier is required")
	}
	next := 1
	for i, tier := range s.Commission {
		field := fmt.Sprintf("sales.commission[%d]", i)
		last := i == len(s.Commission)-1
		if tier.From != next {
			add(field, fmt.Sprintf("tier must start at sale %d", next))
		}
		switch {
		case tier.To == 0 && !last:
			add(field, "only the last tier may be open")
		case tier.To == 0:
		case last:
			add(field, "the last tier must be open")
		case tier.To < tier.From:
			add(field, "tier range is empty")
		}
		if tier.RatePerSale < 0 {
			add(field, "rate_per_sale must not be negative")
		}
		next = tier.To + 1
	}

	for stage, ms := range s.Milestones {
		for i, m := range ms {
			if m.AtSale <= 0 || m.Bonus < 0 {
				add(fmt.Sprintf("sales.milestones.%s[%d]", stage, i), "milestone needs a positive sale number and non-negative bonus")
			}
		}
	}

	if s.Referral.Divisor <= 0 {
		add("sales.referral.divisor", "divisor must be greater than zero")
	}
	if s.Referral.Cap < 0 {
		add("sales.referral.cap", "cap must not be negative")
	}
	if s.Referral.EligibleStage != "" && !s.Referral.EligibleStage.IsValid() {
		add("sales.referral.eligible_stage", fmt.Sprintf("unknown career stage %q", s.Referral.EligibleStage))
	}
}
