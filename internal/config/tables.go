package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// amount is a decimal scalar in a tables file. Rupee amounts and percentages
// are both written in human units ("21000", "0.75").
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", n.Line)
	}
	d, err := decimal.NewFromString(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid number %q", n.Line, n.Value)
	}
	a.Decimal = d
	return nil
}

func (a amount) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: a.String(), Style: yaml.DoubleQuotedStyle}, nil
}

func money(m salary.Money) *amount { return &amount{m.Decimal()} }
func rate(r salary.Rate) *amount   { return &amount{r.Percent()} }

type tablesFile struct {
	Version         string              `yaml:"version"`
	ProfessionalTax *ptFile             `yaml:"professional_tax,omitempty"`
	PFRate          *amount             `yaml:"pf_rate,omitempty"`
	ESIRate         *amount             `yaml:"esi_rate,omitempty"`
	ESICeiling      *amount             `yaml:"esi_ceiling,omitempty"`
	IncomeTax       *incomeTaxFile      `yaml:"income_tax,omitempty"`
	Employer        *employerFile       `yaml:"employer,omitempty"`
	Standard        *standardTablesFile `yaml:"standard,omitempty"`
	Sales           *salesTablesFile    `yaml:"sales,omitempty"`
}

type ptFile struct {
	Scheme string       `yaml:"scheme,omitempty"`
	Bands  []ptBandFile `yaml:"bands,omitempty"`
}

type ptBandFile struct {
	UpTo *amount `yaml:"up_to,omitempty"`
	Flat *amount `yaml:"flat,omitempty"`
	Rate *amount `yaml:"rate,omitempty"`
	Cap  *amount `yaml:"cap,omitempty"`
}

type incomeTaxFile struct {
	StandardDeduction *amount    `yaml:"standard_deduction,omitempty"`
	Slabs             []slabFile `yaml:"slabs,omitempty"`
}

type slabFile struct {
	UpTo *amount `yaml:"up_to,omitempty"`
	Rate amount  `yaml:"rate"`
}

type employerFile struct {
	PFRate  *amount `yaml:"pf_rate,omitempty"`
	ESIRate *amount `yaml:"esi_rate,omitempty"`
}

type standardTablesFile struct {
	HRARate *amount `yaml:"hra_rate,omitempty"`
	DARate  *amount `yaml:"da_rate,omitempty"`
}

type salesTablesFile struct {
	BasePay    map[string]amount          `yaml:"base_pay,omitempty"`
	Allowances *allowancesFile            `yaml:"allowances,omitempty"`
	Commission []tierFile                 `yaml:"commission,omitempty"`
	Milestones map[string][]milestoneFile `yaml:"milestones,omitempty"`
	Referral   *referralFile              `yaml:"referral,omitempty"`
	Deductions *salesDeductionsFile       `yaml:"deductions,omitempty"`
}

type allowancesFile struct {
	Skill    *amount `yaml:"skill,omitempty"`
	Medical  *amount `yaml:"medical,omitempty"`
	Wellness *amount `yaml:"wellness,omitempty"`
}

type tierFile struct {
	Tier        int    `yaml:"tier"`
	From        int    `yaml:"from"`
	To          int    `yaml:"to,omitempty"`
	RatePerSale amount `yaml:"rate_per_sale"`
}

type milestoneFile struct {
	AtSale int    `yaml:"at_sale"`
	Bonus  amount `yaml:"bonus"`
}

type referralFile struct {
	Amounts       []amount `yaml:"amounts,omitempty"`
	Divisor       int64    `yaml:"divisor,omitempty"`
	Cap           *amount  `yaml:"cap,omitempty"`
	EligibleStage string   `yaml:"eligible_stage,omitempty"`
}

type salesDeductionsFile struct {
	WelfareFund   *amount `yaml:"welfare_fund,omitempty"`
	Communication *amount `yaml:"communication,omitempty"`
}

// LoadTables reads statutory tables from a YAML file. Keys left out of the
// file keep their built-in values. An empty path returns the defaults.
func LoadTables(path string) (*salary.Tables, error) {
	if path == "" {
		return salary.DefaultTables(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}
	t, err := ParseTables(data)
	if err != nil {
		return nil, fmt.Errorf("tables file %s: %w", path, err)
	}
	return t, nil
}

// ParseTables decodes a YAML tables document over the built-in defaults and
// validates the result.
func ParseTables(data []byte) (*salary.Tables, error) {
	var f tablesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", salary.ErrInvalidTables, err)
	}

	t := salary.DefaultTables()
	if err := f.apply(t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MarshalTables renders t in the format ParseTables reads.
func MarshalTables(t *salary.Tables) ([]byte, error) {
	f := tablesFile{
		Version:    t.Version,
		PFRate:     rate(t.PFRate),
		ESIRate:    rate(t.ESIRate),
		ESICeiling: money(t.ESICeiling),
		IncomeTax:  &incomeTaxFile{StandardDeduction: money(t.StandardDeduction)},
		Employer:   &employerFile{PFRate: rate(t.EmployerPFRate), ESIRate: rate(t.EmployerESIRate)},
		Standard:   &standardTablesFile{HRARate: rate(t.Standard.HRARate), DARate: rate(t.Standard.DARate)},
	}

	f.ProfessionalTax = &ptFile{Scheme: string(t.ProfessionalTax.Scheme)}
	for _, b := range t.ProfessionalTax.Bands {
		band := ptBandFile{}
		if b.UpTo != 0 {
			band.UpTo = money(b.UpTo)
		}
		if b.Rate != 0 {
			band.Rate = rate(b.Rate)
			if b.Cap != 0 {
				band.Cap = money(b.Cap)
			}
		} else {
			band.Flat = money(b.Flat)
		}
		f.ProfessionalTax.Bands = append(f.ProfessionalTax.Bands, band)
	}

	for _, s := range t.IncomeTax {
		slab := slabFile{Rate: *rate(s.Rate)}
		if s.UpTo != 0 {
			slab.UpTo = money(s.UpTo)
		}
		f.IncomeTax.Slabs = append(f.IncomeTax.Slabs, slab)
	}

	s := t.Sales
	sales := &salesTablesFile{
		BasePay: make(map[string]amount, len(s.BasePay)),
		Allowances: &allowancesFile{
			Skill:    money(s.SkillAllowance),
			Medical:  money(s.MedicalAllowance),
			Wellness: money(s.WellnessAllowance),
		},
		Milestones: make(map[string][]milestoneFile, len(s.Milestones)),
		Referral: &referralFile{
			Divisor:       s.Referral.Divisor,
			Cap:           money(s.Referral.Cap),
			EligibleStage: string(s.Referral.EligibleStage),
		},
		Deductions: &salesDeductionsFile{
			WelfareFund:   money(s.WelfareFund),
			Communication: money(s.Communication),
		},
	}
	for stage, pay := range s.BasePay {
		sales.BasePay[string(stage)] = *money(pay)
	}
	for _, tier := range s.Commission {
		sales.Commission = append(sales.Commission, tierFile{
			Tier:        tier.Tier,
			From:        tier.From,
			To:          tier.To,
			RatePerSale: *money(tier.RatePerSale),
		})
	}
	for stage, ms := range s.Milestones {
		for _, m := range ms {
			sales.Milestones[string(stage)] = append(sales.Milestones[string(stage)], milestoneFile{AtSale: m.AtSale, Bonus: *money(m.Bonus)})
		}
	}
	for _, a := range s.Referral.Amounts {
		sales.Referral.Amounts = append(sales.Referral.Amounts, *money(a))
	}
	f.Sales = sales

	return yaml.Marshal(&f)
}

func (f *tablesFile) apply(t *salary.Tables) error {
	var err error
	setRate := func(dst *salary.Rate, src *amount, field string) {
		if src == nil || err != nil {
			return
		}
		r, rerr := salary.RateFromPercent(src.Decimal)
		if rerr != nil {
			err = fmt.Errorf("%w: %s: %w", salary.ErrInvalidTables, field, rerr)
			return
		}
		*dst = r
	}
	setMoney := func(dst *salary.Money, src *amount) {
		if src != nil {
			*dst = salary.MoneyFromDecimal(src.Decimal)
		}
	}

	if f.Version != "" {
		t.Version = f.Version
	}

	if pt := f.ProfessionalTax; pt != nil {
		if pt.Scheme != "" {
			table, perr := salary.PTSchedule(salary.PTScheme(pt.Scheme))
			if perr != nil {
				return perr
			}
			t.ProfessionalTax = table
		}
		if len(pt.Bands) > 0 {
			bands := make([]salary.PTBand, len(pt.Bands))
			for i, b := range pt.Bands {
				setMoney(&bands[i].UpTo, b.UpTo)
				setMoney(&bands[i].Flat, b.Flat)
				setRate(&bands[i].Rate, b.Rate, fmt.Sprintf("professional_tax.bands[%d].rate", i))
				setMoney(&bands[i].Cap, b.Cap)
			}
			t.ProfessionalTax.Bands = bands
		}
	}

	setRate(&t.PFRate, f.PFRate, "pf_rate")
	setRate(&t.ESIRate, f.ESIRate, "esi_rate")
	setMoney(&t.ESICeiling, f.ESICeiling)

	if it := f.IncomeTax; it != nil {
		setMoney(&t.StandardDeduction, it.StandardDeduction)
		if len(it.Slabs) > 0 {
			slabs := make([]salary.IncomeTaxSlab, len(it.Slabs))
			for i, s := range it.Slabs {
				setMoney(&slabs[i].UpTo, s.UpTo)
				rateCopy := s.Rate
				setRate(&slabs[i].Rate, &rateCopy, fmt.Sprintf("income_tax.slabs[%d].rate", i))
			}
			t.IncomeTax = slabs
		}
	}

	if e := f.Employer; e != nil {
		setRate(&t.EmployerPFRate, e.PFRate, "employer.pf_rate")
		setRate(&t.EmployerESIRate, e.ESIRate, "employer.esi_rate")
	}

	if st := f.Standard; st != nil {
		setRate(&t.Standard.HRARate, st.HRARate, "standard.hra_rate")
		setRate(&t.Standard.DARate, st.DARate, "standard.da_rate")
	}

	if s := f.Sales; s != nil {
		if err := s.apply(&t.Sales); err != nil {
			return err
		}
	}

	return err
}

// parseTableStage only accepts the enum literals; table files are not
// employee records.
func parseTableStage(name string) (salary.CareerStage, error) {
	if stage := salary.CareerStage(name); stage.IsValid() {
		return stage, nil
	}
	return "", fmt.Errorf("%w: %q", salary.ErrUnknownCareerStage, name)
}

func (s *salesTablesFile) apply(t *salary.SalesTables) error {
	for name, pay := range s.BasePay {
		stage, err := parseTableStage(name)
		if err != nil {
			return fmt.Errorf("%w: sales.base_pay: %w", salary.ErrInvalidTables, err)
		}
		t.BasePay[stage] = salary.MoneyFromDecimal(pay.Decimal)
	}

	if a := s.Allowances; a != nil {
		if a.Skill != nil {
			t.SkillAllowance = salary.MoneyFromDecimal(a.Skill.Decimal)
		}
		if a.Medical != nil {
			t.MedicalAllowance = salary.MoneyFromDecimal(a.Medical.Decimal)
		}
		if a.Wellness != nil {
			t.WellnessAllowance = salary.MoneyFromDecimal(a.Wellness.Decimal)
		}
	}

	if len(s.Commission) > 0 {
		tiers := make([]salary.CommissionTier, len(s.Commission))
		for i, tier := range s.Commission {
			tiers[i] = salary.CommissionTier{
				Tier:        tier.Tier,
				From:        tier.From,
				To:          tier.To,
				RatePerSale: salary.MoneyFromDecimal(tier.RatePerSale.Decimal),
			}
		}
		t.Commission = tiers
	}

	for name, ms := range s.Milestones {
		stage, err := parseTableStage(name)
		if err != nil {
			return fmt.Errorf("%w: sales.milestones: %w", salary.ErrInvalidTables, err)
		}
		milestones := make([]salary.Milestone, len(ms))
		for i, m := range ms {
			milestones[i] = salary.Milestone{AtSale: m.AtSale, Bonus: salary.MoneyFromDecimal(m.Bonus.Decimal)}
		}
		t.Milestones[stage] = milestones
	}

	if r := s.Referral; r != nil {
		if len(r.Amounts) > 0 {
			amounts := make([]salary.Money, len(r.Amounts))
			for i, a := range r.Amounts {
				amounts[i] = salary.MoneyFromDecimal(a.Decimal)
			}
			t.Referral.Amounts = amounts
		}
		if r.Divisor != 0 {
			t.Referral.Divisor = r.Divisor
		}
		if r.Cap != nil {
			t.Referral.Cap = salary.MoneyFromDecimal(r.Cap.Decimal)
		}
		if r.EligibleStage != "" {
			t.Referral.EligibleStage = salary.CareerStage(r.EligibleStage)
		}
	}

	if d := s.Deductions; d != nil {
		if d.WelfareFund != nil {
			t.WelfareFund = salary.MoneyFromDecimal(d.WelfareFund.Decimal)
		}
		if d.Communication != nil {
			t.Communication = salary.MoneyFromDecimal(d.Communication.Decimal)
		}
	}
	return nil
}
