package main

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	salarysvc "github.com/cmlabs-hris/payroll-engine-go/internal/service/salary"
	"github.com/spf13/cobra"
)

type previewOutput struct {
	Breakdown    salary.Breakdown        `json:"breakdown"`
	EmployerCost *salarysvc.EmployerCost `json:"employer_cost,omitempty"`
}

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Calculate a salary breakdown without storing anything",
	}
	cmd.PersistentFlags().Bool("employer-cost", false, "include employer PF and ESI contributions")
	cmd.AddCommand(previewStandardCmd(), previewSalesCmd())
	return cmd
}

func previewStandardCmd() *cobra.Command {
	var basic, special, other, incomeTax, otherDeductions string
	var estimate bool

	cmd := &cobra.Command{
		Use:   "standard",
		Short: "Preview a STANDARD salary",
		Example: "  payroll preview standard --basic 25000\n" +
			"  payroll preview standard --basic 80000 --special 12000 --estimate-income-tax",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadTables(cmd)
			if err != nil {
				return err
			}
			calc := salarysvc.NewCalculator(tables)

			comp := salary.Compensation{SalaryType: salary.SalaryTypeStandard}
			for _, f := range []struct {
				dst   *salary.Money
				value string
			}{
				{&comp.BasicSalary, basic},
				{&comp.SpecialAllowance, special},
				{&comp.OtherAllowance, other},
				{&comp.IncomeTax, incomeTax},
				{&comp.OtherDeductions, otherDeductions},
			} {
				if f.value == "" {
					continue
				}
				if *f.dst, err = salary.ParseMoney(f.value); err != nil {
					return err
				}
			}

			if estimate {
				// Gross does not depend on income tax, so a first pass gives
				// the annual figure the estimate is based on.
				first, err := calc.Calculate(comp)
				if err != nil {
					return err
				}
				comp.IncomeTax = calc.Statutory().MonthlyIncomeTax(first.AnnualCTC)
			}

			return writePreview(cmd, calc, comp)
		},
	}

	cmd.Flags().StringVar(&basic, "basic", "", "monthly basic salary")
	cmd.Flags().StringVar(&special, "special", "", "special allowance")
	cmd.Flags().StringVar(&other, "other", "", "other allowance")
	cmd.Flags().StringVar(&incomeTax, "income-tax", "", "monthly income tax to deduct")
	cmd.Flags().StringVar(&otherDeductions, "other-deductions", "", "other deductions")
	cmd.Flags().BoolVar(&estimate, "estimate-income-tax", false, "estimate income tax from the slabs instead of --income-tax")
	_ = cmd.MarkFlagRequired("basic")
	cmd.MarkFlagsMutuallyExclusive("income-tax", "estimate-income-tax")
	return cmd
}

func previewSalesCmd() *cobra.Command {
	var stage string
	var sales, referrals int

	cmd := &cobra.Command{
		Use:     "sales",
		Short:   "Preview a SALES salary",
		Example: "  payroll preview sales --stage ESTABLISHED --sales 35 --referrals 4",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadTables(cmd)
			if err != nil {
				return err
			}
			comp := salary.Compensation{
				SalaryType:    salary.SalaryTypeSales,
				CareerStage:   salary.CareerStage(stage),
				SalesCount:    sales,
				ReferralCount: referrals,
			}
			return writePreview(cmd, salarysvc.NewCalculator(tables), comp)
		},
	}

	cmd.Flags().StringVar(&stage, "stage", "", "career stage: PROBATION or ESTABLISHED")
	cmd.Flags().IntVar(&sales, "sales", 0, "sales closed this month")
	cmd.Flags().IntVar(&referrals, "referrals", 0, "referrals this month")
	_ = cmd.MarkFlagRequired("stage")
	return cmd
}

func writePreview(cmd *cobra.Command, calc *salarysvc.Calculator, comp salary.Compensation) error {
	b, err := calc.Calculate(comp)
	if err != nil {
		return err
	}

	out := previewOutput{Breakdown: b}
	if withCost, _ := cmd.Flags().GetBool("employer-cost"); withCost {
		cost := calc.EmployerCost(b)
		out.EmployerCost = &cost
	}
	return printJSON(cmd.OutOrStdout(), out)
}
