package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/storage"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/cmlabs-hris/payroll-engine-go/internal/service/payslip"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// withApp opens the stores for the duration of one command.
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

// withStoredRecords is withApp for commands that read records written by an
// earlier command. The memory store starts empty on every run, so those
// commands need PAYROLL_STORE=postgres.
func withStoredRecords(fn func(cmd *cobra.Command, a *app, args []string) error) func(cmd *cobra.Command, args []string) error {
	return withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if a.cfg.Payroll.Store == config.StoreMemory {
			return validator.ValidationErrors{{
				Field:   "store",
				Message: fmt.Sprintf("%s needs records from earlier runs; the memory store only lives for one command, use --store postgres", cmd.Name()),
			}}
		}
		return fn(cmd, a, args)
	})
}

func calculateCmd() *cobra.Command {
	var employeeID, month, compensationFile string

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate and store one employee's payroll for a month",
		Long: "Calculates the employee's salary from the stored compensation, or from\n" +
			"--compensation when given, and stores a CALCULATED payroll record. A second\n" +
			"calculation for the same employee and month is rejected.",
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			req := payroll.CalculatePayrollRequest{
				CompanyID:  a.companyID,
				EmployeeID: employeeID,
				Month:      month,
				ActorID:    a.actorID,
			}
			if compensationFile != "" {
				data, err := os.ReadFile(compensationFile)
				if err != nil {
					return fmt.Errorf("failed to read compensation file: %w", err)
				}
				var comp salary.Compensation
				if err := json.Unmarshal(data, &comp); err != nil {
					return fmt.Errorf("failed to parse compensation file %s: %w", compensationFile, err)
				}
				req.Compensation = &comp
			}

			resp, err := a.payroll.CalculatePayroll(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		}),
	}

	cmd.Flags().StringVar(&employeeID, "employee", "", "employee id")
	cmd.Flags().StringVar(&month, "month", "", "payroll month, YYYY-MM")
	cmd.Flags().StringVar(&compensationFile, "compensation", "", "JSON compensation to use instead of the stored one")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func calculateBatchCmd() *cobra.Command {
	var month string
	var employeeIDs []string

	cmd := &cobra.Command{
		Use:   "calculate-batch",
		Short: "Calculate payroll for every active employee of the company",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			resp, err := a.payroll.CalculateBatch(cmd.Context(), payroll.CalculateBatchRequest{
				CompanyID:   a.companyID,
				Month:       month,
				EmployeeIDs: employeeIDs,
				ActorID:     a.actorID,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		}),
	}

	cmd.Flags().StringVar(&month, "month", "", "payroll month, YYYY-MM")
	cmd.Flags().StringSliceVar(&employeeIDs, "employees", nil, "restrict the batch to these employee ids")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

type transitionFunc func(ctx context.Context, svc payroll.PayrollService, req payroll.TransitionPayrollRequest) (payroll.PayrollRecordResponse, error)

func approve(ctx context.Context, svc payroll.PayrollService, req payroll.TransitionPayrollRequest) (payroll.PayrollRecordResponse, error) {
	return svc.ApprovePayroll(ctx, req)
}

func process(ctx context.Context, svc payroll.PayrollService, req payroll.TransitionPayrollRequest) (payroll.PayrollRecordResponse, error) {
	return svc.ProcessPayroll(ctx, req)
}

func archive(ctx context.Context, svc payroll.PayrollService, req payroll.TransitionPayrollRequest) (payroll.PayrollRecordResponse, error) {
	return svc.ArchivePayroll(ctx, req)
}

func closeRecord(ctx context.Context, svc payroll.PayrollService, req payroll.TransitionPayrollRequest) (payroll.PayrollRecordResponse, error) {
	return svc.ClosePayroll(ctx, req)
}

func transitionCmd(use, short string, fn transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <payroll-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withStoredRecords(func(cmd *cobra.Command, a *app, args []string) error {
			resp, err := fn(cmd.Context(), a.payroll, payroll.TransitionPayrollRequest{
				CompanyID: a.companyID,
				ID:        args[0],
				ActorID:   a.actorID,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		}),
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <payroll-id>",
		Short: "Show one payroll record with its breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: withStoredRecords(func(cmd *cobra.Command, a *app, args []string) error {
			resp, err := a.payroll.GetPayroll(cmd.Context(), a.companyID, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		}),
	}
}

func listCmd() *cobra.Command {
	var req payroll.ListPayrollRequest

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payroll records",
		Args:  cobra.NoArgs,
		RunE: withStoredRecords(func(cmd *cobra.Command, a *app, args []string) error {
			req.CompanyID = a.companyID
			req.SortOrder = strings.ToLower(req.SortOrder)
			resp, err := a.payroll.ListPayroll(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		}),
	}

	cmd.Flags().StringVar(&req.Month, "month", "", "only records for this month, YYYY-MM")
	cmd.Flags().StringVar(&req.Status, "status", "", "only records in this status")
	cmd.Flags().StringVar(&req.EmployeeID, "employee", "", "only records for this employee")
	cmd.Flags().StringVar(&req.SalaryType, "salary-type", "", "only STANDARD or SALES records")
	cmd.Flags().IntVar(&req.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&req.Limit, "limit", payroll.DefaultPageLimit, "records per page")
	cmd.Flags().StringVar(&req.SortBy, "sort-by", "", "created_at, month, net, gross or status")
	cmd.Flags().StringVar(&req.SortOrder, "sort-order", "", "asc or desc")
	return cmd
}

func summaryCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Totals and status counts for one company month",
		Args:  cobra.NoArgs,
		RunE: withStoredRecords(func(cmd *cobra.Command, a *app, args []string) error {
			resp, err := a.payroll.GetPayrollSummary(cmd.Context(), a.companyID, month)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		}),
	}

	cmd.Flags().StringVar(&month, "month", "", "payroll month, YYYY-MM")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func payslipCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "payslip <payroll-id>",
		Short: "Render a payroll record as a PDF payslip",
		Long: "Renders the payslip and stores it under PAYSLIP_DIR as\n" +
			"<company>/<month>/<employee>.pdf, or writes it to --output.",
		Args: cobra.ExactArgs(1),
		RunE: withStoredRecords(func(cmd *cobra.Command, a *app, args []string) error {
			resp, err := a.payroll.GetPayroll(cmd.Context(), a.companyID, args[0])
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := payslip.Render(&buf, resp); err != nil {
				return err
			}

			if out != "" {
				if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("failed to write payslip: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}

			files, err := storage.NewLocalStorage(a.cfg.Payroll.PayslipDir)
			if err != nil {
				return err
			}
			key := path.Join(resp.CompanyID, resp.Month.String(), resp.EmployeeID+".pdf")
			location, err := files.Save(cmd.Context(), &buf, key)
			if err != nil {
				return err
			}
			a.logger.Info("payslip stored", zap.String("payroll_id", resp.ID), zap.String("path", location))
			fmt.Fprintln(cmd.OutOrStdout(), location)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write the PDF to this file instead of PAYSLIP_DIR")
	return cmd
}
