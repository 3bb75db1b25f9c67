package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "payroll",
		Short: "Multi-tenant payroll engine",
		Long: "Calculates monthly salary breakdowns with statutory deductions and moves\n" +
			"payroll records through DRAFT, CALCULATED, APPROVED, PROCESSED, PAID and ARCHIVED.\n\n" +
			"With --store memory records live only for one command, so get, list, summary,\n" +
			"payslip and the status commands require --store postgres.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("tables", "", "statutory tables YAML file (default: built-in tables, or PAYROLL_TABLES_FILE)")
	flags.String("store", "", "payroll record store: postgres or memory (default: PAYROLL_STORE)")
	flags.String("employee-store", "", "employee compensation store: postgres, mongo or memory (default: EMPLOYEE_STORE)")
	flags.String("company", os.Getenv("PAYROLL_COMPANY_ID"), "company the command acts on")
	flags.String("actor", os.Getenv("PAYROLL_ACTOR_ID"), "user recorded in audit stamps")
	flags.String("seed", "", "JSON file of employee compensations to upsert before running")

	root.AddCommand(
		previewCmd(),
		calculateCmd(),
		calculateBatchCmd(),
		transitionCmd("approve", "Approve a calculated payroll record", approve),
		transitionCmd("process", "Mark an approved payroll record as processed", process),
		transitionCmd("archive", "Mark a processed payroll record as paid", archive),
		transitionCmd("close", "Archive a paid payroll record", closeRecord),
		getCmd(),
		listCmd(),
		summaryCmd(),
		payslipCmd(),
		schedulerCmd(),
		tablesCmd(),
		migrateCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "payroll %s (commit %s, built %s)\n", version, commit, date)
			if verbose, _ := cmd.Flags().GetBool("build-info"); verbose {
				if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
					fmt.Fprintln(cmd.OutOrStdout(), bi.String())
				}
			}
		},
	}
	cmd.Flags().Bool("build-info", false, "also print module build information")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		writeError(os.Stderr, err, os.Getenv("APP_ENV") == "production")
		stop()
		os.Exit(exitCode(err))
	}
}
