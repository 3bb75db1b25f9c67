package main

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/cron"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// batchJob calculates the current month for every active employee. Employees
// that already have a record are skipped, so running it repeatedly is safe.
func batchJob(svc payroll.PayrollService, log *zap.Logger, companyID, actorID string, now func() time.Time) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		month := payroll.MonthOf(now())
		resp, err := svc.CalculateBatch(ctx, payroll.CalculateBatchRequest{
			CompanyID: companyID,
			Month:     month.String(),
			ActorID:   actorID,
		})
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			log.Info("scheduled payroll batch found no active employees",
				zap.String("company_id", companyID),
				zap.String("month", month.String()),
			)
			return nil
		}
		if err != nil {
			return err
		}
		log.Info("scheduled payroll batch finished",
			zap.String("company_id", companyID),
			zap.String("month", month.String()),
			zap.Int("created", len(resp.Created)),
			zap.Int("skipped", len(resp.Skipped)),
			zap.Int("failed", len(resp.Failed)),
		)
		return nil
	}
}

func schedulerCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Calculate the current month's payroll on an interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if a.companyID == "" {
				return errors.New("--company is required")
			}

			s := cron.NewScheduler(a.logger)
			s.AddJob("payroll-batch", interval, batchJob(a.payroll, a.logger, a.companyID, a.actorID, time.Now))
			s.Start(cmd.Context())
			<-cmd.Context().Done()
			s.Stop()
			return nil
		}),
	}

	cmd.Flags().DurationVar(&interval, "interval", 6*time.Hour, "time between batch runs")
	return cmd
}
