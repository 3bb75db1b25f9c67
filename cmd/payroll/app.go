package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/logger"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/memory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/mongodb"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payroll"
	salarysvc "github.com/cmlabs-hris/payroll-engine-go/internal/service/salary"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is the wiring shared by the commands that touch storage.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	calc      *salarysvc.Calculator
	db        *database.DB
	payroll   payroll.PayrollService
	employees employee.CompensationRepository
	companyID string
	actorID   string
	closers   []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// loadTables resolves --tables, then PAYROLL_TABLES_FILE, then the defaults.
func loadTables(cmd *cobra.Command) (*salary.Tables, error) {
	path, _ := cmd.Flags().GetString("tables")
	if path == "" {
		path = os.Getenv("PAYROLL_TABLES_FILE")
	}
	return config.LoadTables(path)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	store, _ := cmd.Flags().GetString("store")
	employeeStore, _ := cmd.Flags().GetString("employee-store")
	tables, _ := cmd.Flags().GetString("tables")

	return config.Load(func(c *config.Config) {
		if store != "" {
			c.Payroll.Store = store
		}
		if employeeStore != "" {
			c.Payroll.EmployeeStore = employeeStore
		}
		if tables != "" {
			c.Payroll.TablesFile = tables
		}
	})
}

// openApp connects the configured stores and builds the payroll service.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: log}
	a.closers = append(a.closers, func() { _ = log.Sync() })
	a.companyID, _ = cmd.Flags().GetString("company")
	a.actorID, _ = cmd.Flags().GetString("actor")

	tables, err := config.LoadTables(cfg.Payroll.TablesFile)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.calc = salarysvc.NewCalculator(tables)

	if cfg.UsesPostgres() {
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolSize{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
		a.closers = append(a.closers, db.Close)
	}

	var payrollRepo payroll.PayrollRepository
	switch cfg.Payroll.Store {
	case config.StorePostgres:
		payrollRepo = postgresql.NewPayrollRepository(a.db)
	default:
		payrollRepo = memory.NewPayrollRepository()
	}

	switch cfg.Payroll.EmployeeStore {
	case config.StorePostgres:
		a.employees = postgresql.NewCompensationRepository(a.db)
	case config.StoreMongo:
		client, err := database.NewMongoClient(ctx, cfg.Mongo.URI)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		if err := mongodb.EnsureIndexes(ctx, coll); err != nil {
			a.Close()
			return nil, err
		}
		a.employees = mongodb.NewCompensationRepository(coll)
	default:
		a.employees = memory.NewCompensationRepository()
	}

	if seed, _ := cmd.Flags().GetString("seed"); seed != "" {
		if err := a.seedEmployees(ctx, seed); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.payroll = payrollService.NewPayrollService(
		payrollRepo,
		a.employees,
		a.calc,
		log,
		payrollService.WithBatchConcurrency(cfg.Payroll.BatchConcurrency),
	)
	return a, nil
}

// employeeSeed is one entry of a --seed file.
type employeeSeed struct {
	EmployeeID       string                    `json:"employee_id"`
	CompanyID        string                    `json:"company_id,omitempty"`
	EmployeeCode     string                    `json:"employee_code"`
	FullName         string                    `json:"full_name"`
	Department       *string                   `json:"department,omitempty"`
	EmploymentStatus employee.EmploymentStatus `json:"employment_status,omitempty"`
	Compensation     salary.Compensation       `json:"compensation"`
}

func (a *app) seedEmployees(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var seeds []employeeSeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	for _, s := range seeds {
		companyID := s.CompanyID
		if companyID == "" {
			companyID = a.companyID
		}
		_, err := a.employees.UpsertCompensation(ctx, employee.EmployeeCompensation{
			EmployeeID:       s.EmployeeID,
			CompanyID:        companyID,
			EmployeeCode:     s.EmployeeCode,
			FullName:         s.FullName,
			Department:       s.Department,
			EmploymentStatus: s.EmploymentStatus,
			Compensation:     s.Compensation,
		})
		if err != nil {
			return err
		}
	}
	a.logger.Debug("employees seeded", zap.String("file", path), zap.Int("count", len(seeds)))
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// writeError prints err as a JSON error body. Outside production the wrapped
// detail is included in the message.
func writeError(w io.Writer, err error, production bool) {
	appErr := apperror.FromError(err, production)
	body := errorBody{Code: appErr.Code, Message: appErr.Message, Details: appErr.Fields}
	if !production && appErr.Err != nil && appErr.Fields == nil {
		body.Message = appErr.Error()
	}
	_ = printJSON(w, struct {
		Error errorBody `json:"error"`
	}{body})
}

func exitCode(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return 2
	case apperror.KindNotFound:
		return 3
	case apperror.KindConflict:
		return 4
	}
	return 1
}
