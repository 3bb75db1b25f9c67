package postgresql

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

var compensationColumns = []string{
	"employee_id", "company_id", "employee_code", "full_name", "department", "employment_status",
	"salary_type", "career_stage", "basic_salary", "special_allowance", "other_allowance",
	"income_tax", "other_deductions", "sales_count", "referral_count", "updated_at",
}

type compensationRepositoryImpl struct {
	db *database.DB
}

func NewCompensationRepository(db *database.DB) employee.CompensationRepository {
	return &compensationRepositoryImpl{db: db}
}

func scanCompensation(row rowScanner) (employee.EmployeeCompensation, error) {
	var c employee.EmployeeCompensation
	var careerStage *string
	var basic, special, other, incomeTax, otherDeductions int64

	err := row.Scan(
		&c.EmployeeID, &c.CompanyID, &c.EmployeeCode, &c.FullName, &c.Department, &c.EmploymentStatus,
		&c.Compensation.SalaryType, &careerStage, &basic, &special, &other,
		&incomeTax, &otherDeductions, &c.Compensation.SalesCount, &c.Compensation.ReferralCount, &c.UpdatedAt,
	)
	if err != nil {
		return employee.EmployeeCompensation{}, err
	}

	if careerStage != nil {
		c.Compensation.CareerStage = salary.CareerStage(*careerStage)
	}
	c.Compensation.BasicSalary = salary.Money(basic)
	c.Compensation.SpecialAllowance = salary.Money(special)
	c.Compensation.OtherAllowance = salary.Money(other)
	c.Compensation.IncomeTax = salary.Money(incomeTax)
	c.Compensation.OtherDeductions = salary.Money(otherDeductions)
	return c, nil
}

// GetCompensation implements employee.CompensationRepository.
func (r *compensationRepositoryImpl) GetCompensation(ctx context.Context, employeeID string, companyID string) (employee.EmployeeCompensation, error) {
	q := GetQuerier(ctx, r.db)

	query, args, err := psql.Select(compensationColumns...).
		From("employee_compensations").
		Where(sq.Eq{"employee_id": employeeID, "company_id": companyID}).
		ToSql()
	if err != nil {
		return employee.EmployeeCompensation{}, fmt.Errorf("failed to build compensation query: %w", err)
	}

	c, err := scanCompensation(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.EmployeeCompensation{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeCompensation{}, fmt.Errorf("failed to get compensation for employee %s: %w", employeeID, err)
	}
	return c, nil
}

// ListActiveCompensations implements employee.CompensationRepository.
func (r *compensationRepositoryImpl) ListActiveCompensations(ctx context.Context, companyID string, employeeIDs []string) ([]employee.EmployeeCompensation, error) {
	q := GetQuerier(ctx, r.db)

	where := sq.Eq{
		"company_id":        companyID,
		"employment_status": string(employee.EmploymentStatusActive),
	}
	if len(employeeIDs) > 0 {
		where["employee_id"] = employeeIDs
	}

	query, args, err := psql.Select(compensationColumns...).
		From("employee_compensations").
		Where(where).
		OrderBy("employee_code", "employee_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build compensation list query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensations: %w", err)
	}
	defer rows.Close()

	var result []employee.EmployeeCompensation
	for rows.Next() {
		c, err := scanCompensation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compensation: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate compensations: %w", err)
	}
	return result, nil
}

// UpsertCompensation implements employee.CompensationRepository.
func (r *compensationRepositoryImpl) UpsertCompensation(ctx context.Context, c employee.EmployeeCompensation) (employee.EmployeeCompensation, error) {
	q := GetQuerier(ctx, r.db)

	var careerStage *string
	if c.Compensation.CareerStage != "" {
		s := string(c.Compensation.CareerStage)
		careerStage = &s
	}
	status := c.EmploymentStatus
	if status == "" {
		status = employee.EmploymentStatusActive
	}

	query := `
		INSERT INTO employee_compensations (
			employee_id, company_id, employee_code, full_name, department, employment_status,
			salary_type, career_stage, basic_salary, special_allowance, other_allowance,
			income_tax, other_deductions, sales_count, referral_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (company_id, employee_id) DO UPDATE SET
			employee_code = EXCLUDED.employee_code,
			full_name = EXCLUDED.full_name,
			department = EXCLUDED.department,
			employment_status = EXCLUDED.employment_status,
			salary_type = EXCLUDED.salary_type,
			career_stage = EXCLUDED.career_stage,
			basic_salary = EXCLUDED.basic_salary,
			special_allowance = EXCLUDED.special_allowance,
			other_allowance = EXCLUDED.other_allowance,
			income_tax = EXCLUDED.income_tax,
			other_deductions = EXCLUDED.other_deductions,
			sales_count = EXCLUDED.sales_count,
			referral_count = EXCLUDED.referral_count,
			updated_at = NOW()
		RETURNING ` + "employee_id, company_id, employee_code, full_name, department, employment_status, " +
		"salary_type, career_stage, basic_salary, special_allowance, other_allowance, " +
		"income_tax, other_deductions, sales_count, referral_count, updated_at"

	comp := c.Compensation
	saved, err := scanCompensation(q.QueryRow(ctx, query,
		c.EmployeeID, c.CompanyID, c.EmployeeCode, c.FullName, c.Department, string(status),
		string(comp.SalaryType), careerStage, int64(comp.BasicSalary), int64(comp.SpecialAllowance), int64(comp.OtherAllowance),
		int64(comp.IncomeTax), int64(comp.OtherDeductions), comp.SalesCount, comp.ReferralCount,
	))
	if err != nil {
		return employee.EmployeeCompensation{}, fmt.Errorf("failed to upsert compensation for employee %s: %w", c.EmployeeID, err)
	}
	return saved, nil
}
