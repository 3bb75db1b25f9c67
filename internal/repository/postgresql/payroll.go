package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const payrollRecordColumns = `id, company_id, employee_id, month, status, salary_type,
	gross, total_deductions, net, annual_ctc, breakdown, tables_version,
	calculated_at, calculated_by, approved_at, approved_by, processed_at, processed_by,
	paid_at, paid_by, archived_at, archived_by, created_at, updated_at`

var payrollRecordSelect = []string{
	"pr.id", "pr.company_id", "pr.employee_id", "pr.month", "pr.status", "pr.salary_type",
	"pr.gross", "pr.total_deductions", "pr.net", "pr.annual_ctc", "pr.breakdown", "pr.tables_version",
	"pr.calculated_at", "pr.calculated_by", "pr.approved_at", "pr.approved_by", "pr.processed_at", "pr.processed_by",
	"pr.paid_at", "pr.paid_by", "pr.archived_at", "pr.archived_by", "pr.created_at", "pr.updated_at",
	"e.full_name", "e.employee_code",
}

// sortExpressions maps the sortable fields to columns. Ties fall back to
// creation time and id so paging is stable.
var sortExpressions = map[string]string{
	"created_at": "pr.created_at",
	"month":      "pr.month",
	"net":        "pr.net",
	"gross":      "pr.gross",
	"status": `CASE pr.status WHEN 'CALCULATED' THEN 1 WHEN 'APPROVED' THEN 2
		WHEN 'PROCESSED' THEN 3 WHEN 'PAID' THEN 4 WHEN 'ARCHIVED' THEN 5 END`,
}

type payrollRepository struct {
	db  *database.DB
	now func() time.Time
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayrollRecord(row rowScanner, joined bool) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var month time.Time
	var breakdownBytes []byte

	dest := []any{
		&rec.ID, &rec.CompanyID, &rec.EmployeeID, &month, &rec.Status, &rec.SalaryType,
		&rec.Gross, &rec.TotalDeductions, &rec.Net, &rec.AnnualCTC, &breakdownBytes, &rec.TablesVersion,
		&rec.CalculatedAt, &rec.CalculatedBy, &rec.ApprovedAt, &rec.ApprovedBy, &rec.ProcessedAt, &rec.ProcessedBy,
		&rec.PaidAt, &rec.PaidBy, &rec.ArchivedAt, &rec.ArchivedBy, &rec.CreatedAt, &rec.UpdatedAt,
	}
	if joined {
		dest = append(dest, &rec.EmployeeName, &rec.EmployeeCode)
	}
	if err := row.Scan(dest...); err != nil {
		return payroll.PayrollRecord{}, err
	}

	rec.Month = payroll.MonthOf(month)
	if err := json.Unmarshal(breakdownBytes, &rec.Breakdown); err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to decode breakdown of payroll record %s: %w", rec.ID, err)
	}
	return rec, nil
}

// ========== PAYROLL RECORDS ==========

func (r *payrollRepository) CreatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	if record.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return payroll.PayrollRecord{}, fmt.Errorf("failed to generate payroll record id: %w", err)
		}
		record.ID = id.String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}

	breakdownJSON, err := json.Marshal(record.Breakdown)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to encode breakdown: %w", err)
	}

	query := `
		INSERT INTO payroll_records (
			id, company_id, employee_id, month, status, salary_type,
			gross, total_deductions, net, annual_ctc, breakdown, tables_version,
			calculated_at, calculated_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + payrollRecordColumns

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query,
		record.ID, record.CompanyID, record.EmployeeID, record.Month.FirstDay(), string(record.Status), string(record.SalaryType),
		int64(record.Gross), int64(record.TotalDeductions), int64(record.Net), int64(record.AnnualCTC), breakdownJSON, record.TablesVersion,
		record.CalculatedAt, record.CalculatedBy, record.CreatedAt, record.UpdatedAt,
	), false)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "uk_payroll_employee_month" {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRepository) GetPayrollRecordByID(ctx context.Context, id string, companyID string) (payroll.PayrollRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return r.getOne(ctx, sq.Eq{"pr.id": id, "pr.company_id": companyID})
}

func (r *payrollRepository) GetPayrollRecordByEmployeeMonth(ctx context.Context, employeeID string, month payroll.Month, companyID string) (payroll.PayrollRecord, error) {
	return r.getOne(ctx, sq.Eq{
		"pr.employee_id": employeeID,
		"pr.month":       month.FirstDay(),
		"pr.company_id":  companyID,
	})
}

func (r *payrollRepository) getOne(ctx context.Context, where sq.Eq) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query, args, err := selectPayrollRecords().Columns(payrollRecordSelect...).Where(where).ToSql()
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to build payroll record query: %w", err)
	}

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, args...), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

func selectPayrollRecords() sq.SelectBuilder {
	return psql.Select().
		From("payroll_records pr").
		LeftJoin("employee_compensations e ON e.employee_id = pr.employee_id AND e.company_id = pr.company_id")
}

func (r *payrollRepository) ListPayrollRecords(ctx context.Context, companyID string, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := sq.And{sq.Eq{"pr.company_id": companyID}}
	if filter.Month != nil {
		where = append(where, sq.Eq{"pr.month": filter.Month.FirstDay()})
	}
	if filter.Status != nil {
		where = append(where, sq.Eq{"pr.status": string(*filter.Status)})
	}
	if filter.EmployeeID != nil {
		where = append(where, sq.Eq{"pr.employee_id": *filter.EmployeeID})
	}
	if filter.SalaryType != nil {
		where = append(where, sq.Eq{"pr.salary_type": string(*filter.SalaryType)})
	}

	// Count query
	countQuery, countArgs, err := psql.Select("COUNT(*)").From("payroll_records pr").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build payroll count query: %w", err)
	}
	var totalCount int64
	if err := q.QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	// Sort
	sortColumn, ok := sortExpressions[filter.SortBy]
	if !ok {
		sortColumn = sortExpressions["created_at"]
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = payroll.DefaultPageLimit
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	query, args, err := selectPayrollRecords().
		Columns(payrollRecordSelect...).
		Where(where).
		OrderBy(
			fmt.Sprintf("%s %s", sortColumn, sortOrder),
			fmt.Sprintf("pr.created_at %s", sortOrder),
			fmt.Sprintf("pr.id %s", sortOrder),
		).
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build payroll list query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	records := []payroll.PayrollRecord{}
	for rows.Next() {
		rec, err := scanPayrollRecord(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll records: %w", err)
	}

	return records, totalCount, nil
}

// TransitionStatus is a single conditional UPDATE, so two concurrent callers
// cannot both move the same record out of from.
func (r *payrollRepository) TransitionStatus(ctx context.Context, companyID string, id string, from, to payroll.PayrollStatus, actorID string, at time.Time) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	if _, err := uuid.Parse(id); err != nil {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	if !payroll.CanTransition(from, to) {
		return payroll.PayrollRecord{}, &payroll.TransitionError{Current: from, From: from, To: to}
	}
	atColumn, byColumn, ok := stampColumns(to)
	if !ok {
		return payroll.PayrollRecord{}, &payroll.TransitionError{Current: from, From: from, To: to}
	}

	var actor *string
	if actorID != "" {
		actor = &actorID
	}

	query, args, err := psql.Update("payroll_records").
		Set("status", string(to)).
		Set("updated_at", at).
		Set(atColumn, at).
		Set(byColumn, actor).
		Where(sq.Eq{"id": id, "company_id": companyID, "status": string(from)}).
		Suffix("RETURNING " + payrollRecordColumns).
		ToSql()
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to build status update: %w", err)
	}

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, args...), false)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to update payroll status: %w", err)
	}

	// Nothing matched: either the record is gone or it already moved on.
	var current payroll.PayrollStatus
	err = q.QueryRow(ctx, `SELECT status FROM payroll_records WHERE id = $1 AND company_id = $2`, id, companyID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to check payroll record status: %w", err)
	}
	return payroll.PayrollRecord{}, &payroll.TransitionError{Current: current, From: from, To: to}
}

func stampColumns(to payroll.PayrollStatus) (string, string, bool) {
	switch to {
	case payroll.PayrollStatusApproved:
		return "approved_at", "approved_by", true
	case payroll.PayrollStatusProcessed:
		return "processed_at", "processed_by", true
	case payroll.PayrollStatusPaid:
		return "paid_at", "paid_by", true
	case payroll.PayrollStatusArchived:
		return "archived_at", "archived_by", true
	}
	return "", "", false
}

// ========== AGGREGATIONS ==========

func (r *payrollRepository) GetPayrollSummary(ctx context.Context, companyID string, month payroll.Month) (payroll.PayrollSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			status,
			COUNT(*),
			COALESCE(SUM(gross), 0)::BIGINT,
			COALESCE(SUM(total_deductions), 0)::BIGINT,
			COALESCE(SUM(net), 0)::BIGINT,
			COALESCE(SUM(annual_ctc), 0)::BIGINT
		FROM payroll_records
		WHERE company_id = $1 AND month = $2
		GROUP BY status
	`

	rows, err := q.Query(ctx, query, companyID, month.FirstDay())
	if err != nil {
		return payroll.PayrollSummary{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}
	defer rows.Close()

	summary := payroll.PayrollSummary{
		Month:         month,
		CountByStatus: make(map[payroll.PayrollStatus]int),
		GeneratedAt:   r.now(),
	}
	for rows.Next() {
		var (
			status                      payroll.PayrollStatus
			count                       int
			gross, deductions, net, ctc int64
		)
		if err := rows.Scan(&status, &count, &gross, &deductions, &net, &ctc); err != nil {
			return payroll.PayrollSummary{}, fmt.Errorf("failed to scan payroll summary: %w", err)
		}
		summary.TotalRecords += count
		summary.CountByStatus[status] = count
		summary.TotalGross += salary.Money(gross)
		summary.TotalDeductions += salary.Money(deductions)
		summary.TotalNet += salary.Money(net)
		summary.TotalAnnualCTC += salary.Money(ctc)
	}
	if err := rows.Err(); err != nil {
		return payroll.PayrollSummary{}, fmt.Errorf("failed to iterate payroll summary: %w", err)
	}

	return summary, nil
}
