package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("salary record not found")
	ErrDuplicate = errors.New("salary record already exists for this employee and period")
	ErrBadState  = errors.New("invalid status transition")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const salaryColumns = `
    s.id, s.employee_id::text,
    COALESCE(e.first_name || ' ' || e.last_name, ''),
    COALESCE(e.employee_number, ''),
    s.basic_salary,
    s.allowance_hra, s.allowance_transport, s.allowance_meal, s.allowance_medical, s.allowance_other,
    s.deduction_pf, s.deduction_tax, s.deduction_insurance, s.deduction_other,
    s.month, s.year, s.working_days, s.attended_days,
    s.overtime_hours, s.overtime_rate, s.bonus, s.net_salary,
    s.status, s.processed_date, s.created_at, s.updated_at`

const salaryJoins = `
    FROM salaries s
    LEFT JOIN employees e ON s.employee_id = e.id`

func scanSalary(row pgx.Row) (Salary, error) {
	var s Salary
	err := row.Scan(&s.ID, &s.EmployeeID, &s.EmployeeName, &s.EmployeeNumber,
		&s.BasicSalary,
		&s.Allowances.HRA, &s.Allowances.Transport, &s.Allowances.Meal, &s.Allowances.Medical, &s.Allowances.Other,
		&s.Deductions.PF, &s.Deductions.Tax, &s.Deductions.Insurance, &s.Deductions.Other,
		&s.Month, &s.Year, &s.WorkingDays, &s.AttendedDays,
		&s.Overtime.Hours, &s.Overtime.Rate, &s.Bonus, &s.NetSalary,
		&s.Status, &s.ProcessedDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Salary{}, err
	}
	return s, nil
}

func (s *Store) ListSalaries(ctx context.Context, month, year int) ([]Salary, error) {
	query := "SELECT" + salaryColumns + salaryJoins
	var args []any
	if month > 0 && year > 0 {
		query += " WHERE s.month = $1 AND s.year = $2"
		args = append(args, month, year)
	}
	query += " ORDER BY s.year DESC, s.month DESC, s.created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSalaries(rows)
}

func (s *Store) SalariesByEmployee(ctx context.Context, employeeID string) ([]Salary, error) {
	rows, err := s.DB.Query(ctx, "SELECT"+salaryColumns+salaryJoins+" WHERE s.employee_id = $1 ORDER BY s.year DESC, s.month DESC", employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSalaries(rows)
}

func collectSalaries(rows pgx.Rows) ([]Salary, error) {
	var salaries []Salary
	for rows.Next() {
		record, err := scanSalary(rows)
		if err != nil {
			return nil, err
		}
		salaries = append(salaries, record)
	}
	return salaries, rows.Err()
}

func (s *Store) SalaryByID(ctx context.Context, salaryID string) (Salary, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+salaryColumns+salaryJoins+" WHERE s.id = $1", salaryID)
	record, err := scanSalary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Salary{}, ErrNotFound
	}
	return record, err
}

func (s *Store) CreateSalary(ctx context.Context, record Salary) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO salaries (employee_id, basic_salary,
                          allowance_hra, allowance_transport, allowance_meal, allowance_medical, allowance_other,
                          deduction_pf, deduction_tax, deduction_insurance, deduction_other,
                          month, year, working_days, attended_days,
                          overtime_hours, overtime_rate, bonus, net_salary, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
    RETURNING id
  `, record.EmployeeID, record.BasicSalary,
		record.Allowances.HRA, record.Allowances.Transport, record.Allowances.Meal, record.Allowances.Medical, record.Allowances.Other,
		record.Deductions.PF, record.Deductions.Tax, record.Deductions.Insurance, record.Deductions.Other,
		record.Month, record.Year, record.WorkingDays, record.AttendedDays,
		record.Overtime.Hours, record.Overtime.Rate, record.Bonus, record.NetSalary, record.Status).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicate
		}
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateSalary(ctx context.Context, salaryID string, record Salary) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE salaries
    SET basic_salary = $1,
        allowance_hra = $2, allowance_transport = $3, allowance_meal = $4,
        allowance_medical = $5, allowance_other = $6,
        deduction_pf = $7, deduction_tax = $8, deduction_insurance = $9, deduction_other = $10,
        month = $11, year = $12, working_days = $13, attended_days = $14,
        overtime_hours = $15, overtime_rate = $16, bonus = $17, net_salary = $18,
        updated_at = now()
    WHERE id = $19
  `, record.BasicSalary,
		record.Allowances.HRA, record.Allowances.Transport, record.Allowances.Meal,
		record.Allowances.Medical, record.Allowances.Other,
		record.Deductions.PF, record.Deductions.Tax, record.Deductions.Insurance, record.Deductions.Other,
		record.Month, record.Year, record.WorkingDays, record.AttendedDays,
		record.Overtime.Hours, record.Overtime.Rate, record.Bonus, record.NetSalary, salaryID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionStatus advances a record from one status to the next in a
// single conditional statement.
func (s *Store) TransitionStatus(ctx context.Context, salaryID, from, to string, stampProcessed bool, at time.Time) error {
	var cmd pgconn.CommandTag
	var err error
	if stampProcessed {
		cmd, err = s.DB.Exec(ctx, `
      UPDATE salaries SET status = $1, processed_date = $2, updated_at = now()
      WHERE id = $3 AND status = $4
    `, to, at, salaryID, from)
	} else {
		cmd, err = s.DB.Exec(ctx, `
      UPDATE salaries SET status = $1, updated_at = now()
      WHERE id = $2 AND status = $3
    `, to, salaryID, from)
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var count int
		if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM salaries WHERE id = $1", salaryID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrBadState
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
