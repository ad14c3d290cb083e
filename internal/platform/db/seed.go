package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"ems/internal/domain/auth"
	"ems/internal/domain/core"
	"ems/internal/platform/config"
)

// Seed provisions the bootstrap admin account. Login requires a linked
// employee record, so the seed creates the full chain: department,
// position, employee, then the user.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if strings.TrimSpace(cfg.SeedAdminEmail) == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))

	var existing string
	if err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&existing); err == nil {
		return nil
	}

	departmentID, err := ensureDepartment(ctx, pool, "Administration", "System administration")
	if err != nil {
		return err
	}
	positionID, err := ensurePosition(ctx, pool, departmentID, "System Administrator")
	if err != nil {
		return err
	}
	employeeID, err := ensureEmployee(ctx, pool, departmentID, positionID, email)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, role, employee_id)
    VALUES ($1, $2, $3, $4)
  `, email, hash, auth.RoleAdmin, employeeID)
	return err
}

func ensureDepartment(ctx context.Context, pool *pgxpool.Pool, name, description string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM departments WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	err = pool.QueryRow(ctx, `
    INSERT INTO departments (name, description) VALUES ($1, $2) RETURNING id
  `, name, description).Scan(&id)
	return id, err
}

func ensurePosition(ctx context.Context, pool *pgxpool.Pool, departmentID, title string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM positions WHERE department_id = $1 AND title = $2", departmentID, title).Scan(&id)
	if err == nil {
		return id, nil
	}
	err = pool.QueryRow(ctx, `
    INSERT INTO positions (title, department_id, level) VALUES ($1, $2, 'lead') RETURNING id
  `, title, departmentID).Scan(&id)
	return id, err
}

func ensureEmployee(ctx context.Context, pool *pgxpool.Pool, departmentID, positionID, email string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM employees WHERE email = $1", email).Scan(&id)
	if err == nil {
		return id, nil
	}
	err = pool.QueryRow(ctx, `
    INSERT INTO employees (employee_number, first_name, last_name, email, department_id, position_id, date_of_joining, status)
    VALUES ($1, 'System', 'Administrator', $2, $3, $4, now(), $5)
    RETURNING id
  `, core.NewEmployeeNumber(), email, departmentID, positionID, core.EmployeeStatusActive).Scan(&id)
	return id, err
}
