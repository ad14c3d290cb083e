package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ListDepartments annotates each department with its employee count,
// computed by a join at read time rather than stored redundantly.
func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name, COALESCE(d.description, ''), d.budget,
           COALESCE(d.head_id::text, ''),
           COALESCE(h.first_name || ' ' || h.last_name, ''),
           d.is_active,
           (SELECT COUNT(1) FROM employees e WHERE e.department_id = d.id),
           d.created_at, d.updated_at
    FROM departments d
    LEFT JOIN employees h ON d.head_id = h.id
    ORDER BY d.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Budget,
			&d.HeadID, &d.HeadName, &d.IsActive, &d.EmployeeCount,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (s *Store) DepartmentByID(ctx context.Context, departmentID string) (Department, error) {
	var d Department
	err := s.DB.QueryRow(ctx, `
    SELECT d.id, d.name, COALESCE(d.description, ''), d.budget,
           COALESCE(d.head_id::text, ''),
           COALESCE(h.first_name || ' ' || h.last_name, ''),
           d.is_active,
           (SELECT COUNT(1) FROM employees e WHERE e.department_id = d.id),
           d.created_at, d.updated_at
    FROM departments d
    LEFT JOIN employees h ON d.head_id = h.id
    WHERE d.id = $1
  `, departmentID).Scan(&d.ID, &d.Name, &d.Description, &d.Budget,
		&d.HeadID, &d.HeadName, &d.IsActive, &d.EmployeeCount,
		&d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, ErrNotFound
	}
	if err != nil {
		return Department{}, err
	}
	return d, nil
}

func (s *Store) DepartmentExists(ctx context.Context, departmentID string) (bool, error) {
	if !ValidID(departmentID) {
		return false, nil
	}
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments WHERE id = $1", departmentID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) DepartmentNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments WHERE name = $1 AND id::text <> $2", name, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreateDepartment(ctx context.Context, d Department) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, description, budget, head_id, is_active)
    VALUES ($1,$2,$3,NULLIF($4,'')::uuid,$5)
    RETURNING id
  `, d.Name, d.Description, d.Budget, d.HeadID, d.IsActive).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateDepartment(ctx context.Context, departmentID string, d Department) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE departments
    SET name = $1,
        description = $2,
        budget = $3,
        head_id = NULLIF($4,'')::uuid,
        is_active = $5,
        updated_at = now()
    WHERE id = $6
  `, d.Name, d.Description, d.Budget, d.HeadID, d.IsActive, departmentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDepartment deletes only when no employee references the
// department. The reference check and the delete are one conditional
// statement, so concurrent employee creation cannot slip between them.
func (s *Store) DeleteDepartment(ctx context.Context, departmentID string) error {
	cmd, err := s.DB.Exec(ctx, `
    DELETE FROM departments d
    WHERE d.id = $1
      AND NOT EXISTS (SELECT 1 FROM employees e WHERE e.department_id = d.id)
  `, departmentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		exists, err := s.DepartmentExists(ctx, departmentID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrDepartmentInUse
	}
	return nil
}
