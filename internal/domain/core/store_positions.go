package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const positionColumns = `
    p.id, p.title, p.department_id::text, d.name,
    COALESCE(p.description, ''), p.base_salary, p.level, p.is_active,
    p.created_at, p.updated_at`

func scanPosition(row pgx.Row) (Position, error) {
	var p Position
	err := row.Scan(&p.ID, &p.Title, &p.DepartmentID, &p.DepartmentName,
		&p.Description, &p.BaseSalary, &p.Level, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Position{}, err
	}
	return p, nil
}

func (s *Store) ListPositions(ctx context.Context) ([]Position, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+positionColumns+`
    FROM positions p
    JOIN departments d ON p.department_id = d.id
    ORDER BY d.name, p.level
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (s *Store) PositionsByDepartment(ctx context.Context, departmentID string) ([]Position, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+positionColumns+`
    FROM positions p
    JOIN departments d ON p.department_id = d.id
    WHERE p.department_id = $1 AND p.is_active
    ORDER BY p.level
  `, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (s *Store) PositionByID(ctx context.Context, positionID string) (Position, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+positionColumns+`
    FROM positions p
    JOIN departments d ON p.department_id = d.id
    WHERE p.id = $1
  `, positionID)
	p, err := scanPosition(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Position{}, ErrNotFound
	}
	return p, err
}

func (s *Store) PositionExists(ctx context.Context, positionID string) (bool, error) {
	if !ValidID(positionID) {
		return false, nil
	}
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM positions WHERE id = $1", positionID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreatePosition(ctx context.Context, p Position) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO positions (title, department_id, description, base_salary, level, is_active)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, p.Title, p.DepartmentID, p.Description, p.BaseSalary, p.Level, p.IsActive).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdatePosition(ctx context.Context, positionID string, p Position) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE positions
    SET title = $1,
        department_id = $2,
        description = $3,
        base_salary = $4,
        level = $5,
        is_active = $6,
        updated_at = now()
    WHERE id = $7
  `, p.Title, p.DepartmentID, p.Description, p.BaseSalary, p.Level, p.IsActive, positionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePosition mirrors DeleteDepartment: one conditional statement, no
// check-then-act window.
func (s *Store) DeletePosition(ctx context.Context, positionID string) error {
	cmd, err := s.DB.Exec(ctx, `
    DELETE FROM positions p
    WHERE p.id = $1
      AND NOT EXISTS (SELECT 1 FROM employees e WHERE e.position_id = p.id)
  `, positionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		exists, err := s.PositionExists(ctx, positionID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrPositionInUse
	}
	return nil
}
