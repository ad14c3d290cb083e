package core

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
    e.id, e.employee_number, e.first_name, e.last_name, e.email,
    COALESCE(e.phone, ''), e.date_of_birth, COALESCE(e.gender, ''),
    e.address, e.department_id::text, d.name,
    e.position_id::text, p.title, COALESCE(p.base_salary, 0),
    COALESCE(e.manager_id::text, ''),
    COALESCE(m.first_name || ' ' || m.last_name, ''),
    e.date_of_joining, e.status, e.emergency_contact,
    e.created_at, e.updated_at`

const employeeJoins = `
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.id
    LEFT JOIN positions p ON e.position_id = p.id
    LEFT JOIN employees m ON e.manager_id = m.id`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	var addressJSON, contactJSON []byte
	err := row.Scan(
		&e.ID, &e.EmployeeNumber, &e.FirstName, &e.LastName, &e.Email,
		&e.Phone, &e.DateOfBirth, &e.Gender,
		&addressJSON, &e.DepartmentID, &e.DepartmentName,
		&e.PositionID, &e.PositionTitle, &e.BaseSalary,
		&e.ManagerID, &e.ManagerName,
		&e.DateOfJoining, &e.Status, &contactJSON,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return Employee{}, err
	}
	if len(addressJSON) > 0 {
		var addr Address
		if err := json.Unmarshal(addressJSON, &addr); err == nil {
			e.Address = &addr
		}
	}
	if len(contactJSON) > 0 {
		var contact EmergencyContact
		if err := json.Unmarshal(contactJSON, &contact); err == nil {
			e.EmergencyContact = &contact
		}
	}
	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, "SELECT"+employeeColumns+employeeJoins+" ORDER BY e.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) EmployeeByID(ctx context.Context, employeeID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+employeeColumns+employeeJoins+" WHERE e.id = $1", employeeID)
	e, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Store) EmployeesByDepartment(ctx context.Context, departmentID string) ([]EmployeeName, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, first_name, last_name
    FROM employees
    WHERE department_id = $1
    ORDER BY first_name
  `, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []EmployeeName
	for rows.Next() {
		var n EmployeeName
		if err := rows.Scan(&n.ID, &n.FirstName, &n.LastName); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *Store) EmployeeEmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE email = $1 AND id::text <> $2", email, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	if !ValidID(employeeID) {
		return false, nil
	}
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE id = $1", employeeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreateEmployee(ctx context.Context, e Employee) (string, error) {
	addressJSON, contactJSON, err := marshalEmployeeJSON(e)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO employees (employee_number, first_name, last_name, email, phone,
                           date_of_birth, gender, address, department_id, position_id,
                           manager_id, date_of_joining, status, emergency_contact)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NULLIF($11,'')::uuid,$12,$13,$14)
    RETURNING id
  `, e.EmployeeNumber, e.FirstName, e.LastName, e.Email, e.Phone,
		e.DateOfBirth, nullIfEmpty(e.Gender), addressJSON, e.DepartmentID, e.PositionID,
		e.ManagerID, e.DateOfJoining, e.Status, contactJSON).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, employeeID string, e Employee) error {
	addressJSON, contactJSON, err := marshalEmployeeJSON(e)
	if err != nil {
		return err
	}
	cmd, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $1,
        last_name = $2,
        email = $3,
        phone = $4,
        date_of_birth = $5,
        gender = $6,
        address = $7,
        department_id = $8,
        position_id = $9,
        manager_id = NULLIF($10,'')::uuid,
        date_of_joining = $11,
        status = $12,
        emergency_contact = $13,
        updated_at = now()
    WHERE id = $14
  `, e.FirstName, e.LastName, e.Email, e.Phone,
		e.DateOfBirth, nullIfEmpty(e.Gender), addressJSON, e.DepartmentID, e.PositionID,
		e.ManagerID, e.DateOfJoining, e.Status, contactJSON, employeeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEmployee removes the employee and any user account referencing it
// in a single transaction, so a crash cannot leave an orphaned login.
func (s *Store) DeleteEmployee(ctx context.Context, employeeID string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Users go first: the employee delete would null their employee_id
	// and leave unlinked identities behind.
	if _, err := tx.Exec(ctx, "DELETE FROM users WHERE employee_id = $1", employeeID); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, "DELETE FROM employees WHERE id = $1", employeeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func (s *Store) EmployeeStats(ctx context.Context) (EmployeeStats, error) {
	var stats EmployeeStats
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1), COUNT(1) FILTER (WHERE status = $1)
    FROM employees
  `, EmployeeStatusActive).Scan(&stats.TotalEmployees, &stats.ActiveEmployees)
	if err != nil {
		return EmployeeStats{}, err
	}
	stats.InactiveEmployees = stats.TotalEmployees - stats.ActiveEmployees

	rows, err := s.DB.Query(ctx, `
    SELECT e.department_id::text, d.name, COUNT(1)
    FROM employees e
    JOIN departments d ON e.department_id = d.id
    GROUP BY e.department_id, d.name
    ORDER BY d.name
  `)
	if err != nil {
		return EmployeeStats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var dc DepartmentCount
		if err := rows.Scan(&dc.DepartmentID, &dc.Name, &dc.Count); err != nil {
			return EmployeeStats{}, err
		}
		stats.DepartmentStats = append(stats.DepartmentStats, dc)
	}
	return stats, rows.Err()
}

func marshalEmployeeJSON(e Employee) ([]byte, []byte, error) {
	var addressJSON, contactJSON []byte
	var err error
	if e.Address != nil {
		addressJSON, err = json.Marshal(e.Address)
		if err != nil {
			return nil, nil, err
		}
	}
	if e.EmergencyContact != nil {
		contactJSON, err = json.Marshal(e.EmergencyContact)
		if err != nil {
			return nil, nil, err
		}
	}
	return addressJSON, contactJSON, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
