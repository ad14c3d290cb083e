package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const requestColumns = `
    r.id, r.employee_id::text,
    COALESCE(e.first_name || ' ' || e.last_name, ''),
    COALESCE(e.employee_number, ''),
    r.type, r.start_date, r.end_date, r.days, r.reason, r.status,
    COALESCE(r.approver_id::text, ''),
    COALESCE(a.first_name || ' ' || a.last_name, ''),
    r.approval_date, COALESCE(r.approval_comments, ''),
    r.created_at, r.updated_at`

const requestJoins = `
    FROM leave_requests r
    LEFT JOIN employees e ON r.employee_id = e.id
    LEFT JOIN employees a ON r.approver_id = a.id`

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.EmployeeID, &r.EmployeeName, &r.EmployeeNumber,
		&r.Type, &r.StartDate, &r.EndDate, &r.Days, &r.Reason, &r.Status,
		&r.ApproverID, &r.ApproverName, &r.ApprovalDate, &r.ApprovalComments,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return Request{}, err
	}
	return r, nil
}

func (s *Store) ListRequests(ctx context.Context) ([]Request, error) {
	rows, err := s.DB.Query(ctx, "SELECT"+requestColumns+requestJoins+" ORDER BY r.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) RequestsByEmployee(ctx context.Context, employeeID string) ([]Request, error) {
	rows, err := s.DB.Query(ctx, "SELECT"+requestColumns+requestJoins+" WHERE r.employee_id = $1 ORDER BY r.created_at DESC", employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]Request, error) {
	var requests []Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *Store) RequestByID(ctx context.Context, requestID string) (Request, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+requestColumns+requestJoins+" WHERE r.id = $1", requestID)
	r, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return r, err
}

func (s *Store) CreateRequest(ctx context.Context, r Request) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (employee_id, type, start_date, end_date, days, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, r.EmployeeID, r.Type, r.StartDate, r.EndDate, r.Days, r.Reason, StatusPending).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// DecideRequest moves a pending request to its decided status. The
// pending check and the update are one statement, so two approvers
// racing cannot both win.
func (s *Store) DecideRequest(ctx context.Context, requestID, status, approverID, comments string, decidedAt time.Time) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1,
        approver_id = $2,
        approval_date = $3,
        approval_comments = $4,
        updated_at = now()
    WHERE id = $5 AND status = $6
  `, status, approverID, decidedAt, comments, requestID, StatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		exists, err := s.requestExists(ctx, requestID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrNotPending
	}
	return nil
}

func (s *Store) CancelRequest(ctx context.Context, requestID, employeeID string) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, updated_at = now()
    WHERE id = $2 AND employee_id = $3 AND status = $4
  `, StatusCancelled, requestID, employeeID, StatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		exists, err := s.requestExists(ctx, requestID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrNotPending
	}
	return nil
}

func (s *Store) requestExists(ctx context.Context, requestID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests WHERE id = $1", requestID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
