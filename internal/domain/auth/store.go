package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindLoginUser(ctx context.Context, email string) (LoginUser, error) {
	var u LoginUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, password_hash, role, COALESCE(employee_id::text, ''), mfa_enabled, COALESCE(mfa_secret, '')
    FROM users
    WHERE email = $1 AND is_active
  `, strings.ToLower(strings.TrimSpace(email))).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.RoleName, &u.EmployeeID, &u.MFAEnabled, &u.MFASecret)
	if err != nil {
		return LoginUser{}, err
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, userID string) (User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, role, COALESCE(employee_id::text, ''), is_active, mfa_enabled, last_login, created_at
    FROM users
    WHERE id = $1
  `, userID).Scan(&u.ID, &u.Email, &u.RoleName, &u.EmployeeID, &u.IsActive, &u.MFAEnabled, &u.LastLogin, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", strings.ToLower(strings.TrimSpace(email))).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash, roleName, employeeID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role, employee_id)
    VALUES ($1,$2,$3,NULLIF($4,'')::uuid)
    RETURNING id
  `, strings.ToLower(strings.TrimSpace(email)), passwordHash, roleName, employeeID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1", userID)
	return err
}

func (s *Store) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	if uuid.Validate(employeeID) != nil {
		return false, nil
	}
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE id = $1", employeeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) SetMFASecret(ctx context.Context, userID, secret string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET mfa_secret = $1, updated_at = now() WHERE id = $2", secret, userID)
	return err
}

func (s *Store) MFASecret(ctx context.Context, userID string) (string, error) {
	var secret string
	err := s.DB.QueryRow(ctx, "SELECT COALESCE(mfa_secret, '') FROM users WHERE id = $1", userID).Scan(&secret)
	if err != nil {
		return "", err
	}
	return secret, nil
}

func (s *Store) SetMFAEnabled(ctx context.Context, userID string, enabled bool) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET mfa_enabled = $1, updated_at = now() WHERE id = $2", enabled, userID)
	return err
}
