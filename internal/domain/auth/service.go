package auth

import (
	"context"
	"errors"

	"github.com/pquerna/otp/totp"
)

var (
	// ErrInvalidCredentials is returned for an unknown email and for a
	// wrong password alike, so responses give no account-existence oracle.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProfileNotLinked   = errors.New("user profile is not linked to an employee")
	ErrMFARequired        = errors.New("mfa code required")
	ErrMFAInvalid         = errors.New("invalid mfa code")
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// Authenticate verifies the submitted credentials and returns the user
// record. Login fails when the linked employee record no longer exists:
// every authenticated caller must resolve to an employee.
func (s *Service) Authenticate(ctx context.Context, email, password, mfaCode string) (User, error) {
	login, err := s.Store.FindLoginUser(ctx, email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if err := CheckPassword(login.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}

	linked, err := s.Store.EmployeeExists(ctx, login.EmployeeID)
	if err != nil {
		return User{}, err
	}
	if !linked {
		return User{}, ErrProfileNotLinked
	}

	if login.MFAEnabled {
		if mfaCode == "" {
			return User{}, ErrMFARequired
		}
		if login.MFASecret == "" || !totp.Validate(mfaCode, login.MFASecret) {
			return User{}, ErrMFAInvalid
		}
	}

	if err := s.Store.UpdateLastLogin(ctx, login.ID); err != nil {
		return User{}, err
	}

	return s.Store.UserByID(ctx, login.ID)
}
