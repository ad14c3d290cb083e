package auth

import "time"

type User struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	RoleName   string     `json:"role"`
	EmployeeID string     `json:"employeeId,omitempty"`
	IsActive   bool       `json:"isActive"`
	MFAEnabled bool       `json:"mfaEnabled"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// LoginUser is the credential projection used during authentication. It
// carries the password hash and must never be serialized to a response.
type LoginUser struct {
	ID           string
	Email        string
	PasswordHash string
	RoleName     string
	EmployeeID   string
	MFAEnabled   bool
	MFASecret    string
}
