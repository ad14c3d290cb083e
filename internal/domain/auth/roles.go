package auth

// Role names carried in the users table and in token claims. "manager"
// covers department heads; the client treats the two labels as one role.
const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

var AllRoles = []string{RoleAdmin, RoleHR, RoleManager, RoleEmployee}

func ValidRole(name string) bool {
	for _, role := range AllRoles {
		if role == name {
			return true
		}
	}
	return false
}
