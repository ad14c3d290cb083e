package core

import "time"

const (
	EmployeeStatusActive     = "active"
	EmployeeStatusInactive   = "inactive"
	EmployeeStatusTerminated = "terminated"
)

var EmployeeStatuses = []string{EmployeeStatusActive, EmployeeStatusInactive, EmployeeStatusTerminated}

var Genders = []string{"male", "female", "other"}

var PositionLevels = []string{"junior", "mid", "senior", "lead", "manager"}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

type Employee struct {
	ID               string            `json:"id"`
	EmployeeNumber   string            `json:"employeeId"`
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	DateOfBirth      *time.Time        `json:"dateOfBirth,omitempty"`
	Gender           string            `json:"gender,omitempty"`
	Address          *Address          `json:"address,omitempty"`
	DepartmentID     string            `json:"departmentId"`
	DepartmentName   string            `json:"departmentName,omitempty"`
	PositionID       string            `json:"roleId"`
	PositionTitle    string            `json:"roleTitle,omitempty"`
	BaseSalary       float64           `json:"baseSalary,omitempty"`
	ManagerID        string            `json:"managerId,omitempty"`
	ManagerName      string            `json:"managerName,omitempty"`
	DateOfJoining    *time.Time        `json:"dateOfJoining,omitempty"`
	Status           string            `json:"status"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

type Department struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Budget        float64   `json:"budget"`
	HeadID        string    `json:"headId,omitempty"`
	HeadName      string    `json:"headName,omitempty"`
	IsActive      bool      `json:"isActive"`
	EmployeeCount int       `json:"employeeCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Position struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	DepartmentID   string    `json:"departmentId"`
	DepartmentName string    `json:"departmentName,omitempty"`
	Description    string    `json:"description,omitempty"`
	BaseSalary     float64   `json:"baseSalary"`
	Level          string    `json:"level"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type DepartmentCount struct {
	DepartmentID string `json:"departmentId"`
	Name         string `json:"name"`
	Count        int    `json:"count"`
}

type EmployeeStats struct {
	TotalEmployees    int               `json:"totalEmployees"`
	ActiveEmployees   int               `json:"activeEmployees"`
	InactiveEmployees int               `json:"inactiveEmployees"`
	DepartmentStats   []DepartmentCount `json:"departmentStats"`
}

// EmployeeName is the slim projection used by department rosters and
// reviewer pick-lists.
type EmployeeName struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
