package payroll

import "time"

const (
	StatusDraft     = "draft"
	StatusProcessed = "processed"
	StatusPaid      = "paid"
)

var Statuses = []string{StatusDraft, StatusProcessed, StatusPaid}

// Allowances is the fixed allowance set added onto the basic salary.
type Allowances struct {
	HRA       float64 `json:"hra"`
	Transport float64 `json:"transport"`
	Meal      float64 `json:"meal"`
	Medical   float64 `json:"medical"`
	Other     float64 `json:"other"`
}

func (a Allowances) Total() float64 {
	return a.HRA + a.Transport + a.Meal + a.Medical + a.Other
}

// Deductions is the fixed deduction set subtracted from the gross.
type Deductions struct {
	PF        float64 `json:"pf"`
	Tax       float64 `json:"tax"`
	Insurance float64 `json:"insurance"`
	Other     float64 `json:"other"`
}

func (d Deductions) Total() float64 {
	return d.PF + d.Tax + d.Insurance + d.Other
}

type Overtime struct {
	Hours float64 `json:"hours"`
	Rate  float64 `json:"rate"`
}

type Salary struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employeeId"`
	EmployeeName   string     `json:"employeeName,omitempty"`
	EmployeeNumber string     `json:"employeeNumber,omitempty"`
	BasicSalary    float64    `json:"basicSalary"`
	Allowances     Allowances `json:"allowances"`
	Deductions     Deductions `json:"deductions"`
	Month          int        `json:"month"`
	Year           int        `json:"year"`
	WorkingDays    int        `json:"workingDays"`
	AttendedDays   int        `json:"attendedDays"`
	Overtime       Overtime   `json:"overtime"`
	Bonus          float64    `json:"bonus"`
	NetSalary      float64    `json:"netSalary"`
	Status         string     `json:"status"`
	ProcessedDate  *time.Time `json:"processedDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
