package leave

import "time"

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

var Types = []string{"annual", "sick", "personal", "maternity", "paternity", "emergency"}

type Request struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employeeId"`
	EmployeeName     string     `json:"employeeName,omitempty"`
	EmployeeNumber   string     `json:"employeeNumber,omitempty"`
	Type             string     `json:"type"`
	StartDate        time.Time  `json:"startDate"`
	EndDate          time.Time  `json:"endDate"`
	Days             int        `json:"days"`
	Reason           string     `json:"reason"`
	Status           string     `json:"status"`
	ApproverID       string     `json:"approverId,omitempty"`
	ApproverName     string     `json:"approverName,omitempty"`
	ApprovalDate     *time.Time `json:"approvalDate,omitempty"`
	ApprovalComments string     `json:"approvalComments,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
