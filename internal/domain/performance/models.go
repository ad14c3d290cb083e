package performance

import (
	"encoding/json"
	"time"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
)

var Statuses = []string{StatusDraft, StatusSubmitted, StatusApproved}

// Ratings is the fixed set of named 1-5 scores; any subset may be unset.
type Ratings struct {
	Technical     *int `json:"technical,omitempty"`
	Communication *int `json:"communication,omitempty"`
	Teamwork      *int `json:"teamwork,omitempty"`
	Leadership    *int `json:"leadership,omitempty"`
	Innovation    *int `json:"innovation,omitempty"`
}

type Feedback struct {
	Strengths    string `json:"strengths,omitempty"`
	Improvements string `json:"improvements,omitempty"`
	Comments     string `json:"comments,omitempty"`
}

type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type Review struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employeeId"`
	EmployeeName   string          `json:"employeeName,omitempty"`
	EmployeeNumber string          `json:"employeeNumber,omitempty"`
	ReviewerID     string          `json:"reviewerId"`
	ReviewerName   string          `json:"reviewerName,omitempty"`
	Period         Period          `json:"period"`
	Goals          json.RawMessage `json:"goals,omitempty"`
	Ratings        Ratings         `json:"ratings"`
	OverallRating  *float64        `json:"overallRating,omitempty"`
	Feedback       Feedback        `json:"feedback"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
