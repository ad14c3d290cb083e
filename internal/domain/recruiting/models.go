package recruiting

import "time"

const (
	PostingActive = "active"
	PostingClosed = "closed"
	PostingFilled = "filled"
)

var PostingStatuses = []string{PostingActive, PostingClosed, PostingFilled}

const (
	EmploymentFullTime = "full-time"
	EmploymentPartTime = "part-time"
	EmploymentContract = "contract"
	EmploymentIntern   = "internship"
)

var EmploymentTypes = []string{EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentIntern}

const (
	ApplicationApplied     = "applied"
	ApplicationUnderReview = "under_review"
	ApplicationShortlisted = "shortlisted"
	ApplicationInterviewed = "interviewed"
	ApplicationSelected    = "selected"
	ApplicationRejected    = "rejected"
)

var ApplicationStatuses = []string{
	ApplicationApplied,
	ApplicationUnderReview,
	ApplicationShortlisted,
	ApplicationInterviewed,
	ApplicationSelected,
	ApplicationRejected,
}

type SalaryRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Posting struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	DepartmentID      string      `json:"departmentId"`
	DepartmentName    string      `json:"departmentName,omitempty"`
	Description       string      `json:"description"`
	Requirements      []string    `json:"requirements"`
	Responsibilities  []string    `json:"responsibilities"`
	SalaryRange       SalaryRange `json:"salaryRange"`
	EmploymentType    string      `json:"employmentType"`
	Location          string      `json:"location"`
	PostedBy          string      `json:"postedBy"`
	PostedByName      string      `json:"postedByName,omitempty"`
	Deadline          *time.Time  `json:"deadline,omitempty"`
	Status            string      `json:"status"`
	ApplicationsCount int         `json:"applicationsCount"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

type Application struct {
	ID                string     `json:"id"`
	JobID             string     `json:"jobId"`
	JobTitle          string     `json:"jobTitle,omitempty"`
	ApplicantID       string     `json:"applicantId"`
	ApplicantName     string     `json:"applicantName,omitempty"`
	CoverLetter       string     `json:"coverLetter"`
	Status            string     `json:"status"`
	ReviewerID        *string    `json:"reviewerId,omitempty"`
	ReviewerName      string     `json:"reviewerName,omitempty"`
	ReviewDate        *time.Time `json:"reviewDate,omitempty"`
	ReviewComments    string     `json:"reviewComments,omitempty"`
	InterviewDate     *time.Time `json:"interviewDate,omitempty"`
	InterviewFeedback string     `json:"interviewFeedback,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}
