package recruiting

import (
	"context"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

type PostingParams struct {
	Title            *string      `json:"title"`
	DepartmentID     *string      `json:"department"`
	Description      *string      `json:"description"`
	Requirements     []string     `json:"requirements"`
	Responsibilities []string     `json:"responsibilities"`
	SalaryRange      *SalaryRange `json:"salaryRange"`
	EmploymentType   *string      `json:"employmentType"`
	Location         *string      `json:"location"`
	Deadline         *time.Time   `json:"applicationDeadline"`
	Status           *string      `json:"status"`
}

func (s *Service) CreatePosting(ctx context.Context, postedByEmployeeID string, params PostingParams) (Posting, error) {
	p := Posting{
		PostedBy:       postedByEmployeeID,
		Status:         PostingActive,
		EmploymentType: EmploymentFullTime,
		Deadline:       params.Deadline,
	}
	applyPostingParams(&p, params)

	id, err := s.Store.CreatePosting(ctx, p)
	if err != nil {
		return Posting{}, err
	}
	return s.Store.PostingByID(ctx, id)
}

func (s *Service) UpdatePosting(ctx context.Context, postingID string, params PostingParams) (Posting, error) {
	existing, err := s.Store.PostingByID(ctx, postingID)
	if err != nil {
		return Posting{}, err
	}
	if params.Deadline != nil {
		existing.Deadline = params.Deadline
	}
	applyPostingParams(&existing, params)

	if err := s.Store.UpdatePosting(ctx, postingID, existing); err != nil {
		return Posting{}, err
	}
	return s.Store.PostingByID(ctx, postingID)
}

func applyPostingParams(p *Posting, params PostingParams) {
	if params.Title != nil {
		p.Title = *params.Title
	}
	if params.DepartmentID != nil {
		p.DepartmentID = *params.DepartmentID
	}
	if params.Description != nil {
		p.Description = *params.Description
	}
	if params.Requirements != nil {
		p.Requirements = params.Requirements
	}
	if params.Responsibilities != nil {
		p.Responsibilities = params.Responsibilities
	}
	if params.SalaryRange != nil {
		p.SalaryRange = *params.SalaryRange
	}
	if params.EmploymentType != nil {
		p.EmploymentType = *params.EmploymentType
	}
	if params.Location != nil {
		p.Location = *params.Location
	}
	if params.Status != nil {
		p.Status = *params.Status
	}
}

func (s *Service) ListPostings(ctx context.Context, status string) ([]Posting, error) {
	return s.Store.ListPostings(ctx, status)
}

func (s *Service) GetPosting(ctx context.Context, postingID string) (Posting, error) {
	return s.Store.PostingByID(ctx, postingID)
}

func (s *Service) DeletePosting(ctx context.Context, postingID string) error {
	return s.Store.DeletePosting(ctx, postingID)
}

func (s *Service) Apply(ctx context.Context, jobID, applicantEmployeeID, coverLetter string) (Application, error) {
	id, err := s.Store.CreateApplication(ctx, Application{
		JobID:       jobID,
		ApplicantID: applicantEmployeeID,
		CoverLetter: coverLetter,
	})
	if err != nil {
		return Application{}, err
	}
	return s.Store.ApplicationByID(ctx, id)
}

func (s *Service) MyApplications(ctx context.Context, applicantEmployeeID string) ([]Application, error) {
	return s.Store.ApplicationsByApplicant(ctx, applicantEmployeeID)
}

func (s *Service) ApplicationsForJob(ctx context.Context, jobID string) ([]Application, error) {
	return s.Store.ApplicationsByJob(ctx, jobID)
}

type ReviewParams struct {
	Status            string
	Comments          string
	InterviewDate     *time.Time
	InterviewFeedback string
}

// SetApplicationStatus records a review decision. Any status may move
// to any other; the acting reviewer and time are stamped on each call.
func (s *Service) SetApplicationStatus(ctx context.Context, applicationID, reviewerEmployeeID string, params ReviewParams) (Application, error) {
	err := s.Store.UpdateApplicationStatus(ctx, applicationID, params.Status, reviewerEmployeeID,
		params.Comments, time.Now().UTC(), params.InterviewDate, params.InterviewFeedback)
	if err != nil {
		return Application{}, err
	}
	return s.Store.ApplicationByID(ctx, applicationID)
}

func ValidPostingStatus(status string) bool {
	for _, s := range PostingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func ValidEmploymentType(t string) bool {
	for _, e := range EmploymentTypes {
		if e == t {
			return true
		}
	}
	return false
}

func ValidApplicationStatus(status string) bool {
	for _, s := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}
