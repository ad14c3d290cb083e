package recruiting

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrPostingNotFound     = errors.New("job posting not found")
	ErrApplicationNotFound = errors.New("job application not found")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const postingColumns = `
    j.id, j.title, j.department_id::text, COALESCE(d.name, ''),
    j.description, j.requirements, j.responsibilities,
    j.salary_min, j.salary_max, j.employment_type, j.location,
    COALESCE(j.posted_by::text, ''), COALESCE(p.first_name || ' ' || p.last_name, ''),
    j.deadline, j.status, j.applications_count,
    j.created_at, j.updated_at`

const postingJoins = `
    FROM job_postings j
    LEFT JOIN departments d ON j.department_id = d.id
    LEFT JOIN employees p ON j.posted_by = p.id`

func scanPosting(row pgx.Row) (Posting, error) {
	var p Posting
	err := row.Scan(&p.ID, &p.Title, &p.DepartmentID, &p.DepartmentName,
		&p.Description, &p.Requirements, &p.Responsibilities,
		&p.SalaryRange.Min, &p.SalaryRange.Max, &p.EmploymentType, &p.Location,
		&p.PostedBy, &p.PostedByName,
		&p.Deadline, &p.Status, &p.ApplicationsCount,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Posting{}, err
	}
	return p, nil
}

func (s *Store) ListPostings(ctx context.Context, status string) ([]Posting, error) {
	query := "SELECT" + postingColumns + postingJoins
	var args []any
	if status != "" {
		query += " WHERE j.status = $1"
		args = append(args, status)
	}
	query += " ORDER BY j.created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postings []Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

func (s *Store) PostingByID(ctx context.Context, postingID string) (Posting, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+postingColumns+postingJoins+" WHERE j.id = $1", postingID)
	p, err := scanPosting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Posting{}, ErrPostingNotFound
	}
	return p, err
}

func (s *Store) CreatePosting(ctx context.Context, p Posting) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_postings
      (title, department_id, description, requirements, responsibilities,
       salary_min, salary_max, employment_type, location, posted_by, deadline, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    RETURNING id
  `, p.Title, p.DepartmentID, p.Description, p.Requirements, p.Responsibilities,
		p.SalaryRange.Min, p.SalaryRange.Max, p.EmploymentType, p.Location,
		p.PostedBy, p.Deadline, p.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdatePosting(ctx context.Context, postingID string, p Posting) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE job_postings
    SET title = $1,
        department_id = $2,
        description = $3,
        requirements = $4,
        responsibilities = $5,
        salary_min = $6,
        salary_max = $7,
        employment_type = $8,
        location = $9,
        deadline = $10,
        status = $11,
        updated_at = now()
    WHERE id = $12
  `, p.Title, p.DepartmentID, p.Description, p.Requirements, p.Responsibilities,
		p.SalaryRange.Min, p.SalaryRange.Max, p.EmploymentType, p.Location,
		p.Deadline, p.Status, postingID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPostingNotFound
	}
	return nil
}

func (s *Store) DeletePosting(ctx context.Context, postingID string) error {
	cmd, err := s.DB.Exec(ctx, "DELETE FROM job_postings WHERE id = $1", postingID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPostingNotFound
	}
	return nil
}

const applicationColumns = `
    a.id, a.job_id::text, COALESCE(j.title, ''),
    a.applicant_id::text, COALESCE(e.first_name || ' ' || e.last_name, ''),
    a.cover_letter, a.status,
    a.reviewer_id::text,
    COALESCE(r.first_name || ' ' || r.last_name, ''),
    a.review_date, COALESCE(a.review_comments, ''),
    a.interview_date, COALESCE(a.interview_feedback, ''),
    a.created_at, a.updated_at`

const applicationJoins = `
    FROM job_applications a
    LEFT JOIN job_postings j ON a.job_id = j.id
    LEFT JOIN employees e ON a.applicant_id = e.id
    LEFT JOIN employees r ON a.reviewer_id = r.id`

func scanApplication(row pgx.Row) (Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.JobID, &a.JobTitle,
		&a.ApplicantID, &a.ApplicantName,
		&a.CoverLetter, &a.Status,
		&a.ReviewerID, &a.ReviewerName,
		&a.ReviewDate, &a.ReviewComments,
		&a.InterviewDate, &a.InterviewFeedback,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Application{}, err
	}
	return a, nil
}

func collectApplications(rows pgx.Rows) ([]Application, error) {
	var applications []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		applications = append(applications, a)
	}
	return applications, rows.Err()
}

func (s *Store) ApplicationsByJob(ctx context.Context, jobID string) ([]Application, error) {
	rows, err := s.DB.Query(ctx, "SELECT"+applicationColumns+applicationJoins+" WHERE a.job_id = $1 ORDER BY a.created_at DESC", jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (s *Store) ApplicationsByApplicant(ctx context.Context, applicantID string) ([]Application, error) {
	rows, err := s.DB.Query(ctx, "SELECT"+applicationColumns+applicationJoins+" WHERE a.applicant_id = $1 ORDER BY a.created_at DESC", applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (s *Store) ApplicationByID(ctx context.Context, applicationID string) (Application, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+applicationColumns+applicationJoins+" WHERE a.id = $1", applicationID)
	a, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Application{}, ErrApplicationNotFound
	}
	return a, err
}

// CreateApplication inserts the application and bumps the posting's
// counter in the same transaction, so the two never drift apart.
func (s *Store) CreateApplication(ctx context.Context, a Application) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO job_applications (job_id, applicant_id, cover_letter, status)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, a.JobID, a.ApplicantID, a.CoverLetter, ApplicationApplied).Scan(&id)
	if err != nil {
		return "", err
	}

	cmd, err := tx.Exec(ctx, `
    UPDATE job_postings
    SET applications_count = applications_count + 1, updated_at = now()
    WHERE id = $1
  `, a.JobID)
	if err != nil {
		return "", err
	}
	if cmd.RowsAffected() == 0 {
		return "", ErrPostingNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateApplicationStatus(ctx context.Context, applicationID, status, reviewerID, comments string, reviewedAt time.Time, interviewDate *time.Time, interviewFeedback string) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE job_applications
    SET status = $1,
        reviewer_id = $2,
        review_date = $3,
        review_comments = $4,
        interview_date = COALESCE($5, interview_date),
        interview_feedback = CASE WHEN $6 <> '' THEN $6 ELSE interview_feedback END,
        updated_at = now()
    WHERE id = $7
  `, status, reviewerID, reviewedAt, comments, interviewDate, interviewFeedback, applicationID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrApplicationNotFound
	}
	return nil
}
