package performance

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("performance review not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const reviewColumns = `
    r.id, r.employee_id::text,
    COALESCE(e.first_name || ' ' || e.last_name, ''),
    COALESCE(e.employee_number, ''),
    COALESCE(r.reviewer_id::text, ''),
    COALESCE(v.first_name || ' ' || v.last_name, ''),
    r.period_start, r.period_end, r.goals,
    r.rating_technical, r.rating_communication, r.rating_teamwork,
    r.rating_leadership, r.rating_innovation, r.overall_rating,
    COALESCE(r.feedback_strengths, ''), COALESCE(r.feedback_improvements, ''),
    COALESCE(r.feedback_comments, ''), r.status, r.created_at, r.updated_at`

const reviewJoins = `
    FROM performance_reviews r
    LEFT JOIN employees e ON r.employee_id = e.id
    LEFT JOIN employees v ON r.reviewer_id = v.id`

func scanReview(row pgx.Row) (Review, error) {
	var r Review
	err := row.Scan(&r.ID, &r.EmployeeID, &r.EmployeeName, &r.EmployeeNumber,
		&r.ReviewerID, &r.ReviewerName,
		&r.Period.StartDate, &r.Period.EndDate, &r.Goals,
		&r.Ratings.Technical, &r.Ratings.Communication, &r.Ratings.Teamwork,
		&r.Ratings.Leadership, &r.Ratings.Innovation, &r.OverallRating,
		&r.Feedback.Strengths, &r.Feedback.Improvements, &r.Feedback.Comments,
		&r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return Review{}, err
	}
	return r, nil
}

func (s *Store) ListReviews(ctx context.Context) ([]Review, error) {
	rows, err := s.DB.Query(ctx, "SELECT"+reviewColumns+reviewJoins+" ORDER BY r.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

func (s *Store) ReviewsByEmployee(ctx context.Context, employeeID string) ([]Review, error) {
	rows, err := s.DB.Query(ctx, "SELECT"+reviewColumns+reviewJoins+" WHERE r.employee_id = $1 ORDER BY r.created_at DESC", employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

func collectReviews(rows pgx.Rows) ([]Review, error) {
	var reviews []Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (s *Store) ReviewByID(ctx context.Context, reviewID string) (Review, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+reviewColumns+reviewJoins+" WHERE r.id = $1", reviewID)
	r, err := scanReview(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, ErrNotFound
	}
	return r, err
}

func (s *Store) CreateReview(ctx context.Context, r Review) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO performance_reviews (employee_id, reviewer_id, period_start, period_end, goals,
                                     rating_technical, rating_communication, rating_teamwork,
                                     rating_leadership, rating_innovation, overall_rating,
                                     feedback_strengths, feedback_improvements, feedback_comments, status)
    VALUES ($1,$2,$3,$4,COALESCE($5,'[]'::jsonb),$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
    RETURNING id
  `, r.EmployeeID, r.ReviewerID, r.Period.StartDate, r.Period.EndDate, []byte(r.Goals),
		r.Ratings.Technical, r.Ratings.Communication, r.Ratings.Teamwork,
		r.Ratings.Leadership, r.Ratings.Innovation, r.OverallRating,
		r.Feedback.Strengths, r.Feedback.Improvements, r.Feedback.Comments, r.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateReview(ctx context.Context, reviewID string, r Review) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE performance_reviews
    SET period_start = $1,
        period_end = $2,
        goals = COALESCE($3,'[]'::jsonb),
        rating_technical = $4,
        rating_communication = $5,
        rating_teamwork = $6,
        rating_leadership = $7,
        rating_innovation = $8,
        overall_rating = $9,
        feedback_strengths = $10,
        feedback_improvements = $11,
        feedback_comments = $12,
        status = $13,
        updated_at = now()
    WHERE id = $14
  `, r.Period.StartDate, r.Period.EndDate, []byte(r.Goals),
		r.Ratings.Technical, r.Ratings.Communication, r.Ratings.Teamwork,
		r.Ratings.Leadership, r.Ratings.Innovation, r.OverallRating,
		r.Feedback.Strengths, r.Feedback.Improvements, r.Feedback.Comments,
		r.Status, reviewID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteReview(ctx context.Context, reviewID string) error {
	cmd, err := s.DB.Exec(ctx, "DELETE FROM performance_reviews WHERE id = $1", reviewID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
