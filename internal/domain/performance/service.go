package performance

import (
	"context"
	"encoding/json"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

type CreateParams struct {
	EmployeeID string
	Period     Period
	Goals      json.RawMessage
	Ratings    Ratings
	Feedback   Feedback
	Status     string
}

func (s *Service) Create(ctx context.Context, reviewerEmployeeID string, params CreateParams) (Review, error) {
	status := params.Status
	if status == "" {
		status = StatusDraft
	}
	review := Review{
		EmployeeID: params.EmployeeID,
		ReviewerID: reviewerEmployeeID,
		Period:     params.Period,
		Goals:      params.Goals,
		Ratings:    params.Ratings,
		Feedback:   params.Feedback,
		Status:     status,
	}
	review.OverallRating = ComputeOverall(review.Ratings)

	id, err := s.Store.CreateReview(ctx, review)
	if err != nil {
		return Review{}, err
	}
	return s.Store.ReviewByID(ctx, id)
}

type UpdateParams struct {
	Period   *Period
	Goals    json.RawMessage
	Ratings  *Ratings
	Feedback *Feedback
	Status   *string
}

// Update merges the supplied fields and recomputes the overall rating
// before persisting. When the merged ratings are all unset the stored
// overall value is left untouched.
func (s *Service) Update(ctx context.Context, reviewID string, params UpdateParams) (Review, error) {
	existing, err := s.Store.ReviewByID(ctx, reviewID)
	if err != nil {
		return Review{}, err
	}

	if params.Period != nil {
		existing.Period = *params.Period
	}
	if params.Goals != nil {
		existing.Goals = params.Goals
	}
	if params.Ratings != nil {
		existing.Ratings = *params.Ratings
	}
	if params.Feedback != nil {
		existing.Feedback = *params.Feedback
	}
	if params.Status != nil {
		existing.Status = *params.Status
	}

	if overall := ComputeOverall(existing.Ratings); overall != nil {
		existing.OverallRating = overall
	}

	if err := s.Store.UpdateReview(ctx, reviewID, existing); err != nil {
		return Review{}, err
	}
	return s.Store.ReviewByID(ctx, reviewID)
}

func (s *Service) List(ctx context.Context) ([]Review, error) {
	return s.Store.ListReviews(ctx)
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]Review, error) {
	return s.Store.ReviewsByEmployee(ctx, employeeID)
}

func (s *Service) Get(ctx context.Context, reviewID string) (Review, error) {
	return s.Store.ReviewByID(ctx, reviewID)
}

func (s *Service) Delete(ctx context.Context, reviewID string) error {
	return s.Store.DeleteReview(ctx, reviewID)
}

func ValidPeriod(p Period) bool {
	return !p.StartDate.IsZero() && !p.EndDate.IsZero() && !p.EndDate.Before(p.StartDate)
}

func ValidRating(v *int) bool {
	return v == nil || (*v >= 1 && *v <= 5)
}

func ValidRatings(r Ratings) bool {
	for _, rating := range []*int{r.Technical, r.Communication, r.Teamwork, r.Leadership, r.Innovation} {
		if !ValidRating(rating) {
			return false
		}
	}
	return true
}
