package leave

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("leave request not found")
	ErrNotPending = errors.New("only pending requests can be decided")
	ErrNotOwner   = errors.New("request belongs to another employee")
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

type CreateParams struct {
	Type      string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// Create computes the day count from the supplied dates and freezes it
// on the stored record.
func (s *Service) Create(ctx context.Context, employeeID string, params CreateParams) (Request, error) {
	days, err := CalculateDays(params.StartDate, params.EndDate)
	if err != nil {
		return Request{}, err
	}

	id, err := s.Store.CreateRequest(ctx, Request{
		EmployeeID: employeeID,
		Type:       params.Type,
		StartDate:  params.StartDate,
		EndDate:    params.EndDate,
		Days:       days,
		Reason:     params.Reason,
	})
	if err != nil {
		return Request{}, err
	}
	return s.Store.RequestByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Request, error) {
	return s.Store.ListRequests(ctx)
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]Request, error) {
	return s.Store.RequestsByEmployee(ctx, employeeID)
}

func (s *Service) Get(ctx context.Context, requestID string) (Request, error) {
	return s.Store.RequestByID(ctx, requestID)
}

// Decide approves or rejects a pending request, recording the acting
// approver and a server-side timestamp. Requests that already left
// pending cannot be decided again.
func (s *Service) Decide(ctx context.Context, requestID, status, approverEmployeeID, comments string) (Request, error) {
	if status != StatusApproved && status != StatusRejected {
		return Request{}, errors.New("status must be approved or rejected")
	}

	if err := s.Store.DecideRequest(ctx, requestID, status, approverEmployeeID, comments, time.Now().UTC()); err != nil {
		return Request{}, err
	}
	return s.Store.RequestByID(ctx, requestID)
}

func (s *Service) Cancel(ctx context.Context, requestID, employeeID string) (Request, error) {
	existing, err := s.Store.RequestByID(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if existing.EmployeeID != employeeID {
		return Request{}, ErrNotOwner
	}

	if err := s.Store.CancelRequest(ctx, requestID, employeeID); err != nil {
		return Request{}, err
	}
	return s.Store.RequestByID(ctx, requestID)
}
