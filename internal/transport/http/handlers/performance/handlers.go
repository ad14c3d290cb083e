package performancehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/performance"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Service *performance.Service
	Audit   *audit.Service
}

func NewHandler(service *performance.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Get("/", h.handleList)
		r.Get("/my-reviews", h.handleMyReviews)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Get("/employee/{employeeID}", h.handleByEmployee)
		r.Get("/{reviewID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Put("/{reviewID}", h.handleUpdate)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Delete("/{reviewID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Service.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reviews_failed", "failed to list reviews", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, reviews, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMyReviews(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reviews, err := h.Service.ListByEmployee(r.Context(), user.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reviews_failed", "failed to list reviews", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, reviews, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleByEmployee(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Service.ListByEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reviews_failed", "failed to list reviews", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, reviews, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	review, err := h.Service.Get(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		h.respondError(w, r, err, "failed to load review")
		return
	}
	if review.EmployeeID != user.EmployeeID && user.RoleName == auth.RoleEmployee {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

type createRequest struct {
	EmployeeID string               `json:"employeeId"`
	Period     performance.Period   `json:"period"`
	Goals      json.RawMessage      `json:"goals"`
	Ratings    performance.Ratings  `json:"ratings"`
	Feedback   performance.Feedback `json:"feedback"`
	Status     string               `json:"status"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload createRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee is required")
	if !performance.ValidPeriod(payload.Period) {
		v.Add("period", "must include startDate on or before endDate")
	}
	if !performance.ValidRatings(payload.Ratings) {
		v.Add("ratings", "each rating must be between 1 and 5")
	}
	if payload.Status != "" {
		v.Enum("status", payload.Status, performance.Statuses, "must be one of draft, submitted, approved")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	review, err := h.Service.Create(r.Context(), user.EmployeeID, performance.CreateParams{
		EmployeeID: payload.EmployeeID,
		Period:     payload.Period,
		Goals:      payload.Goals,
		Ratings:    payload.Ratings,
		Feedback:   payload.Feedback,
		Status:     payload.Status,
	})
	if err != nil {
		h.respondError(w, r, err, "failed to create review")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "performance.create", "performance_review", review.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit performance.create failed", "err", err)
	}
	api.Created(w, review, middleware.GetRequestID(r.Context()))
}

type updateRequest struct {
	Period   *performance.Period   `json:"period"`
	Goals    json.RawMessage       `json:"goals"`
	Ratings  *performance.Ratings  `json:"ratings"`
	Feedback *performance.Feedback `json:"feedback"`
	Status   *string               `json:"status"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	var payload updateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if payload.Period != nil && !performance.ValidPeriod(*payload.Period) {
		v.Add("period", "must include startDate on or before endDate")
	}
	if payload.Ratings != nil && !performance.ValidRatings(*payload.Ratings) {
		v.Add("ratings", "each rating must be between 1 and 5")
	}
	if payload.Status != nil {
		v.Enum("status", *payload.Status, performance.Statuses, "must be one of draft, submitted, approved")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	review, err := h.Service.Update(r.Context(), reviewID, performance.UpdateParams{
		Period:   payload.Period,
		Goals:    payload.Goals,
		Ratings:  payload.Ratings,
		Feedback: payload.Feedback,
		Status:   payload.Status,
	})
	if err != nil {
		h.respondError(w, r, err, "failed to update review")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "performance.update", "performance_review", reviewID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit performance.update failed", "err", err)
	}
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	if err := h.Service.Delete(r.Context(), reviewID); err != nil {
		h.respondError(w, r, err, "failed to delete review")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "performance.delete", "performance_review", reviewID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit performance.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, performance.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "review not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Fail(w, http.StatusInternalServerError, "review_failed", fallback, middleware.GetRequestID(r.Context()))
}
