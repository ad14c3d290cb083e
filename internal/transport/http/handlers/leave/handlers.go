package leavehandler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/leave"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Audit   *audit.Service
	Idem    *middleware.IdempotencyStore
}

func NewHandler(service *leave.Service, auditSvc *audit.Service, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Idem: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leaves", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Get("/", h.handleList)
		r.Get("/my-leaves", h.handleMyLeaves)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Get("/employee/{employeeID}", h.handleByEmployee)
		r.Get("/{requestID}", h.handleGet)
		r.Post("/", h.handleCreate)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Put("/{requestID}/status", h.handleDecide)
		r.Put("/{requestID}/cancel", h.handleCancel)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leaves_failed", "failed to list leave requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMyLeaves(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requests, err := h.Service.ListByEmployee(r.Context(), user.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leaves_failed", "failed to list leave requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleByEmployee(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListByEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leaves_failed", "failed to list leave requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	request, err := h.Service.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		h.respondError(w, r, err, "failed to load leave request")
		return
	}
	if request.EmployeeID != user.EmployeeID && user.RoleName == auth.RoleEmployee {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, request, middleware.GetRequestID(r.Context()))
}

type createRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	var payload createRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(raw)
	if idempotencyKey != "" {
		stored, found, err := h.Idem.Check(r.Context(), user.UserID, "leave.create", idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "conflict", "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			log.Printf("idempotency check failed: %v", err)
		}
		if found {
			api.Success(w, stored, middleware.GetRequestID(r.Context()))
			return
		}
	}

	v := shared.NewValidator()
	v.Required("type", payload.Type, "leave type is required")
	v.Enum("type", payload.Type, leave.Types, "unknown leave type")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	request, err := h.Service.Create(r.Context(), user.EmployeeID, leave.CreateParams{
		Type:      payload.Type,
		StartDate: start,
		EndDate:   end,
		Reason:    payload.Reason,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_create_failed", "failed to create leave request", middleware.GetRequestID(r.Context()))
		return
	}

	if idempotencyKey != "" {
		if encoded, err := json.Marshal(request); err != nil {
			log.Printf("idempotency encode failed: %v", err)
		} else if err := h.Idem.Save(r.Context(), user.UserID, "leave.create", idempotencyKey, requestHash, encoded); err != nil {
			log.Printf("idempotency save failed: %v", err)
		}
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "leave.create", "leave_request", request.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit leave.create failed", "err", err)
	}
	api.Created(w, request, middleware.GetRequestID(r.Context()))
}

type decideRequest struct {
	Status   string `json:"status"`
	Comments string `json:"comments"`
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")

	var payload decideRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Status != leave.StatusApproved && payload.Status != leave.StatusRejected {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{
			{Field: "status", Reason: "must be approved or rejected"},
		})
		return
	}

	request, err := h.Service.Decide(r.Context(), requestID, payload.Status, user.EmployeeID, payload.Comments)
	if err != nil {
		h.respondError(w, r, err, "failed to update leave request")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "leave."+payload.Status, "leave_request", requestID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit leave decision failed", "err", err)
	}
	api.Success(w, request, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")

	request, err := h.Service.Cancel(r.Context(), requestID, user.EmployeeID)
	if err != nil {
		h.respondError(w, r, err, "failed to cancel leave request")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "leave.cancel", "leave_request", requestID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit leave.cancel failed", "err", err)
	}
	api.Success(w, request, middleware.GetRequestID(r.Context()))
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrNotPending):
		api.Fail(w, http.StatusConflict, "conflict", "leave request is no longer pending", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrNotOwner):
		api.Fail(w, http.StatusForbidden, "forbidden", "leave request belongs to another employee", middleware.GetRequestID(r.Context()))
	default:
		api.Fail(w, http.StatusInternalServerError, "leave_failed", fallback, middleware.GetRequestID(r.Context()))
	}
}
