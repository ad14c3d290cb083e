package positionhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/core"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

// Handler serves positions, exposed to clients under /roles.
type Handler struct {
	Service *core.Service
	Audit   *audit.Service
}

func NewHandler(service *core.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/department/{departmentID}", h.handleByDepartment)
		r.Get("/{positionID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Put("/{positionID}", h.handleUpdate)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Delete("/{positionID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Service.Store.ListPositions(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "roles_failed", "failed to list roles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, positions, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleByDepartment(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Service.Store.PositionsByDepartment(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "roles_failed", "failed to list roles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, positions, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	position, err := h.Service.Store.PositionByID(r.Context(), chi.URLParam(r, "positionID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "role not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "role_failed", "failed to load role", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, position, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var params core.PositionParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if !h.validateParams(w, r, params, true) {
		return
	}

	position, err := h.Service.CreatePosition(r.Context(), params)
	if err != nil {
		h.respondError(w, r, err, "failed to create role")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "role.create", "position", position.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit role.create failed", "err", err)
	}
	api.Created(w, position, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	positionID := chi.URLParam(r, "positionID")

	var params core.PositionParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if !h.validateParams(w, r, params, false) {
		return
	}

	position, err := h.Service.UpdatePosition(r.Context(), positionID, params)
	if err != nil {
		h.respondError(w, r, err, "failed to update role")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "role.update", "position", positionID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit role.update failed", "err", err)
	}
	api.Success(w, position, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	positionID := chi.URLParam(r, "positionID")

	if err := h.Service.Store.DeletePosition(r.Context(), positionID); err != nil {
		h.respondError(w, r, err, "failed to delete role")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "role.delete", "position", positionID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit role.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) validateParams(w http.ResponseWriter, r *http.Request, params core.PositionParams, create bool) bool {
	v := shared.NewValidator()
	if create {
		v.RequiredPtr("title", params.Title, "title is required")
		v.RequiredPtr("department", params.DepartmentID, "department is required")
	} else {
		v.OptionalNonEmpty("title", params.Title, "title is required")
	}
	v.EnumPtr("level", params.Level, core.PositionLevels, "must be one of junior, mid, senior, lead, manager")
	return !v.Reject(w, middleware.GetRequestID(r.Context()))
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var refErr *core.ReferenceError
	switch {
	case errors.Is(err, core.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "role not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, core.ErrPositionInUse):
		api.Fail(w, http.StatusConflict, "conflict", "role has assigned employees", middleware.GetRequestID(r.Context()))
	case errors.As(err, &refErr):
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{
			{Field: refErr.Field, Reason: "referenced record does not exist"},
		})
	default:
		api.Fail(w, http.StatusInternalServerError, "role_failed", fallback, middleware.GetRequestID(r.Context()))
	}
}
