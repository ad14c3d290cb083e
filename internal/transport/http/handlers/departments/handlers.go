package departmenthandler

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

type Handler struct {
	Service *core.Service
	Audit   *audit.Service
}

func NewHandler(service *core.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/departments", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{departmentID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Put("/{departmentID}", h.handleUpdate)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Delete("/{departmentID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.Store.ListDepartments(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "departments_failed", "failed to list departments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, departments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	department, err := h.Service.Store.DepartmentByID(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "department not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "department_failed", "failed to load department", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, department, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var params core.DepartmentParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.RequiredPtr("name", params.Name, "name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	department, err := h.Service.CreateDepartment(r.Context(), params)
	if err != nil {
		h.respondError(w, r, err, "failed to create department")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "department.create", "department", department.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit department.create failed", "err", err)
	}
	api.Created(w, department, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	var params core.DepartmentParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	department, err := h.Service.UpdateDepartment(r.Context(), departmentID, params)
	if err != nil {
		h.respondError(w, r, err, "failed to update department")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "department.update", "department", departmentID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit department.update failed", "err", err)
	}
	api.Success(w, department, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	if err := h.Service.Store.DeleteDepartment(r.Context(), departmentID); err != nil {
		h.respondError(w, r, err, "failed to delete department")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "department.delete", "department", departmentID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit department.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var refErr *core.ReferenceError
	switch {
	case errors.Is(err, core.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, core.ErrDepartmentNameTaken):
		api.Fail(w, http.StatusConflict, "conflict", "department name already in use", middleware.GetRequestID(r.Context()))
	case errors.Is(err, core.ErrDepartmentInUse):
		api.Fail(w, http.StatusConflict, "conflict", "department has assigned employees", middleware.GetRequestID(r.Context()))
	case errors.As(err, &refErr):
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{
			{Field: refErr.Field, Reason: "referenced record does not exist"},
		})
	default:
		api.Fail(w, http.StatusInternalServerError, "department_failed", fallback, middleware.GetRequestID(r.Context()))
	}
}
