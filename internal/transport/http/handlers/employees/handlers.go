package employeehandler

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
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Get("/stats", h.handleStats)
		r.Get("/department/{departmentID}", h.handleByDepartment)
		r.Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Delete("/{employeeID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.Store.ListEmployees(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	employee, err := h.Service.Store.EmployeeByID(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleByDepartment(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.Store.EmployeesByDepartment(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Store.EmployeeStats(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stats_failed", "failed to compute employee stats", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var params core.EmployeeParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if !h.validateParams(w, r, params, true) {
		return
	}

	employee, err := h.Service.CreateEmployee(r.Context(), params)
	if err != nil {
		h.respondError(w, r, err, "failed to create employee")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "employee.create", "employee", employee.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit employee.create failed", "err", err)
	}
	api.Created(w, employee, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var params core.EmployeeParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if !h.validateParams(w, r, params, false) {
		return
	}

	employee, err := h.Service.UpdateEmployee(r.Context(), employeeID, params)
	if err != nil {
		h.respondError(w, r, err, "failed to update employee")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "employee.update", "employee", employeeID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit employee.update failed", "err", err)
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	if err := h.Service.Store.DeleteEmployee(r.Context(), employeeID); err != nil {
		h.respondError(w, r, err, "failed to delete employee")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "employee.delete", "employee", employeeID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit employee.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) validateParams(w http.ResponseWriter, r *http.Request, params core.EmployeeParams, create bool) bool {
	v := shared.NewValidator()
	if create {
		v.RequiredPtr("firstName", params.FirstName, "first name is required")
		v.RequiredPtr("lastName", params.LastName, "last name is required")
		v.RequiredPtr("email", params.Email, "email is required")
		v.RequiredPtr("departmentId", params.DepartmentID, "department is required")
		v.RequiredPtr("roleId", params.PositionID, "role is required")
	} else {
		v.OptionalNonEmpty("firstName", params.FirstName, "first name is required")
		v.OptionalNonEmpty("lastName", params.LastName, "last name is required")
		v.OptionalNonEmpty("email", params.Email, "email is required")
		v.OptionalNonEmpty("departmentId", params.DepartmentID, "department is required")
		v.OptionalNonEmpty("roleId", params.PositionID, "role is required")
	}
	v.EnumPtr("gender", params.Gender, core.Genders, "must be one of male, female, other")
	v.EnumPtr("status", params.Status, core.EmployeeStatuses, "must be one of active, inactive, terminated")
	return !v.Reject(w, middleware.GetRequestID(r.Context()))
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var refErr *core.ReferenceError
	switch {
	case errors.Is(err, core.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, core.ErrEmailTaken):
		api.Fail(w, http.StatusConflict, "conflict", "email already in use", middleware.GetRequestID(r.Context()))
	case errors.As(err, &refErr):
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{
			{Field: refErr.Field, Reason: "referenced record does not exist"},
		})
	default:
		api.Fail(w, http.StatusInternalServerError, "employee_failed", fallback, middleware.GetRequestID(r.Context()))
	}
}
