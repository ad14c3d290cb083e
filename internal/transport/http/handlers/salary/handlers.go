package salaryhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/core"
	"ems/internal/domain/payroll"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Core    *core.Store
	Audit   *audit.Service
}

func NewHandler(service *payroll.Service, coreStore *core.Store, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Core: coreStore, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/salary", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Get("/", h.handleList)
		r.Get("/my-salary", h.handleMySalary)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Get("/employee/{employeeID}", h.handleByEmployee)
		r.Get("/{salaryID}", h.handleGet)
		r.Get("/{salaryID}/payslip", h.handlePayslip)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Put("/{salaryID}", h.handleUpdate)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Put("/{salaryID}/process", h.handleProcess)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Put("/{salaryID}/pay", h.handlePay)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	month := queryInt(r, "month")
	year := queryInt(r, "year")

	salaries, err := h.Service.List(r.Context(), month, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "salaries_failed", "failed to list salary records", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, salaries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMySalary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	salaries, err := h.Service.ListByEmployee(r.Context(), user.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "salaries_failed", "failed to list salary records", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, salaries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleByEmployee(w http.ResponseWriter, r *http.Request) {
	salaries, err := h.Service.ListByEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "salaries_failed", "failed to list salary records", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, salaries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	salary, err := h.Service.Get(r.Context(), chi.URLParam(r, "salaryID"))
	if err != nil {
		h.respondError(w, r, err, "failed to load salary record")
		return
	}
	if salary.EmployeeID != user.EmployeeID && user.RoleName != auth.RoleAdmin && user.RoleName != auth.RoleHR {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, salary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	salary, err := h.Service.Get(r.Context(), chi.URLParam(r, "salaryID"))
	if err != nil {
		h.respondError(w, r, err, "failed to load salary record")
		return
	}
	if salary.EmployeeID != user.EmployeeID && user.RoleName != auth.RoleAdmin && user.RoleName != auth.RoleHR {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
		return
	}

	payslip, err := payroll.RenderPayslip(salary)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%d-%d.pdf", salary.Year, salary.Month))
	if _, err := w.Write(payslip); err != nil {
		slog.Warn("write payslip failed", "err", err)
	}
}

type createRequest struct {
	EmployeeID   string             `json:"employeeId"`
	BasicSalary  float64            `json:"basicSalary"`
	Allowances   payroll.Allowances `json:"allowances"`
	Deductions   payroll.Deductions `json:"deductions"`
	Month        int                `json:"month"`
	Year         int                `json:"year"`
	WorkingDays  int                `json:"workingDays"`
	AttendedDays int                `json:"attendedDays"`
	Overtime     payroll.Overtime   `json:"overtime"`
	Bonus        float64            `json:"bonus"`
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
	v.IntRange("month", payload.Month, 1, 12, "must be between 1 and 12")
	if payload.Year < 2000 {
		v.Add("year", "must be a four digit year")
	}
	if payload.BasicSalary < 0 {
		v.Add("basicSalary", "must not be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	exists, err := h.Core.EmployeeExists(r.Context(), payload.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "salary_failed", "failed to create salary record", middleware.GetRequestID(r.Context()))
		return
	}
	if !exists {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{
			{Field: "employeeId", Reason: "referenced employee does not exist"},
		})
		return
	}

	salary, err := h.Service.Create(r.Context(), payroll.CreateParams{
		EmployeeID:   payload.EmployeeID,
		BasicSalary:  payload.BasicSalary,
		Allowances:   payload.Allowances,
		Deductions:   payload.Deductions,
		Month:        payload.Month,
		Year:         payload.Year,
		WorkingDays:  payload.WorkingDays,
		AttendedDays: payload.AttendedDays,
		Overtime:     payload.Overtime,
		Bonus:        payload.Bonus,
	})
	if err != nil {
		h.respondError(w, r, err, "failed to create salary record")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "salary.create", "salary", salary.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit salary.create failed", "err", err)
	}
	api.Created(w, salary, middleware.GetRequestID(r.Context()))
}

type updateRequest struct {
	BasicSalary  *float64            `json:"basicSalary"`
	Allowances   *payroll.Allowances `json:"allowances"`
	Deductions   *payroll.Deductions `json:"deductions"`
	Month        *int                `json:"month"`
	Year         *int                `json:"year"`
	WorkingDays  *int                `json:"workingDays"`
	AttendedDays *int                `json:"attendedDays"`
	Overtime     *payroll.Overtime   `json:"overtime"`
	Bonus        *float64            `json:"bonus"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	salaryID := chi.URLParam(r, "salaryID")

	var payload updateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if payload.Month != nil {
		v.IntRange("month", *payload.Month, 1, 12, "must be between 1 and 12")
	}
	if payload.BasicSalary != nil && *payload.BasicSalary < 0 {
		v.Add("basicSalary", "must not be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	salary, err := h.Service.Update(r.Context(), salaryID, payroll.UpdateParams{
		BasicSalary:  payload.BasicSalary,
		Allowances:   payload.Allowances,
		Deductions:   payload.Deductions,
		Month:        payload.Month,
		Year:         payload.Year,
		WorkingDays:  payload.WorkingDays,
		AttendedDays: payload.AttendedDays,
		Overtime:     payload.Overtime,
		Bonus:        payload.Bonus,
	})
	if err != nil {
		h.respondError(w, r, err, "failed to update salary record")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "salary.update", "salary", salaryID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit salary.update failed", "err", err)
	}
	api.Success(w, salary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	salaryID := chi.URLParam(r, "salaryID")

	salary, err := h.Service.Process(r.Context(), salaryID)
	if err != nil {
		h.respondError(w, r, err, "failed to process salary record")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "salary.process", "salary", salaryID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit salary.process failed", "err", err)
	}
	api.Success(w, salary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	salaryID := chi.URLParam(r, "salaryID")

	salary, err := h.Service.MarkPaid(r.Context(), salaryID)
	if err != nil {
		h.respondError(w, r, err, "failed to mark salary record paid")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "salary.pay", "salary", salaryID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit salary.pay failed", "err", err)
	}
	api.Success(w, salary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, payroll.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "salary record not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, payroll.ErrDuplicate):
		api.Fail(w, http.StatusConflict, "conflict", "salary record already exists for this month", middleware.GetRequestID(r.Context()))
	case errors.Is(err, payroll.ErrBadState):
		api.Fail(w, http.StatusConflict, "conflict", "salary record is not in the required status", middleware.GetRequestID(r.Context()))
	default:
		api.Fail(w, http.StatusInternalServerError, "salary_failed", fallback, middleware.GetRequestID(r.Context()))
	}
}

func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
