package recruitinghandler

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
	"ems/internal/domain/core"
	"ems/internal/domain/recruiting"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Service *recruiting.Service
	Core    *core.Store
	Audit   *audit.Service
	Idem    *middleware.IdempotencyStore
}

func NewHandler(service *recruiting.Service, coreStore *core.Store, auditSvc *audit.Service, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Core: coreStore, Audit: auditSvc, Idem: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListPostings)
		r.Get("/{jobID}", h.handleGetPosting)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Post("/", h.handleCreatePosting)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Put("/{jobID}", h.handleUpdatePosting)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Delete("/{jobID}", h.handleDeletePosting)
	})
	r.Route("/applications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", h.handleApply)
		r.Get("/my-applications", h.handleMyApplications)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Get("/job/{jobID}", h.handleApplicationsByJob)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Put("/{applicationID}/status", h.handleApplicationStatus)
	})
}

func (h *Handler) handleListPostings(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	// Employees only see open postings; privileged callers may filter.
	status := r.URL.Query().Get("status")
	if user.RoleName == auth.RoleEmployee || user.RoleName == auth.RoleManager {
		status = recruiting.PostingActive
	}

	postings, err := h.Service.ListPostings(r.Context(), status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "jobs_failed", "failed to list job postings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, postings, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetPosting(w http.ResponseWriter, r *http.Request) {
	posting, err := h.Service.GetPosting(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		h.respondError(w, r, err, "failed to load job posting")
		return
	}
	api.Success(w, posting, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePosting(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var params recruiting.PostingParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.RequiredPtr("title", params.Title, "title is required")
	v.RequiredPtr("department", params.DepartmentID, "department is required")
	if params.EmploymentType != nil && !recruiting.ValidEmploymentType(*params.EmploymentType) {
		v.Add("employmentType", "must be one of full-time, part-time, contract, internship")
	}
	if params.Status != nil && !recruiting.ValidPostingStatus(*params.Status) {
		v.Add("status", "must be one of active, closed, filled")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if !h.departmentResolves(w, r, *params.DepartmentID) {
		return
	}

	posting, err := h.Service.CreatePosting(r.Context(), user.EmployeeID, params)
	if err != nil {
		h.respondError(w, r, err, "failed to create job posting")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "job.create", "job_posting", posting.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit job.create failed", "err", err)
	}
	api.Created(w, posting, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdatePosting(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	jobID := chi.URLParam(r, "jobID")

	var params recruiting.PostingParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if params.EmploymentType != nil && !recruiting.ValidEmploymentType(*params.EmploymentType) {
		v.Add("employmentType", "must be one of full-time, part-time, contract, internship")
	}
	if params.Status != nil && !recruiting.ValidPostingStatus(*params.Status) {
		v.Add("status", "must be one of active, closed, filled")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if params.DepartmentID != nil && !h.departmentResolves(w, r, *params.DepartmentID) {
		return
	}

	posting, err := h.Service.UpdatePosting(r.Context(), jobID, params)
	if err != nil {
		h.respondError(w, r, err, "failed to update job posting")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "job.update", "job_posting", jobID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit job.update failed", "err", err)
	}
	api.Success(w, posting, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeletePosting(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	jobID := chi.URLParam(r, "jobID")

	if err := h.Service.DeletePosting(r.Context(), jobID); err != nil {
		h.respondError(w, r, err, "failed to delete job posting")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "job.delete", "job_posting", jobID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit job.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

type applyRequest struct {
	JobID       string `json:"jobId"`
	CoverLetter string `json:"coverLetter"`
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	var payload applyRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(raw)
	if idempotencyKey != "" {
		stored, found, err := h.Idem.Check(r.Context(), user.UserID, "application.create", idempotencyKey, requestHash)
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
	v.Required("jobId", payload.JobID, "job is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	application, err := h.Service.Apply(r.Context(), payload.JobID, user.EmployeeID, payload.CoverLetter)
	if err != nil {
		h.respondError(w, r, err, "failed to submit application")
		return
	}

	if idempotencyKey != "" {
		if encoded, err := json.Marshal(application); err != nil {
			log.Printf("idempotency encode failed: %v", err)
		} else if err := h.Idem.Save(r.Context(), user.UserID, "application.create", idempotencyKey, requestHash, encoded); err != nil {
			log.Printf("idempotency save failed: %v", err)
		}
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "application.create", "job_application", application.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit application.create failed", "err", err)
	}
	api.Created(w, application, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMyApplications(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	applications, err := h.Service.MyApplications(r.Context(), user.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "applications_failed", "failed to list applications", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, applications, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApplicationsByJob(w http.ResponseWriter, r *http.Request) {
	applications, err := h.Service.ApplicationsForJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "applications_failed", "failed to list applications", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, applications, middleware.GetRequestID(r.Context()))
}

type statusRequest struct {
	Status            string `json:"status"`
	Comments          string `json:"comments"`
	InterviewDate     string `json:"interviewDate"`
	InterviewFeedback string `json:"interviewFeedback"`
}

func (h *Handler) handleApplicationStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	applicationID := chi.URLParam(r, "applicationID")

	var payload statusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if !recruiting.ValidApplicationStatus(payload.Status) {
		v.Add("status", "unknown application status")
	}
	params := recruiting.ReviewParams{
		Status:            payload.Status,
		Comments:          payload.Comments,
		InterviewFeedback: payload.InterviewFeedback,
	}
	if payload.InterviewDate != "" {
		if when, ok := v.Date("interviewDate", payload.InterviewDate); ok {
			params.InterviewDate = &when
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	application, err := h.Service.SetApplicationStatus(r.Context(), applicationID, user.EmployeeID, params)
	if err != nil {
		h.respondError(w, r, err, "failed to update application")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "application.status", "job_application", applicationID, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit application.status failed", "err", err)
	}
	api.Success(w, application, middleware.GetRequestID(r.Context()))
}

func (h *Handler) departmentResolves(w http.ResponseWriter, r *http.Request, departmentID string) bool {
	exists, err := h.Core.DepartmentExists(r.Context(), departmentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_failed", "failed to validate department", middleware.GetRequestID(r.Context()))
		return false
	}
	if !exists {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{
			{Field: "department", Reason: "referenced department does not exist"},
		})
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, recruiting.ErrPostingNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "job posting not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, recruiting.ErrApplicationNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "job application not found", middleware.GetRequestID(r.Context()))
	default:
		api.Fail(w, http.StatusInternalServerError, "recruiting_failed", fallback, middleware.GetRequestID(r.Context()))
	}
}
