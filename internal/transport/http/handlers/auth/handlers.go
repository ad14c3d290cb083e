package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/core"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
	Store   *auth.Store
	Core    *core.Service
	Audit   *audit.Service
	Secret  string
}

func NewHandler(service *auth.Service, store *auth.Store, coreSvc *core.Service, auditSvc *audit.Service, secret string) *Handler {
	return &Handler{Service: service, Store: store, Core: coreSvc, Audit: auditSvc, Secret: secret}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/profile", h.handleProfile)
			r.Post("/mfa/setup", h.handleMFASetup)
			r.Post("/mfa/enable", h.handleMFAEnable)
			r.Post("/mfa/disable", h.handleMFADisable)
		})
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/register", h.handleRegister)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	user, err := h.Service.Authenticate(r.Context(), payload.Email, payload.Password, payload.MFACode)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		case errors.Is(err, auth.ErrProfileNotLinked):
			api.Fail(w, http.StatusUnauthorized, "profile_not_linked", "user profile is not linked to an employee", middleware.GetRequestID(r.Context()))
		case errors.Is(err, auth.ErrMFARequired):
			api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", middleware.GetRequestID(r.Context()))
		case errors.Is(err, auth.ErrMFAInvalid):
			api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to log in", middleware.GetRequestID(r.Context()))
		}
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:     user.ID,
		RoleName:   user.RoleName,
		EmployeeID: user.EmployeeID,
	}, auth.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"token": token,
		"user":  user,
	}, middleware.GetRequestID(r.Context()))
}

type registerRequest struct {
	Email      string               `json:"email"`
	Password   string               `json:"password"`
	Role       string               `json:"role"`
	EmployeeID string               `json:"employeeId"`
	Profile    *core.EmployeeParams `json:"profile"`
}

// handleRegister provisions the account and, when a profile is supplied
// instead of an existing employee id, the employee record in the same
// flow.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	if len(payload.Password) > 0 && len(payload.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	if payload.Role == "" {
		payload.Role = auth.RoleEmployee
	}
	if !auth.ValidRole(payload.Role) {
		v.Add("role", "must be one of admin, hr, manager, employee")
	}
	if payload.EmployeeID == "" && payload.Profile == nil {
		v.Add("employeeId", "an existing employee id or a profile is required")
	}
	if payload.Profile != nil {
		v.RequiredPtr("profile.firstName", payload.Profile.FirstName, "first name is required")
		v.RequiredPtr("profile.lastName", payload.Profile.LastName, "last name is required")
		v.RequiredPtr("profile.departmentId", payload.Profile.DepartmentID, "department is required")
		v.RequiredPtr("profile.roleId", payload.Profile.PositionID, "role is required")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if payload.EmployeeID != "" {
		exists, err := h.Store.EmployeeExists(r.Context(), payload.EmployeeID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to register user", middleware.GetRequestID(r.Context()))
			return
		}
		if !exists {
			shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{
				{Field: "employeeId", Reason: "referenced employee does not exist"},
			})
			return
		}
	}

	taken, err := h.Store.EmailTaken(r.Context(), payload.Email)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to register user", middleware.GetRequestID(r.Context()))
		return
	}
	if taken {
		api.Fail(w, http.StatusConflict, "conflict", "email is already registered", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := payload.EmployeeID
	if employeeID == "" {
		params := *payload.Profile
		if params.Email == nil {
			params.Email = &payload.Email
		}
		employee, err := h.Core.CreateEmployee(r.Context(), params)
		if err != nil {
			var refErr *core.ReferenceError
			switch {
			case errors.As(err, &refErr):
				shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{
					{Field: "profile." + refErr.Field, Reason: "referenced record does not exist"},
				})
			case errors.Is(err, core.ErrEmailTaken):
				api.Fail(w, http.StatusConflict, "conflict", "email already in use", middleware.GetRequestID(r.Context()))
			default:
				api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to register user", middleware.GetRequestID(r.Context()))
			}
			return
		}
		employeeID = employee.ID
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to register user", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Store.CreateUser(r.Context(), payload.Email, hash, payload.Role, employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to register user", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "auth.register", "user", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r)); err != nil {
		slog.Warn("audit auth.register failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id, "employeeId": employeeID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	record, err := h.Store.UserByID(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "EMS",
		AccountName: user.UserID,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to generate mfa secret", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.SetMFASecret(r.Context(), user.UserID, key.Secret()); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to store mfa secret", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]string{"secret": key.Secret(), "otpauthUrl": key.URL()}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, true)
}

func (h *Handler) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, false)
}

func (h *Handler) toggleMFA(w http.ResponseWriter, r *http.Request, enable bool) {
	user, _ := middleware.GetUser(r.Context())

	var payload mfaCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	secret, err := h.Store.MFASecret(r.Context(), user.UserID)
	if err != nil || secret == "" {
		api.Fail(w, http.StatusBadRequest, "mfa_missing", "mfa setup required", middleware.GetRequestID(r.Context()))
		return
	}
	if !totp.Validate(payload.Code, secret) {
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa code", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.SetMFAEnabled(r.Context(), user.UserID, enable); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_update_failed", "failed to update mfa state", middleware.GetRequestID(r.Context()))
		return
	}
	status := "disabled"
	if enable {
		status = "enabled"
	}
	api.Success(w, map[string]string{"status": status}, middleware.GetRequestID(r.Context()))
}
