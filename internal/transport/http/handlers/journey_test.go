package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"ems/internal/app/server"
	"ems/internal/platform/config"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *apiError       `json:"error"`
	RequestID string          `json:"requestId"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func startApp(t *testing.T) (*server.App, *httptest.Server, config.Config) {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	// Migrations are resolved relative to the repo root.
	_, file, _, _ := runtime.Caller(0)
	if err := os.Chdir(filepath.Join(filepath.Dir(file), "..", "..", "..", "..")); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	cfg := config.Config{
		DatabaseURL:       dbURL,
		JWTSecret:         "test-secret",
		FrontendURL:       "http://localhost:5173",
		FrontendDir:       "frontend/dist",
		Environment:       "test",
		SeedAdminEmail:    "admin@test.local",
		SeedAdminPassword: "ChangeMe123!",
		RunMigrations:     true,
		RunSeed:           true,
		MaxBodyBytes:      1048576,
		MetricsEnabled:    true,
		RateLimitPerMin:   1000,
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.DB.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)

	return app, ts, cfg
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, payload any) (int, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, url, err)
	}
	return resp.StatusCode, env
}

func doJSONKeyed(t *testing.T, client *http.Client, method, url, token, idempotencyKey string, payload any) (int, envelope) {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, url, err)
	}
	return resp.StatusCode, env
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()

	status, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login failed with status %d", status)
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if data.Token == "" {
		t.Fatal("expected a token")
	}
	return data.Token
}

func extractID(t *testing.T, env envelope) string {
	t.Helper()
	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode id: %v", err)
	}
	if data.ID == "" {
		t.Fatal("expected an id")
	}
	return data.ID
}

func TestEmployeeLifecycleJourney(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	admin := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()

	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/departments", admin, map[string]any{
		"name":   fmt.Sprintf("Engineering %d", suffix),
		"budget": 500000,
	})
	if status != http.StatusCreated {
		t.Fatalf("create department: status %d", status)
	}
	departmentID := extractID(t, env)

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/roles", admin, map[string]any{
		"title":      "Software Engineer",
		"department": departmentID,
		"baseSalary": 60000,
		"level":      "mid",
	})
	if status != http.StatusCreated {
		t.Fatalf("create role: status %d", status)
	}
	positionID := extractID(t, env)

	employeeEmail := fmt.Sprintf("journey-%d@example.com", suffix)
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/employees", admin, map[string]any{
		"firstName":    "Jordan",
		"lastName":     "Reyes",
		"email":        employeeEmail,
		"departmentId": departmentID,
		"roleId":       positionID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create employee: status %d", status)
	}
	var employee struct {
		ID             string `json:"id"`
		EmployeeNumber string `json:"employeeId"`
		Status         string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &employee); err != nil {
		t.Fatalf("decode employee: %v", err)
	}
	if employee.Status != "active" {
		t.Fatalf("expected default status active, got %s", employee.Status)
	}
	if len(employee.EmployeeNumber) != 12 {
		t.Fatalf("unexpected employee number %q", employee.EmployeeNumber)
	}

	// Unresolvable references are validation failures, not server errors.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/employees", admin, map[string]any{
		"firstName":    "Ghost",
		"lastName":     "Ref",
		"email":        fmt.Sprintf("ghost-%d@example.com", suffix),
		"departmentId": "00000000-0000-0000-0000-000000000000",
		"roleId":       positionID,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for dangling department ref, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}

	// Department with assigned employees cannot be removed.
	status, env = doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/departments/"+departmentID, admin, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 deleting populated department, got %d", status)
	}

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/auth/register", admin, map[string]any{
		"email":      employeeEmail,
		"password":   "Password123!",
		"role":       "employee",
		"employeeId": employee.ID,
	})
	if status != http.StatusCreated {
		t.Fatalf("register user: status %d", status)
	}

	employeeToken := login(t, client, ts.URL, employeeEmail, "Password123!")

	// Role gate: an employee cannot create departments.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/departments", employeeToken, map[string]any{
		"name": "Rogue",
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for employee department create, got %d", status)
	}

	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/employees/stats", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("employee stats: status %d", status)
	}

	// Deleting the employee removes the linked user; the next login
	// must fail rather than producing a half-authenticated session.
	status, _ = doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/employees/"+employee.ID, admin, nil)
	if status != http.StatusOK {
		t.Fatalf("delete employee: status %d", status)
	}
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/auth/login", "", map[string]string{
		"email":    employeeEmail,
		"password": "Password123!",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 after employee deletion, got %d", status)
	}
}

func TestLeaveWorkflowJourney(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	admin := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	departmentID, positionID := createOrgUnits(t, client, ts.URL, admin, suffix)
	employeeEmail := fmt.Sprintf("leave-%d@example.com", suffix)
	employeeID := createEmployee(t, client, ts.URL, admin, employeeEmail, departmentID, positionID)
	registerUser(t, client, ts.URL, admin, employeeEmail, employeeID)
	employeeToken := login(t, client, ts.URL, employeeEmail, "Password123!")

	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/leaves", employeeToken, map[string]any{
		"type":      "annual",
		"startDate": "2025-06-02",
		"endDate":   "2025-06-06",
		"reason":    "family trip",
	})
	if status != http.StatusCreated {
		t.Fatalf("create leave: status %d", status)
	}
	var request struct {
		ID   string `json:"id"`
		Days int    `json:"days"`
	}
	if err := json.Unmarshal(env.Data, &request); err != nil {
		t.Fatalf("decode leave request: %v", err)
	}
	if request.Days != 5 {
		t.Fatalf("expected inclusive 5 day span, got %d", request.Days)
	}

	status, env = doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/leaves/"+request.ID+"/status", admin, map[string]any{
		"status":   "approved",
		"comments": "enjoy",
	})
	if status != http.StatusOK {
		t.Fatalf("approve leave: status %d", status)
	}
	var decided struct {
		Status     string `json:"status"`
		ApproverID string `json:"approverId"`
	}
	if err := json.Unmarshal(env.Data, &decided); err != nil {
		t.Fatalf("decode decision: %v", err)
	}
	if decided.Status != "approved" || decided.ApproverID == "" {
		t.Fatalf("unexpected decision %+v", decided)
	}

	// A second decision on the same request must conflict.
	status, env = doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/leaves/"+request.ID+"/status", admin, map[string]any{
		"status": "rejected",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on double decision, got %d", status)
	}

	// Cancelling an already approved request also conflicts.
	status, _ = doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/leaves/"+request.ID+"/cancel", employeeToken, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 cancelling approved request, got %d", status)
	}

	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/leaves/my-leaves", employeeToken, nil)
	if status != http.StatusOK {
		t.Fatalf("my-leaves: status %d", status)
	}
	var mine []json.RawMessage
	if err := json.Unmarshal(env.Data, &mine); err != nil {
		t.Fatalf("decode my-leaves: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 leave request, got %d", len(mine))
	}
}

func TestPayrollAndRecruitingJourney(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	admin := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	departmentID, positionID := createOrgUnits(t, client, ts.URL, admin, suffix)
	employeeEmail := fmt.Sprintf("payroll-%d@example.com", suffix)
	employeeID := createEmployee(t, client, ts.URL, admin, employeeEmail, departmentID, positionID)
	registerUser(t, client, ts.URL, admin, employeeEmail, employeeID)
	employeeToken := login(t, client, ts.URL, employeeEmail, "Password123!")

	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/salary", admin, map[string]any{
		"employeeId":   employeeID,
		"basicSalary":  60000,
		"allowances":   map[string]any{"hra": 6000, "transport": 3000, "meal": 1500, "medical": 1000, "other": 500},
		"deductions":   map[string]any{"pf": 2000, "tax": 1500, "insurance": 400, "other": 100},
		"month":        7,
		"year":         2025,
		"workingDays":  22,
		"attendedDays": 21,
		"overtime":     map[string]any{"hours": 10, "rate": 150},
		"bonus":        2000,
	})
	if status != http.StatusCreated {
		t.Fatalf("create salary: status %d", status)
	}
	var salary struct {
		ID        string  `json:"id"`
		NetSalary float64 `json:"netSalary"`
		Status    string  `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &salary); err != nil {
		t.Fatalf("decode salary: %v", err)
	}
	// 60000 + 12000 allowances + 1500 overtime + 2000 bonus - 4000 deductions
	if salary.NetSalary != 71500 {
		t.Fatalf("expected net 71500, got %v", salary.NetSalary)
	}
	if salary.Status != "draft" {
		t.Fatalf("expected draft, got %s", salary.Status)
	}

	// Duplicate period for the same employee conflicts.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/salary", admin, map[string]any{
		"employeeId":  employeeID,
		"basicSalary": 60000,
		"month":       7,
		"year":        2025,
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate salary period, got %d", status)
	}

	status, env = doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/salary/"+salary.ID+"/process", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("process salary: status %d", status)
	}
	var processed struct {
		Status        string  `json:"status"`
		ProcessedDate *string `json:"processedDate"`
	}
	if err := json.Unmarshal(env.Data, &processed); err != nil {
		t.Fatalf("decode processed: %v", err)
	}
	if processed.Status != "processed" || processed.ProcessedDate == nil {
		t.Fatalf("unexpected processed record %+v", processed)
	}

	// Processing twice conflicts; paying a processed record succeeds.
	status, _ = doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/salary/"+salary.ID+"/process", admin, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on double process, got %d", status)
	}
	status, env = doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/salary/"+salary.ID+"/pay", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("pay salary: status %d", status)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/salary/"+salary.ID+"/payslip", nil)
	req.Header.Set("Authorization", "Bearer "+employeeToken)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("payslip request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("payslip: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected pdf, got %s", ct)
	}
	pdf, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("payslip body is not a PDF")
	}

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/jobs", admin, map[string]any{
		"title":        "Backend Engineer",
		"department":   departmentID,
		"description":  "Build services",
		"requirements": []string{"Go", "SQL"},
		"salaryRange":  map[string]any{"min": 50000, "max": 90000},
		"location":     "Remote",
	})
	if status != http.StatusCreated {
		t.Fatalf("create posting: status %d", status)
	}
	jobID := extractID(t, env)

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/applications", employeeToken, map[string]any{
		"jobId":       jobID,
		"coverLetter": "I would like to move internally.",
	})
	if status != http.StatusCreated {
		t.Fatalf("apply: status %d", status)
	}
	applicationID := extractID(t, env)

	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/jobs/"+jobID, admin, nil)
	if status != http.StatusOK {
		t.Fatalf("get posting: status %d", status)
	}
	var posting struct {
		ApplicationsCount int `json:"applicationsCount"`
	}
	if err := json.Unmarshal(env.Data, &posting); err != nil {
		t.Fatalf("decode posting: %v", err)
	}
	if posting.ApplicationsCount != 1 {
		t.Fatalf("expected applications count 1, got %d", posting.ApplicationsCount)
	}

	status, env = doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/applications/"+applicationID+"/status", admin, map[string]any{
		"status":   "shortlisted",
		"comments": "strong internal candidate",
	})
	if status != http.StatusOK {
		t.Fatalf("application status: status %d", status)
	}
	var application struct {
		Status     string  `json:"status"`
		ReviewerID *string `json:"reviewerId"`
	}
	if err := json.Unmarshal(env.Data, &application); err != nil {
		t.Fatalf("decode application: %v", err)
	}
	if application.Status != "shortlisted" || application.ReviewerID == nil {
		t.Fatalf("unexpected application %+v", application)
	}
}

func TestPerformanceReviewJourney(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	admin := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	departmentID, positionID := createOrgUnits(t, client, ts.URL, admin, suffix)
	employeeEmail := fmt.Sprintf("perf-%d@example.com", suffix)
	employeeID := createEmployee(t, client, ts.URL, admin, employeeEmail, departmentID, positionID)

	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/performance", admin, map[string]any{
		"employeeId": employeeID,
		"period":     map[string]any{"startDate": "2025-01-01T00:00:00Z", "endDate": "2025-06-30T00:00:00Z"},
		"ratings":    map[string]any{"technical": 4, "communication": 3},
		"feedback":   map[string]any{"strengths": "ships reliably"},
	})
	if status != http.StatusCreated {
		t.Fatalf("create review: status %d", status)
	}
	var review struct {
		ID            string   `json:"id"`
		OverallRating *float64 `json:"overallRating"`
	}
	if err := json.Unmarshal(env.Data, &review); err != nil {
		t.Fatalf("decode review: %v", err)
	}
	if review.OverallRating == nil || *review.OverallRating != 3.5 {
		t.Fatalf("expected overall 3.5, got %v", review.OverallRating)
	}

	status, env = doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/performance/"+review.ID, admin, map[string]any{
		"ratings": map[string]any{"technical": 5, "communication": 3, "teamwork": 4},
		"status":  "submitted",
	})
	if status != http.StatusOK {
		t.Fatalf("update review: status %d", status)
	}
	var updated struct {
		OverallRating *float64 `json:"overallRating"`
		Status        string   `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode updated review: %v", err)
	}
	if updated.OverallRating == nil || *updated.OverallRating != 4 {
		t.Fatalf("expected recomputed overall 4, got %v", updated.OverallRating)
	}
	if updated.Status != "submitted" {
		t.Fatalf("expected submitted, got %s", updated.Status)
	}

	// Out-of-range ratings are rejected before any write.
	status, _ = doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/performance/"+review.ID, admin, map[string]any{
		"ratings": map[string]any{"technical": 9},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range rating, got %d", status)
	}
}

func TestRegisterProvisionsEmployeeProfile(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	admin := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	departmentID, positionID := createOrgUnits(t, client, ts.URL, admin, suffix)

	// Neither an existing employee id nor a profile is a validation failure.
	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/auth/register", admin, map[string]any{
		"email":    fmt.Sprintf("orphan-%d@example.com", suffix),
		"password": "Password123!",
		"role":     "employee",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 without employee link, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}

	// A profile provisions the employee record in the same call.
	accountEmail := fmt.Sprintf("provisioned-%d@example.com", suffix)
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/auth/register", admin, map[string]any{
		"email":    accountEmail,
		"password": "Password123!",
		"role":     "employee",
		"profile": map[string]any{
			"firstName":    "Priya",
			"lastName":     "Nair",
			"departmentId": departmentID,
			"roleId":       positionID,
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("register with profile: status %d", status)
	}
	var account struct {
		ID         string `json:"id"`
		EmployeeID string `json:"employeeId"`
	}
	if err := json.Unmarshal(env.Data, &account); err != nil {
		t.Fatalf("decode account: %v", err)
	}
	if account.EmployeeID == "" {
		t.Fatal("expected a provisioned employee id")
	}

	token := login(t, client, ts.URL, accountEmail, "Password123!")

	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/employees/"+account.EmployeeID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("load provisioned employee: status %d", status)
	}
	var employee struct {
		FirstName string `json:"firstName"`
		Email     string `json:"email"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &employee); err != nil {
		t.Fatalf("decode employee: %v", err)
	}
	if employee.FirstName != "Priya" || employee.Email != accountEmail || employee.Status != "active" {
		t.Fatalf("unexpected provisioned employee %+v", employee)
	}

	// A dangling reference in the profile reads as a field issue.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/auth/register", admin, map[string]any{
		"email":    fmt.Sprintf("dangling-%d@example.com", suffix),
		"password": "Password123!",
		"role":     "employee",
		"profile": map[string]any{
			"firstName":    "No",
			"lastName":     "Department",
			"departmentId": "00000000-0000-0000-0000-000000000000",
			"roleId":       positionID,
		},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for dangling profile reference, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}
}

func TestEmployeeReferenceValidation(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	admin := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	departmentID, positionID := createOrgUnits(t, client, ts.URL, admin, suffix)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing references", map[string]any{
			"firstName": "Missing",
			"lastName":  "Refs",
			"email":     fmt.Sprintf("missing-%d@example.com", suffix),
		}},
		{"malformed department id", map[string]any{
			"firstName":    "Broken",
			"lastName":     "Ref",
			"email":        fmt.Sprintf("broken-%d@example.com", suffix),
			"departmentId": "not-a-uuid",
			"roleId":       positionID,
		}},
		{"malformed role id", map[string]any{
			"firstName":    "Broken",
			"lastName":     "Role",
			"email":        fmt.Sprintf("broken-role-%d@example.com", suffix),
			"departmentId": departmentID,
			"roleId":       "42",
		}},
	}
	for _, tc := range cases {
		status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/employees", admin, tc.payload)
		if status != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, status)
		}
		if env.Error == nil || env.Error.Code != "validation_error" {
			t.Fatalf("%s: expected validation_error, got %+v", tc.name, env.Error)
		}
	}
}

func TestLeaveCreateIdempotency(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	admin := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	departmentID, positionID := createOrgUnits(t, client, ts.URL, admin, suffix)
	employeeEmail := fmt.Sprintf("idem-%d@example.com", suffix)
	employeeID := createEmployee(t, client, ts.URL, admin, employeeEmail, departmentID, positionID)
	registerUser(t, client, ts.URL, admin, employeeEmail, employeeID)
	employeeToken := login(t, client, ts.URL, employeeEmail, "Password123!")

	key := fmt.Sprintf("leave-%d", suffix)
	payload := map[string]any{
		"type":      "annual",
		"startDate": "2025-09-01",
		"endDate":   "2025-09-03",
		"reason":    "retry test",
	}

	status, env := doJSONKeyed(t, client, http.MethodPost, ts.URL+"/api/v1/leaves", employeeToken, key, payload)
	if status != http.StatusCreated {
		t.Fatalf("create leave: status %d", status)
	}
	firstID := extractID(t, env)

	// Retrying the same key replays the stored record without a new write.
	status, env = doJSONKeyed(t, client, http.MethodPost, ts.URL+"/api/v1/leaves", employeeToken, key, payload)
	if status != http.StatusOK {
		t.Fatalf("replay: status %d", status)
	}
	if replayID := extractID(t, env); replayID != firstID {
		t.Fatalf("replay returned a different record: %s vs %s", replayID, firstID)
	}

	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/leaves/my-leaves", employeeToken, nil)
	if status != http.StatusOK {
		t.Fatalf("my-leaves: status %d", status)
	}
	var mine []json.RawMessage
	if err := json.Unmarshal(env.Data, &mine); err != nil {
		t.Fatalf("decode my-leaves: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected the retry to be absorbed, got %d requests", len(mine))
	}

	// Reusing the key with a different payload is a conflict.
	status, env = doJSONKeyed(t, client, http.MethodPost, ts.URL+"/api/v1/leaves", employeeToken, key, map[string]any{
		"type":      "sick",
		"startDate": "2025-10-01",
		"endDate":   "2025-10-02",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for key reuse, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "conflict" {
		t.Fatalf("expected conflict, got %+v", env.Error)
	}
}

func TestOrgStructureRequiresAdmin(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	admin := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	departmentID, positionID := createOrgUnits(t, client, ts.URL, admin, suffix)

	hrEmail := fmt.Sprintf("hr-%d@example.com", suffix)
	status, _ := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/auth/register", admin, map[string]any{
		"email":    hrEmail,
		"password": "Password123!",
		"role":     "hr",
		"profile": map[string]any{
			"firstName":    "Harper",
			"lastName":     "Quinn",
			"departmentId": departmentID,
			"roleId":       positionID,
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("register hr user: status %d", status)
	}
	hrToken := login(t, client, ts.URL, hrEmail, "Password123!")

	// HR manages people, not the org structure.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/departments", hrToken, map[string]any{
		"name": fmt.Sprintf("HR Made %d", suffix),
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for hr department create, got %d", status)
	}
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/roles", hrToken, map[string]any{
		"title":      "Shadow Role",
		"department": departmentID,
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for hr role create, got %d", status)
	}

	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/employees", hrToken, map[string]any{
		"firstName":    "Hired",
		"lastName":     "ByHR",
		"email":        fmt.Sprintf("hired-%d@example.com", suffix),
		"departmentId": departmentID,
		"roleId":       positionID,
	})
	if status != http.StatusCreated {
		t.Fatalf("hr employee create: status %d", status)
	}
	hiredID := extractID(t, env)

	// Employee removal stays with admins.
	status, _ = doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/employees/"+hiredID, hrToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for hr employee delete, got %d", status)
	}

	// Registering accounts stays with admins too.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/auth/register", hrToken, map[string]any{
		"email":    fmt.Sprintf("hr-minted-%d@example.com", suffix),
		"password": "Password123!",
		"role":     "employee",
		"profile": map[string]any{
			"firstName":    "Not",
			"lastName":     "Allowed",
			"departmentId": departmentID,
			"roleId":       positionID,
		},
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for hr register, got %d", status)
	}
}

func createOrgUnits(t *testing.T, client *http.Client, baseURL, token string, suffix int64) (string, string) {
	t.Helper()

	status, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/departments", token, map[string]any{
		"name": fmt.Sprintf("Dept %d", suffix),
	})
	if status != http.StatusCreated {
		t.Fatalf("create department: status %d", status)
	}
	departmentID := extractID(t, env)

	status, env = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/roles", token, map[string]any{
		"title":      "Engineer",
		"department": departmentID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create role: status %d", status)
	}
	return departmentID, extractID(t, env)
}

func createEmployee(t *testing.T, client *http.Client, baseURL, token, email, departmentID, positionID string) string {
	t.Helper()

	status, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/employees", token, map[string]any{
		"firstName":    "Test",
		"lastName":     "Employee",
		"email":        email,
		"departmentId": departmentID,
		"roleId":       positionID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create employee: status %d", status)
	}
	return extractID(t, env)
}

func registerUser(t *testing.T, client *http.Client, baseURL, token, email, employeeID string) {
	t.Helper()

	status, _ := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/register", token, map[string]any{
		"email":      email,
		"password":   "Password123!",
		"role":       "employee",
		"employeeId": employeeID,
	})
	if status != http.StatusCreated {
		t.Fatalf("register user: status %d", status)
	}
}
