package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidatorRequired(t *testing.T) {
	v := NewValidator()
	v.Required("name", "  ", "name is required")
	v.Required("email", "a@b.c", "email is required")

	issues := v.Issues()
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Field != "name" {
		t.Fatalf("expected issue on name, got %s", issues[0].Field)
	}
}

func TestValidatorEnum(t *testing.T) {
	allowed := []string{"active", "inactive"}

	v := NewValidator()
	v.Enum("status", "Active", allowed, "bad status")
	if v.HasIssues() {
		t.Fatal("case-insensitive match should pass")
	}

	v.Enum("status", "archived", allowed, "bad status")
	if !v.HasIssues() {
		t.Fatal("unlisted value should fail")
	}

	v2 := NewValidator()
	v2.Enum("status", "", allowed, "bad status")
	if v2.HasIssues() {
		t.Fatal("empty value should be skipped")
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	v.DateOrder("startDate", start, "endDate", end)

	if len(v.Issues()) != 2 {
		t.Fatalf("expected issues on both fields, got %d", len(v.Issues()))
	}
}

func TestValidatorDate(t *testing.T) {
	v := NewValidator()
	if _, ok := v.Date("startDate", "2025-03-10"); !ok {
		t.Fatal("plain date should parse")
	}
	if _, ok := v.Date("endDate", "2025-03-10T08:00:00Z"); !ok {
		t.Fatal("RFC3339 date should parse")
	}
	if _, ok := v.Date("other", "10/03/2025"); ok {
		t.Fatal("unsupported format should fail")
	}
}

func TestValidatorReject(t *testing.T) {
	v := NewValidator()
	rec := httptest.NewRecorder()
	if v.Reject(rec, "req-1") {
		t.Fatal("clean validator should not reject")
	}

	v.Add("field", "broken")
	rec = httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("validator with issues should reject")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestValidatorRequiredPtr(t *testing.T) {
	v := NewValidator()
	value := "ok"
	blank := "  "
	v.RequiredPtr("present", &value, "required")
	v.RequiredPtr("blank", &blank, "required")
	v.RequiredPtr("missing", nil, "required")

	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[0].Field != "blank" || issues[1].Field != "missing" {
		t.Fatalf("unexpected issue fields %+v", issues)
	}
}

func TestValidatorOptionalNonEmpty(t *testing.T) {
	v := NewValidator()
	blank := ""
	value := "ok"
	v.OptionalNonEmpty("omitted", nil, "required")
	v.OptionalNonEmpty("present", &value, "required")
	v.OptionalNonEmpty("blank", &blank, "required")

	issues := v.Issues()
	if len(issues) != 1 || issues[0].Field != "blank" {
		t.Fatalf("expected only the blank field flagged, got %+v", issues)
	}
}

func TestValidatorEnumPtr(t *testing.T) {
	v := NewValidator()
	good := "Active"
	bad := "frozen"
	v.EnumPtr("omitted", nil, []string{"active"}, "bad value")
	v.EnumPtr("good", &good, []string{"active", "inactive"}, "bad value")
	v.EnumPtr("bad", &bad, []string{"active", "inactive"}, "bad value")

	issues := v.Issues()
	if len(issues) != 1 || issues[0].Field != "bad" {
		t.Fatalf("expected only the unknown value flagged, got %+v", issues)
	}
}

func TestValidatorIntRange(t *testing.T) {
	v := NewValidator()
	v.IntRange("low", 0, 1, 12, "out of range")
	v.IntRange("high", 13, 1, 12, "out of range")
	v.IntRange("edge", 12, 1, 12, "out of range")

	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
}
