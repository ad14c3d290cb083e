package shared

import (
	"net/http/httptest"
	"testing"
)

func TestParsePaginationDefaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/items", nil)
	p := ParsePagination(req, 50, 500)
	if p.Limit != 50 || p.Offset != 0 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
}

func TestParsePaginationClampsLimit(t *testing.T) {
	req := httptest.NewRequest("GET", "/items?limit=9999&offset=20", nil)
	p := ParsePagination(req, 50, 500)
	if p.Limit != 500 || p.Offset != 20 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
}

func TestParsePaginationIgnoresGarbage(t *testing.T) {
	req := httptest.NewRequest("GET", "/items?limit=abc&offset=-5", nil)
	p := ParsePagination(req, 50, 500)
	if p.Limit != 50 || p.Offset != 0 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Fatalf("expected forwarded ip, got %s", got)
	}
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected remote host, got %s", got)
	}
}
