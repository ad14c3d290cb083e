package core

import (
	"strings"
	"testing"
)

func TestNewEmployeeNumberFormat(t *testing.T) {
	number := NewEmployeeNumber()
	if !strings.HasPrefix(number, "EMP-") {
		t.Fatalf("expected EMP- prefix, got %q", number)
	}
	suffix := strings.TrimPrefix(number, "EMP-")
	if len(suffix) != 8 {
		t.Fatalf("expected 8-character suffix, got %q", suffix)
	}
	for _, r := range suffix {
		if !strings.ContainsRune("0123456789ABCDEF", r) {
			t.Fatalf("unexpected character %q in %q", r, number)
		}
	}
}

func TestNewEmployeeNumberUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		number := NewEmployeeNumber()
		if seen[number] {
			t.Fatalf("duplicate employee number %q", number)
		}
		seen[number] = true
	}
}
