package utils

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	h, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h == "secret123" || !strings.HasPrefix(h, "$2a$") {
		t.Fatalf("unexpected hash %q", h)
	}
	if !CheckPassword("secret123", h) {
		t.Fatalf("password should match")
	}
	if CheckPassword("secret124", h) {
		t.Fatalf("wrong password should not match")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	a, _ := HashPassword("same")
	b, _ := HashPassword("same")
	if a == b {
		t.Fatalf("hashes must be salted")
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if len(a) != 36 || a == b {
		t.Fatalf("bad ids %q %q", a, b)
	}
}
