package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kinosync/kinosync/internal/domain"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")

	token, err := v.Issue(domain.Identity{UserID: "u1", IsAdmin: true}, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	identity, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if identity.UserID != "u1" {
		t.Errorf("UserID = %q, want %q", identity.UserID, "u1")
	}
	if !identity.IsAdmin {
		t.Error("IsAdmin = false, want true")
	}
}

func TestVerifyRejections(t *testing.T) {
	v := NewVerifier("test-secret")

	expired, err := v.Issue(domain.Identity{UserID: "u1"}, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	other := NewVerifier("other-secret")
	wrongKey, err := other.Issue(domain.Identity{UserID: "u1"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		credential string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"expired", expired},
		{"wrong key", wrongKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(tt.credential); err == nil {
				t.Errorf("Verify(%q) succeeded, want error", tt.name)
			}
		})
	}
}

func TestCredentialFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/ws", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	if got := CredentialFromRequest(r); got != "abc123" {
		t.Errorf("header credential = %q, want %q", got, "abc123")
	}

	r = httptest.NewRequest("GET", "/api/ws?token=fromquery", nil)
	if got := CredentialFromRequest(r); got != "fromquery" {
		t.Errorf("query credential = %q, want %q", got, "fromquery")
	}

	r = httptest.NewRequest("GET", "/api/ws", nil)
	if got := CredentialFromRequest(r); got != "" {
		t.Errorf("missing credential = %q, want empty", got)
	}
}
