package service

import (
	"errors"
	"testing"
	"time"

	"github.com/aki307/frext/config"
)

func newTestAccounts() *Accounts {
	return NewAccounts([]config.User{
		{ID: "u-1", Email: "demo@frext.test", Password: "demo123", Name: "Demo"},
	})
}

func TestAccountsAuthenticate(t *testing.T) {
	a := newTestAccounts()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "demo@frext.test", "demo123", nil},
		{"case insensitive email", " Demo@Frext.Test ", "demo123", nil},
		{"wrong password", "demo@frext.test", "nope", ErrInvalidCredentials},
		{"unknown user", "who@frext.test", "demo123", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := a.Authenticate(tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && user.ID != "u-1" {
				t.Errorf("Expected u-1, got %s", user.ID)
			}
		})
	}
}

func TestAccountsRegister(t *testing.T) {
	a := newTestAccounts()

	user, err := a.Register("new@frext.test", "secret1", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.ID == "" || user.Name != "new" {
		t.Errorf("Unexpected user %+v", user)
	}
	if _, ok := a.Lookup(user.ID); !ok {
		t.Error("Expected registered user to be found by id")
	}
	if _, err := a.Authenticate("new@frext.test", "secret1"); err != nil {
		t.Errorf("Expected registered user to log in, got %v", err)
	}

	if _, err := a.Register("DEMO@frext.test", "secret1", "x"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}
	if _, err := a.Register("bad-email", "secret1", "x"); !errors.Is(err, ErrInvalidSignup) {
		t.Errorf("Expected ErrInvalidSignup for bad email, got %v", err)
	}
	if _, err := a.Register("short@frext.test", "123", "x"); !errors.Is(err, ErrInvalidSignup) {
		t.Errorf("Expected ErrInvalidSignup for short password, got %v", err)
	}
}

func TestAccountsRevoke(t *testing.T) {
	a := newTestAccounts()
	now := time.Now()
	a.now = func() time.Time { return now }

	a.Revoke("expired", now.Add(-time.Minute))
	a.Revoke("live", now.Add(time.Hour))
	a.Revoke("", now.Add(time.Hour))

	if !a.Revoked("live") {
		t.Error("Expected live token revoked")
	}
	if a.Revoked("expired") {
		t.Error("Expected expired entry pruned")
	}
	if a.Revoked("") || a.Revoked("other") {
		t.Error("Expected unknown ids not revoked")
	}
}
