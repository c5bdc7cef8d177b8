package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aki307/frext/client"
	"github.com/aki307/frext/model"
	"github.com/aki307/frext/storage"
)

// fakeBackend accepts demo@frext.test/secret and the token "valid-token".
type fakeBackend struct {
	mu          sync.Mutex
	authHeaders []string
	logoutCode  int
}

func (b *fakeBackend) handler(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.authHeaders = append(b.authHeaders, r.Header.Get("Authorization"))
	logoutCode := b.logoutCode
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	user := model.User{ID: "u-1", Email: "demo@frext.test", Name: "Demo", CreatedAt: time.Now()}

	switch r.URL.Path {
	case "/api/v1/auth/login", "/api/v1/auth/signup":
		var creds client.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "メールアドレスまたはパスワードが正しくありません"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    model.AuthResult{Token: "valid-token", User: user},
		})
	case "/api/v1/auth/verify", "/api/v1/user/profile":
		if r.Header.Get("Authorization") != "Bearer valid-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Invalid or expired token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": user})
	case "/api/v1/auth/logout":
		if logoutCode != 0 {
			w.WriteHeader(logoutCode)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "logged out"})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *fakeBackend) lastAuth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.authHeaders[len(b.authHeaders)-1]
}

func setup(t *testing.T) (*Service, *fakeBackend, storage.Store) {
	t.Helper()
	backend := &fakeBackend{}
	server := httptest.NewServer(http.HandlerFunc(backend.handler))
	t.Cleanup(server.Close)

	store := storage.NewMemoryStore()
	svc := New(client.New(client.Config{BaseURL: server.URL}), store, nil)
	return svc, backend, store
}

func TestLoginSetsBearerToken(t *testing.T) {
	svc, backend, store := setup(t)
	ctx := context.Background()

	resp := svc.Login(ctx, "demo@frext.test", "secret")
	if !resp.Success {
		t.Fatalf("Expected login success, got %q", resp.Error)
	}
	if !svc.IsAuthenticated() {
		t.Error("Expected authenticated after login")
	}
	if u := svc.CurrentUser(); u == nil || u.Email != "demo@frext.test" {
		t.Errorf("Unexpected current user %+v", u)
	}

	stored, err := store.Get(ctx, storage.AuthTokenKey)
	if err != nil || string(stored) != "valid-token" {
		t.Errorf("Expected persisted token, got %q (%v)", stored, err)
	}

	svc.Client().GetUserProfile(ctx)
	if backend.lastAuth() != "Bearer valid-token" {
		t.Errorf("Expected bearer on later calls, got %q", backend.lastAuth())
	}
}

func TestLoginFailureStaysUnauthenticated(t *testing.T) {
	svc, _, store := setup(t)
	ctx := context.Background()

	resp := svc.Login(ctx, "demo@frext.test", "wrong")
	if resp.Success {
		t.Fatal("Expected login failure")
	}
	if resp.Error != "メールアドレスまたはパスワードが正しくありません" {
		t.Errorf("Unexpected error %q", resp.Error)
	}
	if svc.IsAuthenticated() {
		t.Error("Expected unauthenticated after failed login")
	}
	if _, err := store.Get(ctx, storage.AuthTokenKey); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected no persisted token, got %v", err)
	}
}

func TestSignup(t *testing.T) {
	svc, _, _ := setup(t)

	resp := svc.Signup(context.Background(), "demo@frext.test", "secret", "Demo")
	if !resp.Success || !svc.IsAuthenticated() {
		t.Errorf("Expected signup to authenticate, got %+v", resp)
	}
}

func TestLogoutClearsTokenRegardlessOfServer(t *testing.T) {
	tests := []struct {
		name       string
		logoutCode int
		wantOK     bool
	}{
		{"server ok", 0, true},
		{"server error", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, backend, store := setup(t)
			ctx := context.Background()
			backend.logoutCode = tt.logoutCode

			svc.Login(ctx, "demo@frext.test", "secret")
			resp := svc.Logout(ctx)

			if resp.Success != tt.wantOK {
				t.Errorf("Expected logout success=%v, got %v", tt.wantOK, resp.Success)
			}
			if svc.IsAuthenticated() {
				t.Error("Expected unauthenticated after logout")
			}
			if svc.CurrentUser() != nil {
				t.Error("Expected no current user after logout")
			}
			if _, err := store.Get(ctx, storage.AuthTokenKey); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Expected token removed, got %v", err)
			}

			svc.Client().GetUserProfile(ctx)
			if backend.lastAuth() != "" {
				t.Errorf("Expected no bearer after logout, got %q", backend.lastAuth())
			}
		})
	}
}

// unreadableStore fails every Get once broken is set.
type unreadableStore struct {
	*storage.MemoryStore
	broken bool
}

func (s *unreadableStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.broken {
		return nil, errors.New("disk unavailable")
	}
	return s.MemoryStore.Get(ctx, key)
}

func TestAutoLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("no stored token", func(t *testing.T) {
		svc, _, _ := setup(t)
		if svc.AutoLogin(ctx) {
			t.Error("Expected false without a stored token")
		}
	})

	t.Run("valid stored token", func(t *testing.T) {
		svc, _, store := setup(t)
		store.Set(ctx, storage.AuthTokenKey, []byte("valid-token\n"))

		if !svc.AutoLogin(ctx) {
			t.Fatal("Expected auto login to succeed")
		}
		if !svc.IsAuthenticated() || svc.CurrentUser() == nil {
			t.Error("Expected authenticated with user")
		}
	})

	t.Run("rejected token is cleared", func(t *testing.T) {
		svc, _, store := setup(t)
		store.Set(ctx, storage.AuthTokenKey, []byte("stale-token"))

		if svc.AutoLogin(ctx) {
			t.Fatal("Expected auto login to fail")
		}
		if svc.IsAuthenticated() {
			t.Error("Expected unauthenticated")
		}
		if _, err := store.Get(ctx, storage.AuthTokenKey); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected stale token removed, got %v", err)
		}
	})

	t.Run("network failure is cleared too", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := server.URL
		server.Close()

		store := storage.NewMemoryStore()
		store.Set(ctx, storage.AuthTokenKey, []byte("valid-token"))
		svc := New(client.New(client.Config{BaseURL: addr}), store, nil)

		if svc.AutoLogin(ctx) {
			t.Fatal("Expected auto login to fail")
		}
		if _, err := store.Get(ctx, storage.AuthTokenKey); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected token removed on network error, got %v", err)
		}
	})

	t.Run("storage read failure signs out", func(t *testing.T) {
		backend := &fakeBackend{}
		server := httptest.NewServer(http.HandlerFunc(backend.handler))
		defer server.Close()

		store := &unreadableStore{MemoryStore: storage.NewMemoryStore()}
		svc := New(client.New(client.Config{BaseURL: server.URL}), store, nil)
		if resp := svc.Login(ctx, "demo@frext.test", "secret"); !resp.Success {
			t.Fatalf("Login failed: %+v", resp)
		}

		store.broken = true
		if svc.AutoLogin(ctx) {
			t.Fatal("Expected auto login to fail")
		}
		if svc.IsAuthenticated() {
			t.Error("Expected bearer token cleared")
		}
		if svc.CurrentUser() != nil {
			t.Error("Expected no current user")
		}
	})
}
