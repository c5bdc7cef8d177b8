// Package auth keeps a client's bearer token in step with persisted storage.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/aki307/frext/client"
	"github.com/aki307/frext/model"
	"github.com/aki307/frext/storage"
)

// Service is authenticated while its client carries a token. Overlapping
// login flows on one Service are serialised; the last one wins.
type Service struct {
	client *client.Client
	store  storage.Store
	logger *slog.Logger

	flow sync.Mutex
	mu   sync.RWMutex
	user *model.User
}

func New(c *client.Client, store storage.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: c, store: store, logger: logger}
}

// Client returns the API client whose token this service manages.
func (s *Service) Client() *client.Client { return s.client }

func (s *Service) Login(ctx context.Context, email, password string) *model.APIResponse[model.AuthResult] {
	s.flow.Lock()
	defer s.flow.Unlock()

	resp := s.client.Login(ctx, email, password)
	s.acceptAuth(ctx, resp)
	return resp
}

func (s *Service) Signup(ctx context.Context, email, password, name string) *model.APIResponse[model.AuthResult] {
	s.flow.Lock()
	defer s.flow.Unlock()

	resp := s.client.Signup(ctx, email, password, name)
	s.acceptAuth(ctx, resp)
	return resp
}

func (s *Service) acceptAuth(ctx context.Context, resp *model.APIResponse[model.AuthResult]) {
	if !resp.Success || resp.Data == nil || resp.Data.Token == "" {
		return
	}
	s.client.SetAuthToken(resp.Data.Token)
	if err := s.store.Set(ctx, storage.AuthTokenKey, []byte(resp.Data.Token)); err != nil {
		s.logger.Warn("auth.persist_token_error", "error", err)
	}

	user := resp.Data.User
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	s.logger.Info("auth.signed_in", "email", user.Email)
}

// Logout always ends up unauthenticated, whatever the server answered.
func (s *Service) Logout(ctx context.Context) *model.APIResponse[json.RawMessage] {
	s.flow.Lock()
	defer s.flow.Unlock()

	resp := s.client.Logout(ctx)
	if !resp.Success {
		s.logger.Warn("auth.logout_error", "error", resp.Error)
	}
	s.clear(ctx)
	return resp
}

// VerifyToken asks the server who the current token belongs to.
func (s *Service) VerifyToken(ctx context.Context) *model.APIResponse[model.User] {
	resp := s.client.VerifyToken(ctx)
	if resp.Success && resp.Data != nil {
		user := *resp.Data
		s.mu.Lock()
		s.user = &user
		s.mu.Unlock()
	}
	return resp
}

// AutoLogin restores a persisted token and re-verifies it. Any failure,
// including a network error, clears the token and reports false.
func (s *Service) AutoLogin(ctx context.Context) bool {
	s.flow.Lock()
	defer s.flow.Unlock()

	raw, err := s.store.Get(ctx, storage.AuthTokenKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("auth.load_token_error", "error", err)
		}
		s.clear(ctx)
		return false
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		s.clear(ctx)
		return false
	}

	s.client.SetAuthToken(token)
	resp := s.VerifyToken(ctx)
	if !resp.Success || resp.Data == nil {
		s.logger.Info("auth.auto_login_failed", "error", resp.Error)
		s.clear(ctx)
		return false
	}
	return true
}

func (s *Service) clear(ctx context.Context) {
	s.client.ClearAuthToken()
	if err := s.store.Remove(ctx, storage.AuthTokenKey); err != nil {
		s.logger.Warn("auth.remove_token_error", "error", err)
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func (s *Service) IsAuthenticated() bool {
	return s.client.AuthToken() != ""
}

// CurrentUser returns the last user the server reported, or nil.
func (s *Service) CurrentUser() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}
