package service

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/aki307/frext/config"
	"github.com/aki307/frext/model"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidSignup      = errors.New("email and a password of at least 6 characters are required")
)

const minPasswordLength = 6

// Accounts is the mock backend's user directory and token revocation list.
type Accounts struct {
	mu      sync.RWMutex
	byEmail map[string]*account
	byID    map[string]*account
	revoked map[string]time.Time // token id -> token expiry
	now     func() time.Time
}

type account struct {
	user     model.User
	password string
}

// NewAccounts seeds the directory from configured users.
func NewAccounts(users []config.User) *Accounts {
	a := &Accounts{
		byEmail: make(map[string]*account),
		byID:    make(map[string]*account),
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, u := range users {
		id := u.ID
		if id == "" {
			id = uuid.New().String()
		}
		a.add(&account{
			user:     model.User{ID: id, Email: u.Email, Name: u.Name, CreatedAt: a.now().UTC()},
			password: u.Password,
		})
	}
	return a
}

func (a *Accounts) add(acc *account) {
	a.byEmail[strings.ToLower(acc.user.Email)] = acc
	a.byID[acc.user.ID] = acc
}

// Authenticate checks an email/password pair.
func (a *Accounts) Authenticate(email, password string) (model.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	// Simple password check; the mock never stores real credentials
	acc, ok := a.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acc.password != password {
		return model.User{}, ErrInvalidCredentials
	}
	return acc.user, nil
}

// Register creates an account. name defaults to the email's local part.
func (a *Accounts) Register(email, password, name string) (model.User, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") || len(password) < minPasswordLength {
		return model.User{}, ErrInvalidSignup
	}
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.byEmail[strings.ToLower(email)]; exists {
		return model.User{}, ErrEmailTaken
	}
	acc := &account{
		user:     model.User{ID: uuid.New().String(), Email: email, Name: name, CreatedAt: a.now().UTC()},
		password: password,
	}
	a.add(acc)
	return acc.user, nil
}

func (a *Accounts) Lookup(id string) (model.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acc, ok := a.byID[id]
	if !ok {
		return model.User{}, false
	}
	return acc.user, true
}

// Revoke invalidates a token until it would have expired anyway.
func (a *Accounts) Revoke(tokenID string, expiresAt time.Time) {
	if tokenID == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.revoked[tokenID] = expiresAt

	now := a.now()
	for id, exp := range a.revoked {
		if exp.Before(now) {
			delete(a.revoked, id)
		}
	}
}

func (a *Accounts) Revoked(tokenID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.revoked[tokenID]
	return ok
}
