package handler

import (
	"errors"
	"net/http"

	"github.com/aki307/frext/config"
	"github.com/aki307/frext/middleware"
	"github.com/aki307/frext/model"
	"github.com/aki307/frext/pkg/logger"
	"github.com/aki307/frext/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth     *config.AuthConfig
	accounts *service.Accounts
}

func NewAuthHandler(auth *config.AuthConfig, accounts *service.Accounts) *AuthHandler {
	return &AuthHandler{auth: auth, accounts: accounts}
}

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

func (h *AuthHandler) issue(c *gin.Context, status int, user model.User, message string) {
	token, _, err := middleware.GenerateToken(user.ID, user.Email, h.auth)
	if err != nil {
		logger.Error(c.Request.Context(), "auth.token_error", "error", err)
		fail(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	ok(c, status, &model.AuthResult{Token: token, User: user}, message)
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.accounts.Authenticate(req.Email, req.Password)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.issue(c, http.StatusOK, user, "Login successful")
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.accounts.Register(req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		fail(c, http.StatusConflict, "Email already registered")
		return
	case err != nil:
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info(c.Request.Context(), "auth.signup", "user_id", user.ID)
	h.issue(c, http.StatusCreated, user, "Account created")
}

// Logout revokes the presented token
func (h *AuthHandler) Logout(c *gin.Context) {
	h.accounts.Revoke(middleware.GetTokenID(c), middleware.GetTokenExpiry(c))
	ok[struct{}](c, http.StatusOK, nil, "Logged out")
}

// Verify returns the user the presented token belongs to
func (h *AuthHandler) Verify(c *gin.Context) {
	user, found := h.accounts.Lookup(middleware.GetUserID(c))
	if !found {
		fail(c, http.StatusUnauthorized, "User no longer exists")
		return
	}
	ok(c, http.StatusOK, &user, "")
}
