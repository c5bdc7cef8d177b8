package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aki307/frext/config"
	"github.com/aki307/frext/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Revocations reports tokens invalidated by logout.
type Revocations interface {
	Revoked(tokenID string) bool
}

// GenerateToken issues a signed token for a user. Every token carries a
// unique ID so it can be revoked individually.
func GenerateToken(userID, email string, cfg *config.AuthConfig) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(cfg.TokenExpireHours) * time.Hour)

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseToken verifies signature and expiry and returns the claims.
func ParseToken(tokenString string, cfg *config.AuthConfig) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
}

// AuthMiddleware validates JWT token and extracts user info. revoked may be nil.
func AuthMiddleware(cfg *config.AuthConfig, revoked Revocations) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		tokenString, ok := BearerToken(c)
		if !ok {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := ParseToken(tokenString, cfg)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}
		if revoked != nil && revoked.Revoked(claims.ID) {
			unauthorized(c, "Token has been revoked")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("token_id", claims.ID)
		c.Set("token_expires", claims.ExpiresAt.Time)

		ctx := context.WithValue(c.Request.Context(), logger.EmailKey, claims.Email)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func getString(c *gin.Context, key string) string {
	if v, exists := c.Get(key); exists {
		s, _ := v.(string)
		return s
	}
	return ""
}

// GetUserID gets the user id from context
func GetUserID(c *gin.Context) string { return getString(c, "user_id") }

// GetEmail gets the signed-in email from context
func GetEmail(c *gin.Context) string { return getString(c, "email") }

// GetTokenID gets the jti of the presented token
func GetTokenID(c *gin.Context) string { return getString(c, "token_id") }

// GetTokenExpiry gets the expiry of the presented token
func GetTokenExpiry(c *gin.Context) time.Time {
	if v, exists := c.Get("token_expires"); exists {
		t, _ := v.(time.Time)
		return t
	}
	return time.Time{}
}
