package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aki307/frext/config"
	"github.com/aki307/frext/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testAuth = &config.AuthConfig{
	JWTSecret:        "test-secret-key",
	TokenExpireHours: 24,
}

type revokedSet map[string]bool

func (r revokedSet) Revoked(id string) bool { return r[id] }

func TestGenerateToken(t *testing.T) {
	token, expiresAt, err := GenerateToken("u-1", "demo@frext.test", testAuth)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if token == "" {
		t.Error("Expected non-empty token")
	}

	expectedExpiry := time.Now().Add(24 * time.Hour)
	if expiresAt.Before(expectedExpiry.Add(-time.Minute)) || expiresAt.After(expectedExpiry.Add(time.Minute)) {
		t.Errorf("Expiry time %v is not within expected range of %v", expiresAt, expectedExpiry)
	}

	claims, err := ParseToken(token, testAuth)
	if err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "demo@frext.test" {
		t.Errorf("Unexpected claims %+v", claims)
	}
	if claims.ID == "" {
		t.Error("Expected token id")
	}

	other, _, _ := GenerateToken("u-1", "demo@frext.test", testAuth)
	if other == token {
		t.Error("Expected distinct tokens per login")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, _, _ := GenerateToken("u-1", "demo@frext.test", testAuth)
	if _, err := ParseToken(token, &config.AuthConfig{JWTSecret: "other"}); err == nil {
		t.Error("Expected error for wrong secret")
	}
}

func TestAuthMiddleware(t *testing.T) {
	token, _, err := GenerateToken("u-1", "demo@frext.test", testAuth)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	claims, _ := ParseToken(token, testAuth)
	revokedToken, _, _ := GenerateToken("u-1", "demo@frext.test", testAuth)
	revokedClaims, _ := ParseToken(revokedToken, testAuth)
	revoked := revokedSet{revokedClaims.ID: true}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"invalid format", token, http.StatusUnauthorized},
		{"invalid token", "Bearer invalid.token.here", http.StatusUnauthorized},
		{"revoked token", "Bearer " + revokedToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(AuthMiddleware(testAuth, revoked))
			router.GET("/test", func(c *gin.Context) {
				if GetUserID(c) != "u-1" || GetEmail(c) != "demo@frext.test" || GetTokenID(c) != claims.ID {
					t.Errorf("Unexpected context values %q %q %q", GetUserID(c), GetEmail(c), GetTokenID(c))
				}
				if GetTokenExpiry(c).IsZero() {
					t.Error("Expected token expiry in context")
				}
				if v, _ := c.Request.Context().Value(logger.EmailKey).(string); v != "demo@frext.test" {
					t.Errorf("Expected email in request context, got %q", v)
				}
				c.JSON(http.StatusOK, gin.H{"success": true})
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus == http.StatusUnauthorized && !strings.Contains(w.Body.String(), `"success":false`) {
				t.Errorf("Expected failure envelope, got %s", w.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	claims := Claims{
		UserID: "u-1",
		Email:  "demo@frext.test",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(testAuth.JWTSecret))

	router := gin.New()
	router.Use(AuthMiddleware(testAuth, nil))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d for expired token, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestContextGettersEmpty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetUserID(c) != "" || GetEmail(c) != "" || GetTokenID(c) != "" {
		t.Error("Expected empty strings for unset values")
	}
	if !GetTokenExpiry(c).IsZero() {
		t.Error("Expected zero expiry")
	}

	c.Set("email", "demo@frext.test")
	if GetEmail(c) != "demo@frext.test" {
		t.Errorf("Expected 'demo@frext.test', got '%s'", GetEmail(c))
	}
}
