package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret-key-for-unit-tests"

func signToken(t *testing.T, capabilities []string, secret string, expiresIn time.Duration) string {
	t.Helper()
	claims := Claims{
		UserID:       uuid.New(),
		Email:        "ops@example.com",
		Capabilities: capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func protectedRouter() (*gin.Engine, *bool) {
	gin.SetMode(gin.TestMode)
	reached := false
	r := gin.New()
	r.POST("/sync",
		Auth(testSecret),
		RequireCapability(CapabilityCatalogManage),
		func(c *gin.Context) {
			reached = true
			c.Status(http.StatusOK)
		})
	return r, &reached
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	r, reached := protectedRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if *reached {
		t.Error("handler must not run without credentials")
	}
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	r, _ := protectedRouter()

	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	req.Header.Set("Authorization", "Token abcdef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	r, _ := protectedRouter()

	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, []string{CapabilityCatalogManage}, testSecret, -time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %d", w.Code)
	}
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	r, _ := protectedRouter()

	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, []string{CapabilityCatalogManage}, "other-secret", time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad signature, got %d", w.Code)
	}
}

func TestRequireCapabilityRejectsBeforeHandler(t *testing.T) {
	r, reached := protectedRouter()

	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, []string{"catalog:read"}, testSecret, time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if *reached {
		t.Error("handler must not run when the capability is missing")
	}
}

func TestRequireCapabilityAllowsGranted(t *testing.T) {
	r, reached := protectedRouter()

	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, []string{"catalog:read", CapabilityCatalogManage}, testSecret, time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !*reached {
		t.Error("handler should run for a granted capability")
	}
}

func TestDevelopmentAuthGrantsManage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reached := false
	r.POST("/sync",
		DevelopmentAuthMiddleware(),
		RequireCapability(CapabilityCatalogManage),
		func(c *gin.Context) {
			reached = true
			c.Status(http.StatusOK)
		})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync", nil))

	if w.Code != http.StatusOK || !reached {
		t.Errorf("dev auth should grant manage capability, got %d", w.Code)
	}
}
