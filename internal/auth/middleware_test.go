package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newRouter(secret, audience string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", RequireAdmin(secret, audience), func(c *gin.Context) {
		subject, _ := Subject(c.Request.Context())
		c.String(http.StatusOK, subject)
	})
	return router
}

func serve(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRequireAdminAcceptsAdminToken(t *testing.T) {
	token := signToken(t, testSecret, Claims{Role: AdminRole, RegisteredClaims: jwt.RegisteredClaims{Subject: "ops-1"}})

	resp := serve(newRouter(testSecret, ""), token)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if resp.Body.String() != "ops-1" {
		t.Fatalf("expected subject in context, got %q", resp.Body.String())
	}
}

func TestRequireAdminRejectsMissingHeader(t *testing.T) {
	if resp := serve(newRouter(testSecret, ""), ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestRequireAdminRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", Claims{Role: AdminRole, RegisteredClaims: jwt.RegisteredClaims{Subject: "ops-1"}})

	if resp := serve(newRouter(testSecret, ""), token); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	token := signToken(t, testSecret, Claims{Role: "viewer", RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})

	if resp := serve(newRouter(testSecret, ""), token); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestRequireAdminChecksAudience(t *testing.T) {
	router := newRouter(testSecret, "makeup-admin")

	wrong := signToken(t, testSecret, Claims{Role: AdminRole, RegisteredClaims: jwt.RegisteredClaims{Subject: "ops-1", Audience: jwt.ClaimStrings{"other"}}})
	if resp := serve(router, wrong); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong audience, got %d", resp.Code)
	}

	right := signToken(t, testSecret, Claims{Role: AdminRole, RegisteredClaims: jwt.RegisteredClaims{Subject: "ops-1", Audience: jwt.ClaimStrings{"makeup-admin"}}})
	if resp := serve(router, right); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for matching audience, got %d", resp.Code)
	}
}

func TestRequireAdminWithoutSecret(t *testing.T) {
	token := signToken(t, testSecret, Claims{Role: AdminRole, RegisteredClaims: jwt.RegisteredClaims{Subject: "ops-1"}})

	if resp := serve(newRouter("", ""), token); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
