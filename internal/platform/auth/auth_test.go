package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func runJWT(t *testing.T, cfg JWTConfig, authHeader string) (error, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	return JWTMiddleware(cfg)(handler)(c), c
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	err, _ := runJWT(t, JWTConfig{Secret: testSecret}, "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "analyst-1",
			Issuer:    "https://idp.example.org",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{"analyst"},
	}
	tok := signToken(t, claims)

	err, c := runJWT(t, JWTConfig{Issuer: "https://idp.example.org", Secret: testSecret}, "Bearer "+tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := UserIDFromContext(c.Request().Context()); got != "analyst-1" {
		t.Errorf("expected subject analyst-1, got %q", got)
	}
	roles := RolesFromContext(c.Request().Context())
	if len(roles) != 1 || roles[0] != "analyst" {
		t.Errorf("expected roles [analyst], got %v", roles)
	}
}

func TestJWTMiddleware_WrongIssuer(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "analyst-1",
			Issuer:    "https://other.example.org",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok := signToken(t, claims)

	err, _ := runJWT(t, JWTConfig{Issuer: "https://idp.example.org", Secret: testSecret}, "Bearer "+tok)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong issuer, got %v", err)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "analyst-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	tok := signToken(t, claims)

	err, _ := runJWT(t, JWTConfig{Secret: testSecret}, "Bearer "+tok)
	if err == nil {
		t.Fatal("expected error for expired token")
	}
}

func withRoles(c echo.Context, roles ...string) echo.Context {
	ctx := context.WithValue(c.Request().Context(), UserRolesKey, roles)
	c.SetRequest(c.Request().WithContext(ctx))
	return c
}

func TestRequireRole_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c = withRoles(c, "analyst")

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	if err := RequireRole("analyst", "clinician")(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c = withRoles(c, "admin")

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	if err := RequireRole("analyst")(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole_Denies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c = withRoles(c, "viewer")

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	err := RequireRole("analyst")(handler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestDevAuthMiddleware_SetsDefaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := func(c echo.Context) error {
		if UserIDFromContext(c.Request().Context()) != "dev-user" {
			t.Error("expected dev-user subject")
		}
		return c.String(http.StatusOK, "ok")
	}
	if err := DevAuthMiddleware()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
