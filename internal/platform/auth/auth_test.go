package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, sub, role string) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func runMiddleware(mw echo.MiddlewareFunc, req *http.Request, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, mw(handler)(c)
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "patient-1", RolePatient))

	_, err := runMiddleware(JWTMiddleware(testSecret), req, func(c echo.Context) error {
		actor := FromContext(c.Request().Context())
		if actor == nil {
			t.Fatal("expected actor in context")
		}
		if actor.ID != "patient-1" || actor.Role != RolePatient {
			t.Errorf("unexpected actor %+v", actor)
		}
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := runMiddleware(JWTMiddleware(testSecret), req, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_BadSignature(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte("wrong-secret"))
	req.Header.Set("Authorization", "Bearer "+signed)

	_, err := runMiddleware(JWTMiddleware(testSecret), req, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestRequireRole_AllowsAdmin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	dev := DevMiddleware()
	guard := RequireRole(RoleDoctor)
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	if err := dev(guard(handler))(c); err != nil {
		t.Fatalf("expected admin to pass doctor guard: %v", err)
	}
}

func TestRequireRole_RejectsWrongRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Actor-Role", RolePatient)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	dev := DevMiddleware()
	guard := RequireRole(RoleDoctor)
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := dev(guard(handler))(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}
