package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func testConfig() JWTConfig {
	return JWTConfig{
		SigningKey:  []byte("test-signing-key"),
		ExpireHours: 1,
		CookieHours: 1,
	}
}

func TestIssueAndParseToken(t *testing.T) {
	cfg := testConfig()
	token, err := IssueToken(cfg, "user-123", "doctor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseToken(cfg, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("expected subject user-123, got %s", claims.Subject)
	}
	if claims.Role != "doctor" {
		t.Errorf("expected role doctor, got %s", claims.Role)
	}
}

func TestParseToken_WrongKey(t *testing.T) {
	cfg := testConfig()
	token, err := IssueToken(cfg, "user-123", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := testConfig()
	other.SigningKey = []byte("different-key")
	if _, err := ParseToken(other, token); err == nil {
		t.Error("expected error for token signed with another key")
	}
}

func TestJWTMiddleware_BearerHeader(t *testing.T) {
	cfg := testConfig()
	token, _ := IssueToken(cfg, "user-1", "admin")

	e := echo.New()
	var gotID, gotRole string
	handler := JWTMiddleware(cfg)(func(c echo.Context) error {
		gotID = UserIDFromContext(c.Request().Context())
		gotRole = RoleFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != "user-1" || gotRole != "admin" {
		t.Errorf("expected user-1/admin on context, got %s/%s", gotID, gotRole)
	}
}

func TestJWTMiddleware_Cookie(t *testing.T) {
	cfg := testConfig()
	token, _ := IssueToken(cfg, "user-2", "user")

	e := echo.New()
	handler := JWTMiddleware(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	e := echo.New()
	handler := JWTMiddleware(testConfig())(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	err := handler(e.NewContext(req, rec))
	if err == nil {
		t.Fatal("expected error for missing token")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestSessionCookie_DevFlags(t *testing.T) {
	cfg := testConfig()
	cookie := SessionCookie(cfg, "tok")
	if !cookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if cookie.Secure {
		t.Error("expected Secure to be false in development")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite=Lax in development, got %v", cookie.SameSite)
	}
}

func TestSessionCookie_SecureFlags(t *testing.T) {
	cfg := testConfig()
	cfg.SecureCookie = true
	cookie := SessionCookie(cfg, "tok")
	if !cookie.Secure {
		t.Error("expected Secure cookie")
	}
	if cookie.SameSite != http.SameSiteNoneMode {
		t.Errorf("expected SameSite=None, got %v", cookie.SameSite)
	}
}
