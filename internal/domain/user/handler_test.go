package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/swasthya/swasthya/internal/platform/auth"
)

func testJWTConfig() auth.JWTConfig {
	return auth.JWTConfig{SigningKey: []byte("test-secret"), ExpireHours: 1, CookieHours: 1}
}

func newTestHandler() (*Handler, *mockRepo) {
	svc, repo := newTestService()
	return NewHandler(svc, testJWTConfig()), repo
}

func doJSON(h echo.HandlerFunc, method, target, body string, setup func(c echo.Context)) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func seedAdmin(t *testing.T, repo *mockRepo, email, password string) *User {
	t.Helper()
	u := validPatient()
	u.Email = &email
	u.Role = RoleAdmin
	if err := NewService(repo).CreatePatient(context.Background(), u, password); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return u
}

func TestLoginAdmin_Success(t *testing.T) {
	h, repo := newTestHandler()
	seedAdmin(t, repo, "admin@health.gov.in", "secret1")

	rec := doJSON(h.LoginAdmin, http.MethodPost, "/api/v1/auth/login/admin",
		`{"email":"admin@health.gov.in","password":"secret1"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || resp.Token == "" {
		t.Error("expected success with a session token")
	}
	if resp.User == nil || resp.User.PasswordHash != "" {
		t.Error("expected user in response without password hash")
	}
	cookies := rec.Result().Cookies()
	found := false
	for _, ck := range cookies {
		if ck.Name == auth.SessionCookieName && ck.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected session cookie to be set")
	}
}

func TestLoginAdmin_WrongPassword(t *testing.T) {
	h, repo := newTestHandler()
	seedAdmin(t, repo, "admin@health.gov.in", "secret1")

	rec := doJSON(h.LoginAdmin, http.MethodPost, "/api/v1/auth/login/admin",
		`{"email":"admin@health.gov.in","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginAdmin_UnknownAccountSameResponse(t *testing.T) {
	h, repo := newTestHandler()
	seedAdmin(t, repo, "admin@health.gov.in", "secret1")

	wrongPass := doJSON(h.LoginAdmin, http.MethodPost, "/api/v1/auth/login/admin",
		`{"email":"admin@health.gov.in","password":"wrong"}`, nil)
	unknown := doJSON(h.LoginAdmin, http.MethodPost, "/api/v1/auth/login/admin",
		`{"email":"ghost@health.gov.in","password":"secret1"}`, nil)

	if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both, got %d and %d", wrongPass.Code, unknown.Code)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Error("expected identical bodies for wrong password and unknown account")
	}
}

func TestLoginAdmin_MissingFields(t *testing.T) {
	h, _ := newTestHandler()
	rec := doJSON(h.LoginAdmin, http.MethodPost, "/api/v1/auth/login/admin",
		`{"email":"admin@health.gov.in"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginUser_ByPhone(t *testing.T) {
	h, repo := newTestHandler()
	u := validPatient()
	if err := NewService(repo).CreatePatient(context.Background(), u, "secret1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doJSON(h.LoginUser, http.MethodPost, "/api/v1/auth/login/user",
		`{"phone_number":"9876543210","password":"secret1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLogout_ExpiresCookie(t *testing.T) {
	h, _ := newTestHandler()
	rec := doJSON(h.Logout, http.MethodPost, "/api/v1/auth/logout", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == auth.SessionCookieName {
			if ck.MaxAge >= 0 && ck.Value != "" {
				t.Error("expected session cookie to be cleared")
			}
			return
		}
	}
	t.Error("expected an expired session cookie")
}

func TestCreatePatient_Handler(t *testing.T) {
	h, repo := newTestHandler()

	body := `{
		"first_name": "Rahul",
		"last_name": "Kumar",
		"phone_number": "9876543210",
		"date_of_birth": "1990-01-01",
		"address": "Raipur",
		"department": "Home",
		"family_members": 3
	}`
	rec := doJSON(h.CreatePatient, http.MethodPost, "/api/v1/patients", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected 1 stored user, got %d", len(repo.users))
	}
	var got User
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.HasAbhaID != "no" {
		t.Errorf("expected has_abha_id to default to no, got %q", got.HasAbhaID)
	}
}

func TestCreatePatient_BadDate(t *testing.T) {
	h, _ := newTestHandler()
	body := `{"first_name":"Rahul","phone_number":"9876543210","date_of_birth":"01-01-1990","address":"Raipur","department":"Home"}`
	rec := doJSON(h.CreatePatient, http.MethodPost, "/api/v1/patients", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "YYYY-MM-DD") {
		t.Error("expected date format hint in response")
	}
}

func TestGetPatient_NotFound(t *testing.T) {
	h, _ := newTestHandler()
	rec := doJSON(h.GetPatient, http.MethodGet, "/api/v1/patients/x", "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues("7b4f2a61-0000-4000-8000-000000000000")
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListPatients_PaginationEnvelope(t *testing.T) {
	h, repo := newTestHandler()
	svc := NewService(repo)
	for _, phone := range []string{"9876543210", "9876543211"} {
		u := validPatient()
		u.PhoneNumber = phone
		if err := svc.CreatePatient(context.Background(), u, "secret1"); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec := doJSON(h.ListPatients, http.MethodGet, "/api/v1/patients?limit=10", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Total   int  `json:"total"`
		Limit   int  `json:"limit"`
		HasMore bool `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 2 || resp.Limit != 10 || resp.HasMore {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestUpdatePatient_Handler(t *testing.T) {
	h, repo := newTestHandler()
	u := validPatient()
	if err := NewService(repo).CreatePatient(context.Background(), u, "secret1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"first_name":"Rahul","last_name":"Verma","phone_number":"9876543210","date_of_birth":"1990-01-01","address":"Bilaspur","department":"Home"}`
	rec := doJSON(h.UpdatePatient, http.MethodPut, "/api/v1/patients/"+u.ID.String(), body, func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues(u.ID.String())
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.users[u.ID].LastName != "Verma" {
		t.Errorf("expected last name update, got %q", repo.users[u.ID].LastName)
	}
}

func TestDeletePatient_Handler(t *testing.T) {
	h, repo := newTestHandler()
	u := validPatient()
	if err := NewService(repo).CreatePatient(context.Background(), u, "secret1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doJSON(h.DeletePatient, http.MethodDelete, "/api/v1/patients/"+u.ID.String(), "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues(u.ID.String())
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(repo.users) != 0 {
		t.Error("expected user to be removed")
	}
}

func TestAddRelative_Handler(t *testing.T) {
	h, repo := newTestHandler()
	u := validPatient()
	if err := NewService(repo).CreatePatient(context.Background(), u, "secret1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doJSON(h.AddRelative, http.MethodPost, "/api/v1/patients/"+u.ID.String()+"/relatives",
		`{"name":"Sita Devi","relationship":"wife"}`, func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(u.ID.String())
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.relatives) != 1 {
		t.Fatalf("expected 1 stored relative, got %d", len(repo.relatives))
	}
	for _, r := range repo.relatives {
		if r.UserID != u.ID {
			t.Error("expected relative bound to the path user id")
		}
	}
}

// asRole puts a session identity on the request context the way
// JWTMiddleware does.
func asRole(c echo.Context, role, id string) {
	ctx := c.Request().Context()
	ctx = context.WithValue(ctx, auth.UserIDKey, id)
	ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestListRelatives_CitizenSelfOnly(t *testing.T) {
	h, repo := newTestHandler()
	svc := NewService(repo)
	u := validPatient()
	if err := svc.CreatePatient(context.Background(), u, "secret1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	other := validPatient()
	other.PhoneNumber = "9876543299"
	if err := svc.CreatePatient(context.Background(), other, "secret1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.AddRelative(context.Background(), &Relative{UserID: u.ID, Name: "Sita", Relationship: "wife"}); err != nil {
		t.Fatalf("seed relative: %v", err)
	}

	rec := doJSON(h.ListRelatives, http.MethodGet, "/api/v1/patients/"+u.ID.String()+"/relatives", "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues(u.ID.String())
		asRole(c, "user", u.ID.String())
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected citizen to read own relatives, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(h.ListRelatives, http.MethodGet, "/api/v1/patients/"+other.ID.String()+"/relatives", "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues(other.ID.String())
		asRole(c, "user", u.ID.String())
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another patient's relatives, got %d", rec.Code)
	}
}

func TestUpdatePatient_NotFoundHandler(t *testing.T) {
	h, _ := newTestHandler()
	body := `{"first_name":"Rahul","phone_number":"9876543210","date_of_birth":"1990-01-01","address":"Raipur","department":"Home"}`
	rec := doJSON(h.UpdatePatient, http.MethodPut, "/api/v1/patients/x", body, func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues("7b4f2a61-0000-4000-8000-000000000000")
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown patient, got %d", rec.Code)
	}
}

func TestListRelatives_Handler(t *testing.T) {
	h, repo := newTestHandler()
	svc := NewService(repo)
	u := validPatient()
	if err := svc.CreatePatient(context.Background(), u, "secret1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.AddRelative(context.Background(), &Relative{UserID: u.ID, Name: "Sita", Relationship: "wife"}); err != nil {
		t.Fatalf("seed relative: %v", err)
	}

	rec := doJSON(h.ListRelatives, http.MethodGet, "/api/v1/patients/"+u.ID.String()+"/relatives", "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues(u.ID.String())
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []Relative
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 relative, got %d", len(items))
	}
}
