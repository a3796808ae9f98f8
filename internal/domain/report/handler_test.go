package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/swasthya/swasthya/internal/platform/auth"
)

func newTestHandler() (*Handler, *mockRepo, uuid.UUID) {
	svc, repo, employeeID := newTestService()
	return NewHandler(svc), repo, employeeID
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

func TestCreateRecord_Handler(t *testing.T) {
	h, repo, employeeID := newTestHandler()
	body := fmt.Sprintf(`{
		"patient_type": "employee",
		"patient_id": %q,
		"service_types": ["blood test"],
		"visit_date": "2026-08-15",
		"doctor_name": "Dr. Priya Sharma",
		"hospital_name": "District Hospital Raipur",
		"findings": "within normal range",
		"is_normal": true
	}`, employeeID)

	rec := doJSON(h.Create, http.MethodPost, "/api/v1/service-records", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(repo.records))
	}
}

func TestCreateRecord_LegacyServiceTypeString(t *testing.T) {
	h, repo, employeeID := newTestHandler()
	body := fmt.Sprintf(`{
		"patient_type": "employee",
		"patient_id": %q,
		"service_types": "blood test",
		"doctor_name": "Dr. Priya Sharma",
		"is_normal": true
	}`, employeeID)

	rec := doJSON(h.Create, http.MethodPost, "/api/v1/service-records", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	for _, stored := range repo.records {
		if len(stored.ServiceTypes) != 1 || stored.ServiceTypes[0] != "blood test" {
			t.Errorf("expected scalar input as singleton list, got %v", stored.ServiceTypes)
		}
	}
}

func TestCreateRecord_OutsiderInline(t *testing.T) {
	h, repo, _ := newTestHandler()
	body := `{
		"patient_type": "outsider",
		"outsider": {"name": "Shyam Lal", "phone": "9000000000", "address": "Durg"},
		"service_types": ["eye screening"],
		"doctor_name": "Dr. Priya Sharma",
		"is_normal": true
	}`

	rec := doJSON(h.Create, http.MethodPost, "/api/v1/service-records", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.outsiders) != 1 || len(repo.records) != 1 {
		t.Fatalf("expected outsider and record, got %d/%d", len(repo.outsiders), len(repo.records))
	}
}

func TestListRecords_ResponseShape(t *testing.T) {
	h, repo, employeeID := newTestHandler()
	svc := NewService(repo, passthroughTx)
	if err := svc.Create(context.Background(), CreateInput{Record: validRecord(employeeID)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doJSON(h.List, http.MethodGet, "/api/v1/service-records", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Records    []json.RawMessage `json:"records"`
		Pagination pageInfo          `json:"pagination"`
		Statistics *Statistics       `json:"statistics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Records) != 1 || resp.Pagination.Total != 1 {
		t.Errorf("unexpected envelope: %s", rec.Body.String())
	}
	if resp.Statistics == nil || resp.Statistics.TotalServices != 1 {
		t.Errorf("expected statistics in response")
	}
}

func TestListRecords_BadPatientType(t *testing.T) {
	h, _, _ := newTestHandler()
	rec := doJSON(h.List, http.MethodGet, "/api/v1/service-records?patient_type=visitor", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExport_Handler(t *testing.T) {
	h, repo, employeeID := newTestHandler()
	svc := NewService(repo, passthroughTx)
	if err := svc.Create(context.Background(), CreateInput{Record: validRecord(employeeID)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doJSON(h.Export, http.MethodGet, "/api/v1/service-records/export", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, ".xlsx") {
		t.Errorf("expected xlsx attachment, got %q", cd)
	}
	// XLSX is a zip container.
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("expected zip magic at start of workbook")
	}
}

func TestDeleteRecord_Handler(t *testing.T) {
	h, repo, employeeID := newTestHandler()
	svc := NewService(repo, passthroughTx)
	r := validRecord(employeeID)
	if err := svc.Create(context.Background(), CreateInput{Record: r}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doJSON(h.Delete, http.MethodDelete, "/api/v1/service-records/"+r.ID.String(), "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues(r.ID.String())
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(repo.records) != 0 {
		t.Error("expected record to be removed")
	}
}

func TestUpdateRecord_NotFoundHandler(t *testing.T) {
	h, _, employeeID := newTestHandler()
	body := fmt.Sprintf(`{"patient_type":"employee","patient_id":%q,"service_types":["blood test"],"doctor_name":"Dr. Priya Sharma","is_normal":true}`, employeeID)
	rec := doJSON(h.Update, http.MethodPut, "/api/v1/service-records/x", body, func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues(uuid.NewString())
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown record, got %d", rec.Code)
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

func TestListByPatient_CitizenSelfOnly(t *testing.T) {
	h, repo, employeeID := newTestHandler()
	svc := NewService(repo, passthroughTx)
	if err := svc.Create(context.Background(), CreateInput{Record: validRecord(employeeID)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doJSON(h.ListByPatient, http.MethodGet, "/api/v1/patients/employee/"+employeeID.String()+"/service-records", "",
		func(c echo.Context) {
			c.SetParamNames("type", "id")
			c.SetParamValues("employee", employeeID.String())
			asRole(c, "user", employeeID.String())
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected citizen to read own records, got %d: %s", rec.Code, rec.Body.String())
	}

	otherID := uuid.New()
	rec = doJSON(h.ListByPatient, http.MethodGet, "/api/v1/patients/employee/"+otherID.String()+"/service-records", "",
		func(c echo.Context) {
			c.SetParamNames("type", "id")
			c.SetParamValues("employee", otherID.String())
			asRole(c, "user", employeeID.String())
		})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another patient's records, got %d", rec.Code)
	}

	rec = doJSON(h.ListByPatient, http.MethodGet, "/api/v1/patients/outsider/"+employeeID.String()+"/service-records", "",
		func(c echo.Context) {
			c.SetParamNames("type", "id")
			c.SetParamValues("outsider", employeeID.String())
			asRole(c, "user", employeeID.String())
		})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-employee patient type, got %d", rec.Code)
	}
}

func TestListByPatient_Handler(t *testing.T) {
	h, repo, employeeID := newTestHandler()
	svc := NewService(repo, passthroughTx)
	if err := svc.Create(context.Background(), CreateInput{Record: validRecord(employeeID)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doJSON(h.ListByPatient, http.MethodGet, "/api/v1/patients/employee/"+employeeID.String()+"/service-records", "",
		func(c echo.Context) {
			c.SetParamNames("type", "id")
			c.SetParamValues("employee", employeeID.String())
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 record, got %d", len(items))
	}
}
