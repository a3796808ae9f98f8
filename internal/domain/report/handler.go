package report

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/swasthya/swasthya/internal/platform/auth"
	"github.com/swasthya/swasthya/pkg/pagination"
)

// Handler provides HTTP handlers for service records.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole("doctor"))
	staff.POST("/service-records", h.Create)
	staff.GET("/service-records", h.List)
	staff.GET("/service-records/export", h.Export)
	staff.GET("/service-records/:id", h.Get)
	staff.PUT("/service-records/:id", h.Update)
	staff.DELETE("/service-records/:id", h.Delete)

	// Citizens may read their own record history; ownership is checked in
	// the handler.
	api.GET("/patients/:type/:id/service-records", h.ListByPatient,
		auth.RequireRole("doctor", "user"))
}

type outsiderRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type recordRequest struct {
	PatientType    string           `json:"patient_type"`
	PatientID      *uuid.UUID       `json:"patient_id"`
	Outsider       *outsiderRequest `json:"outsider"`
	ServiceTypes   StringList       `json:"service_types"`
	ServiceDetails StringList       `json:"service_details"`
	VisitDate      string           `json:"visit_date"`
	DoctorName     string           `json:"doctor_name"`
	HospitalName   string           `json:"hospital_name"`
	Findings       string           `json:"findings"`
	IsNormal       bool             `json:"is_normal"`
	Severity       *string          `json:"severity"`
	Vitals         *Vitals          `json:"vitals"`
}

func (req *recordRequest) toRecord() (*ServiceRecord, error) {
	rec := &ServiceRecord{
		PatientType:    req.PatientType,
		ServiceTypes:   req.ServiceTypes,
		ServiceDetails: req.ServiceDetails,
		DoctorName:     req.DoctorName,
		HospitalName:   req.HospitalName,
		Findings:       req.Findings,
		IsNormal:       req.IsNormal,
		Severity:       req.Severity,
		Vitals:         req.Vitals,
	}
	if req.PatientID != nil {
		rec.PatientID = *req.PatientID
	}
	if req.VisitDate != "" {
		date, err := time.Parse("2006-01-02", req.VisitDate)
		if err != nil {
			return nil, errors.New("visit_date must be YYYY-MM-DD")
		}
		rec.VisitDate = date
	}
	return rec, nil
}

func (h *Handler) Create(c echo.Context) error {
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := req.toRecord()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in := CreateInput{Record: rec}
	if req.Outsider != nil {
		in.Outsider = &Outsider{
			Name:    req.Outsider.Name,
			Phone:   req.Outsider.Phone,
			Address: req.Outsider.Address,
		}
	}
	if err := h.svc.Create(c.Request().Context(), in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	return c.JSON(http.StatusOK, rec)
}

type pageInfo struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

type listResponse struct {
	Records    []*ServiceRecord `json:"records"`
	Pagination pageInfo         `json:"pagination"`
	Statistics *Statistics      `json:"statistics"`
}

func queryFromContext(c echo.Context) Query {
	return Query{
		Search:      c.QueryParam("search"),
		PatientType: c.QueryParam("patient_type"),
		ServiceType: c.QueryParam("service_type"),
	}
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	q := queryFromContext(c)
	items, total, stats, err := h.svc.Search(c.Request().Context(), q, pg.Limit, pg.Offset)
	if err != nil {
		if errors.Is(err, errInvalidPatientType) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list service records")
	}
	if items == nil {
		items = []*ServiceRecord{}
	}
	return c.JSON(http.StatusOK, listResponse{
		Records: items,
		Pagination: pageInfo{
			Total:   total,
			Limit:   pg.Limit,
			Offset:  pg.Offset,
			HasMore: pg.Offset+len(items) < total,
		},
		Statistics: stats,
	})
}

func (h *Handler) Export(c echo.Context) error {
	q := queryFromContext(c)
	records, err := h.svc.SearchAll(c.Request().Context(), q)
	if err != nil {
		if errors.Is(err, errInvalidPatientType) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not export service records")
	}
	data, err := GenerateExport(records)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not generate workbook")
	}
	filename := fmt.Sprintf("service-records-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := req.toRecord()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec.ID = id
	if err := h.svc.Update(c.Request().Context(), rec); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete record")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientType := c.Param("type")
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == "user" {
		if patientType != PatientEmployee || auth.UserIDFromContext(ctx) != id.String() {
			return echo.NewHTTPError(http.StatusForbidden, "you can only view your own records")
		}
	}
	items, err := h.svc.ListByPatient(c.Request().Context(), patientType, id)
	if err != nil {
		if errors.Is(err, errInvalidPatientType) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list records")
	}
	if items == nil {
		items = []*ServiceRecord{}
	}
	return c.JSON(http.StatusOK, items)
}
