package camp

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/swasthya/swasthya/internal/platform/auth"
	"github.com/swasthya/swasthya/pkg/pagination"
)

// Handler provides HTTP handlers for camp scheduling.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/camps", h.Create)
	admin.PUT("/camps/:id", h.Update)
	admin.DELETE("/camps/:id", h.Delete)

	api.GET("/camps", h.List)
	api.GET("/camps/:id", h.Get)
}

type campRequest struct {
	Location         string      `json:"location"`
	Address          string      `json:"address"`
	Date             string      `json:"date"`
	StartTime        string      `json:"start_time"`
	EndTime          string      `json:"end_time"`
	BeneficiaryLimit int         `json:"beneficiary_limit"`
	ConductedBy      []uuid.UUID `json:"conducted_by"`
	Status           string      `json:"status"`
	CreatedBy        string      `json:"created_by"`
	Description      string      `json:"description"`
	Services         []string    `json:"services"`
}

func (req *campRequest) toCamp() (*Camp, error) {
	c := &Camp{
		Location:         req.Location,
		Address:          req.Address,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		BeneficiaryLimit: req.BeneficiaryLimit,
		ConductedBy:      req.ConductedBy,
		Status:           req.Status,
		CreatedBy:        req.CreatedBy,
		Description:      req.Description,
		Services:         req.Services,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, errors.New("date must be YYYY-MM-DD")
		}
		c.Date = date
	}
	return c, nil
}

func (h *Handler) Create(c echo.Context) error {
	var req campRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	camp, err := req.toCamp()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), camp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, camp)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	camp, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "camp not found")
	}
	return c.JSON(http.StatusOK, camp)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	filter := Filter{
		When:   c.QueryParam("filter"),
		Status: c.QueryParam("status"),
	}
	items, total, err := h.svc.List(c.Request().Context(), filter, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req campRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	camp, err := req.toCamp()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	camp.ID = id
	if err := h.svc.Update(c.Request().Context(), camp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, camp)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete camp")
	}
	return c.NoContent(http.StatusNoContent)
}
