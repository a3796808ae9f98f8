package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/swasthya/swasthya/internal/platform/auth"
	"github.com/swasthya/swasthya/pkg/pagination"
)

// Handler provides HTTP handlers for patient accounts, relatives, and login.
type Handler struct {
	svc    *Service
	jwtCfg auth.JWTConfig
}

func NewHandler(svc *Service, jwtCfg auth.JWTConfig) *Handler {
	return &Handler{svc: svc, jwtCfg: jwtCfg}
}

// RegisterRoutes registers routes. Login endpoints go on the public group;
// everything else requires a session.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/auth/login/admin", h.LoginAdmin)
	public.POST("/auth/login/doctor", h.LoginDoctor)
	public.POST("/auth/login/user", h.LoginUser)
	public.POST("/auth/logout", h.Logout)

	api.GET("/auth/me", h.Me)

	staff := api.Group("", auth.RequireRole("doctor"))
	staff.POST("/patients", h.CreatePatient)
	staff.GET("/patients", h.ListPatients)
	staff.GET("/patients/:id", h.GetPatient)
	staff.PUT("/patients/:id", h.UpdatePatient)
	staff.DELETE("/patients/:id", h.DeletePatient)

	staff.POST("/patients/:id/relatives", h.AddRelative)
	staff.PUT("/patients/:id/relatives/:relativeId", h.UpdateRelative)
	staff.DELETE("/patients/:id/relatives/:relativeId", h.RemoveRelative)

	// Citizens may read their own family list; ownership is checked in the
	// handler.
	api.GET("/patients/:id/relatives", h.ListRelatives,
		auth.RequireRole("doctor", "user"))
}

type emailLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type phoneLoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

func (h *Handler) LoginAdmin(c echo.Context) error {
	return h.loginByEmail(c, RoleAdmin)
}

func (h *Handler) LoginDoctor(c echo.Context) error {
	return h.loginByEmail(c, RoleDoctor)
}

func (h *Handler) loginByEmail(c echo.Context, role string) error {
	var req emailLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}
	u, err := h.svc.AuthenticateByEmail(c.Request().Context(), req.Email, req.Password, role)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
	}
	return h.issueSession(c, u)
}

func (h *Handler) LoginUser(c echo.Context) error {
	var req phoneLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PhoneNumber == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "phone number and password are required")
	}
	u, err := h.svc.AuthenticateByPhone(c.Request().Context(), req.PhoneNumber, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
	}
	return h.issueSession(c, u)
}

func (h *Handler) issueSession(c echo.Context, u *User) error {
	token, err := auth.IssueToken(h.jwtCfg, u.ID.String(), u.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create session")
	}
	c.SetCookie(auth.SessionCookie(h.jwtCfg, token))
	return c.JSON(http.StatusOK, loginResponse{
		Success: true,
		Message: "login successful",
		Token:   token,
		User:    u,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(auth.ExpiredSessionCookie(h.jwtCfg))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "logged out",
	})
}

func (h *Handler) Me(c echo.Context) error {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	u, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "account not found")
	}
	return c.JSON(http.StatusOK, u)
}

type patientRequest struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           *string `json:"email"`
	PhoneNumber     string  `json:"phone_number"`
	Password        string  `json:"password"`
	DateOfBirth     string  `json:"date_of_birth"`
	Gender          *string `json:"gender"`
	BloodGroup      *string `json:"blood_group"`
	Address         string  `json:"address"`
	FamilyMembers   int     `json:"family_members"`
	Department      string  `json:"department"`
	HasAbhaID       string  `json:"has_abha_id"`
	HasAyushmanCard string  `json:"has_ayushman_card"`
}

func (req *patientRequest) toUser() (*User, error) {
	u := &User{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Gender:          req.Gender,
		BloodGroup:      req.BloodGroup,
		Address:         req.Address,
		FamilyMembers:   req.FamilyMembers,
		Department:      req.Department,
		HasAbhaID:       req.HasAbhaID,
		HasAyushmanCard: req.HasAyushmanCard,
		Role:            RoleUser,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, errors.New("date_of_birth must be YYYY-MM-DD")
		}
		u.DateOfBirth = &dob
	}
	return u, nil
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := req.toUser()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePatient(c.Request().Context(), u, req.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, k := range []string{"role", "department", "search"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	items, total, err := h.svc.SearchPatients(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list patients")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := req.toUser()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u.ID = id
	if err := h.svc.UpdatePatient(c.Request().Context(), u, req.Password); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete patient")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddRelative(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var rel Relative
	if err := c.Bind(&rel); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rel.UserID = userID
	if err := h.svc.AddRelative(c.Request().Context(), &rel); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rel)
}

func (h *Handler) ListRelatives(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == "user" && auth.UserIDFromContext(ctx) != userID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "you can only view your own relatives")
	}
	items, err := h.svc.ListRelatives(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list relatives")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateRelative(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	relID, err := uuid.Parse(c.Param("relativeId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid relative id")
	}
	var rel Relative
	if err := c.Bind(&rel); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rel.ID = relID
	rel.UserID = userID
	if err := h.svc.UpdateRelative(c.Request().Context(), &rel); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rel)
}

func (h *Handler) RemoveRelative(c echo.Context) error {
	relID, err := uuid.Parse(c.Param("relativeId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid relative id")
	}
	if err := h.svc.RemoveRelative(c.Request().Context(), relID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not remove relative")
	}
	return c.NoContent(http.StatusNoContent)
}
