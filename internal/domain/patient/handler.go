package patient

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hivtrack/hivtrack/internal/platform/auth"
	"github.com/hivtrack/hivtrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("clinician", "analyst"))
	g.GET("/patients", h.ListPatients)
	g.GET("/patients/:id", h.GetPatient)
}

// ParseFilter reads the cohort hierarchy filter from query parameters.
// Malformed ids are ignored rather than rejected so a stale dashboard
// link still renders the unfiltered view.
func ParseFilter(c echo.Context) Filter {
	var f Filter
	if v := c.QueryParam("cohort_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.CohortID = &id
		}
	}
	if v := c.QueryParam("site_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.SiteID = &id
		}
	}
	if v := c.QueryParam("facility_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.FacilityID = &id
		}
	}
	return f
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ParseFilter(c)

	items, total, err := h.svc.ListPatients(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// Fall back to the business identifier used by clinic staff.
		p, perr := h.svc.GetPatientByPNumber(c.Request().Context(), c.Param("id"))
		if perr != nil {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return c.JSON(http.StatusOK, p)
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}
