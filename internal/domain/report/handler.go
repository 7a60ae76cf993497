package report

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hivtrack/hivtrack/internal/domain/patient"
	"github.com/hivtrack/hivtrack/internal/platform/auth"
)

// Handler exposes the reporting API.
type Handler struct {
	svc      *Service
	patients *patient.Service
	log      zerolog.Logger
}

func NewHandler(svc *Service, patients *patient.Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, patients: patients, log: log}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reports", auth.RequireRole("analyst", "clinician"))
	g.GET("/indicators", h.ListIndicators)
	g.GET("/indicators/:name", h.ComputeIndicator)
	g.GET("/sections/:section", h.ComputeSection)
	g.GET("/dashboard", h.Dashboard)
	g.GET("/filters", h.FilterOptions)
	g.DELETE("/cache", h.ClearCache, auth.RequireRole("admin"))
}

func (h *Handler) ListIndicators(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"indicators": h.svc.IndicatorNames(),
		"sections":   SectionNames(),
	})
}

func (h *Handler) ComputeIndicator(c echo.Context) error {
	f := ParseFilterSet(c, h.log)
	res, err := h.svc.Compute(c.Request().Context(), c.Param("name"), f)
	if err != nil {
		if errors.Is(err, ErrUnknownIndicator) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ComputeSection(c echo.Context) error {
	f := ParseFilterSet(c, h.log)
	results, err := h.svc.ComputeSection(c.Request().Context(), c.Param("section"), f)
	if err != nil {
		if errors.Is(err, ErrUnknownSection) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"section": c.Param("section"),
		"results": results,
	})
}

func (h *Handler) Dashboard(c echo.Context) error {
	f := ParseFilterSet(c, h.log)
	stats, err := h.svc.Dashboard(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) FilterOptions(c echo.Context) error {
	f := ParseFilterSet(c, h.log)
	opts, err := h.patients.FilterOptions(c.Request().Context(), f.CohortID, f.SiteID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) ClearCache(c echo.Context) error {
	if err := h.svc.ClearCache(c.Request().Context()); err != nil {
		return err
	}
	h.log.Info().Msg("report cache cleared")
	return c.NoContent(http.StatusNoContent)
}
