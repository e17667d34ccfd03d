package handler

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/competition-portal/internal/draft"
	"github.com/Eursukkul/competition-portal/internal/dto"
	"github.com/Eursukkul/competition-portal/internal/service"
	"github.com/Eursukkul/competition-portal/pkg/clock"
	"github.com/Eursukkul/competition-portal/pkg/metrics"
	"github.com/labstack/echo/v4"
)

type ProfileHandler struct {
	svc   service.ProfileService
	clock clock.Clock
}

func NewProfileHandler(svc service.ProfileService, clk clock.Clock) *ProfileHandler {
	if clk == nil {
		clk = clock.System()
	}
	return &ProfileHandler{svc: svc, clock: clk}
}

func (h *ProfileHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:id", h.GetProfile)
	g.PUT("/:id", h.PublishProfile)
	g.GET("/:id/draft", h.GetDraft)
	g.PUT("/:id/draft", h.SaveDraft)
}

// SaveDraft stages an autosaved profile. Drafts are JSON only and are not
// validated.
func (h *ProfileHandler) SaveDraft(c echo.Context) error {
	id := c.Param("id")
	p := draft.NewProfile("")
	if err := c.Echo().JSONSerializer.Deserialize(c, p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.svc.SaveDraft(c.Request().Context(), id, p); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProfileHandler) GetDraft(c echo.Context) error {
	p, err := h.svc.LoadDraft(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) PublishProfile(c echo.Context) error {
	record := draft.NewProfile("")
	set := draft.ProfileSlots()
	enc, err := readSubmission(c, record, set)
	if err != nil {
		return err
	}
	record.ID = c.Param("id")
	if f := draft.ProfileEngine(h.clock).ValidateAll(record, set); len(f) > 0 {
		return f
	}

	profile := dto.ProfileModel(record, set)
	if err := h.svc.PublishProfile(c.Request().Context(), profile); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.RecordsStored.WithLabelValues("profile", string(enc)).Inc()

	return c.JSON(http.StatusOK, dto.ToProfileResponse(profile))
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.svc.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	return c.JSON(http.StatusOK, dto.ToProfileResponse(profile))
}
