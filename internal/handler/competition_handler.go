package handler

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/competition-portal/internal/draft"
	"github.com/Eursukkul/competition-portal/internal/dto"
	"github.com/Eursukkul/competition-portal/internal/models"
	"github.com/Eursukkul/competition-portal/internal/repository"
	"github.com/Eursukkul/competition-portal/internal/service"
	"github.com/Eursukkul/competition-portal/pkg/clock"
	"github.com/Eursukkul/competition-portal/pkg/metrics"
	"github.com/labstack/echo/v4"
)

type CompetitionHandler struct {
	svc           service.CompetitionService
	registrations service.RegistrationService
	clock         clock.Clock
}

func NewCompetitionHandler(svc service.CompetitionService, registrations service.RegistrationService, clk clock.Clock) *CompetitionHandler {
	if clk == nil {
		clk = clock.System()
	}
	return &CompetitionHandler{svc: svc, registrations: registrations, clock: clk}
}

func (h *CompetitionHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateCompetition)
	g.GET("", h.ListCompetitions)
	g.GET("/:id", h.GetCompetition)
	g.PUT("/:id", h.UpdateCompetition)
	g.GET("/:id/registrations", h.ListRegistrations)
}

// decode reads and re-validates a competition submission.
func (h *CompetitionHandler) decode(c echo.Context) (*models.Competition, string, error) {
	record := draft.NewCompetition()
	set := draft.CompetitionSlots()
	enc, err := readSubmission(c, record, set)
	if err != nil {
		return nil, "", err
	}
	if f := draft.CompetitionEngine(h.clock).ValidateAll(record, set); len(f) > 0 {
		return nil, "", f
	}
	return dto.CompetitionModel(record, set), string(enc), nil
}

func (h *CompetitionHandler) CreateCompetition(c echo.Context) error {
	competition, enc, err := h.decode(c)
	if err != nil {
		return err
	}
	competition.ID = 0

	if err := h.svc.CreateCompetition(c.Request().Context(), competition); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.RecordsStored.WithLabelValues("competition", enc).Inc()

	return c.JSON(http.StatusCreated, dto.ToCompetitionResponse(competition))
}

func (h *CompetitionHandler) UpdateCompetition(c echo.Context) error {
	id, err := parseID(c, "competition")
	if err != nil {
		return err
	}

	competition, enc, err := h.decode(c)
	if err != nil {
		return err
	}
	competition.ID = id

	if err := h.svc.UpdateCompetition(c.Request().Context(), competition); err != nil {
		if errors.Is(err, service.ErrCompetitionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.RecordsStored.WithLabelValues("competition", enc).Inc()

	return c.JSON(http.StatusOK, dto.ToCompetitionResponse(competition))
}

func (h *CompetitionHandler) GetCompetition(c echo.Context) error {
	id, err := parseID(c, "competition")
	if err != nil {
		return err
	}

	competition, err := h.svc.GetCompetition(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "competition not found")
	}

	return c.JSON(http.StatusOK, dto.ToCompetitionResponse(competition))
}

func (h *CompetitionHandler) ListCompetitions(c echo.Context) error {
	var q dto.ListCompetitionsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	filter := repository.CompetitionFilter{City: q.City, Limit: q.Limit}
	if q.From != "" {
		from, _ := draft.ParseDate(q.From)
		filter.From = from.Time
	}
	if q.OpenOnly {
		filter.OpenOn = clock.Today(h.clock)
	}

	competitions, err := h.svc.ListCompetitions(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.CompetitionResponse, len(competitions))
	for i := range competitions {
		resp[i] = dto.ToCompetitionResponse(&competitions[i])
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CompetitionHandler) ListRegistrations(c echo.Context) error {
	id, err := parseID(c, "competition")
	if err != nil {
		return err
	}

	var status *models.RegistrationStatus
	if s := c.QueryParam("status"); s != "" {
		rs := models.RegistrationStatus(s)
		status = &rs
	}

	registrations, err := h.registrations.ListRegistrations(c.Request().Context(), id, status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.RegistrationResponse, len(registrations))
	for i := range registrations {
		resp[i] = dto.ToRegistrationResponse(&registrations[i])
	}

	return c.JSON(http.StatusOK, resp)
}
