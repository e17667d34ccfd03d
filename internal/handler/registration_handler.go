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

type RegistrationHandler struct {
	svc   service.RegistrationService
	clock clock.Clock
}

func NewRegistrationHandler(svc service.RegistrationService, clk clock.Clock) *RegistrationHandler {
	if clk == nil {
		clk = clock.System()
	}
	return &RegistrationHandler{svc: svc, clock: clk}
}

func (h *RegistrationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateRegistration)
	g.GET("/:id", h.GetRegistration)
	g.DELETE("/:id", h.WithdrawRegistration)
}

func (h *RegistrationHandler) CreateRegistration(c echo.Context) error {
	record := draft.NewRegistration()
	set := draft.RegistrationSlots()
	enc, err := readSubmission(c, record, set)
	if err != nil {
		return err
	}
	if f := draft.RegistrationEngine(h.clock).ValidateAll(record, set); len(f) > 0 {
		return f
	}

	registration := dto.RegistrationModel(record, set)
	registration.ID = 0

	if err := h.svc.CreateRegistration(c.Request().Context(), registration); err != nil {
		switch {
		case errors.Is(err, service.ErrCompetitionNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrRegistrationClosed),
			errors.Is(err, service.ErrProgramNotOffered):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAlreadyRegistered),
			errors.Is(err, service.ErrProgramFull):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	metrics.RecordsStored.WithLabelValues("registration", string(enc)).Inc()

	return c.JSON(http.StatusCreated, dto.ToRegistrationResponse(registration))
}

func (h *RegistrationHandler) GetRegistration(c echo.Context) error {
	id, err := parseID(c, "registration")
	if err != nil {
		return err
	}

	registration, err := h.svc.GetRegistration(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "registration not found")
	}

	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(registration))
}

func (h *RegistrationHandler) WithdrawRegistration(c echo.Context) error {
	id, err := parseID(c, "registration")
	if err != nil {
		return err
	}

	registration, err := h.svc.WithdrawRegistration(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAlreadyWithdrawn):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(registration))
}
