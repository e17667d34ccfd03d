package middleware

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/competition-portal/internal/dto"
	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/validation"
	"github.com/labstack/echo/v4"
)

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	resp := dto.ErrorResponse{Message: err.Error()}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			resp.Message = m
		}
	}

	var failures validation.Failures
	switch {
	case errors.As(err, &failures):
		code = http.StatusUnprocessableEntity
		resp.Failures = failures
	case errors.Is(err, attachment.ErrTooLarge):
		code = http.StatusRequestEntityTooLarge
	}

	_ = c.JSON(code, resp)
}
