package middleware

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/wizard"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as dto.ErrorResponse. Field errors of a
// wrapped *wizard.ValidationError are included.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	resp := dto.ErrorResponse{Message: err.Error()}

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			resp.Message = m
		}
	}

	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		resp.Errors = verr.Fields
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, resp)
}
