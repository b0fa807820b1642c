package handler

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/service"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/wizard"
	"github.com/labstack/echo/v4"
)

// httpError maps domain errors to status codes. The original error stays
// reachable through Internal so the error handler can render field errors.
func httpError(err error) *echo.HTTPError {
	var verr *wizard.ValidationError
	var serr *wizard.SubmissionError

	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr), errors.Is(err, service.ErrInvalidBooking):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, wizard.ErrSessionNotFound),
		errors.Is(err, wizard.ErrServiceNotFound),
		errors.Is(err, service.ErrBookingNotFound):
		code = http.StatusNotFound
	case errors.Is(err, wizard.ErrUnknownAddOn), errors.Is(err, wizard.ErrUnknownField):
		code = http.StatusBadRequest
	case errors.Is(err, wizard.ErrWrongStep),
		errors.Is(err, wizard.ErrSessionCompleted),
		errors.Is(err, wizard.ErrSubmissionInFlight),
		errors.Is(err, wizard.ErrServiceBookedOnDate),
		errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrDateUnavailable),
		errors.Is(err, service.ErrServiceUnavailable):
		code = http.StatusConflict
	case errors.As(err, &serr):
		code = http.StatusBadGateway
	}
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}
