package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
)

var (
	ErrSessionCompleted    = errors.New("booking is already completed")
	ErrWrongStep           = errors.New("operation is not available on the current step")
	ErrSubmissionInFlight  = errors.New("booking submission is in progress")
	ErrServiceNotFound     = errors.New("service not found")
	ErrUnknownAddOn        = errors.New("add-on does not belong to the selected service")
	ErrUnknownField        = errors.New("unknown customer field")
	ErrServiceBookedOnDate = errors.New("service is already booked on the selected date")
	ErrSessionNotFound     = errors.New("session not found")
)

// ValidationError blocks a forward transition. Nothing the user entered is
// cleared when it is returned.
type ValidationError struct {
	Step   models.Step
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s is incomplete: %s", e.Step, strings.Join(parts, "; "))
}

// SubmissionError means createBooking failed. The session is untouched and
// the submission may be retried.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("failed to create booking: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
