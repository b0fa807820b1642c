package wizard

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
)

// Field keys used in validation errors besides the customer fields.
const (
	FieldDate            = "date"
	FieldService         = "service"
	FieldGuestCount      = "guest_count"
	FieldAdditionalHours = "additional_hours"
)

const minPhoneDigits = 10

const serviceBookedMsg = "This service is already booked on the selected date. Please go back and select another date."

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s+\-()]+$`)
)

// Calendar answers booked-date lookups for validation.
type Calendar interface {
	IsBooked(serviceID string, d civil.Date) bool
}

// State is the part of a session the validator looks at.
type State struct {
	Date            civil.Date
	Service         *models.Service
	GuestCount      int
	AdditionalHours int
	Customer        models.CustomerInfo
}

func (s State) HasDate() bool {
	return s.Date != civil.Date{}
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Validate checks the rules that gate leaving step. It has no side effects.
func Validate(state State, step models.Step, cal Calendar, today civil.Date) ValidationResult {
	errs := make(map[string]string)

	switch step {
	case models.StepDateSelection:
		switch {
		case !state.HasDate():
			errs[FieldDate] = "Please select a date"
		case dateBooked(cal, state.Service, state.Date):
			errs[FieldDate] = "This date is already booked. Please select another date."
		case state.Date.Before(today):
			errs[FieldDate] = "Please select a date that is not in the past"
		}

	case models.StepServiceSelection:
		switch {
		case state.Service == nil:
			errs[FieldService] = "Please select a service"
		case state.HasDate() && dateBooked(cal, state.Service, state.Date):
			errs[FieldDate] = serviceBookedMsg
		}

	case models.StepCustomization:
		svc := state.Service
		if svc == nil {
			errs[FieldService] = "No service selected"
			break
		}
		if state.HasDate() && dateBooked(cal, svc, state.Date) {
			errs[FieldDate] = serviceBookedMsg
		}
		if state.GuestCount < svc.MinGuests {
			errs[FieldGuestCount] = fmt.Sprintf("Minimum %d guests required", svc.MinGuests)
		} else if state.GuestCount > svc.MaxGuests {
			errs[FieldGuestCount] = fmt.Sprintf("Maximum %d guests allowed", svc.MaxGuests)
		}
		if state.AdditionalHours < 0 {
			errs[FieldAdditionalHours] = "Additional hours cannot be negative"
		}

	case models.StepContactInfo:
		validateCustomer(state.Customer, errs)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func validateCustomer(c models.CustomerInfo, errs map[string]string) {
	if strings.TrimSpace(c.FirstName) == "" {
		errs[models.FieldFirstName] = "Please enter your first name"
	}
	if strings.TrimSpace(c.LastName) == "" {
		errs[models.FieldLastName] = "Please enter your last name"
	}

	switch email := strings.TrimSpace(c.Email); {
	case email == "":
		errs[models.FieldEmail] = "Please enter your email address"
	case !emailPattern.MatchString(email):
		errs[models.FieldEmail] = "Please enter a valid email address"
	}

	switch phone := strings.TrimSpace(c.Phone); {
	case phone == "":
		errs[models.FieldPhone] = "Please enter your phone number"
	case !phonePattern.MatchString(phone) || significantChars(phone) < minPhoneDigits:
		errs[models.FieldPhone] = "Please enter a valid phone number"
	}
}

func significantChars(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// dateBooked checks the venue-wide month and, once a service is chosen, the
// service's own month.
func dateBooked(cal Calendar, svc *models.Service, d civil.Date) bool {
	if cal == nil {
		return false
	}
	if cal.IsBooked("", d) {
		return true
	}
	return svc != nil && cal.IsBooked(svc.ID, d)
}
