package wizard

import (
	"slices"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
)

// View is a consistent copy of a session taken under its lock.
type View struct {
	ID               string                  `json:"id"`
	Step             models.Step             `json:"step"`
	StepNumber       int                     `json:"step_number"`
	SelectedDate     *civil.Date             `json:"selected_date"`
	Service          *models.Service         `json:"service"`
	GuestCount       int                     `json:"guest_count"`
	AdditionalHours  int                     `json:"additional_hours"`
	SelectedAddOnIDs []string                `json:"selected_add_on_ids"`
	CustomerInfo     models.CustomerInfo     `json:"customer_info"`
	Pricing          models.PriceBreakdown   `json:"-"`
	Price            models.DisplayBreakdown `json:"pricing"`
	Errors           map[string]string       `json:"errors"`
	Submitting       bool                    `json:"submitting"`
	CanGoBack        bool                    `json:"can_go_back"`
	Booking          *models.BookingSnapshot `json:"booking,omitempty"`
	LastActive       time.Time               `json:"last_active"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, canGoBack := s.step.Previous()
	v := View{
		ID:               s.id,
		Step:             s.step,
		StepNumber:       s.step.Number(),
		GuestCount:       s.guestCount,
		AdditionalHours:  s.hours,
		SelectedAddOnIDs: slices.Clone(s.addOnIDs),
		CustomerInfo:     s.customer,
		Pricing:          s.pricing,
		Price:            s.pricing.Display(),
		Errors:           copyErrors(s.errors),
		Submitting:       s.submitting,
		CanGoBack:        canGoBack && !s.submitting,
		LastActive:       s.lastActive,
	}
	if v.SelectedAddOnIDs == nil {
		v.SelectedAddOnIDs = []string{}
	}
	if (s.date != civil.Date{}) {
		d := s.date
		v.SelectedDate = &d
	}
	if s.service != nil {
		svc := s.service.Clone()
		v.Service = &svc
	}
	if s.booking != nil {
		b := *s.booking
		v.Booking = &b
	}
	return v
}
