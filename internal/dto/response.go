package dto

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/wizard"
)

type BookingResponse struct {
	Reference       string                  `json:"reference"`
	ServiceID       string                  `json:"service_id"`
	EventDate       civil.Date              `json:"event_date"`
	GuestCount      int                     `json:"guest_count"`
	AdditionalHours int                     `json:"additional_hours"`
	CustomerName    string                  `json:"customer_name"`
	Email           string                  `json:"email"`
	Status          models.BookingStatus    `json:"status"`
	AddOns          []BookingAddOn          `json:"add_ons"`
	Pricing         models.DisplayBreakdown `json:"pricing"`
	CreatedAt       time.Time               `json:"created_at"`
}

type BookingAddOn struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type ReceiptResponse struct {
	ID string `json:"id"`
}

// ServiceOptionsResponse lists what can be customized for a service.
type ServiceOptionsResponse struct {
	ServiceID  string         `json:"service_id"`
	MinGuests  int            `json:"min_guests"`
	MaxGuests  int            `json:"max_guests"`
	HourlyRate string         `json:"hourly_rate"`
	AddOns     []models.AddOn `json:"add_ons"`
}

type AvailabilityResponse struct {
	ServiceID string                      `json:"service_id"`
	Year      int                         `json:"year"`
	Month     int                         `json:"month"`
	Label     string                      `json:"label"`
	Records   []models.AvailabilityRecord `json:"records"`
	Days      []availability.DayStatus    `json:"days"`
	Cached    bool                        `json:"cached"`
	// Banner is the retry message shown when the month failed to load.
	Banner string `json:"banner,omitempty"`
}

// DateSelectionResponse is the session after a date pick. A booked or past
// day leaves the session unchanged and Selected false.
type DateSelectionResponse struct {
	wizard.View
	Selected bool `json:"selected"`
	Booked   bool `json:"booked"`
	Past     bool `json:"past"`
}

type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	breakdown := models.PriceBreakdown{
		BasePrice:      b.BasePrice,
		HoursSurcharge: b.HoursSurcharge,
		AddOnsTotal:    b.AddOnsTotal,
		Subtotal:       b.BasePrice.Add(b.HoursSurcharge).Add(b.AddOnsTotal),
		Tax:            b.Tax,
		Total:          b.TotalPrice,
	}
	addOns := make([]BookingAddOn, len(b.AddOns))
	for i, a := range b.AddOns {
		addOns[i] = BookingAddOn{ID: a.AddOnID, Name: a.Name, Price: models.FormatMoney(a.Price)}
	}
	return BookingResponse{
		Reference:       b.Reference,
		ServiceID:       b.ServiceID,
		EventDate:       b.Day(),
		GuestCount:      b.GuestCount,
		AdditionalHours: b.AdditionalHours,
		CustomerName:    b.FirstName + " " + b.LastName,
		Email:           b.Email,
		Status:          b.Status,
		AddOns:          addOns,
		Pricing:         breakdown.Display(),
		CreatedAt:       b.CreatedAt,
	}
}

func ToServiceOptionsResponse(s models.Service, hourlyRate string) ServiceOptionsResponse {
	addOns := s.AddOns
	if addOns == nil {
		addOns = []models.AddOn{}
	}
	return ServiceOptionsResponse{
		ServiceID:  s.ID,
		MinGuests:  s.MinGuests,
		MaxGuests:  s.MaxGuests,
		HourlyRate: hourlyRate,
		AddOns:     addOns,
	}
}

func ToAvailabilityResponse(v availability.MonthView, days []availability.DayStatus) AvailabilityResponse {
	records := v.Records
	if records == nil {
		records = []models.AvailabilityRecord{}
	}
	return AvailabilityResponse{
		ServiceID: v.Key.ServiceID,
		Year:      v.Key.Year,
		Month:     int(v.Key.Month),
		Label:     v.Key.Label(),
		Records:   records,
		Days:      days,
		Cached:    v.Cached,
		Banner:    v.Banner(),
	}
}
