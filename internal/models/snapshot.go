package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// CreateBookingPayload is the full submission contract.
type CreateBookingPayload struct {
	ServiceID        string       `json:"service_id"`
	Date             civil.Date   `json:"date"`
	GuestCount       int          `json:"guest_count"`
	AdditionalHours  int          `json:"additional_hours"`
	SelectedAddOnIDs []string     `json:"selected_add_on_ids"`
	CustomerInfo     CustomerInfo `json:"customer_info"`
}

type BookingReceipt struct {
	ID string `json:"id"`
}

type BookingOptions struct {
	GuestCount      int     `json:"guest_count"`
	AdditionalHours int     `json:"additional_hours"`
	AddOns          []AddOn `json:"add_ons"`
}

// BookingSnapshot is captured once a booking was accepted. It shares no
// slices with the session it came from.
type BookingSnapshot struct {
	BookingID    string          `json:"booking_id"`
	SelectedDate civil.Date      `json:"selected_date"`
	Service      Service         `json:"service"`
	Options      BookingOptions  `json:"options"`
	CustomerInfo CustomerInfo    `json:"customer_info"`
	Pricing      PriceBreakdown  `json:"pricing"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	SubmittedAt  time.Time       `json:"submitted_at"`
}
