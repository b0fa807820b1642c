package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Routing keys on the shared topic exchange.
const (
	RoutingBookingCreated   = "booking.created"
	RoutingBookingCancelled = "booking.cancelled"
	RoutingCatalogUpdated   = "catalog.updated"
)

// BookingEvent is published whenever a booking changes state.
type BookingEvent struct {
	Reference  string          `json:"reference"`
	ServiceID  string          `json:"service_id"`
	EventDate  civil.Date      `json:"event_date"`
	Status     BookingStatus   `json:"status"`
	GuestCount int             `json:"guest_count"`
	TotalPrice decimal.Decimal `json:"total_price"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// CatalogEvent announces catalog changes made elsewhere. ServiceID is empty
// when the whole catalog changed.
type CatalogEvent struct {
	ServiceID string `json:"service_id,omitempty"`
}
