package wizard

import (
	"context"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
)

// BookingGateway creates the booking once the wizard is complete.
type BookingGateway interface {
	CreateBooking(ctx context.Context, payload models.CreateBookingPayload) (models.BookingReceipt, error)
}

// ServiceLookup is the read side of the service catalog.
type ServiceLookup interface {
	GetByID(id string) (models.Service, bool)
}
