// Package notify tells customers that their booking was received.
package notify

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/shopspring/decimal"
)

// Confirmation is everything a message about a new booking needs.
type Confirmation struct {
	Reference       string
	ServiceName     string
	Date            civil.Date
	GuestCount      int
	AdditionalHours int
	AddOns          []models.AddOn
	Total           decimal.Decimal
	Customer        models.CustomerInfo
}

type Notifier interface {
	BookingConfirmed(ctx context.Context, c Confirmation) error
}

// Noop is used when no channel is configured.
type Noop struct{}

func (Noop) BookingConfirmed(context.Context, Confirmation) error { return nil }

// Multi sends through every notifier and joins their errors.
type Multi []Notifier

func (m Multi) BookingConfirmed(ctx context.Context, c Confirmation) error {
	var errs []error
	for _, n := range m {
		if err := n.BookingConfirmed(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
