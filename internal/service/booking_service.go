package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/notify"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/pricing"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/wizard"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidBooking     = errors.New("invalid booking")
	ErrDateUnavailable    = errors.New("date is no longer available")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrAlreadyCancelled   = errors.New("booking is already cancelled")
	ErrServiceUnavailable = errors.New("service is not bookable")
)

const notifyTimeout = 30 * time.Second

// EventPublisher is satisfied by *rabbitmq.Publisher.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// BookingService persists wizard submissions. It implements
// wizard.BookingGateway.
type BookingService interface {
	CreateBooking(ctx context.Context, payload models.CreateBookingPayload) (models.BookingReceipt, error)
	CancelBooking(ctx context.Context, ref string) (*models.Booking, error)
	GetBooking(ctx context.Context, ref string) (*models.Booking, error)
	ListBookings(ctx context.Context, serviceID string, status *models.BookingStatus) ([]models.Booking, error)
}

type BookingDeps struct {
	Bookings  repository.BookingRepository
	Services  repository.ServiceRepository
	Catalog   wizard.ServiceLookup
	Pricing   *pricing.Engine
	Publisher EventPublisher
	Notifier  notify.Notifier
	Logger    *zap.Logger
	// VenueCapacity caps bookings per day across all services. Zero means
	// no venue-wide cap.
	VenueCapacity int
	Location      *time.Location
	Now           func() time.Time
	// OnChanged runs after a booking for the day was created or cancelled.
	OnChanged func(serviceID string, day civil.Date)
}

type bookingService struct {
	BookingDeps
}

func NewBookingService(deps BookingDeps) BookingService {
	if deps.Pricing == nil {
		deps.Pricing = pricing.NewEngine()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Noop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &bookingService{BookingDeps: deps}
}

func (s *bookingService) CreateBooking(ctx context.Context, payload models.CreateBookingPayload) (models.BookingReceipt, error) {
	svc, err := s.checkPayload(payload)
	if err != nil {
		return models.BookingReceipt{}, err
	}

	price := s.Pricing.Compute(svc, payload.GuestCount, payload.AdditionalHours, payload.SelectedAddOnIDs)
	day := payload.Date.In(time.UTC)

	booking := &models.Booking{
		Reference:       uuid.NewString(),
		ServiceID:       svc.ID,
		EventDate:       day,
		GuestCount:      payload.GuestCount,
		AdditionalHours: payload.AdditionalHours,
		FirstName:       payload.CustomerInfo.FirstName,
		LastName:        payload.CustomerInfo.LastName,
		Email:           payload.CustomerInfo.Email,
		Phone:           payload.CustomerInfo.Phone,
		StreetAddress:   payload.CustomerInfo.StreetAddress,
		City:            payload.CustomerInfo.City,
		PostalCode:      payload.CustomerInfo.PostalCode,
		Notes:           payload.CustomerInfo.Notes,
		BasePrice:       price.BasePrice,
		HoursSurcharge:  price.HoursSurcharge,
		AddOnsTotal:     price.AddOnsTotal,
		Tax:             price.Tax,
		TotalPrice:      price.Total,
		Status:          models.StatusConfirmed,
	}
	selected := pricing.SelectedAddOns(svc, payload.SelectedAddOnIDs)
	for _, a := range selected {
		booking.AddOns = append(booking.AddOns, models.BookingAddOn{AddOnID: a.ID, Name: a.Name, Price: a.Price})
	}

	err = s.Bookings.WithTx(ctx, func(tx *gorm.DB) error {
		// 1. Lock the service row and the day
		if _, err := s.Services.FindByIDForUpdate(ctx, tx, svc.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrServiceUnavailable
			}
			return err
		}
		if err := s.Bookings.LockDay(ctx, tx, day); err != nil {
			return err
		}

		// 2. Service capacity
		taken, err := s.Bookings.CountActiveOn(ctx, tx, svc.ID, day)
		if err != nil {
			return err
		}
		if int(taken) >= svc.MaxBookingsPerDay {
			return ErrDateUnavailable
		}

		// 3. Venue capacity
		if s.VenueCapacity > 0 {
			venue, err := s.Bookings.CountActiveOn(ctx, tx, "", day)
			if err != nil {
				return err
			}
			if int(venue) >= s.VenueCapacity {
				return ErrDateUnavailable
			}
		}

		return s.Bookings.Create(ctx, tx, booking)
	})
	if err != nil {
		return models.BookingReceipt{}, err
	}

	s.Logger.Info("booking created",
		zap.String("reference", booking.Reference),
		zap.String("service_id", booking.ServiceID),
		zap.Stringer("date", payload.Date),
		zap.String("total", models.FormatMoney(booking.TotalPrice)),
	)

	s.afterChange(booking, models.RoutingBookingCreated)
	s.notify(notify.Confirmation{
		Reference:       booking.Reference,
		ServiceName:     svc.Name,
		Date:            payload.Date,
		GuestCount:      booking.GuestCount,
		AdditionalHours: booking.AdditionalHours,
		AddOns:          selected,
		Total:           booking.TotalPrice,
		Customer:        payload.CustomerInfo,
	})

	return models.BookingReceipt{ID: booking.Reference}, nil
}

// checkPayload applies the wizard rules again. Submissions do not have to
// come from a session of this process.
func (s *bookingService) checkPayload(p models.CreateBookingPayload) (models.Service, error) {
	svc, ok := s.Catalog.GetByID(p.ServiceID)
	if !ok {
		return models.Service{}, fmt.Errorf("%w: unknown service %q", ErrInvalidBooking, p.ServiceID)
	}
	for _, id := range p.SelectedAddOnIDs {
		if !svc.HasAddOn(id) {
			return models.Service{}, fmt.Errorf("%w: add-on %q does not belong to service %s", ErrInvalidBooking, id, svc.ID)
		}
	}

	state := wizard.State{
		Date:            p.Date,
		Service:         &svc,
		GuestCount:      p.GuestCount,
		AdditionalHours: p.AdditionalHours,
		Customer:        p.CustomerInfo,
	}
	today := civil.DateOf(s.Now().In(s.Location))
	for _, step := range []models.Step{models.StepDateSelection, models.StepCustomization, models.StepContactInfo} {
		if res := wizard.Validate(state, step, nil, today); !res.Valid {
			return models.Service{}, fmt.Errorf("%w: %w", ErrInvalidBooking, &wizard.ValidationError{Step: step, Fields: res.Errors})
		}
	}
	return svc, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, ref string) (*models.Booking, error) {
	var result *models.Booking

	err := s.Bookings.WithTx(ctx, func(tx *gorm.DB) error {
		booking, err := s.Bookings.FindByReferenceForUpdate(ctx, tx, ref)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		// Concurrent cancels wait on the row lock and then see cancelled.
		if booking.Status == models.StatusCancelled {
			return ErrAlreadyCancelled
		}
		if err := s.Bookings.UpdateStatus(ctx, tx, booking.ID, models.StatusCancelled); err != nil {
			return err
		}
		booking.Status = models.StatusCancelled
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("booking cancelled", zap.String("reference", ref))
	s.afterChange(result, models.RoutingBookingCancelled)
	return result, nil
}

func (s *bookingService) GetBooking(ctx context.Context, ref string) (*models.Booking, error) {
	booking, err := s.Bookings.FindByReference(ctx, nil, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, serviceID string, status *models.BookingStatus) ([]models.Booking, error) {
	return s.Bookings.FindByServiceID(ctx, serviceID, status)
}

func (s *bookingService) afterChange(b *models.Booking, routingKey string) {
	if s.OnChanged != nil {
		s.OnChanged(b.ServiceID, b.Day())
	}
	// nil publisher = skip RabbitMQ
	if s.Publisher != nil {
		if err := s.Publisher.Publish(routingKey, b.Event(s.Now())); err != nil {
			s.Logger.Warn("failed to publish booking event", zap.String("routing_key", routingKey), zap.Error(err))
		}
	}
}

// notify runs detached from the request; failures are only logged.
func (s *bookingService) notify(c notify.Confirmation) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.Notifier.BookingConfirmed(ctx, c); err != nil {
			s.Logger.Warn("failed to send booking confirmation", zap.String("reference", c.Reference), zap.Error(err))
		}
	}()
}
