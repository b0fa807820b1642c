package service

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/wizard"
)

// AvailabilityService derives per-day availability from booking counts. It
// is the resolver's availability source.
type AvailabilityService interface {
	GetAvailability(ctx context.Context, serviceID string, year int, month time.Month) ([]models.AvailabilityRecord, error)
}

type availabilityService struct {
	bookings      repository.BookingRepository
	catalog       wizard.ServiceLookup
	venueCapacity int
}

func NewAvailabilityService(bookings repository.BookingRepository, catalog wizard.ServiceLookup, venueCapacity int) AvailabilityService {
	return &availabilityService{bookings: bookings, catalog: catalog, venueCapacity: venueCapacity}
}

// GetAvailability returns one record per day. An empty serviceID reports
// venue-wide capacity.
func (s *availabilityService) GetAvailability(ctx context.Context, serviceID string, year int, month time.Month) ([]models.AvailabilityRecord, error) {
	capacity := s.venueCapacity
	if serviceID != "" {
		svc, ok := s.catalog.GetByID(serviceID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", wizard.ErrServiceNotFound, serviceID)
		}
		capacity = svc.MaxBookingsPerDay
	}

	first := civil.Date{Year: year, Month: month, Day: 1}
	from := first.In(time.UTC)
	to := from.AddDate(0, 1, -1)

	counts, err := s.bookings.CountActiveByDay(ctx, serviceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	taken := make(map[civil.Date]int, len(counts))
	for _, c := range counts {
		taken[civil.DateOf(c.Day)] = int(c.Count)
	}

	records := make([]models.AvailabilityRecord, 0, 31)
	for d := first; d.Month == month; d = d.AddDays(1) {
		rec := models.AvailabilityRecord{Date: d, IsAvailable: true, SpotsRemaining: -1}
		if capacity > 0 {
			rec.SpotsRemaining = max(capacity-taken[d], 0)
			rec.IsAvailable = rec.SpotsRemaining > 0
		}
		records = append(records, rec)
	}
	return records, nil
}
