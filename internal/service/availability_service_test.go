package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAvailability_ServiceCapacity(t *testing.T) {
	repo := &mockBookingRepo{
		countActiveByDayFn: func(ctx context.Context, serviceID string, from, to time.Time) ([]repository.DayCount, error) {
			assert.Equal(t, "1", serviceID)
			assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), from)
			assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), to)
			return []repository.DayCount{
				{Day: time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC), Count: 2},
				{Day: time.Date(2025, time.December, 6, 0, 0, 0, 0, time.UTC), Count: 1},
			}, nil
		},
	}
	svc := NewAvailabilityService(repo, testCatalog(), 5)

	records, err := svc.GetAvailability(context.Background(), "1", 2025, time.December)
	require.NoError(t, err)
	require.Len(t, records, 31)

	assert.Equal(t, civil.Date{Year: 2025, Month: time.December, Day: 1}, records[0].Date)
	assert.True(t, records[0].IsAvailable)
	assert.Equal(t, 2, records[0].SpotsRemaining)

	assert.False(t, records[4].IsAvailable, "both VR slots taken")
	assert.Equal(t, 0, records[4].SpotsRemaining)
	assert.True(t, records[5].IsAvailable)
	assert.Equal(t, 1, records[5].SpotsRemaining)
}

func TestGetAvailability_VenueWide(t *testing.T) {
	repo := &mockBookingRepo{
		countActiveByDayFn: func(ctx context.Context, serviceID string, from, to time.Time) ([]repository.DayCount, error) {
			assert.Empty(t, serviceID)
			return []repository.DayCount{
				{Day: time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC), Count: 3},
			}, nil
		},
	}
	svc := NewAvailabilityService(repo, testCatalog(), 3)

	records, err := svc.GetAvailability(context.Background(), "", 2026, time.February)
	require.NoError(t, err)
	require.Len(t, records, 28)
	assert.False(t, records[13].IsAvailable)
	assert.True(t, records[12].IsAvailable)
}

func TestGetAvailability_UncappedVenue(t *testing.T) {
	repo := &mockBookingRepo{
		countActiveByDayFn: func(ctx context.Context, serviceID string, from, to time.Time) ([]repository.DayCount, error) {
			return nil, nil
		},
	}
	svc := NewAvailabilityService(repo, testCatalog(), 0)

	records, err := svc.GetAvailability(context.Background(), "", 2026, time.April)
	require.NoError(t, err)
	require.Len(t, records, 30)
	assert.True(t, records[0].IsAvailable)
	assert.Equal(t, -1, records[0].SpotsRemaining)
}

func TestGetAvailability_Errors(t *testing.T) {
	repo := &mockBookingRepo{
		countActiveByDayFn: func(ctx context.Context, serviceID string, from, to time.Time) ([]repository.DayCount, error) {
			return nil, errors.New("db down")
		},
	}
	svc := NewAvailabilityService(repo, testCatalog(), 5)

	_, err := svc.GetAvailability(context.Background(), "404", 2025, time.December)
	assert.ErrorIs(t, err, wizard.ErrServiceNotFound)

	_, err = svc.GetAvailability(context.Background(), "2", 2025, time.December)
	assert.ErrorContains(t, err, "db down")
}
