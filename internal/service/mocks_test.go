package service

import (
	"context"
	"sync"
	"time"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/catalog"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/notify"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/repository"
	"gorm.io/gorm"
)

// --- Mock BookingRepository ---

type mockBookingRepo struct {
	createFn           func(ctx context.Context, booking *models.Booking) error
	findByReferenceFn  func(ctx context.Context, ref string) (*models.Booking, error)
	findForUpdateFn    func(ctx context.Context, ref string) (*models.Booking, error)
	findByServiceIDFn  func(ctx context.Context, serviceID string, status *models.BookingStatus) ([]models.Booking, error)
	countActiveOnFn    func(ctx context.Context, serviceID string, day time.Time) (int64, error)
	countActiveByDayFn func(ctx context.Context, serviceID string, from, to time.Time) ([]repository.DayCount, error)
	updateStatusFn     func(ctx context.Context, bookingID uint, status models.BookingStatus) error
}

func (m *mockBookingRepo) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return m.createFn(ctx, booking)
}
func (m *mockBookingRepo) FindByReference(ctx context.Context, tx *gorm.DB, ref string) (*models.Booking, error) {
	return m.findByReferenceFn(ctx, ref)
}
func (m *mockBookingRepo) FindByReferenceForUpdate(ctx context.Context, tx *gorm.DB, ref string) (*models.Booking, error) {
	return m.findForUpdateFn(ctx, ref)
}
func (m *mockBookingRepo) FindByServiceID(ctx context.Context, serviceID string, status *models.BookingStatus) ([]models.Booking, error) {
	return m.findByServiceIDFn(ctx, serviceID, status)
}
func (m *mockBookingRepo) CountActiveOn(ctx context.Context, tx *gorm.DB, serviceID string, day time.Time) (int64, error) {
	return m.countActiveOnFn(ctx, serviceID, day)
}
func (m *mockBookingRepo) CountActiveByDay(ctx context.Context, serviceID string, from, to time.Time) ([]repository.DayCount, error) {
	return m.countActiveByDayFn(ctx, serviceID, from, to)
}
func (m *mockBookingRepo) LockDay(ctx context.Context, tx *gorm.DB, day time.Time) error {
	return nil
}
func (m *mockBookingRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.BookingStatus) error {
	return m.updateStatusFn(ctx, bookingID, status)
}
func (m *mockBookingRepo) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
func (m *mockBookingRepo) GetDB() *gorm.DB {
	return nil
}

// --- Mock ServiceRepository ---

type mockServiceRepo struct {
	findByIDForUpdateFn func(ctx context.Context, id string) (*models.ServiceRecord, error)
	countFn             func(ctx context.Context) (int64, error)
	upsertFn            func(ctx context.Context, services []models.Service) error
}

func (m *mockServiceRepo) FindAll(ctx context.Context) ([]models.ServiceRecord, error) {
	return nil, nil
}
func (m *mockServiceRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.ServiceRecord, error) {
	if m.findByIDForUpdateFn == nil {
		return &models.ServiceRecord{ID: id}, nil
	}
	return m.findByIDForUpdateFn(ctx, id)
}
func (m *mockServiceRepo) FetchServices(ctx context.Context) ([]catalog.RawService, error) {
	return nil, nil
}
func (m *mockServiceRepo) Count(ctx context.Context) (int64, error) {
	return m.countFn(ctx)
}
func (m *mockServiceRepo) Upsert(ctx context.Context, services []models.Service) error {
	return m.upsertFn(ctx, services)
}

// --- Mock publisher / notifier ---

type published struct {
	key     string
	payload any
}

type mockPublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (m *mockPublisher) Publish(routingKey string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, published{key: routingKey, payload: payload})
	return nil
}

type chanNotifier chan notify.Confirmation

func (c chanNotifier) BookingConfirmed(ctx context.Context, conf notify.Confirmation) error {
	c <- conf
	return nil
}
