package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DayCount is the number of active bookings on one day.
type DayCount struct {
	Day   time.Time
	Count int64
}

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByReference(ctx context.Context, tx *gorm.DB, ref string) (*models.Booking, error)
	FindByReferenceForUpdate(ctx context.Context, tx *gorm.DB, ref string) (*models.Booking, error)
	FindByServiceID(ctx context.Context, serviceID string, status *models.BookingStatus) ([]models.Booking, error)
	CountActiveOn(ctx context.Context, tx *gorm.DB, serviceID string, day time.Time) (int64, error)
	CountActiveByDay(ctx context.Context, serviceID string, from, to time.Time) ([]DayCount, error)
	LockDay(ctx context.Context, tx *gorm.DB, day time.Time) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.BookingStatus) error
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

// FindByReference reads through tx when given, otherwise the pool.
func (r *bookingRepository) FindByReference(ctx context.Context, tx *gorm.DB, ref string) (*models.Booking, error) {
	if tx == nil {
		tx = r.db
	}
	var booking models.Booking
	if err := tx.WithContext(ctx).
		Preload("AddOns").
		Where("reference = ?", ref).
		First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByReferenceForUpdate locks the booking row until tx ends, so status
// changes to one booking are serialised.
func (r *bookingRepository) FindByReferenceForUpdate(ctx context.Context, tx *gorm.DB, ref string) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reference = ?", ref).
		First(&booking).Error; err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).
		Where("booking_id = ?", booking.ID).
		Order("id ASC").
		Find(&booking.AddOns).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByServiceID lists bookings, optionally filtered. An empty serviceID
// lists every service.
func (r *bookingRepository) FindByServiceID(ctx context.Context, serviceID string, status *models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).Preload("AddOns")
	if serviceID != "" {
		q = q.Where("service_id = ?", serviceID)
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("event_date ASC, id ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// CountActiveOn counts non-cancelled bookings on day. An empty serviceID
// counts across the venue.
func (r *bookingRepository) CountActiveOn(ctx context.Context, tx *gorm.DB, serviceID string, day time.Time) (int64, error) {
	var count int64
	q := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("event_date = ? AND status <> ?", day, models.StatusCancelled)
	if serviceID != "" {
		q = q.Where("service_id = ?", serviceID)
	}
	err := q.Count(&count).Error
	return count, err
}

// CountActiveByDay groups non-cancelled bookings in [from, to] by day.
func (r *bookingRepository) CountActiveByDay(ctx context.Context, serviceID string, from, to time.Time) ([]DayCount, error) {
	var rows []DayCount
	q := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("event_date AS day, COUNT(*) AS count").
		Where("event_date BETWEEN ? AND ? AND status <> ?", from, to, models.StatusCancelled)
	if serviceID != "" {
		q = q.Where("service_id = ?", serviceID)
	}
	if err := q.Group("event_date").Order("event_date ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LockDay takes a transaction-scoped advisory lock for the day so venue-wide
// capacity checks across services serialise.
func (r *bookingRepository) LockDay(ctx context.Context, tx *gorm.DB, day time.Time) error {
	key := int64(day.Year()*10000 + int(day.Month())*100 + day.Day())
	return tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", key).Error
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.BookingStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status).Error
}
