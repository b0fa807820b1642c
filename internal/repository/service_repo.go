package repository

import (
	"context"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/catalog"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServiceRepository interface {
	FindAll(ctx context.Context) ([]models.ServiceRecord, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.ServiceRecord, error)
	FetchServices(ctx context.Context) ([]catalog.RawService, error)
	Count(ctx context.Context) (int64, error)
	Upsert(ctx context.Context, services []models.Service) error
}

type serviceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) FindAll(ctx context.Context) ([]models.ServiceRecord, error) {
	var records []models.ServiceRecord
	err := r.db.WithContext(ctx).
		Preload("AddOns", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindByIDForUpdate locks the service row so bookings for one service are
// serialised within the transaction.
func (r *serviceRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.ServiceRecord, error) {
	var record models.ServiceRecord
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FetchServices serves the table as a catalog source. Values are handed over
// raw so that normalisation still happens in one place.
func (r *serviceRepository) FetchServices(ctx context.Context) ([]catalog.RawService, error) {
	records, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]catalog.RawService, 0, len(records))
	for _, rec := range records {
		raw := catalog.RawService{
			ID:                rec.ID,
			Name:              rec.Name,
			Description:       rec.Description,
			Category:          rec.Category,
			Image:             rec.Image,
			BasePrice:         rec.BasePrice,
			MinGuests:         rec.MinGuests,
			MaxGuests:         rec.MaxGuests,
			MinHours:          rec.MinHours,
			DurationMinutes:   rec.DurationMinutes,
			MaxBookingsPerDay: rec.MaxBookingsPerDay,
			AddOns:            make([]catalog.RawAddOn, 0, len(rec.AddOns)),
		}
		for _, a := range rec.AddOns {
			raw.AddOns = append(raw.AddOns, catalog.RawAddOn{
				ID:          a.ID,
				ServiceID:   a.ServiceID,
				Name:        a.Name,
				Description: a.Description,
				Price:       a.Price,
			})
		}
		out = append(out, raw)
	}
	return out, nil
}

func (r *serviceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ServiceRecord{}).Count(&count).Error
	return count, err
}

// Upsert writes services and their add-ons, replacing existing rows.
func (r *serviceRepository) Upsert(ctx context.Context, services []models.Service) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, svc := range services {
			rec := toServiceRecord(svc)
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Omit("AddOns").Create(&rec).Error; err != nil {
				return err
			}
			if err := tx.Where("service_id = ?", svc.ID).Delete(&models.AddOnRecord{}).Error; err != nil {
				return err
			}
			if len(rec.AddOns) == 0 {
				continue
			}
			if err := tx.Create(&rec.AddOns).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func toServiceRecord(svc models.Service) models.ServiceRecord {
	rec := models.ServiceRecord{
		ID:                svc.ID,
		Name:              svc.Name,
		Description:       svc.Description,
		Category:          svc.Category,
		Image:             svc.Image,
		BasePrice:         svc.BasePrice,
		MinGuests:         svc.MinGuests,
		MaxGuests:         svc.MaxGuests,
		MinHours:          svc.MinHours,
		DurationMinutes:   svc.DurationMinutes,
		MaxBookingsPerDay: svc.MaxBookingsPerDay,
	}
	for i, a := range svc.AddOns {
		rec.AddOns = append(rec.AddOns, models.AddOnRecord{
			ID:          a.ID,
			ServiceID:   svc.ID,
			Name:        a.Name,
			Description: a.Description,
			Price:       a.Price,
			Position:    i,
		})
	}
	return rec
}
