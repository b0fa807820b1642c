package database

import (
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := Migrate(db); err != nil {
		log.Fatal("failed to auto-migrate", zap.Error(err))
	}
	return db
}

// Migrate creates the catalog and booking tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.ServiceRecord{},
		&models.AddOnRecord{},
		&models.Booking{},
		&models.BookingAddOn{},
	); err != nil {
		return err
	}

	// Capacity checks count active bookings per day.
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_active_day
		ON bookings (event_date, service_id)
		WHERE status <> 'cancelled'
	`).Error
}
