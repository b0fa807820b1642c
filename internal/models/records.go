package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceRecord is the persisted form of a catalog entry.
type ServiceRecord struct {
	ID                string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name              string          `gorm:"not null" json:"name"`
	Description       string          `json:"description"`
	Category          string          `gorm:"type:varchar(64)" json:"category"`
	Image             string          `json:"image"`
	BasePrice         decimal.Decimal `gorm:"type:numeric;not null" json:"base_price"`
	MinGuests         int             `gorm:"not null;default:1" json:"min_guests"`
	MaxGuests         int             `gorm:"not null;default:100" json:"max_guests"`
	MinHours          int             `gorm:"not null;default:0" json:"min_hours"`
	DurationMinutes   int             `gorm:"not null;default:120" json:"duration_minutes"`
	MaxBookingsPerDay int             `gorm:"not null;default:1" json:"max_bookings_per_day"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	AddOns []AddOnRecord `gorm:"foreignKey:ServiceID" json:"add_ons,omitempty"`
}

func (ServiceRecord) TableName() string { return "services" }

type AddOnRecord struct {
	ID          string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ServiceID   string          `gorm:"not null;index;type:varchar(64)" json:"service_id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	Position    int             `gorm:"not null;default:0" json:"position"`
}

func (AddOnRecord) TableName() string { return "add_ons" }
