package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	Reference       string              `gorm:"uniqueIndex;type:varchar(36);not null" json:"reference"`
	ServiceID       string              `gorm:"not null;index;type:varchar(64)" json:"service_id"`
	EventDate       time.Time           `gorm:"type:date;not null;index" json:"event_date"`
	GuestCount      int                 `gorm:"not null" json:"guest_count"`
	AdditionalHours int                 `gorm:"not null;default:0" json:"additional_hours"`
	FirstName       string              `gorm:"not null" json:"first_name"`
	LastName        string              `gorm:"not null" json:"last_name"`
	Email           string              `gorm:"not null" json:"email"`
	Phone           string              `gorm:"not null" json:"phone"`
	StreetAddress   string              `json:"street_address,omitempty"`
	City            string              `json:"city,omitempty"`
	PostalCode      string              `json:"postal_code,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	BasePrice       decimal.Decimal     `gorm:"type:numeric;not null" json:"base_price"`
	HoursSurcharge  decimal.Decimal     `gorm:"type:numeric;not null" json:"hours_surcharge"`
	AddOnsTotal     decimal.Decimal     `gorm:"type:numeric;not null" json:"add_ons_total"`
	Tax             decimal.NullDecimal `gorm:"type:numeric" json:"tax"`
	TotalPrice      decimal.Decimal     `gorm:"type:numeric;not null" json:"total_price"`
	Status          BookingStatus       `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`

	AddOns []BookingAddOn `gorm:"foreignKey:BookingID" json:"add_ons,omitempty"`
}

// BookingAddOn keeps the add-on name and price as they were at submission.
type BookingAddOn struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	BookingID uint            `gorm:"not null;index" json:"-"`
	AddOnID   string          `gorm:"not null;type:varchar(64)" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
}

// Day returns the event date as a calendar day.
func (b Booking) Day() civil.Date {
	return civil.DateOf(b.EventDate)
}

func (b Booking) Event(at time.Time) BookingEvent {
	return BookingEvent{
		Reference:  b.Reference,
		ServiceID:  b.ServiceID,
		EventDate:  b.Day(),
		Status:     b.Status,
		GuestCount: b.GuestCount,
		TotalPrice: b.TotalPrice,
		OccurredAt: at,
	}
}
