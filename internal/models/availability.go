package models

import "cloud.google.com/go/civil"

type AvailabilityRecord struct {
	Date           civil.Date `json:"date"`
	IsAvailable    bool       `json:"is_available"`
	SpotsRemaining int        `json:"spots_remaining"`
}

// Booked reports whether the day is explicitly closed for booking.
func (r AvailabilityRecord) Booked() bool {
	return !r.IsAvailable
}
