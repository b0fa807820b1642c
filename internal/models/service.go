package models

import "github.com/shopspring/decimal"

// Service is a bookable event service after catalog ingestion. Values are
// never mutated once the catalog has been loaded.
type Service struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          string          `json:"category,omitempty"`
	Image             string          `json:"image,omitempty"`
	BasePrice         decimal.Decimal `json:"base_price"`
	MinGuests         int             `json:"min_guests"`
	MaxGuests         int             `json:"max_guests"`
	MinHours          int             `json:"min_hours"`
	DurationMinutes   int             `json:"duration_minutes"`
	MaxBookingsPerDay int             `json:"max_bookings_per_day"`
	AddOns            []AddOn         `json:"add_ons"`
}

type AddOn struct {
	ID          string          `json:"id"`
	ServiceID   string          `json:"service_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// AddOn returns the add-on with the given id if it belongs to s.
func (s Service) AddOn(id string) (AddOn, bool) {
	for _, a := range s.AddOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}

func (s Service) HasAddOn(id string) bool {
	_, ok := s.AddOn(id)
	return ok
}

// ClampGuests forces n into [MinGuests, MaxGuests].
func (s Service) ClampGuests(n int) int {
	if n < s.MinGuests {
		return s.MinGuests
	}
	if n > s.MaxGuests {
		return s.MaxGuests
	}
	return n
}

// Clone returns a copy whose add-on slice is not shared with s.
func (s Service) Clone() Service {
	out := s
	out.AddOns = make([]AddOn, len(s.AddOns))
	copy(out.AddOns, s.AddOns)
	return out
}
