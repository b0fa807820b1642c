package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const (
	defaultServiceName       = "Unnamed Service"
	defaultMinGuests         = 1
	defaultMaxGuests         = 100
	defaultMaxBookingsPerDay = 1
)

var ErrInvalidService = errors.New("invalid service")

// maxCount bounds guest counts and daily limits.
var maxCount = decimal.NewFromInt(math.MaxInt32)

// Normalize converts a raw entry into a strictly typed Service.
func Normalize(raw RawService) (models.Service, error) {
	id := strings.TrimSpace(cast.ToString(raw.ID))
	if id == "" {
		return models.Service{}, fmt.Errorf("%w: missing id", ErrInvalidService)
	}
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w %q: %s", ErrInvalidService, id, fmt.Sprintf(format, args...))
	}

	price := raw.BasePrice
	if isBlank(price) {
		price = raw.Price
	}
	basePrice, err := toDecimal(price)
	if err != nil {
		return models.Service{}, invalid("base price: %v", err)
	}
	if basePrice.IsNegative() {
		return models.Service{}, invalid("base price is negative")
	}

	minGuests, err := toInt(raw.MinGuests, defaultMinGuests)
	if err != nil {
		return models.Service{}, invalid("min guests: %v", err)
	}
	maxGuests, err := toInt(raw.MaxGuests, defaultMaxGuests)
	if err != nil {
		return models.Service{}, invalid("max guests: %v", err)
	}
	if minGuests < 1 || maxGuests < minGuests {
		return models.Service{}, invalid("guest bounds [%d, %d]", minGuests, maxGuests)
	}
	minHours, err := toInt(raw.MinHours, 0)
	if err != nil || minHours < 0 {
		return models.Service{}, invalid("min hours: %v", raw.MinHours)
	}
	duration := raw.DurationMinutes
	if isBlank(duration) {
		duration = raw.Duration
	}
	durationMinutes, err := toInt(duration, 0)
	if err != nil || durationMinutes < 0 {
		return models.Service{}, invalid("duration: %v", duration)
	}
	perDay, err := toInt(raw.MaxBookingsPerDay, defaultMaxBookingsPerDay)
	if err != nil || perDay < 1 {
		return models.Service{}, invalid("max bookings per day: %v", raw.MaxBookingsPerDay)
	}

	name := strings.TrimSpace(cast.ToString(raw.Name))
	if name == "" {
		name = defaultServiceName
	}

	svc := models.Service{
		ID:                id,
		Name:              name,
		Description:       cast.ToString(raw.Description),
		Category:          cast.ToString(raw.Category),
		Image:             cast.ToString(raw.Image),
		BasePrice:         basePrice,
		MinGuests:         minGuests,
		MaxGuests:         maxGuests,
		MinHours:          minHours,
		DurationMinutes:   durationMinutes,
		MaxBookingsPerDay: perDay,
		AddOns:            make([]models.AddOn, 0, len(raw.AddOns)),
	}

	seen := make(map[string]struct{}, len(raw.AddOns))
	for _, ra := range raw.AddOns {
		a, err := normalizeAddOn(id, ra)
		if err != nil {
			return models.Service{}, invalid("%v", err)
		}
		if _, dup := seen[a.ID]; dup {
			return models.Service{}, invalid("duplicate add-on %q", a.ID)
		}
		seen[a.ID] = struct{}{}
		svc.AddOns = append(svc.AddOns, a)
	}
	return svc, nil
}

func normalizeAddOn(serviceID string, raw RawAddOn) (models.AddOn, error) {
	id := strings.TrimSpace(cast.ToString(raw.ID))
	if id == "" {
		return models.AddOn{}, errors.New("add-on without id")
	}
	if owner := strings.TrimSpace(cast.ToString(raw.ServiceID)); owner != "" && owner != serviceID {
		return models.AddOn{}, fmt.Errorf("add-on %q belongs to service %q", id, owner)
	}
	price, err := toDecimal(raw.Price)
	if err != nil {
		return models.AddOn{}, fmt.Errorf("add-on %q price: %w", id, err)
	}
	if price.IsNegative() {
		return models.AddOn{}, fmt.Errorf("add-on %q price is negative", id)
	}
	return models.AddOn{
		ID:          id,
		ServiceID:   serviceID,
		Name:        cast.ToString(raw.Name),
		Description: cast.ToString(raw.Description),
		Price:       price,
	}, nil
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func toDecimal(v any) (decimal.Decimal, error) {
	if isBlank(v) {
		return decimal.Zero, nil
	}
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case json.Number:
		return decimal.NewFromString(t.String())
	case float64:
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}

// toInt accepts whole numbers in any representation ("20", 20, "20.0").
// Zero counts as missing, matching how sources leave fields unset.
func toInt(v any, fallback int) (int, error) {
	if isBlank(v) {
		return fallback, nil
	}
	d, err := toDecimal(v)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%v is not a whole number", v)
	}
	if d.Abs().GreaterThan(maxCount) {
		return 0, fmt.Errorf("%v is out of range", v)
	}
	n := int(d.IntPart())
	if n == 0 {
		return fallback, nil
	}
	return n, nil
}
