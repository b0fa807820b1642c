// Package pricing turns wizard inputs into a price breakdown.
//
// Guest count is accepted but never priced: per-guest rates are not part of
// the current product rules.
package pricing

import (
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultHourlyRate is charged for every hour beyond the service duration.
var DefaultHourlyRate = decimal.NewFromInt(50)

type Engine struct {
	hourlyRate decimal.Decimal
	taxRate    decimal.NullDecimal
}

type Option func(*Engine)

// WithHourlyRate overrides DefaultHourlyRate.
func WithHourlyRate(rate decimal.Decimal) Option {
	return func(e *Engine) { e.hourlyRate = rate }
}

// WithTaxRate enables the tax line. A zero rate still produces a tax line of 0.
func WithTaxRate(rate decimal.Decimal) Option {
	return func(e *Engine) { e.taxRate = decimal.NewNullDecimal(rate) }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{hourlyRate: DefaultHourlyRate}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) HourlyRate() decimal.Decimal {
	return e.hourlyRate
}

// Compute is deterministic and side-effect free. Add-on ids that do not
// belong to service are ignored, as are duplicates. The guest count is
// unpriced, see the package doc.
func (e *Engine) Compute(service models.Service, _ int, additionalHours int, addOnIDs []string) models.PriceBreakdown {
	if additionalHours < 0 {
		additionalHours = 0
	}
	surcharge := e.hourlyRate.Mul(decimal.NewFromInt(int64(additionalHours)))
	addOns := AddOnsTotal(service, addOnIDs)
	subtotal := service.BasePrice.Add(surcharge).Add(addOns)

	out := models.PriceBreakdown{
		BasePrice:      service.BasePrice,
		HoursSurcharge: surcharge,
		AddOnsTotal:    addOns,
		Subtotal:       subtotal,
		Total:          subtotal,
	}
	if e.taxRate.Valid {
		tax := subtotal.Mul(e.taxRate.Decimal)
		out.Tax = decimal.NewNullDecimal(tax)
		out.Total = subtotal.Add(tax)
	}
	return out
}

// AddOnsTotal sums the prices of the ids owned by service.
func AddOnsTotal(service models.Service, addOnIDs []string) decimal.Decimal {
	total := decimal.Zero
	seen := make(map[string]struct{}, len(addOnIDs))
	for _, id := range addOnIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if a, ok := service.AddOn(id); ok {
			total = total.Add(a.Price)
		}
	}
	return total
}

// SelectedAddOns resolves ids to add-on details in the service's catalog
// order, dropping ids the service does not own.
func SelectedAddOns(service models.Service, addOnIDs []string) []models.AddOn {
	want := make(map[string]struct{}, len(addOnIDs))
	for _, id := range addOnIDs {
		want[id] = struct{}{}
	}
	out := make([]models.AddOn, 0, len(want))
	for _, a := range service.AddOns {
		if _, ok := want[a.ID]; ok {
			out = append(out, a)
		}
	}
	return out
}
