package models

import "github.com/shopspring/decimal"

// PriceBreakdown carries full precision amounts. Round only through Display.
type PriceBreakdown struct {
	BasePrice      decimal.Decimal     `json:"base_price"`
	HoursSurcharge decimal.Decimal     `json:"hours_surcharge"`
	AddOnsTotal    decimal.Decimal     `json:"add_ons_total"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	Tax            decimal.NullDecimal `json:"tax"`
	Total          decimal.Decimal     `json:"total"`
}

// DisplayBreakdown is a PriceBreakdown rounded half-up to cents.
type DisplayBreakdown struct {
	BasePrice      string  `json:"base_price"`
	HoursSurcharge string  `json:"hours_surcharge"`
	AddOnsTotal    string  `json:"add_ons_total"`
	Subtotal       string  `json:"subtotal"`
	Tax            *string `json:"tax,omitempty"`
	Total          string  `json:"total"`
}

func (p PriceBreakdown) Display() DisplayBreakdown {
	d := DisplayBreakdown{
		BasePrice:      FormatMoney(p.BasePrice),
		HoursSurcharge: FormatMoney(p.HoursSurcharge),
		AddOnsTotal:    FormatMoney(p.AddOnsTotal),
		Subtotal:       FormatMoney(p.Subtotal),
		Total:          FormatMoney(p.Total),
	}
	if p.Tax.Valid {
		tax := FormatMoney(p.Tax.Decimal)
		d.Tax = &tax
	}
	return d
}

// FormatMoney rounds half-up to two places. Amounts here are never negative,
// so decimal's half-away-from-zero rounding is half-up.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
