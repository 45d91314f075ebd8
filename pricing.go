package shophub

import "math"

// Pricing rules applied to every checkout summary.
const (
	FreeShippingThresholdCents int64 = 5000
	FlatShippingCents          int64 = 599
	TaxRatePercent             int64 = 8
)

// Breakdown is a priced cart subtotal, kept in integer cents.
type Breakdown struct {
	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64
}

// Subtotal returns the subtotal in currency units.
func (b Breakdown) Subtotal() float64 { return FromCents(b.SubtotalCents) }

// Shipping returns the shipping cost in currency units.
func (b Breakdown) Shipping() float64 { return FromCents(b.ShippingCents) }

// Tax returns the tax in currency units.
func (b Breakdown) Tax() float64 { return FromCents(b.TaxCents) }

// Total returns the grand total in currency units.
func (b Breakdown) Total() float64 { return FromCents(b.TotalCents) }

// Quote prices a subtotal: flat shipping below the free-shipping threshold,
// tax at TaxRatePercent rounded half away from zero to the cent.
func Quote(subtotal float64) Breakdown {
	sub := ToCents(subtotal)

	shipping := FlatShippingCents
	if sub >= FreeShippingThresholdCents {
		shipping = 0
	}
	if sub <= 0 {
		shipping = 0
	}

	tax := (sub*TaxRatePercent + 50) / 100

	return Breakdown{
		SubtotalCents: sub,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    sub + shipping + tax,
	}
}

// ToCents converts a currency amount to integer cents.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts integer cents to a currency amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
