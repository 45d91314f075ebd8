package shophub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		shipping float64
		tax      float64
		total    float64
	}{
		{name: "below free shipping", subtotal: 40.00, shipping: 5.99, tax: 3.20, total: 49.19},
		{name: "above free shipping", subtotal: 60.00, shipping: 0, tax: 4.80, total: 64.80},
		{name: "exactly at threshold", subtotal: 50.00, shipping: 0, tax: 4.00, total: 54.00},
		{name: "tax rounds to cent", subtotal: 10.99, shipping: 5.99, tax: 0.88, total: 17.86},
		{name: "float noise in subtotal", subtotal: 0.1 + 0.2, shipping: 5.99, tax: 0.02, total: 6.31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Quote(tt.subtotal)
			assert.Equal(t, tt.shipping, b.Shipping())
			assert.Equal(t, tt.tax, b.Tax())
			assert.Equal(t, tt.total, b.Total())
			assert.Equal(t, b.SubtotalCents+b.ShippingCents+b.TaxCents, b.TotalCents)
		})
	}
}

func TestActionAffectsCart(t *testing.T) {
	assert.True(t, ActionShowCart.AffectsCart())
	assert.True(t, ActionRedirectToCheckout.AffectsCart())
	assert.True(t, ActionShowCheckoutButton.AffectsCart())
	assert.False(t, Action("").AffectsCart())
	assert.False(t, Action("show_product").AffectsCart())
}

func TestCartIsEmpty(t *testing.T) {
	var nilCart *Cart
	assert.True(t, nilCart.IsEmpty())
	assert.True(t, (&Cart{}).IsEmpty())
	assert.False(t, (&Cart{ItemCount: 2}).IsEmpty())
}
