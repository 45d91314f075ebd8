package checkout

import (
	"errors"
	"fmt"

	"github.com/creastat/shophub"
)

// Form is the data collected on the checkout page.
type Form struct {
	Email           string `json:"email" validate:"notblank,shopemail"`
	Phone           string `json:"phone" validate:"notblank"`
	ShippingAddress string `json:"shipping_address" validate:"minlen=10"`
	City            string `json:"city" validate:"notblank"`
	State           string `json:"state" validate:"notblank"`
	ZipCode         string `json:"zip_code" validate:"notblank"`
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=credit_card paypal apple_pay google_pay"`
}

var formMessages = map[string]map[string]string{
	"email": {
		"notblank":  "Email is required",
		"shopemail": "Invalid email address",
	},
	"phone":            {"notblank": "Phone number is required"},
	"shipping_address": {"minlen": "Address must be at least 10 characters"},
	"city":             {"notblank": "City is required"},
	"state":            {"notblank": "State is required"},
	"zip_code":         {"notblank": "ZIP code is required"},
	"payment_method": {
		"required": "Payment method is required",
		"oneof":    "Payment method is not supported",
	},
}

// ValidateForm validates the page form and returns at most one inline
// error per field. An empty map means the form is valid.
func ValidateForm(f Form) FieldErrors {
	err := getValidator().Struct(f)
	if err == nil {
		return FieldErrors{}
	}

	err = translate(err, func(field, tag, _ string) string {
		return formMessages[field][tag]
	})

	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields()
	}
	return FieldErrors{"form": err.Error()}
}

// Request builds the API request, folding city, state and ZIP into the
// shipping address.
func (f Form) Request() shophub.CheckoutRequest {
	return shophub.CheckoutRequest{
		Email:           f.Email,
		Phone:           f.Phone,
		ShippingAddress: fmt.Sprintf("%s, %s, %s %s", f.ShippingAddress, f.City, f.State, f.ZipCode),
		PaymentMethod:   f.PaymentMethod,
	}
}
