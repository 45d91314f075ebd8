// Package checkout implements client-side checkout validation and the
// checkout page flow.
package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/creastat/shophub"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator with the checkout rules registered.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("shopemail", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		// minlen compares the trimmed length, so padding cannot satisfy it.
		_ = v.RegisterValidation("minlen", func(fl validator.FieldLevel) bool {
			n, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return len([]rune(strings.TrimSpace(fl.Field().String()))) >= n
		})

		validate = v
	})
	return validate
}

// FieldError is a single field-scoped validation failure.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every failed field. It is returned before any
// network call is made.
type ValidationError struct {
	Errors []FieldError
}

// Error joins all messages.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, ", ")
}

// Fields returns the errors keyed by field name.
func (e *ValidationError) Fields() FieldErrors {
	out := make(FieldErrors, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

// FieldErrors maps a form field to its inline error message.
type FieldErrors map[string]string

// requestMessages are the module-level messages for CheckoutRequest.
var requestMessages = map[string]string{
	"email":            "Valid email is required",
	"phone":            "Valid phone number is required (minimum 10 digits)",
	"shipping_address": "Valid shipping address is required (minimum 10 characters)",
	"payment_method":   "Payment method is required",
}

// ValidateRequest checks a checkout request before it is sent.
// It returns a *ValidationError listing every failure, or nil.
func ValidateRequest(req shophub.CheckoutRequest) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}
	return translate(err, func(field, tag, param string) string {
		if field == "payment_method" && tag == "oneof" {
			return fmt.Sprintf("Payment method must be one of %s", strings.Join(shophub.PaymentMethods, ", "))
		}
		return requestMessages[field]
	})
}

func translate(err error, message func(field, tag, param string) string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		msg := message(fe.Field(), fe.Tag(), fe.Param())
		if msg == "" {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		out.Errors = append(out.Errors, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
