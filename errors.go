package shophub

import "errors"

// Common errors shared by the client, the stores and the API server.
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
	ErrVersionConflict  = errors.New("cart version conflict")
	ErrNotFound         = errors.New("not found")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrMissingSession   = errors.New("missing session")
	ErrClosed           = errors.New("container closed")
)

// DisplayMessage returns the text shown to the user for err. Errors that
// carry a server-provided message expose it through UserMessage; every
// other error is shown as fallback.
func DisplayMessage(err error, fallback string) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
