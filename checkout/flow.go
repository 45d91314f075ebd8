package checkout

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/creastat/shophub"
)

// State is a step of the checkout page.
type State string

const (
	StateCollecting State = "collecting-input"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// CartRoute is where an empty cart is sent instead of the checkout form.
const CartRoute = "/cart"

// API is the subset of the checkout API module the flow needs.
type API interface {
	Summary(ctx context.Context) (*shophub.CheckoutSummary, error)
	Process(ctx context.Context, req shophub.CheckoutRequest) (*shophub.OrderConfirmation, error)
}

// CartView is the subset of the cart container the flow needs.
type CartView interface {
	Snapshot() *shophub.Cart
	Refresh(ctx context.Context)
	Err() string
}

// Flow drives the checkout page:
// collecting-input -> validating -> submitting -> succeeded | failed (-> collecting-input).
type Flow struct {
	api  API
	cart CartView
	log  zerolog.Logger

	mu          sync.Mutex
	state       State
	summary     *shophub.CheckoutSummary
	fieldErrors FieldErrors
	banner      string
	order       *shophub.OrderConfirmation
	observers   []func(State)
}

// NewFlow creates a checkout flow in the collecting-input state.
func NewFlow(api API, cart CartView, log zerolog.Logger) *Flow {
	return &Flow{
		api:         api,
		cart:        cart,
		log:         log,
		state:       StateCollecting,
		fieldErrors: FieldErrors{},
	}
}

// Subscribe registers fn to be called on every state transition.
func (f *Flow) Subscribe(fn func(State)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, fn)
}

// Enter runs the entry guard and loads the checkout summary once.
// An empty cart returns CartRoute and shophub.ErrEmptyCart before any form
// is shown. A cart that could not be loaded sets the banner instead.
func (f *Flow) Enter(ctx context.Context) (redirect string, err error) {
	if f.cart.Snapshot() == nil {
		f.cart.Refresh(ctx)
		if f.cart.Snapshot() == nil {
			if msg := f.cart.Err(); msg != "" {
				f.mu.Lock()
				f.banner = msg
				f.mu.Unlock()
				return "", errors.New(msg)
			}
		}
	}
	if f.cart.Snapshot().IsEmpty() {
		return CartRoute, shophub.ErrEmptyCart
	}

	summary, err := f.api.Summary(ctx)
	if err != nil {
		f.mu.Lock()
		f.banner = shophub.DisplayMessage(err, "Failed to fetch checkout summary")
		f.mu.Unlock()
		return "", err
	}

	f.mu.Lock()
	f.summary = summary
	f.banner = ""
	f.mu.Unlock()
	return "", nil
}

// Submit validates the form locally and, when valid, places the order.
// Invalid input never reaches the network.
func (f *Flow) Submit(ctx context.Context, form Form) (*shophub.OrderConfirmation, error) {
	f.transition(StateValidating)

	if errs := ValidateForm(form); len(errs) > 0 {
		f.mu.Lock()
		f.fieldErrors = errs
		f.mu.Unlock()
		f.transition(StateCollecting)
		return nil, fieldErrorsToError(errs)
	}

	f.mu.Lock()
	f.fieldErrors = FieldErrors{}
	f.banner = ""
	f.mu.Unlock()
	f.transition(StateSubmitting)

	order, err := f.api.Process(ctx, form.Request())
	if err != nil {
		msg := err.Error()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			msg = shophub.DisplayMessage(err, "Failed to process checkout")
		}
		f.log.Error().Err(err).Msg("checkout failed")

		f.mu.Lock()
		f.banner = msg
		f.mu.Unlock()
		f.transition(StateFailed)
		f.transition(StateCollecting)
		return nil, err
	}

	f.mu.Lock()
	f.order = order
	f.mu.Unlock()
	f.transition(StateSucceeded)

	f.log.Info().Str("order_id", order.OrderID).Float64("total", order.Total).Msg("order placed")

	// The server empties the cart after placing the order.
	f.cart.Refresh(ctx)
	return order, nil
}

// Preview returns a display-only price estimate computed from the loaded
// cart. The authoritative figures come from Summary.
func (f *Flow) Preview() shophub.Breakdown {
	cart := f.cart.Snapshot()
	if cart == nil {
		return shophub.Breakdown{}
	}
	return shophub.Quote(cart.Total)
}

// Reset returns the flow to its initial state.
func (f *Flow) Reset() {
	f.mu.Lock()
	f.summary = nil
	f.order = nil
	f.banner = ""
	f.fieldErrors = FieldErrors{}
	f.mu.Unlock()
	f.transition(StateCollecting)
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Summary returns the summary loaded by Enter.
func (f *Flow) Summary() *shophub.CheckoutSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summary
}

// FieldErrors returns the inline errors of the last submission.
func (f *Flow) FieldErrors() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(FieldErrors, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		out[k] = v
	}
	return out
}

// Banner returns the page-level error message, if any.
func (f *Flow) Banner() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banner
}

// Order returns the confirmation once the flow has succeeded.
func (f *Flow) Order() *shophub.OrderConfirmation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.order
}

func (f *Flow) transition(to State) {
	f.mu.Lock()
	f.state = to
	observers := slices.Clone(f.observers)
	f.mu.Unlock()

	for _, fn := range observers {
		fn(to)
	}
}

func fieldErrorsToError(errs FieldErrors) error {
	out := &ValidationError{}
	for _, field := range []string{"email", "phone", "shipping_address", "city", "state", "zip_code", "payment_method"} {
		if msg, ok := errs[field]; ok {
			out.Errors = append(out.Errors, FieldError{Field: field, Message: msg})
		}
	}
	return out
}
