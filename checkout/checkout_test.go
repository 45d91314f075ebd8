package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creastat/shophub"
)

type fakeAPI struct {
	mu          sync.Mutex
	summary     *shophub.CheckoutSummary
	summaryErr  error
	order       *shophub.OrderConfirmation
	processErr  error
	summaryHits int
	processHits int
	lastRequest shophub.CheckoutRequest
}

func (f *fakeAPI) Summary(ctx context.Context) (*shophub.CheckoutSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryHits++
	return f.summary, f.summaryErr
}

func (f *fakeAPI) Process(ctx context.Context, req shophub.CheckoutRequest) (*shophub.OrderConfirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processHits++
	f.lastRequest = req
	return f.order, f.processErr
}

type fakeCart struct {
	cart      *shophub.Cart
	err       string
	refreshed int
	onRefresh func(*fakeCart)
}

func (c *fakeCart) Snapshot() *shophub.Cart { return c.cart }

func (c *fakeCart) Err() string { return c.err }

func (c *fakeCart) Refresh(ctx context.Context) {
	c.refreshed++
	if c.onRefresh != nil {
		c.onRefresh(c)
	}
}

type userMessageErr struct{ msg string }

func (e *userMessageErr) Error() string       { return "status 400: " + e.msg }
func (e *userMessageErr) UserMessage() string { return e.msg }

func validForm() Form {
	return Form{
		Email:           "a@b.co",
		Phone:           "5551234567",
		ShippingAddress: "123 Main Street",
		City:            "Springfield",
		State:           "IL",
		ZipCode:         "62701",
		PaymentMethod:   shophub.PaymentCreditCard,
	}
}

func cartWith(total float64, count int) *shophub.Cart {
	return &shophub.Cart{SessionID: "s1", Total: total, ItemCount: count}
}

func TestValidateRequest(t *testing.T) {
	valid := shophub.CheckoutRequest{
		Email:           "a@b.co",
		Phone:           "5551234567",
		ShippingAddress: "123 Main Street, Springfield",
		PaymentMethod:   shophub.PaymentPayPal,
	}
	require.NoError(t, ValidateRequest(valid))

	t.Run("invalid email", func(t *testing.T) {
		req := valid
		req.Email = "not-an-email"
		err := ValidateRequest(req)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Errors, 1)
		assert.Equal(t, "email", verr.Errors[0].Field)
		assert.Equal(t, "Valid email is required", verr.Errors[0].Message)
	})

	t.Run("short phone and address", func(t *testing.T) {
		req := valid
		req.Phone = "12345"
		req.ShippingAddress = "short"
		err := ValidateRequest(req)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		fields := verr.Fields()
		assert.Equal(t, "Valid phone number is required (minimum 10 digits)", fields["phone"])
		assert.Equal(t, "Valid shipping address is required (minimum 10 characters)", fields["shipping_address"])
	})

	t.Run("padded address is trimmed", func(t *testing.T) {
		req := valid
		req.ShippingAddress = "   abc      "
		err := ValidateRequest(req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "shipping address")
	})

	t.Run("unknown payment method", func(t *testing.T) {
		req := valid
		req.PaymentMethod = "bitcoin"
		err := ValidateRequest(req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "credit_card, paypal, apple_pay, google_pay")
	})

	t.Run("missing payment method", func(t *testing.T) {
		req := valid
		req.PaymentMethod = ""
		err := ValidateRequest(req)
		require.Error(t, err)
		assert.Equal(t, "Payment method is required", err.Error())
	})
}

func TestValidateForm(t *testing.T) {
	assert.Empty(t, ValidateForm(validForm()))

	tests := []struct {
		name    string
		mutate  func(*Form)
		field   string
		message string
	}{
		{"blank email", func(f *Form) { f.Email = "  " }, "email", "Email is required"},
		{"bad email", func(f *Form) { f.Email = "nope@" }, "email", "Invalid email address"},
		{"blank phone", func(f *Form) { f.Phone = "" }, "phone", "Phone number is required"},
		{"short address", func(f *Form) { f.ShippingAddress = "1 Main" }, "shipping_address", "Address must be at least 10 characters"},
		{"blank city", func(f *Form) { f.City = "" }, "city", "City is required"},
		{"blank state", func(f *Form) { f.State = "" }, "state", "State is required"},
		{"blank zip", func(f *Form) { f.ZipCode = "" }, "zip_code", "ZIP code is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			errs := ValidateForm(f)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.message, errs[tt.field])
		})
	}
}

func TestFormRequest(t *testing.T) {
	req := validForm().Request()
	assert.Equal(t, "123 Main Street, Springfield, IL 62701", req.ShippingAddress)
	assert.Equal(t, "a@b.co", req.Email)
	assert.Equal(t, shophub.PaymentCreditCard, req.PaymentMethod)
	require.NoError(t, ValidateRequest(req))
}

func TestFlowEnterEmptyCartRedirects(t *testing.T) {
	api := &fakeAPI{}
	cart := &fakeCart{onRefresh: func(c *fakeCart) { c.cart = cartWith(0, 0) }}
	flow := NewFlow(api, cart, zerolog.Nop())

	redirect, err := flow.Enter(context.Background())
	assert.ErrorIs(t, err, shophub.ErrEmptyCart)
	assert.Equal(t, CartRoute, redirect)
	assert.Equal(t, 1, cart.refreshed)
	assert.Zero(t, api.summaryHits)
}

func TestFlowEnterCartLoadFailureSetsBanner(t *testing.T) {
	api := &fakeAPI{}
	cart := &fakeCart{onRefresh: func(c *fakeCart) { c.err = "Failed to fetch cart" }}
	flow := NewFlow(api, cart, zerolog.Nop())

	redirect, err := flow.Enter(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, shophub.ErrEmptyCart)
	assert.Empty(t, redirect)
	assert.Equal(t, "Failed to fetch cart", flow.Banner())
	assert.Zero(t, api.summaryHits)
}

func TestFlowEnterLoadsSummary(t *testing.T) {
	api := &fakeAPI{summary: &shophub.CheckoutSummary{Subtotal: 40, Shipping: 5.99, Tax: 3.2, Total: 49.19, ItemCount: 1}}
	cart := &fakeCart{cart: cartWith(40, 1)}
	flow := NewFlow(api, cart, zerolog.Nop())

	redirect, err := flow.Enter(context.Background())
	require.NoError(t, err)
	assert.Empty(t, redirect)
	assert.Zero(t, cart.refreshed)
	assert.Equal(t, 1, api.summaryHits)
	assert.InDelta(t, 49.19, flow.Summary().Total, 0.001)

	preview := flow.Preview()
	assert.InDelta(t, 49.19, preview.Total(), 0.001)
}

func TestFlowEnterSummaryError(t *testing.T) {
	api := &fakeAPI{summaryErr: &userMessageErr{msg: "Cart is empty"}}
	flow := NewFlow(api, &fakeCart{cart: cartWith(10, 1)}, zerolog.Nop())

	_, err := flow.Enter(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Cart is empty", flow.Banner())
}

func TestFlowSubmitInvalidEmailSkipsNetwork(t *testing.T) {
	api := &fakeAPI{}
	flow := NewFlow(api, &fakeCart{cart: cartWith(40, 1)}, zerolog.Nop())

	var states []State
	flow.Subscribe(func(s State) { states = append(states, s) })

	f := validForm()
	f.Email = "bad-email"
	order, err := flow.Submit(context.Background(), f)
	require.Error(t, err)
	assert.Nil(t, order)

	errs := flow.FieldErrors()
	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid email address", errs["email"])
	assert.Zero(t, api.processHits)
	assert.Equal(t, StateCollecting, flow.State())
	assert.Equal(t, []State{StateValidating, StateCollecting}, states)
}

func TestFlowSubmitSuccess(t *testing.T) {
	api := &fakeAPI{order: &shophub.OrderConfirmation{OrderID: "ORDERABC123", Total: 49.19, Status: "confirmed"}}
	cart := &fakeCart{
		cart:      cartWith(40, 1),
		onRefresh: func(c *fakeCart) { c.cart = cartWith(0, 0) },
	}
	flow := NewFlow(api, cart, zerolog.Nop())

	var states []State
	flow.Subscribe(func(s State) { states = append(states, s) })

	order, err := flow.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, "ORDERABC123", order.OrderID)
	assert.Equal(t, order, flow.Order())
	assert.Equal(t, StateSucceeded, flow.State())
	assert.Equal(t, []State{StateValidating, StateSubmitting, StateSucceeded}, states)
	assert.Equal(t, 1, api.processHits)
	assert.Equal(t, "123 Main Street, Springfield, IL 62701", api.lastRequest.ShippingAddress)
	assert.Equal(t, 1, cart.refreshed)
	assert.True(t, cart.Snapshot().IsEmpty())
}

func TestFlowSubmitServerError(t *testing.T) {
	api := &fakeAPI{processErr: &userMessageErr{msg: "Cart is empty"}}
	cart := &fakeCart{cart: cartWith(40, 1)}
	flow := NewFlow(api, cart, zerolog.Nop())

	var states []State
	flow.Subscribe(func(s State) { states = append(states, s) })

	_, err := flow.Submit(context.Background(), validForm())
	require.Error(t, err)
	assert.Equal(t, "Cart is empty", flow.Banner())
	assert.Equal(t, StateCollecting, flow.State())
	assert.Equal(t, []State{StateValidating, StateSubmitting, StateFailed, StateCollecting}, states)
	assert.Zero(t, cart.refreshed)
}

func TestFlowSubmitGenericErrorFallback(t *testing.T) {
	api := &fakeAPI{processErr: errors.New("dial tcp: connection refused")}
	flow := NewFlow(api, &fakeCart{cart: cartWith(40, 1)}, zerolog.Nop())

	_, err := flow.Submit(context.Background(), validForm())
	require.Error(t, err)
	assert.Equal(t, "Failed to process checkout", flow.Banner())
}

func TestFlowReset(t *testing.T) {
	api := &fakeAPI{order: &shophub.OrderConfirmation{OrderID: "ORDER1"}}
	flow := NewFlow(api, &fakeCart{cart: cartWith(40, 1)}, zerolog.Nop())

	_, err := flow.Submit(context.Background(), validForm())
	require.NoError(t, err)

	flow.Reset()
	assert.Nil(t, flow.Order())
	assert.Empty(t, flow.Banner())
	assert.Equal(t, StateCollecting, flow.State())
}
