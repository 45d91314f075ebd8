package shophub

import "time"

// Product is a read-only catalog entry.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      *Rating `json:"rating,omitempty"`
}

// Rating is the optional review aggregate attached to a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// ProductSearchResponse is returned by the text search endpoint.
type ProductSearchResponse struct {
	Query   string    `json:"query"`
	Results []Product `json:"results"`
	Count   int       `json:"count"`
}

// CartItem is a single line of a cart as computed by the server.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
	Image     string  `json:"image"`
}

// Cart is the server-authoritative cart snapshot for one session.
// Total and ItemCount are always computed by the server.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"item_count"`
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return c == nil || c.ItemCount == 0
}

// AddToCartRequest is the body of POST /cart/add and PUT /cart/update.
type AddToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartResponse wraps the cart returned after every mutation.
type CartResponse struct {
	Message string `json:"message"`
	Cart    Cart   `json:"cart"`
}

// CheckoutSummary holds the server-computed totals for the current cart.
type CheckoutSummary struct {
	Items     []CartItem `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	Shipping  float64    `json:"shipping"`
	Tax       float64    `json:"tax"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"item_count"`
}

// Payment methods accepted at checkout.
const (
	PaymentCreditCard = "credit_card"
	PaymentPayPal     = "paypal"
	PaymentApplePay   = "apple_pay"
	PaymentGooglePay  = "google_pay"
)

// PaymentMethods lists every accepted payment method.
var PaymentMethods = []string{PaymentCreditCard, PaymentPayPal, PaymentApplePay, PaymentGooglePay}

// CheckoutRequest is the body of the place-order call.
type CheckoutRequest struct {
	Email           string `json:"email" validate:"required,shopemail"`
	Phone           string `json:"phone" validate:"minlen=10"`
	ShippingAddress string `json:"shipping_address" validate:"minlen=10"`
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=credit_card paypal apple_pay google_pay"`
}

// OrderConfirmation is returned once an order has been placed.
type OrderConfirmation struct {
	OrderID           string     `json:"order_id"`
	Total             float64    `json:"total"`
	Status            string     `json:"status"`
	Message           string     `json:"message"`
	EstimatedDelivery string     `json:"estimated_delivery"`
	Items             []CartItem `json:"items,omitempty"`
}

// ChatRequest is the body of POST /chatbot/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Response string         `json:"response"`
	Intent   string         `json:"intent"`
	Action   Action         `json:"action,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Action is a UI side effect requested by the assistant.
type Action string

const (
	ActionShowCart           Action = "show_cart"
	ActionRedirectToCheckout Action = "redirect_to_checkout"
	ActionShowCheckoutButton Action = "show_checkout_button"
)

// AffectsCart reports whether the client must refresh its cart after
// receiving this action.
func (a Action) AffectsCart() bool {
	switch a {
	case ActionShowCart, ActionRedirectToCheckout, ActionShowCheckoutButton:
		return true
	}
	return false
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single conversation turn.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Intent    string    `json:"intent,omitempty"`
	Action    Action    `json:"action,omitempty"`
}

// APIErrorBody is the error payload written by the server.
type APIErrorBody struct {
	Detail string `json:"detail"`
}
