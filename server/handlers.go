package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/checkout"
	"github.com/creastat/shophub/metrics"
)

// deliveryDays is added to the order date for the delivery estimate.
const deliveryDays = 7

// ============================================================================
// System
// ============================================================================

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.log, http.StatusOK, map[string]string{
		"message": "Welcome to ShopHub E-commerce API!",
		"status":  "running",
		"docs":    "/docs",
		"version": Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var count uint64
	if s.deps.Documents != nil {
		n, err := s.deps.Documents.Count(r.Context())
		if err != nil {
			s.log.Error().Err(err).Msg("health check failed")
			writeJSON(w, s.log, http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "disconnected",
				"error":    err.Error(),
			})
			return
		}
		count = n
	}

	writeJSON(w, s.log, http.StatusOK, map[string]any{
		"status":          "healthy",
		"database":        "connected",
		"documents_count": count,
	})
}

// ============================================================================
// Products
// ============================================================================

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.deps.Catalog.All(r.Context())
	if err != nil {
		writeError(w, s.log, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.log, http.StatusOK, products)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, s.log, http.StatusBadRequest, fmt.Sprintf("Invalid product id %q", raw))
		return
	}

	product, err := s.deps.Catalog.ByID(r.Context(), id)
	if errors.Is(err, shophub.ErrNotFound) {
		writeError(w, s.log, http.StatusNotFound, fmt.Sprintf("Product %d not found", id))
		return
	}
	if err != nil {
		writeError(w, s.log, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.log, http.StatusOK, product)
}

func (s *Server) handleProductsByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := s.deps.Catalog.ByCategory(r.Context(), category)
	if errors.Is(err, shophub.ErrNotFound) {
		writeError(w, s.log, http.StatusNotFound, fmt.Sprintf("No products found in category '%s'", category))
		return
	}
	if err != nil {
		writeError(w, s.log, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.log, http.StatusOK, products)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.deps.Catalog.Categories(r.Context())
	if err != nil {
		writeError(w, s.log, http.StatusInternalServerError, err.Error())
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, s.log, http.StatusOK, categories)
}

func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")

	products, err := s.deps.Catalog.Search(r.Context(), query)
	if err != nil {
		writeError(w, s.log, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.log, http.StatusOK, shophub.ProductSearchResponse{
		Query:   query,
		Results: products,
		Count:   len(products),
	})
}

// ============================================================================
// Cart
// ============================================================================

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := s.deps.Carts.Get(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.cartError(w, "", err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, cart)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	req := shophub.AddToCartRequest{Quantity: 1}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, s.log, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, s.log, http.StatusBadRequest, "product_id is required")
		return
	}

	cart, err := s.deps.Carts.Add(r.Context(), sessionFrom(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		s.cartError(w, req.ProductID, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, shophub.CartResponse{Message: "Item added to cart", Cart: *cart})
}

func (s *Server) handleUpdateCart(w http.ResponseWriter, r *http.Request) {
	var req shophub.AddToCartRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, s.log, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, s.log, http.StatusBadRequest, "product_id is required")
		return
	}

	cart, err := s.deps.Carts.UpdateQuantity(r.Context(), sessionFrom(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		s.cartError(w, req.ProductID, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, shophub.CartResponse{Message: "Cart item updated", Cart: *cart})
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	cart, err := s.deps.Carts.Remove(r.Context(), sessionFrom(r.Context()), productID)
	if err != nil {
		s.cartError(w, productID, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, shophub.CartResponse{Message: "Item removed from cart", Cart: *cart})
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := s.deps.Carts.Clear(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.cartError(w, "", err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, shophub.CartResponse{Message: "Cart cleared", Cart: *cart})
}

func (s *Server) cartError(w http.ResponseWriter, productID string, err error) {
	switch {
	case errors.Is(err, shophub.ErrNotFound):
		writeError(w, s.log, http.StatusNotFound, fmt.Sprintf("Product %s not found", productID))
	case errors.Is(err, shophub.ErrInvalidQuantity):
		writeError(w, s.log, http.StatusBadRequest, "Quantity must be at least 1")
	default:
		s.log.Error().Err(err).Msg("cart operation failed")
		writeError(w, s.log, http.StatusInternalServerError, err.Error())
	}
}

// ============================================================================
// Checkout
// ============================================================================

func (s *Server) handleCheckoutSummary(w http.ResponseWriter, r *http.Request) {
	cart, err := s.deps.Carts.Get(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeError(w, s.log, http.StatusInternalServerError, "Checkout summary error: "+err.Error())
		return
	}
	if cart.IsEmpty() {
		writeError(w, s.log, http.StatusBadRequest, "Cart is empty")
		return
	}

	writeJSON(w, s.log, http.StatusOK, summaryOf(cart))
}

func (s *Server) handleProcessCheckout(w http.ResponseWriter, r *http.Request) {
	var req shophub.CheckoutRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, s.log, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := checkout.ValidateRequest(req); err != nil {
		writeError(w, s.log, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := sessionFrom(r.Context())
	cart, err := s.deps.Carts.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, s.log, http.StatusInternalServerError, "Checkout error: "+err.Error())
		return
	}
	if cart.IsEmpty() {
		writeError(w, s.log, http.StatusBadRequest, "Cart is empty")
		return
	}

	summary := summaryOf(cart)
	order := shophub.OrderConfirmation{
		OrderID:           orderID(sessionID),
		Total:             summary.Total,
		Status:            "Success",
		Message:           "Order placed successfully",
		EstimatedDelivery: s.now().AddDate(0, 0, deliveryDays).Format(time.DateOnly),
		Items:             cart.Items,
	}

	if _, err := s.deps.Carts.Clear(r.Context(), sessionID); err != nil {
		// The order is still reported as placed.
		s.log.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to clear cart after order")
	}

	metrics.OrdersPlaced.Inc()
	s.log.Info().
		Str("order_id", order.OrderID).
		Float64("total", order.Total).
		Str("payment_method", req.PaymentMethod).
		Msg("order placed")
	writeJSON(w, s.log, http.StatusOK, order)
}

func summaryOf(cart *shophub.Cart) shophub.CheckoutSummary {
	q := shophub.Quote(cart.Total)
	return shophub.CheckoutSummary{
		Items:     cart.Items,
		Subtotal:  q.Subtotal(),
		Shipping:  q.Shipping(),
		Tax:       q.Tax(),
		Total:     q.Total(),
		ItemCount: cart.ItemCount,
	}
}

// orderID derives the order number from the last six characters of the
// session id.
func orderID(sessionID string) string {
	tail := sessionID
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return "ORDER" + strings.ToUpper(tail)
}

// ============================================================================
// Chatbot
// ============================================================================

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req shophub.ChatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, s.log, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, s.log, http.StatusBadRequest, "Please provide a message")
		return
	}

	resp, err := s.deps.Chatbot.Reply(r.Context(), sessionFrom(r.Context()), req.Message)
	if err != nil {
		s.log.Error().Err(err).Msg("chatbot failed")
		writeError(w, s.log, http.StatusInternalServerError, "Chatbot error: "+err.Error())
		return
	}
	writeJSON(w, s.log, http.StatusOK, resp)
}
