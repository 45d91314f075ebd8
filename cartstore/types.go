package cartstore

import "time"

// Line is one product entry of a stored cart.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartData represents the serializable server-side state of one cart.
// Lines keep insertion order so carts render in the order items were added.
type CartData struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	Version   int64     `json:"version"` // Monotonically increasing for optimistic locking
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Quantity returns the stored quantity for productID, or 0.
func (c *CartData) Quantity(productID string) int {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// Add increases the quantity of productID, appending a new line if needed.
func (c *CartData) Add(productID string, quantity int) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += quantity
			return
		}
	}
	c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: quantity})
}

// Set replaces the quantity of productID. Quantities <= 0 remove the line.
func (c *CartData) Set(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
	c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: quantity})
}

// Remove drops productID from the cart.
func (c *CartData) Remove(productID string) {
	out := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	c.Lines = out
}

// Clear empties the cart.
func (c *CartData) Clear() {
	c.Lines = nil
}

// ItemCount is the sum of all quantities.
func (c *CartData) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Clone returns a deep copy.
func (c *CartData) Clone() *CartData {
	cp := *c
	cp.Lines = append([]Line(nil), c.Lines...)
	return &cp
}
