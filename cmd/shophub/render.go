package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/creastat/shophub"
)

func printProducts(w io.Writer, products []shophub.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t$%.2f\n", p.ID, truncate(p.Title, 48), p.Category, p.Price)
	}
	_ = tw.Flush()
}

func printProduct(w io.Writer, p *shophub.Product) {
	fmt.Fprintf(w, "%s\n", p.Title)
	fmt.Fprintf(w, "  ID:        %d\n", p.ID)
	fmt.Fprintf(w, "  Category:  %s\n", p.Category)
	fmt.Fprintf(w, "  Price:     $%.2f\n", p.Price)
	if p.Rating != nil {
		fmt.Fprintf(w, "  Rating:    %.1f (%d reviews)\n", p.Rating.Rate, p.Rating.Count)
	}
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
}

func printCart(w io.Writer, cart *shophub.Cart) {
	if cart.IsEmpty() {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	printItems(w, cart.Items)
	fmt.Fprintf(w, "\n%d items, total $%.2f\n", cart.ItemCount, cart.Total)
}

func printItems(w io.Writer, items []shophub.CartItem) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t$%.2f\t$%.2f\n", it.ProductID, truncate(it.Title, 40), it.Quantity, it.Price, it.Subtotal)
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, s *shophub.CheckoutSummary) {
	printItems(w, s.Items)
	fmt.Fprintf(w, "\nSubtotal:  $%.2f\n", s.Subtotal)
	if s.Shipping == 0 {
		fmt.Fprintln(w, "Shipping:  FREE")
	} else {
		fmt.Fprintf(w, "Shipping:  $%.2f\n", s.Shipping)
	}
	fmt.Fprintf(w, "Tax:       $%.2f\n", s.Tax)
	fmt.Fprintf(w, "Total:     $%.2f\n", s.Total)
}

func printOrder(w io.Writer, o *shophub.OrderConfirmation) {
	fmt.Fprintln(w, o.Message)
	fmt.Fprintf(w, "  Order:     %s\n", o.OrderID)
	fmt.Fprintf(w, "  Status:    %s\n", o.Status)
	fmt.Fprintf(w, "  Total:     $%.2f\n", o.Total)
	fmt.Fprintf(w, "  Delivery:  %s\n", o.EstimatedDelivery)
}

func printMessage(w io.Writer, m shophub.Message) {
	who := "You"
	if m.Role == shophub.RoleAssistant {
		who = "E-vee"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp.Format("15:04"), who, m.Content)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n-1])) + "…"
}
