package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/checkout"
)

const checkoutRoute = "/checkout"

var (
	form        checkout.Form
	summaryOnly bool
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Review your order and place it",
	Example: `  shophub checkout --summary
  shophub checkout --email jane@example.com --phone 5551234567 \
    --address "12 Market Street" --city Springfield --state IL --zip 62701 \
    --payment credit_card`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		if err := app.Require(ctx, checkoutRoute); err != nil {
			return err
		}

		redirect, err := app.Checkout.Enter(ctx)
		if errors.Is(err, shophub.ErrEmptyCart) {
			fmt.Fprintf(out, "Your cart is empty. Add something first (see %q).\n", "shophub "+strings.TrimPrefix(redirect, "/"))
			return nil
		}
		if err != nil {
			return errors.New(app.Checkout.Banner())
		}

		printSummary(out, app.Checkout.Summary())
		if summaryOnly {
			return nil
		}
		fmt.Fprintln(out)

		order, err := app.Checkout.Submit(ctx, form)
		if fields := app.Checkout.FieldErrors(); len(fields) > 0 {
			printFieldErrors(cmd, fields)
			return errors.New("please fix the errors above")
		}
		if err != nil {
			return errors.New(app.Checkout.Banner())
		}

		printOrder(out, order)
		return nil
	},
}

func printFieldErrors(cmd *cobra.Command, fields checkout.FieldErrors) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", name, fields[name])
	}
}

func init() {
	f := checkoutCmd.Flags()
	f.BoolVar(&summaryOnly, "summary", false, "only show the order summary")
	f.StringVar(&form.Email, "email", "", "contact email")
	f.StringVar(&form.Phone, "phone", "", "contact phone number")
	f.StringVar(&form.ShippingAddress, "address", "", "street address")
	f.StringVar(&form.City, "city", "", "city")
	f.StringVar(&form.State, "state", "", "state")
	f.StringVar(&form.ZipCode, "zip", "", "ZIP code")
	f.StringVar(&form.PaymentMethod, "payment", shophub.PaymentCreditCard,
		"payment method: credit_card, paypal, apple_pay or google_pay")
}
