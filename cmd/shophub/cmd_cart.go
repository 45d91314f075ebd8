package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

const cartRoute = "/cart"

var addQuantity int

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show your cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.Require(ctx, cartRoute); err != nil {
			return err
		}
		app.Cart.Refresh(ctx)
		if msg := app.Cart.Err(); msg != "" {
			return errors.New(msg)
		}
		printCart(cmd.OutOrStdout(), app.Cart.Snapshot())
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to your cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateCart(cmd, func(ctx context.Context) error {
			return app.Cart.Add(ctx, args[0], addQuantity)
		})
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <product-id> <quantity>",
	Short: "Change the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		return mutateCart(cmd, func(ctx context.Context) error {
			return app.Cart.UpdateQuantity(ctx, args[0], qty)
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from your cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateCart(cmd, func(ctx context.Context) error {
			return app.Cart.Remove(ctx, args[0])
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty your cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateCart(cmd, app.Cart.Clear)
	},
}

func mutateCart(cmd *cobra.Command, fn func(context.Context) error) error {
	ctx := cmd.Context()
	if err := app.Require(ctx, cartRoute); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		return userError(err, "Failed to update cart")
	}
	printCart(cmd.OutOrStdout(), app.Cart.Snapshot())
	return nil
}

func init() {
	cartAddCmd.Flags().IntVarP(&addQuantity, "quantity", "q", 1, "number of items to add")

	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartUpdateCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)
}
