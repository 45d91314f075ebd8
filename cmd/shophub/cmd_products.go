package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

const productsRoute = "/products"

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.Require(ctx, productsRoute); err != nil {
			return err
		}
		products, err := app.API.Products.List(ctx)
		if err != nil {
			return userError(err, "Failed to load products")
		}
		printProducts(cmd.OutOrStdout(), products)
		return nil
	},
}

var productsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.Require(ctx, productsRoute+"/"+args[0]); err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		product, err := app.API.Products.Get(ctx, id)
		if err != nil {
			return userError(err, "Failed to load product")
		}
		printProduct(cmd.OutOrStdout(), product)
		return nil
	},
}

var productsCategoryCmd = &cobra.Command{
	Use:   "category <name>",
	Short: "List the products in a category",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.Require(ctx, productsRoute); err != nil {
			return err
		}
		products, err := app.API.Products.ByCategory(ctx, strings.Join(args, " "))
		if err != nil {
			return userError(err, "Failed to load products")
		}
		printProducts(cmd.OutOrStdout(), products)
		return nil
	},
}

var productsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the catalog's categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.Require(ctx, productsRoute); err != nil {
			return err
		}
		categories, err := app.API.Products.Categories(ctx)
		if err != nil {
			return userError(err, "Failed to load categories")
		}
		for _, c := range categories {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

var productsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search products by title and description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.Require(ctx, productsRoute); err != nil {
			return err
		}
		res, err := app.API.Products.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return userError(err, "Failed to search products")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d results for %q\n\n", res.Count, res.Query)
		printProducts(cmd.OutOrStdout(), res.Results)
		return nil
	},
}

func init() {
	productsCmd.AddCommand(productsGetCmd)
	productsCmd.AddCommand(productsCategoryCmd)
	productsCmd.AddCommand(productsCategoriesCmd)
	productsCmd.AddCommand(productsSearchCmd)
}
