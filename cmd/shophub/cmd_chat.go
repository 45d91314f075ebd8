package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/creastat/shophub"
)

const chatRoute = "/chatbot"

var historyLast int

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Talk to the shopping assistant",
	Example: `  shophub chat "show me backpacks"
  shophub chat "add product 3 and checkout"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		if err := app.Require(ctx, chatRoute); err != nil {
			return err
		}

		resp, err := app.Chat.SendMessage(ctx, strings.Join(args, " "))
		if err != nil {
			if msg := app.Chat.Err(); msg != "" {
				return errors.New(msg)
			}
			return err
		}
		if resp == nil {
			return nil
		}

		fmt.Fprintln(out, resp.Response)

		switch resp.Action {
		case shophub.ActionShowCart:
			fmt.Fprintln(out)
			printCart(out, app.Cart.Snapshot())
		case shophub.ActionShowCheckoutButton:
			fmt.Fprintln(out, "\nReady when you are: run \"shophub checkout\".")
		case shophub.ActionRedirectToCheckout:
			fmt.Fprintln(out)
			if _, err := app.Checkout.Enter(ctx); err == nil {
				printSummary(out, app.Checkout.Summary())
				fmt.Fprintln(out, "\nComplete your order with \"shophub checkout\" and your details.")
			}
		}
		return nil
	},
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the saved conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Require(cmd.Context(), chatRoute); err != nil {
			return err
		}
		msgs := shophub.TailHistory(app.Chat.Messages(), historyLast)
		if len(msgs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No messages yet.")
			return nil
		}
		for _, m := range msgs {
			printMessage(cmd.OutOrStdout(), m)
		}
		return nil
	},
}

var chatClearCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Require(cmd.Context(), chatRoute); err != nil {
			return err
		}
		if err := app.Chat.ClearChat(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear chat: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Conversation cleared.")
		return nil
	},
}

func init() {
	chatHistoryCmd.Flags().IntVarP(&historyLast, "last", "n", 0, "only show the last n messages (0 shows all)")

	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatClearCmd)
}
