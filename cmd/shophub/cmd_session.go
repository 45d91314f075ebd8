package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// startCmd is the landing page: it opens (or resumes) the anonymous session.
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start shopping (creates an anonymous session)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := app.Sessions.EnsureSession(ctx)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Welcome to ShopHub!")
		fmt.Fprintf(out, "Session: %s\n", id)
		if !app.API.CheckHealth(ctx) {
			fmt.Fprintf(out, "Warning: the store at %s is not reachable right now.\n", app.API.BaseURL())
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the current session and chat history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.Chat.ClearChat(ctx); err != nil {
			return fmt.Errorf("failed to clear chat history: %w", err)
		}
		if err := app.Sessions.ClearSession(ctx); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the store API is up",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.API.CheckHealth(cmd.Context()) {
			return fmt.Errorf("store at %s is unhealthy", app.API.BaseURL())
		}
		fmt.Fprintln(cmd.OutOrStdout(), "healthy")
		return nil
	},
}
