package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/odg-delivery/console/internal/cli/commands"
	"github.com/spf13/cobra"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the odg command tree
func NewRootCmd() *cobra.Command {
	env := &commands.Env{}

	rootCmd := &cobra.Command{
		Use:   "odg",
		Short: "ODG - Campus food delivery console",
		Long: `ODG console - Run the campus food delivery platform from the terminal.

Admins manage users, riders, payouts, fees and delivery zones. Vendors run
their order queue and menu. The session is stored locally between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return env.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&env.ConfigPath, "config", "", "Config file (default ~/.config/odg/console.yaml)")
	rootCmd.PersistentFlags().StringVar(&env.LogLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "odg version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd(env))
	rootCmd.AddCommand(commands.NewSignupCmd(env))
	rootCmd.AddCommand(commands.NewVerifyCmd(env))
	rootCmd.AddCommand(commands.NewResendCodeCmd(env))
	rootCmd.AddCommand(commands.NewForgotPasswordCmd(env))
	rootCmd.AddCommand(commands.NewResetPasswordCmd(env))
	rootCmd.AddCommand(commands.NewSelectRoleCmd(env))
	rootCmd.AddCommand(commands.NewLogoutCmd(env))
	rootCmd.AddCommand(commands.NewWhoamiCmd(env))
	rootCmd.AddCommand(commands.NewRouteCmd(env))
	rootCmd.AddCommand(commands.NewAdminCmd(env))
	rootCmd.AddCommand(commands.NewVendorCmd(env))

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
