package commands

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/odg-delivery/console/internal/auth"
	"github.com/spf13/cobra"
)

// NewLoginCmd creates the login command
func NewLoginCmd(env *Env) *cobra.Command {
	var identifier, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with an email or phone number",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := env.App(cmd)
			if err != nil {
				return err
			}

			// Check for environment variables (useful for CI/CD)
			if identifier == "" {
				identifier = os.Getenv("ODG_EMAIL")
			}
			if identifier == "" {
				return fmt.Errorf("email or phone is required (use --email flag or ODG_EMAIL env var)")
			}

			secret, err := readSecret(cmd, password, "ODG_PASSWORD", "Password")
			if err != nil {
				return err
			}

			session, err := app.Gate.Login(cmd.Context(), identifier, secret)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "✓ Login successful!")
			if session.Role == "" {
				fmt.Fprintln(out, "  No role yet. Choose one with: odg select-role")
				return nil
			}
			fmt.Fprintf(out, "  Role: %s\n", session.Role)
			fmt.Fprintf(out, "  Start at: %s\n", auth.LandingRoute(session.Role))
			return nil
		},
	}

	cmd.Flags().StringVar(&identifier, "email", "", "Email or phone (or set ODG_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set ODG_PASSWORD, will prompt if not provided)")

	return cmd
}

// NewSignupCmd creates the signup command
func NewSignupCmd(env *Env) *cobra.Command {
	var req auth.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := env.App(cmd)
			if err != nil {
				return err
			}

			req.Password, err = readSecret(cmd, req.Password, "ODG_PASSWORD", "Password")
			if err != nil {
				return err
			}

			if err := app.Gate.Signup(cmd.Context(), req); err != nil {
				return fmt.Errorf("signup failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Account created. Check %s for a verification code, then run:\n", req.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "  odg verify --email %s --code <code>\n", req.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (or set ODG_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&req.AgreedToTerms, "agree-terms", false, "Accept the terms of service")

	return cmd
}

// NewVerifyCmd creates the verify command
func NewVerifyCmd(env *Env) *cobra.Command {
	var email, code string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an email address with the code that was sent to it",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := env.App(cmd)
			if err != nil {
				return err
			}

			if err := app.Gate.VerifyEmail(cmd.Context(), email, code); err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Email verified. You can now log in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&code, "code", "", "Verification code")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

// NewResendCodeCmd creates the resend-code command
func NewResendCodeCmd(env *Env) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resend-code",
		Short: "Send a new email verification code",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := env.App(cmd)
			if err != nil {
				return err
			}

			if err := app.Gate.RequestVerification(cmd.Context(), email); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Verification code sent to %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// NewForgotPasswordCmd creates the forgot-password command
func NewForgotPasswordCmd(env *Env) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset code",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := env.App(cmd)
			if err != nil {
				return err
			}

			if err := app.Gate.ForgotPassword(cmd.Context(), email); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ If %s has an account, a reset code is on its way\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// NewResetPasswordCmd creates the reset-password command
func NewResetPasswordCmd(env *Env) *cobra.Command {
	var email, code, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password using a reset code",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := env.App(cmd)
			if err != nil {
				return err
			}

			secret, err := readSecret(cmd, password, "ODG_NEW_PASSWORD", "New password")
			if err != nil {
				return err
			}

			if err := app.Gate.ResetPassword(cmd.Context(), email, code, secret); err != nil {
				return fmt.Errorf("password reset failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Password updated. You can now log in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&code, "code", "", "Reset code")
	cmd.Flags().StringVar(&password, "password", "", "New password (or set ODG_NEW_PASSWORD, will prompt if not provided)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

// NewSelectRoleCmd creates the select-role command
func NewSelectRoleCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "select-role [student|rider]",
		Short: "Choose a role for a freshly verified account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := env.App(cmd)
			if err != nil {
				return err
			}

			var role auth.Role
			if len(args) == 1 {
				role, err = auth.ParseSelectableRole(args[0])
			} else {
				role, err = promptRole()
			}
			if err != nil {
				return err
			}

			session, err := app.Gate.SelectRole(cmd.Context(), role)
			if err != nil {
				return fmt.Errorf("failed to select role: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Role set to %s\n", session.Role)
			return nil
		},
	}
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := env.App(cmd)
			if err != nil {
				return err
			}

			if err := app.Gate.Logout(); err != nil {
				return fmt.Errorf("failed to clear stored session: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := env.App(cmd)
			if err != nil {
				return err
			}

			session := app.Gate.Session()
			out := cmd.OutOrStdout()
			if !session.Authenticated() {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}

			role := string(session.Role)
			if role == "" {
				role = "(none)"
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Role:\t%s\n", role)
			fmt.Fprintf(w, "Verified:\t%t\n", session.IsVerified)

			info := auth.Inspect(session.Token)
			if info.Opaque {
				fmt.Fprintf(w, "Token:\t%s\n", "opaque")
			} else {
				fmt.Fprintf(w, "User ID:\t%d\n", info.UserID)
				if info.Email != "" {
					fmt.Fprintf(w, "Email:\t%s\n", info.Email)
				}
				if !info.ExpiresAt.IsZero() {
					expires := info.ExpiresAt.Local().Format(time.RFC1123)
					if info.Expired(app.Now()) {
						expires += " (expired)"
					}
					fmt.Fprintf(w, "Expires:\t%s\n", expires)
				}
			}

			return w.Flush()
		},
	}
}

// NewRouteCmd creates the route command
func NewRouteCmd(env *Env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "route <path>",
		Short: "Show what the route guard decides for a console path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := env.App(cmd)
			if err != nil {
				return err
			}

			d := auth.Evaluate(app.Gate.Session(), args[0])
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}

			fmt.Fprintln(out, d.Outcome.String())
			if d.Redirect != "" {
				target := d.Redirect
				if d.From != "" {
					target += "?from=" + url.QueryEscape(d.From)
				}
				fmt.Fprintf(out, "  Redirect: %s\n", target)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the decision as JSON")

	return cmd
}
