package commands

import (
	"fmt"
	"strings"

	"github.com/odg-delivery/console/internal/console"
	"github.com/spf13/cobra"
)

// NewAdminCmd creates the admin command group
func NewAdminCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Platform administration (admin accounts only)",
	}

	cmd.AddCommand(newDashboardCmd(env))
	cmd.AddCommand(newUsersCmd(env))
	cmd.AddCommand(newRidersCmd(env))
	cmd.AddCommand(newAdminOrdersCmd(env))
	cmd.AddCommand(newAnalyticsCmd(env))
	cmd.AddCommand(newSettingsCmd(env))
	cmd.AddCommand(newSupportCmd(env))
	cmd.AddCommand(newCampaignCmd(env))
	cmd.AddCommand(newPayoutsCmd(env))
	cmd.AddCommand(newRefundsCmd(env))
	cmd.AddCommand(newFeesCmd(env))
	cmd.AddCommand(newZonesCmd(env))

	return cmd
}

func newDashboardCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show headline platform counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin")
			if err != nil {
				return err
			}

			stats, err := app.Console.Dashboard(cmd.Context(), app.Now())
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "METRIC", "VALUE")
			t.row("Users", stats.TotalUsers)
			t.row("Orders", stats.TotalOrders)
			t.row("Orders today", stats.TodayOrders)
			t.row("Pending rider verifications", stats.PendingRiderVerifications)
			return t.flush()
		},
	}
}

func newUsersCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/users")
			if err != nil {
				return err
			}

			users, err := app.Console.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if len(users) == 0 {
				empty(cmd.OutOrStdout(), "users")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "ID", "NAME", "EMAIL", "PHONE", "ROLE", "VERIFIED")
			for _, u := range users {
				role := u.Role
				if role == "" {
					role = "-"
				}
				t.row(u.ID, u.Name, u.Email, u.Phone, role, yesNo(u.Verified()))
			}
			return t.flush()
		},
	}

	cmd.AddCommand(newUserActionCmd(env, "activate", "Re-enable a user account", func(app *App, cmd *cobra.Command, id int64) error {
		return app.Console.SetUserActive(cmd.Context(), id, true)
	}))
	cmd.AddCommand(newUserActionCmd(env, "deactivate", "Disable a user account", func(app *App, cmd *cobra.Command, id int64) error {
		return app.Console.SetUserActive(cmd.Context(), id, false)
	}))
	cmd.AddCommand(newUserActionCmd(env, "reset-password", "Send a user a password reset", func(app *App, cmd *cobra.Command, id int64) error {
		return app.Console.ResetUserPassword(cmd.Context(), id)
	}))

	return cmd
}

func newUserActionCmd(env *Env, use, short string, action func(*App, *cobra.Command, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/users")
			if err != nil {
				return err
			}

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := action(app, cmd, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s user %d\n", pastTense(use), id)
			return nil
		},
	}
}

func newRidersCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "riders",
		Short: "List rider documents awaiting review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/riders")
			if err != nil {
				return err
			}

			docs, err := app.Console.PendingRiders(cmd.Context())
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				empty(cmd.OutOrStdout(), "pending rider documents")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "DOC ID", "RIDER", "TYPE", "URL", "STATUS")
			for _, d := range docs {
				t.row(d.ID, d.Name, d.DocumentType, d.DocumentURL, d.Status)
			}
			return t.flush()
		},
	}

	decide := func(use, short string, action func(*App, *cobra.Command, int64) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <doc-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := guarded(env, cmd, "/admin/riders")
				if err != nil {
					return err
				}

				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				if err := action(app, cmd, id); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s document %d\n", pastTense(use), id)
				return nil
			},
		}
	}

	cmd.AddCommand(decide("approve", "Approve a rider document", func(app *App, cmd *cobra.Command, id int64) error {
		return app.Console.ApproveRider(cmd.Context(), id)
	}))
	cmd.AddCommand(decide("reject", "Reject a rider document", func(app *App, cmd *cobra.Command, id int64) error {
		return app.Console.RejectRider(cmd.Context(), id)
	}))

	return cmd
}

func newAdminOrdersCmd(env *Env) *cobra.Command {
	var active bool

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List platform orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/orders")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if active {
				orders, err := app.Console.ActiveOrders(cmd.Context())
				if err != nil {
					return err
				}
				if len(orders) == 0 {
					empty(out, "active orders")
					return nil
				}

				t := newTable(out, "ID", "STATUS", "TOTAL", "VENDOR", "CUSTOMER", "PHONE", "RIDER")
				for _, o := range orders {
					rider := "-"
					if o.RiderID != nil {
						rider = fmt.Sprint(*o.RiderID)
					}
					t.row(o.ID, o.Status, console.FormatCents(o.TotalCents), o.VendorName, o.UserName, o.UserPhone, rider)
				}
				return t.flush()
			}

			orders, err := app.Console.ListOrders(cmd.Context())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				empty(out, "orders")
				return nil
			}

			t := newTable(out, "ID", "STATUS", "TOTAL", "CREATED AT")
			for _, o := range orders {
				t.row(o.ID, o.Status, console.FormatCents(o.TotalCents), o.CreatedAt)
			}
			return t.flush()
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "Only orders in flight, with vendor, customer and rider")

	return cmd
}

func newAnalyticsCmd(env *Env) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show the platform overview and orders per day",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/analytics")
			if err != nil {
				return err
			}

			overview, err := app.Console.Overview(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := app.Console.OrdersByDay(cmd.Context(), days)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			t := newTable(out, "METRIC", "VALUE")
			t.row("Orders", overview.Orders)
			t.row("Vendors", overview.Vendors)
			t.row("Riders", overview.Riders)
			t.row("Students", overview.Students)
			t.row("Avg delivery (min)", fmt.Sprintf("%.1f", overview.AvgDeliveryMins))
			if err := t.flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			if len(rows) == 0 {
				empty(out, "orders in this window")
				return nil
			}

			t = newTable(out, "DAY", "ORDERS", "GROSS")
			for _, r := range rows {
				t.row(r.Day, r.Orders, console.FormatCents(r.GrossCents))
			}
			return t.flush()
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Number of days to include")

	return cmd
}

func newSettingsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "List platform settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/settings")
			if err != nil {
				return err
			}

			settings, err := app.Console.ListSettings(cmd.Context())
			if err != nil {
				return err
			}
			if len(settings) == 0 {
				empty(cmd.OutOrStdout(), "settings")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "KEY", "VALUE")
			for _, s := range settings {
				t.row(s.Key, s.Value)
			}
			return t.flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Create or update a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/settings")
			if err != nil {
				return err
			}

			if err := app.Console.SetSetting(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s\n", args[0], args[1])
			return nil
		},
	})

	return cmd
}

func newSupportCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "support",
		Short: "Show the support inbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/support")
			if err != nil {
				return err
			}

			messages, err := app.Console.SupportInbox(cmd.Context())
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				empty(cmd.OutOrStdout(), "support messages")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "ID", "FROM", "CONTACT", "RECEIVED", "MESSAGE")
			for _, m := range messages {
				contact := m.Email
				if contact == "" {
					contact = m.Phone
				}
				t.row(m.ID, m.Name, contact, m.CreatedAt, strings.ReplaceAll(m.Message, "\n", " "))
			}
			return t.flush()
		},
	}
}

func newCampaignCmd(env *Env) *cobra.Command {
	var req console.CampaignRequest

	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Send a notification to an audience",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/campaigns")
			if err != nil {
				return err
			}

			if err := app.Console.SendCampaign(cmd.Context(), req); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Campaign sent to %s\n", req.Audience)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Audience, "audience", console.AudienceStudents, "One of: students, riders, vendors")
	cmd.Flags().StringVar(&req.Message, "message", "", "Notification text")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func pastTense(verb string) string {
	switch verb {
	case "reset-password":
		return "Reset password for"
	case "mark-paid":
		return "Marked paid"
	case "mark-processed":
		return "Marked processed"
	}
	if strings.HasSuffix(verb, "e") {
		return strings.ToUpper(verb[:1]) + verb[1:] + "d"
	}
	return strings.ToUpper(verb[:1]) + verb[1:] + "ed"
}
