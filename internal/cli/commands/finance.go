package commands

import (
	"fmt"
	"strconv"

	"github.com/odg-delivery/console/internal/console"
	"github.com/spf13/cobra"
)

func newPayoutsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payouts",
		Short: "List vendor payouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/payouts")
			if err != nil {
				return err
			}

			payouts, err := app.Console.ListPayouts(cmd.Context())
			if err != nil {
				return err
			}
			if len(payouts) == 0 {
				empty(cmd.OutOrStdout(), "payouts")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "ID", "VENDOR", "AMOUNT", "STATUS", "REFERENCE", "CREATED AT", "PAID AT")
			for _, p := range payouts {
				t.row(p.ID, p.VendorName, console.FormatCents(p.AmountCents), p.Status, orDash(p.Reference), p.CreatedAt, orDash(p.PaidAt))
			}
			return t.flush()
		},
	}

	var vendorID int64
	var amount, reference string

	create := &cobra.Command{
		Use:   "create",
		Short: "Record a payout owed to a vendor",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/payouts")
			if err != nil {
				return err
			}

			cents, err := console.ParseAmount(amount)
			if err != nil {
				return err
			}

			req := console.PayoutRequest{VendorID: vendorID, AmountCents: cents, Reference: reference}
			if err := app.Console.CreatePayout(cmd.Context(), req); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Payout of %s created for vendor %d\n", console.FormatCents(cents), vendorID)
			return nil
		},
	}
	create.Flags().Int64Var(&vendorID, "vendor", 0, "Vendor ID")
	create.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 125.50")
	create.Flags().StringVar(&reference, "reference", "", "Optional bank or transfer reference")
	_ = create.MarkFlagRequired("vendor")
	_ = create.MarkFlagRequired("amount")

	cmd.AddCommand(create)
	cmd.AddCommand(newMarkCmd(env, "mark-paid", "/admin/payouts", "payout", func(app *App, cmd *cobra.Command, id int64) error {
		return app.Console.MarkPayoutPaid(cmd.Context(), id)
	}))

	return cmd
}

func newRefundsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refunds",
		Short: "List customer refunds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/refunds")
			if err != nil {
				return err
			}

			refunds, err := app.Console.ListRefunds(cmd.Context())
			if err != nil {
				return err
			}
			if len(refunds) == 0 {
				empty(cmd.OutOrStdout(), "refunds")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "ID", "ORDER", "CUSTOMER", "AMOUNT", "STATUS", "REASON", "CREATED AT")
			for _, r := range refunds {
				t.row(r.ID, r.OrderID, r.UserName, console.FormatCents(r.AmountCents), r.Status, orDash(r.Reason), r.CreatedAt)
			}
			return t.flush()
		},
	}

	var orderID, userID int64
	var amount, reason string

	create := &cobra.Command{
		Use:   "create",
		Short: "Record a refund for an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/refunds")
			if err != nil {
				return err
			}

			cents, err := console.ParseAmount(amount)
			if err != nil {
				return err
			}

			req := console.RefundRequest{OrderID: orderID, UserID: userID, AmountCents: cents, Reason: reason}
			if err := app.Console.CreateRefund(cmd.Context(), req); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Refund of %s created for order %d\n", console.FormatCents(cents), orderID)
			return nil
		},
	}
	create.Flags().Int64Var(&orderID, "order", 0, "Order ID")
	create.Flags().Int64Var(&userID, "user", 0, "Customer user ID")
	create.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 42.00")
	create.Flags().StringVar(&reason, "reason", "", "Optional reason")
	_ = create.MarkFlagRequired("order")
	_ = create.MarkFlagRequired("user")
	_ = create.MarkFlagRequired("amount")

	cmd.AddCommand(create)
	cmd.AddCommand(newMarkCmd(env, "mark-processed", "/admin/refunds", "refund", func(app *App, cmd *cobra.Command, id int64) error {
		return app.Console.MarkRefundProcessed(cmd.Context(), id)
	}))

	return cmd
}

func newMarkCmd(env *Env, use, path, noun string, action func(*App, *cobra.Command, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("Mark a %s as settled", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, path)
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

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s %s %d\n", pastTense(use), noun, id)
			return nil
		},
	}
}

func newFeesCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "List fee schedule versions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/fees")
			if err != nil {
				return err
			}

			versions, err := app.Console.ListFees(cmd.Context())
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				empty(cmd.OutOrStdout(), "fee versions")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "VERSION", "PLATFORM (BPS)", "DELIVERY", "SURGE", "NOTES", "CREATED AT")
			for _, v := range versions {
				t.row(v.Version, v.PlatformFeeBps, console.FormatCents(v.DeliveryFeeCents),
					strconv.FormatFloat(v.SurgeMultiplier, 'f', -1, 64), orDash(v.Notes), v.CreatedAt)
			}
			return t.flush()
		},
	}

	var bps int64
	var delivery, notes string
	var surge float64

	publish := &cobra.Command{
		Use:   "publish",
		Short: "Publish a new fee schedule version",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/fees")
			if err != nil {
				return err
			}

			cents, err := console.ParsePrice(delivery)
			if err != nil {
				return err
			}

			req := console.FeeRequest{PlatformFeeBps: bps, DeliveryFeeCents: cents, SurgeMultiplier: surge, Notes: notes}
			if err := app.Console.PublishFees(cmd.Context(), req); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Fee schedule published")
			return nil
		},
	}
	publish.Flags().Int64Var(&bps, "platform-bps", 0, "Platform fee in basis points")
	publish.Flags().StringVar(&delivery, "delivery", "0", "Delivery fee, e.g. 3.50")
	publish.Flags().Float64Var(&surge, "surge", 1, "Surge multiplier")
	publish.Flags().StringVar(&notes, "notes", "", "Optional notes")

	rollback := &cobra.Command{
		Use:   "rollback <version>",
		Short: "Republish an earlier fee schedule version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/fees")
			if err != nil {
				return err
			}

			version, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := app.Console.RollbackFees(cmd.Context(), version); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Rolled back to fee version %d\n", version)
			return nil
		},
	}

	cmd.AddCommand(publish, rollback)

	return cmd
}
