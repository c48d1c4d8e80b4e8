package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/odg-delivery/console/internal/console"
	"github.com/spf13/cobra"
)

func newProfileCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the storefront profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/profile")
			if err != nil {
				return err
			}

			profile, err := app.Console.Profile(cmd.Context(), vendorID)
			if err != nil {
				return err
			}
			if profile == nil {
				empty(cmd.OutOrStdout(), "profile")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "FIELD", "VALUE")
			t.row("Name", profile.Name)
			t.row("Description", orDash(profile.Description))
			t.row("Image", orDash(profile.ImageURL))
			t.row("Open", yesNo(profile.Open()))
			return t.flush()
		},
	}

	var name, description, image string
	var closed bool
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change the profile; unset flags keep their current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/profile")
			if err != nil {
				return err
			}

			current, err := app.Console.Profile(cmd.Context(), vendorID)
			if err != nil {
				return err
			}

			req := console.ProfileRequest{VendorID: vendorID, IsOpen: 1}
			if current != nil {
				req.Name = current.Name
				req.Description = current.Description
				req.ImageURL = current.ImageURL
				req.IsOpen = current.IsOpen
			}

			changed := cmd.Flags().Changed
			if changed("name") {
				req.Name = strings.TrimSpace(name)
			}
			if changed("description") {
				req.Description = optional(description)
			}
			if changed("image") {
				req.ImageURL = optional(image)
			}
			if changed("closed") {
				req.IsOpen = 1
				if closed {
					req.IsOpen = 0
				}
			}

			if err := app.Console.SaveProfile(cmd.Context(), req); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Profile saved")
			return nil
		},
	}
	setCmd.Flags().StringVar(&name, "name", "", "Storefront name")
	setCmd.Flags().StringVar(&description, "description", "", "Short description")
	setCmd.Flags().StringVar(&image, "image", "", "Image URL")
	setCmd.Flags().BoolVar(&closed, "closed", false, "Stop taking orders (--closed=false reopens)")

	cmd.AddCommand(setCmd)

	return cmd
}

func newBankCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Show the account payouts are sent to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/profile")
			if err != nil {
				return err
			}

			bank, err := app.Console.Bank(cmd.Context(), vendorID)
			if err != nil {
				return err
			}
			if bank == nil {
				empty(cmd.OutOrStdout(), "bank details")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "BANK", "ACCOUNT")
			t.row(bank.BankName, bank.AccountNumber)
			return t.flush()
		},
	}

	var bankName, account string
	bankSet := &cobra.Command{
		Use:   "set",
		Short: "Set the account payouts are sent to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/profile")
			if err != nil {
				return err
			}

			if err := app.Console.SaveBank(cmd.Context(), vendorID, strings.TrimSpace(bankName), strings.TrimSpace(account)); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Bank details saved")
			return nil
		},
	}
	bankSet.Flags().StringVar(&bankName, "bank", "", "Bank name")
	bankSet.Flags().StringVar(&account, "account", "", "Account number")
	_ = bankSet.MarkFlagRequired("bank")
	_ = bankSet.MarkFlagRequired("account")

	cmd.AddCommand(bankSet)

	return cmd
}

func newHoursCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Show the weekly opening hours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/profile")
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "DAY", "OPEN", "CLOSE")
			for _, h := range app.Console.Hours(cmd.Context(), vendorID) {
				t.row(h.Day(), h.OpenTime, h.CloseTime)
			}
			return t.flush()
		},
	}

	hoursSet := &cobra.Command{
		Use:   "set <day> <open> <close>",
		Short: "Set one day's opening hours, e.g. set mon 09:00 17:00",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/profile")
			if err != nil {
				return err
			}

			day, err := parseWeekday(args[0])
			if err != nil {
				return err
			}

			week := app.Console.Hours(cmd.Context(), vendorID)
			found := false
			for i := range week {
				if week[i].DayOfWeek == day {
					week[i].OpenTime, week[i].CloseTime = args[1], args[2]
					found = true
				}
			}
			if !found {
				week = append(week, console.OpeningHours{DayOfWeek: day, OpenTime: args[1], CloseTime: args[2]})
			}

			if err := app.Console.SaveHours(cmd.Context(), vendorID, week); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %s-%s\n", console.Weekdays[day], args[1], args[2])
			return nil
		},
	}

	cmd.AddCommand(hoursSet)

	return cmd
}

// parseWeekday accepts a day name such as "mon" or "Monday", or 0-6 from Sunday
func parseWeekday(arg string) (int, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 0 && n <= 6 {
			return n, nil
		}
		return 0, fmt.Errorf("invalid day %q", arg)
	}
	lower := strings.ToLower(arg)
	for i, d := range console.Weekdays {
		if len(lower) >= 3 && strings.HasPrefix(lower, strings.ToLower(d)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid day %q", arg)
}

func newBrandingCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branding",
		Short: "Show the logo and banner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/branding")
			if err != nil {
				return err
			}

			b, err := app.Console.Branding(cmd.Context(), vendorID)
			if err != nil {
				return err
			}
			if b == nil {
				b = &console.Branding{}
			}

			t := newTable(cmd.OutOrStdout(), "IMAGE", "URL")
			t.row("Logo", orDash(b.LogoURL))
			t.row("Banner", orDash(b.BannerURL))
			return t.flush()
		},
	}

	var logo, banner string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change the logo or banner; an empty URL removes it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/branding")
			if err != nil {
				return err
			}

			current, err := app.Console.Branding(cmd.Context(), vendorID)
			if err != nil {
				return err
			}
			if current != nil {
				if !cmd.Flags().Changed("logo") && current.LogoURL != nil {
					logo = *current.LogoURL
				}
				if !cmd.Flags().Changed("banner") && current.BannerURL != nil {
					banner = *current.BannerURL
				}
			}

			if err := app.Console.SaveBranding(cmd.Context(), vendorID, logo, banner); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Branding saved")
			return nil
		},
	}
	setCmd.Flags().StringVar(&logo, "logo", "", "Logo URL")
	setCmd.Flags().StringVar(&banner, "banner", "", "Banner URL")

	cmd.AddCommand(setCmd)

	return cmd
}

func newModifiersCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modifiers",
		Short: "List modifier groups and their options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/modifiers")
			if err != nil {
				return err
			}

			groups, err := app.Console.ModifierGroups(cmd.Context(), vendorID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				empty(out, "modifier groups")
				return nil
			}

			for _, g := range groups {
				fmt.Fprintf(out, "%s (#%d)\n", g.Name, g.ID)
				options, err := app.Console.ModifierOptions(cmd.Context(), g.ID)
				if err != nil {
					return err
				}
				if len(options) == 0 {
					fmt.Fprintln(out, "  (no options)")
					continue
				}
				for _, o := range options {
					fmt.Fprintf(out, "  - %s +%s (#%d)\n", o.Name, console.FormatCents(o.PriceCents), o.ID)
				}
			}
			return nil
		},
	}

	addGroup := &cobra.Command{
		Use:   "add-group <name>",
		Short: "Create a modifier group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/modifiers")
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			id, err := app.Console.CreateModifierGroup(cmd.Context(), vendorID, name)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Group %q created (#%d)\n", name, id)
			return nil
		},
	}

	var groupID int64
	var price string
	addOption := &cobra.Command{
		Use:   "add-option <name>",
		Short: "Add an option to a modifier group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/vendor/modifiers")
			if err != nil {
				return err
			}

			cents, err := console.ParsePrice(price)
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			id, err := app.Console.CreateModifierOption(cmd.Context(), groupID, name, cents)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Option %q added at %s (#%d)\n", name, console.FormatCents(cents), id)
			return nil
		},
	}
	addOption.Flags().Int64Var(&groupID, "group", 0, "Modifier group ID")
	addOption.Flags().StringVar(&price, "price", "0", "Extra price, e.g. 2.50")
	_ = addOption.MarkFlagRequired("group")

	cmd.AddCommand(addGroup, addOption)

	return cmd
}

func newEarningsCmd(env *Env) *cobra.Command {
	var period string
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "earnings",
		Short: "Show sales per day, week or month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/reports")
			if err != nil {
				return err
			}

			rows, err := app.Console.Earnings(cmd.Context(), vendorID, period)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asCSV {
				return console.WriteEarningsCSV(out, rows)
			}
			if len(rows) == 0 {
				empty(out, "earnings")
				return nil
			}

			t := newTable(out, "PERIOD", "ORDERS", "GROSS", "COMPLETED")
			for _, r := range rows {
				t.row(r.Label, r.OrdersCount, console.FormatCents(r.GrossCents), console.FormatCents(r.CompletedCents))
			}
			return t.flush()
		},
	}
	cmd.Flags().StringVar(&period, "range", console.RangeDaily, "daily, weekly or monthly")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Write CSV instead of a table")

	return cmd
}

func newTransactionsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "transactions",
		Short: "Show orders with their payment status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/reports")
			if err != nil {
				return err
			}

			txs, err := app.Console.Transactions(cmd.Context(), vendorID)
			if err != nil {
				return err
			}
			if len(txs) == 0 {
				empty(cmd.OutOrStdout(), "transactions")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "ORDER", "STATUS", "PAYMENT", "TOTAL", "CREATED")
			for _, tx := range txs {
				t.row(tx.ID, tx.Status, tx.PaymentStatus, console.FormatCents(tx.TotalCents), tx.CreatedAt)
			}
			return t.flush()
		},
	}
}

func newVendorSupportCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "support",
		Short: "Show the messages you sent to the admins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/vendor/support")
			if err != nil {
				return err
			}

			notes, err := app.Console.SupportHistory(cmd.Context())
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				empty(cmd.OutOrStdout(), "messages")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "SENT", "MESSAGE")
			for _, n := range notes {
				t.row(n.CreatedAt, n.Message)
			}
			return t.flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "send <message>",
		Short: "Message the admins",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/vendor/support")
			if err != nil {
				return err
			}

			if err := app.Console.SendSupport(cmd.Context(), strings.Join(args, " ")); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Message sent")
			return nil
		},
	})

	return cmd
}

// addCategoryCommands adds reorder and rm under vendor categories
func addCategoryCommands(env *Env, cmd *cobra.Command) {
	cmd.AddCommand(&cobra.Command{
		Use:   "reorder <category-id>...",
		Short: "Set the display order; list every category, first shown first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/menu")
			if err != nil {
				return err
			}

			ids := make([]int64, len(args))
			for i, arg := range args {
				if ids[i], err = parseID(arg); err != nil {
					return err
				}
			}

			if err := app.Console.ReorderCategories(cmd.Context(), vendorID, ids); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Reordered %d categories\n", len(ids))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <category-id>",
		Aliases: []string{"delete"},
		Short:   "Remove a category; its items stay on the menu",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/menu")
			if err != nil {
				return err
			}

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := app.Console.DeleteCategory(cmd.Context(), vendorID, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed category %d\n", id)
			return nil
		},
	})
}

// addMenuItemCommands adds the category and modifier-group assignments under vendor menu
func addMenuItemCommands(env *Env, cmd *cobra.Command) {
	cmd.AddCommand(&cobra.Command{
		Use:   "set-category <item-id> <category-id|none>",
		Short: "File a menu item under a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/menu")
			if err != nil {
				return err
			}

			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}
			var categoryID int64
			if !strings.EqualFold(args[1], "none") {
				if categoryID, err = parseID(args[1]); err != nil {
					return err
				}
			}

			if err := app.Console.SetItemCategory(cmd.Context(), vendorID, itemID, categoryID); err != nil {
				return err
			}

			if categoryID == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Menu item %d has no category\n", itemID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Menu item %d filed under category %d\n", itemID, categoryID)
			}
			return nil
		},
	})

	groupsCmd := &cobra.Command{
		Use:   "groups <item-id>",
		Short: "List the modifier groups offered on a menu item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/menu")
			if err != nil {
				return err
			}

			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}

			groups, err := app.Console.ItemModifierGroups(cmd.Context(), vendorID, itemID)
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				empty(cmd.OutOrStdout(), "modifier groups")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "ID", "GROUP")
			for _, g := range groups {
				t.row(g.ID, g.Name)
			}
			return t.flush()
		},
	}

	for _, assign := range []bool{true, false} {
		assign := assign
		use, short := "assign <item-id> <group-id>", "Offer a modifier group on a menu item"
		if !assign {
			use, short = "unassign <item-id> <group-id>", "Stop offering a modifier group on a menu item"
		}

		groupsCmd.AddCommand(&cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, vendorID, err := vendorApp(env, cmd, "/vendor/menu")
				if err != nil {
					return err
				}

				itemID, err := parseID(args[0])
				if err != nil {
					return err
				}
				groupID, err := parseID(args[1])
				if err != nil {
					return err
				}

				if assign {
					err = app.Console.AssignModifierGroup(cmd.Context(), vendorID, itemID, groupID)
				} else {
					err = app.Console.UnassignModifierGroup(cmd.Context(), vendorID, itemID, groupID)
				}
				if err != nil {
					return err
				}

				verb := "Assigned"
				if !assign {
					verb = "Unassigned"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s group %d on menu item %d\n", verb, groupID, itemID)
				return nil
			},
		})
	}

	cmd.AddCommand(groupsCmd)
}
