package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/odg-delivery/console/internal/console"
	"github.com/odg-delivery/console/internal/events"
	"github.com/odg-delivery/console/internal/storage"
	"github.com/odg-delivery/console/internal/watch"
	"github.com/spf13/cobra"
)

// NewVendorCmd creates the vendor command group
func NewVendorCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "Manage your kitchen: orders, menu, storefront and sales",
	}

	cmd.AddCommand(newVendorsCmd(env))
	cmd.AddCommand(newUseVendorCmd(env))
	cmd.AddCommand(newVendorOrdersCmd(env))
	cmd.AddCommand(newOrderStatusCmd(env))
	cmd.AddCommand(newMenuCmd(env))
	cmd.AddCommand(newStatsCmd(env))
	cmd.AddCommand(newRatingsCmd(env))
	cmd.AddCommand(newCategoriesCmd(env))
	cmd.AddCommand(newProfileCmd(env))
	cmd.AddCommand(newBankCmd(env))
	cmd.AddCommand(newHoursCmd(env))
	cmd.AddCommand(newBrandingCmd(env))
	cmd.AddCommand(newModifiersCmd(env))
	cmd.AddCommand(newEarningsCmd(env))
	cmd.AddCommand(newTransactionsCmd(env))
	cmd.AddCommand(newVendorSupportCmd(env))

	return cmd
}

// vendorApp returns the App and the vendor to act on, after the guard
func vendorApp(env *Env, cmd *cobra.Command, path string) (*App, int64, error) {
	app, err := guarded(env, cmd, path)
	if err != nil {
		return nil, 0, err
	}
	id, err := app.VendorID(cmd)
	if err != nil {
		return nil, 0, err
	}
	return app, id, nil
}

func newVendorsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the vendors this account can manage",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/vendor")
			if err != nil {
				return err
			}

			vendors, err := app.Console.ListVendors(cmd.Context())
			if err != nil {
				return err
			}
			if len(vendors) == 0 {
				empty(cmd.OutOrStdout(), "vendors")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "ID", "NAME")
			for _, v := range vendors {
				t.row(v.ID, v.Name)
			}
			return t.flush()
		},
	}
}

func newUseVendorCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "use <vendor-id>",
		Short: "Remember which vendor later commands act on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/vendor")
			if err != nil {
				return err
			}

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := app.Store.Set(storage.KeyVendorID, strconv.FormatInt(id, 10)); err != nil {
				return fmt.Errorf("failed to save vendor id: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Using vendor %d\n", id)
			return nil
		},
	}
}

func newVendorOrdersCmd(env *Env) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show the order queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/orders")
			if err != nil {
				return err
			}

			if follow {
				return watchOrders(cmd, app, vendorID)
			}

			orders, err := app.Console.VendorOrders(cmd.Context(), vendorID)
			if err != nil {
				return err
			}
			return printVendorOrders(cmd.OutOrStdout(), orders)
		},
	}

	cmd.Flags().BoolVarP(&follow, "watch", "w", false, "Keep refreshing on a schedule and on live order updates")

	return cmd
}

// watchOrders reprints the queue on every poll and on each order_status
// event until interrupted. Without a live stream it falls back to polling.
func watchOrders(cmd *cobra.Command, app *App, vendorID int64) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	var mu sync.Mutex

	refresher := watch.New(app.Config.API.PollInterval, func(ctx context.Context) error {
		orders, err := app.Console.VendorOrders(ctx, vendorID)
		if err != nil {
			return err
		}

		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "\nOrders for vendor %d at %s\n\n", vendorID, app.Now().Format(time.Kitchen))
		return printVendorOrders(out, orders)
	}, app.Logger)

	if err := refresher.Start(ctx); err != nil {
		return err
	}
	defer refresher.Stop()

	stream, err := events.Subscribe(ctx, app.Client, vendorID, app.Logger)
	if err != nil {
		app.Logger.Warn().Err(err).Msg("Live updates unavailable, polling only")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-stream:
			if !ok {
				app.Logger.Warn().Msg("Live updates ended, polling only")
				stream = nil
				continue
			}
			if msg.Type == events.TypeOrderStatus {
				refresher.Trigger()
			}
		}
	}
}

func printVendorOrders(out io.Writer, orders []console.VendorOrder) error {
	if len(orders) == 0 {
		empty(out, "orders")
		return nil
	}

	t := newTable(out, "ID", "STATUS", "TOTAL", "CUSTOMER", "PHONE", "CREATED AT")
	for _, o := range orders {
		phone := o.StudentPhone
		if phone == "" {
			phone = "-"
		}
		t.row(o.ID, o.Status, console.FormatCents(o.TotalCents), o.Customer(), phone, o.CreatedAt)
	}
	return t.flush()
}

func newOrderStatusCmd(env *Env) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "order-status <order-id> <preparing|ready|completed|cancelled>",
		Short: "Move an order to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/orders")
			if err != nil {
				return err
			}

			orderID, err := parseID(args[0])
			if err != nil {
				return err
			}
			status := strings.ToLower(args[1])

			if err := app.Console.UpdateOrderStatus(cmd.Context(), vendorID, orderID, status, reason); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Order %d is now %s\n", orderID, status)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Reason shown to the customer (cancelled only)")

	return cmd
}

// menuFlags are shared by menu add and menu edit
type menuFlags struct {
	name, description, price, image string
	unavailable                     bool
}

func (f *menuFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Item name")
	cmd.Flags().StringVar(&f.description, "description", "", "Item description")
	cmd.Flags().StringVar(&f.price, "price", "", "Price, e.g. 1,500.00")
	cmd.Flags().StringVar(&f.image, "image", "", "Image URL")
	cmd.Flags().BoolVar(&f.unavailable, "unavailable", false, "Hide the item from customers")
}

// apply overlays the flags that were set on req
func (f *menuFlags) apply(cmd *cobra.Command, req *console.MenuItemRequest) error {
	changed := cmd.Flags().Changed

	if changed("name") {
		req.Name = strings.TrimSpace(f.name)
	}
	if changed("description") {
		req.Description = optional(f.description)
	}
	if changed("image") {
		req.ImageURL = optional(f.image)
	}
	if changed("price") {
		cents, err := console.ParsePrice(f.price)
		if err != nil {
			return err
		}
		req.PriceCents = cents
	}
	if changed("unavailable") {
		req.IsAvailable = !f.unavailable
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func newMenuCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "List menu items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/menu")
			if err != nil {
				return err
			}

			items, err := app.Console.Menu(cmd.Context(), vendorID)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				empty(cmd.OutOrStdout(), "menu items")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "ID", "NAME", "PRICE", "AVAILABLE", "DESCRIPTION")
			for _, it := range items {
				t.row(it.ID, it.Name, console.FormatCents(it.PriceCents), yesNo(it.Available()), orDash(it.Description))
			}
			return t.flush()
		},
	}

	var add menuFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a menu item",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/menu")
			if err != nil {
				return err
			}

			req := console.MenuItemRequest{IsAvailable: true}
			if err := add.apply(cmd, &req); err != nil {
				return err
			}

			if err := app.Console.CreateMenuItem(cmd.Context(), vendorID, req); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s at %s\n", req.Name, console.FormatCents(req.PriceCents))
			return nil
		},
	}
	add.register(addCmd)
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("price")

	var edit menuFlags
	editCmd := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "Change a menu item; unset flags keep their current value",
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

			items, err := app.Console.Menu(cmd.Context(), vendorID)
			if err != nil {
				return err
			}

			var req *console.MenuItemRequest
			for _, it := range items {
				if it.ID == itemID {
					req = &console.MenuItemRequest{
						Name:        it.Name,
						Description: it.Description,
						PriceCents:  it.PriceCents,
						ImageURL:    it.ImageURL,
						IsAvailable: it.Available(),
					}
					break
				}
			}
			if req == nil {
				return fmt.Errorf("menu item %d not found", itemID)
			}

			if err := edit.apply(cmd, req); err != nil {
				return err
			}

			if err := app.Console.UpdateMenuItem(cmd.Context(), vendorID, itemID, *req); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated menu item %d\n", itemID)
			return nil
		},
	}
	edit.register(editCmd)

	rmCmd := &cobra.Command{
		Use:     "rm <item-id>",
		Aliases: []string{"delete"},
		Short:   "Remove a menu item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/menu")
			if err != nil {
				return err
			}

			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := app.Console.DeleteMenuItem(cmd.Context(), vendorID, itemID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed menu item %d\n", itemID)
			return nil
		},
	}

	cmd.AddCommand(addCmd, editCmd, rmCmd)
	addMenuItemCommands(env, cmd)

	return cmd
}

func newStatsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show sales totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor")
			if err != nil {
				return err
			}

			stats, err := app.Console.Stats(cmd.Context(), vendorID)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "METRIC", "VALUE")
			t.row("Orders", stats.OrdersCount)
			t.row("Gross", console.FormatCents(stats.GrossCents))
			t.row("Completed", console.FormatCents(stats.CompletedCents))
			t.row("Orders today", stats.TodayOrders)
			t.row("Sales today", console.FormatCents(stats.TodayCents))
			return t.flush()
		},
	}
}

func newRatingsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "ratings",
		Short: "Show customer ratings",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor")
			if err != nil {
				return err
			}

			ratings, err := app.Console.Ratings(cmd.Context(), vendorID)
			if err != nil {
				return err
			}
			if len(ratings) == 0 {
				empty(cmd.OutOrStdout(), "ratings")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "RATING", "FROM", "COMMENT")
			for _, r := range ratings {
				t.row(strings.Repeat("★", r.Rating), r.Name, orDash(r.Comment))
			}
			return t.flush()
		},
	}
}

func newCategoriesCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List menu categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/menu")
			if err != nil {
				return err
			}

			categories, err := app.Console.Categories(cmd.Context(), vendorID)
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				empty(cmd.OutOrStdout(), "categories")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "ID", "NAME", "ORDER")
			for _, c := range categories {
				t.row(c.ID, c.Name, c.SortIndex)
			}
			return t.flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a menu category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, vendorID, err := vendorApp(env, cmd, "/vendor/menu")
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			if err := app.Console.CreateCategory(cmd.Context(), vendorID, name); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Category %q created\n", name)
			return nil
		},
	})
	addCategoryCommands(env, cmd)

	return cmd
}
