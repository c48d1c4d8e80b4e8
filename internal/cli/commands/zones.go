package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newZonesCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Show universities, campuses and delivery zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/zones")
			if err != nil {
				return err
			}

			geo, err := app.Console.Geography(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(geo.Universities) == 0 {
				empty(out, "universities")
				return nil
			}

			for _, u := range geo.Universities {
				fmt.Fprintf(out, "%s (#%d)\n", u.Name, u.ID)
				for _, c := range geo.CampusesOf(u.ID) {
					fmt.Fprintf(out, "  %s (#%d)\n", c.Name, c.ID)
					zones := geo.ZonesOf(c.ID)
					if len(zones) == 0 {
						fmt.Fprintln(out, "    (no zones)")
						continue
					}
					for _, z := range zones {
						fmt.Fprintf(out, "    - %s (#%d)\n", z.Name, z.ID)
					}
				}
			}
			return nil
		},
	}

	var universityID, campusID int64

	addUniversity := &cobra.Command{
		Use:   "add-university <name>",
		Short: "Create a university",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/zones")
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			if err := app.Console.CreateUniversity(cmd.Context(), name); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ University %q created\n", name)
			return nil
		},
	}

	addCampus := &cobra.Command{
		Use:   "add-campus <name>",
		Short: "Create a campus under a university",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/zones")
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			if err := app.Console.CreateCampus(cmd.Context(), universityID, name); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Campus %q created\n", name)
			return nil
		},
	}
	addCampus.Flags().Int64Var(&universityID, "university", 0, "University ID")
	_ = addCampus.MarkFlagRequired("university")

	addZone := &cobra.Command{
		Use:   "add-zone <name>",
		Short: "Create a delivery zone under a campus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := guarded(env, cmd, "/admin/zones")
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			if err := app.Console.CreateZone(cmd.Context(), campusID, name); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Zone %q created\n", name)
			return nil
		},
	}
	addZone.Flags().Int64Var(&campusID, "campus", 0, "Campus ID")
	_ = addZone.MarkFlagRequired("campus")

	cmd.AddCommand(addUniversity, addCampus, addZone)

	return cmd
}
