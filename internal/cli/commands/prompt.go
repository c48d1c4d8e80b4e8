package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/odg-delivery/console/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readSecret returns flagValue, falling back to envKey, then to a hidden
// terminal prompt when stdin is interactive.
func readSecret(cmd *cobra.Command, flagValue, envKey, label string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envKey); v != "" {
		return v, nil
	}

	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("%s is required in non-interactive mode (use the flag or %s env var)", label, envKey)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(cmd.OutOrStdout()) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", label, err)
	}
	return string(b), nil
}

// promptRole asks the user to pick one of the self-selectable roles
func promptRole() (auth.Role, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("role is required in non-interactive mode (odg select-role <student|rider>)")
	}

	roles := []auth.Role{auth.RoleStudent, auth.RoleRider}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "✓ Role: {{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     "Choose how you will use ODG",
		Items:     roles,
		Templates: templates,
		Size:      len(roles),
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("role selection cancelled: %w", err)
	}

	return roles[idx], nil
}
