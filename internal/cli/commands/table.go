package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

// table writes aligned rows under an underlined header
type table struct {
	w *tabwriter.Writer
}

func newTable(out io.Writer, headers ...string) *table {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	lines := make([]string, len(headers))
	for i, h := range headers {
		lines[i] = strings.Repeat("─", utf8.RuneCountInString(h))
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	fmt.Fprintln(w, strings.Join(lines, "\t"))

	return &table{w: w}
}

func (t *table) row(cells ...any) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(t.w, strings.Join(parts, "\t"))
}

func (t *table) flush() error {
	return t.w.Flush()
}

// orDash renders optional values
func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// guarded returns the App after checking that the session may open path
func guarded(env *Env, cmd *cobra.Command, path string) (*App, error) {
	app, err := env.App(cmd)
	if err != nil {
		return nil, err
	}
	if err := app.Guard(path); err != nil {
		return nil, err
	}
	return app, nil
}

func empty(out io.Writer, what string) {
	fmt.Fprintf(out, "No %s found.\n", what)
}
