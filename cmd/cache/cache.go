// Package cache implements commands that inspect and edit the payee decision cache.
package cache

import (
	"fmt"
	"text/tabwriter"

	"pepedou/budget-nanny/cmd/root"
	"pepedou/budget-nanny/internal/container"
	"pepedou/budget-nanny/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the cache command
var Cmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or edit remembered payee decisions",
	Long: `Every payee resolution is remembered by normalized name so the same
bank text is never asked about twice. Use these subcommands to list the
decisions or forget wrong ones.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List remembered decisions",
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

var evictCmd = &cobra.Command{
	Use:   "evict <name>...",
	Short: "Forget the decisions for normalized names",
	Args:  cobra.MinimumNArgs(1),
	RunE:  evictFunc,
}

func init() {
	Cmd.AddCommand(listCmd, evictCmd)
}

func appContainer() (*container.Container, error) {
	c := root.GetContainer()
	if c == nil {
		return nil, fmt.Errorf("application is not initialized")
	}
	return c, nil
}

func listFunc(cmd *cobra.Command, args []string) error {
	c, err := appContainer()
	if err != nil {
		return err
	}
	decisions := c.OpenCache()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPAYEE\tID")
	for _, e := range decisions.Entries() {
		id := "-"
		if e.Payee.HasID() {
			id = e.Payee.ID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Payee.Name, id)
	}
	return w.Flush()
}

func evictFunc(cmd *cobra.Command, args []string) error {
	c, err := appContainer()
	if err != nil {
		return err
	}
	decisions := c.OpenCache()

	var missing []string
	for _, name := range args {
		if decisions.Evict(name) {
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot %q\n", name)
		} else {
			missing = append(missing, name)
		}
	}
	if err := decisions.Flush(); err != nil {
		return err
	}
	c.GetLogger().Info("Evicted cache entries",
		logging.F(logging.FieldCount, len(args)-len(missing)),
		logging.F(logging.FieldFile, c.GetDecisionStore().Path()))

	if len(missing) > 0 {
		return fmt.Errorf("no cached decision for %q", missing)
	}
	return nil
}
