// Package normalize implements the command that shows how raw payee text is normalized.
package normalize

import (
	"fmt"

	"pepedou/budget-nanny/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the normalize command
var Cmd = &cobra.Command{
	Use:   "normalize <payee>...",
	Short: "Show the normalized form of raw payee text",
	Long: `Apply the cleanup and alias rules used during reconciliation to each
argument and print the raw text next to its normalized name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: normalizeFunc,
}

func normalizeFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("application is not initialized")
	}
	n := c.GetNormalizer()
	for _, raw := range args {
		fmt.Fprintf(cmd.OutOrStdout(), "%q -> %q\n", raw, n.Normalize(raw))
	}
	return nil
}
