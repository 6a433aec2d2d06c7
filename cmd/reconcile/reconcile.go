// Package reconcile implements the command that resolves payees of a bank
// export and writes budget-ready transactions.
package reconcile

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"pepedou/budget-nanny/cmd/root"
	"pepedou/budget-nanny/internal/pipeline"
	"pepedou/budget-nanny/internal/prompt"
	"pepedou/budget-nanny/internal/resolver"
	"pepedou/budget-nanny/internal/validation"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	inputFile  string
	outputFile string
	payeesFile string
)

// Cmd represents the reconcile command
var Cmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Resolve payees of a bank CSV export and write import-ready transactions",
	Long: `Resolve the payee of every transaction in a bank CSV export (account, date,
payee, outflow, inflow) against the budget's payee directory. Known names are
answered from the decision cache, close matches are accepted or confirmed, and
anything else is asked interactively. Each transaction gets a deterministic
import id so re-imports are detected as duplicates.`,
	RunE: reconcileFunc,
}

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Bank CSV export to reconcile")
	Cmd.Flags().StringVarP(&outputFile, "output", "o", "-", "Output CSV file (- for stdout)")
	Cmd.Flags().StringVarP(&payeesFile, "payees", "p", "", "Payee directory YAML (default: store.payees_file)")
	_ = Cmd.MarkFlagRequired("input")
}

func reconcileFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("application is not initialized")
	}
	if err := validation.InputFile(inputFile); err != nil {
		return err
	}
	if err := validation.OutputFile(outputFile, inputFile); err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	terminal := prompt.NewTerminal(cmd.InOrStdin(), cmd.ErrOrStderr(), c.GetMatcher())
	defer terminal.Close()
	p, err := c.NewPipeline(terminal)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx,
		c.NewSource(inputFile),
		c.NewPayeeDirectory(payeesFile),
		c.NewSink(outputFile, cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	printSummary(cmd.ErrOrStderr(), result)
	return nil
}

func printSummary(w io.Writer, result *pipeline.Result) {
	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(w, "Reconciled %d transaction(s) in %s\n", len(result.Resolved), result.Elapsed.Round(time.Millisecond))

	states := make([]string, 0, len(result.States))
	for state := range result.States {
		states = append(states, string(state))
	}
	sort.Strings(states)
	for _, state := range states {
		fmt.Fprintf(w, "  %-14s %d\n", state, result.States[resolver.State(state)])
	}

	if len(result.NewPayees) > 0 {
		_, _ = color.New(color.FgGreen).Fprintf(w, "New payees (%d):\n", len(result.NewPayees))
		for _, payee := range result.NewPayees {
			fmt.Fprintf(w, "  %s\n", payee.Name)
		}
	}
	if len(result.Skipped) > 0 {
		_, _ = color.New(color.FgYellow).Fprintf(w, "Skipped (%d):\n", len(result.Skipped))
		for _, skipped := range result.Skipped {
			fmt.Fprintf(w, "  %v\n", skipped)
		}
	}
	if result.FlushErr != nil {
		_, _ = color.New(color.FgRed).Fprintf(w, "Decisions were not saved: %v\n", result.FlushErr)
	}
}
