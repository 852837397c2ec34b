package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the perfeval command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "perfeval",
		Short: "Performance evaluation scoring service",
		Long: `perfeval aggregates self, primary and secondary evaluations into weighted
scores, grades and review statuses.

  perfeval serve                         Run the HTTP API
  perfeval migrate                       Apply database migrations
  perfeval score --file snapshot.yaml    Score an exported snapshot offline`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newScoreCmd())
	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}
