// Command playmatch serves school and team recommendations for youth
// athletes and offers client-side tools against a running server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

func execute() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "playmatch",
		Short:        "Recommend schools and teams for youth athletes",
		Long:         `Playmatch ranks candidate schools for a family with a Gemini model, picks a team matching the children's interests and records the assignment.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd.ErrOrStderr())
		},
	}
	root.AddCommand(newServeCmd(), newRecommendCmd(), newSmokeCmd())
	return root
}
