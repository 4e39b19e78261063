package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/okian/playmatch/internal/adapters/http/client"
	"github.com/okian/playmatch/internal/domain/types"
)

type recommender interface {
	Recommend(ctx context.Context, familyID string) (types.Recommendation, error)
}

func newRecommendCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "recommend <family_id>...",
		Short: "Run the recommendation pipeline for one or more families",
		Long: `Recommend runs the pipeline in-process against the configured store and oracle,
or against a running server when --server is set, and prints the ranked schools.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := setup(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var rec recommender
			if server != "" {
				rec = client.New(server, client.WithRoutePrefix(cfg.RoutePrefix))
			} else {
				svc, err := buildService(ctx, cfg)
				if err != nil {
					return err
				}
				defer svc.Stop()
				rec = svc
			}
			return recommendAll(ctx, cmd.OutOrStdout(), rec, args)
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "Base URL of a running server (default: run in-process)")
	return cmd
}

// recommendAll prints a result per family and fails if any family failed.
func recommendAll(ctx context.Context, w io.Writer, rec recommender, familyIDs []string) error {
	var errs []error
	for _, id := range familyIDs {
		res, err := rec.Recommend(ctx, id)
		if err != nil {
			color.New(color.FgRed).Fprintf(w, "%s: %v\n", id, err)
			errs = append(errs, fmt.Errorf("family %s: %w", id, err))
			continue
		}
		printRecommendation(w, res)
	}
	return errors.Join(errs...)
}

func printRecommendation(w io.Writer, res types.Recommendation) {
	color.New(color.FgCyan).Fprintf(w, "\nFamily %s\n", res.FamilyID)
	switch {
	case res.SelectedTeamID != nil:
		color.New(color.FgGreen).Fprintf(w, "Assigned team: %s\n", *res.SelectedTeamID)
	case res.Reason != "":
		color.New(color.FgYellow).Fprintf(w, "No team assigned: %s\n", res.Reason)
	default:
		color.New(color.FgYellow).Fprintln(w, "No team assigned")
	}

	names := make(map[string]string, len(res.Recommendations))
	for _, s := range res.Recommendations {
		names[s.ID] = s.Name
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "School ID", "Name"})
	for i, id := range res.SchoolIDs {
		table.Append([]string{strconv.Itoa(i + 1), id, names[id]})
	}
	table.Render()
}
