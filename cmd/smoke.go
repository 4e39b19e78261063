package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/okian/playmatch/internal/adapters/http/client"
	"github.com/okian/playmatch/internal/smoke"
)

// Default smoke configuration constants.
const (
	defaultSmokeRepeat      = 2
	defaultSmokeConcurrency = 4
	defaultSmokeTimeout     = 2 * time.Minute
	defaultRequestTimeout   = 30 * time.Second
)

// ErrSmokeFailed is returned when a smoke run finds failures or inconsistencies.
var ErrSmokeFailed = errors.New("smoke run failed")

func newSmokeCmd() *cobra.Command {
	var (
		server      string
		families    []string
		repeat      int
		concurrency int
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Check a running server by requesting families repeatedly",
		Long: `Smoke checks the server health, requests each family --repeat times with
bounded concurrency and verifies that repeated requests return the same ranking and team.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := setup(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c := client.New(server,
				client.WithRoutePrefix(cfg.RoutePrefix),
				client.WithTimeout(max(cfg.OracleTimeout()+writeTimeoutSlack, defaultRequestTimeout)),
			)
			report, err := smoke.Run(ctx, smoke.Config{
				Families:    families,
				Repeat:      repeat,
				Concurrency: concurrency,
				Timeout:     timeout,
			}, c)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			if !report.OK() {
				return ErrSmokeFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:9080", "Base URL of the server")
	cmd.Flags().StringSliceVar(&families, "families", nil, "Family ids to request (comma-separated)")
	cmd.Flags().IntVar(&repeat, "repeat", defaultSmokeRepeat, "Requests per family")
	cmd.Flags().IntVar(&concurrency, "concurrency", defaultSmokeConcurrency, "Maximum in-flight requests")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultSmokeTimeout, "Overall run timeout")
	_ = cmd.MarkFlagRequired("families")
	return cmd
}

func printReport(w io.Writer, report smoke.Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Family", "Runs", "Failures", "School IDs", "Team", "Consistent"})
	for _, f := range report.Families {
		team := "-"
		if f.TeamID != nil {
			team = *f.TeamID
		}
		table.Append([]string{
			f.FamilyID,
			strconv.Itoa(f.Runs),
			strconv.Itoa(f.Failures),
			strings.Join(f.SchoolIDs, ","),
			team,
			strconv.FormatBool(f.Consistent),
		})
	}
	table.Render()

	for _, f := range report.Families {
		if f.LastError != nil {
			color.New(color.FgRed).Fprintf(w, "%s: %v\n", f.FamilyID, f.LastError)
		}
	}

	summary := fmt.Sprintf("%d requests, %d failures in %s", report.Requests, report.Failures, report.Duration.Round(time.Millisecond))
	if report.OK() {
		color.New(color.FgGreen).Fprintln(w, "PASS "+summary)
		return
	}
	color.New(color.FgRed).Fprintln(w, "FAIL "+summary)
}
