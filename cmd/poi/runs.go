package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {

	var limit int
	var run_id string
	var history string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the runs recorded in the SQLite run log",
		Long: `Inspect the runs recorded in the SQLite run log.

With no flags the most recent runs are listed. --run shows the places and failures recorded for
one run. --history shows every recorded status check for a location name.`,
		RunE: func(cmd *cobra.Command, args []string) error {

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			run_log, err := openStore(ctx)

			if err != nil {
				return err
			}

			if run_log == nil {
				return fmt.Errorf("no database configured, set --database or database in the config")
			}

			defer run_log.Close()

			switch {
			case history != "":

				checks, err := run_log.StatusHistory(ctx, history)

				if err != nil {
					return err
				}

				for _, c := range checks {
					fmt.Fprintf(out, "%s\t%s\t%s\n", c.CheckedAt.Format(time.DateTime), c.Status, c.RunID)
				}

			case run_id != "":

				places, err := run_log.Places(ctx, run_id)

				if err != nil {
					return err
				}

				for _, pl := range places {
					fmt.Fprintf(out, "%s\t%s\t%s\n", pl.Category, pl.Name, pl.FullAddress)
				}

				failures, err := run_log.Failures(ctx, run_id)

				if err != nil {
					return err
				}

				tags := make([]string, 0, len(failures))

				for tag := range failures {
					tags = append(tags, tag)
				}

				slices.Sort(tags)

				for _, tag := range tags {
					fmt.Fprintf(out, "failed\t%s\t%d\n", tag, failures[tag])
				}

			default:

				runs, err := run_log.Runs(ctx, limit)

				if err != nil {
					return err
				}

				for _, r := range runs {

					finished := "unfinished"

					if !r.FinishedAt.IsZero() {
						finished = r.FinishedAt.Format(time.DateTime)
					}

					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%d\t%d\n", r.ID, r.Tool, r.StartedAt.Format(time.DateTime), finished, r.Succeeded, r.Failed)
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to list.")
	cmd.Flags().StringVar(&run_id, "run", "", "Show the places and failures recorded for this run ID.")
	cmd.Flags().StringVar(&history, "history", "", "Show the status check history for this location name.")

	return cmd
}
