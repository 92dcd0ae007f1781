package main

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"github.com/whosonfirst/go-poi-directory"
	"github.com/whosonfirst/go-poi-directory/fetcher"
	"github.com/whosonfirst/go-poi-directory/store"
	"github.com/whosonfirst/go-poi-directory/writer"
	"go.uber.org/zap"
)

func fetchCmd() *cobra.Command {

	var output string
	var categories []string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Collect places for every search category from the Google Places API",
		RunE: func(cmd *cobra.Command, args []string) error {

			ctx := cmd.Context()
			opts := cfg.Fetch

			if len(categories) > 0 {
				opts.Categories = categories
			}

			if output != "" {
				opts.Output = output
			}

			if opts.Output == "" {
				opts.Output = fmt.Sprintf("%s_%s.csv", opts.OutputPrefix, time.Now().Format("20060102_150405"))
			}

			client, err := newPlacesClient()

			if err != nil {
				return err
			}

			f, err := fetcher.NewFetcher(&fetcher.FetcherOptions{
				API:         client,
				Area:        opts.Area,
				Center:      orb.Point{opts.Longitude, opts.Latitude},
				Radius:      opts.Radius,
				MaxDistance: opts.MaxDistance,
				PageDelay:   opts.PageDelay,
				RecordDelay: opts.RecordDelay,
				Logger:      logger,
				Metrics:     stats,
			})

			if err != nil {
				return err
			}

			run_log, err := openStore(ctx)

			if err != nil {
				return err
			}

			var run *store.Run

			if run_log != nil {

				defer run_log.Close()

				run, err = run_log.StartRun(ctx, "fetch")

				if err != nil {
					return err
				}
			}

			logger.Info("Starting data collection", zap.String("area", opts.Area), zap.Strings("categories", opts.Categories))

			started := time.Now()
			report, fetch_err := f.Fetch(ctx, opts.Categories)

			failed := report.Failed()
			succeeded := len(report.Results) - len(failed)

			for _, res := range failed {
				logger.Debug("Failed record", zap.String("key", res.Key), zap.String("tag", res.Tag), zap.Error(res.Err))
			}

			// Whatever was collected before a cancellation is still written out and logged.
			err = writePlaces(cmd, opts.Output, report.Succeeded())

			if err != nil {
				return err
			}

			if run_log != nil {

				log_ctx := context.WithoutCancel(ctx)

				err = run_log.RecordPlaces(log_ctx, run, report)

				if err != nil {
					return err
				}

				err = run_log.FinishRun(log_ctx, run, succeeded, len(failed))

				if err != nil {
					return err
				}
			}

			if fetch_err != nil {
				return fetch_err
			}

			logger.Info("Data collection complete",
				zap.String("output", opts.Output),
				zap.Int("records", succeeded),
				zap.Int("failures", len(failed)),
				zap.Duration("elapsed", time.Since(started)))

			fmt.Fprintf(cmd.OutOrStdout(), "Data collection complete. Saved %d records to %s\n", succeeded, opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "Output file or writer URI. Defaults to a timestamped CSV file.")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Google Places type to search for. May be repeated. Defaults to fetch.categories from the config.")

	return cmd
}

func writePlaces(cmd *cobra.Command, output string, places []*directory.Place) error {

	ctx := cmd.Context()

	wr, err := writer.NewWriter(ctx, output, directory.PlaceFieldnames)

	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}

	for _, pl := range places {

		err := wr.WriteRow(ctx, pl.AsRow())

		if err != nil {
			wr.Close()
			return fmt.Errorf("failed to write %s: %w", pl, err)
		}
	}

	return wr.Close()
}
