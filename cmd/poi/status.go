package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/whosonfirst/go-poi-directory/emitter"
	"github.com/whosonfirst/go-poi-directory/status"
	"github.com/whosonfirst/go-poi-directory/store"
	"github.com/whosonfirst/go-poi-directory/writer"
	"go.uber.org/zap"
)

func statusCmd() *cobra.Command {

	var input string
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Re-check the business status of every location in a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {

			ctx := cmd.Context()
			opts := cfg.Status

			if input != "" {
				opts.Input = input
			}

			if output != "" {
				opts.Output = output
			}

			client, err := newPlacesClient()

			if err != nil {
				return err
			}

			checker, err := status.NewChecker(&status.CheckerOptions{
				Finder:        client,
				NameColumn:    opts.NameColumn,
				AddressColumn: opts.AddressColumn,
				RequestDelay:  opts.RequestDelay,
				Logger:        logger,
				Metrics:       stats,
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

				run, err = run_log.StartRun(ctx, "status")

				if err != nil {
					return err
				}
			}

			logger.Info("Starting location status check", zap.String("input", opts.Input), zap.String("output", opts.Output))

			e, err := emitter.NewEmitter(ctx, opts.Input)

			if err != nil {
				return fmt.Errorf("failed to open %s: %w", opts.Input, err)
			}

			defer e.Close()

			fieldnames := writer.AppendColumns(e.Fieldnames(), status.ColumnBusinessStatus, status.ColumnLastChecked, status.ColumnNotes)

			wr, err := writer.NewWriter(ctx, opts.Output, fieldnames)

			if err != nil {
				return fmt.Errorf("failed to create %s: %w", opts.Output, err)
			}

			write := func(row map[string]string) error {
				return wr.WriteRow(ctx, row)
			}

			report, check_err := checker.CheckRows(ctx, e.Emit(ctx), write)

			err = wr.Close()

			if err != nil {
				return fmt.Errorf("failed to close %s: %w", opts.Output, err)
			}

			by_status := make(map[status.BusinessStatus]int)

			for _, res := range report.Results {
				by_status[res.Value.Status] += 1
			}

			for s, count := range by_status {
				logger.Debug("Status total", zap.String("status", string(s)), zap.Int("count", count))
			}

			failed := len(report.Failed())

			if run_log != nil {

				log_ctx := context.WithoutCancel(ctx)

				err = run_log.RecordStatusChecks(log_ctx, run, report)

				if err != nil {
					return err
				}

				err = run_log.FinishRun(log_ctx, run, len(report.Results)-failed, failed)

				if err != nil {
					return err
				}
			}

			if check_err != nil {
				return check_err
			}

			logger.Info("Processing complete", zap.String("output", opts.Output), zap.Int("rows", len(report.Results)), zap.Int("errors", failed))
			fmt.Fprintf(cmd.OutOrStdout(), "Processing complete. Results saved to %s\n", opts.Output)

			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Input CSV file or emitter URI. Defaults to status.input from the config.")
	cmd.Flags().StringVar(&output, "output", "", "Output file or writer URI. Defaults to status.output from the config.")

	return cmd
}
