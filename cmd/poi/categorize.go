package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/whosonfirst/go-poi-directory/category"
	"github.com/whosonfirst/go-poi-directory/writer"
	"go.uber.org/zap"
)

func categorizeCmd() *cobra.Command {

	var input string
	var output string

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Add a directory category column to a locations CSV",
		RunE: func(cmd *cobra.Command, args []string) error {

			ctx := cmd.Context()
			opts := cfg.Categorize

			if input != "" {
				opts.Input = input
			}

			if output != "" {
				opts.Output = output
			}

			counts := make(map[category.Category]int)

			transform := func(row map[string]string) (map[string]string, error) {

				name := row[opts.NameColumn]
				desc := category.Description(row, opts.DescriptionColumn)

				c := category.Categorize(name, desc)
				counts[c] += 1

				stats.ObserveRow("categorize", c.String())

				out := make(map[string]string, len(row)+1)

				for k, v := range row {
					out[k] = v
				}

				out[opts.CategoryColumn] = c.String()
				return out, nil
			}

			columns := func(header []string) []string {
				return writer.AppendColumns(header, opts.CategoryColumn)
			}

			count, err := copyRows(ctx, opts.Input, opts.Output, columns, transform)

			if err != nil {
				return err
			}

			for _, c := range category.All {

				if counts[c] > 0 {
					logger.Debug("Category total", zap.String("category", c.String()), zap.Int("count", counts[c]))
				}
			}

			logger.Info("Categorization complete", zap.String("output", opts.Output), zap.Int("count", count))
			fmt.Fprintf(cmd.OutOrStdout(), "Categorization complete. Saved to '%s'\n", opts.Output)

			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Input CSV file or emitter URI. Defaults to categorize.input from the config.")
	cmd.Flags().StringVar(&output, "output", "", "Output file or writer URI. Defaults to categorize.output from the config.")

	return cmd
}
