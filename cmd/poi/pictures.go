package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/whosonfirst/go-poi-directory/pictures"
	"go.uber.org/zap"
)

func picturesCmd() *cobra.Command {

	var input string
	var folder string
	var output string

	cmd := &cobra.Command{
		Use:   "pictures",
		Short: "List the first two pictures found for every location",
		RunE: func(cmd *cobra.Command, args []string) error {

			ctx := cmd.Context()
			opts := cfg.Pictures

			if input != "" {
				opts.Input = input
			}

			if folder != "" {
				opts.Folder = folder
			}

			if output != "" {
				opts.Output = output
			}

			m, err := pictures.NewMatcherFromPath(opts.Folder)

			if err != nil {
				return err
			}

			transform := func(row map[string]string) (map[string]string, error) {

				location := row[opts.NameColumn]

				if strings.TrimSpace(location) == "" {
					return nil, nil
				}

				matches, err := m.Find(location)

				if err != nil {
					return nil, err
				}

				tag := "found"

				if len(matches) == 0 {
					tag = "missing"
					logger.Debug("No pictures found", zap.String("location", location))
				}

				stats.ObserveRow("pictures", tag)
				return pictures.Row(location, matches), nil
			}

			columns := func([]string) []string {
				return pictures.Fieldnames
			}

			count, err := copyRows(ctx, opts.Input, opts.Output, columns, transform)

			if err != nil {
				return err
			}

			logger.Info("Picture matching complete", zap.String("output", opts.Output), zap.Int("count", count))
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created %s with %d entries.\n", opts.Output, count)

			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Input CSV file or emitter URI. Defaults to pictures.input from the config.")
	cmd.Flags().StringVar(&folder, "folder", "", "Folder containing the pictures. Defaults to pictures.folder from the config.")
	cmd.Flags().StringVar(&output, "output", "", "Output file or writer URI. Defaults to pictures.output from the config.")

	return cmd
}
