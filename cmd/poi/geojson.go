package main

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"github.com/whosonfirst/go-poi-directory"
	"go.uber.org/zap"
)

func emitGeoJSONCmd() *cobra.Command {

	var output string

	cmd := &cobra.Command{
		Use:   "emit-geojson [places.csv ...]",
		Short: "Convert one or more places CSV files into a GeoJSON FeatureCollection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			ctx := cmd.Context()
			fc := geojson.NewFeatureCollection()

			for _, path := range args {

				r, err := os.Open(path)

				if err != nil {
					return err
				}

				var data_r io.Reader = r

				if strings.HasSuffix(path, ".bz2") {
					data_r = bzip2.NewReader(r)
				}

				for pl, err := range directory.EmitPlaces(ctx, data_r) {

					if err != nil {

						if ctx.Err() != nil {
							r.Close()
							return ctx.Err()
						}

						logger.Error("Failed to yield place", zap.String("path", path), zap.Error(err))
						continue
					}

					if !pl.HasCoordinates() {
						logger.Debug("Skipping place without coordinates", zap.String("name", pl.Name))
						stats.ObserveRow("emit-geojson", "skipped")
						continue
					}

					fc.Append(pl.AsFeature())
					stats.ObserveRow("emit-geojson", "ok")
				}

				r.Close()
			}

			body, err := fc.MarshalJSON()

			if err != nil {
				return fmt.Errorf("failed to marshal feature collection: %w", err)
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}

			return os.WriteFile(output, body, 0644)
		},
	}

	cmd.Flags().StringVar(&output, "output", "-", "Path to write the FeatureCollection to. '-' writes to STDOUT.")
	return cmd
}
