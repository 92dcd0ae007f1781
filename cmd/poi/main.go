// poi is a set of batch tools for building a points-of-interest directory.
//
//	poi fetch --config poi.yaml
//	poi categorize --input locations.csv --output categorized_locations.csv
//	poi pictures --input short.csv --folder pics --output location_pictures.xlsx
//	poi status --input categorized_locations.csv --output location_status_checked.csv
//	poi emit-geojson wayne_county_poi_20240601_120000.csv
//	poi runs --database poi.db
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/whosonfirst/go-poi-directory/config"
	"github.com/whosonfirst/go-poi-directory/emitter"
	"github.com/whosonfirst/go-poi-directory/google"
	"github.com/whosonfirst/go-poi-directory/metrics"
	"github.com/whosonfirst/go-poi-directory/store"
	"github.com/whosonfirst/go-poi-directory/writer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	config_path      string
	env_file         string
	verbose          bool
	database_path    string
	metrics_textfile string

	cfg    *config.Config
	logger *zap.Logger
	stats  *metrics.Metrics
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd().ExecuteContext(ctx)

	if err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {

	root := &cobra.Command{
		Use:          "poi",
		Short:        "Batch tools for building a points-of-interest directory",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {

			zap_cfg := zap.NewProductionConfig()

			if verbose {
				zap_cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}

			l, err := zap_cfg.Build()

			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			logger = l

			err = config.LoadEnvFile(env_file)

			if err != nil {
				return err
			}

			c, err := config.Load(config_path)

			if err != nil {
				return err
			}

			if database_path != "" {
				c.Database = database_path
			}

			if metrics_textfile != "" {
				c.MetricsTextfile = metrics_textfile
			}

			cfg = c
			stats = metrics.New()

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {

			defer logger.Sync()

			if cfg.MetricsTextfile == "" {
				return nil
			}

			return stats.WriteTextfile(cfg.MetricsTextfile)
		},
	}

	root.PersistentFlags().StringVar(&config_path, "config", "", "Path to a YAML config file.")
	root.PersistentFlags().StringVar(&env_file, "env-file", ".env", "Optional dotenv file read before the environment. Missing files are ignored.")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging.")
	root.PersistentFlags().StringVar(&database_path, "database", "", "Optional SQLite database used to record each run.")
	root.PersistentFlags().StringVar(&metrics_textfile, "metrics-textfile", "", "Optional path to write Prometheus metrics to when the run completes.")

	root.AddCommand(fetchCmd())
	root.AddCommand(categorizeCmd())
	root.AddCommand(picturesCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(emitGeoJSONCmd())
	root.AddCommand(runsCmd())
	root.AddCommand(schemesCmd())

	return root
}

// newPlacesClient returns a Places API client configured from the loaded config.
func newPlacesClient() (*google.Client, error) {

	return google.NewClient(&google.ClientOptions{
		APIKey:     cfg.Google.APIKey,
		BaseURL:    cfg.Google.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Google.Timeout},
		Logger:     logger,
		Metrics:    stats,
	})
}

// openStore returns the run log if one is configured, otherwise nil.
func openStore(ctx context.Context) (*store.Store, error) {

	if cfg.Database == "" {
		return nil, nil
	}

	return store.Open(ctx, cfg.Database)
}

// copyRows streams every row from 'input' through 'transform' to 'output'. The output columns are
// derived from the input header by 'columns'. Rows for which 'transform' returns nil are skipped.
// Unreadable rows are logged and skipped.
func copyRows(ctx context.Context, input string, output string, columns func([]string) []string, transform func(map[string]string) (map[string]string, error)) (int, error) {

	e, err := emitter.NewEmitter(ctx, input)

	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", input, err)
	}

	defer e.Close()

	wr, err := writer.NewWriter(ctx, output, columns(e.Fieldnames()))

	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", output, err)
	}

	count := 0

	for row, err := range e.Emit(ctx) {

		if err != nil {

			if ctx.Err() != nil {
				wr.Close()
				return count, ctx.Err()
			}

			logger.Warn("Failed to read row", zap.String("input", input), zap.Error(err))
			continue
		}

		out, err := transform(row)

		if err != nil {
			wr.Close()
			return count, err
		}

		if out == nil {
			continue
		}

		err = wr.WriteRow(ctx, out)

		if err != nil {
			wr.Close()
			return count, fmt.Errorf("failed to write %s: %w", output, err)
		}

		count += 1
	}

	err = wr.Close()

	if err != nil {
		return count, fmt.Errorf("failed to close %s: %w", output, err)
	}

	return count, nil
}

func schemesCmd() *cobra.Command {

	return &cobra.Command{
		Use:   "schemes",
		Short: "List the registered input and output URI schemes",
		RunE: func(cmd *cobra.Command, args []string) error {

			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "inputs:")

			for _, s := range emitter.EmitterSchemes() {
				fmt.Fprintf(out, "  %s\n", s)
			}

			fmt.Fprintln(out, "outputs:")

			for _, s := range writer.WriterSchemes() {
				fmt.Fprintf(out, "  %s\n", s)
			}

			return nil
		},
	}
}
