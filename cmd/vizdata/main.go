// Command vizdata derives the visualization datasets from local or remote
// sources without running the service, and checks snapshot fixtures.
//
// Usage:
//
//	vizdata recipes --source data/one-year-of-recipes.csv
//	vizdata counties --worship data/places_of_worship.csv \
//	  --population data/popData.csv --topology data/counties-albers-10m.json
//	vizdata snapshot --recipes ... --worship ... --out data/mock/snapshot.json
//	vizdata validate --snapshot data/mock/snapshot.json
//	vizdata region TX
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/vizdata-etl-service/internal/adapter/fetch"
	"github.com/couchcryptid/vizdata-etl-service/internal/config"
	"github.com/couchcryptid/vizdata-etl-service/internal/observability"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// cli holds the global flags and the dependencies built from them.
type cli struct {
	format  string
	out     string
	verbose bool
	timeout time.Duration

	logger  *slog.Logger
	metrics *observability.Metrics
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "vizdata",
		Short:         "Derive recipe network and county choropleth datasets",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.format != "json" && c.format != "yaml" {
				return fmt.Errorf("unsupported --format %q: use json or yaml", c.format)
			}
			// A missing .env file is fine.
			_ = godotenv.Load()

			level := slog.LevelWarn
			if c.verbose {
				level = slog.LevelDebug
			}
			c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			// Metrics are collected but not exported from one-shot commands.
			c.metrics = observability.NewMetricsWithRegistry(prometheus.NewRegistry())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.format, "format", "json", "Output format: json or yaml")
	root.PersistentFlags().StringVarP(&c.out, "out", "o", "", "Write output to a file instead of stdout")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "Per-source fetch timeout")

	root.AddCommand(
		newRecipesCmd(c),
		newCountiesCmd(c),
		newSnapshotCmd(c),
		newTradeCmd(c),
		newRegionCmd(c),
		newValidateCmd(c),
	)
	return root
}

// opener builds a source client. s3:// URIs are available when S3_ENDPOINT
// and credentials are set in the environment.
func (c *cli) opener() (*fetch.Client, error) {
	var s3 *minio.Client
	if settings := config.LoadS3(); settings.Endpoint != "" {
		var err error
		s3, err = fetch.NewS3Client(fetch.S3Config{
			Endpoint:  settings.Endpoint,
			Region:    settings.Region,
			AccessKey: settings.AccessKey,
			SecretKey: settings.SecretKey,
			UseSSL:    settings.UseSSL,
		})
		if err != nil {
			return nil, err
		}
	}
	return fetch.NewClient(c.timeout, s3, c.metrics, c.logger), nil
}

// emit writes v in the selected format to --out or the command's stdout.
func (c *cli) emit(cmd *cobra.Command, v any) error {
	if c.out == "" {
		return encode(cmd.OutOrStdout(), c.format, v)
	}
	f, err := os.Create(c.out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	return writeAndClose(f, c.format, v)
}

// writeAndClose encodes v into w and closes it, reporting the first error.
func writeAndClose(w io.WriteCloser, format string, v any) error {
	if err := encode(w, format, v); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}
