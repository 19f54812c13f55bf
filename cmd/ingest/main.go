// Command ingest is the Wildberries financial report loader CLI.
//
// Usage:
//
//	wb-ingest report --date-from 2024-01-01 --date-to 2024-01-31
//	wb-ingest report --date-from 2024-01-01 --date-to 2024-01-31 --limit 500
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/avoronina/wb-finance-data/internal/config"
	"github.com/avoronina/wb-finance-data/internal/report"
	"github.com/avoronina/wb-finance-data/internal/store"
	"github.com/avoronina/wb-finance-data/internal/wbapi"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "wb-ingest",
		Short:         "Wildberries financial report ingestion CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(reportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func reportCmd() *cobra.Command {
	var (
		dateFrom string
		dateTo   string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Load the supplier report detail for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Dates are validated before any network or storage I/O.
			if err := validateDate(dateFrom); err != nil {
				return err
			}
			if err := validateDate(dateTo); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.RequireToken(); err != nil {
				return err
			}

			pageLimit := cfg.PageLimit
			if limit > 0 {
				pageLimit = limit
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			client := wbapi.NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.RequestTimeout, cfg.RequestsPerMinute, logger)

			st, err := store.Open(cfg.DBPath, cfg.SchemaPath, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			logger.Info("Loading report detail", "date_from", dateFrom, "date_to", dateTo, "page_limit", pageLimit)
			start := time.Now()

			count, err := st.MergeAll(ctx, func(ctx context.Context, fn func(report.RawRow) error) error {
				return client.ForEachReportDetail(ctx, dateFrom, dateTo, pageLimit, fn)
			})
			if err != nil {
				return fmt.Errorf("load report: %w", err)
			}

			logger.Info("Report load finished",
				"unique_rows", count,
				"duration", time.Since(start).Round(time.Millisecond))
			fmt.Printf("Loaded %d unique RRD rows into %s\n", count, cfg.DBPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dateFrom, "date-from", "", "Start date in YYYY-MM-DD")
	cmd.Flags().StringVar(&dateTo, "date-to", "", "End date in YYYY-MM-DD")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size for API pagination (defaults to config)")
	cmd.MarkFlagRequired("date-from")
	cmd.MarkFlagRequired("date-to")
	return cmd
}

func validateDate(value string) error {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("invalid date format %q: use YYYY-MM-DD", value)
	}
	return nil
}
