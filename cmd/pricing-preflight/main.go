package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rentkit/rentkit-backend/internal/preflight"
	"github.com/rentkit/rentkit-backend/pkg/config"
	"github.com/rentkit/rentkit-backend/pkg/db"
	"github.com/rentkit/rentkit-backend/pkg/logger"
	"github.com/rentkit/rentkit-backend/pkg/metrics"
)

const jobName = "pricing_preflight"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "pricing-preflight"})

	_ = godotenv.Load()

	storeID := flag.String("store-id", "", "restrict the scan to one store")
	productID := flag.String("product-id", "", "restrict the scan to one product")
	limit := flag.Int("limit", 0, "cap the number of products scanned (0 = no cap)")
	previewProducts := flag.Int("preview-products", 0, "products to include full tier previews for (0 = config default)")
	outputJSON := flag.String("output-json", "", "write the full report as JSON to this path")
	failOnBlockers := flag.Bool("fail-on-blockers", false, "exit 1 when any blocker-severity issue is found")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "pricing-preflight",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	opts := preflight.Options{
		Limit:           *limit,
		PreviewProducts: *previewProducts,
	}
	if opts.PreviewProducts <= 0 {
		opts.PreviewProducts = cfg.Preflight.PreviewProducts
	}
	if *storeID != "" {
		id, parseErr := uuid.Parse(*storeID)
		requireResource(ctx, logg, "store-id flag", parseErr)
		opts.StoreID = &id
	}
	if *productID != "" {
		id, parseErr := uuid.Parse(*productID)
		requireResource(ctx, logg, "product-id flag", parseErr)
		opts.ProductID = &id
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	jobMetrics := metrics.NewBatchJobMetrics(prometheus.DefaultRegisterer)

	scanner, err := preflight.NewScanner(preflight.NewRepository(dbClient.DB()), cfg.Preflight.TierChunkSize)
	requireResource(ctx, logg, "scanner", err)

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "job": jobName})
	logg.Info(ctx, "preflight scan starting")

	started := time.Now()
	report, err := scanner.Run(ctx, opts)
	jobMetrics.ObserveDuration(jobName, time.Since(started))
	if err != nil {
		jobMetrics.IncFailure(jobName)
		logg.Error(ctx, "preflight scan failed", err)
		os.Exit(1)
	}
	jobMetrics.IncSuccess(jobName)
	jobMetrics.AddProcessed(jobName, report.Counters.ProductsScanned)
	jobMetrics.AddFlagged(jobName, report.Counters.BlockerCount+report.Counters.WarningCount)

	printSummary(report)

	if *outputJSON != "" {
		if err := writeReport(*outputJSON, report); err != nil {
			logg.Error(ctx, "failed to write report", err)
			os.Exit(1)
		}
		fmt.Println("report written to", *outputJSON)
	}

	if *failOnBlockers && report.HasBlockers() {
		os.Exit(1)
	}
}

func printSummary(report *preflight.Report) {
	c := report.Counters
	fmt.Printf("products scanned:  %d\n", c.ProductsScanned)
	fmt.Printf("  ready:           %d\n", c.ProductsReady)
	fmt.Printf("  with warnings:   %d\n", c.ProductsWithWarnings)
	fmt.Printf("  with blockers:   %d\n", c.ProductsWithBlockers)
	fmt.Printf("tiers scanned:     %d (computed %d, skipped %d)\n", c.TiersScanned, c.TiersComputed, c.TiersSkipped)
	fmt.Printf("issues:            %d blockers, %d warnings\n", c.BlockerCount, c.WarningCount)

	for _, issue := range report.Issues {
		fmt.Printf("  [%s] %s product=%s: %s\n", issue.Severity, issue.Code, issue.ProductID, issue.Message)
	}

	for _, preview := range report.Previews {
		fmt.Printf("preview %s (%s):\n", preview.Name, preview.ProductID)
		for _, tier := range preview.Tiers {
			fmt.Printf("  period=%dmin price=%s (min %d, %s%% off)\n",
				tier.Period, tier.Price, tier.MinDuration, tier.DiscountPercent)
		}
	}
}

func writeReport(path string, report *preflight.Report) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
