package main

import (
	"context"
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
	"github.com/rentkit/rentkit-backend/pkg/enums"
	"github.com/rentkit/rentkit-backend/pkg/logger"
	"github.com/rentkit/rentkit-backend/pkg/metrics"
)

const jobName = "fix_pricing_mode"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "fix-pricing-mode"})

	_ = godotenv.Load()

	apply := flag.Bool("apply", false, "write the planned pricing-mode fixes")
	dryRun := flag.Bool("dry-run", false, "report planned fixes without writing (default)")
	storeID := flag.String("store-id", "", "restrict the fix to one store")
	productID := flag.String("product-id", "", "restrict the fix to one product")
	limit := flag.Int("limit", 0, "cap the number of products scanned (0 = no cap)")
	flag.Parse()

	if *apply && *dryRun {
		fmt.Fprintln(os.Stderr, "--apply and --dry-run are mutually exclusive")
		os.Exit(1)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "fix-pricing-mode",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	opts := preflight.FixOptions{
		Limit: *limit,
		Apply: *apply,
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

	fallback, err := enums.ParsePricingMode(cfg.Pricing.FallbackMode)
	requireResource(ctx, logg, "fallback pricing mode", err)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	repo := preflight.NewRepository(dbClient.DB())
	fixer, err := preflight.NewFixer(repo, repo, repo, fallback)
	requireResource(ctx, logg, "fixer", err)

	jobMetrics := metrics.NewBatchJobMetrics(prometheus.DefaultRegisterer)

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "job": jobName, "apply": *apply})
	logg.Info(ctx, "pricing-mode fix starting")

	started := time.Now()
	report, err := fixer.Run(ctx, opts)
	jobMetrics.ObserveDuration(jobName, time.Since(started))
	if err != nil {
		jobMetrics.IncFailure(jobName)
		logg.Error(ctx, "pricing-mode fix failed", err)
		// a partial apply is safe to retry, corrected rows no longer match
		if report != nil {
			printReport(report)
		}
		os.Exit(1)
	}
	jobMetrics.IncSuccess(jobName)
	jobMetrics.AddProcessed(jobName, report.ProductsScanned)
	jobMetrics.AddFlagged(jobName, report.ProductsInvalid)

	printReport(report)
}

func printReport(report *preflight.FixReport) {
	mode := "dry-run"
	if report.Options.Apply {
		mode = "apply"
	}
	fmt.Printf("mode:              %s\n", mode)
	fmt.Printf("products scanned:  %d\n", report.ProductsScanned)
	fmt.Printf("products invalid:  %d\n", report.ProductsInvalid)
	fmt.Printf("products updated:  %d\n", report.ProductsUpdated)

	for _, fix := range report.Fixes {
		source := "fallback"
		if fix.FromStore {
			source = "store default"
		}
		fmt.Printf("  %s (%s): %q -> %s (%s)\n", fix.Name, fix.ProductID, fix.CurrentMode, fix.NewMode, source)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
