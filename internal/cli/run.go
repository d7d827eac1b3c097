package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"salesetl/internal/cache"
	"salesetl/internal/config"
	"salesetl/internal/logging"
	"salesetl/internal/pipeline"
	"salesetl/internal/report"
	"salesetl/internal/storage"
)

var (
	runAnalysisDate string
	runThreshold    int
	runSequential   bool
	runNoPublish    bool
	runNoCache      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline",
	Long: `Run every stage: normalize the entities and sales, classify non-retail
customers, rebuild orders for the B2B and B2C partitions, aggregate, and
score B2C customers into RFM segments. findings/summary.json is written
when the run succeeds.

Example:
  salesetl run --raw-dir ./raw --output-dir ./out
  salesetl run --analysis-date 2023-01-01 --threshold 800
  SALESETL_PUBLISH_KIND=sqlite SALESETL_PUBLISH_DSN=warehouse.db salesetl run`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runAnalysisDate, "analysis-date", "",
		"RFM reference date, YYYY-MM-DD")
	runCmd.Flags().IntVar(&runThreshold, "threshold", 0,
		"line count above which a customer is non-retail")
	runCmd.Flags().BoolVar(&runSequential, "sequential", false,
		"run independent branches one at a time")
	runCmd.Flags().BoolVar(&runNoPublish, "no-publish", false,
		"skip publishing to the configured warehouse")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false,
		"skip publishing segments to Redis")
}

func runRun(cmd *cobra.Command, args []string) error {
	if runAnalysisDate != "" {
		cfg.AnalysisDate = runAnalysisDate
	}
	if runThreshold > 0 {
		cfg.NonRetailThreshold = runThreshold
	}
	if runSequential {
		cfg.Runtime.Parallel = false
	}
	if printIssues(cmd.ErrOrStderr(), config.ValidatePipeline(*cfg)) {
		return fmt.Errorf("configuration is invalid")
	}

	flush := setupMetrics(cfg)
	defer flush()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	runner := &pipeline.Runner{Config: cfg}
	if cfg.Publish.Enabled() && !runNoPublish {
		runner.Publisher = storage.NewPublisher(cfg.Job, cfg.Publish)
	}
	if cfg.Cache.Redis.Enabled() && !runNoCache {
		c, err := cache.NewSegmentCache(ctx, cfg.Cache.Redis)
		if err != nil {
			return err
		}
		defer c.Close()
		runner.Cache = c
	}

	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	printSummary(cmd, res.Summary)
	return nil
}

func printSummary(cmd *cobra.Command, s *report.Summary) {
	cmd.Printf("run %s finished in %s\n", s.RunID, s.Elapsed)
	for _, tc := range s.Tables {
		cmd.Printf("  %-28s %8d rows\n", tc.Path, tc.Rows)
	}
	cmd.Printf("non-retail customers: %d\n", s.NonRetail)
}
