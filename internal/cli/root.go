// Package cli is the cobra command surface of keapsync.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/keapsync/internal/control"
	"github.com/vietddude/keapsync/internal/core/config"
	"github.com/vietddude/keapsync/internal/core/domain"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "keapsync",
	Short: "Keap CRM extraction service",
	Long:  `keapsync pulls CRM data out of the Keap REST API into PostgreSQL, with resumable checkpoints and automatic error reprocessing.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(reprocessCmd)
}

// setup loads the environment, config, and logging, then assembles the app.
func setup(batchSize int) (*control.App, context.Context, context.CancelFunc, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}
	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	app, err := control.NewApp(ctx, cfg, control.Options{BatchSize: batchSize})
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return app, ctx, cancel, nil
}

var (
	loadUpdate     bool
	loadEntityType string
	loadEntityID   int64
	loadBatchSize  int
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Run a full or targeted data load",
	Run: func(cmd *cobra.Command, args []string) {
		app, ctx, cancel, err := setup(loadBatchSize)
		if err != nil {
			slog.Error("Failed to initialize", "error", err)
			os.Exit(1)
		}
		defer cancel()
		defer app.Close()

		if loadEntityID != 0 && loadEntityType == "" {
			slog.Error("--entity-id requires --entity-type")
			os.Exit(1)
		}

		if loadEntityType != "" {
			_, err = app.Pipeline.RunOne(ctx, domain.EntityType(loadEntityType), loadEntityID, loadUpdate)
		} else {
			_, err = app.Pipeline.RunAll(ctx, loadUpdate)
		}
		if err != nil {
			slog.Error("Load failed", "error", err)
			os.Exit(1)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print checkpoint progress per entity type",
	Run: func(cmd *cobra.Command, args []string) {
		app, _, cancel, err := setup(0)
		if err != nil {
			slog.Error("Failed to initialize", "error", err)
			os.Exit(1)
		}
		defer cancel()
		defer app.Close()

		checkpoints := app.Checkpoints.All()
		if len(checkpoints) == 0 {
			fmt.Println("No checkpoints recorded.")
			return
		}

		types := make([]string, 0, len(checkpoints))
		for et := range checkpoints {
			types = append(types, string(et))
		}
		sort.Strings(types)

		fmt.Printf("%-16s %10s %10s  %s\n", "ENTITY TYPE", "RECORDS", "OFFSET", "LAST COMPLETED")
		for _, et := range types {
			cp := checkpoints[domain.EntityType(et)]
			last := "never"
			if cp.LastCompleted != nil {
				last = cp.LastCompleted.Format(time.RFC3339)
			}
			fmt.Printf("%-16s %10d %10d  %s\n", et, cp.RecordsProcessed, cp.APIOffset, last)
		}
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset-checkpoints",
	Short: "Clear all checkpoints, forcing the next load to start over",
	Run: func(cmd *cobra.Command, args []string) {
		app, _, cancel, err := setup(0)
		if err != nil {
			slog.Error("Failed to initialize", "error", err)
			os.Exit(1)
		}
		defer cancel()
		defer app.Close()

		if err := app.Checkpoints.ClearAll(); err != nil {
			slog.Error("Failed to clear checkpoints", "error", err)
			os.Exit(1)
		}
		slog.Info("Checkpoints cleared")
	},
}

var reprocessCmd = &cobra.Command{
	Use:   "reprocess",
	Short: "Replay ledger errors after backfilling missing dependencies",
	Run: func(cmd *cobra.Command, args []string) {
		app, ctx, cancel, err := setup(0)
		if err != nil {
			slog.Error("Failed to initialize", "error", err)
			os.Exit(1)
		}
		defer cancel()
		defer app.Close()

		stats, err := app.Reprocessor.Run(ctx)
		if err != nil {
			slog.Error("Reprocessing failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Total errors:       %d\n", stats.TotalErrors)
		fmt.Printf("Processed:          %d\n", stats.ProcessedErrors)
		fmt.Printf("Succeeded:          %d\n", stats.SuccessfulReprocesses)
		fmt.Printf("Failed:             %d\n", stats.FailedReprocesses)
		for et, ids := range stats.MissingDependencies {
			fmt.Printf("Missing %s: %d\n", et, len(ids))
		}
	},
}

func init() {
	loadCmd.Flags().BoolVar(&loadUpdate, "update", false, "incremental load using the last completed timestamp")
	loadCmd.Flags().StringVar(&loadEntityType, "entity-type", "", "load a single entity type")
	loadCmd.Flags().Int64Var(&loadEntityID, "entity-id", 0, "load a single record (requires --entity-type)")
	loadCmd.Flags().IntVar(&loadBatchSize, "batch-size", 0, "override configured page size")
}
