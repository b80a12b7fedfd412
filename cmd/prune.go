package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"SnapSweep/internal/config"
	"SnapSweep/internal/lock"
	"SnapSweep/internal/metrics"
	"SnapSweep/internal/notifier"
	"SnapSweep/internal/prune"
	"SnapSweep/internal/s3"
)

var (
	pruneName          string
	pruneAll           bool
	pruneAge           int
	pruneWorkers       int
	pruneConnections   int
	pruneDryRun        bool
	pruneVerboseDelete bool
	pruneNoLock        bool
	pruneMetricsFile   string
)

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().StringVar(&pruneName, "name", "", "Prune only this backup set by name")
	pruneCmd.Flags().BoolVar(&pruneAll, "all", false, "Prune all enabled backup sets")
	pruneCmd.Flags().IntVar(&pruneAge, "age", -1, "Retention age in days (overrides config)")
	pruneCmd.Flags().IntVar(&pruneWorkers, "workers", 0, "Index resolution worker count (overrides config)")
	pruneCmd.Flags().IntVar(&pruneConnections, "connections", 0, "Store connection pool size, capped at workers (overrides config)")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Compute and log the delete set without deleting")
	pruneCmd.Flags().BoolVar(&pruneVerboseDelete, "verbose-delete", false, "Log every key in the delete set")
	pruneCmd.Flags().BoolVar(&pruneNoLock, "no-lock", false, "Skip the per-backup S3 lock")
	pruneCmd.Flags().StringVar(&pruneMetricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply retention and remove out-of-policy snapshots and unreferenced data",
	Long: "Prune lists every object under the backup scope, keeps the index snapshots " +
		"within the retention age (always at least the newest), resolves kept indexes into " +
		"the data keys they reference, and deletes everything not covered by either set. " +
		"Use --name <backup> for one set, or --all for all enabled sets.",
	RunE: runPrune,
}

func runPrune(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadValidatedConfig(false)
	if err != nil {
		return err
	}
	configureLogging(cfg)

	s3Opts, ok := s3OptionsFromConfig(cfg)
	if !ok {
		return fmt.Errorf("s3 configuration is required")
	}

	var backups []config.BackupConfig
	if pruneAll {
		for _, b := range cfg.Backups {
			if b.Enabled {
				backups = append(backups, b)
			}
		}
		if len(backups) == 0 {
			cmd.Println("No enabled backups to prune")
			return nil
		}
	} else if pruneName != "" {
		for _, b := range cfg.Backups {
			if b.Name == pruneName {
				if !b.Enabled {
					return fmt.Errorf("backup %q is disabled", pruneName)
				}
				backups = append(backups, b)
				break
			}
		}
		if len(backups) == 0 {
			return fmt.Errorf("backup %q not found", pruneName)
		}
	} else {
		return fmt.Errorf("specify --name <backup> or --all")
	}

	workers := pruneWorkers
	if workers <= 0 {
		workers = config.PruneWorkers(cfg)
	}
	connections := pruneConnections
	if connections <= 0 {
		connections = config.PruneConnections(cfg)
	}
	if connections > workers {
		connections = workers
	}

	client, err := s3.New(ctx, s3Opts)
	if err != nil {
		return err
	}
	handles := make([]prune.Storage, 0, connections)
	for i := 0; i < connections; i++ {
		h, err := s3.New(ctx, s3Opts)
		if err != nil {
			return err
		}
		handles = append(handles, h)
	}
	pool := prune.NewStoragePool(handles)

	notif := NotifierFromConfig(cfg, func(msg string) { cmd.PrintErrln("Warning:", msg) })
	pruneMetrics := metrics.NewPruneMetrics()

	for i, backup := range backups {
		cmd.Printf("[%d/%d] Pruning backup %q ...\n", i+1, len(backups), backup.Name)
		if err := pruneOneBackup(ctx, cmd, cfg, client, pool, backup, workers, notif, pruneMetrics); err != nil {
			return err
		}
	}

	metricsFile := pruneMetricsFile
	if metricsFile == "" && cfg.Prune != nil {
		metricsFile = cfg.Prune.MetricsFile
	}
	if metricsFile != "" {
		if err := pruneMetrics.WriteFile(metricsFile); err != nil {
			cmd.PrintErrln("Warning: write metrics file:", err)
		}
	}

	return nil
}

func pruneOneBackup(ctx context.Context, cmd *cobra.Command, cfg *config.Config, client *s3.Client, pool *prune.StoragePool, backup config.BackupConfig, workers int, notif notifier.Notifier, pruneMetrics *metrics.PruneMetrics) error {
	now := time.Now().UTC()
	runID := uuid.NewString()

	age := pruneAge
	if age < 0 {
		age = config.EffectiveAge(cfg, &backup)
	}

	if !pruneNoLock {
		ttl := time.Duration(config.DefaultLockTTLMinutes) * time.Minute
		if cfg.Prune != nil && cfg.Prune.LockTTLMinutes > 0 {
			ttl = time.Duration(cfg.Prune.LockTTLMinutes) * time.Minute
		}
		locker, err := lock.NewS3(lock.S3Options{Client: client, Name: backup.Name, TTL: ttl})
		if err != nil {
			return err
		}
		if err := locker.Acquire(ctx); err != nil {
			return fmt.Errorf("lock backup %s: %w", backup.Name, err)
		}
		defer func() {
			if err := locker.Release(context.Background()); err != nil {
				cmd.PrintErrln("Warning: release lock:", err)
			}
		}()
	}

	if notif != nil && !pruneDryRun {
		_ = notif.NotifyPruneStart(ctx, backup.Name, runID)
	}

	start := time.Now()
	res, err := prune.Run(ctx, client, pool, prune.Options{
		Name:          backup.Name,
		Policy:        prune.Policy{AgeDays: age},
		Now:           now,
		Workers:       workers,
		DryRun:        pruneDryRun,
		VerboseDelete: pruneVerboseDelete,
		RunID:         runID,
	})
	duration := time.Since(start)

	pruneMetrics.Record(backup.Name, metrics.RunReport{
		Listed:     res.Listed,
		KeptIdx:    res.IndexesKept,
		KeptData:   res.DataKeysKept,
		Candidates: res.Candidates,
		Deleted:    res.Deleted,
		Success:    err == nil,
	}, now)

	if err != nil {
		if notif != nil {
			_ = notif.NotifyPruneError(ctx, backup.Name, runID, err)
		}
		cmd.Printf("  Failed after %s: %v\n", duration.Round(time.Second), err)
		return err
	}

	switch {
	case res.DryRun:
		if notif != nil {
			_ = notif.NotifyPruneDryRun(ctx, backup.Name, runID, res.IndexesKept, res.Candidates)
		}
		cmd.Printf("  Dry run: %d indexes kept, %d data keys kept, %d objects would be deleted\n",
			res.IndexesKept, res.DataKeysKept, res.Candidates)
	case res.DeleteFailed:
		if notif != nil {
			_ = notif.NotifyPruneWarning(ctx, backup.Name, runID,
				fmt.Sprintf("bulk delete failed, %d of %d keys deleted; cleanup deferred to next run", res.Deleted, res.Candidates))
		}
		cmd.Printf("  Delete incomplete (%d/%d); cleanup deferred to next run\n", res.Deleted, res.Candidates)
	default:
		if notif != nil {
			_ = notif.NotifyPruneSuccess(ctx, backup.Name, runID, res.IndexesKept, res.Deleted, duration)
		}
		cmd.Printf("  OK in %s: %d indexes kept, %d data keys kept, %d objects deleted\n",
			duration.Round(time.Second), res.IndexesKept, res.DataKeysKept, res.Deleted)
	}
	return nil
}
