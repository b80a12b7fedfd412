package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"SnapSweep/internal/config"
	"SnapSweep/internal/prune"
	"SnapSweep/internal/s3"
	"SnapSweep/internal/schedule"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show snapshot counts and retention state for all enabled backups",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
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
	client, err := s3.New(ctx, s3Opts)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	next, desc := schedule.NextRun(cfg.Schedule, now)

	shown := 0
	for i := range cfg.Backups {
		backup := &cfg.Backups[i]
		if !backup.Enabled {
			continue
		}
		shown++

		objects, err := client.ListObjects(ctx, s3.ScopePrefix(backup.Name))
		if err != nil {
			cmd.Printf("%-20s ERROR: %v\n", backup.Name, err)
			continue
		}
		indexes, data := prune.Classify(objects)
		if len(indexes) == 0 {
			cmd.Printf("%-20s no index snapshots (%d objects)\n", backup.Name, len(objects))
			continue
		}

		age := config.EffectiveAge(cfg, backup)
		kept, err := prune.SelectIndexes(indexes, prune.Policy{AgeDays: age}, now)
		if err != nil {
			cmd.Printf("%-20s ERROR: %v\n", backup.Name, err)
			continue
		}
		newestAge := config.AgeDays(now, kept[0].LastModified)
		cmd.Printf("%-20s %d indexes (newest %dd old, %d in policy at %dd), %d data objects\n",
			backup.Name, len(indexes), newestAge, len(kept), age, len(data))
	}

	if shown == 0 {
		cmd.Println("No enabled backups configured")
		return nil
	}
	if !next.IsZero() {
		cmd.Printf("\nNext scheduled prune: %s (%s)\n", next.Format(time.RFC3339), desc)
	}
	return nil
}
