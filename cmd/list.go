package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"SnapSweep/internal/config"
	"SnapSweep/internal/prune"
	"SnapSweep/internal/s3"
)

var listName string

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listName, "name", "", "Backup set name (required)")
	_ = listCmd.MarkFlagRequired("name")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List index snapshots for a backup set and their retention verdict",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
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

	var backup *config.BackupConfig
	for i := range cfg.Backups {
		if cfg.Backups[i].Name == listName {
			backup = &cfg.Backups[i]
			break
		}
	}
	if backup == nil {
		return fmt.Errorf("backup %q not found", listName)
	}

	client, err := s3.New(ctx, s3Opts)
	if err != nil {
		return err
	}

	objects, err := client.ListObjects(ctx, s3.ScopePrefix(backup.Name))
	if err != nil {
		return err
	}
	indexes, data := prune.Classify(objects)
	if len(indexes) == 0 {
		return fmt.Errorf("no index snapshots under %s", s3.ScopePrefix(backup.Name))
	}

	now := time.Now().UTC()
	age := config.EffectiveAge(cfg, backup)
	kept, err := prune.SelectIndexes(indexes, prune.Policy{AgeDays: age}, now)
	if err != nil {
		return err
	}
	keep := make(map[string]struct{}, len(kept))
	for _, k := range kept {
		keep[k.Key] = struct{}{}
	}

	sort.SliceStable(indexes, func(i, j int) bool {
		return indexes[i].LastModified.After(indexes[j].LastModified)
	})

	cmd.Printf("Backup %q (retention %d days):\n", backup.Name, age)
	cmd.Printf("%-6s %-7s %-20s %s\n", "AGE(d)", "VERDICT", "LAST MODIFIED", "KEY")
	for _, idx := range indexes {
		verdict := "prune"
		if _, ok := keep[idx.Key]; ok {
			verdict = "keep"
		}
		cmd.Printf("%-6d %-7s %-20s %s\n",
			config.AgeDays(now, idx.LastModified),
			verdict,
			idx.LastModified.UTC().Format("2006-01-02 15:04:05"),
			idx.Key)
	}
	cmd.Printf("\n%d index snapshots (%d in policy), %d data objects\n", len(indexes), len(kept), len(data))
	return nil
}
