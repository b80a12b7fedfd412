package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"SnapSweep/internal/config"
)

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.ResolveConfigPath()
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	cfg := starterConfig()
	if err := config.Write(cfg, path); err != nil {
		return err
	}
	cmd.Printf("Configuration written to %s\n", path)
	cmd.Println("Edit the s3 block and backup names, then run `snapsweep validate`.")
	return nil
}

func starterConfig() *config.Config {
	return &config.Config{
		S3: &config.S3Config{
			Endpoint:  "https://s3.example.com",
			Region:    "us-east-1",
			AccessKey: "CHANGE_ME",
			SecretKey: "CHANGE_ME",
			Bucket:    "backups",
			Prefix:    "",
			PathStyle: true,
		},
		Retention: &config.RetentionConfig{AgeDays: 14},
		Prune: &config.PruneConfig{
			Workers:        config.DefaultWorkers,
			Connections:    config.DefaultWorkers,
			LockTTLMinutes: config.DefaultLockTTLMinutes,
		},
		Logging: &config.LoggingConfig{Level: "info", Format: "text"},
		Backups: []config.BackupConfig{
			{Name: "example-host", Enabled: false},
		},
		Schedule: &config.ScheduleConfig{Period: "day", Times: 1, JitterMinutes: 15},
	}
}
