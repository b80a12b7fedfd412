package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"SnapSweep/internal/config"
)

var (
	addBackupName string
	addBackupAge  int
)

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.AddCommand(addBackupCmd)
	addBackupCmd.Flags().StringVar(&addBackupName, "name", "", "Backup set name (required)")
	addBackupCmd.Flags().IntVar(&addBackupAge, "age", -1, "Per-backup retention age in days (omit to use the global value)")
	_ = addBackupCmd.MarkFlagRequired("name")
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a resource",
}

var addBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Add a backup set to the configuration",
	RunE:  runAddBackup,
}

func runAddBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigForEdit()
	if err != nil {
		return err
	}
	for _, b := range cfg.Backups {
		if b.Name == addBackupName {
			return fmt.Errorf("backup %q already exists", addBackupName)
		}
	}

	backup := config.BackupConfig{Name: addBackupName, Enabled: true}
	if addBackupAge >= 0 {
		age := addBackupAge
		backup.AgeDays = &age
	}
	cfg.Backups = append(cfg.Backups, backup)

	if err := config.Validate(cfg); err != nil {
		return err
	}
	path := config.ResolveConfigPath()
	if err := config.Write(cfg, path); err != nil {
		return err
	}
	cmd.Printf("Backup %q added\n", addBackupName)
	return nil
}

func loadConfigForEdit() (*config.Config, error) {
	return loadValidatedConfig(false)
}
