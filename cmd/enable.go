package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"SnapSweep/internal/config"
)

func init() {
	rootCmd.AddCommand(enableCmd)
	enableCmd.AddCommand(enableBackupCmd)
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable a backup set",
}

var enableBackupCmd = &cobra.Command{
	Use:   "backup [name]",
	Short: "Enable a backup set by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnableBackup,
}

func runEnableBackup(cmd *cobra.Command, args []string) error {
	return setBackupEnabled(cmd, args[0], true)
}

func setBackupEnabled(cmd *cobra.Command, name string, enabled bool) error {
	cfg, err := loadConfigForEdit()
	if err != nil {
		return err
	}
	found := false
	for i := range cfg.Backups {
		if cfg.Backups[i].Name == name {
			cfg.Backups[i].Enabled = enabled
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("backup %q not found", name)
	}
	path := config.ResolveConfigPath()
	if err := config.Write(cfg, path); err != nil {
		return err
	}
	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	cmd.Printf("Backup %q %s\n", name, state)
	return nil
}
