package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"SnapSweep/internal/systemd"
)

var uninstallSystemdUnitDir string

func init() {
	rootCmd.AddCommand(uninstallSystemdCmd)
	uninstallSystemdCmd.Flags().StringVar(&uninstallSystemdUnitDir, "unit-dir", systemd.DefaultUnitDir, "Directory for systemd unit files")
}

var uninstallSystemdCmd = &cobra.Command{
	Use:   "uninstall-systemd",
	Short: "Remove per-backup prune service and timer units",
	RunE:  runUninstallSystemd,
}

func runUninstallSystemd(cmd *cobra.Command, args []string) error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("uninstall-systemd is only supported on Linux")
	}

	cfg, err := loadValidatedConfig(true)
	if err != nil {
		return err
	}

	var removed []string
	for _, backup := range cfg.Backups {
		svcName, timerName := systemd.UnitFileNames(backup.Name)
		svcPath := filepath.Join(uninstallSystemdUnitDir, svcName)
		timerPath := filepath.Join(uninstallSystemdUnitDir, timerName)

		if _, err := os.Stat(timerPath); os.IsNotExist(err) {
			if _, err := os.Stat(svcPath); os.IsNotExist(err) {
				continue
			}
		}

		_ = exec.Command("systemctl", "disable", "--now", timerName).Run()

		if err := os.Remove(timerPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", timerPath, err)
		}
		if err := os.Remove(svcPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", svcPath, err)
		}
		removed = append(removed, backup.Name)
		cmd.Printf("Removed %s and %s for backup %s\n", svcName, timerName, backup.Name)
	}

	if len(removed) == 0 {
		cmd.Println("No installed units to remove")
		return nil
	}

	if err := exec.Command("systemctl", "daemon-reload").Run(); err != nil {
		return fmt.Errorf("systemctl daemon-reload: %w", err)
	}
	cmd.Println("Reloaded systemd daemon")

	return nil
}
