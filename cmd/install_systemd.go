package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"SnapSweep/internal/config"
	"SnapSweep/internal/systemd"
)

var (
	installSystemdUnitDir   string
	installSystemdBinary    string
	installSystemdHardening bool
	installSystemdNoStart   bool
)

func init() {
	rootCmd.AddCommand(installSystemdCmd)
	installSystemdCmd.Flags().StringVar(&installSystemdUnitDir, "unit-dir", systemd.DefaultUnitDir, "Directory for systemd unit files")
	installSystemdCmd.Flags().StringVar(&installSystemdBinary, "binary", systemd.DefaultBinary, "Path to the snapsweep binary in ExecStart")
	installSystemdCmd.Flags().BoolVar(&installSystemdHardening, "hardening", true, "Emit systemd hardening directives")
	installSystemdCmd.Flags().BoolVar(&installSystemdNoStart, "no-start", false, "Install units without enabling the timers")
}

var installSystemdCmd = &cobra.Command{
	Use:   "install-systemd",
	Short: "Install per-backup prune service and timer units",
	RunE:  runInstallSystemd,
}

func runInstallSystemd(cmd *cobra.Command, args []string) error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("install-systemd is only supported on Linux")
	}

	cfg, err := loadValidatedConfig(true)
	if err != nil {
		return err
	}
	if cfg.Schedule == nil {
		return fmt.Errorf("a schedule block is required to install timers")
	}

	opts := systemd.GeneratorOptions{
		Binary:     installSystemdBinary,
		ConfigPath: config.ResolveConfigPath(),
		UnitDir:    installSystemdUnitDir,
		Hardening:  installSystemdHardening,
	}

	var installed []string
	for _, backup := range cfg.Backups {
		if !backup.Enabled {
			continue
		}
		units, err := systemd.Generate(backup, cfg.Schedule, opts)
		if err != nil {
			return fmt.Errorf("generate units for %s: %w", backup.Name, err)
		}
		svcName, timerName := systemd.UnitFileNames(backup.Name)
		svcPath := filepath.Join(installSystemdUnitDir, svcName)
		timerPath := filepath.Join(installSystemdUnitDir, timerName)

		if err := os.WriteFile(svcPath, []byte(units.Service), 0644); err != nil {
			return fmt.Errorf("write %s: %w", svcPath, err)
		}
		if err := os.WriteFile(timerPath, []byte(units.Timer), 0644); err != nil {
			return fmt.Errorf("write %s: %w", timerPath, err)
		}
		installed = append(installed, timerName)
		cmd.Printf("Installed %s and %s for backup %s\n", svcName, timerName, backup.Name)
	}

	if len(installed) == 0 {
		cmd.Println("No enabled backups to install")
		return nil
	}

	if err := exec.Command("systemctl", "daemon-reload").Run(); err != nil {
		return fmt.Errorf("systemctl daemon-reload: %w", err)
	}
	cmd.Println("Reloaded systemd daemon")

	if installSystemdNoStart {
		return nil
	}
	for _, timerName := range installed {
		if err := exec.Command("systemctl", "enable", "--now", timerName).Run(); err != nil {
			return fmt.Errorf("systemctl enable --now %s: %w", timerName, err)
		}
		cmd.Printf("Enabled %s\n", timerName)
	}
	return nil
}
