package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(disableCmd)
	disableCmd.AddCommand(disableBackupCmd)
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable a backup set",
}

var disableBackupCmd = &cobra.Command{
	Use:   "backup [name]",
	Short: "Disable a backup set by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisableBackup,
}

func runDisableBackup(cmd *cobra.Command, args []string) error {
	return setBackupEnabled(cmd, args[0], false)
}
