package cmd

import (
	"github.com/spf13/cobra"

	"SnapSweep/internal/config"
	"SnapSweep/internal/logging"
	"SnapSweep/internal/s3"
)

var (
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "snapsweep",
	Short: "Retention pruning for snapshot backups in S3-compatible storage",
	Long: "Snapsweep retires stale backup snapshots: it keeps every index snapshot within " +
		"the retention age (always at least the newest), resolves kept indexes into the data " +
		"keys they reference, and deletes everything else under the backup scope.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.SetLevel(logLevelFlag); err != nil {
			return err
		}
		return logging.SetFormat(logFormatFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: text or json")
}

func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// configureLogging applies the config file's logging block. Explicit
// command-line flags win over the file.
func configureLogging(cfg *config.Config) {
	if cfg == nil || cfg.Logging == nil {
		return
	}
	if logLevelFlag == "" {
		_ = logging.SetLevel(cfg.Logging.Level)
	}
	if logFormatFlag == "" {
		_ = logging.SetFormat(cfg.Logging.Format)
	}
	logging.SetFileOutput(cfg.Logging.File, cfg.Logging.FileMaxSizeMB, cfg.Logging.FileMaxBackups)
}

func loadValidatedConfig(checkPerms bool) (*config.Config, error) {
	v, err := config.Load(checkPerms)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Unmarshal(v)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func s3OptionsFromConfig(cfg *config.Config) (opts s3.Options, ok bool) {
	if cfg == nil || cfg.S3 == nil {
		return opts, false
	}
	return s3.Options{
		Endpoint:           cfg.S3.Endpoint,
		Region:             cfg.S3.Region,
		AccessKey:          cfg.S3.AccessKey,
		SecretKey:          cfg.S3.SecretKey,
		Bucket:             cfg.S3.Bucket,
		Prefix:             config.NormalizePrefix(cfg.S3.Prefix),
		PathStyle:          cfg.S3.PathStyle,
		InsecureSkipVerify: cfg.S3.TLS != nil && cfg.S3.TLS.InsecureSkipVerify,
	}, true
}
