package config

import "github.com/spf13/viper"

const (
	DefaultWorkers        = 4
	DefaultLockTTLMinutes = 30
)

type Config struct {
	S3            *S3Config            `mapstructure:"s3" yaml:"s3,omitempty"`
	Retention     *RetentionConfig     `mapstructure:"retention" yaml:"retention,omitempty"`
	Prune         *PruneConfig         `mapstructure:"prune" yaml:"prune,omitempty"`
	Logging       *LoggingConfig       `mapstructure:"logging" yaml:"logging,omitempty"`
	Backups       []BackupConfig       `mapstructure:"backups" yaml:"backups,omitempty"`
	Notifications *NotificationsConfig `mapstructure:"notifications" yaml:"notifications,omitempty"`
	Schedule      *ScheduleConfig      `mapstructure:"schedule" yaml:"schedule,omitempty"`
}

type S3Config struct {
	Endpoint  string     `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Region    string     `mapstructure:"region" yaml:"region,omitempty"`
	AccessKey string     `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey string     `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
	Bucket    string     `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Prefix    string     `mapstructure:"prefix" yaml:"prefix,omitempty"`
	PathStyle bool       `mapstructure:"path_style" yaml:"path_style,omitempty"`
	TLS       *TLSConfig `mapstructure:"tls" yaml:"tls,omitempty"`
}

type TLSConfig struct {
	Enabled            bool   `mapstructure:"enabled" yaml:"enabled,omitempty"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify,omitempty"`
	CAFile             string `mapstructure:"ca_file" yaml:"ca_file,omitempty"`
}

type RetentionConfig struct {
	AgeDays int `mapstructure:"age_days" yaml:"age_days,omitempty"`
}

// BackupConfig describes one backup set (one key scope in the bucket).
// AgeDays, when set, overrides the global retention age for this set.
type BackupConfig struct {
	Name    string `mapstructure:"name" yaml:"name,omitempty"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled,omitempty"`
	AgeDays *int   `mapstructure:"age_days" yaml:"age_days,omitempty"`
}

type PruneConfig struct {
	Workers        int    `mapstructure:"workers" yaml:"workers,omitempty"`
	Connections    int    `mapstructure:"connections" yaml:"connections,omitempty"`
	LockTTLMinutes int    `mapstructure:"lock_ttl_minutes" yaml:"lock_ttl_minutes,omitempty"`
	VerboseDelete  bool   `mapstructure:"verbose_delete" yaml:"verbose_delete,omitempty"`
	MetricsFile    string `mapstructure:"metrics_file" yaml:"metrics_file,omitempty"`
}

type LoggingConfig struct {
	Level          string `mapstructure:"level" yaml:"level,omitempty"`
	Format         string `mapstructure:"format" yaml:"format,omitempty"`
	File           string `mapstructure:"file" yaml:"file,omitempty"`
	FileMaxSizeMB  int    `mapstructure:"file_max_size_mb" yaml:"file_max_size_mb,omitempty"`
	FileMaxBackups int    `mapstructure:"file_max_backups" yaml:"file_max_backups,omitempty"`
}

type ScheduleConfig struct {
	Period        string `mapstructure:"period" yaml:"period,omitempty"`
	Times         int    `mapstructure:"times" yaml:"times,omitempty"`
	JitterMinutes int    `mapstructure:"jitter_minutes" yaml:"jitter_minutes,omitempty"`
}

type NotificationsConfig struct {
	Enabled *bool          `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Discord *DiscordConfig `mapstructure:"discord" yaml:"discord,omitempty"`
}

type DiscordConfig struct {
	Enabled        bool             `mapstructure:"enabled" yaml:"enabled,omitempty"`
	WebhookURL     string           `mapstructure:"webhook_url" yaml:"webhook_url,omitempty"`
	TimeoutSeconds int              `mapstructure:"timeout_seconds" yaml:"timeout_seconds,omitempty"`
	Level          string           `mapstructure:"level" yaml:"level,omitempty"`
	Events         []string         `mapstructure:"events" yaml:"events,omitempty"`
	Retry          *DiscordRetry    `mapstructure:"retry" yaml:"retry,omitempty"`
	Mentions       *DiscordMentions `mapstructure:"mentions" yaml:"mentions,omitempty"`
}

type DiscordRetry struct {
	Attempts  int `mapstructure:"attempts" yaml:"attempts,omitempty"`
	BackoffMs int `mapstructure:"backoff_ms" yaml:"backoff_ms,omitempty"`
}

type DiscordMentions struct {
	OnError string `mapstructure:"on_error" yaml:"on_error,omitempty"`
}

func NotificationsEnabled(n *NotificationsConfig) bool {
	if n == nil {
		return false
	}
	if n.Enabled == nil {
		return true
	}
	return *n.Enabled
}

func Unmarshal(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// PruneWorkers returns the configured worker-pool width with defaults applied.
func PruneWorkers(cfg *Config) int {
	if cfg != nil && cfg.Prune != nil && cfg.Prune.Workers > 0 {
		return cfg.Prune.Workers
	}
	return DefaultWorkers
}

// PruneConnections returns the store-connection pool size with defaults
// applied. It is never larger than the worker count.
func PruneConnections(cfg *Config) int {
	workers := PruneWorkers(cfg)
	if cfg != nil && cfg.Prune != nil && cfg.Prune.Connections > 0 {
		if cfg.Prune.Connections < workers {
			return cfg.Prune.Connections
		}
		return workers
	}
	return workers
}
