package config

import "time"

// EffectiveAge returns the retention age in days for one backup set: the
// per-backup override when present, the global value otherwise.
func EffectiveAge(cfg *Config, b *BackupConfig) int {
	if b != nil && b.AgeDays != nil {
		return *b.AgeDays
	}
	if cfg != nil && cfg.Retention != nil {
		return cfg.Retention.AgeDays
	}
	return 0
}

func CutoffTime(now time.Time, ageDays int) time.Time {
	if ageDays < 0 {
		ageDays = 0
	}
	return now.AddDate(0, 0, -ageDays)
}

// AgeDays returns the whole-day age of lastModified relative to now.
// Future timestamps count as age zero.
func AgeDays(now, lastModified time.Time) int {
	d := now.Sub(lastModified)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
