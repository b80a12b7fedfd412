package config

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRetention = errors.New("retention age_days must be >= 0")
	ErrInvalidWorkers   = errors.New("prune workers must not be negative")
	ErrInvalidConns     = errors.New("prune connections must not be negative or exceed workers")
)

func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Retention != nil && cfg.Retention.AgeDays < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRetention, cfg.Retention.AgeDays)
	}

	if cfg.Prune != nil {
		if cfg.Prune.Workers < 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidWorkers, cfg.Prune.Workers)
		}
		if cfg.Prune.Connections < 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidConns, cfg.Prune.Connections)
		}
		if cfg.Prune.Workers > 0 && cfg.Prune.Connections > cfg.Prune.Workers {
			return fmt.Errorf("%w: got connections=%d workers=%d", ErrInvalidConns, cfg.Prune.Connections, cfg.Prune.Workers)
		}
	}

	seen := make(map[string]struct{}, len(cfg.Backups))
	for _, b := range cfg.Backups {
		if b.Name == "" {
			return fmt.Errorf("backup name must not be empty")
		}
		if _, ok := seen[b.Name]; ok {
			return fmt.Errorf("duplicate backup name %q", b.Name)
		}
		seen[b.Name] = struct{}{}
		if b.AgeDays != nil && *b.AgeDays < 0 {
			return fmt.Errorf("%w: backup %q got %d", ErrInvalidRetention, b.Name, *b.AgeDays)
		}
	}

	return nil
}
