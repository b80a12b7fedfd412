package config

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	negative := -1
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{
			name: "minimal valid",
			cfg:  &Config{},
		},
		{
			name: "full valid",
			cfg: &Config{
				Retention: &RetentionConfig{AgeDays: 14},
				Prune:     &PruneConfig{Workers: 4, Connections: 2},
				Backups: []BackupConfig{
					{Name: "web", Enabled: true},
					{Name: "db", Enabled: true},
				},
			},
		},
		{
			name:    "negative retention",
			cfg:     &Config{Retention: &RetentionConfig{AgeDays: -7}},
			wantErr: ErrInvalidRetention,
		},
		{
			name: "connections exceed workers",
			cfg: &Config{
				Prune: &PruneConfig{Workers: 2, Connections: 8},
			},
			wantErr: ErrInvalidConns,
		},
		{
			name: "negative per-backup age",
			cfg: &Config{
				Backups: []BackupConfig{{Name: "web", AgeDays: &negative}},
			},
			wantErr: ErrInvalidRetention,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_DuplicateBackupNames(t *testing.T) {
	cfg := &Config{
		Backups: []BackupConfig{
			{Name: "web"},
			{Name: "web"},
		},
	}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() = nil, want duplicate-name error")
	}
}

func TestValidate_EmptyBackupName(t *testing.T) {
	cfg := &Config{Backups: []BackupConfig{{Name: ""}}}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() = nil, want empty-name error")
	}
}

func TestPruneDefaults(t *testing.T) {
	t.Run("nil prune block", func(t *testing.T) {
		cfg := &Config{}
		if got := PruneWorkers(cfg); got != DefaultWorkers {
			t.Errorf("PruneWorkers = %d, want %d", got, DefaultWorkers)
		}
		if got := PruneConnections(cfg); got != DefaultWorkers {
			t.Errorf("PruneConnections = %d, want %d", got, DefaultWorkers)
		}
	})

	t.Run("connections capped at workers", func(t *testing.T) {
		cfg := &Config{Prune: &PruneConfig{Workers: 2, Connections: 2}}
		if got := PruneConnections(cfg); got != 2 {
			t.Errorf("PruneConnections = %d, want 2", got)
		}
	})

	t.Run("explicit values", func(t *testing.T) {
		cfg := &Config{Prune: &PruneConfig{Workers: 8, Connections: 3}}
		if got := PruneWorkers(cfg); got != 8 {
			t.Errorf("PruneWorkers = %d, want 8", got)
		}
		if got := PruneConnections(cfg); got != 3 {
			t.Errorf("PruneConnections = %d, want 3", got)
		}
	})
}
