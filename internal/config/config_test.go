package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `s3:
  endpoint: https://s3.example.com
  region: us-east-1
  access_key: AK
  secret_key: SK
  bucket: backups
  prefix: hosts/web1
  path_style: true
retention:
  age_days: 14
prune:
  workers: 6
  connections: 3
  lock_ttl_minutes: 45
  verbose_delete: true
logging:
  level: debug
  format: json
backups:
  - name: web-prod
    enabled: true
  - name: db-prod
    enabled: true
    age_days: 30
schedule:
  period: day
  times: 1
  jitter_minutes: 15
notifications:
  discord:
    enabled: true
    webhook_url: https://discord.example/webhook
    events: [success, error]
`

func writeSampleConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)
	return path
}

func TestLoadUnmarshal(t *testing.T) {
	writeSampleConfig(t)

	v, err := Load(true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg, err := Unmarshal(v)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.S3 == nil || cfg.S3.Bucket != "backups" {
		t.Errorf("S3.Bucket = %+v, want backups", cfg.S3)
	}
	if !cfg.S3.PathStyle {
		t.Error("S3.PathStyle = false, want true")
	}
	if cfg.Retention == nil || cfg.Retention.AgeDays != 14 {
		t.Errorf("Retention = %+v, want age_days 14", cfg.Retention)
	}
	if cfg.Prune == nil || cfg.Prune.Workers != 6 || cfg.Prune.Connections != 3 {
		t.Errorf("Prune = %+v, want workers 6 connections 3", cfg.Prune)
	}
	if len(cfg.Backups) != 2 {
		t.Fatalf("Backups = %d, want 2", len(cfg.Backups))
	}
	if cfg.Backups[0].AgeDays != nil {
		t.Error("web-prod AgeDays set, want nil (global)")
	}
	if cfg.Backups[1].AgeDays == nil || *cfg.Backups[1].AgeDays != 30 {
		t.Errorf("db-prod AgeDays = %v, want 30", cfg.Backups[1].AgeDays)
	}
	if got := EffectiveAge(cfg, &cfg.Backups[1]); got != 30 {
		t.Errorf("EffectiveAge(db-prod) = %d, want 30", got)
	}
	if cfg.Notifications == nil || cfg.Notifications.Discord == nil || !cfg.Notifications.Discord.Enabled {
		t.Errorf("Notifications = %+v, want discord enabled", cfg.Notifications)
	}
}

func TestLoad_PermissionCheck(t *testing.T) {
	path := writeSampleConfig(t)
	if err := os.Chmod(path, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(true); err == nil {
		t.Error("Load(checkPerms) = nil, want permissive-mode error")
	}
	// Without the check the same file loads fine.
	if _, err := Load(false); err != nil {
		t.Errorf("Load(no check) = %v, want nil", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(false); err == nil {
		t.Error("Load(missing file) = nil, want error")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "config.yaml")
	age := 30
	cfg := &Config{
		S3:        &S3Config{Bucket: "b", Endpoint: "https://s3.example.com"},
		Retention: &RetentionConfig{AgeDays: 7},
		Backups:   []BackupConfig{{Name: "web", Enabled: true, AgeDays: &age}},
	}
	if err := Write(cfg, path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	t.Setenv(EnvConfigPath, path)
	v, err := Load(true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := Unmarshal(v)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Retention == nil || got.Retention.AgeDays != 7 {
		t.Errorf("round-tripped Retention = %+v, want age_days 7", got.Retention)
	}
	if len(got.Backups) != 1 || got.Backups[0].Name != "web" {
		t.Errorf("round-tripped Backups = %+v", got.Backups)
	}
}
