package config

import (
	"testing"
	"time"
)

func TestEffectiveAge(t *testing.T) {
	override := 3
	cfg := &Config{Retention: &RetentionConfig{AgeDays: 14}}

	t.Run("global value", func(t *testing.T) {
		b := &BackupConfig{Name: "web"}
		if got := EffectiveAge(cfg, b); got != 14 {
			t.Errorf("EffectiveAge = %d, want 14", got)
		}
	})

	t.Run("per-backup override wins", func(t *testing.T) {
		b := &BackupConfig{Name: "web", AgeDays: &override}
		if got := EffectiveAge(cfg, b); got != 3 {
			t.Errorf("EffectiveAge = %d, want 3", got)
		}
	})

	t.Run("no retention configured", func(t *testing.T) {
		if got := EffectiveAge(&Config{}, &BackupConfig{Name: "web"}); got != 0 {
			t.Errorf("EffectiveAge = %d, want 0", got)
		}
	})
}

func TestCutoffTime(t *testing.T) {
	now := time.Date(2025, 2, 26, 12, 0, 0, 0, time.UTC)

	got := CutoffTime(now, 30)
	want := time.Date(2025, 1, 27, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CutoffTime(30) = %v, want %v", got, want)
	}

	if got := CutoffTime(now, -5); !got.Equal(now) {
		t.Errorf("CutoffTime(-5) = %v, want %v", got, now)
	}
}

func TestAgeDays(t *testing.T) {
	now := time.Date(2025, 2, 26, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		mod  time.Time
		want int
	}{
		{"same instant", now, 0},
		{"under a day", now.Add(-23 * time.Hour), 0},
		{"exactly one day", now.Add(-24 * time.Hour), 1},
		{"ten and a half days", now.Add(-252 * time.Hour), 10},
		{"future timestamp", now.Add(48 * time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeDays(now, tt.mod); got != tt.want {
				t.Errorf("AgeDays = %d, want %d", got, tt.want)
			}
		})
	}
}
