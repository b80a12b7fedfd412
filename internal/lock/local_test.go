package lock

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestLocalLocker_AcquireRelease(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(LocalOptions{Dir: dir, Name: "web"})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	// Released lock can be re-acquired.
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("re-Acquire: %v", err)
	}
	_ = l.Release(ctx)
}

func TestLocalLocker_SecondHolderBlocked(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, _ := NewLocal(LocalOptions{Dir: dir, Name: "web"})
	if err := first.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	defer first.Release(ctx)

	second, _ := NewLocal(LocalOptions{Dir: dir, Name: "web"})
	if err := second.Acquire(ctx); err == nil {
		t.Error("second Acquire = nil, want held error")
	}
}

func TestLocalLocker_StaleTakeover(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, _ := NewLocal(LocalOptions{Dir: dir, Name: "web"})
	if err := first.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	// Leave the file behind as if the holder died.
	first.held = false
	_ = first.file.Close()

	second, _ := NewLocal(LocalOptions{Dir: dir, Name: "web", TTL: time.Nanosecond})
	time.Sleep(5 * time.Millisecond)
	if err := second.Acquire(ctx); err != nil {
		t.Errorf("stale takeover Acquire = %v, want nil", err)
	}
	_ = second.Release(ctx)
}

func TestNewLocal_RejectsPathTraversal(t *testing.T) {
	l, err := NewLocal(LocalOptions{Dir: t.TempDir(), Name: "../evil"})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(l.path) != "default.lock" {
		t.Errorf("path = %q, want default.lock basename", l.path)
	}
}
