package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const DefaultLockDir = "/var/run/snapsweep"

// LocalLocker serializes runs on one host with an exclusive lock file. A
// file older than the TTL is treated as left behind by a dead process and
// taken over.
type LocalLocker struct {
	path string
	ttl  time.Duration
	file *os.File
	mu   sync.Mutex
	held bool
}

type LocalOptions struct {
	Dir  string
	Name string
	TTL  time.Duration
}

func NewLocal(opts LocalOptions) (*LocalLocker, error) {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultLockDir
	}
	name := opts.Name
	if name == "" || filepath.Base(name) != name {
		name = "default"
	}
	return &LocalLocker{
		path: filepath.Join(dir, name+".lock"),
		ttl:  opts.TTL,
	}, nil
}

func (l *LocalLocker) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return fmt.Errorf("lock %s already held by this process", l.path)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}

	file, err := l.open()
	if err != nil {
		if !os.IsExist(err) {
			return fmt.Errorf("create lock file: %w", err)
		}
		if err := l.takeOverStale(); err != nil {
			return err
		}
		file, err = l.open()
		if err != nil {
			return fmt.Errorf("acquire after stale takeover: %w", err)
		}
	}

	host, _ := os.Hostname()
	stamp := fmt.Sprintf("pid=%d host=%s at=%s\n", os.Getpid(), host, time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(stamp); err == nil {
		err = file.Sync()
	}
	if err != nil {
		_ = file.Close()
		_ = os.Remove(l.path)
		return fmt.Errorf("write lock file: %w", err)
	}

	l.file = file
	l.held = true
	return nil
}

func (l *LocalLocker) open() (*os.File, error) {
	return os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0640)
}

func (l *LocalLocker) takeOverStale() error {
	if l.ttl <= 0 {
		return fmt.Errorf("lock file exists: %s (another run may be in progress)", l.path)
	}
	info, err := os.Stat(l.path)
	if err != nil {
		return fmt.Errorf("lock file exists and stat failed: %w", err)
	}
	if time.Since(info.ModTime()) < l.ttl {
		return fmt.Errorf("lock file exists: %s (held by another process)", l.path)
	}
	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("remove stale lock: %w", err)
	}
	return nil
}

func (l *LocalLocker) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return nil
	}
	var errs []error
	if l.file != nil {
		if err := l.file.Close(); err != nil {
			errs = append(errs, err)
		}
		l.file = nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	l.held = false
	if len(errs) > 0 {
		return fmt.Errorf("release lock: %v", errs)
	}
	return nil
}
