package lock

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"SnapSweep/internal/s3"
)

// S3Locker holds a per-backup lock object in the store so a prune never
// races the snapshot producer or a second pruner. A lock older than the TTL
// is treated as stale and taken over.
type S3Locker struct {
	client *s3.Client
	name   string
	ttl    time.Duration
	key    string
	mu     sync.Mutex
	held   bool
}

type S3Options struct {
	Client *s3.Client
	Name   string
	TTL    time.Duration
}

func NewS3(opts S3Options) (*S3Locker, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("s3 lock: client is required")
	}
	name := opts.Name
	if name == "" || strings.ContainsAny(name, "/\\") {
		name = "default"
	}
	return &S3Locker{
		client: opts.Client,
		name:   name,
		ttl:    opts.TTL,
		key:    s3.LockKey(name),
	}, nil
}

func (l *S3Locker) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return fmt.Errorf("s3 lock %s already held by this process", l.key)
	}

	lastMod, err := l.client.HeadObject(ctx, l.key)
	if err != nil {
		return fmt.Errorf("s3 lock head: %w", err)
	}
	if lastMod != nil {
		if err := l.takeOverStale(ctx, *lastMod); err != nil {
			return err
		}
	}

	host, _ := os.Hostname()
	stamp := fmt.Sprintf("pid=%d host=%s at=%s\n", os.Getpid(), host, time.Now().UTC().Format(time.RFC3339))
	if err := l.client.PutObject(ctx, l.key, strings.NewReader(stamp), int64(len(stamp))); err != nil {
		return fmt.Errorf("s3 lock put: %w", err)
	}
	l.held = true
	return nil
}

func (l *S3Locker) takeOverStale(ctx context.Context, lastMod time.Time) error {
	if l.ttl <= 0 {
		return fmt.Errorf("s3 lock already held: %s (another run may be in progress)", l.key)
	}
	if time.Since(lastMod) < l.ttl {
		return fmt.Errorf("s3 lock already held: %s (held by another process)", l.key)
	}
	if err := l.client.DeleteObject(ctx, l.key); err != nil {
		return fmt.Errorf("remove stale s3 lock: %w", err)
	}
	return nil
}

func (l *S3Locker) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return nil
	}
	if err := l.client.DeleteObject(ctx, l.key); err != nil {
		return fmt.Errorf("s3 lock release: %w", err)
	}
	l.held = false
	return nil
}
