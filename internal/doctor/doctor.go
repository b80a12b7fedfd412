package doctor

import (
	"context"
	"fmt"
	"os"
	"time"

	"SnapSweep/internal/config"
	"SnapSweep/internal/lock"
	"SnapSweep/internal/s3"
)

type CheckResult struct {
	Name   string
	OK     bool
	Detail string
}

func Run(ctx context.Context, cfg *config.Config) []CheckResult {
	var results []CheckResult

	results = append(results, CheckResult{
		Name:   "config",
		OK:     cfg != nil,
		Detail: "configuration loaded",
	})

	var client *s3.Client
	if cfg != nil && cfg.S3 != nil {
		var ok bool
		var detail string
		client, ok, detail = checkS3(ctx, cfg)
		results = append(results, CheckResult{Name: "s3", OK: ok, Detail: detail})
	} else {
		results = append(results, CheckResult{Name: "s3", OK: false, Detail: "s3 not configured"})
	}

	ok, detail := checkLocalLock()
	results = append(results, CheckResult{Name: "local lock", OK: ok, Detail: detail})

	if client != nil && cfg != nil {
		for _, b := range cfg.Backups {
			if !b.Enabled {
				continue
			}
			ok, detail := checkBackupIndexes(ctx, client, b.Name)
			results = append(results, CheckResult{Name: "backup " + b.Name, OK: ok, Detail: detail})
		}
	}

	ok, detail = checkDisk()
	results = append(results, CheckResult{Name: "disk", OK: ok, Detail: detail})

	return results
}

func checkS3(ctx context.Context, cfg *config.Config) (*s3.Client, bool, string) {
	client, err := s3.New(ctx, s3.Options{
		Endpoint:           cfg.S3.Endpoint,
		Region:             cfg.S3.Region,
		AccessKey:          cfg.S3.AccessKey,
		SecretKey:          cfg.S3.SecretKey,
		Bucket:             cfg.S3.Bucket,
		Prefix:             cfg.S3.Prefix,
		PathStyle:          cfg.S3.PathStyle,
		InsecureSkipVerify: cfg.S3.TLS != nil && cfg.S3.TLS.InsecureSkipVerify,
	})
	if err != nil {
		return nil, false, fmt.Sprintf("s3 client init failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return nil, false, fmt.Sprintf("s3 list failed: %v", err)
	}
	return client, true, fmt.Sprintf("s3 OK (bucket=%s, prefix=%s)", cfg.S3.Bucket, cfg.S3.Prefix)
}

// checkBackupIndexes verifies the backup scope contains at least one index
// snapshot, since a prune against an empty scope aborts.
func checkBackupIndexes(ctx context.Context, client *s3.Client, name string) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	objects, err := client.ListObjects(ctx, s3.ScopePrefix(name))
	if err != nil {
		return false, fmt.Sprintf("list failed: %v", err)
	}
	indexes := 0
	for _, obj := range objects {
		if s3.IsIndexKey(obj.Key) {
			indexes++
		}
	}
	if indexes == 0 {
		return false, fmt.Sprintf("no index snapshots under %s (prune would abort)", s3.ScopePrefix(name))
	}
	return true, fmt.Sprintf("%d index snapshots, %d objects total", indexes, len(objects))
}

func checkLocalLock() (bool, string) {
	l, err := lock.NewLocal(lock.LocalOptions{Name: "doctor"})
	if err != nil {
		return false, fmt.Sprintf("local lock init failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Acquire(ctx); err != nil {
		return false, fmt.Sprintf("local lock acquire failed: %v", err)
	}
	if err := l.Release(context.Background()); err != nil {
		return false, fmt.Sprintf("local lock release failed: %v", err)
	}
	return true, fmt.Sprintf("local lock dir accessible (%s)", lock.DefaultLockDir)
}

func checkDisk() (bool, string) {
	dir := os.TempDir()
	f, err := os.CreateTemp(dir, "snapsweep-doctor-*")
	if err != nil {
		return false, fmt.Sprintf("create temp file failed in %s: %v", dir, err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString("test"); err != nil {
		_ = f.Close()
		return false, fmt.Sprintf("write temp file failed: %v", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Sprintf("close temp file failed: %v", err)
	}
	return true, fmt.Sprintf("temp dir writable (%s)", dir)
}
