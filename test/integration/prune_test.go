//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"SnapSweep/internal/prune"
	"SnapSweep/internal/s3"
)

func putJSON(ctx context.Context, t *testing.T, client *s3.Client, key string, doc any) {
	t.Helper()
	body, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal %s: %v", key, err)
	}
	if err := client.PutObject(ctx, key, bytes.NewReader(body), int64(len(body))); err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
}

func putRaw(ctx context.Context, t *testing.T, client *s3.Client, key, body string) {
	t.Helper()
	if err := client.PutObject(ctx, key, bytes.NewReader([]byte(body)), int64(len(body))); err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
}

func TestMinIO_PruneRemovesUnreferencedObjects(t *testing.T) {
	endpoint, accessKey, secretKey, bucket := getMinIOEnv()
	prefix := "integration-test/prune-" + time.Now().Format("20060102150405")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	opts := s3.Options{
		Endpoint:           endpoint,
		Region:             "us-east-1",
		AccessKey:          accessKey,
		SecretKey:          secretKey,
		Bucket:             bucket,
		Prefix:             prefix,
		PathStyle:          true,
		InsecureSkipVerify: true,
	}
	client, err := s3.New(ctx, opts)
	if err != nil {
		t.Fatalf("s3.New: %v", err)
	}
	if err := client.CreateBucket(ctx); err != nil {
		t.Fatalf("CreateBucket: %v", err)
	}

	// Two snapshots referencing overlapping files, plus an orphan data
	// object no index references. All objects carry today's timestamp, so
	// with age 0 both indexes stay in policy and only the orphan goes.
	name := "it-host"
	putJSON(ctx, t, client, name+"/snap-a.index.json", map[string][]string{
		"etc/nginx": {"nginx.conf", "mime.types"},
	})
	putJSON(ctx, t, client, name+"/snap-b.index.json", map[string][]string{
		"etc/nginx": {"nginx.conf"},
	})
	putRaw(ctx, t, client, name+"/etc/nginx/nginx.conf", "server {}")
	putRaw(ctx, t, client, name+"/etc/nginx/mime.types", "types {}")
	putRaw(ctx, t, client, name+"/etc/nginx/orphan.bak", "stale")

	handles := make([]prune.Storage, 0, 2)
	for i := 0; i < 2; i++ {
		h, err := s3.New(ctx, opts)
		if err != nil {
			t.Fatalf("s3.New pool handle: %v", err)
		}
		handles = append(handles, h)
	}

	res, err := prune.Run(ctx, client, prune.NewStoragePool(handles), prune.Options{
		Name:    name,
		Policy:  prune.Policy{AgeDays: 0},
		Now:     time.Now().UTC(),
		Workers: 2,
		RunID:   "integration",
	})
	if err != nil {
		t.Fatalf("prune.Run: %v", err)
	}

	if res.IndexesKept != 2 {
		t.Errorf("IndexesKept = %d, want 2", res.IndexesKept)
	}
	if res.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", res.Deleted)
	}

	remaining, err := client.ListObjects(ctx, name+"/")
	if err != nil {
		t.Fatalf("ListObjects: %v", err)
	}
	keys := make(map[string]struct{}, len(remaining))
	for _, obj := range remaining {
		keys[obj.Key] = struct{}{}
	}
	if _, ok := keys[name+"/etc/nginx/orphan.bak"]; ok {
		t.Error("orphan object survived the prune")
	}
	for _, want := range []string{
		name + "/snap-a.index.json",
		name + "/snap-b.index.json",
		name + "/etc/nginx/nginx.conf",
		name + "/etc/nginx/mime.types",
	} {
		if _, ok := keys[want]; !ok {
			t.Errorf("expected key %q to survive the prune", want)
		}
	}
}

func TestMinIO_DryRunDeletesNothing(t *testing.T) {
	endpoint, accessKey, secretKey, bucket := getMinIOEnv()
	prefix := "integration-test/dryrun-" + time.Now().Format("20060102150405")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	opts := s3.Options{
		Endpoint:           endpoint,
		Region:             "us-east-1",
		AccessKey:          accessKey,
		SecretKey:          secretKey,
		Bucket:             bucket,
		Prefix:             prefix,
		PathStyle:          true,
		InsecureSkipVerify: true,
	}
	client, err := s3.New(ctx, opts)
	if err != nil {
		t.Fatalf("s3.New: %v", err)
	}
	if err := client.CreateBucket(ctx); err != nil {
		t.Fatalf("CreateBucket: %v", err)
	}

	name := "it-host"
	putJSON(ctx, t, client, name+"/snap.index.json", map[string][]string{
		"etc": {"kept.conf"},
	})
	putRaw(ctx, t, client, name+"/etc/kept.conf", "x")
	putRaw(ctx, t, client, name+"/etc/orphan.conf", "y")

	res, err := prune.Run(ctx, client, prune.NewStoragePool([]prune.Storage{client}), prune.Options{
		Name:   name,
		Policy: prune.Policy{AgeDays: 0},
		Now:    time.Now().UTC(),
		DryRun: true,
		RunID:  "integration",
	})
	if err != nil {
		t.Fatalf("prune.Run: %v", err)
	}
	if res.Candidates != 1 {
		t.Errorf("Candidates = %d, want 1", res.Candidates)
	}

	remaining, err := client.ListObjects(ctx, name+"/")
	if err != nil {
		t.Fatalf("ListObjects: %v", err)
	}
	if len(remaining) != 3 {
		t.Errorf("remaining objects = %d, want 3 (dry run must not delete)", len(remaining))
	}
}
