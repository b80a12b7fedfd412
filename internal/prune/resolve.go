package prune

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"SnapSweep/internal/config"
	"SnapSweep/internal/s3"
)

// ResolveIndexes expands every kept index into the qualified data keys it
// references. Index fetches fan out over a bounded worker group; each worker
// accumulates into its own set and the sets are merged after the group
// finishes, so no container is written concurrently. The first fetch or
// parse error cancels the group and fails the whole resolution: a partial
// keep set must never reach the delete step.
func ResolveIndexes(ctx context.Context, pool *StoragePool, indexes []Object, name string, workers int) (map[string]struct{}, error) {
	merged := make(map[string]struct{})
	if len(indexes) == 0 {
		return merged, nil
	}
	if workers <= 0 {
		workers = config.DefaultWorkers
	}
	if workers > len(indexes) {
		workers = len(indexes)
	}

	jobs := make(chan Object, len(indexes))
	for _, idx := range indexes {
		jobs <- idx
	}
	close(jobs)

	sets := make([]map[string]struct{}, workers)
	g, grpCtx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		i := i
		sets[i] = make(map[string]struct{})
		g.Go(func() error {
			for obj := range jobs {
				if err := grpCtx.Err(); err != nil {
					return err
				}
				if err := resolveIndex(grpCtx, pool, obj, name, sets[i]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, s := range sets {
		for k := range s {
			merged[k] = struct{}{}
		}
	}
	return merged, nil
}

func resolveIndex(ctx context.Context, pool *StoragePool, obj Object, name string, into map[string]struct{}) error {
	store, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer pool.Release(store)

	rc, err := store.GetObject(ctx, obj.Key)
	if err != nil {
		return fmt.Errorf("fetch index %s: %w", obj.Key, err)
	}
	defer rc.Close()

	dir, files, err := decodeIndexDocument(obj.Key, rc)
	if err != nil {
		return err
	}
	for _, f := range files {
		into[s3.DataObjectKey(name, dir, f)] = struct{}{}
	}
	return nil
}

// decodeIndexDocument parses one index body: a JSON object with exactly one
// directory entry mapping to its file list. Compressed indexes are
// decompressed transparently by key suffix.
func decodeIndexDocument(key string, r io.Reader) (string, []string, error) {
	if s3.IsCompressedIndexKey(key) {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return "", nil, fmt.Errorf("decompress index %s: %w", key, err)
		}
		defer zr.Close()
		r = zr.IOReadCloser()
	}

	var doc map[string][]string
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return "", nil, fmt.Errorf("decode index %s: %w", key, err)
	}
	if len(doc) != 1 {
		return "", nil, &MalformedIndexError{Key: key, Entries: len(doc)}
	}
	for dir, files := range doc {
		return dir, files, nil
	}
	return "", nil, &MalformedIndexError{Key: key, Entries: 0}
}
