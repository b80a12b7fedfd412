package prune

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"SnapSweep/internal/config"
	"SnapSweep/internal/logging"
	"SnapSweep/internal/s3"
)

// Object is one listed store object. Aliased from the store client so
// listings flow into the core without conversion.
type Object = s3.ObjectInfo

// Storage is the slice of the store client pruning needs. Satisfied by
// *s3.Client and by in-memory fakes in tests.
type Storage interface {
	ListObjects(ctx context.Context, prefix string) ([]Object, error)
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteObjects(ctx context.Context, keys []string) (int, error)
}

// Policy is the retention policy for one run: the maximum whole-day age an
// index may have and still be kept. The newest index is kept regardless.
type Policy struct {
	AgeDays int
}

var ErrNoBackups = errors.New("no backup indexes found")

// MalformedIndexError marks an index document without exactly one directory
// entry. It is treated as corruption and aborts the run.
type MalformedIndexError struct {
	Key     string
	Entries int
}

func (e *MalformedIndexError) Error() string {
	return fmt.Sprintf("malformed index %s: expected exactly one directory entry, got %d", e.Key, e.Entries)
}

type Options struct {
	Name          string
	Policy        Policy
	Now           time.Time
	Workers       int
	DryRun        bool
	VerboseDelete bool
	RunID         string
}

type Result struct {
	Listed       int
	Indexes      int
	IndexesKept  int
	DataKeysKept int
	Candidates   int
	Deleted      int
	DryRun       bool
	DeleteFailed bool
}

// Classify partitions listed objects into snapshot indexes and data objects
// by key suffix.
func Classify(objects []Object) (indexes, data []Object) {
	for _, obj := range objects {
		if s3.IsIndexKey(obj.Key) {
			indexes = append(indexes, obj)
		} else {
			data = append(data, obj)
		}
	}
	return indexes, data
}

// SelectIndexes picks the indexes to retain: the newest unconditionally,
// then every younger-or-equal-than-cutoff index walking backwards in time.
// The walk stops at the first index out of policy; everything older is out
// of policy too. All ages are computed against the single now instant.
func SelectIndexes(indexes []Object, policy Policy, now time.Time) ([]Object, error) {
	if len(indexes) == 0 {
		return nil, ErrNoBackups
	}

	sorted := make([]Object, len(indexes))
	copy(sorted, indexes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastModified.After(sorted[j].LastModified)
	})

	// The newest index always survives so at least one restore point remains.
	kept := []Object{sorted[0]}
	for _, obj := range sorted[1:] {
		if config.AgeDays(now, obj.LastModified) > policy.AgeDays {
			break
		}
		kept = append(kept, obj)
	}
	return kept, nil
}

// DeleteSet is the complement of both keep sets within the listing. Both
// subtractions are applied to every key; the result is sorted for
// deterministic logs.
func DeleteSet(all []Object, keptIndexes []Object, keptData map[string]struct{}) []string {
	keepIdx := make(map[string]struct{}, len(keptIndexes))
	for _, obj := range keptIndexes {
		keepIdx[obj.Key] = struct{}{}
	}

	var out []string
	for _, obj := range all {
		if _, ok := keepIdx[obj.Key]; ok {
			continue
		}
		if _, ok := keptData[obj.Key]; ok {
			continue
		}
		out = append(out, obj.Key)
	}
	sort.Strings(out)
	return out
}

// Run executes one prune: list, classify, select, resolve, compute the
// delete set, and delete. Every fatal condition returns before the delete
// call; a failed delete is logged and deferred, not fatal, because the same
// delete set is re-derivable on the next invocation.
func Run(ctx context.Context, store Storage, pool *StoragePool, opts Options) (Result, error) {
	res := Result{DryRun: opts.DryRun}
	log := logging.Default().WithFields(logrus.Fields{
		"backup": opts.Name,
		"run_id": opts.RunID,
	})

	objects, err := store.ListObjects(ctx, s3.ScopePrefix(opts.Name))
	if err != nil {
		return res, fmt.Errorf("list backup %s: %w", opts.Name, err)
	}
	res.Listed = len(objects)

	indexes, data := Classify(objects)
	res.Indexes = len(indexes)
	log.WithFields(logrus.Fields{
		"listed":  len(objects),
		"indexes": len(indexes),
		"data":    len(data),
	}).Debug("listing classified")

	kept, err := SelectIndexes(indexes, opts.Policy, opts.Now)
	if err != nil {
		return res, err
	}
	res.IndexesKept = len(kept)

	dataKeys, err := ResolveIndexes(ctx, pool, kept, opts.Name, opts.Workers)
	if err != nil {
		return res, err
	}
	res.DataKeysKept = len(dataKeys)

	deleteSet := DeleteSet(objects, kept, dataKeys)
	res.Candidates = len(deleteSet)
	log.WithFields(logrus.Fields{
		"indexes_kept":   len(kept),
		"data_keys_kept": len(dataKeys),
		"candidates":     len(deleteSet),
	}).Info("retention resolved")

	if opts.DryRun || opts.VerboseDelete {
		for _, key := range deleteSet {
			log.WithField("key", key).Info("delete candidate")
		}
	}
	if opts.DryRun {
		log.WithField("candidates", len(deleteSet)).Info("dry run, skipping delete")
		return res, nil
	}
	if len(deleteSet) == 0 {
		log.Info("nothing to delete")
		return res, nil
	}

	deleted, err := store.DeleteObjects(ctx, deleteSet)
	res.Deleted = deleted
	if err != nil {
		res.DeleteFailed = true
		log.WithError(err).WithFields(logrus.Fields{
			"candidates": len(deleteSet),
			"deleted":    deleted,
		}).Warn("bulk delete failed, cleanup deferred to next run")
		return res, nil
	}

	log.WithField("deleted", deleted).Info("prune completed")
	return res, nil
}
