package s3

import (
	"path"
	"strings"
)

const (
	IndexSuffix           = ".index.json"
	CompressedIndexSuffix = ".index.json.zst"

	LocksPrefix = "locks"
)

// IsIndexKey reports whether the key names a snapshot index object, in
// either plain or zstd-compressed form.
func IsIndexKey(key string) bool {
	return strings.HasSuffix(key, IndexSuffix) || strings.HasSuffix(key, CompressedIndexSuffix)
}

func IsCompressedIndexKey(key string) bool {
	return strings.HasSuffix(key, CompressedIndexSuffix)
}

// ScopePrefix is the listing prefix for one backup set.
func ScopePrefix(name string) string {
	return strings.Trim(name, "/") + "/"
}

// DataObjectKey qualifies one index entry into the key form data objects
// are stored under.
func DataObjectKey(name, dir, file string) string {
	return path.Join(strings.Trim(name, "/"), dir, file)
}

func LockKey(name string) string {
	return path.Join(LocksPrefix, name+".lock")
}
