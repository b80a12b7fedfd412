package config

import (
	"path"
	"strings"
)

// NormalizePrefix canonicalizes the bucket key prefix every store operation
// is scoped under: forward slashes only, no leading/trailing or doubled
// separators, and dot segments collapsed. An empty result means the client
// works from the bucket root.
func NormalizePrefix(prefix string) string {
	prefix = strings.ReplaceAll(prefix, "\\", "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	cleaned := path.Clean(prefix)
	if cleaned == "." || cleaned == "/" {
		return ""
	}
	return strings.Trim(cleaned, "/")
}
