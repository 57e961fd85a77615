// Package hasher derives short stable identifiers with xxHash64.
package hasher

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to hexLen characters. A non-positive hexLen keeps all 16.
func ContentHash(data []byte, hexLen int) string {
	return truncate(fmt.Sprintf("%016x", xxhash.Sum64(data)), hexLen)
}

// CacheKey returns "<namespace>_<hex>" for text. Text is trimmed and
// lower-cased first so "AWS Cloud" and " aws cloud" share an entry.
func CacheKey(namespace, text string) string {
	sum := xxhash.Sum64String(strings.ToLower(strings.TrimSpace(text)))
	return fmt.Sprintf("%s_%016x", namespace, sum)
}

func truncate(full string, n int) string {
	if n > 0 && n < len(full) {
		return full[:n]
	}
	return full
}
