package hasher

import (
	"strings"
	"testing"
)

func TestContentHash(t *testing.T) {
	full := ContentHash([]byte("thumbnail"), 0)
	if len(full) != 16 {
		t.Fatalf("len: got %d", len(full))
	}
	if got := ContentHash([]byte("thumbnail"), 8); got != full[:8] {
		t.Errorf("truncated: got %q, want %q", got, full[:8])
	}
	if ContentHash([]byte("a"), 0) == ContentHash([]byte("b"), 0) {
		t.Error("different inputs hashed equal")
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("search", "AWS Cloud")
	b := CacheKey("search", "  aws cloud ")
	if a != b {
		t.Errorf("normalisation: %q != %q", a, b)
	}
	if !strings.HasPrefix(a, "search_") || len(a) != len("search_")+16 {
		t.Errorf("format: got %q", a)
	}
	if CacheKey("search", "python") == CacheKey("search", "django") {
		t.Error("distinct keywords share a key")
	}
}
