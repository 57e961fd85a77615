package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/updaun/postkit/internal/matcher"
)

// Validate checks a report against itself and, when imagesDir is not
// empty, against the thumbnails on disk. It returns one message per
// problem.
func Validate(r *Report, imagesDir string) []string {
	var errs []string

	if r.Version != SupportedVersion {
		errs = append(errs, fmt.Sprintf("unsupported report version: %d", r.Version))
	}
	if r.Status == nil {
		return append(errs, "missing status section")
	}

	st := r.Status
	seen := map[string]string{}
	total := 0
	buckets := []struct {
		name    string
		entries []matcher.Entry
	}{
		{"matched", st.Matched},
		{"incorrect_path", st.IncorrectPath},
		{"unmatched", st.Unmatched},
	}
	for _, b := range buckets {
		for _, e := range b.entries {
			total++
			if e.Post == "" {
				errs = append(errs, fmt.Sprintf("%s: entry without post", b.name))
				continue
			}
			if prev, ok := seen[e.Post]; ok {
				errs = append(errs, fmt.Sprintf("post %q listed in both %s and %s", e.Post, prev, b.name))
			}
			seen[e.Post] = b.name

			if b.name == "unmatched" {
				continue
			}
			if e.Thumbnail == "" {
				errs = append(errs, fmt.Sprintf("%s %q: missing thumbnail", b.name, e.Post))
				continue
			}
			if imagesDir != "" {
				if _, err := os.Stat(filepath.Join(imagesDir, e.Thumbnail)); err != nil {
					errs = append(errs, fmt.Sprintf("%s %q: thumbnail not found: %s", b.name, e.Post, e.Thumbnail))
				}
			}
		}
	}
	if total != st.Posts {
		errs = append(errs, fmt.Sprintf("status.posts mismatch: %d != %d", st.Posts, total))
	}

	want := *r
	want.ComputeStats()
	if want.Stats != r.Stats {
		errs = append(errs, fmt.Sprintf("stats mismatch: report=%+v, computed=%+v", r.Stats, want.Stats))
	}
	return errs
}
