// Package liquid protects template snippets in posts from the site
// generator's Liquid engine by wrapping HTML code blocks that contain
// {% tags in {% raw %} ... {% endraw %}.
package liquid

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/updaun/postkit/internal/logging"
)

const (
	rawOpen  = "{% raw %}"
	rawClose = "{% endraw %}"
)

var htmlBlock = regexp.MustCompile("(?s)```html\n(.*?)```")

// File reports one processed file.
type File struct {
	Path    string `json:"path"`
	Wrapped int    `json:"wrapped"`
	Err     error  `json:"-"`
}

// Changed reports whether the file needed rewriting.
func (f File) Changed() bool { return f.Wrapped > 0 }

// Options control a patch run.
type Options struct {
	Workspace string
	Patterns  []string
	DryRun    bool
	Logger    *slog.Logger
}

// Wrap returns content with every unprotected HTML block wrapped and the
// number of blocks it wrapped. Content without such blocks comes back
// unchanged.
func Wrap(content string) (string, int) {
	n := 0
	out := htmlBlock.ReplaceAllStringFunc(content, func(block string) string {
		inner := htmlBlock.FindStringSubmatch(block)[1]
		if !strings.Contains(inner, "{%") || strings.Contains(inner, rawOpen) {
			return block
		}
		n++
		return "```html\n" + rawOpen + "\n" + inner + rawClose + "\n```"
	})
	return out, n
}

// Match expands patterns relative to the workspace. Results are sorted
// and deduplicated.
func Match(workspace string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range patterns {
		if !filepath.IsAbs(p) {
			p = filepath.Join(workspace, p)
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// Patch wraps blocks in every matched file. Files are only written when
// something changed; a failing file is recorded and the rest continue.
func Patch(ctx context.Context, opts Options) ([]File, error) {
	logger := logging.WithComponent(opts.Logger, "liquid")
	paths, err := Match(opts.Workspace, opts.Patterns)
	if err != nil {
		return nil, err
	}

	results := make([]File, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		f := patchFile(path, opts.DryRun)
		switch {
		case f.Err != nil:
			logger.Warn("patch failed", slog.String("file", path), logging.Error(f.Err))
		case f.Changed():
			logger.Info("wrapped template blocks",
				slog.String("file", path),
				slog.Int("blocks", f.Wrapped),
				slog.Bool("dry_run", opts.DryRun),
			)
		default:
			logger.Debug("nothing to wrap", slog.String("file", path))
		}
		results = append(results, f)
	}
	return results, nil
}

func patchFile(path string, dryRun bool) File {
	f := File{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		f.Err = err
		return f
	}
	out, n := Wrap(string(data))
	f.Wrapped = n
	if n == 0 || dryRun {
		return f
	}

	info, err := os.Stat(path)
	if err != nil {
		f.Err = err
		return f
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		f.Err = fmt.Errorf("write: %w", err)
	}
	return f
}
