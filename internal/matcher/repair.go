package matcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/updaun/postkit/internal/frontmatter"
	"github.com/updaun/postkit/internal/logging"
)

// Fix reasons.
const (
	ReasonIncorrectPath = "incorrect_path"
	ReasonMissingImage  = "missing_image"
)

// RepairOptions controls a repair run.
type RepairOptions struct {
	// DryRun computes fixes without writing.
	DryRun bool
}

// Fix is one rewritten image field.
type Fix struct {
	Post     string `json:"post"`
	OldImage string `json:"old_image,omitempty"`
	NewImage string `json:"new_image"`
	Reason   string `json:"reason"`
}

// Failure is a post that could not be repaired.
type Failure struct {
	Post  string `json:"post"`
	Error string `json:"error"`
}

// RepairResult reports a repair run.
type RepairResult struct {
	DryRun         bool      `json:"dry_run,omitempty"`
	Fixed          []Fix     `json:"fixed"`
	Failed         []Failure `json:"failed,omitempty"`
	NeedsThumbnail []string  `json:"needs_thumbnail"`
	Before         *Status   `json:"before"`
	After          *Status   `json:"after"`
}

// Repair points every post that has a thumbnail at it. It scans, rewrites
// the image field of incorrect_path posts, fills in the image field of
// unmatched posts whose thumbnail has since appeared, then scans again.
// Per-post failures are recorded and do not stop the run.
func (m *Matcher) Repair(ctx context.Context, opts RepairOptions) (*RepairResult, error) {
	before, err := m.Scan(ctx)
	if err != nil {
		return nil, err
	}
	res := &RepairResult{
		DryRun:         opts.DryRun,
		Fixed:          []Fix{},
		NeedsThumbnail: []string{},
		Before:         before,
	}

	for _, e := range before.IncorrectPath {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.apply(res, e.Post, e.ExpectedImage, ReasonIncorrectPath, opts.DryRun)
	}

	thumbs, err := ListThumbnails(m.layout.ImagesDir)
	if err != nil {
		return nil, err
	}
	for _, e := range before.Unmatched {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		th, ok := thumbs.Lookup(e.Stem)
		if !ok {
			res.NeedsThumbnail = append(res.NeedsThumbnail, e.Post)
			continue
		}
		if e.CurrentImage != "" {
			continue
		}
		m.apply(res, e.Post, ExpectedPath(m.layout.URLPrefix, th.Name), ReasonMissingImage, opts.DryRun)
	}

	if opts.DryRun {
		res.After = before
		return res, nil
	}
	res.After, err = m.Scan(ctx)
	if err != nil {
		return nil, err
	}
	m.logger.Info("repair complete",
		slog.Int("fixed", len(res.Fixed)),
		slog.Int("failed", len(res.Failed)),
		slog.Int("needs_thumbnail", len(res.NeedsThumbnail)),
	)
	return res, nil
}

func (m *Matcher) apply(res *RepairResult, post, image, reason string, dryRun bool) {
	old, changed, err := m.setImage(post, image, reason == ReasonMissingImage, dryRun)
	if err != nil {
		m.logger.Warn("repair failed", slog.String("post", post), logging.Error(err))
		res.Failed = append(res.Failed, Failure{Post: post, Error: err.Error()})
		return
	}
	if !changed {
		return
	}
	m.logger.Info("image updated",
		slog.String("post", post),
		slog.String("image", image),
		slog.String("reason", reason),
		slog.Bool("dry_run", dryRun),
	)
	res.Fixed = append(res.Fixed, Fix{Post: post, OldImage: old, NewImage: image, Reason: reason})
}

// setImage rewrites the image field of post. With onlyIfEmpty an existing
// value is left alone. The body after the header is written back unchanged.
func (m *Matcher) setImage(post, image string, onlyIfEmpty, dryRun bool) (old string, changed bool, err error) {
	path := filepath.Join(m.layout.PostsDir, post)
	info, err := os.Stat(path)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}
	meta, doc, err := frontmatter.Parse(data)
	if err != nil {
		return "", false, err
	}

	old = meta.Image()
	if old == image || (onlyIfEmpty && old != "") {
		return old, false, nil
	}
	meta.SetString("image", image)
	if dryRun {
		return old, true, nil
	}

	out, err := doc.Render(meta)
	if err != nil {
		return old, false, err
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return old, false, fmt.Errorf("write post: %w", err)
	}
	return old, true, nil
}
