// Package matcher associates blog posts with thumbnail images by filename
// stem and repairs the image field of post front matter.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/updaun/postkit/internal/frontmatter"
	"github.com/updaun/postkit/internal/logging"
)

// ErrPostsDirMissing means the posts directory does not exist.
var ErrPostsDirMissing = errors.New("posts directory not found")

// Layout locates posts and thumbnails.
type Layout struct {
	PostsDir  string
	ImagesDir string
	// URLPrefix is prepended to a thumbnail filename to form the image field.
	URLPrefix string
}

// Entry is one post in a status bucket.
type Entry struct {
	Post          string `json:"post"`
	Stem          string `json:"stem"`
	Thumbnail     string `json:"thumbnail,omitempty"`
	CurrentImage  string `json:"current_image,omitempty"`
	ExpectedImage string `json:"expected_image,omitempty"`
}

// Orphan is a thumbnail no post claims.
type Orphan struct {
	Thumbnail string `json:"thumbnail"`
	Stem      string `json:"stem"`
}

// ParseWarning records a post whose header could not be read.
type ParseWarning struct {
	Post  string `json:"post"`
	Error string `json:"error"`
}

// Status is the classification of every post in the workspace.
type Status struct {
	Matched       []Entry        `json:"matched"`
	IncorrectPath []Entry        `json:"incorrect_path"`
	Unmatched     []Entry        `json:"unmatched"`
	Orphaned      []Orphan       `json:"orphaned"`
	Duplicates    []Duplicate    `json:"duplicates,omitempty"`
	ParseWarnings []ParseWarning `json:"parse_warnings,omitempty"`
	Posts         int            `json:"posts"`
	Thumbnails    int            `json:"thumbnails"`
}

// Matcher scans and repairs one workspace.
type Matcher struct {
	layout Layout
	logger *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logging.WithComponent(logger, "matcher")
	}
}

// New checks the layout and returns a Matcher. A missing posts directory is
// fatal; a missing images directory is created empty.
func New(layout Layout, opts ...Option) (*Matcher, error) {
	m := &Matcher{layout: layout, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.checkPostsDir(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(layout.ImagesDir); errors.Is(err, fs.ErrNotExist) {
		m.logger.Info("creating images directory", slog.String("dir", layout.ImagesDir))
		if err := os.MkdirAll(layout.ImagesDir, 0o755); err != nil {
			return nil, fmt.Errorf("create images dir: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat images dir: %w", err)
	}
	return m, nil
}

// Layout returns the layout the matcher was built with.
func (m *Matcher) Layout() Layout {
	return m.layout
}

// Scan classifies every post. It never writes.
func (m *Matcher) Scan(ctx context.Context) (*Status, error) {
	posts, err := m.listPosts()
	if err != nil {
		return nil, err
	}
	thumbs, err := ListThumbnails(m.layout.ImagesDir)
	if err != nil {
		return nil, err
	}
	for _, d := range thumbs.Duplicates {
		m.logger.Warn("several images share a stem",
			slog.String("stem", d.Stem),
			slog.Any("files", d.Files),
			slog.String("using", d.Winner),
		)
	}

	st := &Status{
		Matched:       []Entry{},
		IncorrectPath: []Entry{},
		Unmatched:     []Entry{},
		Orphaned:      []Orphan{},
		Duplicates:    thumbs.Duplicates,
		Posts:         len(posts),
		Thumbnails:    thumbs.Len(),
	}

	postStems := make(map[string]bool, len(posts))
	for _, name := range posts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stem := Stem(name)
		postStems[stem] = true

		image, err := m.readImage(name)
		if err != nil {
			m.logger.Warn("treating header as empty", slog.String("post", name), logging.Error(err))
			st.ParseWarnings = append(st.ParseWarnings, ParseWarning{Post: name, Error: err.Error()})
		}

		entry := Entry{Post: name, Stem: stem, CurrentImage: image}
		th, ok := thumbs.Lookup(stem)
		if !ok {
			st.Unmatched = append(st.Unmatched, entry)
			continue
		}
		entry.Thumbnail = th.Name
		entry.ExpectedImage = ExpectedPath(m.layout.URLPrefix, th.Name)
		if image == entry.ExpectedImage {
			st.Matched = append(st.Matched, entry)
		} else {
			st.IncorrectPath = append(st.IncorrectPath, entry)
		}
	}

	for _, stem := range thumbs.Stems() {
		if postStems[stem] {
			continue
		}
		th, _ := thumbs.Lookup(stem)
		st.Orphaned = append(st.Orphaned, Orphan{Thumbnail: th.Name, Stem: stem})
	}

	m.logger.Debug("scan complete",
		slog.Int("posts", st.Posts),
		slog.Int("matched", len(st.Matched)),
		slog.Int("incorrect_path", len(st.IncorrectPath)),
		slog.Int("unmatched", len(st.Unmatched)),
		slog.Int("orphaned", len(st.Orphaned)),
	)
	return st, nil
}

// readImage returns the post's image field. On a read or parse error it
// returns "" together with the error.
func (m *Matcher) readImage(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(m.layout.PostsDir, name))
	if err != nil {
		return "", err
	}
	meta, _, err := frontmatter.Parse(data)
	if err != nil {
		return "", err
	}
	return meta.Image(), nil
}

// listPosts returns the markdown file names in the posts directory, sorted.
func (m *Matcher) listPosts() ([]string, error) {
	entries, err := os.ReadDir(m.layout.PostsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrPostsDirMissing, m.layout.PostsDir)
	}
	if err != nil {
		return nil, fmt.Errorf("read posts dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (m *Matcher) checkPostsDir() error {
	info, err := os.Stat(m.layout.PostsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrPostsDirMissing, m.layout.PostsDir)
	}
	if err != nil {
		return fmt.Errorf("stat posts dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrPostsDirMissing, m.layout.PostsDir)
	}
	return nil
}
