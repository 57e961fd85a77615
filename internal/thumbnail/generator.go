// Package thumbnail generates post thumbnails: it derives search keywords
// from a post, downloads a matching stock image, draws the title over it
// and writes it next to the other thumbnails. When every download fails it
// draws fallback art instead.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/updaun/postkit/internal/cache"
	"github.com/updaun/postkit/internal/encoder"
	"github.com/updaun/postkit/internal/frontmatter"
	"github.com/updaun/postkit/internal/hasher"
	"github.com/updaun/postkit/internal/logging"
	"github.com/updaun/postkit/internal/matcher"
)

// Status is the outcome for one post.
type Status string

const (
	StatusGenerated Status = "generated"
	StatusSkipped   Status = "skipped"
	StatusFallback  Status = "fallback"
	StatusFailed    Status = "failed"
)

// Config holds all parameters for a generator.
type Config struct {
	PostsDir  string
	ImagesDir string
	Width     int
	Height    int
	Quality   int
	Format    string
	FontPath  string
	// Scheme forces a colour scheme by name instead of choosing one per post.
	Scheme string
	// Force regenerates posts that already have a thumbnail.
	Force   bool
	Mapping Mapping
	Now     func() time.Time
}

// Result reports one post.
type Result struct {
	Post     string   `json:"post"`
	Status   Status   `json:"status"`
	Output   string   `json:"output,omitempty"`
	Source   string   `json:"source,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Hash     string   `json:"hash,omitempty"`
	Bytes    int      `json:"bytes,omitempty"`
	Err      error    `json:"-"`
}

// Generator produces thumbnails for posts.
type Generator struct {
	cfg      Config
	registry *encoder.Registry
	renderer *Renderer
	searcher *Searcher
	fetcher  *Fetcher
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logging.WithComponent(logger, "thumbnail") }
}

// WithSearcher sets the candidate source. Without one every post gets
// fallback art.
func WithSearcher(s *Searcher) Option {
	return func(g *Generator) { g.searcher = s }
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f *Fetcher) Option {
	return func(g *Generator) { g.fetcher = f }
}

// WithRegistry replaces the encoder registry.
func WithRegistry(r *encoder.Registry) Option {
	return func(g *Generator) { g.registry = r }
}

// New creates a configured generator and ensures the images directory
// exists.
func New(cfg Config, opts ...Option) (*Generator, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Mapping == nil {
		cfg.Mapping = DefaultMapping()
	}
	g := &Generator{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	if g.registry == nil {
		g.registry = encoder.NewRegistry()
	}
	if g.fetcher == nil {
		g.fetcher = NewFetcher()
	}
	g.renderer = NewRenderer(cfg.Width, cfg.Height, cfg.FontPath)

	if err := os.MkdirAll(cfg.ImagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	g.logger.Debug("generator ready",
		slog.String("encoders", g.registry.String()),
		slog.String("font", g.renderer.FontSource()),
	)
	return g, nil
}

// Run generates thumbnails for posts in order. A failed post never stops
// the batch. The search cache is saved once at the end.
func (g *Generator) Run(ctx context.Context, posts []string) []Result {
	results := make([]Result, 0, len(posts))
	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Post: post, Status: StatusFailed, Err: err})
			continue
		}
		r := g.Generate(ctx, post)
		if r.Err != nil {
			g.logger.Warn("thumbnail failed", slog.String("post", post), logging.Error(r.Err))
		} else {
			g.logger.Info("thumbnail done",
				slog.String("post", post),
				slog.String("status", string(r.Status)),
				slog.String("output", r.Output),
			)
		}
		results = append(results, r)
	}
	g.saveCache()
	return results
}

// Generate produces the thumbnail for one post file name.
func (g *Generator) Generate(ctx context.Context, post string) Result {
	res := Result{Post: post}

	info, err := g.readPost(post)
	if err != nil {
		return failed(res, err)
	}

	existing, err := g.existing(post)
	if err != nil {
		return failed(res, err)
	}
	if existing != nil && !g.cfg.Force {
		res.Status = StatusSkipped
		res.Output = existing.Name
		return res
	}

	res.Keywords = SearchKeywords(info, g.cfg.Mapping)
	scheme := g.scheme(info)
	g.logger.Debug("search keywords", slog.String("post", post), slog.Any("keywords", res.Keywords), slog.String("scheme", scheme.Name))

	var candidates []Candidate
	if g.searcher != nil {
		candidates = g.searcher.Candidates(res.Keywords)
	}
	for i, c := range candidates {
		img, err := g.fetcher.Fetch(ctx, c.URL)
		if err != nil {
			if ctx.Err() != nil {
				return failed(res, ctx.Err())
			}
			g.logger.Warn("download failed",
				slog.String("post", post),
				slog.Int("attempt", i+1),
				slog.String("keyword", c.Keyword),
				logging.Error(err),
			)
			continue
		}
		res.Source = c.URL
		res.Status = StatusGenerated
		return g.write(res, existing, g.renderer.Compose(img, info, scheme))
	}

	res.Source = "fallback"
	res.Status = StatusFallback
	return g.write(res, existing, g.renderer.Fallback(info, scheme))
}

// FromURLs downloads the first working URL as the post's thumbnail. There
// is no fallback art.
func (g *Generator) FromURLs(ctx context.Context, post string, urls []string) Result {
	res := Result{Post: post}

	info, err := g.readPost(post)
	if err != nil {
		return failed(res, err)
	}
	existing, err := g.existing(post)
	if err != nil {
		return failed(res, err)
	}
	if existing != nil && !g.cfg.Force {
		res.Status = StatusSkipped
		res.Output = existing.Name
		return res
	}

	var errs []error
	for _, u := range urls {
		img, err := g.fetcher.Fetch(ctx, u)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u, err))
			continue
		}
		res.Source = u
		res.Status = StatusGenerated
		return g.write(res, existing, g.renderer.Compose(img, info, g.scheme(info)))
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no urls given"))
	}
	return failed(res, errors.Join(errs...))
}

var postDate = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)

// RecentPosts returns posts whose file name date is within days of now,
// newest first.
func (g *Generator) RecentPosts(days int) ([]string, error) {
	names, err := g.postNames()
	if err != nil {
		return nil, err
	}
	now := g.cfg.Now()
	cutoff := now.AddDate(0, 0, -days)

	var recent []string
	for _, name := range names {
		m := postDate.FindString(name)
		if m == "" {
			continue
		}
		d, err := time.ParseInLocation("2006-01-02", m, now.Location())
		if err != nil {
			continue
		}
		if !d.Before(cutoff) {
			recent = append(recent, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(recent)))
	return recent, nil
}

// CurrentPost returns the most recently modified post.
func (g *Generator) CurrentPost() (string, error) {
	names, err := g.postNames()
	if err != nil {
		return "", err
	}
	var (
		latest     string
		latestTime time.Time
	)
	for _, name := range names {
		info, err := os.Stat(filepath.Join(g.cfg.PostsDir, name))
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestTime) {
			latest, latestTime = name, info.ModTime()
		}
	}
	if latest == "" {
		return "", errors.New("no posts found")
	}
	return latest, nil
}

func (g *Generator) readPost(post string) (PostInfo, error) {
	data, err := os.ReadFile(filepath.Join(g.cfg.PostsDir, post))
	if err != nil {
		return PostInfo{}, fmt.Errorf("read post: %w", err)
	}
	meta, doc, err := frontmatter.Parse(data)
	if err != nil {
		return PostInfo{}, fmt.Errorf("no usable metadata: %w", err)
	}
	if meta.Len() == 0 {
		return PostInfo{}, errors.New("no usable metadata: header is empty")
	}
	f := meta.Fields()
	return PostInfo{
		Title:        f.Title,
		Categories:   f.Categories,
		Tags:         f.Tags,
		BodyKeywords: ExtractKeywords(string(doc.Body), MaxBodyKeywords),
	}, nil
}

func (g *Generator) existing(post string) (*matcher.Thumbnail, error) {
	thumbs, err := matcher.ListThumbnails(g.cfg.ImagesDir)
	if err != nil {
		return nil, err
	}
	if th, ok := thumbs.Lookup(matcher.Stem(post)); ok {
		return &th, nil
	}
	return nil, nil
}

func (g *Generator) scheme(info PostInfo) Scheme {
	if g.cfg.Scheme != "" {
		return GetScheme(g.cfg.Scheme)
	}
	return SelectScheme(info)
}

// write encodes img and stores it as <stem>.<ext>. A forced rewrite that
// changes the extension removes the old file so the stem stays unique.
func (g *Generator) write(res Result, existing *matcher.Thumbnail, img image.Image) Result {
	enc, err := g.registry.Resolve(g.cfg.Format)
	if err != nil {
		return failed(res, err)
	}
	if g.registry.Get(g.cfg.Format) == nil {
		g.logger.Debug("encoder unavailable, using fallback",
			slog.String("requested", g.cfg.Format),
			slog.String("using", enc.Format()),
		)
	}
	data, err := enc.Encode(img, g.cfg.Quality)
	if err != nil {
		return failed(res, fmt.Errorf("encode %s: %w", enc.Format(), err))
	}

	name := strings.TrimSuffix(res.Post, filepath.Ext(res.Post)) + "." + enc.Extension()
	if err := os.WriteFile(filepath.Join(g.cfg.ImagesDir, name), data, 0o644); err != nil {
		return failed(res, fmt.Errorf("write thumbnail: %w", err))
	}
	if existing != nil && existing.Name != name {
		if err := os.Remove(existing.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			g.logger.Warn("could not remove replaced thumbnail", slog.String("file", existing.Name), logging.Error(err))
		}
	}

	res.Output = name
	res.Bytes = len(data)
	res.Hash = hasher.ContentHash(data, 16)
	return res
}

func (g *Generator) postNames() ([]string, error) {
	entries, err := os.ReadDir(g.cfg.PostsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", matcher.ErrPostsDirMissing, g.cfg.PostsDir)
	}
	if err != nil {
		return nil, fmt.Errorf("read posts dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (g *Generator) saveCache() {
	if g.searcher == nil || g.searcher.Cache == nil {
		return
	}
	err := g.searcher.Cache.Save()
	switch {
	case errors.Is(err, cache.ErrLocked):
		g.logger.Warn("search cache not saved, another run holds the lock", slog.String("path", g.searcher.Cache.Path()))
	case err != nil:
		g.logger.Warn("search cache not saved", logging.Error(err))
	}
}

func failed(res Result, err error) Result {
	res.Status = StatusFailed
	res.Err = err
	return res
}
