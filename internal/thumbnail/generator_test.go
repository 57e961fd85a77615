package thumbnail

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/updaun/postkit/internal/cache"
	"github.com/updaun/postkit/internal/encoder"
)

type imageServer struct {
	*httptest.Server
	mu     sync.Mutex
	agents []string
}

func newImageServer(t *testing.T) *imageServer {
	t.Helper()
	src := image.NewRGBA(image.Rect(0, 0, 80, 40))
	for x := 0; x < 80; x++ {
		for y := 0; y < 40; y++ {
			src.Set(x, y, color.RGBA{uint8(x * 3), uint8(y * 6), 120, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	s := &imageServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.agents = append(s.agents, r.Header.Get("User-Agent"))
		s.mu.Unlock()
		if !strings.HasPrefix(r.URL.Path, "/ok") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	t.Cleanup(s.Close)
	return s
}

type genWorkspace struct {
	posts  string
	images string
	cache  string
}

func newGenWorkspace(t *testing.T) genWorkspace {
	t.Helper()
	root := t.TempDir()
	w := genWorkspace{
		posts:  filepath.Join(root, "_posts"),
		images: filepath.Join(root, "assets", "img", "posts"),
		cache:  filepath.Join(root, ".thumbnail_cache", "image_cache.json"),
	}
	if err := os.MkdirAll(w.posts, 0o755); err != nil {
		t.Fatal(err)
	}
	return w
}

func (w genWorkspace) write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (w genWorkspace) generator(t *testing.T, template string, force bool) *Generator {
	t.Helper()
	c := cache.Open[[]Candidate](w.cache, cache.Options{})
	g, err := New(Config{
		PostsDir:  w.posts,
		ImagesDir: w.images,
		Width:     300,
		Height:    150,
		Quality:   80,
		Format:    "png",
		Force:     force,
	},
		WithSearcher(&Searcher{Template: template, MaxKeywords: 3, MaxCandidates: 5, Cache: c}),
		WithRegistry(encoder.NewRegistryWith(&encoder.JPEGEncoder{}, &encoder.PNGEncoder{})),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return g
}

const samplePost = "---\ntitle: AWS Lambda 가이드\ncategories: [aws]\ntags: [serverless]\n---\nLambda on AWS with Python.\n"

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestGenerate_Downloaded(t *testing.T) {
	srv := newImageServer(t)
	w := newGenWorkspace(t)
	w.write(t, w.posts, "2025-07-01-foo.md", samplePost)

	results := w.generator(t, srv.URL+"/ok?q={query}", false).Run(context.Background(), []string{"2025-07-01-foo.md"})
	if len(results) != 1 {
		t.Fatalf("results: got %d", len(results))
	}
	r := results[0]
	if r.Status != StatusGenerated || r.Err != nil {
		t.Fatalf("status: got %s err=%v", r.Status, r.Err)
	}
	if r.Output != "2025-07-01-foo.png" || r.Hash == "" || r.Bytes == 0 {
		t.Errorf("result: got %+v", r)
	}
	if !strings.HasPrefix(r.Source, srv.URL+"/ok") {
		t.Errorf("source: got %q", r.Source)
	}
	if wd, ht := decodeSize(t, filepath.Join(w.images, r.Output)); wd != 300 || ht != 150 {
		t.Errorf("size: got %dx%d", wd, ht)
	}
	if srv.agents[0] != UserAgent {
		t.Errorf("user agent: got %q", srv.agents[0])
	}
	if _, err := os.Stat(w.cache); err != nil {
		t.Errorf("search cache not saved: %v", err)
	}
}

func TestGenerate_FallbackWhenDownloadsFail(t *testing.T) {
	srv := newImageServer(t)
	w := newGenWorkspace(t)
	w.write(t, w.posts, "2025-07-01-foo.md", samplePost)

	r := w.generator(t, srv.URL+"/missing?q={query}", false).Generate(context.Background(), "2025-07-01-foo.md")
	if r.Status != StatusFallback || r.Err != nil {
		t.Fatalf("status: got %s err=%v", r.Status, r.Err)
	}
	if len(srv.agents) == 0 {
		t.Error("no download attempted")
	}
	if wd, ht := decodeSize(t, filepath.Join(w.images, r.Output)); wd != 300 || ht != 150 {
		t.Errorf("size: got %dx%d", wd, ht)
	}
}

func TestGenerate_SkipsExistingUnlessForced(t *testing.T) {
	srv := newImageServer(t)
	w := newGenWorkspace(t)
	w.write(t, w.posts, "2025-07-01-foo.md", samplePost)
	w.write(t, w.images, "2025-07-01-foo.webp", "old")

	r := w.generator(t, srv.URL+"/ok?q={query}", false).Generate(context.Background(), "2025-07-01-foo.md")
	if r.Status != StatusSkipped || r.Output != "2025-07-01-foo.webp" {
		t.Fatalf("got %+v", r)
	}
	if len(srv.agents) != 0 {
		t.Error("skipped post should not download")
	}

	r = w.generator(t, srv.URL+"/ok?q={query}", true).Generate(context.Background(), "2025-07-01-foo.md")
	if r.Status != StatusGenerated || r.Output != "2025-07-01-foo.png" {
		t.Fatalf("forced: got %+v", r)
	}
	if _, err := os.Stat(filepath.Join(w.images, "2025-07-01-foo.webp")); !os.IsNotExist(err) {
		t.Errorf("replaced thumbnail still present: %v", err)
	}
}

func TestGenerate_FailsWithoutMetadata(t *testing.T) {
	w := newGenWorkspace(t)
	w.write(t, w.posts, "a.md", "no header\n")
	w.write(t, w.posts, "b.md", "---\n---\nempty header\n")

	g := w.generator(t, "", false)
	for _, post := range []string{"a.md", "b.md", "missing.md"} {
		r := g.Generate(context.Background(), post)
		if r.Status != StatusFailed || r.Err == nil {
			t.Errorf("%s: got %s err=%v", post, r.Status, r.Err)
		}
	}
	entries, _ := os.ReadDir(w.images)
	if len(entries) != 0 {
		t.Errorf("images written for failed posts: %d", len(entries))
	}
}

func TestFromURLs(t *testing.T) {
	srv := newImageServer(t)
	w := newGenWorkspace(t)
	w.write(t, w.posts, "p.md", samplePost)
	g := w.generator(t, "", false)

	r := g.FromURLs(context.Background(), "p.md", []string{srv.URL + "/missing", srv.URL + "/ok/1"})
	if r.Status != StatusGenerated || r.Source != srv.URL+"/ok/1" {
		t.Fatalf("got %+v", r)
	}

	w.write(t, w.posts, "q.md", samplePost)
	r = g.FromURLs(context.Background(), "q.md", []string{srv.URL + "/missing"})
	if r.Status != StatusFailed || r.Err == nil {
		t.Errorf("all failing: got %+v", r)
	}
}

func TestRecentPosts(t *testing.T) {
	w := newGenWorkspace(t)
	for _, name := range []string{"2025-06-01-a.md", "2025-06-25-b.md", "2025-07-01-c.md", "notes.md"} {
		w.write(t, w.posts, name, samplePost)
	}
	g, err := New(Config{
		PostsDir:  w.posts,
		ImagesDir: w.images,
		Width:     10,
		Height:    10,
		Now:       func() time.Time { return time.Date(2025, 7, 2, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	got, err := g.RecentPosts(7)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if strings.Join(got, ",") != "2025-07-01-c.md" {
		t.Errorf("7 days: got %v", got)
	}
	got, _ = g.RecentPosts(8)
	if strings.Join(got, ",") != "2025-07-01-c.md,2025-06-25-b.md" {
		t.Errorf("8 days: got %v", got)
	}
}

func TestCurrentPost(t *testing.T) {
	w := newGenWorkspace(t)
	w.write(t, w.posts, "old.md", samplePost)
	w.write(t, w.posts, "new.md", samplePost)
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(w.posts, "old.md"), past, past); err != nil {
		t.Fatal(err)
	}

	g := w.generator(t, "", false)
	got, err := g.CurrentPost()
	if err != nil || got != "new.md" {
		t.Errorf("got %q err=%v", got, err)
	}
}
