package matcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/unicode/norm"
)

type workspace struct {
	root   string
	layout Layout
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	root := t.TempDir()
	w := &workspace{
		root: root,
		layout: Layout{
			PostsDir:  filepath.Join(root, "_posts"),
			ImagesDir: filepath.Join(root, "assets", "img", "posts"),
			URLPrefix: "/assets/img/posts/",
		},
	}
	for _, dir := range []string{w.layout.PostsDir, w.layout.ImagesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return w
}

func (w *workspace) post(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(w.layout.PostsDir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (w *workspace) image(t *testing.T, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(w.layout.ImagesDir, name), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (w *workspace) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(w.layout.PostsDir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func (w *workspace) matcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := New(w.layout)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return m
}

func posts(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Post
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScan_Classifies(t *testing.T) {
	w := newWorkspace(t)
	w.post(t, "2025-07-01-foo.md", "---\ntitle: Foo\n---\nbody\n")
	w.post(t, "2025-07-02-bar.md", "---\ntitle: Bar\nimage: /wrong/path.png\n---\nbody\n")
	w.post(t, "2025-07-03-baz.md", "---\ntitle: Baz\n---\nbody\n")
	w.post(t, "2025-07-04-ok.md", "---\nimage: /assets/img/posts/2025-07-04-ok.jpg\n---\n")
	w.post(t, "2025-07-05-broken.md", "---\ntitle: no end\nbody\n")
	w.post(t, "notes.txt", "ignored")
	w.image(t, "2025-07-01-foo.webp")
	w.image(t, "2025-07-02-bar.png")
	w.image(t, "2025-07-04-ok.jpg")
	w.image(t, "2025-06-01-old.webp")
	w.image(t, "readme.txt")

	st, err := w.matcher(t).Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if got, want := posts(st.Matched), []string{"2025-07-04-ok.md"}; !equal(got, want) {
		t.Errorf("matched: got %v, want %v", got, want)
	}
	if got, want := posts(st.IncorrectPath), []string{"2025-07-01-foo.md", "2025-07-02-bar.md"}; !equal(got, want) {
		t.Errorf("incorrect_path: got %v, want %v", got, want)
	}
	if got, want := posts(st.Unmatched), []string{"2025-07-03-baz.md", "2025-07-05-broken.md"}; !equal(got, want) {
		t.Errorf("unmatched: got %v, want %v", got, want)
	}
	if len(st.Orphaned) != 1 || st.Orphaned[0].Thumbnail != "2025-06-01-old.webp" {
		t.Errorf("orphaned: got %+v", st.Orphaned)
	}
	if len(st.ParseWarnings) != 1 || st.ParseWarnings[0].Post != "2025-07-05-broken.md" {
		t.Errorf("parse warnings: got %+v", st.ParseWarnings)
	}
	if st.Posts != 5 || st.Thumbnails != 4 {
		t.Errorf("counts: got posts=%d thumbnails=%d", st.Posts, st.Thumbnails)
	}

	bar := st.IncorrectPath[1]
	if bar.CurrentImage != "/wrong/path.png" || bar.ExpectedImage != "/assets/img/posts/2025-07-02-bar.png" {
		t.Errorf("bar entry: got %+v", bar)
	}
}

func TestScan_EveryPostInOneBucket(t *testing.T) {
	w := newWorkspace(t)
	names := []string{"a.md", "b.md", "c.md", "d.md"}
	w.post(t, "a.md", "---\nimage: /assets/img/posts/a.png\n---\n")
	w.post(t, "b.md", "---\nimage: /x.png\n---\n")
	w.post(t, "c.md", "no header")
	w.post(t, "d.md", "---\n---\n")
	w.image(t, "a.png")
	w.image(t, "b.png")
	w.image(t, "e.png")

	st, err := w.matcher(t).Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	count := make(map[string]int)
	for _, bucket := range [][]Entry{st.Matched, st.IncorrectPath, st.Unmatched} {
		for _, e := range bucket {
			count[e.Post]++
		}
	}
	for _, n := range names {
		if count[n] != 1 {
			t.Errorf("%s appears in %d buckets", n, count[n])
		}
	}

	orphans := make(map[string]bool)
	for _, o := range st.Orphaned {
		orphans[o.Stem] = true
	}
	for _, stem := range []string{"a", "b", "e"} {
		want := stem == "e"
		if orphans[stem] != want {
			t.Errorf("orphan %s: got %v, want %v", stem, orphans[stem], want)
		}
	}
}

func TestScan_DuplicateStemLastWins(t *testing.T) {
	w := newWorkspace(t)
	w.post(t, "p.md", "---\ntitle: P\n---\n")
	w.image(t, "p.png")
	w.image(t, "p.webp")
	w.image(t, "p.JPG")

	st, err := w.matcher(t).Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(st.Duplicates) != 1 {
		t.Fatalf("duplicates: got %+v", st.Duplicates)
	}
	d := st.Duplicates[0]
	if d.Winner != "p.webp" || len(d.Files) != 3 {
		t.Errorf("duplicate: got %+v", d)
	}
	if got := st.IncorrectPath[0].ExpectedImage; got != "/assets/img/posts/p.webp" {
		t.Errorf("expected image: got %q", got)
	}
}

func TestScan_NormalizesStems(t *testing.T) {
	w := newWorkspace(t)
	w.post(t, norm.NFC.String("2025-01-01-한글.md"), "---\ntitle: t\n---\n")
	w.image(t, norm.NFD.String("2025-01-01-한글.png"))

	st, err := w.matcher(t).Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(st.IncorrectPath) != 1 || len(st.Orphaned) != 0 {
		t.Errorf("got incorrect=%d orphaned=%d", len(st.IncorrectPath), len(st.Orphaned))
	}
}

func TestNew_MissingPostsDir(t *testing.T) {
	root := t.TempDir()
	_, err := New(Layout{PostsDir: filepath.Join(root, "_posts"), ImagesDir: filepath.Join(root, "img")})
	if !errors.Is(err, ErrPostsDirMissing) {
		t.Fatalf("got %v, want ErrPostsDirMissing", err)
	}
}

func TestNew_CreatesImagesDir(t *testing.T) {
	root := t.TempDir()
	layout := Layout{
		PostsDir:  filepath.Join(root, "_posts"),
		ImagesDir: filepath.Join(root, "assets", "img", "posts"),
		URLPrefix: "/assets/img/posts/",
	}
	if err := os.Mkdir(layout.PostsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	m, err := New(layout)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if info, err := os.Stat(layout.ImagesDir); err != nil || !info.IsDir() {
		t.Fatalf("images dir not created: %v", err)
	}
	st, err := m.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if st.Thumbnails != 0 {
		t.Errorf("thumbnails: got %d", st.Thumbnails)
	}
}

func TestScan_CancelledContext(t *testing.T) {
	w := newWorkspace(t)
	w.post(t, "a.md", "---\n---\n")
	m := w.matcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Scan(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestExpectedPath(t *testing.T) {
	if got := ExpectedPath("/assets/img/posts/", "2025-07-02-bar.png"); got != "/assets/img/posts/2025-07-02-bar.png" {
		t.Errorf("got %q", got)
	}
	if ExpectedPath("/p/", "x.webp") != ExpectedPath("/p/", "x.webp") {
		t.Error("not deterministic")
	}
}

func TestListThumbnails_MissingDir(t *testing.T) {
	thumbs, err := ListThumbnails(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if thumbs.Len() != 0 {
		t.Errorf("len: got %d", thumbs.Len())
	}
}
