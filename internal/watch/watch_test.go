package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRelevant(t *testing.T) {
	cases := map[string]bool{
		"/blog/_posts/2025-01-01-a.md":      true,
		"/blog/_posts/NOTES.MD":             true,
		"/blog/assets/img/posts/a.webp":     true,
		"/blog/assets/img/posts/a.JPG":      true,
		"/blog/_posts/.2025-01-01-a.md.swp": false,
		"/blog/_posts/.hidden.md":           false,
		"/blog/assets/img/posts/a.gif":      false,
		"/blog/_posts/2025-01-01-a.md~":     false,
		"/blog/assets/img/posts/readme.txt": false,
	}
	for name, want := range cases {
		if got := Relevant(name); got != want {
			t.Errorf("Relevant(%q): got %v, want %v", name, got, want)
		}
	}
}

func TestRun_DebouncesBurst(t *testing.T) {
	posts := t.TempDir()
	images := t.TempDir()
	runs := make(chan struct{}, 10)

	w, err := New([]string{posts, images}, func(context.Context) error {
		runs <- struct{}{}
		return nil
	}, WithDebounce(100*time.Millisecond))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		if err := os.WriteFile(filepath.Join(posts, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(images, "a.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("action never ran")
	}
	select {
	case <-runs:
		t.Error("burst triggered more than one run")
	case <-time.After(400 * time.Millisecond):
	}

	if err := os.WriteFile(filepath.Join(posts, ".swap"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-runs:
		t.Error("hidden file triggered a run")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "nope")}, func(context.Context) error { return nil })
	if err == nil {
		t.Error("expected error for missing dir")
	}
}
