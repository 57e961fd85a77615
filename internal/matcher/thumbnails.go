package matcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Thumbnail represents an image file in the images directory.
type Thumbnail struct {
	// Path is the path to the file on disk.
	Path string
	// Name is the file name with extension.
	Name string
	// Stem is the NFC-normalised name without extension.
	Stem string
	// Format is the image format (jpeg, png, webp).
	Format string
	// Size is the file size in bytes.
	Size int64
}

// Duplicate records several image files sharing one stem.
type Duplicate struct {
	Stem   string   `json:"stem"`
	Files  []string `json:"files"`
	Winner string   `json:"winner"`
}

// Thumbnails is the stem index of an images directory.
type Thumbnails struct {
	byStem     map[string]Thumbnail
	stems      []string
	Duplicates []Duplicate
}

// imageExtensions lists recognized thumbnail extensions.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// IsImage reports whether name has a recognized thumbnail extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Stem returns the association key for a file name: the name without its
// extension, normalised to NFC so decomposed Hangul names still match.
func Stem(name string) string {
	return norm.NFC.String(strings.TrimSuffix(name, filepath.Ext(name)))
}

// ExpectedPath returns the front matter image value for a thumbnail file.
func ExpectedPath(prefix, filename string) string {
	return prefix + filename
}

// ListThumbnails indexes the image files directly inside dir. Entries are
// visited in sorted order and a later file replaces an earlier one with the
// same stem, so the lexically last name wins. A missing dir yields an empty
// index.
func ListThumbnails(dir string) (*Thumbnails, error) {
	t := &Thumbnails{byStem: make(map[string]Thumbnail)}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read images dir: %w", err)
	}

	seen := make(map[string][]string)
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsImage(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}

		ext := strings.ToLower(filepath.Ext(e.Name()))
		format := strings.TrimPrefix(ext, ".")
		if format == "jpg" {
			format = "jpeg"
		}

		stem := Stem(e.Name())
		if _, ok := t.byStem[stem]; !ok {
			t.stems = append(t.stems, stem)
		}
		seen[stem] = append(seen[stem], e.Name())
		t.byStem[stem] = Thumbnail{
			Path:   filepath.Join(dir, e.Name()),
			Name:   e.Name(),
			Stem:   stem,
			Format: format,
			Size:   info.Size(),
		}
	}

	sort.Strings(t.stems)
	for _, stem := range t.stems {
		if files := seen[stem]; len(files) > 1 {
			t.Duplicates = append(t.Duplicates, Duplicate{
				Stem:   stem,
				Files:  files,
				Winner: t.byStem[stem].Name,
			})
		}
	}
	return t, nil
}

// Lookup returns the thumbnail associated with stem.
func (t *Thumbnails) Lookup(stem string) (Thumbnail, bool) {
	th, ok := t.byStem[stem]
	return th, ok
}

// Len returns the number of distinct stems.
func (t *Thumbnails) Len() int {
	return len(t.byStem)
}

// Stems returns the indexed stems in sorted order.
func (t *Thumbnails) Stems() []string {
	return append([]string(nil), t.stems...)
}
