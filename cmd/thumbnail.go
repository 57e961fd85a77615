package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/updaun/postkit/internal/cache"
	"github.com/updaun/postkit/internal/thumbnail"
)

// searchCacheFile is the image search cache inside the cache directory.
const searchCacheFile = "image_cache.json"

var (
	thumbPosts   []string
	thumbRecent  int
	thumbCurrent bool
	thumbForce   bool
	thumbFormat  string
	thumbJSON    bool
)

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail",
	Short: "Generate thumbnails for posts",
	Long: `Derives search keywords from each post's title, categories, tags and
body, downloads a matching stock image, draws the title over it and writes
<images_dir>/<post stem>.<format>. When no image can be downloaded the
post gets generated fallback art instead.

Without --post or --current, posts dated within the last --recent days are
processed. Posts that already have a thumbnail are skipped unless --force.`,
	Args: cobra.NoArgs,
	RunE: runThumbnail,
}

func init() {
	thumbnailCmd.Flags().StringSliceVarP(&thumbPosts, "post", "p", nil, "post file name (repeatable)")
	thumbnailCmd.Flags().IntVarP(&thumbRecent, "recent", "r", 0, "process posts from the last N days (0 = config recent_days)")
	thumbnailCmd.Flags().BoolVarP(&thumbCurrent, "current", "c", false, "process the most recently modified post")
	thumbnailCmd.Flags().BoolVarP(&thumbForce, "force", "f", false, "regenerate existing thumbnails")
	thumbnailCmd.Flags().StringVar(&thumbFormat, "format", "", "output format: webp, jpeg or png (overrides config)")
	thumbnailCmd.Flags().BoolVar(&thumbJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(thumbnailCmd)
}

func runThumbnail(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	g, err := newGenerator(thumbForce)
	if err != nil {
		return err
	}

	posts, err := selectPosts(g)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Println("  No posts to process.")
		return nil
	}
	logVerbose("processing %d posts", len(posts))

	results := g.Run(cmd.Context(), posts)
	if thumbJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	printThumbnails(newPrinter(os.Stdout), results, time.Since(start))
	return nil
}

func selectPosts(g *thumbnail.Generator) ([]string, error) {
	switch {
	case len(thumbPosts) > 0:
		posts := make([]string, 0, len(thumbPosts))
		for _, p := range thumbPosts {
			posts = append(posts, filepath.Base(p))
		}
		return posts, nil
	case thumbCurrent:
		post, err := g.CurrentPost()
		if err != nil {
			return nil, err
		}
		return []string{post}, nil
	default:
		days := thumbRecent
		if days <= 0 {
			days = app.cfg.Thumbnail.RecentDays
		}
		return g.RecentPosts(days)
	}
}

func newGenerator(force bool) (*thumbnail.Generator, error) {
	t := app.cfg.Thumbnail
	format := t.Format
	if thumbFormat != "" {
		format = strings.ToLower(thumbFormat)
	}

	c := openSearchCache()
	return thumbnail.New(thumbnail.Config{
		PostsDir:  app.cfg.Layout.PostsPath(app.workspace),
		ImagesDir: app.cfg.Layout.ImagesPath(app.workspace),
		Width:     t.Width,
		Height:    t.Height,
		Quality:   t.Quality,
		Format:    format,
		FontPath:  t.FontPath,
		Scheme:    t.Scheme,
		Force:     force,
		Mapping:   thumbnail.DefaultMapping().Merge(app.cfg.Keywords),
	},
		thumbnail.WithLogger(app.logger),
		thumbnail.WithSearcher(&thumbnail.Searcher{
			Template:      t.SearchURL,
			MaxKeywords:   t.MaxSearchKeywords,
			MaxCandidates: t.MaxCandidates,
			Cache:         c,
			Logger:        app.logger,
		}),
	)
}

func openSearchCache() *cache.Cache[[]thumbnail.Candidate] {
	path := filepath.Join(app.cfg.Cache.Path(app.workspace), searchCacheFile)
	return cache.Open[[]thumbnail.Candidate](path, cache.Options{
		TTL:    app.cfg.Cache.TTLDuration(),
		Logger: app.logger,
	})
}

func printThumbnails(p *printer, results []thumbnail.Result, elapsed time.Duration) {
	counts := map[thumbnail.Status]int{}
	rows := make([][]string, 0, len(results))
	var total int64
	for _, r := range results {
		counts[r.Status]++
		total += int64(r.Bytes)
		detail := r.Source
		if r.Err != nil {
			detail = r.Err.Error()
		}
		size := ""
		if r.Bytes > 0 {
			size = formatBytes(int64(r.Bytes))
		}
		rows = append(rows, []string{r.Post, string(r.Status), r.Output, size, detail})
	}

	p.blank()
	p.table([]string{"Post", "Status", "Output", "Size", "Source"}, rows,
		alignLeft, alignLeft, alignLeft, alignRight, alignLeft)
	p.line(toneOK, "Generated: %d   Fallback: %d   Skipped: %d", counts[thumbnail.StatusGenerated], counts[thumbnail.StatusFallback], counts[thumbnail.StatusSkipped])
	if n := counts[thumbnail.StatusFailed]; n > 0 {
		p.line(toneError, "Failed: %d", n)
	}
	p.line(toneInfo, "Written: %s in %s", formatBytes(total), elapsed.Round(time.Millisecond))
	if counts[thumbnail.StatusGenerated]+counts[thumbnail.StatusFallback] > 0 {
		p.line(toneInfo, "run \"postkit repair\" to point the posts at their new thumbnails")
	}
	p.blank()
}
