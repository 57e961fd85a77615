package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/updaun/postkit/internal/thumbnail"
)

var fetchForce bool

var errNoURLs = errors.New("no image urls given")

var fetchCmd = &cobra.Command{
	Use:   "fetch <post.md> <url>...",
	Short: "Use a specific image URL as a post's thumbnail",
	Long: `Downloads the URLs in order and uses the first one that decodes as the
post's thumbnail, cropped and captioned like generated thumbnails. No
fallback art is drawn when every URL fails.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVarP(&fetchForce, "force", "f", false, "replace an existing thumbnail")
	fetchCmd.Flags().StringVar(&thumbFormat, "format", "", "output format: webp, jpeg or png (overrides config)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	start := time.Now()
	post := filepath.Base(args[0])
	var urls []string
	for _, u := range args[1:] {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return errNoURLs
	}

	g, err := newGenerator(fetchForce)
	if err != nil {
		return err
	}
	res := g.FromURLs(cmd.Context(), post, urls)
	printThumbnails(newPrinter(os.Stdout), []thumbnail.Result{res}, time.Since(start))
	if res.Status == thumbnail.StatusFailed {
		return fmt.Errorf("fetch %s: %w", post, res.Err)
	}
	return nil
}
