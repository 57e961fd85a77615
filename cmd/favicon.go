package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/updaun/postkit/internal/favicon"
)

var faviconOut string

var faviconCmd = &cobra.Command{
	Use:   "favicon",
	Short: "Draw the site favicon set",
	Long: `Writes favicon.png (32px), favicon.ico (16, 32 and 48px) and
apple-touch-icon.png (180px). Relative --out paths are resolved against
the workspace.`,
	Args: cobra.NoArgs,
	RunE: runFavicon,
}

func init() {
	faviconCmd.Flags().StringVarP(&faviconOut, "out", "o", ".", "output directory")
	rootCmd.AddCommand(faviconCmd)
}

func runFavicon(_ *cobra.Command, _ []string) error {
	dir := faviconOut
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(app.workspace, dir)
	}
	paths, err := favicon.Write(dir)
	if err != nil {
		return fmt.Errorf("favicon: %w", err)
	}
	p := newPrinter(os.Stdout)
	for _, path := range paths {
		p.line(toneOK, "created %s", path)
	}
	return nil
}
