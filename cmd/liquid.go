package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/updaun/postkit/internal/liquid"
)

var (
	liquidPatterns []string
	liquidDryRun   bool
)

var liquidCmd = &cobra.Command{
	Use:   "liquid-raw",
	Short: "Wrap template snippets in posts with {% raw %} tags",
	Long: "Finds ```html code blocks that contain {% tags in the matched posts and\n" +
		"wraps them in {% raw %} ... {% endraw %} so Jekyll prints them verbatim.\n" +
		"Patterns are doublestar globs relative to the workspace.",
	Args: cobra.NoArgs,
	RunE: runLiquid,
}

func init() {
	liquidCmd.Flags().StringArrayVar(&liquidPatterns, "pattern", nil, "glob of posts to patch (repeatable, default from config)")
	liquidCmd.Flags().BoolVarP(&liquidDryRun, "dry-run", "n", false, "report without writing")
	rootCmd.AddCommand(liquidCmd)
}

func runLiquid(cmd *cobra.Command, _ []string) error {
	patterns := liquidPatterns
	if len(patterns) == 0 {
		patterns = app.cfg.Liquid.Patterns
	}
	files, err := liquid.Patch(cmd.Context(), liquid.Options{
		Workspace: app.workspace,
		Patterns:  patterns,
		DryRun:    liquidDryRun,
		Logger:    app.logger,
	})
	if err != nil {
		return err
	}

	p := newPrinter(os.Stdout)
	p.blank()
	rows := make([][]string, 0, len(files))
	changed := 0
	for _, f := range files {
		state := "unchanged"
		switch {
		case f.Err != nil:
			state = f.Err.Error()
		case f.Changed():
			changed++
			state = "wrapped"
			if liquidDryRun {
				state = "would wrap"
			}
		}
		rel, err := filepath.Rel(app.workspace, f.Path)
		if err != nil {
			rel = f.Path
		}
		rows = append(rows, []string{rel, itoa(f.Wrapped), state})
	}
	p.table([]string{"File", "Blocks", "Result"}, rows, alignLeft, alignRight, alignLeft)
	p.line(toneOK, "%d of %d files changed", changed, len(files))
	p.blank()
	return nil
}
