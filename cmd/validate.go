package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/updaun/postkit/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate <report.json>",
	Short: "Validate a saved report and check its thumbnails still exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	r, err := report.Read(args[0])
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	errs := report.Validate(r, app.cfg.Layout.ImagesPath(app.workspace))
	if len(errs) == 0 {
		fmt.Println("  ✓ Report is valid")
		fmt.Printf("  ✓ %d posts, %d matched, all thumbnails present\n", r.Stats.Posts, r.Stats.Matched)
		return nil
	}

	fmt.Printf("  ✗ Report has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}
