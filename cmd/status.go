package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/updaun/postkit/internal/matcher"
	"github.com/updaun/postkit/internal/report"
)

var (
	statusJSON bool
	statusOut  string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how posts and thumbnails pair up",
	Long: `Scans the posts and images directories and sorts every post into
matched, incorrect_path or unmatched, and lists thumbnails no post uses.
Nothing is written unless --out is given.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the JSON report instead of tables")
	statusCmd.Flags().StringVarP(&statusOut, "out", "o", "", "also write the JSON report to this file")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	m, err := newMatcher()
	if err != nil {
		return err
	}
	st, err := m.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	r := report.New(app.workspace, st)
	r.RunID = app.runID
	if statusOut != "" {
		if err := report.WriteJSON(r, statusOut); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logVerbose("report written to %s", statusOut)
	}
	if statusJSON {
		return report.Encode(os.Stdout, r)
	}

	p := newPrinter(os.Stdout)
	printStatus(p, st)
	return nil
}

func printStatus(p *printer, st *matcher.Status) {
	p.blank()
	p.line(toneInfo, "Posts: %d   Thumbnails: %d", st.Posts, st.Thumbnails)
	p.blank()

	p.section(toneOK, "Matched", len(st.Matched))
	rows := make([][]string, 0, len(st.Matched))
	for _, e := range st.Matched {
		rows = append(rows, []string{e.Post, e.Thumbnail})
	}
	p.table([]string{"Post", "Thumbnail"}, rows)

	p.section(toneWarn, "Incorrect path", len(st.IncorrectPath))
	rows = rows[:0]
	for _, e := range st.IncorrectPath {
		rows = append(rows, []string{e.Post, e.CurrentImage, e.ExpectedImage})
	}
	p.table([]string{"Post", "Current image", "Expected image"}, rows)

	p.section(toneError, "Unmatched", len(st.Unmatched))
	rows = rows[:0]
	for _, e := range st.Unmatched {
		rows = append(rows, []string{e.Post, e.CurrentImage})
	}
	p.table([]string{"Post", "Current image"}, rows)

	p.section(toneInfo, "Orphaned thumbnails", len(st.Orphaned))
	rows = rows[:0]
	for _, o := range st.Orphaned {
		rows = append(rows, []string{o.Thumbnail})
	}
	p.table([]string{"Thumbnail"}, rows)

	for _, d := range st.Duplicates {
		p.line(toneWarn, "duplicate stem %q: using %s of %v", d.Stem, d.Winner, d.Files)
	}
	for _, w := range st.ParseWarnings {
		p.line(toneWarn, "could not read header of %s: %s", w.Post, w.Error)
	}
	p.blank()
}
