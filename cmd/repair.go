package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/updaun/postkit/internal/matcher"
	"github.com/updaun/postkit/internal/report"
)

var (
	repairDryRun bool
	repairJSON   bool
	repairOut    string
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Point every post that has a thumbnail at it",
	Long: `Rewrites the image field of posts whose thumbnail exists under a
different path, and fills in the image field of posts with no image when
their thumbnail is present. Posts still without a thumbnail are listed so
they can be generated with "postkit thumbnail".`,
	Args: cobra.NoArgs,
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().BoolVarP(&repairDryRun, "dry-run", "n", false, "report the fixes without writing")
	repairCmd.Flags().BoolVar(&repairJSON, "json", false, "print the JSON report instead of tables")
	repairCmd.Flags().StringVarP(&repairOut, "out", "o", "", "also write the JSON report to this file")
	rootCmd.AddCommand(repairCmd)
}

func runRepair(cmd *cobra.Command, _ []string) error {
	m, err := newMatcher()
	if err != nil {
		return err
	}
	res, err := m.Repair(cmd.Context(), matcher.RepairOptions{DryRun: repairDryRun})
	if err != nil {
		return fmt.Errorf("repair: %w", err)
	}

	r := report.FromRepair(app.workspace, res)
	r.RunID = app.runID
	if repairOut != "" {
		if err := report.WriteJSON(r, repairOut); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if repairJSON {
		return report.Encode(os.Stdout, r)
	}

	printRepair(newPrinter(os.Stdout), res, r.Stats)
	return nil
}

func printRepair(p *printer, res *matcher.RepairResult, stats report.Stats) {
	p.blank()
	if res.DryRun {
		p.line(toneInfo, "Dry run: nothing was written")
	}
	before, after := res.Before, res.After
	p.table(
		[]string{"", "Matched", "Incorrect path", "Unmatched", "Orphaned"},
		[][]string{
			{"Before", itoa(len(before.Matched)), itoa(len(before.IncorrectPath)), itoa(len(before.Unmatched)), itoa(len(before.Orphaned))},
			{"After", itoa(len(after.Matched)), itoa(len(after.IncorrectPath)), itoa(len(after.Unmatched)), itoa(len(after.Orphaned))},
		},
		alignLeft, alignRight, alignRight, alignRight, alignRight,
	)

	p.section(toneOK, "Fixed", stats.Fixed)
	rows := make([][]string, 0, len(res.Fixed))
	for _, f := range res.Fixed {
		rows = append(rows, []string{f.Post, f.Reason, f.OldImage, f.NewImage})
	}
	p.table([]string{"Post", "Reason", "Old image", "New image"}, rows)

	if len(res.Failed) > 0 {
		p.section(toneError, "Failed", stats.Failed)
		for _, f := range res.Failed {
			p.line(toneError, "%s: %s", f.Post, f.Error)
		}
	}

	p.section(toneWarn, "Needs thumbnail", stats.NeedsThumbnail)
	for _, post := range res.NeedsThumbnail {
		p.line(toneWarn, "%s", post)
	}
	if len(res.NeedsThumbnail) > 0 {
		p.line(toneInfo, "run \"postkit thumbnail --post <file>\" to generate them")
	}
	p.blank()
}

func itoa(n int) string {
	return fmt.Sprint(n)
}
