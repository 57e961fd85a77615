package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/updaun/postkit/internal/logging"
	"github.com/updaun/postkit/internal/matcher"
	"github.com/updaun/postkit/internal/watch"
)

var watchDebounce = watch.DefaultDebounce

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Repair whenever posts or thumbnails change",
	Long: `Runs repair once, then again each time a post or thumbnail is created,
changed or removed. Runs never overlap. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "wait for changes to settle this long")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	m, err := newMatcher()
	if err != nil {
		return err
	}
	repair := func(ctx context.Context) error {
		res, err := m.Repair(ctx, matcher.RepairOptions{})
		if err != nil {
			return err
		}
		app.logger.Info("repair done",
			slog.Int("fixed", len(res.Fixed)),
			slog.Int("failed", len(res.Failed)),
			slog.Int("needs_thumbnail", len(res.NeedsThumbnail)),
		)
		return nil
	}

	layout := m.Layout()
	w, err := watch.New([]string{layout.PostsDir, layout.ImagesDir}, repair,
		watch.WithDebounce(watchDebounce),
		watch.WithLogger(app.logger),
	)
	if err != nil {
		return err
	}
	if err := repair(cmd.Context()); err != nil {
		app.logger.Warn("initial repair failed", logging.Error(err))
	}
	return w.Run(cmd.Context())
}
