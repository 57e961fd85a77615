package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/updaun/postkit/internal/config"
	"github.com/updaun/postkit/internal/logging"
	"github.com/updaun/postkit/internal/matcher"
)

var (
	version    = "0.1.0"
	verbose    bool
	workspace  string
	configPath string
	logFormat  string
)

// app is the state shared by every subcommand, set up before RunE.
var app struct {
	workspace string
	cfg       *config.Config
	logger    *slog.Logger
	runID     string
}

var rootCmd = &cobra.Command{
	Use:   "postkit",
	Short: "Keep a Jekyll blog's posts and thumbnails in sync",
	Long: `postkit maintains a Jekyll blog workspace.

It pairs every post in _posts with the thumbnail of the same name,
rewrites the image field of posts that point at the wrong file, and
can generate thumbnails, wrap template snippets in raw tags and draw
the site favicon.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command under a context cancelled by SIGINT or
// SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&workspace, "workspace", "w", ".", "blog workspace root")
	flags.StringVar(&configPath, "config", "", "config file (default <workspace>/"+config.FileName+")")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	flags.StringVar(&logFormat, "log-format", "", "log format: console or json (overrides config)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"postkit %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func setup(cmd *cobra.Command, _ []string) error {
	ws, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("resolve workspace: %w", err)
	}
	path := configPath
	if path == "" {
		path = filepath.Join(ws, config.FileName)
	}
	cfg, exists, err := config.Load(path)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	format := cfg.Log.Format
	if logFormat != "" {
		format = logFormat
	}
	logger, err := logging.New(logging.Options{Level: level, Format: format})
	if err != nil {
		return err
	}

	app.runID = uuid.NewString()
	app.workspace = ws
	app.cfg = cfg
	app.logger = logger.With(slog.String("run_id", app.runID))
	logVerbose("workspace %s", ws)
	if exists {
		logVerbose("config %s", path)
	}
	return nil
}

// logVerbose logs a debug line; it only shows with --verbose or a debug
// log level.
func logVerbose(format string, args ...any) {
	if app.logger != nil {
		app.logger.Debug(fmt.Sprintf(format, args...))
	}
}

func newMatcher() (*matcher.Matcher, error) {
	return matcher.New(matcher.Layout{
		PostsDir:  app.cfg.Layout.PostsPath(app.workspace),
		ImagesDir: app.cfg.Layout.ImagesPath(app.workspace),
		URLPrefix: app.cfg.Layout.ImageURLPrefix,
	}, matcher.WithLogger(app.logger))
}
