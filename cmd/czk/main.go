package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/czk-tool/czk/internal/app"
	"github.com/czk-tool/czk/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	env := config.NewEnv()
	opts := &config.Options{}

	root := &cobra.Command{
		Use:           "czk",
		Short:         "Duplicate media finder built on czkawka_cli",
		Long:          "czk wraps czkawka_cli to find duplicate images and videos,\nkeeping the biggest (then oldest) file of each group and writing\nJSON and CSV reports of what would be removed.",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.Media, "media", "m", config.DefaultMedia, "media types to scan: both, images or videos")
	flags.IntVar(&opts.HashSize, "hash-size", config.DefaultHashSize, "image perceptual hash size (8, 16, 32 or 64)")
	flags.StringVar(&opts.ImageSimilarity, "image-similarity", config.DefaultImageSimilarity, "image similarity preset (Minimal..None)")
	flags.IntVar(&opts.VideoTolerance, "video-tolerance", config.DefaultVideoTolerance, "video similarity tolerance (0..20)")
	flags.IntVar(&opts.Top, "top", env.GetInt("top"), "number of duplicate groups to preview")
	flags.BoolVar(&opts.All, "all", false, "preview every duplicate group")
	flags.StringVarP(&opts.OutDir, "out-dir", "o", env.GetString("out_dir"), "directory for report artifacts")
	flags.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	flags.StringVar(&opts.Binary, "binary", env.GetString("binary"), "path to the czkawka_cli binary")

	root.AddCommand(
		newModeCommand(opts, "test", []string{"check"},
			"Dry-run scan, reporting what would be removed"),
		newModeCommand(opts, "execute", nil,
			"Scan and delete duplicates, keeping one file per group"),
		newModeCommand(opts, "analyze", []string{"analyse"},
			"Dry-run scan, then open an interactive SQL session over the results"),
		newModeCommand(opts, "viz", nil,
			"Dry-run scan, then write a self-contained HTML report"),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "czk: %v\n", err)
		return 2
	}
	return exitCode
}

// exitCode carries the app's exit status out of cobra's RunE plumbing.
var exitCode int

func newModeCommand(opts *config.Options, mode string, aliases []string, short string) *cobra.Command {
	return &cobra.Command{
		Use:     mode + " [target-folder]",
		Aliases: aliases,
		Short:   short,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Mode = mode
			opts.TargetDir = "."
			if len(args) == 1 {
				opts.TargetDir = args[0]
			}
			if err := opts.Finalize(time.Now()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			exitCode = app.New(opts).Run(ctx)
			return nil
		},
	}
}
