package main

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simonhull/musickit"
	"github.com/simonhull/musickit/internal/albumart"
	"github.com/simonhull/musickit/internal/fixart"
)

func newFixArtCmd(a *app) *cobra.Command {
	var opts fixart.Options

	cmd := &cobra.Command{
		Use:   "fixart <directory>",
		Short: "Fix album art and convert audio files",
		Long: `Scan a directory recursively and mirror its MP3 and FLAC files to an output
directory, rewriting embedded album art as sRGB JPEGs no larger than the
configured dimension.

Examples:
  musickit fixart ./flac --output-dir /Volumes/music/mp3-audio --force --convert-to-mp3
  musickit fixart ./mp3 --output-dir /Volumes/music/mp3-audio --force --incremental`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Policy = albumart.NewPolicy(a.cfg.Art.Options()...)
			opts.Out = cmd.OutOrStdout()
			opts.Logger = a.log
			if opts.ConvertToMP3 {
				opts.Transcoder = a.runner()
			}

			sum, err := fixart.New(opts).Run(cmd.Context(), args[0])
			var exists *musickit.OutputExistsError
			if errors.As(err, &exists) {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "❌ Output directory already exists: %s\n", exists.Path)
				fmt.Fprintln(out, "Please choose a different directory, remove the existing one, or use --incremental.")
				return errReported
			}
			if err != nil {
				return err
			}

			a.log.WithFields(logrus.Fields{
				"scanned":   sum.Scanned,
				"skipped":   sum.Skipped,
				"rewritten": sum.Rewritten,
				"copied":    sum.Copied,
				"converted": sum.Converted,
				"failed":    sum.Failed,
			}).Info("album art pass finished")
			if sum.Failed > 0 {
				return fmt.Errorf("%d file(s) failed", sum.Failed)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.DryRun, "dry-run", false, "Preview changes without modifying files")
	f.BoolVar(&opts.Force, "force", false, "Force re-embed of album art even if valid")
	f.BoolVar(&opts.ConvertToMP3, "convert-to-mp3", false, "Convert FLAC files to MP3")
	f.StringVar(&opts.OutputDir, "output-dir", fixart.DefaultOutputDir, "Output directory for processed files")
	f.BoolVar(&opts.Incremental, "incremental", false, "Allow existing output directory and skip already processed files")
	return cmd
}
