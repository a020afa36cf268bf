package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/simonhull/musickit/internal/walk"
)

func newVolumeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "volume <source_dir> <destination_dir> <volume_multiplier>",
		Short: "Scale the audio volume of .ts recordings into a mirrored tree",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			multiplier, err := strconv.ParseFloat(args[2], 64)
			if err != nil || multiplier <= 0 {
				return fmt.Errorf("invalid volume multiplier %q", args[2])
			}
			src, dst, err := absPair(args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "🚀 Starting volume adjustment...")
			fmt.Fprintf(out, "Source: %s\nDestination: %s\nVolume multiplier: %s\n", src, dst, args[2])

			r := a.runner()
			opts := walk.Options{Root: src, OutputRoot: dst, Extensions: []string{".ts"}}
			err = walk.Walk(cmd.Context(), opts, func(e walk.Entry) error {
				processing(out, e)
				if err := r.AdjustVolume(cmd.Context(), e.Path, e.Output, multiplier); err != nil {
					return fmt.Errorf("❌ ffmpeg failed for: %s: %w", e.Path, err)
				}
				fmt.Fprintln(out, "✅ Done.")
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "🎉 All files processed successfully.")
			return nil
		},
	}
}

func newLoudnormCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "loudnorm <source_dir> <destination_dir>",
		Short: "EBU R128 loudness-normalize .ts and .mkv files into a mirrored tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst, err := absPair(args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "🎵 Starting audio normalization with ffmpeg-normalize...")
			fmt.Fprintf(out, "Source: %s\nDestination: %s\n", src, dst)

			r := a.runner()
			opts := walk.Options{
				Root:        src,
				OutputRoot:  dst,
				Incremental: true,
				Extensions:  []string{".ts", ".mkv"},
				OnSkip: func(e walk.Entry) {
					fmt.Fprintf(out, "⏭️  Skipping (already exists): %s\n", e.Output)
				},
			}
			err = walk.Walk(cmd.Context(), opts, func(e walk.Entry) error {
				processing(out, e)
				if err := r.NormalizeLoudness(cmd.Context(), e.Path, e.Output); err != nil {
					return fmt.Errorf("❌ ffmpeg-normalize failed for: %s: %w", e.Path, err)
				}
				fmt.Fprintln(out, "✅ Done.")
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "🎉 All files normalized successfully.")
			return nil
		},
	}
}

func processing(w io.Writer, e walk.Entry) {
	fmt.Fprintf(w, "🔧 Processing: %s\n", e.Path)
	fmt.Fprintf(w, "     Relative: %s\n", e.Rel)
	fmt.Fprintf(w, "     Output:   %s\n", e.Output)
}

func absPair(src, dst string) (string, string, error) {
	s, err := filepath.Abs(src)
	if err != nil {
		return "", "", err
	}
	d, err := filepath.Abs(dst)
	if err != nil {
		return "", "", err
	}
	return s, d, nil
}
