package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/musickit/internal/playlist"
)

func newPlaylistsCmd(a *app) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "playlists <library.xml>",
		Short: "Export iTunes playlists to .m3u files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := playlist.LoadFile(args[0])
			if err != nil {
				return err
			}

			written, err := playlist.Export(lib, outputDir)
			if err != nil {
				return err
			}
			for _, w := range written {
				a.log.WithField("playlist", w.Name).WithField("tracks", w.Tracks).Debug(w.Path)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Done. Playlists written to: %s\n", outputDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "playlists", "Directory to write .m3u files into")
	return cmd
}
