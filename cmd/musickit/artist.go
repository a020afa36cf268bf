package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/musickit"
)

func newArtistCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "artist <file>...",
		Short: "Print each file's artist, giving priority to the album artist",
		Long: `Print one line per file: the album artist when set, otherwise the
track artist. Files with neither print an empty line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := musickit.LookupArtists(cmd.Context(), args...)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
