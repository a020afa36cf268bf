package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/musickit"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := musickit.GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "musickit %s\n", info.Version)
			fmt.Fprintf(out, "  commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "  built:  %s\n", info.BuildTime)
			fmt.Fprintf(out, "  go:     %s\n", info.GoVersion)
		},
	}
}
