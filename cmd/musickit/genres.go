package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/musickit/internal/genre"
)

func newGenresCmd(a *app) *cobra.Command {
	var (
		rulesPath string
		editor    genre.Editor
	)

	cmd := &cobra.Command{
		Use:   "genres <root>",
		Short: "Set genres in MP3 files from a rules file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := genre.LoadRulesFile(rulesPath)
			if err != nil {
				return err
			}
			editor.Rules = rules
			editor.Out = cmd.OutOrStdout()
			editor.Logger = a.log

			stats, err := editor.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.log.WithField("scanned", stats.Scanned).WithField("changed", stats.Changed).Info("genre pass finished")
			if stats.Failed > 0 {
				return fmt.Errorf("%d file(s) failed", stats.Failed)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&rulesPath, "rules", "", "Rules file (YAML)")
	f.BoolVar(&editor.Overwrite, "overwrite", false, "Overwrite existing genres")
	f.BoolVar(&editor.DryRun, "dry-run", false, "Print new genres without changing files")
	f.BoolVar(&editor.Verbose, "verbose", false, "Print diagnostic info")
	_ = cmd.MarkFlagRequired("rules")
	return cmd
}
