package main

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simonhull/musickit/internal/config"
	"github.com/simonhull/musickit/internal/transcode"
)

// errReported is returned after a command has already printed its own
// diagnostic; main only sets the exit status.
var errReported = errors.New("reported")

// app carries the settings shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "musickit",
		Short: "Music library maintenance tools",
		Long: `musickit keeps an MP3/FLAC library friendly to car stereos and older players.

It rewrites embedded album art as bounded sRGB JPEGs, exports iTunes
playlists to .m3u, adds genres from declarative rules and batch-processes
audio with ffmpeg.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format (text, json)")

	root.AddCommand(
		newFixArtCmd(a),
		newPlaylistsCmd(a),
		newArtistCmd(a),
		newGenresCmd(a),
		newVolumeCmd(a),
		newLoudnormCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the config and builds the logger. Flags win over the file
// and the environment.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}

	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger
	return nil
}

func (a *app) runner() *transcode.Runner {
	opts := append(a.cfg.Tools.RunnerOptions(), transcode.WithLogger(a.log))
	return transcode.New(opts...)
}
