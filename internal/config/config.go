// Package config loads musickit settings from a YAML file and MUSICKIT_*
// environment variables, and builds the shared logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/musickit/internal/albumart"
	"github.com/simonhull/musickit/internal/transcode"
)

// EnvPrefix is the prefix of environment overrides, e.g. MUSICKIT_LOG_LEVEL.
const EnvPrefix = "musickit"

// Config is the full settings tree.
type Config struct {
	Log   LogConfig   `yaml:"log"`
	Art   ArtConfig   `yaml:"art"`
	Tools ToolsConfig `yaml:"tools"`
}

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"` // text or json
}

// ArtConfig holds the album-art policy limits.
type ArtConfig struct {
	MaxDimension int `yaml:"max_dimension" envconfig:"MAX_DIMENSION"`
	MaxSizeBytes int `yaml:"max_size_bytes" envconfig:"MAX_SIZE_BYTES"`
	Quality      int `yaml:"quality" envconfig:"QUALITY"`
}

// ToolsConfig locates the external transcoders.
type ToolsConfig struct {
	FFmpeg          string `yaml:"ffmpeg" envconfig:"FFMPEG"`
	FFmpegNormalize string `yaml:"ffmpeg_normalize" envconfig:"FFMPEG_NORMALIZE"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Art: ArtConfig{
			MaxDimension: albumart.DefaultMaxDimension,
			MaxSizeBytes: albumart.DefaultMaxSizeBytes,
			Quality:      albumart.DefaultQuality,
		},
		Tools: ToolsConfig{
			FFmpeg:          transcode.DefaultFFmpeg,
			FFmpegNormalize: transcode.DefaultFFmpegNormalize,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		if err := decode(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Art.MaxDimension <= 0 {
		return fmt.Errorf("art.max_dimension: must be positive, got %d", c.Art.MaxDimension)
	}
	if c.Art.MaxSizeBytes <= 0 {
		return fmt.Errorf("art.max_size_bytes: must be positive, got %d", c.Art.MaxSizeBytes)
	}
	if c.Art.Quality < 1 || c.Art.Quality > 100 {
		return fmt.Errorf("art.quality: must be in 1..100, got %d", c.Art.Quality)
	}
	return nil
}

// Options converts the art settings to policy options.
func (a ArtConfig) Options() []albumart.Option {
	return []albumart.Option{
		albumart.WithMaxDimension(a.MaxDimension),
		albumart.WithMaxSizeBytes(a.MaxSizeBytes),
		albumart.WithQuality(a.Quality),
	}
}

// RunnerOptions converts the tool settings to transcoder options.
func (t ToolsConfig) RunnerOptions() []transcode.Option {
	var opts []transcode.Option
	if t.FFmpeg != "" {
		opts = append(opts, transcode.WithFFmpeg(t.FFmpeg))
	}
	if t.FFmpegNormalize != "" {
		opts = append(opts, transcode.WithFFmpegNormalize(t.FFmpegNormalize))
	}
	return opts
}

// NewLogger builds a logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)

	switch strings.ToLower(l.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return nil, fmt.Errorf("log format: unknown format %q", l.Format)
	}
	return logger, nil
}
