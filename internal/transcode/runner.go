// Package transcode drives the external ffmpeg and ffmpeg-normalize tools.
package transcode

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/simonhull/musickit/internal/types"
)

// Default tool names, resolved through PATH.
const (
	DefaultFFmpeg          = "ffmpeg"
	DefaultFFmpegNormalize = "ffmpeg-normalize"
)

// Defaults used when a probe finds no audio stream details.
const (
	DefaultCodec   = "aac"
	DefaultBitrate = "128k"
)

// maxToolOutput bounds the tool output kept in a ToolError.
const maxToolOutput = 4096

// CommandFunc runs a command and returns its combined stdout and stderr.
type CommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Runner invokes the transcoding tools.
type Runner struct {
	ffmpeg          string
	ffmpegNormalize string
	run             CommandFunc
	log             logrus.FieldLogger
}

// Option configures a Runner.
type Option func(*Runner)

// WithFFmpeg sets the ffmpeg executable.
func WithFFmpeg(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.ffmpeg = path
		}
	}
}

// WithFFmpegNormalize sets the ffmpeg-normalize executable.
func WithFFmpegNormalize(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.ffmpegNormalize = path
		}
	}
}

// WithCommand replaces process execution, mainly for tests.
func WithCommand(fn CommandFunc) Option {
	return func(r *Runner) {
		if fn != nil {
			r.run = fn
		}
	}
}

// WithLogger sets the logger for command lines.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// New returns a Runner with opts applied.
func New(opts ...Option) *Runner {
	r := &Runner{
		ffmpeg:          DefaultFFmpeg,
		ffmpegNormalize: DefaultFFmpegNormalize,
		run:             execCommand,
		log:             logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FLACToMP3 encodes in as a VBR MP3 at out. A non-empty cover is muxed
// in as the front cover picture stream.
func (r *Runner) FLACToMP3(ctx context.Context, in, out string, cover []byte) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	args := []string{"-y", "-i", in}
	if len(cover) > 0 {
		coverPath, err := writeTemp(cover, "musickit-cover-*.jpg")
		if err != nil {
			return err
		}
		defer os.Remove(coverPath)

		args = append(args,
			"-i", coverPath,
			"-map", "0", "-map", "1",
			"-c:a", "libmp3lame", "-q:a", "0",
			"-c:v", "mjpeg",
			"-id3v2_version", "3",
			"-metadata:s:v", "title=Album cover",
			"-metadata:s:v", "comment=Cover (front)",
		)
	} else {
		args = append(args, "-vn", "-c:a", "libmp3lame", "-q:a", "0")
	}
	args = append(args, out)

	_, err := r.exec(ctx, r.ffmpeg, args)
	return err
}

// AudioInfo is the first audio stream's codec and bitrate.
type AudioInfo struct {
	Codec   string
	Bitrate string
}

var (
	codecPattern   = regexp.MustCompile(`Audio:\s+([^\s,]+)`)
	bitratePattern = regexp.MustCompile(`(\d+)\s*kb/s`)
)

// Probe reads the audio codec and bitrate from ffmpeg's stream summary.
// Missing details fall back to DefaultCodec and DefaultBitrate.
func (r *Runner) Probe(ctx context.Context, path string) (AudioInfo, error) {
	// ffmpeg exits non-zero without an output file; only the summary matters.
	output, err := r.run(ctx, r.ffmpeg, "-i", path)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return AudioInfo{}, ctxErr
	}
	if err != nil && len(output) == 0 {
		return AudioInfo{}, &types.ToolError{Tool: r.ffmpeg, Args: []string{"-i", path}, Err: err}
	}
	return parseAudioInfo(string(output)), nil
}

func parseAudioInfo(output string) AudioInfo {
	info := AudioInfo{Codec: DefaultCodec, Bitrate: DefaultBitrate}
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "Audio:") {
			continue
		}
		if m := codecPattern.FindStringSubmatch(line); m != nil {
			info.Codec = m[1]
		}
		if m := bitratePattern.FindStringSubmatch(line); m != nil {
			info.Bitrate = m[1] + "k"
		}
		break
	}
	return info
}

// AdjustVolume copies the video stream and re-encodes audio with the
// source codec and bitrate, scaled by multiplier.
func (r *Runner) AdjustVolume(ctx context.Context, in, out string, multiplier float64) error {
	if multiplier <= 0 {
		return fmt.Errorf("volume multiplier must be positive, got %v", multiplier)
	}
	info, err := r.prepare(ctx, in, out)
	if err != nil {
		return err
	}

	args := []string{
		"-i", in,
		"-vcodec", "copy",
		"-acodec", info.Codec,
		"-b:a", info.Bitrate,
		"-af", "volume=" + strconv.FormatFloat(multiplier, 'f', -1, 64),
		out,
	}
	_, err = r.exec(ctx, r.ffmpeg, args)
	return err
}

// NormalizeLoudness applies EBU R128 normalization with ffmpeg-normalize,
// keeping the source codec and bitrate.
func (r *Runner) NormalizeLoudness(ctx context.Context, in, out string) error {
	info, err := r.prepare(ctx, in, out)
	if err != nil {
		return err
	}

	args := []string{
		in,
		"-c:a", info.Codec,
		"-b:a", info.Bitrate,
		"-c:v", "copy",
		"-o", out,
		"--normalization-type", "ebu",
		"--dual-mono",
	}
	_, err = r.exec(ctx, r.ffmpegNormalize, args)
	return err
}

func (r *Runner) prepare(ctx context.Context, in, out string) (AudioInfo, error) {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return AudioInfo{}, fmt.Errorf("create output directory: %w", err)
	}
	info, err := r.Probe(ctx, in)
	if err != nil {
		return AudioInfo{}, err
	}
	r.log.WithFields(logrus.Fields{
		"file":    in,
		"codec":   info.Codec,
		"bitrate": info.Bitrate,
	}).Debug("probed audio stream")
	return info, nil
}

func (r *Runner) exec(ctx context.Context, tool string, args []string) ([]byte, error) {
	r.log.WithField("tool", tool).Debugf("running %s %s", tool, strings.Join(args, " "))

	output, err := r.run(ctx, tool, args...)
	if err != nil {
		return output, &types.ToolError{
			Tool:   tool,
			Args:   args,
			Output: tail(output, maxToolOutput),
			Err:    err,
		}
	}
	return output, nil
}

func writeTemp(data []byte, pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
