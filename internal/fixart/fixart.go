// Package fixart mirrors a music tree to an output directory, rewriting
// embedded album art that falls outside the policy and optionally
// converting FLAC files to MP3.
package fixart

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/simonhull/musickit"
	"github.com/simonhull/musickit/internal/albumart"
	"github.com/simonhull/musickit/internal/walk"
)

// DefaultOutputDir is the output directory used when none is given.
const DefaultOutputDir = "converted_output"

// Transcoder converts a FLAC file to MP3, muxing in cover when non-empty.
type Transcoder interface {
	FLACToMP3(ctx context.Context, in, out string, cover []byte) error
}

// Options configures a Processor.
type Options struct {
	OutputDir    string
	DryRun       bool
	Force        bool
	ConvertToMP3 bool
	Incremental  bool

	// Policy bounds the rewritten pictures. The zero value means the
	// default policy.
	Policy albumart.Policy

	// Transcoder is required when ConvertToMP3 is set.
	Transcoder Transcoder

	// Out receives the per-file report lines. Defaults to os.Stdout.
	Out io.Writer

	Logger logrus.FieldLogger
}

// Summary counts what a run did.
type Summary struct {
	Scanned   int // MP3 and FLAC files processed
	Skipped   int // existing outputs left alone in incremental mode
	Rewritten int // copies whose pictures were replaced
	Copied    int // copies left byte for byte
	Converted int // FLAC files transcoded to MP3
	Failed    int
}

// Processor runs the album-art pipeline over a tree.
type Processor struct {
	opts   Options
	policy albumart.Policy
	out    io.Writer
	log    logrus.FieldLogger
}

// New returns a Processor for opts.
func New(opts Options) *Processor {
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}

	p := &Processor{
		opts:   opts,
		policy: opts.Policy,
		out:    opts.Out,
		log:    opts.Logger,
	}
	if p.policy == (albumart.Policy{}) {
		p.policy = albumart.DefaultPolicy()
	}
	if p.out == nil {
		p.out = os.Stdout
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	return p
}

// Run processes every MP3 and FLAC file under root. It fails before
// touching anything when the output directory exists and incremental
// mode is off. Per-file failures are counted and logged; the walk goes on.
func (p *Processor) Run(ctx context.Context, root string) (Summary, error) {
	var sum Summary

	if err := walk.CheckOutputRoot(p.opts.OutputDir, p.opts.Incremental); err != nil {
		return sum, err
	}
	if p.opts.ConvertToMP3 && p.opts.Transcoder == nil {
		return sum, fmt.Errorf("convert to mp3: no transcoder configured")
	}

	wo := walk.Options{
		Root:        root,
		OutputRoot:  p.opts.OutputDir,
		Incremental: p.opts.Incremental,
		Extensions:  []string{".mp3", ".flac"},
		OnSkip: func(e walk.Entry) {
			fmt.Fprintf(p.out, "⏩ Skipping existing file: %s\n", e.Output)
			sum.Skipped++
		},
	}
	if p.opts.ConvertToMP3 {
		wo.Rewrite = map[string]string{".flac": ".mp3"}
	}

	err := walk.Walk(ctx, wo, func(e walk.Entry) error {
		sum.Scanned++
		log := p.log.WithFields(logrus.Fields{"file": e.Path, "output": e.Output})

		var err error
		switch {
		case e.Format == musickit.FormatFLAC && p.opts.ConvertToMP3:
			fmt.Fprintf(p.out, "Processing: %s\n", e.Path)
			err = p.convert(ctx, e, log, &sum)
		case e.Format == musickit.FormatFLAC:
			fmt.Fprintf(p.out, "Processing: %s\n", e.Path)
			err = p.rewrite(e, log, &sum)
		default:
			fmt.Fprintf(p.out, "\n🎵 Processing: %s\n", e.Path)
			err = p.rewrite(e, log, &sum)
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Error("processing failed")
			fmt.Fprintf(p.out, "❌ %v\n", err)
			sum.Failed++
		}
		return nil
	})
	return sum, err
}

// rewrite normalizes each picture of e and writes the copy to e.Output.
func (p *Processor) rewrite(e walk.Entry, log logrus.FieldLogger, sum *Summary) error {
	file, err := musickit.Open(e.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	art, err := file.ExtractArtwork()
	if err != nil {
		return err
	}

	changed := false
	for i, a := range art {
		res, err := musickit.NormalizeArtwork(a, albumart.WithPolicy(p.policy))
		if err != nil {
			log.WithField("picture", i).WithError(err).Warn("picture kept as is")
			fmt.Fprintf(p.out, "⚠️  Could not process %s: %v\n", a.Type, err)
			continue
		}
		for _, line := range albumart.Describe(res, p.opts.Force, p.policy) {
			fmt.Fprintln(p.out, line)
		}
		if res.ShouldReplace(p.opts.Force) {
			art[i] = a.WithImage(res.Data, musickit.MIMEJPEG, res.Width, res.Height)
			changed = true
		}
	}

	if p.opts.DryRun {
		log.Debug("dry run, nothing written")
		if changed {
			sum.Rewritten++
		} else {
			sum.Copied++
		}
		return nil
	}

	if changed {
		if err := file.ReplaceArtwork(art); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(e.Output), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := file.SaveAs(e.Output); err != nil {
		return err
	}

	if changed {
		log.Info("album art rewritten")
		sum.Rewritten++
	} else {
		sum.Copied++
	}
	return nil
}

// convert transcodes a FLAC file to e.Output with its first picture,
// normalized, as the cover.
func (p *Processor) convert(ctx context.Context, e walk.Entry, log logrus.FieldLogger, sum *Summary) error {
	file, err := musickit.Open(e.Path)
	if err != nil {
		return err
	}
	art, err := file.ExtractArtwork()
	file.Close()
	if err != nil {
		return err
	}

	var cover []byte
	if len(art) > 0 {
		res, err := musickit.NormalizeArtwork(art[0], albumart.WithPolicy(p.policy))
		if err != nil {
			log.WithError(err).Warn("cover dropped")
		} else {
			cover = res.Data
		}
	}

	if p.opts.DryRun {
		log.Debug("dry run, conversion skipped")
		sum.Converted++
		return nil
	}

	if err := p.opts.Transcoder.FLACToMP3(ctx, e.Path, e.Output, cover); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "✅ Converted FLAC to MP3: %s\n", filepath.Base(e.Output))
	sum.Converted++
	return nil
}
