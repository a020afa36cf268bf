// Package walk enumerates audio files under a root and maps each one to a
// mirrored path under an output root.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/simonhull/musickit/internal/types"
)

// Options configures a walk.
type Options struct {
	// Root is the directory to scan recursively.
	Root string

	// OutputRoot receives the mirrored tree. When it lies inside Root it
	// is not descended into.
	OutputRoot string

	// Incremental skips files whose output path already exists.
	Incremental bool

	// Rewrite maps lower-case source extensions to output extensions,
	// e.g. ".flac" -> ".mp3".
	Rewrite map[string]string

	// Extensions limits the walk to these extensions (case-insensitive).
	// Empty means every regular file.
	Extensions []string

	// OnSkip is called for files skipped in incremental mode.
	OnSkip func(Entry)
}

// Entry is one file found by Walk.
type Entry struct {
	// Path is the source file.
	Path string

	// Rel is Path relative to Root.
	Rel string

	// Output is the mirrored path under OutputRoot.
	Output string

	// Format is derived from the extension; FormatUnknown for files that
	// are neither MP3 nor FLAC.
	Format types.Format
}

// Walk calls fn for each regular file under opts.Root in lexical order.
// An error from fn or a cancelled ctx stops the walk.
func Walk(ctx context.Context, opts Options, fn func(Entry) error) error {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan root %s: not a directory", opts.Root)
	}

	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = true
	}

	outAbs := ""
	if opts.OutputRoot != "" {
		if abs, err := filepath.Abs(opts.OutputRoot); err == nil {
			outAbs = abs
		}
	}

	return godirwalk.Walk(opts.Root, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			if de.IsDir() {
				if outAbs != "" && osPathname != opts.Root {
					if abs, err := filepath.Abs(osPathname); err == nil && abs == outAbs {
						return godirwalk.SkipThis
					}
				}
				return nil
			}
			if !de.IsRegular() {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(osPathname))
			if len(exts) > 0 && !exts[ext] {
				return nil
			}

			entry, err := opts.entry(osPathname)
			if err != nil {
				return err
			}

			if opts.Incremental && exists(entry.Output) {
				if opts.OnSkip != nil {
					opts.OnSkip(entry)
				}
				return nil
			}
			return fn(entry)
		},
		Unsorted: false,
	})
}

func (o Options) entry(path string) (Entry, error) {
	rel, err := filepath.Rel(o.Root, path)
	if err != nil {
		return Entry{}, fmt.Errorf("relative path: %w", err)
	}

	out := filepath.Join(o.OutputRoot, rel)
	ext := filepath.Ext(out)
	if repl, ok := o.Rewrite[strings.ToLower(ext)]; ok {
		out = strings.TrimSuffix(out, ext) + repl
	}

	return Entry{
		Path:   path,
		Rel:    rel,
		Output: out,
		Format: types.FormatFromPath(path),
	}, nil
}

// CheckOutputRoot fails with *types.OutputExistsError when root already
// exists and incremental mode is off.
func CheckOutputRoot(root string, incremental bool) error {
	if incremental {
		return nil
	}
	_, err := os.Stat(root)
	switch {
	case err == nil:
		return &types.OutputExistsError{Path: root}
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("check output directory: %w", err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
