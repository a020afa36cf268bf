package musickit

import (
	"fmt"
	"os"

	_ "github.com/simonhull/musickit/internal/flac" // register FLAC adapter
	_ "github.com/simonhull/musickit/internal/mp3"  // register MP3 adapter
	"github.com/simonhull/musickit/internal/registry"
	"github.com/simonhull/musickit/internal/types"
)

// File is an opened MP3 or FLAC file and its embedded pictures.
//
// Pictures are read lazily by ExtractArtwork. Changes made with
// ReplaceArtwork are held until Save or SaveAs.
//
// Always call Close() when done to release file resources:
//
//	file, err := musickit.Open("song.flac")
//	if err != nil {
//		return err
//	}
//	defer file.Close()
type File struct {
	types.File

	container registry.Container
	options   *openOptions
	artwork   []Artwork // cached; nil until ExtractArtwork
	replaced  []Artwork // pending replacement set
	pending   bool
}

// Open opens an audio file and its tag container.
//
// The format is detected from the file's magic bytes. When they are not
// recognized, a known extension (.mp3, .flac) is trusted with a warning.
//
// Example:
//
//	file, err := musickit.Open("song.mp3")
//	if err != nil {
//		return err
//	}
//	defer file.Close()
//	art, err := file.ExtractArtwork()
func Open(path string, opts ...Option) (*File, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	format, size, warnings, err := detect(path)
	if err != nil {
		return nil, err
	}

	adapter := registry.Get(format)
	if adapter == nil {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no adapter available for format %s", format),
		}
	}

	container, err := adapter.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", format, err)
	}

	file := &File{
		File: types.File{
			Path:     path,
			Format:   format,
			Size:     size,
			Warnings: warnings,
		},
		container: container,
		options:   options,
	}

	if options.preloadArtwork {
		if _, err := file.ExtractArtwork(); err != nil {
			file.warn("artwork", fmt.Sprintf("preload artwork failed: %v", err))
		}
	}

	if options.strictParsing && len(file.Warnings) > 0 {
		container.Close()
		return nil, fmt.Errorf("strict parsing failed: %s", file.Warnings[0].Message)
	}
	if options.ignoreWarnings {
		file.Warnings = nil
	}

	return file, nil
}

func detect(path string) (Format, int64, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, 0, nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return FormatUnknown, 0, nil, fmt.Errorf("stat file: %w", err)
	}
	size := stat.Size()

	byExt := FormatFromPath(path)
	format, err := DetectFormat(f, size, path)
	if err == nil {
		if byExt != FormatUnknown && byExt != format {
			return format, size, []Warning{{
				Stage:   "format",
				Message: fmt.Sprintf("content is %s but extension suggests %s", format, byExt),
			}}, nil
		}
		return format, size, nil, nil
	}

	if byExt == FormatUnknown {
		return FormatUnknown, 0, nil, err
	}
	return byExt, size, []Warning{{
		Stage:   "format",
		Message: fmt.Sprintf("unrecognized magic bytes, treating as %s by extension", byExt),
	}}, nil
}

// Close releases resources held by the file. Pending changes are discarded.
//
// After Close is called, the File should not be used.
func (f *File) Close() error {
	if f.container == nil {
		return nil
	}
	err := f.container.Close()
	f.container = nil
	return err
}

// ExtractArtwork returns the embedded pictures in stored order.
//
// The first call reads and caches the pictures; later calls return the
// cached slice. After ReplaceArtwork it returns the pending set.
func (f *File) ExtractArtwork() ([]Artwork, error) {
	if f.pending {
		return f.replaced, nil
	}
	if f.artwork != nil {
		return f.artwork, nil
	}
	if f.container == nil {
		return nil, fmt.Errorf("extract artwork: file is closed")
	}

	pics, err := f.container.Pictures()
	if err != nil {
		return nil, fmt.Errorf("extract artwork: %w", err)
	}

	artwork := make([]Artwork, 0, len(pics))
	for i, p := range pics {
		if limit := f.options.maxArtworkSize; limit > 0 && len(p.Data) > limit {
			f.warn("artwork", fmt.Sprintf("picture %d (%s) exceeds %d bytes, skipped", i, p.Type, limit))
			continue
		}
		artwork = append(artwork, p)
	}

	f.artwork = artwork
	return artwork, nil
}

// ReplaceArtwork replaces the full picture set. The change is written by
// Save or SaveAs. Pictures are never merged with the existing set.
func (f *File) ReplaceArtwork(pics []Artwork) error {
	if f.container == nil {
		return fmt.Errorf("replace artwork: file is closed")
	}
	for i, p := range pics {
		if len(p.Data) == 0 {
			return fmt.Errorf("replace artwork: picture %d has no data", i)
		}
	}
	f.replaced = append([]Artwork(nil), pics...)
	f.pending = true
	return nil
}

// Modified reports whether ReplaceArtwork was called since the last save.
func (f *File) Modified() bool {
	return f.pending
}

func (f *File) warn(stage, msg string) {
	f.Warnings = append(f.Warnings, Warning{Stage: stage, Message: msg})
}
