// Package flac adapts native FLAC metadata blocks to the container interface.
package flac

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // picture dimensions
	_ "image/png"  // picture dimensions
	"os"
	"path/filepath"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"

	"github.com/simonhull/musickit/internal/registry"
	"github.com/simonhull/musickit/internal/types"
)

func init() {
	registry.Register(types.FormatFLAC, adapter{})
}

type adapter struct{}

func (adapter) Open(path string) (registry.Container, error) {
	return Open(path)
}

// File is a parsed FLAC stream held in memory.
type File struct {
	path string
	f    *goflac.File
}

// Open reads and parses the FLAC file at path. A leading ID3v2 tag is
// skipped and is not written back on save.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if n, ok := types.ID3v2TagSize(data); ok && n < int64(len(data)) {
		data = data[n:]
	}

	f, err := goflac.ParseBytes(bytes.NewReader(data))
	if err != nil {
		return nil, &types.CorruptedFileError{
			Path:   path,
			Reason: fmt.Sprintf("parse FLAC stream: %v", err),
		}
	}
	return &File{path: path, f: f}, nil
}

// Path returns the file the stream was read from.
func (f *File) Path() string {
	return f.path
}

// Pictures returns the PICTURE blocks in stored order.
func (f *File) Pictures() ([]types.Artwork, error) {
	var pics []types.Artwork
	for i, block := range f.f.Meta {
		if block.Type != goflac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*block)
		if err != nil {
			return nil, &types.CorruptedFileError{
				Path:   f.path,
				Reason: fmt.Sprintf("metadata block %d: %v", i, err),
			}
		}
		pics = append(pics, types.Artwork{
			Type:        types.ArtworkType(pic.PictureType),
			MIMEType:    types.NormalizeMIME(pic.MIME),
			Description: pic.Description,
			Data:        pic.ImageData,
			Width:       int(pic.Width),
			Height:      int(pic.Height),
		})
	}
	return pics, nil
}

// ReplacePictures removes every PICTURE block and appends pics in order.
func (f *File) ReplacePictures(pics []types.Artwork) error {
	blocks := make([]*goflac.MetaDataBlock, 0, len(pics))
	for i, p := range pics {
		if len(p.Data) == 0 {
			return fmt.Errorf("picture %d: empty image data", i)
		}
		block := pictureBlock(p).Marshal()
		blocks = append(blocks, &block)
	}

	kept := f.f.Meta[:0]
	for _, block := range f.f.Meta {
		if block.Type != goflac.Picture {
			kept = append(kept, block)
		}
	}
	f.f.Meta = append(kept, blocks...)
	return nil
}

// Comment returns the values of a Vorbis comment field. Field names
// match case-insensitively. A stream without comments yields nil.
func (f *File) Comment(field string) ([]string, error) {
	for _, block := range f.f.Meta {
		if block.Type != goflac.VorbisComment {
			continue
		}
		cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			return nil, fmt.Errorf("parse vorbis comment: %w", err)
		}
		return cmt.Get(field)
	}
	return nil, nil
}

// Save rewrites the file with the current metadata blocks.
//
// The stream is written to a temporary file in the same directory and
// renamed over the original, so a failed save leaves the file unchanged.
func (f *File) Save() error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".musickit-*.flac")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(f.f.Marshal()); err != nil {
		return fmt.Errorf("write stream: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if info, err := os.Stat(f.path); err == nil {
		_ = os.Chmod(tmpPath, info.Mode().Perm())
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("rename temp to output: %w", err)
	}
	success = true
	return nil
}

// Close is a no-op; the stream is held in memory.
func (f *File) Close() error {
	return nil
}

func pictureBlock(p types.Artwork) *flacpicture.MetadataBlockPicture {
	mime := types.NormalizeMIME(p.MIMEType)
	if mime == "" {
		mime = types.DetectMIME(p.Data)
	}

	w, h := p.Width, p.Height
	if w == 0 || h == 0 {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(p.Data)); err == nil {
			w, h = cfg.Width, cfg.Height
		}
	}

	return &flacpicture.MetadataBlockPicture{
		PictureType: flacpicture.PictureType(p.Type),
		MIME:        mime,
		Description: p.Description,
		Width:       uint32(w),
		Height:      uint32(h),
		ColorDepth:  24,
		ImageData:   p.Data,
	}
}
