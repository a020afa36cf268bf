package types

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/simonhull/musickit/internal/binary"
)

// Format represents the detected audio container format.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatFLAC represents FLAC audio files.
	FormatFLAC
	// FormatMP3 represents MP3 audio files.
	FormatMP3
)

// String returns the short display name of the format.
func (f Format) String() string {
	switch f {
	case FormatFLAC:
		return "FLAC"
	case FormatMP3:
		return "MP3"
	default:
		return "Unknown"
	}
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatFLAC:
		return []string{".flac"}
	case FormatMP3:
		return []string{".mp3"}
	default:
		return nil
	}
}

// FormatFromPath maps a file extension to a format, ignoring case.
//
// Returns FormatUnknown for anything that is not .mp3 or .flac.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return FormatMP3
	case ".flac":
		return FormatFLAC
	default:
		return FormatUnknown
	}
}

// DetectFormat determines the audio file format by examining magic bytes.
//
// Only FLAC ("fLaC") and MP3 (ID3v2 header or MPEG frame sync) are recognized.
// A FLAC stream preceded by an ID3v2 tag is still reported as FLAC.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	if size < 4 {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "file too small",
		}
	}

	sr := binary.NewSafeReader(r, size, path)

	magic := make([]byte, 4)
	if err := sr.ReadAt(magic, 0, "file magic bytes"); err != nil {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read file header",
		}
	}

	if string(magic) == "fLaC" {
		return FormatFLAC, nil
	}

	if string(magic[:3]) == "ID3" {
		header := make([]byte, 10)
		if err := sr.ReadAt(header, 0, "ID3v2 header"); err == nil {
			if n, ok := ID3v2TagSize(header); ok {
				if err := sr.ReadAt(magic, n, "stream magic after ID3v2 tag"); err == nil && string(magic) == "fLaC" {
					return FormatFLAC, nil
				}
			}
		}
		return FormatMP3, nil
	}

	// MP3 without an ID3v2 tag still starts with a frame sync
	if magic[0] == 0xFF && (magic[1]&0xE0) == 0xE0 {
		return FormatMP3, nil
	}

	return FormatUnknown, &UnsupportedFormatError{
		Path:   path,
		Reason: "unsupported file format",
	}
}

// ID3v2TagSize returns the total size of the ID3v2 tag whose 10-byte
// header starts data: header, syncsafe body size and optional footer.
func ID3v2TagSize(data []byte) (int64, bool) {
	if len(data) < 10 || string(data[:3]) != "ID3" {
		return 0, false
	}
	var body int64
	for _, b := range data[6:10] {
		if b&0x80 != 0 {
			return 0, false
		}
		body = body<<7 | int64(b)
	}
	n := 10 + body
	if data[5]&0x10 != 0 {
		n += 10 // footer
	}
	return n, true
}
