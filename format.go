package musickit

import (
	"io"

	"github.com/simonhull/musickit/internal/types"
)

// Format identifies a supported container.
type Format = types.Format

// Re-export all format constants.
const (
	FormatUnknown = types.FormatUnknown
	FormatFLAC    = types.FormatFLAC
	FormatMP3     = types.FormatMP3
)

// DetectFormat determines the container format from magic bytes.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	return types.DetectFormat(r, size, path)
}

// FormatFromPath determines the container format from the file extension.
func FormatFromPath(path string) Format {
	return types.FormatFromPath(path)
}
