package musickit

import (
	"github.com/simonhull/musickit/internal/artist"
	"github.com/simonhull/musickit/internal/types"
)

// UnsupportedFormatError is returned for files that are neither MP3 nor FLAC.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is returned when a tag container cannot be parsed.
type CorruptedFileError = types.CorruptedFileError

// UnsupportedWriteError is returned when a file cannot be written back.
type UnsupportedWriteError = types.UnsupportedWriteError

// DecodeError is returned when embedded image data cannot be decoded.
type DecodeError = types.DecodeError

// OutputExistsError is returned when an output directory already exists.
type OutputExistsError = types.OutputExistsError

// ToolError is returned when an external transcoder fails.
type ToolError = types.ToolError

// Warning is a non-fatal issue found while reading a file.
type Warning = types.Warning

// ErrNoArtist is returned by LookupArtist when no artist tag is set.
var ErrNoArtist = artist.ErrNoArtist
