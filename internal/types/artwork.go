package types

import (
	"fmt"
	"strings"
)

// MIME types the album-art pipeline cares about.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
)

// Artwork is one embedded picture slot of a tag container.
//
// Type and Description are carried through unchanged when a picture is
// replaced; only Data and MIMEType are substituted.
type Artwork struct {
	// Type of artwork (front cover, back cover, artist photo, etc.)
	Type ArtworkType

	// Declared MIME type, as stored in the container
	MIMEType string

	// Description of the artwork (optional)
	Description string

	// Image binary data
	Data []byte

	// Dimensions (if available in metadata, otherwise 0)
	Width  int
	Height int
}

// IsPNG reports whether the declared MIME type names PNG.
func (a Artwork) IsPNG() bool {
	return NormalizeMIME(a.MIMEType) == MIMEPNG
}

// WithImage returns a copy of a carrying new pixel data and MIME type.
func (a Artwork) WithImage(data []byte, mimeType string, width, height int) Artwork {
	a.Data = data
	a.MIMEType = mimeType
	a.Width = width
	a.Height = height
	return a
}

// ArtworkType categorizes the purpose/content of artwork.
//
// Values are shared by ID3v2 APIC frames and FLAC PICTURE blocks.
type ArtworkType int

const (
	ArtworkOther             ArtworkType = iota // Other
	ArtworkIcon                                 // File icon (32x32 PNG)
	ArtworkOtherIcon                            // Other file icon
	ArtworkFrontCover                           // Front cover
	ArtworkBackCover                            // Back cover
	ArtworkLeaflet                              // Leaflet page
	ArtworkMedia                                // Media (CD/vinyl label)
	ArtworkLeadArtist                           // Lead artist/performer/soloist
	ArtworkArtist                               // Artist/performer
	ArtworkConductor                            // Conductor
	ArtworkBand                                 // Band/orchestra
	ArtworkComposer                             // Composer
	ArtworkLyricist                             // Lyricist/text writer
	ArtworkRecordingLocation                    // Recording location
	ArtworkDuringRecording                      // During recording
	ArtworkDuringPerformance                    // During performance
	ArtworkVideoCapture                         // Movie/video screen capture
	ArtworkBrightFish                           // A bright colored fish
	ArtworkIllustration                         // Illustration
	ArtworkBandLogotype                         // Band/artist logotype
	ArtworkPublisherLogotype                    // Publisher/studio logotype
)

var artworkTypeNames = [...]string{
	"Other", "File icon", "Other file icon", "Front cover", "Back cover",
	"Leaflet page", "Media", "Lead artist", "Artist", "Conductor", "Band",
	"Composer", "Lyricist", "Recording location", "During recording",
	"During performance", "Video capture", "A bright colored fish",
	"Illustration", "Band logotype", "Publisher logotype",
}

func (t ArtworkType) String() string {
	if t < 0 || int(t) >= len(artworkTypeNames) {
		return fmt.Sprintf("ArtworkType(%d)", int(t))
	}
	return artworkTypeNames[t]
}

// String returns a human-readable description of the artwork.
//
// Example output: "Front cover (1200x1200 PNG, 245KB)"
func (a Artwork) String() string {
	dims := ""
	if a.Width > 0 && a.Height > 0 {
		dims = fmt.Sprintf("%dx%d ", a.Width, a.Height)
	}

	return fmt.Sprintf("%s (%s%s, %s)", a.Type, dims, mimeToFormat(a.MIMEType), formatSize(len(a.Data)))
}

// NormalizeMIME lowercases a declared MIME type and maps the legacy
// ID3v2.2-style markers ("PNG", "JPG") to real MIME types.
func NormalizeMIME(mime string) string {
	m := strings.ToLower(strings.TrimSpace(mime))
	switch m {
	case "png":
		return MIMEPNG
	case "jpg", "jpeg", "image/jpg":
		return MIMEJPEG
	default:
		return m
	}
}

// DetectMIME sniffs the image MIME type from magic bytes.
//
// Returns "" when the data is not a recognized image.
func DetectMIME(data []byte) string {
	if len(data) < 4 {
		return ""
	}

	switch {
	case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return MIMEJPEG
	case data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G':
		return MIMEPNG
	case data[0] == 'G' && data[1] == 'I' && data[2] == 'F':
		return "image/gif"
	case data[0] == 'B' && data[1] == 'M':
		return "image/bmp"
	case (data[0] == 'I' && data[1] == 'I' && data[2] == 0x2A) || (data[0] == 'M' && data[1] == 'M' && data[3] == 0x2A):
		return "image/tiff"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	}

	return ""
}

// formatSize formats byte size in human-readable form.
func formatSize(bytes int) string {
	const (
		KB = 1024
		MB = 1024 * KB
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%dKB", bytes/KB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// mimeToFormat converts MIME type to short format name.
func mimeToFormat(mime string) string {
	switch NormalizeMIME(mime) {
	case MIMEJPEG:
		return "JPEG"
	case MIMEPNG:
		return "PNG"
	case "image/gif":
		return "GIF"
	case "image/bmp":
		return "BMP"
	case "image/tiff":
		return "TIFF"
	case "image/webp":
		return "WebP"
	default:
		return "Image"
	}
}
