package musickit

import (
	"github.com/simonhull/musickit/internal/albumart"
	"github.com/simonhull/musickit/internal/types"
)

// Artwork is one embedded picture.
type Artwork = types.Artwork

// ArtworkType is the role of an embedded picture.
type ArtworkType = types.ArtworkType

// Re-export all artwork type constants
const (
	ArtworkOther             = types.ArtworkOther
	ArtworkIcon              = types.ArtworkIcon
	ArtworkOtherIcon         = types.ArtworkOtherIcon
	ArtworkFrontCover        = types.ArtworkFrontCover
	ArtworkBackCover         = types.ArtworkBackCover
	ArtworkLeaflet           = types.ArtworkLeaflet
	ArtworkMedia             = types.ArtworkMedia
	ArtworkLeadArtist        = types.ArtworkLeadArtist
	ArtworkArtist            = types.ArtworkArtist
	ArtworkConductor         = types.ArtworkConductor
	ArtworkBand              = types.ArtworkBand
	ArtworkComposer          = types.ArtworkComposer
	ArtworkLyricist          = types.ArtworkLyricist
	ArtworkRecordingLocation = types.ArtworkRecordingLocation
	ArtworkDuringRecording   = types.ArtworkDuringRecording
	ArtworkDuringPerformance = types.ArtworkDuringPerformance
	ArtworkVideoCapture      = types.ArtworkVideoCapture
	ArtworkBrightFish        = types.ArtworkBrightFish
	ArtworkIllustration      = types.ArtworkIllustration
	ArtworkBandLogotype      = types.ArtworkBandLogotype
	ArtworkPublisherLogotype = types.ArtworkPublisherLogotype
)

// MIME types of normalized and legacy artwork.
const (
	MIMEJPEG = types.MIMEJPEG
	MIMEPNG  = types.MIMEPNG
)

// NormalizeResult describes a normalized picture.
type NormalizeResult = albumart.Result

// Policy holds the normalization limits.
type Policy = albumart.Policy

// NormalizeOption configures a Policy.
type NormalizeOption = albumart.Option

// Re-exported policy options.
var (
	WithMaxDimension = albumart.WithMaxDimension
	WithMaxSizeBytes = albumart.WithMaxSizeBytes
	WithQuality      = albumart.WithQuality
)

// NormalizeArtwork re-encodes a picture as a bounded sRGB JPEG.
//
// The result reports what changed; callers replace the stored picture
// only when res.ShouldReplace(force) is true:
//
//	res, err := musickit.NormalizeArtwork(art)
//	if err != nil {
//		return err
//	}
//	if res.ShouldReplace(false) {
//		art = art.WithImage(res.Data, musickit.MIMEJPEG, res.Width, res.Height)
//	}
func NormalizeArtwork(a Artwork, opts ...NormalizeOption) (NormalizeResult, error) {
	return albumart.Normalize(albumart.Image{Data: a.Data, MIMEType: a.MIMEType}, opts...)
}

// DescribeNormalization returns the report lines for a result.
func DescribeNormalization(r NormalizeResult, force bool, opts ...NormalizeOption) []string {
	return albumart.Describe(r, force, albumart.NewPolicy(opts...))
}
