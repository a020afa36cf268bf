package albumart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder

	_ "golang.org/x/image/bmp" // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/simonhull/musickit/internal/icc"
	"github.com/simonhull/musickit/internal/types"
)

// Profile labels recorded in Result.OriginalProfile.
const (
	ProfileMissing = "Missing"
	ProfileUnknown = "Unknown"
)

// Image is an embedded picture as read from a tag container.
type Image struct {
	Data     []byte
	MIMEType string
}

// Result describes a normalized picture and what was changed.
type Result struct {
	// Data is the encoded JPEG.
	Data []byte

	Resized          bool
	FormatConverted  bool
	ProfileConverted bool

	// OriginalProfile is the embedded profile's description, or
	// ProfileMissing / ProfileUnknown.
	OriginalProfile string

	// FinalSizeKB is len(Data)/1024.
	FinalSizeKB int

	// Output raster dimensions.
	Width, Height int
}

// Changed reports whether normalization altered anything worth storing.
func (r Result) Changed() bool {
	return r.Resized || r.FormatConverted || r.ProfileConverted
}

// ShouldReplace reports whether the stored picture should be replaced.
func (r Result) ShouldReplace(force bool) bool {
	return force || r.Changed()
}

// Oversized reports whether the output exceeds the policy's size limit.
func (r Result) Oversized(p Policy) bool {
	return r.FinalSizeKB > p.MaxSizeBytes/1024
}

// Normalize decodes img and re-encodes it as a JPEG within the policy.
func Normalize(img Image, opts ...Option) (Result, error) {
	return NewPolicy(opts...).Normalize(img)
}

// Normalize decodes img and re-encodes it as a JPEG within p.
//
// The raster is flattened to opaque RGB, downscaled when either side
// exceeds MaxDimension and encoded at Quality. An embedded ICC profile
// is carried over unchanged; an image without one is tagged sRGB.
func (p Policy) Normalize(img Image) (Result, error) {
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return Result{}, &types.DecodeError{MIMEType: img.MIMEType, Err: err}
	}

	var res Result
	var raster image.Image = toRGB(decoded)

	if scaled, ok := downscale(raster, p.MaxDimension); ok {
		raster = scaled
		res.Resized = true
	}

	var outProfile []byte
	if embedded, ok := icc.Extract(img.Data); ok {
		res.OriginalProfile, outProfile = carryProfile(embedded)
	} else {
		res.OriginalProfile = ProfileMissing
		srgb := icc.SRGB()
		if prof, err := icc.Parse(srgb); err == nil {
			if out, err := icc.Transform(raster, prof, prof); err == nil {
				raster = out
				res.ProfileConverted = true
				outProfile = srgb
			}
		}
	}

	res.FormatConverted = types.NormalizeMIME(img.MIMEType) == types.MIMEPNG

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, raster, &jpeg.Options{Quality: p.Quality}); err != nil {
		return Result{}, fmt.Errorf("encode jpeg: %w", err)
	}
	data := buf.Bytes()
	if outProfile != nil {
		if data, err = icc.EmbedJPEG(data, outProfile); err != nil {
			return Result{}, fmt.Errorf("embed color profile: %w", err)
		}
	}

	b := raster.Bounds()
	res.Data = data
	res.FinalSizeKB = len(data) / 1024
	res.Width, res.Height = b.Dx(), b.Dy()
	return res, nil
}

// carryProfile labels an embedded profile and picks the profile to store
// with the output. Profiles for non-RGB color spaces no longer describe
// the flattened raster and are replaced by sRGB.
func carryProfile(data []byte) (string, []byte) {
	prof, err := icc.Parse(data)
	if err != nil {
		return ProfileUnknown, data
	}
	label, err := prof.Description()
	if err != nil {
		label = ProfileUnknown
	}
	if prof.ColorSpace() != "RGB " {
		return label, icc.SRGB()
	}
	return label, data
}

// toRGB returns an opaque 8-bit RGBA copy of src with origin (0,0).
// Alpha is dropped without compositing.
func toRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			i := dst.PixOffset(x-b.Min.X, y-b.Min.Y)
			dst.Pix[i+0] = c.R
			dst.Pix[i+1] = c.G
			dst.Pix[i+2] = c.B
			dst.Pix[i+3] = 0xFF
		}
	}
	return dst
}

// downscale shrinks src so its longer side equals maxDim. It reports
// false when src already fits.
func downscale(src image.Image, maxDim int) (image.Image, bool) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src, false
	}

	nw, nh := scaledSize(w, h, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst, true
}

func scaledSize(w, h, maxDim int) (int, int) {
	if w >= h {
		return maxDim, max(1, (h*maxDim+w/2)/w)
	}
	return max(1, (w*maxDim+h/2)/h), maxDim
}
