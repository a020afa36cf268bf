package icc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
)

// ErrUnsupportedTransform is returned when converting between two
// different profiles, which requires a color management engine.
var ErrUnsupportedTransform = errors.New("icc: unsupported profile transform")

// Transform converts img from the src profile to the dst profile.
// Only the identity transform between byte-equal profiles is supported;
// the image is returned unchanged in that case.
func Transform(img image.Image, src, dst *Profile) (image.Image, error) {
	if img == nil || src == nil || dst == nil {
		return nil, fmt.Errorf("%w: missing image or profile", ErrUnsupportedTransform)
	}
	if !bytes.Equal(src.data, dst.data) {
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedTransform, label(src), label(dst))
	}
	return img, nil
}

func label(p *Profile) string {
	if d, err := p.Description(); err == nil {
		return fmt.Sprintf("%q", d)
	}
	return fmt.Sprintf("%s/%s profile", p.class, p.colorSpace)
}
