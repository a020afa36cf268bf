package icc

import (
	"bytes"

	"github.com/mandykoh/prism/meta/autometa"
)

// Extract returns the ICC profile embedded in a JPEG, PNG or WebP image.
// The boolean is false when the image carries no complete profile.
func Extract(data []byte) ([]byte, bool) {
	md, _, err := autometa.Load(bytes.NewReader(data))
	if err != nil || md == nil {
		return nil, false
	}
	profile, err := md.ICCProfileData()
	if err != nil || len(profile) == 0 {
		return nil, false
	}
	return profile, true
}
