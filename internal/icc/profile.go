// Package icc reads, builds and embeds ICC color profiles.
package icc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	prismicc "github.com/mandykoh/prism/meta/icc"

	binutil "github.com/simonhull/musickit/internal/binary"
)

const headerSize = 128

// ErrInvalidProfile is returned for data that is not an ICC profile.
var ErrInvalidProfile = errors.New("icc: invalid profile")

// Profile is a parsed ICC profile. The raw bytes are kept unchanged.
type Profile struct {
	data       []byte
	major      uint8
	minor      uint8
	class      string
	colorSpace string
	tags       map[string]tagEntry
}

type tagEntry struct {
	offset uint32
	size   uint32
}

// Parse validates the profile header and reads the tag table.
func Parse(data []byte) (*Profile, error) {
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidProfile, len(data))
	}

	sr := binutil.FromBytes(data, "icc profile")
	r := binutil.NewReader(sr, 36)
	sig, err := r.ReadString(4, "signature")
	if err != nil {
		return nil, err
	}
	if sig != "acsp" {
		return nil, fmt.Errorf("%w: signature %q", ErrInvalidProfile, sig)
	}

	declared, _ := binutil.Read[uint32](sr, 0, "profile size")
	if int(declared) > len(data) {
		return nil, fmt.Errorf("%w: declared size %d exceeds %d bytes", ErrInvalidProfile, declared, len(data))
	}

	p := &Profile{
		data:       data,
		major:      data[8],
		minor:      data[9],
		class:      string(data[12:16]),
		colorSpace: string(data[16:20]),
		tags:       make(map[string]tagEntry),
	}

	r.Seek(headerSize)
	count, err := binutil.ReadValue[uint32](r, "tag count")
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < count; i++ {
		tagSig, err := r.ReadString(4, "tag signature")
		if err != nil {
			return nil, err
		}
		off, err := binutil.ReadValue[uint32](r, "tag offset")
		if err != nil {
			return nil, err
		}
		size, err := binutil.ReadValue[uint32](r, "tag size")
		if err != nil {
			return nil, err
		}
		if uint64(off)+uint64(size) > uint64(len(data)) {
			return nil, fmt.Errorf("%w: tag %q out of bounds", ErrInvalidProfile, tagSig)
		}
		p.tags[tagSig] = tagEntry{offset: off, size: size}
	}

	return p, nil
}

// Data returns the raw profile bytes.
func (p *Profile) Data() []byte {
	return p.data
}

// Class returns the profile class signature (e.g. "mntr").
func (p *Profile) Class() string {
	return p.class
}

// ColorSpace returns the data color space signature (e.g. "RGB ").
func (p *Profile) ColorSpace() string {
	return p.colorSpace
}

// Version returns the profile version as "major.minor.bugfix".
func (p *Profile) Version() string {
	return fmt.Sprintf("%d.%d.%d", p.major, p.minor>>4, p.minor&0x0F)
}

// Description returns the human-readable profile name from the desc tag.
// Both the v2 textDescriptionType and the v4 multiLocalizedUnicodeType
// are understood.
func (p *Profile) Description() (string, error) {
	if _, ok := p.tags["desc"]; !ok {
		return "", fmt.Errorf("%w: no desc tag", ErrInvalidProfile)
	}

	prof, err := prismicc.NewProfileReader(bytes.NewReader(p.data)).ReadProfile()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	desc, err := prof.Description()
	if err != nil {
		return "", fmt.Errorf("%w: desc tag: %v", ErrInvalidProfile, err)
	}
	desc = strings.TrimRight(desc, "\x00 ")
	if desc == "" {
		return "", fmt.Errorf("%w: empty description", ErrInvalidProfile)
	}
	return desc, nil
}
