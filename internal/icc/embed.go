package icc

import (
	"bytes"
	"fmt"
	"io"

	binutil "github.com/simonhull/musickit/internal/binary"
)

const (
	iccMarker    = "ICC_PROFILE\x00"
	markerAPP2   = 0xE2
	markerAPP0   = 0xE0
	markerSOS    = 0xDA
	markerEOI    = 0xD9
	maxChunkData = 65535 - 2 - 14
)

// segment is one JPEG marker segment. start and end bound the whole
// segment including the marker bytes.
type segment struct {
	marker     byte
	start, end int64
	payload    []byte
}

// walkJPEG calls fn for each marker segment up to start of scan. It
// returns the offset of the SOS marker (or the end of data).
func walkJPEG(data []byte, fn func(segment) error) (int64, error) {
	sr := binutil.FromBytes(data, "jpeg")
	r := binutil.NewReader(sr, 2)

	for r.Offset() < sr.Size() {
		start := r.Offset()
		prefix, err := binutil.ReadValue[uint8](r, "marker prefix")
		if err != nil {
			return 0, err
		}
		if prefix != 0xFF {
			return 0, fmt.Errorf("jpeg: expected marker at offset %d", start)
		}
		marker, err := binutil.ReadValue[uint8](r, "marker")
		if err != nil {
			return 0, err
		}
		if marker == 0xFF {
			// fill byte
			r.Seek(start + 1)
			continue
		}
		if marker == markerSOS || marker == markerEOI {
			return start, nil
		}
		if marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			continue
		}

		length, err := binutil.ReadValue[uint16](r, "segment length")
		if err != nil {
			return 0, err
		}
		if length < 2 {
			return 0, fmt.Errorf("jpeg: bad segment length %d at offset %d", length, start)
		}
		payload, err := r.ReadBytes(int(length)-2, "segment payload")
		if err != nil {
			return 0, err
		}
		if err := fn(segment{marker: marker, start: start, end: r.Offset(), payload: payload}); err != nil {
			return 0, err
		}
	}
	return sr.Size(), nil
}

func isICCSegment(s segment) bool {
	return s.marker == markerAPP2 && len(s.payload) >= 14 && string(s.payload[:12]) == iccMarker
}

// EmbedJPEG returns a copy of jpeg with profile stored as APP2 segments.
// Existing ICC segments are dropped. The new segments follow SOI and a
// leading JFIF APP0 segment, if present.
func EmbedJPEG(jpeg, profile []byte) ([]byte, error) {
	if len(jpeg) < 2 || jpeg[0] != 0xFF || jpeg[1] != 0xD8 {
		return nil, fmt.Errorf("embed profile: not a JPEG stream")
	}
	if len(profile) == 0 {
		return nil, fmt.Errorf("embed profile: empty profile")
	}
	nchunks := (len(profile) + maxChunkData - 1) / maxChunkData
	if nchunks > 255 {
		return nil, fmt.Errorf("embed profile: %d bytes is too large", len(profile))
	}

	var (
		keep     [][]byte
		insertAt = -1
	)
	sos, err := walkJPEG(jpeg, func(s segment) error {
		if isICCSegment(s) {
			return nil
		}
		if insertAt < 0 && (s.marker != markerAPP0 || len(keep) > 0) {
			insertAt = len(keep)
		}
		keep = append(keep, jpeg[s.start:s.end])
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embed profile: %w", err)
	}
	if insertAt < 0 {
		insertAt = len(keep)
	}

	out := bytes.NewBuffer(make([]byte, 0, len(jpeg)+len(profile)+nchunks*18))
	out.Write(jpeg[:2])
	for i, seg := range keep {
		if i == insertAt {
			if err := writeICCSegments(out, profile, nchunks); err != nil {
				return nil, fmt.Errorf("embed profile: %w", err)
			}
		}
		out.Write(seg)
	}
	if insertAt == len(keep) {
		if err := writeICCSegments(out, profile, nchunks); err != nil {
			return nil, fmt.Errorf("embed profile: %w", err)
		}
	}
	out.Write(jpeg[sos:])
	return out.Bytes(), nil
}

func writeICCSegments(w io.Writer, profile []byte, nchunks int) error {
	sw := binutil.NewSafeWriter(w)
	for i := 0; i < nchunks; i++ {
		chunk := profile[i*maxChunkData : min((i+1)*maxChunkData, len(profile))]
		binutil.Write[uint8](sw, 0xFF)
		binutil.Write[uint8](sw, markerAPP2)
		binutil.Write[uint16](sw, uint16(2+len(iccMarker)+2+len(chunk)))
		sw.WriteString(iccMarker)
		binutil.Write[uint8](sw, uint8(i+1))
		binutil.Write[uint8](sw, uint8(nchunks))
		sw.WriteBytes(chunk)
	}
	return sw.Err()
}
