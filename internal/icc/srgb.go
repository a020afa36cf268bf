package icc

import (
	"bytes"
	"math"
	"sync"

	binutil "github.com/simonhull/musickit/internal/binary"
)

// SRGBDescription is the description of the built-in sRGB profile.
const SRGBDescription = "sRGB IEC61966-2.1"

const curvePoints = 1024

var srgbProfile = sync.OnceValue(buildSRGB)

// SRGB returns a copy of the built-in sRGB display profile (ICC v2.1).
// The output is identical on every call.
func SRGB() []byte {
	return bytes.Clone(srgbProfile())
}

type tagData struct {
	sig  string
	data []byte
}

func buildSRGB() []byte {
	trc := curveTag()
	tags := []tagData{
		{"desc", textDescriptionTag(SRGBDescription)},
		{"cprt", textTag("No copyright, use freely")},
		{"wtpt", xyzTag(0.95045, 1.0, 1.08905)},
		{"rXYZ", xyzTag(0.43607, 0.22249, 0.01392)},
		{"gXYZ", xyzTag(0.38515, 0.71687, 0.09708)},
		{"bXYZ", xyzTag(0.14307, 0.06061, 0.71410)},
		{"rTRC", trc},
		{"gTRC", trc},
		{"bTRC", trc},
	}

	// Layout: header, tag table, then 4-byte aligned tag data. The three
	// TRC tags share one data block.
	offsets := make([]uint32, len(tags))
	sizes := make([]uint32, len(tags))
	next := uint32(headerSize + 4 + 12*len(tags))
	shared := map[*byte]uint32{}
	var blobs [][]byte
	for i, t := range tags {
		sizes[i] = uint32(len(t.data))
		if off, ok := shared[&t.data[0]]; ok {
			offsets[i] = off
			continue
		}
		offsets[i] = next
		shared[&t.data[0]] = next
		blobs = append(blobs, t.data)
		next += align4(uint32(len(t.data)))
	}
	total := next

	var buf bytes.Buffer
	sw := binutil.NewSafeWriter(&buf)

	// Header
	_ = binutil.Write[uint32](sw, total)
	_ = binutil.Write[uint32](sw, 0)          // preferred CMM
	_ = binutil.Write[uint32](sw, 0x02100000) // version 2.1.0
	_ = sw.WriteString("mntr")
	_ = sw.WriteString("RGB ")
	_ = sw.WriteString("XYZ ")
	for _, v := range []uint16{1998, 2, 9, 6, 49, 0} { // creation date
		_ = binutil.Write[uint16](sw, v)
	}
	_ = sw.WriteString("acsp")
	_ = sw.WriteBytes(make([]byte, 24)) // platform, flags, device, attributes
	_ = binutil.Write[uint32](sw, 0)    // perceptual intent
	writeXYZ(sw, 0.9642, 1.0, 0.8249)   // PCS illuminant D50
	_ = sw.WriteBytes(make([]byte, headerSize-int(sw.Offset())))

	// Tag table
	_ = binutil.Write[uint32](sw, uint32(len(tags)))
	for i, t := range tags {
		_ = sw.WriteString(t.sig)
		_ = binutil.Write[uint32](sw, offsets[i])
		_ = binutil.Write[uint32](sw, sizes[i])
	}

	for _, b := range blobs {
		_ = sw.WriteBytes(b)
		_ = sw.Pad(4)
	}

	if sw.Err() != nil || buf.Len() != int(total) {
		panic("icc: inconsistent sRGB profile layout")
	}
	return buf.Bytes()
}

func textDescriptionTag(s string) []byte {
	var buf bytes.Buffer
	sw := binutil.NewSafeWriter(&buf)
	_ = sw.WriteString("desc")
	_ = binutil.Write[uint32](sw, 0)
	_ = binutil.Write[uint32](sw, uint32(len(s)+1))
	_ = sw.WriteString(s)
	_ = binutil.Write[uint8](sw, 0)
	_ = binutil.Write[uint32](sw, 0) // unicode language code
	_ = binutil.Write[uint32](sw, 0) // unicode count
	_ = binutil.Write[uint16](sw, 0) // scriptcode code
	_ = binutil.Write[uint8](sw, 0)  // scriptcode count
	_ = sw.WriteBytes(make([]byte, 67))
	return buf.Bytes()
}

func textTag(s string) []byte {
	var buf bytes.Buffer
	sw := binutil.NewSafeWriter(&buf)
	_ = sw.WriteString("text")
	_ = binutil.Write[uint32](sw, 0)
	_ = sw.WriteString(s)
	_ = binutil.Write[uint8](sw, 0)
	return buf.Bytes()
}

func xyzTag(x, y, z float64) []byte {
	var buf bytes.Buffer
	sw := binutil.NewSafeWriter(&buf)
	_ = sw.WriteString("XYZ ")
	_ = binutil.Write[uint32](sw, 0)
	writeXYZ(sw, x, y, z)
	return buf.Bytes()
}

// curveTag samples the sRGB transfer function.
func curveTag() []byte {
	var buf bytes.Buffer
	sw := binutil.NewSafeWriter(&buf)
	_ = sw.WriteString("curv")
	_ = binutil.Write[uint32](sw, 0)
	_ = binutil.Write[uint32](sw, curvePoints)
	for i := 0; i < curvePoints; i++ {
		v := float64(i) / float64(curvePoints-1)
		var lin float64
		if v <= 0.04045 {
			lin = v / 12.92
		} else {
			lin = math.Pow((v+0.055)/1.055, 2.4)
		}
		_ = binutil.Write[uint16](sw, uint16(math.Round(lin*65535)))
	}
	return buf.Bytes()
}

func writeXYZ(sw *binutil.SafeWriter, x, y, z float64) {
	for _, v := range []float64{x, y, z} {
		_ = binutil.Write[uint32](sw, uint32(int32(math.Round(v*65536))))
	}
}

func align4(n uint32) uint32 {
	return (n + 3) &^ 3
}
