package icc

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"runtime"
	"testing"
)

func TestSRGB_Parse(t *testing.T) {
	data := SRGB()

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(SRGB()) error = %v", err)
	}

	desc, err := p.Description()
	if err != nil {
		t.Fatalf("Description() error = %v", err)
	}
	if desc != SRGBDescription {
		t.Errorf("Description() = %q, want %q", desc, SRGBDescription)
	}
	if p.Class() != "mntr" {
		t.Errorf("Class() = %q, want mntr", p.Class())
	}
	if p.ColorSpace() != "RGB " {
		t.Errorf("ColorSpace() = %q, want 'RGB '", p.ColorSpace())
	}
	if p.Version() != "2.1.0" {
		t.Errorf("Version() = %q, want 2.1.0", p.Version())
	}
	if got := binary.BigEndian.Uint32(data[0:4]); int(got) != len(data) {
		t.Errorf("declared size %d, actual %d", got, len(data))
	}
	for _, sig := range []string{"desc", "cprt", "wtpt", "rXYZ", "gXYZ", "bXYZ", "rTRC", "gTRC", "bTRC"} {
		if _, ok := p.tags[sig]; !ok {
			t.Errorf("tag %q missing", sig)
		}
	}
	if p.tags["rTRC"] != p.tags["bTRC"] {
		t.Error("TRC tags should share one data block")
	}
}

func TestSRGB_Deterministic(t *testing.T) {
	a, b := SRGB(), SRGB()
	if !bytes.Equal(a, b) {
		t.Fatal("SRGB() not deterministic")
	}
	a[0] = 0xFF
	if bytes.Equal(a, SRGB()) {
		t.Error("SRGB() returned shared buffer")
	}
}

func TestParse_Invalid(t *testing.T) {
	valid := SRGB()

	badSig := bytes.Clone(valid)
	copy(badSig[36:40], "xxxx")

	bigSize := bytes.Clone(valid)
	binary.BigEndian.PutUint32(bigSize[0:4], uint32(len(valid)+100))

	badTag := bytes.Clone(valid)
	binary.BigEndian.PutUint32(badTag[128+4+4:], uint32(len(valid))) // first tag offset

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", make([]byte, 64)},
		{"bad signature", badSig},
		{"declared size too large", bigSize},
		{"tag out of bounds", badTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("Parse() error = %v, want ErrInvalidProfile", err)
			}
		})
	}
}

// mlucProfile builds a minimal v4 profile whose desc tag is a
// multiLocalizedUnicodeType with the given records.
func mlucProfile(records map[string]string, order []string) []byte {
	var tag bytes.Buffer
	tag.WriteString("mluc")
	tag.Write(make([]byte, 4))
	binary.Write(&tag, binary.BigEndian, uint32(len(order)))
	binary.Write(&tag, binary.BigEndian, uint32(12))

	strOff := 16 + 12*len(order)
	var strs bytes.Buffer
	for _, loc := range order {
		var enc bytes.Buffer
		for _, r := range records[loc] {
			binary.Write(&enc, binary.BigEndian, uint16(r))
		}
		tag.WriteString(loc)
		binary.Write(&tag, binary.BigEndian, uint32(enc.Len()))
		binary.Write(&tag, binary.BigEndian, uint32(strOff+strs.Len()))
		strs.Write(enc.Bytes())
	}
	tag.Write(strs.Bytes())

	data := make([]byte, 128+4+12)
	copy(data[12:16], "mntr")
	copy(data[16:20], "RGB ")
	copy(data[36:40], "acsp")
	data[8] = 4
	data[9] = 0x30
	binary.BigEndian.PutUint32(data[128:], 1)
	copy(data[132:136], "desc")
	binary.BigEndian.PutUint32(data[136:], uint32(len(data)))
	binary.BigEndian.PutUint32(data[140:], uint32(tag.Len()))
	data = append(data, tag.Bytes()...)
	binary.BigEndian.PutUint32(data[0:4], uint32(len(data)))
	return data
}

func TestDescription_MultiLocalized(t *testing.T) {
	tests := []struct {
		name  string
		recs  map[string]string
		order []string
		want  string
	}{
		{"single", map[string]string{"deDE": "Anzeige"}, []string{"deDE"}, "Anzeige"},
		{"enUS with translations", map[string]string{"enUS": "Display P3", "frFR": "Écran"}, []string{"enUS", "frFR"}, "Display P3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(mlucProfile(tt.recs, tt.order))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := p.Description()
			if err != nil {
				t.Fatalf("Description() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Description() = %q, want %q", got, tt.want)
			}
			if p.Version() != "4.3.0" {
				t.Errorf("Version() = %q, want 4.3.0", p.Version())
			}
		})
	}
}

func TestDescription_CorruptLength(t *testing.T) {
	data := SRGB()
	p, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	// textDescriptionType: type, reserved, then the ASCII count.
	binary.BigEndian.PutUint32(data[p.tags["desc"].offset+8:], 0xFFFFFFF0)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, _ = p.Description()
	runtime.ReadMemStats(&after)

	if grown := after.TotalAlloc - before.TotalAlloc; grown > 64<<20 {
		t.Errorf("Description() allocated %d MiB for a %d-byte profile", grown>>20, len(data))
	}
}

func TestDescription_Missing(t *testing.T) {
	data := make([]byte, 132)
	copy(data[36:40], "acsp")
	binary.BigEndian.PutUint32(data[0:4], 132)

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := p.Description(); err == nil {
		t.Error("Description() expected error without desc tag")
	}
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestEmbedJPEG_RoundTrip(t *testing.T) {
	src := encodeJPEG(t, 16, 16)
	if _, ok := Extract(src); ok {
		t.Fatal("plain JPEG should carry no profile")
	}

	profile := SRGB()
	out, err := EmbedJPEG(src, profile)
	if err != nil {
		t.Fatalf("EmbedJPEG() error = %v", err)
	}

	got, ok := Extract(out)
	if !ok {
		t.Fatal("Extract() found no profile after embedding")
	}
	if !bytes.Equal(got, profile) {
		t.Error("extracted profile differs from embedded profile")
	}

	if _, err := jpeg.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("output no longer decodes: %v", err)
	}
}

func TestEmbedJPEG_MultiChunkReplacesExisting(t *testing.T) {
	src := encodeJPEG(t, 8, 8)

	first, err := EmbedJPEG(src, bytes.Repeat([]byte{0xAA}, 1000))
	if err != nil {
		t.Fatalf("EmbedJPEG() error = %v", err)
	}

	big := make([]byte, 2*maxChunkData+10)
	for i := range big {
		big[i] = byte(i)
	}
	out, err := EmbedJPEG(first, big)
	if err != nil {
		t.Fatalf("EmbedJPEG() error = %v", err)
	}

	got, ok := Extract(out)
	if !ok {
		t.Fatal("Extract() found no profile")
	}
	if !bytes.Equal(got, big) {
		t.Errorf("extracted %d bytes, want the %d-byte replacement", len(got), len(big))
	}

	segments := 0
	_, _ = walkJPEG(out, func(s segment) error {
		if isICCSegment(s) {
			segments++
		}
		return nil
	})
	if segments != 3 {
		t.Errorf("ICC segments = %d, want 3", segments)
	}
}

func TestEmbedJPEG_Errors(t *testing.T) {
	if _, err := EmbedJPEG([]byte("nope"), SRGB()); err == nil {
		t.Error("expected error for non-JPEG input")
	}
	if _, err := EmbedJPEG(encodeJPEG(t, 2, 2), nil); err == nil {
		t.Error("expected error for empty profile")
	}
}

type errWriter struct{}

var errShortWrite = errors.New("short write")

func (errWriter) Write(p []byte) (int, error) { return 0, errShortWrite }

func TestWriteICCSegments(t *testing.T) {
	profile := make([]byte, maxChunkData+5)

	var buf bytes.Buffer
	if err := writeICCSegments(&buf, profile, 2); err != nil {
		t.Fatalf("writeICCSegments() error = %v", err)
	}
	if want := len(profile) + 2*(4+len(iccMarker)+2); buf.Len() != want {
		t.Errorf("wrote %d bytes, want %d", buf.Len(), want)
	}

	if err := writeICCSegments(errWriter{}, profile, 2); !errors.Is(err, errShortWrite) {
		t.Errorf("writeICCSegments() error = %v, want %v", err, errShortWrite)
	}
}

var pngSig = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

func pngChunk(buf *bytes.Buffer, typ string, data []byte) {
	binary.Write(buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(typ)
	buf.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	binary.Write(buf, binary.BigEndian, crc.Sum32())
}

func TestExtract_PNG(t *testing.T) {
	profile := SRGB()

	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	zw.Write(profile)
	zw.Close()

	var iccp bytes.Buffer
	iccp.WriteString("sRGB")
	iccp.WriteByte(0)
	iccp.WriteByte(0)
	iccp.Write(z.Bytes())

	var buf bytes.Buffer
	buf.Write(pngSig)
	pngChunk(&buf, "IHDR", make([]byte, 13))
	pngChunk(&buf, "iCCP", iccp.Bytes())
	pngChunk(&buf, "IEND", nil)

	got, ok := Extract(buf.Bytes())
	if !ok {
		t.Fatal("Extract() found no iCCP profile")
	}
	if !bytes.Equal(got, profile) {
		t.Error("PNG profile mismatch")
	}

	var plain bytes.Buffer
	plain.Write(pngSig)
	pngChunk(&plain, "IHDR", make([]byte, 13))
	pngChunk(&plain, "IDAT", []byte{1, 2, 3})
	pngChunk(&plain, "iCCP", iccp.Bytes())
	if _, ok := Extract(plain.Bytes()); ok {
		t.Error("iCCP after IDAT must be ignored")
	}
}

func TestExtract_WebP(t *testing.T) {
	profile := []byte("fake-profile!") // odd length exercises padding

	var body bytes.Buffer
	body.WriteString("WEBP")
	body.WriteString("VP8X")
	binary.Write(&body, binary.LittleEndian, uint32(10))
	vp8x := make([]byte, 10)
	vp8x[0] = 0x20 // ICC flag
	body.Write(vp8x)
	body.WriteString("ICCP")
	binary.Write(&body, binary.LittleEndian, uint32(len(profile)))
	body.Write(profile)
	body.WriteByte(0)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(body.Len()))
	buf.Write(body.Bytes())

	got, ok := Extract(buf.Bytes())
	if !ok || !bytes.Equal(got, profile) {
		t.Errorf("Extract() = %q, %v; want %q", got, ok, profile)
	}
}

func TestExtract_Unknown(t *testing.T) {
	if _, ok := Extract([]byte("GIF89a")); ok {
		t.Error("Extract() should not find profiles in GIF data")
	}
}

func TestTransform(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 10, A: 255})

	srgb, err := Parse(SRGB())
	if err != nil {
		t.Fatal(err)
	}
	other, err := Parse(mlucProfile(map[string]string{"enUS": "Other"}, []string{"enUS"}))
	if err != nil {
		t.Fatal(err)
	}

	out, err := Transform(img, srgb, srgb)
	if err != nil {
		t.Fatalf("identity Transform() error = %v", err)
	}
	if out != image.Image(img) {
		t.Error("identity Transform() should return the input image")
	}

	if _, err := Transform(img, other, srgb); !errors.Is(err, ErrUnsupportedTransform) {
		t.Errorf("Transform() error = %v, want ErrUnsupportedTransform", err)
	}
	if _, err := Transform(img, nil, srgb); !errors.Is(err, ErrUnsupportedTransform) {
		t.Errorf("Transform(nil) error = %v, want ErrUnsupportedTransform", err)
	}
}
