package mp3

import (
	"errors"
	"fmt"
	"io/fs"
	"unicode/utf8"

	"github.com/bogem/id3v2/v2"

	"github.com/simonhull/musickit/internal/registry"
	"github.com/simonhull/musickit/internal/types"
)

// WriteVersion is the ID3v2 major version used for every save.
const WriteVersion = 3

const picturesID = "APIC"

func init() {
	registry.Register(types.FormatMP3, adapter{})
}

type adapter struct{}

func (adapter) Open(path string) (registry.Container, error) {
	return Open(path)
}

// Tag is an open ID3v2 tag backed by a file on disk.
type Tag struct {
	path string
	tag  *id3v2.Tag
}

// Open parses the ID3v2 tag of the file at path.
func Open(path string) (*Tag, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open tag: %w", err)
		}
		return nil, &types.CorruptedFileError{
			Path:   path,
			Reason: fmt.Sprintf("parse ID3v2 tag: %v", err),
		}
	}
	return &Tag{path: path, tag: tag}, nil
}

// Path returns the file the tag was read from.
func (t *Tag) Path() string {
	return t.path
}

// Version returns the ID3v2 major version currently set on the tag.
func (t *Tag) Version() byte {
	return t.tag.Version()
}

// Pictures returns the APIC frames in stored order. Legacy MIME markers
// such as "PNG" and "JPG" are normalized.
func (t *Tag) Pictures() ([]types.Artwork, error) {
	frames := t.tag.GetFrames(picturesID)

	pics := make([]types.Artwork, 0, len(frames))
	for _, f := range frames {
		pf, ok := f.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		pics = append(pics, types.Artwork{
			Type:        types.ArtworkType(pf.PictureType),
			MIMEType:    types.NormalizeMIME(pf.MimeType),
			Description: pf.Description,
			Data:        pf.Picture,
		})
	}
	return pics, nil
}

// ReplacePictures deletes every APIC frame and adds pics in order.
func (t *Tag) ReplacePictures(pics []types.Artwork) error {
	t.tag.DeleteFrames(picturesID)

	for i, p := range pics {
		if len(p.Data) == 0 {
			return fmt.Errorf("picture %d: empty image data", i)
		}
		mime := types.NormalizeMIME(p.MIMEType)
		if mime == "" {
			mime = types.DetectMIME(p.Data)
		}
		t.tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    encodingFor(p.Description),
			MimeType:    mime,
			PictureType: byte(p.Type),
			Description: p.Description,
			Picture:     p.Data,
		})
	}
	return nil
}

// TextFrame returns the text of the frame with the given ID, or "" when
// the frame is absent.
func (t *Tag) TextFrame(id string) string {
	return t.tag.GetTextFrame(id).Text
}

// SetTextFrame sets the text frame id to value, replacing any existing frame.
func (t *Tag) SetTextFrame(id, value string) {
	t.tag.AddTextFrame(id, encodingFor(value), value)
}

// Save writes the tag as ID3v2.3.
func (t *Tag) Save() error {
	t.tag.SetVersion(WriteVersion)
	t.downgradeEncodings()

	if err := t.tag.Save(); err != nil {
		return fmt.Errorf("save ID3v2 tag: %w", err)
	}
	return nil
}

// Close releases the file without saving.
func (t *Tag) Close() error {
	return t.tag.Close()
}

// downgradeEncodings rewrites every UTF-8 frame as UTF-16, the only
// Unicode encoding ID3v2.3 defines. Frames stored under one ID keep
// their order.
func (t *Tag) downgradeEncodings() {
	for id, frames := range t.tag.AllFrames() {
		changed := false
		out := make([]id3v2.Framer, len(frames))
		for i, f := range frames {
			out[i] = f
			if g, ok := toUTF16(f); ok {
				out[i] = g
				changed = true
			}
		}
		if !changed {
			continue
		}
		t.tag.DeleteFrames(id)
		for _, f := range out {
			t.tag.AddFrame(id, f)
		}
	}
}

// toUTF16 returns f re-encoded as UTF-16 when it is a UTF-8 frame with
// an encoding byte.
func toUTF16(f id3v2.Framer) (id3v2.Framer, bool) {
	isUTF8 := func(e id3v2.Encoding) bool { return e.Key == id3v2.EncodingUTF8.Key }

	switch v := f.(type) {
	case id3v2.TextFrame:
		if isUTF8(v.Encoding) {
			v.Encoding = id3v2.EncodingUTF16
			return v, true
		}
	case id3v2.CommentFrame:
		if isUTF8(v.Encoding) {
			v.Encoding = id3v2.EncodingUTF16
			return v, true
		}
	case id3v2.UnsynchronisedLyricsFrame:
		if isUTF8(v.Encoding) {
			v.Encoding = id3v2.EncodingUTF16
			return v, true
		}
	case id3v2.UserDefinedTextFrame:
		if isUTF8(v.Encoding) {
			v.Encoding = id3v2.EncodingUTF16
			return v, true
		}
	case id3v2.PictureFrame:
		if isUTF8(v.Encoding) {
			v.Encoding = id3v2.EncodingUTF16
			return v, true
		}
	}
	return f, false
}

// encodingFor returns ISO-8859-1 for ASCII text and UTF-16 otherwise.
func encodingFor(s string) id3v2.Encoding {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return id3v2.EncodingUTF16
		}
	}
	return id3v2.EncodingISO
}
