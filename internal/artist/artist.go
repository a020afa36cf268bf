// Package artist reads the artist of a track, preferring the album artist.
package artist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dhowden/tag"

	"github.com/simonhull/musickit/internal/flac"
	"github.com/simonhull/musickit/internal/mp3"
	"github.com/simonhull/musickit/internal/types"
)

// ErrNoArtist is returned when neither the album artist nor the artist
// tag is set.
var ErrNoArtist = errors.New("no artist tag")

// Lookup reads tags from r and returns the album artist (TPE2,
// ALBUMARTIST), falling back to the track artist (TPE1, ARTIST).
func Lookup(r io.ReadSeeker) (string, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return "", ErrNoArtist
		}
		return "", fmt.Errorf("read tags: %w", err)
	}
	return pick(m.AlbumArtist(), m.Artist())
}

// LookupFile is Lookup on the file at path. When the generic tag reader
// cannot parse the file, the MP3 or FLAC container adapter is consulted.
func LookupFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	name, err := Lookup(f)
	if err == nil || errors.Is(err, ErrNoArtist) {
		return name, err
	}

	switch types.FormatFromPath(path) {
	case types.FormatMP3:
		return lookupID3(path)
	case types.FormatFLAC:
		return lookupVorbis(path)
	default:
		return "", err
	}
}

func lookupID3(path string) (string, error) {
	t, err := mp3.Open(path)
	if err != nil {
		return "", err
	}
	defer t.Close()
	return pick(t.TextFrame("TPE2"), t.TextFrame("TPE1"))
}

func lookupVorbis(path string) (string, error) {
	f, err := flac.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var candidates []string
	for _, field := range []string{"ALBUMARTIST", "ALBUM ARTIST", "ARTIST"} {
		vals, err := f.Comment(field)
		if err != nil {
			return "", err
		}
		candidates = append(candidates, vals...)
	}
	return pick(candidates...)
}

func pick(candidates ...string) (string, error) {
	for _, c := range candidates {
		if s := strings.TrimSpace(strings.Trim(c, "\x00")); s != "" {
			return s, nil
		}
	}
	return "", ErrNoArtist
}
