// Package playlist exports the playlists of an iTunes library catalog
// (the XML property list) as .m3u files.
package playlist

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"howett.net/plist"
)

// Library is the subset of the catalog needed for export.
type Library struct {
	// Tracks is keyed by the decimal track ID.
	Tracks    map[string]Track `plist:"Tracks"`
	Playlists []Playlist       `plist:"Playlists"`
}

// Track is one catalog entry.
type Track struct {
	ID       int    `plist:"Track ID"`
	Name     string `plist:"Name"`
	Artist   string `plist:"Artist"`
	Location string `plist:"Location"`
}

// Playlist is a named, ordered list of track references.
type Playlist struct {
	Name  string `plist:"Name"`
	Items []Item `plist:"Playlist Items"`
}

// Item references a track by ID.
type Item struct {
	TrackID int `plist:"Track ID"`
}

// Written describes one exported playlist file.
type Written struct {
	Name   string // playlist name as stored in the catalog
	Path   string
	Tracks int // number of path lines written
}

// Load decodes a catalog.
func Load(r io.ReadSeeker) (*Library, error) {
	var lib Library
	if err := plist.NewDecoder(r).Decode(&lib); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &lib, nil
}

// LoadFile decodes the catalog at path.
func LoadFile(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// ResolveLocation turns a file:// URL into a local path. Other schemes,
// remote hosts and malformed URLs are rejected.
func ResolveLocation(loc string) (string, bool) {
	if !strings.HasPrefix(loc, "file://") {
		return "", false
	}
	u, err := url.Parse(loc)
	if err != nil {
		return "", false
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	return u.Path, true
}

// SanitizeName maps a playlist name to a file name stem. Letters, digits,
// space, underscore and hyphen are kept; anything else becomes '_'.
func SanitizeName(name string) string {
	if name == "" {
		return "Untitled"
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Paths returns the resolved paths of pl's tracks in order. Items with a
// missing track or an unresolvable location are left out.
func (lib *Library) Paths(pl Playlist) []string {
	paths := make([]string, 0, len(pl.Items))
	for _, item := range pl.Items {
		track, ok := lib.Tracks[strconv.Itoa(item.TrackID)]
		if !ok {
			continue
		}
		if p, ok := ResolveLocation(track.Location); ok {
			paths = append(paths, p)
		}
	}
	return paths
}

// Export writes one <name>.m3u per non-empty playlist into dir, creating
// dir if needed. Playlists whose names sanitize to the same stem
// overwrite each other in catalog order.
func Export(lib *Library, dir string) ([]Written, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []Written
	for _, pl := range lib.Playlists {
		if len(pl.Items) == 0 {
			continue
		}

		path := filepath.Join(dir, SanitizeName(pl.Name)+".m3u")
		paths := lib.Paths(pl)
		if err := writeM3U(path, paths); err != nil {
			return written, err
		}
		written = append(written, Written{Name: pl.Name, Path: path, Tracks: len(paths)})
	}
	return written, nil
}

func writeM3U(path string, paths []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create playlist: %w", err)
	}

	w := bufio.NewWriter(f)
	w.WriteString("#EXTM3U\n")
	for _, p := range paths {
		w.WriteString(p)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write playlist: %w", err)
	}
	return f.Close()
}
