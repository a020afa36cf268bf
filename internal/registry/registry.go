// Package registry manages format-specific tag container adapters.
package registry

import (
	"github.com/simonhull/musickit/internal/types"
)

// Container is an open tag container holding embedded pictures.
type Container interface {
	// Pictures returns the embedded pictures in stored order.
	Pictures() ([]types.Artwork, error)

	// ReplacePictures replaces the full picture set. Existing pictures
	// are never merged with the new set.
	ReplacePictures(pics []types.Artwork) error

	// Save commits pending changes to the underlying file.
	Save() error

	// Close releases the underlying file without saving.
	Close() error
}

// Adapter opens containers for one format.
type Adapter interface {
	Open(path string) (Container, error)
}

// adapters maps formats to their adapters.
var adapters = make(map[types.Format]Adapter)

// Register registers an adapter for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, adapter Adapter) {
	adapters[format] = adapter
}

// Get returns the adapter for a given format.
// Returns nil if no adapter is registered for the format.
func Get(format types.Format) Adapter {
	return adapters[format]
}
