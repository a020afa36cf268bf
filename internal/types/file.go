// Package types provides the core data structures shared by the container
// adapters, the album-art normalizer and the public musickit API.
package types

// File is the format-agnostic view of an opened audio file.
type File struct {
	Path     string
	Format   Format
	Size     int64
	Warnings []Warning
}
