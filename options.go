package musickit

// Option configures behavior when opening audio files.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	file, err := musickit.Open("song.flac",
//	    musickit.WithStrictParsing(),
//	    musickit.WithArtworkPreload(),
//	)
type Option func(*openOptions)

// openOptions holds configuration for opening files.
type openOptions struct {
	strictParsing  bool // Fail on any warning
	preloadArtwork bool // Load artwork immediately instead of lazily
	ignoreWarnings bool // Suppress all warnings
	maxArtworkSize int  // Maximum artwork size in bytes (0 = no limit)
}

// defaultOptions returns the default configuration.
func defaultOptions() *openOptions {
	return &openOptions{
		strictParsing:  false,
		preloadArtwork: false,
		ignoreWarnings: false,
		maxArtworkSize: 0, // No limit
	}
}

// WithStrictParsing treats any warning as a fatal error.
//
// By default, Open continues when it finds non-fatal issues such as an
// extension that disagrees with the file contents or an oversized
// picture, returning warnings alongside the file.
//
// With strict parsing enabled, any warning becomes a fatal error.
//
// Example:
//
//	file, err := musickit.Open("song.flac", musickit.WithStrictParsing())
//	// err != nil if ANY issue is encountered
func WithStrictParsing() Option {
	return func(o *openOptions) {
		o.strictParsing = true
	}
}

// WithArtworkPreload loads artwork immediately instead of lazily.
//
// By default, artwork is only loaded when ExtractArtwork() is called.
// This option loads it during Open() for convenience.
//
// Example:
//
//	file, err := musickit.Open("song.flac", musickit.WithArtworkPreload())
//	// file.ExtractArtwork() will return cached data
func WithArtworkPreload() Option {
	return func(o *openOptions) {
		o.preloadArtwork = true
	}
}

// WithIgnoreWarnings suppresses all warnings.
//
// By default, warnings about non-fatal issues are collected in
// File.Warnings. This option discards them.
//
// Example:
//
//	file, err := musickit.Open("song.flac", musickit.WithIgnoreWarnings())
//	// file.Warnings will always be empty
func WithIgnoreWarnings() Option {
	return func(o *openOptions) {
		o.ignoreWarnings = true
	}
}

// WithMaxArtworkSize sets a maximum size limit for artwork extraction.
//
// Pictures larger than this many bytes are left out of ExtractArtwork
// with a warning. They stay in the file unless ReplaceArtwork is called.
//
// Default is 0 (no limit).
//
// Example:
//
//	// Limit artwork to 10MB
//	file, err := musickit.Open("song.flac",
//	    musickit.WithMaxArtworkSize(10*1024*1024),
//	)
func WithMaxArtworkSize(bytes int) Option {
	return func(o *openOptions) {
		o.maxArtworkSize = bytes
	}
}
