// Package albumart normalizes embedded album art to a bounded sRGB JPEG.
package albumart

// Default policy values.
const (
	DefaultMaxDimension = 600
	DefaultMaxSizeBytes = 500 * 1024
	DefaultQuality      = 85
)

// Policy holds the normalization limits.
type Policy struct {
	// MaxDimension bounds the longer side of the output raster.
	MaxDimension int

	// MaxSizeBytes is the size above which a result is reported as
	// oversized. It never triggers recompression.
	MaxSizeBytes int

	// Quality is the JPEG encoding quality (1-100).
	Quality int
}

// Option configures a Policy.
type Option func(*Policy)

// DefaultPolicy returns the policy used when no options are given.
func DefaultPolicy() Policy {
	return Policy{
		MaxDimension: DefaultMaxDimension,
		MaxSizeBytes: DefaultMaxSizeBytes,
		Quality:      DefaultQuality,
	}
}

// NewPolicy returns the default policy with opts applied. Non-positive
// values are ignored and quality is clamped to 1-100.
func NewPolicy(opts ...Option) Policy {
	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithMaxDimension sets the maximum output width and height.
func WithMaxDimension(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.MaxDimension = n
		}
	}
}

// WithMaxSizeBytes sets the size warning threshold.
func WithMaxSizeBytes(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.MaxSizeBytes = n
		}
	}
}

// WithQuality sets the JPEG quality.
func WithQuality(q int) Option {
	return func(p *Policy) {
		if q > 0 {
			p.Quality = min(q, 100)
		}
	}
}

// WithPolicy replaces every limit with the values of p, keeping defaults
// for zero fields.
func WithPolicy(p Policy) Option {
	return func(dst *Policy) {
		WithMaxDimension(p.MaxDimension)(dst)
		WithMaxSizeBytes(p.MaxSizeBytes)(dst)
		WithQuality(p.Quality)(dst)
	}
}
