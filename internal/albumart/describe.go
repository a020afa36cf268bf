package albumart

import "fmt"

// Describe returns the human-readable report lines for r.
func Describe(r Result, force bool, p Policy) []string {
	var lines []string
	if force {
		lines = append(lines, "✔️  Forcing re-embed of album art")
	}
	if r.FormatConverted {
		lines = append(lines, "✔️  Converted PNG → JPEG")
	}
	if r.Resized {
		lines = append(lines, fmt.Sprintf("✔️  Resized image to max %dx%d", p.MaxDimension, p.MaxDimension))
	}
	if r.ProfileConverted {
		lines = append(lines, "✔️  Ensured sRGB color profile")
	}
	lines = append(lines, fmt.Sprintf("🖼️  Original color profile: %s", r.OriginalProfile))
	if r.Oversized(p) {
		lines = append(lines, fmt.Sprintf("⚠️  JPEG size is %d KB (over %d KB)", r.FinalSizeKB, p.MaxSizeBytes/1024))
	}
	if !force && !r.Changed() {
		lines = append(lines, "✅ No changes needed")
	}
	return lines
}
