package musickit

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/simonhull/musickit/internal/registry"
)

// Save writes pending artwork changes back to the original file.
//
// The container adapters write through a temporary file and rename it over
// the original, so a failed save leaves the original unchanged.
//
// Options can be provided to customize save behavior:
//
//	err := file.Save(
//	    musickit.WithBackup(".bak"),
//	    musickit.WithValidation(),
//	)
//
// Returns UnsupportedWriteError if the file has no writable container.
func (f *File) Save(opts ...SaveOption) error {
	options := defaultSaveOptions()
	for _, opt := range opts {
		opt(options)
	}

	if f.container == nil {
		return &UnsupportedWriteError{Format: f.Format, Reason: "file is closed"}
	}

	modTime, err := modTimeOf(f.Path, options.preserveModTime)
	if err != nil {
		return err
	}

	if options.backupSuffix != "" {
		if err := copyAtomic(f.Path, f.Path+options.backupSuffix); err != nil {
			return fmt.Errorf("create backup: %w", err)
		}
	}

	if err := f.apply(f.container); err != nil {
		return err
	}
	if err := f.container.Save(); err != nil {
		return fmt.Errorf("save %s: %w", f.Format, err)
	}
	f.commit()

	return finish(f.Path, modTime, options, f.artwork)
}

// SaveAs writes the file with pending artwork changes to a new location.
// The original file is left untouched.
//
// The audio stream is copied byte for byte; only the picture set differs.
// The output directory must exist.
//
//	err := file.SaveAs("/mirror/album/song.mp3", musickit.WithPreserveModTime())
func (f *File) SaveAs(outputPath string, opts ...SaveOption) error {
	options := defaultSaveOptions()
	for _, opt := range opts {
		opt(options)
	}

	if f.container == nil {
		return &UnsupportedWriteError{Format: f.Format, Reason: "file is closed"}
	}
	adapter := registry.Get(f.Format)
	if adapter == nil {
		return &UnsupportedWriteError{Format: f.Format, Reason: "no adapter registered"}
	}

	modTime, err := modTimeOf(f.Path, options.preserveModTime)
	if err != nil {
		return err
	}

	if options.backupSuffix != "" {
		if _, err := os.Stat(outputPath); err == nil {
			if err := copyAtomic(outputPath, outputPath+options.backupSuffix); err != nil {
				return fmt.Errorf("create backup: %w", err)
			}
		}
	}

	if err := copyAtomic(f.Path, outputPath); err != nil {
		return fmt.Errorf("copy to output: %w", err)
	}

	pictures := f.artwork
	if f.pending {
		out, err := adapter.Open(outputPath)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		if err := f.apply(out); err != nil {
			out.Close()
			return err
		}
		if err := out.Save(); err != nil {
			out.Close()
			return fmt.Errorf("save %s: %w", f.Format, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
		pictures = f.replaced
	}

	return finish(outputPath, modTime, options, pictures)
}

func (f *File) apply(c registry.Container) error {
	if !f.pending {
		return nil
	}
	if err := c.ReplacePictures(f.replaced); err != nil {
		return fmt.Errorf("replace pictures: %w", err)
	}
	return nil
}

func (f *File) commit() {
	if f.pending {
		f.artwork = f.replaced
		f.replaced = nil
		f.pending = false
	}
}

func modTimeOf(path string, want bool) (time.Time, error) {
	if !want {
		return time.Time{}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat original: %w", err)
	}
	return info.ModTime(), nil
}

func finish(path string, modTime time.Time, options *saveOptions, want []Artwork) error {
	if !modTime.IsZero() {
		_ = os.Chtimes(path, modTime, modTime) //nolint:errcheck // Non-fatal: file was written successfully
	}
	if options.validate {
		if err := validateWrittenFile(path, want); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}

// validateWrittenFile re-opens the file and compares its pictures with want.
// A nil want means the pictures were never read, so only the re-open is checked.
func validateWrittenFile(path string, want []Artwork) error {
	written, err := Open(path)
	if err != nil {
		return fmt.Errorf("re-open: %w", err)
	}
	defer written.Close() //nolint:errcheck // Best effort close

	got, err := written.ExtractArtwork()
	if err != nil {
		return fmt.Errorf("re-read artwork: %w", err)
	}
	if want == nil {
		return nil
	}
	if len(got) != len(want) {
		return fmt.Errorf("picture count mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Type != want[i].Type {
			return fmt.Errorf("picture %d type mismatch: got %s, want %s", i, got[i].Type, want[i].Type)
		}
		if !bytes.Equal(got[i].Data, want[i].Data) {
			return fmt.Errorf("picture %d data mismatch", i)
		}
	}
	return nil
}

// copyAtomic copies src to dst through a temporary file in dst's directory.
func copyAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(filepath.Dir(dst), ".musickit-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tempFile.Close()    //nolint:errcheck // Best effort cleanup
			_ = os.Remove(tempPath) //nolint:errcheck // Best effort cleanup
		}
	}()

	if _, err := io.Copy(tempFile, in); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tempPath, dst); err != nil {
		return fmt.Errorf("rename temp to output: %w", err)
	}

	success = true
	return nil
}
