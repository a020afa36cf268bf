// Package musickit keeps an MP3/FLAC music library's embedded album art
// within a size, format and color-profile policy.
//
// Car stereos and older players often refuse large, PNG or wide-gamut
// covers. musickit re-encodes such pictures as bounded sRGB JPEGs and
// writes them back to the file, leaving the audio data untouched.
//
// # Quick Start
//
// Normalizing the pictures of a single file:
//
//	file, err := musickit.Open("song.mp3")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer file.Close()
//
//	art, err := file.ExtractArtwork()
//	if err != nil {
//		log.Fatal(err)
//	}
//	for i, a := range art {
//		res, err := musickit.NormalizeArtwork(a)
//		if err != nil {
//			log.Fatal(err)
//		}
//		if res.ShouldReplace(false) {
//			art[i] = a.WithImage(res.Data, musickit.MIMEJPEG, res.Width, res.Height)
//		}
//	}
//	if err := file.ReplaceArtwork(art); err != nil {
//		log.Fatal(err)
//	}
//	err = file.Save(musickit.WithBackup(".bak"))
//
// # Supported Formats
//
//   - MP3: ID3v2 APIC frames; written back as ID3v2.3
//   - FLAC: PICTURE metadata blocks; Vorbis comments are preserved
//
// # Policy
//
// The default policy bounds pictures to 600x600 pixels, flags JPEGs over
// 500 KB and encodes at quality 85. A picture is rewritten when it was
// resized, converted from PNG, or had no color profile. Pictures already
// within policy are left byte for byte.
//
// # Architecture
//
//	[File]              - Entry point with Open()
//	  ├─ [Artwork]      - Embedded pictures (lazy loaded)
//	  └─ container      - MP3 or FLAC adapter
//	[NormalizeArtwork]  - Decode, resize, sRGB, JPEG
//
// The musickit command walks whole libraries, mirrors them to an output
// tree, and also carries playlist export, genre tagging and ffmpeg
// batch helpers.
//
// # Error Handling
//
//   - UnsupportedFormatError: neither MP3 nor FLAC
//   - CorruptedFileError: the tag container cannot be parsed
//   - DecodeError: picture bytes are not a decodable image
//   - ToolError: an external transcoder failed
//
// Non-fatal issues are collected in file.Warnings.
package musickit
