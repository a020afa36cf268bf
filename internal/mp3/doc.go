// Package mp3 adapts ID3v2 tags in MP3 files to the container interface.
//
// Pictures are APIC frames. Tags are always written as ID3v2.3, which
// has no UTF-8 text encoding, so UTF-8 frames are re-encoded as UTF-16
// on save. Files without a tag get a new one.
package mp3
