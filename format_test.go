package musickit

import (
	"bytes"
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"flac", []byte("fLaC\x00\x00\x00\x22"), FormatFLAC},
		{"id3", []byte("ID3\x03\x00\x00\x00\x00"), FormatMP3},
		{"frame sync", []byte{0xFF, 0xFB, 0x90, 0x64}, FormatMP3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(bytes.NewReader(tt.data), int64(len(tt.data)), "x")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFormat_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too small", []byte("ID")},
		{"riff", []byte("RIFF\x00\x00\x00\x00WAVE")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DetectFormat(bytes.NewReader(tt.data), int64(len(tt.data)), "test.wav")
			var ufe *UnsupportedFormatError
			if !errors.As(err, &ufe) {
				t.Fatalf("expected *UnsupportedFormatError, got %T: %v", err, err)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.mp3", FormatMP3},
		{"A.MP3", FormatMP3},
		{"dir/b.flac", FormatFLAC},
		{"c.m4a", FormatUnknown},
		{"noext", FormatUnknown},
	}

	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
