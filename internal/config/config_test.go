package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/simonhull/musickit/internal/albumart"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "musickit.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
art:
  max_dimension: 500
tools:
  ffmpeg: /opt/bin/ffmpeg
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Art.MaxDimension != 500 {
		t.Errorf("max_dimension = %d, want 500", cfg.Art.MaxDimension)
	}
	if cfg.Art.Quality != albumart.DefaultQuality {
		t.Errorf("quality = %d, want default %d", cfg.Art.Quality, albumart.DefaultQuality)
	}
	if cfg.Tools.FFmpeg != "/opt/bin/ffmpeg" || cfg.Tools.FFmpegNormalize != "ffmpeg-normalize" {
		t.Errorf("tools = %+v", cfg.Tools)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "art:\n  quality: 70\n")
	t.Setenv("MUSICKIT_ART_QUALITY", "90")
	t.Setenv("MUSICKIT_LOG_LEVEL", "warn")
	t.Setenv("MUSICKIT_TOOLS_FFMPEG_NORMALIZE", "/usr/local/bin/ffmpeg-normalize")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Art.Quality != 90 {
		t.Errorf("quality = %d, want 90", cfg.Art.Quality)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Tools.FFmpegNormalize != "/usr/local/bin/ffmpeg-normalize" {
		t.Errorf("ffmpeg_normalize = %q", cfg.Tools.FFmpegNormalize)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown field", "art:\n  colour: red\n", "colour"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"bad quality", "art:\n  quality: 101\n", "art.quality"},
		{"negative size", "art:\n  max_size_bytes: -1\n", "art.max_size_bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestArtConfig_Options(t *testing.T) {
	p := albumart.NewPolicy(ArtConfig{MaxDimension: 300, MaxSizeBytes: 1000, Quality: 60}.Options()...)
	if p.MaxDimension != 300 || p.MaxSizeBytes != 1000 || p.Quality != 60 {
		t.Errorf("policy = %+v", p)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "debug", Format: "json"}.NewLogger(&buf)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}

	logger.WithField("file", "a.mp3").Debug("processing")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}
	if entry["file"] != "a.mp3" || entry["msg"] != "processing" {
		t.Errorf("entry = %v", entry)
	}

	if _, err := (LogConfig{Level: "info", Format: "xml"}).NewLogger(&buf); err == nil {
		t.Error("expected error for unknown format")
	}
}
