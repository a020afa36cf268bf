package musickit

import "testing"

func TestOpenOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want openOptions
	}{
		{"defaults", nil, openOptions{}},
		{"strict", []Option{WithStrictParsing()}, openOptions{strictParsing: true}},
		{"preload", []Option{WithArtworkPreload()}, openOptions{preloadArtwork: true}},
		{"ignore warnings", []Option{WithIgnoreWarnings()}, openOptions{ignoreWarnings: true}},
		{"max artwork", []Option{WithMaxArtworkSize(1024)}, openOptions{maxArtworkSize: 1024}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			for _, opt := range tt.opts {
				opt(o)
			}
			if *o != tt.want {
				t.Errorf("got %+v, want %+v", *o, tt.want)
			}
		})
	}
}

func TestSaveOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []SaveOption
		want saveOptions
	}{
		{"defaults", nil, saveOptions{}},
		{"backup", []SaveOption{WithBackup(".orig")}, saveOptions{backupSuffix: ".orig"}},
		{"validate", []SaveOption{WithValidation()}, saveOptions{validate: true}},
		{"mod time", []SaveOption{WithPreserveModTime()}, saveOptions{preserveModTime: true}},
		{
			"combined",
			[]SaveOption{WithBackup(".bak"), WithValidation(), WithPreserveModTime()},
			saveOptions{backupSuffix: ".bak", validate: true, preserveModTime: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultSaveOptions()
			for _, opt := range tt.opts {
				opt(o)
			}
			if *o != tt.want {
				t.Errorf("got %+v, want %+v", *o, tt.want)
			}
		})
	}
}
