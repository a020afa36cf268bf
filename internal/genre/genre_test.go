package genre

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/sirupsen/logrus"
)

var mpegFrame = append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 413)...)

const rulesYAML = `
TPE1:
  Miles Davis: Jazz
  Björk: Electronic;Art Pop
TALB:
  Kind of Blue: Modal Jazz;Jazz
`

func mustRules(t *testing.T) Rules {
	t.Helper()
	rules, err := LoadRules(strings.NewReader(rulesYAML))
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	return rules
}

func writeMP3(t *testing.T, path string, frames map[string]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, mpegFrame, 0o644); err != nil {
		t.Fatal(err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open fixture tag: %v", err)
	}
	defer tag.Close()

	tag.SetVersion(3)
	for id, v := range frames {
		tag.AddTextFrame(id, id3v2.EncodingUTF16, v)
	}
	if err := tag.Save(); err != nil {
		t.Fatalf("save fixture tag: %v", err)
	}
}

func readFrame(t *testing.T, path, id string) string {
	t.Helper()
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer tag.Close()
	return tag.GetTextFrame(id).Text
}

func TestRules_Tags(t *testing.T) {
	if got := mustRules(t).Tags(); !slices.Equal(got, []string{"TALB", "TPE1"}) {
		t.Errorf("Tags() = %v", got)
	}
}

func TestLoadRules_Empty(t *testing.T) {
	rules, err := LoadRules(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("rules = %v, want empty", rules)
	}

	if _, err := LoadRules(strings.NewReader("TPE1: [unterminated")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestPlan(t *testing.T) {
	rules := mustRules(t)

	tests := []struct {
		name      string
		current   map[string]string
		overwrite bool
		want      Change
	}{
		{
			name:    "no match",
			current: map[string]string{"TPE1": "Someone Else"},
			want:    Change{},
		},
		{
			name:    "artist match",
			current: map[string]string{"TPE1": "Björk"},
			want:    Change{New: []string{"Electronic", "Art Pop"}},
		},
		{
			name:    "album then artist without repeats",
			current: map[string]string{"TPE1": "Miles Davis", "TALB": "Kind of Blue"},
			want:    Change{New: []string{"Modal Jazz", "Jazz"}},
		},
		{
			name:    "appends to existing",
			current: map[string]string{"TPE1": "Miles Davis", FrameID: "Bebop;Jazz"},
			want:    Change{Current: []string{"Bebop", "Jazz"}, New: []string{"Bebop", "Jazz"}},
		},
		{
			name:      "overwrite drops existing",
			current:   map[string]string{"TPE1": "Miles Davis", FrameID: "Bebop"},
			overwrite: true,
			want:      Change{Current: []string{"Bebop"}, New: []string{"Jazz"}},
		},
		{
			name:    "match is exact",
			current: map[string]string{"TPE1": "miles davis"},
			want:    Change{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.current, rules, tt.overwrite)
			if !slices.Equal(got.Current, tt.want.Current) || !slices.Equal(got.New, tt.want.New) {
				t.Errorf("Plan() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChange_Differs(t *testing.T) {
	if (Change{Current: []string{"Jazz"}, New: []string{"Jazz"}}).Differs() {
		t.Error("identical lists should not differ")
	}
	if !(Change{Current: []string{"Jazz"}, New: []string{"Jazz", "Bebop"}}).Differs() {
		t.Error("extended list should differ")
	}
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	return l
}

func TestEditor_Run(t *testing.T) {
	root := t.TempDir()
	davis := filepath.Join(root, "jazz", "so_what.mp3")
	bjork := filepath.Join(root, "pop", "hyperballad.mp3")
	other := filepath.Join(root, "other", "x.mp3")
	writeMP3(t, davis, map[string]string{"TPE1": "Miles Davis", "TALB": "Kind of Blue"})
	writeMP3(t, bjork, map[string]string{"TPE1": "Björk", FrameID: "Electronic"})
	writeMP3(t, other, map[string]string{"TPE1": "Nobody"})

	var out bytes.Buffer
	e := &Editor{Rules: mustRules(t), Out: &out, Logger: quietLogger()}
	stats, err := e.Run(t.Context(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats != (Stats{Scanned: 3, Changed: 2}) {
		t.Errorf("stats = %+v", stats)
	}
	if got := readFrame(t, davis, FrameID); got != "Modal Jazz;Jazz" {
		t.Errorf("davis TCON = %q", got)
	}
	if got := readFrame(t, bjork, FrameID); got != "Electronic;Art Pop" {
		t.Errorf("bjork TCON = %q", got)
	}
	if got := readFrame(t, other, FrameID); got != "" {
		t.Errorf("other TCON = %q, want unset", got)
	}
	if !strings.Contains(out.String(), bjork+" Electronic Electronic;Art Pop\n") {
		t.Errorf("report = %q", out.String())
	}
}

func TestEditor_DryRunAndVerbose(t *testing.T) {
	root := t.TempDir()
	davis := filepath.Join(root, "a.mp3")
	other := filepath.Join(root, "b.mp3")
	writeMP3(t, davis, map[string]string{"TPE1": "Miles Davis"})
	writeMP3(t, other, map[string]string{"TPE1": "Nobody"})

	var out bytes.Buffer
	e := &Editor{Rules: mustRules(t), DryRun: true, Verbose: true, Out: &out, Logger: quietLogger()}
	stats, err := e.Run(t.Context(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Changed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if got := readFrame(t, davis, FrameID); got != "" {
		t.Errorf("dry run wrote TCON %q", got)
	}

	report := out.String()
	for _, want := range []string{
		"---------- Processing file " + davis,
		"Matched tag: TPE1 with Miles Davis",
		davis + "  Jazz",
		"***** Skipping " + other,
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestEditor_UnchangedNotRewritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	writeMP3(t, path, map[string]string{"TPE1": "Miles Davis", FrameID: "Jazz"})

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	e := &Editor{Rules: mustRules(t), Out: &bytes.Buffer{}, Logger: quietLogger()}
	change, changed, err := e.Apply(path)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if changed || change.Differs() {
		t.Errorf("change = %+v, changed = %v", change, changed)
	}

	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Error("unchanged file was rewritten")
	}
}
