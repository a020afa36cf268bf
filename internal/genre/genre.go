// Package genre adds genres to MP3 files according to declarative rules
// keyed on other tag values.
//
// A rules file maps an ID3 frame ID to a table of exact frame values and
// the ';'-separated genres to add when a file carries that value:
//
//	TPE1:
//	  Miles Davis: Jazz
//	  Björk: Electronic;Art Pop
//	TALB:
//	  Kind of Blue: Modal Jazz
package genre

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/musickit/internal/mp3"
	"github.com/simonhull/musickit/internal/walk"
)

// FrameID is the ID3 genre frame.
const FrameID = "TCON"

const separator = ";"

// Rules maps frame ID -> frame value -> genres.
type Rules map[string]map[string]string

// LoadRules decodes a YAML rules document.
func LoadRules(r io.Reader) (Rules, error) {
	var rules Rules
	if err := yaml.NewDecoder(r).Decode(&rules); err != nil {
		if errors.Is(err, io.EOF) {
			return Rules{}, nil
		}
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if rules == nil {
		rules = Rules{}
	}
	return rules, nil
}

// LoadRulesFile decodes the rules file at path.
func LoadRulesFile(path string) (Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()
	return LoadRules(f)
}

// Tags returns the frame IDs the rules look at, sorted.
func (r Rules) Tags() []string {
	tags := make([]string, 0, len(r))
	for id := range r {
		tags = append(tags, id)
	}
	slices.Sort(tags)
	return tags
}

// Change is the planned genre list for one file.
type Change struct {
	Current []string
	New     []string
}

// Differs reports whether applying the change would alter the tag.
func (c Change) Differs() bool {
	return !slices.Equal(c.Current, c.New)
}

// Plan computes the new genre list from the current frame values.
// Rules are applied in sorted frame ID order; requested genres already in
// the list are not repeated.
func Plan(current map[string]string, rules Rules, overwrite bool) Change {
	existing := split(current[FrameID])

	var genres []string
	if !overwrite {
		genres = slices.Clone(existing)
	}

	for _, id := range rules.Tags() {
		value, ok := current[id]
		if !ok {
			continue
		}
		requested, ok := rules[id][value]
		if !ok {
			continue
		}
		for _, g := range split(requested) {
			if !slices.Contains(genres, g) {
				genres = append(genres, g)
			}
		}
	}

	return Change{Current: existing, New: genres}
}

func split(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == 0 }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Editor applies rules to files.
type Editor struct {
	Rules     Rules
	Overwrite bool
	DryRun    bool
	Verbose   bool

	// Out receives one "path current new" line per planned change.
	Out io.Writer

	Logger logrus.FieldLogger
}

// Stats counts what Run did.
type Stats struct {
	Scanned int
	Changed int
	Failed  int
}

func (e *Editor) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Editor) logger() logrus.FieldLogger {
	if e.Logger == nil {
		return logrus.StandardLogger()
	}
	return e.Logger
}

// Apply plans and, unless in dry-run mode, writes the genre change for
// the MP3 file at path. Reports whether the change differs from the
// current tag.
func (e *Editor) Apply(path string) (Change, bool, error) {
	tag, err := mp3.Open(path)
	if err != nil {
		return Change{}, false, err
	}
	defer tag.Close()

	current := make(map[string]string)
	for _, id := range append(e.Rules.Tags(), FrameID) {
		if v := tag.TextFrame(id); v != "" {
			current[id] = v
			if e.Verbose {
				fmt.Fprintf(e.out(), "Matched tag: %s with %s\n", id, v)
			}
		}
	}

	change := Plan(current, e.Rules, e.Overwrite)
	if len(change.New) == 0 {
		if e.Verbose {
			fmt.Fprintf(e.out(), "***** Skipping %s\n", path)
		}
		return change, false, nil
	}

	fmt.Fprintln(e.out(), path, strings.Join(change.Current, separator), strings.Join(change.New, separator))

	if !change.Differs() {
		return change, false, nil
	}
	if e.DryRun {
		return change, true, nil
	}

	tag.SetTextFrame(FrameID, strings.Join(change.New, separator))
	if err := tag.Save(); err != nil {
		return change, true, err
	}
	e.logger().WithField("file", path).Debug("genres updated")
	return change, true, nil
}

// Run applies the rules to every MP3 file under root. Failures are logged
// and counted; the walk goes on.
func (e *Editor) Run(ctx context.Context, root string) (Stats, error) {
	var stats Stats

	err := walk.Walk(ctx, walk.Options{Root: root, Extensions: []string{".mp3"}}, func(entry walk.Entry) error {
		stats.Scanned++
		if e.Verbose {
			fmt.Fprintf(e.out(), "---------- Processing file %s\n", entry.Path)
		}

		_, changed, err := e.Apply(entry.Path)
		if err != nil {
			e.logger().WithField("file", entry.Path).WithError(err).Error("genre update failed")
			stats.Failed++
			return nil
		}
		if changed {
			stats.Changed++
		}
		return nil
	})
	return stats, err
}
