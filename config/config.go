// glyphmerge - merge the glyph repertoires of TrueType fonts
// Copyright (C) 2025  The HackLine Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package config reads build recipes.
//
// A recipe lists the fonts to build, the source fonts whose glyphs are
// merged into each of them, and the metadata changes to apply.  Recipes
// are YAML files; two recipes are built in, see Preset.
package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"gopkg.in/yaml.v3"

	"github.com/hackline/glyphmerge/cmapsynth"
	"github.com/hackline/glyphmerge/placeholder"
	"github.com/hackline/glyphmerge/rename"
	"github.com/hackline/glyphmerge/selector"
)

// tracer traces with key 'glyphmerge.config'.
func tracer() tracing.Trace {
	return tracing.Select("glyphmerge.config")
}

// Recipe describes how to build one or more fonts.
type Recipe struct {
	Builds      []Build          `yaml:"builds"`
	Tasks       []TaskSpec       `yaml:"tasks"`
	Placeholder *PlaceholderSpec `yaml:"placeholder"`
	Rename      RenameSpec       `yaml:"rename"`
	CMap        CMapSpec         `yaml:"cmap"`

	// Workers is the number of goroutines used to convert outlines.
	Workers int `yaml:"workers"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// Build is one output font.
type Build struct {
	Base   string `yaml:"base"`
	Output string `yaml:"output"`

	// Sources replaces the source files of tasks, keyed by tag.  This is
	// used to select the matching weight of a source family.
	Sources map[string]string `yaml:"sources"`

	// Optional builds are skipped if the base font does not exist.
	Optional bool `yaml:"optional"`
}

// TaskSpec describes one merge task.
type TaskSpec struct {
	Tag    string   `yaml:"tag"`
	Source string   `yaml:"source"`
	Ranges []string `yaml:"ranges"`
}

// PlaceholderSpec configures the generated ideographic space glyph.
// Zero values select the defaults of placeholder.Default.
type PlaceholderSpec struct {
	Codepoint string   `yaml:"codepoint"`
	Box       float64  `yaml:"box"`
	Stroke    float64  `yaml:"stroke"`
	Dashes    int      `yaml:"dashes"`
	Gap       float64  `yaml:"gap"`
	Scope     []string `yaml:"scope"`
	Disabled  bool     `yaml:"disabled"`
}

// RenameSpec selects the name changes.  The rules of the preset, if any,
// are applied before the explicit rules.
type RenameSpec struct {
	Preset string        `yaml:"preset"`
	Rules  []rename.Rule `yaml:"rules"`
}

// CMapSpec holds options for rebuilding the character map.
type CMapSpec struct {
	Wide     bool `yaml:"wide"`
	MacRoman bool `yaml:"macroman"`
}

// Load reads a recipe from a file.  Relative paths in the recipe are
// resolved against the directory containing the file.
func Load(fname string) (*Recipe, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	r, err := Parse(bytes.NewReader(data), filepath.Dir(fname))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return r, nil
}

//go:embed presets/*.yaml
var presets embed.FS

// Preset returns one of the built-in recipes.  Relative paths in the
// recipe are resolved against dir.
func Preset(presetName, dir string) (*Recipe, error) {
	data, err := presets.ReadFile("presets/" + presetName + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownPreset, presetName)
	}
	return Parse(bytes.NewReader(data), dir)
}

// PresetNames lists the names of the built-in recipes.
func PresetNames() []string {
	entries, _ := presets.ReadDir("presets")
	var res []string
	for _, e := range entries {
		res = append(res, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(res)
	return res
}

// Parse reads a recipe.  Unknown keys are an error.
func Parse(r io.Reader, dir string) (*Recipe, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	res := &Recipe{}
	if err := dec.Decode(res); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	res.dir = dir
	if err := res.validate(); err != nil {
		return nil, err
	}
	tracer().Debugf("recipe: %d builds, %d tasks", len(res.Builds), len(res.Tasks))
	return res, nil
}

func (r *Recipe) validate() error {
	if len(r.Builds) == 0 {
		return fmt.Errorf("%w: no builds", ErrInvalid)
	}
	for i, b := range r.Builds {
		if b.Base == "" || b.Output == "" {
			return fmt.Errorf("%w: build %d needs base and output", ErrInvalid, i+1)
		}
	}
	tags := make(map[string]bool)
	for i, t := range r.Tasks {
		if t.Tag == "" {
			return fmt.Errorf("%w: task %d has no tag", ErrInvalid, i+1)
		}
		if t.Source == "" {
			return fmt.Errorf("%w: task %q has no source", ErrInvalid, t.Tag)
		}
		if _, err := t.Selector(); err != nil {
			return fmt.Errorf("%w: task %q: %v", ErrInvalid, t.Tag, err)
		}
		tags[t.Tag] = true
	}
	for _, b := range r.Builds {
		for tag := range b.Sources {
			if !tags[tag] {
				return fmt.Errorf("%w: build %s: no task with tag %q", ErrInvalid, b.Output, tag)
			}
		}
	}
	if _, err := r.PlaceholderParams(); err != nil {
		return err
	}
	if _, err := r.RenameRules(); err != nil {
		return err
	}
	if r.Workers < 0 {
		return fmt.Errorf("%w: negative number of workers", ErrInvalid)
	}
	return nil
}

// Path resolves a path from the recipe.
func (r *Recipe) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || r.dir == "" {
		return p
	}
	return filepath.Join(r.dir, p)
}

// Source returns the source file of a task, for the given build.
func (r *Recipe) Source(b *Build, t *TaskSpec) string {
	if s, ok := b.Sources[t.Tag]; ok {
		return r.Path(s)
	}
	return r.Path(t.Source)
}

// Selector returns the code points selected by the task.  A task without
// ranges selects nothing.
func (t *TaskSpec) Selector() (selector.Set, error) {
	return selector.Parse(t.Ranges)
}

// PlaceholderParams returns the code point, the drawing parameters and
// the scope of the placeholder glyph.  The result is nil if the recipe
// does not ask for a placeholder.
func (r *Recipe) PlaceholderParams() (*Placeholder, error) {
	spec := r.Placeholder
	if spec == nil || spec.Disabled {
		return nil, nil
	}

	res := &Placeholder{
		Codepoint: 0x3000,
		Params:    placeholder.Default,
	}
	if spec.Codepoint != "" {
		set, err := selector.Parse([]string{spec.Codepoint})
		if err != nil {
			return nil, fmt.Errorf("%w: placeholder: %v", ErrInvalid, err)
		}
		if len(set) != 1 || set[0].Low != set[0].High {
			return nil, fmt.Errorf("%w: placeholder needs a single code point, not %s", ErrInvalid, spec.Codepoint)
		}
		res.Codepoint = set[0].Low
	}
	if spec.Box != 0 {
		res.Params.BoxRatio = spec.Box
	}
	if spec.Stroke != 0 {
		res.Params.StrokeRatio = spec.Stroke
	}
	if spec.Dashes != 0 {
		res.Params.Dashes = spec.Dashes
	}
	if spec.Gap != 0 {
		res.Params.GapRatio = spec.Gap
	}
	if len(spec.Scope) > 0 {
		scope, err := selector.Parse(spec.Scope)
		if err != nil {
			return nil, fmt.Errorf("%w: placeholder scope: %v", ErrInvalid, err)
		}
		res.Scope = scope
	}
	return res, nil
}

// Placeholder holds the decoded placeholder settings.
type Placeholder struct {
	Codepoint rune
	Params    placeholder.Params
	Scope     selector.Set
}

// RenameRules returns the name rewriting rules of the recipe.
func (r *Recipe) RenameRules() ([]rename.Rule, error) {
	var rules []rename.Rule
	if p := r.Rename.Preset; p != "" {
		preset, ok := rename.Presets[strings.ToLower(p)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown rename preset %q", ErrInvalid, p)
		}
		rules = append(rules, preset...)
	}
	for _, rule := range r.Rename.Rules {
		if rule.From == "" && rule.Suffix == "" {
			return nil, fmt.Errorf("%w: rename rule needs from or suffix", ErrInvalid)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// CMapOptions returns the options for rebuilding the character map.
func (r *Recipe) CMapOptions() cmapsynth.Options {
	return cmapsynth.Options{
		Wide:     r.CMap.Wide,
		MacRoman: r.CMap.MacRoman,
	}
}

var (
	// ErrInvalid indicates a malformed recipe.
	ErrInvalid = errors.New("invalid recipe")

	// ErrUnknownPreset indicates a request for a recipe which is not
	// built in.
	ErrUnknownPreset = errors.New("unknown preset")
)
