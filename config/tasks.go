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

package config

import (
	"errors"
	"fmt"

	"github.com/hackline/glyphmerge"
	"github.com/hackline/glyphmerge/locate"
	"github.com/hackline/glyphmerge/merge"
)

// Open loads a font named in the recipe.  Files which are not found
// relative to the recipe are looked up in the system font directories.
func (r *Recipe) Open(p string) (*glyphmerge.Font, string, error) {
	path, err := locate.Find(p)
	if err != nil {
		return nil, p, err
	}
	f, err := glyphmerge.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("%s: %w", path, err)
	}
	if err := checkFont(f, path); err != nil {
		return nil, path, err
	}
	return f, path, nil
}

// checkFont rejects source fonts with cyclic composite glyphs.  Other
// broken composites only affect the glyphs which use them, and are
// reported by the planner when these glyphs are imported.
func checkFont(f *glyphmerge.Font, path string) error {
	err := f.CheckComposites()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, glyphmerge.ErrCyclicComposite):
		return fmt.Errorf("%s: %w", path, err)
	default:
		tracer().Infof("%s: %v", path, err)
		return nil
	}
}

// MergeTasks loads the source fonts for a build.  Sources which cannot be
// loaded are returned as tasks with Err set, so that the planner reports
// them and carries on with the remaining tasks.
//
// Tasks which share a source file share the loaded font.
func (r *Recipe) MergeTasks(b *Build) []merge.Task {
	type loaded struct {
		f    *glyphmerge.Font
		path string
		err  error
	}
	cache := make(map[string]loaded)

	res := make([]merge.Task, 0, len(r.Tasks))
	for i := range r.Tasks {
		spec := &r.Tasks[i]
		src := r.Source(b, spec)
		l, ok := cache[src]
		if !ok {
			l.f, l.path, l.err = r.Open(src)
			cache[src] = l
			if l.err != nil {
				tracer().Infof("task %s: %v", spec.Tag, l.err)
			}
		}

		// validate has checked the ranges
		sel, _ := spec.Selector()
		res = append(res, merge.Task{
			Source:   l.f,
			Selector: sel,
			Tag:      spec.Tag,
			Path:     l.path,
			Err:      l.err,
		})
	}
	return res
}

// Planner returns a merge planner for the given target font.
func (r *Recipe) Planner(target *glyphmerge.Font) *merge.Planner {
	pl := &merge.Planner{
		Target:  target,
		Workers: r.Workers,
	}
	// validate has checked the placeholder settings
	if p, _ := r.PlaceholderParams(); p != nil {
		pl.Placeholder = &merge.PlaceholderTask{
			Codepoint: p.Codepoint,
			Params:    p.Params,
			Scope:     p.Scope,
		}
	}
	return pl
}
