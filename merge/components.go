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

package merge

import (
	"fmt"

	"github.com/hackline/glyphmerge"
)

// importComponents copies the (transitive) components of a source glyph
// into the target, unless they were copied before by the same task.
// The components are added without code points.
//
// All components are converted before the first one is added, so that a
// failure leaves the target unchanged.
func (imp *importer) importComponents(sourceName string) error {
	src := imp.task.Source
	order, err := collectComponents(src, sourceName)
	if err != nil {
		return err
	}

	type converted struct {
		sourceName string
		outline    *glyphmerge.Outline
		metric     glyphmerge.Metric
	}
	var todo []converted
	for _, name := range order {
		if _, done := imp.memo[name]; done {
			continue
		}
		o, m, err := convert(src, name, imp.scale)
		if err != nil {
			return fmt.Errorf("component %w", err)
		}
		todo = append(todo, converted{name, o, m})
	}

	for _, c := range todo {
		comp, isComposite := c.outline.Data.(*glyphmerge.CompositeOutline)
		if isComposite {
			imp.renameComponents(comp)
		}
		base := componentName(imp.task.Tag, c.sourceName)
		glyphName, err := Reserve(base, base, imp.target.HasGlyph)
		if err != nil {
			return err
		}
		if err := imp.target.AddGlyph(glyphName, c.outline, c.metric); err != nil {
			return err
		}
		if isComposite {
			imp.updateBounds(glyphName)
		}
		imp.memo[c.sourceName] = glyphName
		imp.tr.Components++
	}
	return nil
}

// collectComponents lists the glyphs used by a composite glyph, directly or
// indirectly.  Every glyph is listed after all glyphs it depends on.
// The glyph itself is not included.
func collectComponents(src *glyphmerge.Font, root string) ([]string, error) {
	var order []string
	done := make(map[string]bool)
	active := make(map[string]bool)

	var walk func(name string, depth int) error
	walk = func(name string, depth int) error {
		if active[name] {
			return fmt.Errorf("%w: %q", glyphmerge.ErrCyclicComposite, name)
		}
		if depth > glyphmerge.MaxComponentDepth {
			return fmt.Errorf("%w: %q", glyphmerge.ErrComponentDepth, root)
		}
		o, ok := src.Glyphs[name]
		if !ok {
			return &glyphmerge.MissingGlyphError{Name: name}
		}

		if o != nil {
			if comp, isComposite := o.Data.(*glyphmerge.CompositeOutline); isComposite {
				active[name] = true
				for _, c := range comp.Components {
					if done[c.Name] {
						continue
					}
					if err := walk(c.Name, depth+1); err != nil {
						return err
					}
				}
				delete(active, name)
			}
		}

		if depth > 0 && !done[name] {
			done[name] = true
			order = append(order, name)
		}
		return nil
	}

	if err := walk(root, 0); err != nil {
		return nil, err
	}
	return order, nil
}
