// glyphmerge - merge the glyph repertoires of TrueType fonts
// Copyright (C) 2022  Jochen Voss <voss@seehuhn.de>
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

package glyphmerge

import (
	"fmt"

	"seehuhn.de/go/postscript/type1/names"

	"github.com/hackline/glyphmerge/cmap"
	"github.com/hackline/glyphmerge/glyph"
)

// makeGlyphNames returns a unique name for every glyph.
// Names from the "post" table are used where present.  Missing names are
// inferred from the character map, and the remaining glyphs are numbered.
func makeGlyphNames(numGlyphs int, postNames []string, sub cmap.Subtable) []string {
	glyphNames := make([]string, numGlyphs)
	if len(postNames) == numGlyphs {
		copy(glyphNames, postNames)
	}
	if numGlyphs > 0 {
		glyphNames[0] = ".notdef"
	}

	used := make(map[string]bool)
	for i, name := range glyphNames {
		if name == "" {
			continue
		}
		if used[name] {
			// keep the first occurrence, rename the others
			glyphNames[i] = makeVariant(used, name)
		} else {
			used[name] = true
		}
	}

	if sub != nil {
		var missing int
		for _, name := range glyphNames {
			if name == "" {
				missing++
			}
		}
		if missing > 0 {
			low, high := sub.CodeRange()
			for r := low; r <= high; r++ {
				gid := sub.Lookup(r)
				if gid == 0 || int(gid) >= numGlyphs || glyphNames[gid] != "" {
					continue
				}
				glyphNames[gid] = makeVariant(used, names.FromUnicode(r))
			}
		}
	}

	for i, name := range glyphNames {
		if name == "" {
			glyphNames[i] = makeVariant(used, fmt.Sprintf("glyph%05d", i))
		}
	}
	return glyphNames
}

// makeVariant returns basename, or basename with a numeric suffix if
// basename is already used, and marks the result as used.
func makeVariant(used map[string]bool, basename string) string {
	try := 0
	name := basename
	for used[name] {
		try++
		name = fmt.Sprintf("%s.%d", basename, try)
	}
	used[name] = true
	return name
}

// glyphIndex maps glyph names to glyph IDs.
func glyphIndex(order []string) map[string]glyph.ID {
	idx := make(map[string]glyph.ID, len(order))
	for gid, name := range order {
		idx[name] = glyph.ID(gid)
	}
	return idx
}

// GlyphIndex returns a map from glyph names to the glyph IDs they will
// have in the written font.
func (f *Font) GlyphIndex() map[string]glyph.ID {
	return glyphIndex(f.GlyphOrder)
}
