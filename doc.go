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

// Package glyphmerge holds the in-memory model of a TrueType font used by
// the merge engine, together with reading and writing of font files.
//
// A Font addresses glyphs by name.  The glyph order of a font read from a
// file is kept, and glyphs added during a merge are appended, so that the
// glyph IDs of the original font (and all tables referring to them) stay
// valid when the font is written back.
package glyphmerge

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'glyphmerge.font'.
func tracer() tracing.Trace {
	return tracing.Select("glyphmerge.font")
}
