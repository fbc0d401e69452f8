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
	"errors"
	"sort"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge/cmap"
	"github.com/hackline/glyphmerge/glyf"
	"github.com/hackline/glyphmerge/head"
	"github.com/hackline/glyphmerge/hmtx"
	"github.com/hackline/glyphmerge/maxp"
	"github.com/hackline/glyphmerge/name"
	"github.com/hackline/glyphmerge/os2"
	"github.com/hackline/glyphmerge/post"
)

// Font is a TrueType font with glyphs addressed by name.
type Font struct {
	UnitsPerEm uint16

	// GlyphOrder lists the glyph names in glyph ID order.  Names are
	// unique.
	GlyphOrder []string

	// Glyphs maps glyph names to outlines.  A name in GlyphOrder without
	// an entry here is written as a blank glyph.
	Glyphs map[string]*Outline

	// Metrics maps glyph names to horizontal metrics.  A missing entry
	// means zero advance and zero left side bearing.
	Metrics map[string]Metric

	// CMap maps code points to glyph names.
	CMap map[rune]string

	// Names holds the records of the "name" table.
	Names []name.Record

	// NameLangTags holds the language tags of a version 1 "name" table.
	NameLangTags []string

	Head *head.Info
	HHea *hmtx.Info // only the header fields are used; widths come from Metrics
	Maxp *maxp.TTFInfo
	Post *post.Info

	// OS2 is the binary "OS/2" table, or nil if the font has none.
	OS2 os2.Table

	// CMapTable holds the encoded cmap subtables.  It is written as is;
	// changes to CMap only take effect after the subtables are rebuilt.
	CMapTable cmap.Table

	// Tables holds all other tables, which are copied unchanged.
	Tables map[string][]byte

	nameSet map[string]struct{}
}

// Outline is the shape of a glyph, together with its bounding box.
type Outline struct {
	funit.Rect16

	// Data is nil for a blank glyph, *glyf.SimpleUnpacked for a glyph
	// made of contours, *CompositeOutline for a composite glyph, or
	// *MalformedOutline if the glyph data could not be decoded.
	Data any
}

// CompositeOutline is a glyph made from other glyphs.
type CompositeOutline struct {
	Components   []Component
	Instructions []byte
}

// Component places a glyph inside a composite glyph.
type Component struct {
	Name string

	// Trfm is [xx, xy, yx, yy, dx, dy].  The offset (dx, dy) is in font
	// design units and is zero for components placed by point matching.
	Trfm matrix.Matrix

	AlignPoints          bool
	OurPoint, TheirPoint uint16

	Hints glyf.ComponentFlag
}

// Offset returns the rounded offset of the component.
func (c *Component) Offset() (dx, dy funit.Int16) {
	return toInt16(c.Trfm[4]), toInt16(c.Trfm[5])
}

// MalformedOutline marks a glyph whose data could not be decoded.
type MalformedOutline struct {
	Err error
}

// Metric holds the horizontal metrics of a glyph.
type Metric struct {
	Advance uint16
	LSB     int16
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return len(f.GlyphOrder)
}

// HasGlyph reports whether the glyph name is already in use.
// New glyphs must be added using AddGlyph.
func (f *Font) HasGlyph(name string) bool {
	if _, ok := f.Glyphs[name]; ok {
		return true
	}
	if f.nameSet == nil || len(f.nameSet) != len(f.GlyphOrder) {
		f.nameSet = make(map[string]struct{}, len(f.GlyphOrder))
		for _, n := range f.GlyphOrder {
			f.nameSet[n] = struct{}{}
		}
	}
	_, ok := f.nameSet[name]
	return ok
}

// AddGlyph appends a new glyph to the font.
// The name must not be in use.
func (f *Font) AddGlyph(name string, o *Outline, m Metric) error {
	if f.HasGlyph(name) {
		return &DuplicateGlyphError{Name: name}
	}
	f.GlyphOrder = append(f.GlyphOrder, name)
	f.nameSet[name] = struct{}{}
	if f.Glyphs == nil {
		f.Glyphs = make(map[string]*Outline)
	}
	f.Glyphs[name] = o
	if f.Metrics == nil {
		f.Metrics = make(map[string]Metric)
	}
	f.Metrics[name] = m
	return nil
}

// Codepoints returns the mapped code points in increasing order.
func (f *Font) Codepoints() []rune {
	res := make([]rune, 0, len(f.CMap))
	for r := range f.CMap {
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// NameRecord returns the value of the first text name record with the
// given ID, preferring Windows records.
func (f *Font) NameRecord(id name.ID) string {
	info := name.Info{Records: f.Names}
	s, _ := info.Find(id)
	return s
}

// DuplicateGlyphError is returned when a glyph name is added twice.
type DuplicateGlyphError struct {
	Name string
}

func (err *DuplicateGlyphError) Error() string {
	return "glyphmerge: duplicate glyph name " + err.Name
}

var (
	// ErrNoGlyf indicates a font without TrueType outlines.
	ErrNoGlyf = errors.New("glyphmerge: font has no glyf table")

	// ErrCyclicComposite indicates a composite glyph which directly or
	// indirectly contains itself.
	ErrCyclicComposite = errors.New("glyphmerge: cyclic composite glyph")

	// ErrComponentDepth indicates that composite glyphs are nested more
	// deeply than MaxComponentDepth.
	ErrComponentDepth = errors.New("glyphmerge: composite glyphs nested too deeply")
)
